package md

import "sync"

// parallelRanges runs fn(w, bounds[w], bounds[w+1]) for every chunk in
// its own goroutine.
func parallelRanges(bounds []int, fn func(w, start, end int)) {
	workers := len(bounds) - 1

	var wg sync.WaitGroup
	wg.Add(workers)

	for w := 0; w < workers; w++ {
		go func(w, s, e int) {
			defer wg.Done()
			fn(w, s, e)
		}(w, bounds[w], bounds[w+1])
	}

	wg.Wait()
}

// triangularBounds splits rows of a strict upper triangle, where row i
// has rows-i entries, into workers contiguous non-empty chunks of about
// equal entry count. Requires 1 <= workers <= rows.
func triangularBounds(rows, workers int) []int {
	bounds := make([]int, workers+1)
	bounds[workers] = rows
	total := rows * (rows + 1) / 2

	acc, w := 0, 1
	for i := 0; i < rows && w < workers; i++ {
		acc += rows - i
		for w < workers && acc*workers >= w*total {
			bounds[w] = i + 1
			w++
		}
	}

	// heavy leading rows can pin several bounds to one row
	for w := 1; w < workers; w++ {
		bounds[w] = max(bounds[w], bounds[w-1]+1)
	}
	for w := workers - 1; w > 0; w-- {
		bounds[w] = min(bounds[w], bounds[w+1]-1)
	}
	return bounds
}

func chunkCount(n, minChunk, workers int) int {
	if minChunk < 1 {
		minChunk = 1
	}
	if n <= minChunk || workers <= 1 {
		return 1
	}
	if n/minChunk < workers {
		workers = n / minChunk
	}
	// the last chunk must not be empty
	chunkSize := (n + workers - 1) / workers
	for workers > 1 && (workers-1)*chunkSize >= n {
		workers--
		chunkSize = (n + workers - 1) / workers
	}
	if workers < 1 {
		workers = 1
	}
	return workers
}
