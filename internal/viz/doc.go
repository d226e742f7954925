// Package viz renders polymer chains and time series.
//
//   - [Canvas]: braille pixel grid used for terminal snapshots of a chain
//   - [ScatterSVG]: SVG scatter snapshot written at every print step
//   - [PlotSeries]: asciigraph plot of Rg or efficiency series
//   - [Live]: Bubble Tea model that integrates a chain on screen
//
// # Key Bindings
//
//	Space - Pause/Resume
//	R     - Reset to the straight chain
//	Up    - Raise temperature by 10%
//	Down  - Lower temperature by 10%
//	Q     - Quit
package viz
