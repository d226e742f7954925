// Package md implements a 2D coarse-grained polymer engine.
//
// A polymer is a linear chain of N particles where particle i is bonded
// to particle i+1. Each step evaluates two force terms and moves every
// particle along its net force:
//
//   - [NonBonded] pairs within the LJ cutoff feel a [LennardJones] force
//   - [Bonded] neighbours feel a harmonic [Spring] force
//   - [Accumulator] sums both terms with action = reaction
//   - [SteepestDescent] applies x' = x + dt*F + T*(U - 0.5)
//
// The update is overdamped and dissipative. The stochastic kick is the
// plain uniform term, not a normalised Langevin force.
//
// # Example
//
//	params := md.DefaultParams()
//	eng, _ := md.NewEngine(25, params, rand.New(rand.NewSource(1)))
//	x := md.InitialConfiguration(params.MinSep, 25)
//	for i := 0; i < steps; i++ {
//	    st, err := eng.Step(x)
//	    if err != nil {
//	        return err
//	    }
//	    x = st.Positions
//	}
//
// # Thread Safety
//
// An [Engine] reuses pair buffers between steps and is NOT safe for
// concurrent use. The free functions are pure.
package md
