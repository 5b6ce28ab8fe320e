// Package analysis provides tools for characterizing how well a stepper
// approximates a problem:
//
//   - [Study]: convergence study, halving the step size level by level
//   - [NewPhasePortrait]: 2D phase space view of a trajectory
//
// # Observed Order
//
// For a method of order p the maximum error shrinks by about 2^p each time
// h is halved, so log2 of the ratio estimates p:
//
//	levels, _ := analysis.Study(integrators.NewMidpoint(), problem, 11, 5, 0)
//	order := levels[len(levels)-1].Order // ~2
package analysis
