// Package shortcut estimates starting values for a column design from a single
// converged simulation.
//
// The estimates follow the Fenske–Underwood–Gilliland chain:
//
//  1. Fenske: minimum stages at total reflux from the light-key split.
//  2. Underwood: the root θ of Σ αᵢzᵢ/(αᵢ−θ) = 0 between the key volatilities,
//     then a minimum-reflux figure evaluated at θ.
//  3. Gilliland: actual stages at a reflux of [Params.RefluxFactor] times the
//     minimum.
//  4. Kirkbride: the split of those stages above and below the feed.
//
// Light non-keys are assumed to leave entirely in the distillate and heavy
// non-keys entirely in the bottoms.
//
// # Minimum reflux
//
// [MinimumReflux] returns the Underwood summation at θ minus one. That is the
// residual of the second Underwood equation, not the reflux ratio that zeroes
// it. The value is kept because downstream bounds are calibrated against it;
// treat it as a relative anchor.
//
// # Usage
//
//	p, _ := column.NewPartition(res, "BENZENE")
//	est, err := shortcut.Compute(shortcut.Input{Partition: p}, shortcut.Params{})
//	if err != nil {
//	    return err
//	}
//	fmt.Println(est.ActualStages, est.FeedStage, est.MinimumReflux)
package shortcut
