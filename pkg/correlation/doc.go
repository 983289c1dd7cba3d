// Package correlation holds closed-form fits of the published tray design
// charts used to size sieve and bubble-cap trays.
//
// Each function maps one or two dimensionless groups to a dimensionless
// coefficient. The fits are only accurate inside the range of the chart they
// were read from; outside it they extrapolate silently. Nothing here clamps,
// validates or returns an error, so every function is total over the reals
// where its algebraic form is defined (logarithms of non-positive arguments
// yield NaN or -Inf exactly as package math does).
//
// Chart references follow Towler & Sinnott, Chemical Engineering Design
// (sieve trays) and Bolles' bubble-cap design method (caps).
package correlation
