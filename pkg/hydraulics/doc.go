// Package hydraulics checks whether a simulated column can be built with the
// tray geometry the simulator reported.
//
// [Evaluate] looks at two stages: stage 2 stands for the rectifying ("top")
// section and stage N−1 for the stripping ("bottom") section. For each it
// computes the Towler sieve-tray relations (weir crest, weep point, dry and
// residual heads, downcomer backup and residence time) or, for bubble-cap
// trays, the Bolles cap relations (dry cap drop, slot opening, slot seal,
// liquid gradient). The column is sized for the worse section: the net area
// required is the larger of the two, and both sections' percent flooding is
// measured against it.
//
// Every check is reported as a signed [Margins] value where zero or above
// passes. Degenerate inputs such as zero density or flow produce an error
// wrapping [ErrUndefined].
package hydraulics
