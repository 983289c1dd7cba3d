package shortcut

import (
	stderrors "errors"
	"math"
)

// ErrNotBracketed is returned by [Brent] when f(a) and f(b) share a sign.
var ErrNotBracketed = stderrors.New("root not bracketed")

// ErrNoConvergence is returned by [Brent] when the iteration budget runs out.
var ErrNoConvergence = stderrors.New("root finder did not converge")

// Brent finds a root of f in [a, b] using Brent's method (inverse quadratic
// interpolation with bisection fallback). f(a) and f(b) must have opposite
// signs, or one of them must be zero.
func Brent(f func(float64) float64, a, b, tol float64, maxIter int) (float64, error) {
	fa, fb := f(a), f(b)
	if math.IsNaN(fa) || math.IsNaN(fb) {
		return math.NaN(), ErrNotBracketed
	}
	if fa == 0 {
		return a, nil
	}
	if fb == 0 {
		return b, nil
	}
	if (fa > 0) == (fb > 0) {
		return math.NaN(), ErrNotBracketed
	}
	if math.Abs(fa) < math.Abs(fb) {
		a, b, fa, fb = b, a, fb, fa
	}

	c, fc := a, fa
	d := b - a
	mflag := true
	for i := 0; i < maxIter; i++ {
		if fb == 0 || math.Abs(b-a) < tol {
			return b, nil
		}

		var s float64
		if fa != fc && fb != fc {
			s = a*fb*fc/((fa-fb)*(fa-fc)) +
				b*fa*fc/((fb-fa)*(fb-fc)) +
				c*fa*fb/((fc-fa)*(fc-fb))
		} else {
			s = b - fb*(b-a)/(fb-fa)
		}

		lo, hi := (3*a+b)/4, b
		if lo > hi {
			lo, hi = hi, lo
		}
		switch {
		case s < lo || s > hi,
			mflag && math.Abs(s-b) >= math.Abs(b-c)/2,
			!mflag && math.Abs(s-b) >= math.Abs(c-d)/2,
			mflag && math.Abs(b-c) < tol,
			!mflag && math.Abs(c-d) < tol:
			s = (a + b) / 2
			mflag = true
		default:
			mflag = false
		}

		fs := f(s)
		d, c, fc = c, b, fb
		if (fa > 0) != (fs > 0) {
			b, fb = s, fs
		} else {
			a, fa = s, fs
		}
		if math.Abs(fa) < math.Abs(fb) {
			a, b, fa, fb = b, a, fb, fa
		}
	}
	return b, ErrNoConvergence
}
