package errors

import (
	"math"
	"strings"
	"unicode"
)

// ValidatePositive rejects values that are not strictly positive or not finite.
func ValidatePositive(name string, v float64) error {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return New(ErrCodeInvalidInput, "%s must be finite, got %v", name, v)
	}
	if v <= 0 {
		return New(ErrCodeInvalidInput, "%s must be positive, got %v", name, v)
	}
	return nil
}

// ValidateFraction rejects values outside the closed interval [0, 1].
func ValidateFraction(name string, v float64) error {
	if math.IsNaN(v) || v < 0 || v > 1 {
		return New(ErrCodeInvalidInput, "%s must be within [0, 1], got %v", name, v)
	}
	return nil
}

// ValidateRange checks lo <= hi for a named bound pair.
// Both ends must be finite.
func ValidateRange(name string, lo, hi float64) error {
	if math.IsNaN(lo) || math.IsNaN(hi) || math.IsInf(lo, 0) || math.IsInf(hi, 0) {
		return New(ErrCodeInvalidInput, "%s bounds must be finite, got [%v, %v]", name, lo, hi)
	}
	if lo > hi {
		return New(ErrCodeInvalidInput, "%s lower bound %v exceeds upper bound %v", name, lo, hi)
	}
	return nil
}

// ValidateComponentName validates a chemical component identifier as used by
// simulators (e.g. "BENZENE", "N-HEPTANE").
//
// The validation rules:
//   - No empty names
//   - No control characters or whitespace
//   - Maximum length of 64 characters
func ValidateComponentName(name string) error {
	if name == "" {
		return New(ErrCodeInvalidInput, "component name cannot be empty")
	}
	if len(name) > 64 {
		return New(ErrCodeInvalidInput, "component name too long (max 64 characters)")
	}
	for _, r := range name {
		if unicode.IsControl(r) || unicode.IsSpace(r) {
			return New(ErrCodeInvalidInput, "component name %q contains whitespace or control characters", name)
		}
	}
	return nil
}

// ValidatePath validates a case-file path supplied on the command line.
//
// Validation rules:
//   - Path cannot be empty
//   - Maximum length of 500 characters
//   - No null bytes or control characters
func ValidatePath(path string) error {
	if path == "" {
		return New(ErrCodeInvalidPath, "path cannot be empty")
	}

	const maxPathLength = 500
	if len(path) > maxPathLength {
		return New(ErrCodeInvalidPath, "path too long (max %d characters)", maxPathLength)
	}

	if strings.ContainsRune(path, '\x00') {
		return New(ErrCodeInvalidPath, "path contains a null byte")
	}
	for _, r := range path {
		if unicode.IsControl(r) {
			return New(ErrCodeInvalidPath, "path contains control characters")
		}
	}

	return nil
}
