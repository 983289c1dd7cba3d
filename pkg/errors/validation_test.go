package errors

import (
	"math"
	"testing"
)

func TestValidatePositive(t *testing.T) {
	tests := []struct {
		name    string
		input   float64
		wantErr bool
	}{
		{"positive", 1.5, false},
		{"tiny", 1e-12, false},
		{"zero", 0, true},
		{"negative", -3, true},
		{"nan", math.NaN(), true},
		{"inf", math.Inf(1), true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidatePositive("x", tt.input)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidatePositive(%v) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
			if err != nil && !Is(err, ErrCodeInvalidInput) {
				t.Errorf("code = %v, want %v", GetCode(err), ErrCodeInvalidInput)
			}
		})
	}
}

func TestValidateFraction(t *testing.T) {
	tests := []struct {
		input   float64
		wantErr bool
	}{
		{0, false}, {0.995, false}, {1, false}, {-0.01, true}, {1.01, true}, {math.NaN(), true},
	}

	for _, tt := range tests {
		err := ValidateFraction("purity", tt.input)
		if (err != nil) != tt.wantErr {
			t.Errorf("ValidateFraction(%v) error = %v, wantErr %v", tt.input, err, tt.wantErr)
		}
	}
}

func TestValidateRange(t *testing.T) {
	if err := ValidateRange("p", 1.013, 10); err != nil {
		t.Errorf("valid range rejected: %v", err)
	}
	if err := ValidateRange("p", 2, 2); err != nil {
		t.Errorf("degenerate range rejected: %v", err)
	}
	if err := ValidateRange("p", 3, 2); err == nil {
		t.Error("inverted range accepted")
	}
	if err := ValidateRange("p", math.Inf(-1), 2); err == nil {
		t.Error("infinite bound accepted")
	}
}

func TestValidateComponentName(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr bool
	}{
		{"simple", "BENZENE", false},
		{"dashed", "N-HEPTANE", false},
		{"empty", "", true},
		{"space", "METHYL ACETATE", true},
		{"control", "TOL\x01", true},
		{"too long", string(make([]byte, 80)), true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateComponentName(tt.input)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateComponentName(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
		})
	}
}

func TestValidatePath(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr bool
	}{
		{"relative", "cases/bt.toml", false},
		{"absolute", "/tmp/bt.toml", false},
		{"empty", "", true},
		{"null byte", "bt\x00.toml", true},
		{"newline", "bt\n.toml", true},
		{"too long", string(make([]byte, 600)), true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidatePath(tt.input)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidatePath(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
		})
	}
}
