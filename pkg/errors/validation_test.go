package errors

import (
	"strings"
	"testing"
)

func TestValidateSystemID(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr bool
	}{
		{"valid simple", "skylark", false},
		{"valid with dash", "skylark-250", false},

		{"empty", "", true},
		{"too long", strings.Repeat("a", 200), true},
		{"space", "sky lark", true},
		{"control char", "sky\x01lark", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateSystemID(tt.input)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateSystemID(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
		})
	}
}

func TestValidateDNA(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr bool
	}{
		{"valid", "W3-END-F-A1", false},
		{"valid with dot", "W3.MID.T.B2", false},
		{"valid with colon", "sky:W3-MID", false},

		{"empty", "", true},
		{"leading dash", "-W3", true},
		{"slash", "W3/END", true},
		{"space", "W3 END", true},
		{"too long", strings.Repeat("W", 200), true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateDNA(tt.input)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateDNA(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
			if err != nil && !Is(err, ErrCodeInvalidDNA) {
				t.Errorf("ValidateDNA(%q) code = %v, want %v", tt.input, GetCode(err), ErrCodeInvalidDNA)
			}
		})
	}
}

func TestValidateDNASequence(t *testing.T) {
	if err := ValidateDNASequence(nil); !Is(err, ErrCodeInvalidInput) {
		t.Errorf("empty sequence: got %v, want INVALID_INPUT", err)
	}
	if err := ValidateDNASequence([]string{"A1", "B2"}); err != nil {
		t.Errorf("valid sequence: %v", err)
	}
	err := ValidateDNASequence([]string{"A1", "", "B2"})
	if !Is(err, ErrCodeInvalidDNA) {
		t.Fatalf("bad entry: got %v, want INVALID_DNA", err)
	}
	if !strings.Contains(err.Error(), "index 1") {
		t.Errorf("error should name the index: %v", err)
	}
}
