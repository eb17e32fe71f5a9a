package validation

import (
	"strings"
	"testing"
)

func TestValidateOutputFormat(t *testing.T) {
	tests := []struct {
		name      string
		format    string
		expectErr bool
	}{
		{
			name:      "Valid pretty format",
			format:    "pretty",
			expectErr: false,
		},
		{
			name:      "Valid csv format",
			format:    "csv",
			expectErr: false,
		},
		{
			name:      "Valid json format",
			format:    "json",
			expectErr: false,
		},
		{
			name:      "Valid yaml format",
			format:    "yaml",
			expectErr: false,
		},
		{
			name:      "Empty format",
			format:    "",
			expectErr: true,
		},
		{
			name:      "Case sensitive - uppercase",
			format:    "PRETTY",
			expectErr: true,
		},
		{
			name:      "Leading/trailing spaces",
			format:    " pretty ",
			expectErr: true,
		},
		{
			name:      "XML format not supported",
			format:    "xml",
			expectErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateOutputFormat(tt.format)

			if tt.expectErr {
				if err == nil {
					t.Errorf("ValidateOutputFormat(%s) expected error but got none", tt.format)
				}
			} else {
				if err != nil {
					t.Errorf("ValidateOutputFormat(%s) unexpected error = %v", tt.format, err)
				}
			}
		})
	}
}

func TestValidateOutputFormatErrorMessage(t *testing.T) {
	err := ValidateOutputFormat("xml")
	if err == nil {
		t.Fatal("expected error for xml")
	}
	for _, want := range []string{"pretty", "csv", "json", "yaml", "xml"} {
		if !strings.Contains(err.Error(), want) {
			t.Errorf("error message %q should mention %s", err.Error(), want)
		}
	}
}

func TestValidateSolvers(t *testing.T) {
	tests := []struct {
		name      string
		solvers   []string
		expectErr bool
	}{
		{"All solvers", []string{"exhaustive", "greedy", "dynamic"}, false},
		{"Single solver", []string{"dynamic"}, false},
		{"Empty list", nil, true},
		{"Unknown solver", []string{"dynamic", "genetic"}, true},
		{"Duplicate solver", []string{"greedy", "greedy"}, true},
		{"Case sensitive", []string{"Greedy"}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateSolvers(tt.solvers)
			if tt.expectErr && err == nil {
				t.Errorf("ValidateSolvers(%v) expected error but got none", tt.solvers)
			}
			if !tt.expectErr && err != nil {
				t.Errorf("ValidateSolvers(%v) unexpected error = %v", tt.solvers, err)
			}
		})
	}
}
