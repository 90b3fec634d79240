package identifier

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseTerraformProvider(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected TerraformProvider
	}{
		{
			name:  "two parts use default registry",
			input: "hashicorp/aws",
			expected: TerraformProvider{
				Registry:  "registry.terraform.io",
				Namespace: "hashicorp",
				Type:      "aws",
			},
		},
		{
			name:  "explicit registry",
			input: "registry.example.io/acme/database",
			expected: TerraformProvider{
				Registry:  "registry.example.io",
				Namespace: "acme",
				Type:      "database",
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseTerraformProvider(tt.input)
			require.NoError(t, err)
			assert.Equal(t, tt.expected, got)
		})
	}
}

func TestParseTerraformProviderInvalid(t *testing.T) {
	inputs := []string{
		"",
		"aws",
		"a/b/c/d",
		"/aws",
		"hashicorp/",
		"registry.example.io//database",
		"registry.example.io/acme/",
		"/hashicorp/aws",
	}

	for _, input := range inputs {
		t.Run(input, func(t *testing.T) {
			_, err := ParseTerraformProvider(input)
			require.Error(t, err)

			var invalid *InvalidIdentifierError
			require.True(t, errors.As(err, &invalid))
			assert.Equal(t, input, invalid.Input)
		})
	}
}
