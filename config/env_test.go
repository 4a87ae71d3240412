package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestExpandEnvWithDefaults(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		env      map[string]string
		expected string
	}{
		{
			name:     "default used when var unset",
			input:    `url: ${ADDONSMITH_TEST_NATS:-nats://localhost:4222}`,
			expected: `url: nats://localhost:4222`,
		},
		{
			name:     "env value used when set",
			input:    `url: ${ADDONSMITH_TEST_NATS:-nats://localhost:4222}`,
			env:      map[string]string{"ADDONSMITH_TEST_NATS": "nats://prod:4222"},
			expected: `url: nats://prod:4222`,
		},
		{
			name:     "simple var unset without default",
			input:    `prefix${ADDONSMITH_TEST_UNSET}suffix`,
			expected: `prefixsuffix`,
		},
		{
			name:     "placeholders without braces are untouched",
			input:    `output: "$level"`,
			expected: `output: "$level"`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for k, v := range tt.env {
				t.Setenv(k, v)
			}
			assert.Equal(t, tt.expected, ExpandEnvWithDefaults(tt.input))
		})
	}
}
