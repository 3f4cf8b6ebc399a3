//go:build unit
// +build unit

package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestEngineSettingsValidation(t *testing.T) {
	tests := []struct {
		name          string
		settings      *EngineSettings
		expectedError bool
	}{
		{
			name:     "valid software engine",
			settings: &EngineSettings{Name: EngineSoftware, DefaultDigest: "SHA-256"},
		},
		{
			name:     "handle cap",
			settings: &EngineSettings{Name: EngineSoftware, MaxHandles: 64, DefaultDigest: "SHA3-512"},
		},
		{
			name:          "unknown engine",
			settings:      &EngineSettings{Name: "openssl", DefaultDigest: "SHA-256"},
			expectedError: true,
		},
		{
			name:          "negative handle cap",
			settings:      &EngineSettings{Name: EngineSoftware, MaxHandles: -1, DefaultDigest: "SHA-256"},
			expectedError: true,
		},
		{
			name:          "unknown digest",
			settings:      &EngineSettings{Name: EngineSoftware, DefaultDigest: "MD5"},
			expectedError: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.settings.Validate()

			if tt.expectedError {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}
