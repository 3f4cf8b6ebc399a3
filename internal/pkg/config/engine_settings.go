package config

// EngineSoftware selects the in-process engine backed by the Go crypto libraries
const EngineSoftware = "software"

// EngineSettings configures the crypto engine
type EngineSettings struct {
	Name string `mapstructure:"name" validate:"required,oneof=software"`
	// MaxHandles caps the live handles an engine holds at once; zero means unlimited.
	MaxHandles int `mapstructure:"max_handles" validate:"gte=0"`
	// DefaultDigest is used by hashing requests that name no algorithm.
	DefaultDigest string `mapstructure:"default_digest" validate:"required,oneof=SHA-256 SHA-384 SHA-512 SHA3-256 SHA3-512"`
}

// Validate checks that all fields in EngineSettings are valid
func (s *EngineSettings) Validate() error {
	return validateSettings("EngineSettings", s)
}
