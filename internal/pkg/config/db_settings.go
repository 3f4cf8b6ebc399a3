package config

// Database type constants
const (
	DatabaseTypeSqlite   = "sqlite"
	DatabaseTypePostgres = "postgres"
)

// DatabaseSettings selects the key catalog database
type DatabaseSettings struct {
	Type   string `mapstructure:"type" validate:"required,oneof=sqlite postgres"`
	DSN    string `mapstructure:"dsn" validate:"required"`
	DBName string `mapstructure:"name" validate:"required"`
}

// Validate checks that all fields in DatabaseSettings are valid
func (s *DatabaseSettings) Validate() error {
	return validateSettings("DatabaseSettings", s)
}
