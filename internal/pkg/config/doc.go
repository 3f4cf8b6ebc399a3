// Package config provides the application settings: logging, the key catalog
// database, the crypto engine and the REST server.
//
// Settings are read from a YAML file and the environment with viper and
// validated with validator/v10 before use.
package config
