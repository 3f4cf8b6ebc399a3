// Package main is the entry point for the crypto-facade-cli application.
// It builds a provider over the configured engine, registers the key,
// cipher and signature commands and executes the command-line interface.
package main

import (
	"fmt"
	"log"
	"os"

	commands "github.com/MGTheTrain/crypto-facade/cmd/crypto-facade-cli/internal/commands"
	"github.com/MGTheTrain/crypto-facade/internal/infrastructure/cryptography"
	"github.com/MGTheTrain/crypto-facade/internal/infrastructure/engine"
	"github.com/MGTheTrain/crypto-facade/internal/pkg/config"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

func main() {
	if err := run(); err != nil {
		log.Fatalf("Error: %v", err)
	}
}

func run() error {
	rootCmd := &cobra.Command{
		Use:   "crypto-facade-cli",
		Short: "Cryptographic operations CLI tool",
		Long: `crypto-facade-cli is a command-line tool for cryptographic operations.
Supports symmetric and asymmetric key generation, DH parameter generation,
encryption/decryption, signing, verification, key agreement and hashing.
Keys are stored as files: raw bytes for symmetric keys and PEM otherwise.

Settings are read from the environment, optionally via a .env file:
- CRYPTO_FACADE_LOGGER_LOG_LEVEL
- CRYPTO_FACADE_ENGINE_MAX_HANDLES
- CRYPTO_FACADE_ENGINE_DEFAULT_DIGEST`,
	}

	// Initialize all command groups BEFORE executing
	if err := initializeCommands(rootCmd); err != nil {
		return fmt.Errorf("failed to initialize commands: %w", err)
	}

	if err := rootCmd.Execute(); err != nil {
		return fmt.Errorf("command execution failed: %w", err)
	}

	return nil
}

// initializeCommands builds the provider and registers all command groups with the root command.
func initializeCommands(rootCmd *cobra.Command) error {
	// .env is optional
	_ = godotenv.Load()

	cliConfig, err := config.InitializeCliConfig()
	if err != nil {
		return fmt.Errorf("failed to initialize config: %w", err)
	}

	logger, err := commands.SetupLogger(&cliConfig.Logger)
	if err != nil {
		return err
	}

	software, err := engine.NewSoftwareEngine(&cliConfig.Engine, logger)
	if err != nil {
		return fmt.Errorf("failed to create engine: %w", err)
	}

	provider, err := cryptography.NewProvider(software, logger)
	if err != nil {
		return fmt.Errorf("failed to create provider: %w", err)
	}

	commands.InitKeyCommands(rootCmd, provider, logger)
	commands.InitCipherCommands(rootCmd, provider, logger)
	commands.InitSignatureCommands(rootCmd, provider, logger, cliConfig.Engine.DefaultDigest)

	return nil
}

// init sets up any necessary initialization before main runs.
func init() {
	log.SetFlags(log.Ldate | log.Ltime | log.Lshortfile)
	log.SetOutput(os.Stderr)
}
