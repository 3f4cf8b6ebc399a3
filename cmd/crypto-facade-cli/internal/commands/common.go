package commands

import (
	"crypto/rand"
	"fmt"
	"os"
	"path/filepath"

	"github.com/MGTheTrain/crypto-facade/internal/domain/crypto"
	"github.com/MGTheTrain/crypto-facade/internal/pkg/config"
	"github.com/MGTheTrain/crypto-facade/internal/pkg/logger"
)

// SetupLogger initializes the process logger from settings
func SetupLogger(settings *config.LoggerSettings) (logger.Logger, error) {
	if err := logger.InitLogger(settings); err != nil {
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}

	loggerInstance, err := logger.GetLogger()
	if err != nil {
		return nil, fmt.Errorf("failed to get logger instance: %w", err)
	}

	return loggerInstance, nil
}

// algorithmNamed resolves name against the table and falls back to an
// unchecked algorithm the engine resolves itself.
func algorithmNamed(name string) *crypto.Algorithm {
	if algorithm, ok := crypto.AlgorithmByName(name); ok {
		return algorithm
	}
	return crypto.Unchecked(name)
}

func readFile(path string) ([]byte, error) {
	data, err := os.ReadFile(filepath.Clean(path))
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}
	return data, nil
}

func writeFile(path string, data []byte) error {
	if err := os.WriteFile(filepath.Clean(path), data, 0600); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	return nil
}

// readKey imports the key stored at path by a generate command
func readKey(provider crypto.Provider, algorithm *crypto.Algorithm, keyType crypto.KeyType, path string) (*crypto.Key, error) {
	data, err := readFile(path)
	if err != nil {
		return nil, err
	}
	key, err := provider.ImportKey(algorithm, keyType, data)
	if err != nil {
		return nil, fmt.Errorf("failed to import key %s: %w", path, err)
	}
	return key, nil
}

// ivSize is the IV or nonce length a block mode needs; zero for none.
func ivSize(mode crypto.BlockMode) int {
	switch mode {
	case crypto.BlockModeCBC, crypto.BlockModeCTR:
		return 16
	case crypto.BlockModeGCM, crypto.BlockModePoly1305:
		return 12
	default:
		return 0
	}
}

func randomBytes(size int) ([]byte, error) {
	buf := make([]byte, size)
	if _, err := rand.Read(buf); err != nil {
		return nil, fmt.Errorf("failed to read random bytes: %w", err)
	}
	return buf, nil
}
