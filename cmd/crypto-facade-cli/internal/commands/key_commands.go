package commands

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/MGTheTrain/crypto-facade/internal/domain/crypto"
	"github.com/MGTheTrain/crypto-facade/internal/pkg/logger"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"go.uber.org/multierr"
)

// KeyCommandHandler generates keys and domain parameters and stores them as files
type KeyCommandHandler struct {
	provider crypto.Provider
	logger   logger.Logger
}

// NewKeyCommandHandler creates a KeyCommandHandler driving provider
func NewKeyCommandHandler(provider crypto.Provider, logger logger.Logger) *KeyCommandHandler {
	return &KeyCommandHandler{
		provider: provider,
		logger:   logger,
	}
}

// GenerateKeyCmd generates a symmetric key and writes its raw bytes to the key directory
func (commandHandler *KeyCommandHandler) GenerateKeyCmd(cmd *cobra.Command, _ []string) {
	algorithmName, err := cmd.Flags().GetString("algorithm")
	if err != nil {
		commandHandler.logger.Error("invalid algorithm flag ", err)
		return
	}
	keySize, err := cmd.Flags().GetInt("key-size")
	if err != nil {
		commandHandler.logger.Error("invalid key-size flag ", err)
		return
	}
	keyDir, err := cmd.Flags().GetString("key-dir")
	if err != nil {
		commandHandler.logger.Error("invalid key-dir flag ", err)
		return
	}

	var params *crypto.KeyGeneratorParameters
	if keySize > 0 {
		params = &crypto.KeyGeneratorParameters{Bits: keySize}
	}

	key, err := commandHandler.provider.GenerateKey(algorithmNamed(algorithmName), params)
	if err != nil {
		commandHandler.logger.Error(err)
		return
	}
	defer key.Close()

	encoded, err := commandHandler.provider.ExportKey(key)
	if err != nil {
		commandHandler.logger.Error(err)
		return
	}

	keyPath := filepath.Join(keyDir, fmt.Sprintf("%s-symmetric-key.bin", uuid.NewString()))
	if err := writeFile(keyPath, encoded); err != nil {
		commandHandler.logger.Error(err)
		return
	}
	commandHandler.logger.Info("Generated ", key, " at ", keyPath)
}

// GenerateKeyPairCmd generates a key pair and writes both halves as PEM to the key directory.
// DH pairs are drawn from --parameters-file when given.
func (commandHandler *KeyCommandHandler) GenerateKeyPairCmd(cmd *cobra.Command, _ []string) {
	algorithmName, err := cmd.Flags().GetString("algorithm")
	if err != nil {
		commandHandler.logger.Error("invalid algorithm flag ", err)
		return
	}
	keySize, err := cmd.Flags().GetInt("key-size")
	if err != nil {
		commandHandler.logger.Error("invalid key-size flag ", err)
		return
	}
	curve, err := cmd.Flags().GetString("curve")
	if err != nil {
		commandHandler.logger.Error("invalid curve flag ", err)
		return
	}
	keyDir, err := cmd.Flags().GetString("key-dir")
	if err != nil {
		commandHandler.logger.Error("invalid key-dir flag ", err)
		return
	}
	parametersFile, err := cmd.Flags().GetString("parameters-file")
	if err != nil {
		commandHandler.logger.Error("invalid parameters-file flag ", err)
		return
	}

	algorithm := algorithmNamed(algorithmName)

	var pair *crypto.KeyPair
	if parametersFile != "" {
		pair, err = commandHandler.fromParameters(algorithm, parametersFile)
	} else {
		pair, err = commandHandler.provider.GenerateKeyPair(algorithm, &crypto.KeyPairGeneratorParameters{Bits: keySize, Curve: curve})
	}
	if err != nil {
		commandHandler.logger.Error(err)
		return
	}
	defer pair.Close()

	uniqueID := uuid.NewString()
	halves := []struct {
		key  *crypto.Key
		path string
	}{
		{pair.Private, filepath.Join(keyDir, fmt.Sprintf("%s-private-key.pem", uniqueID))},
		{pair.Public, filepath.Join(keyDir, fmt.Sprintf("%s-public-key.pem", uniqueID))},
	}
	for _, half := range halves {
		encoded, err := commandHandler.provider.ExportKey(half.key)
		if err != nil {
			commandHandler.logger.Error(err)
			return
		}
		if err := writeFile(half.path, encoded); err != nil {
			commandHandler.logger.Error(err)
			return
		}
	}
	commandHandler.logger.Info("Generated ", pair.Private, " at ", halves[0].path, " and ", halves[1].path)
}

func (commandHandler *KeyCommandHandler) fromParameters(algorithm *crypto.Algorithm, path string) (*crypto.KeyPair, error) {
	data, err := readFile(path)
	if err != nil {
		return nil, err
	}
	params, err := commandHandler.provider.DecodeParameters(algorithm, data)
	if err != nil {
		return nil, fmt.Errorf("failed to decode parameters: %w", err)
	}
	return commandHandler.provider.GenerateKeyPairFromParameters(params)
}

// GenerateParametersCmd generates domain parameters and writes them as PEM
func (commandHandler *KeyCommandHandler) GenerateParametersCmd(cmd *cobra.Command, _ []string) {
	algorithmName, err := cmd.Flags().GetString("algorithm")
	if err != nil {
		commandHandler.logger.Error("invalid algorithm flag ", err)
		return
	}
	keySize, err := cmd.Flags().GetInt("key-size")
	if err != nil {
		commandHandler.logger.Error("invalid key-size flag ", err)
		return
	}
	generator, err := cmd.Flags().GetInt("generator")
	if err != nil {
		commandHandler.logger.Error("invalid generator flag ", err)
		return
	}
	outputFilePath, err := cmd.Flags().GetString("output-file")
	if err != nil {
		commandHandler.logger.Error("invalid output-file flag ", err)
		return
	}

	algorithm := algorithmNamed(algorithmName)
	if keySize == 0 {
		keySize = algorithm.DefaultSize
	}

	params, err := commandHandler.provider.GenerateParameters(algorithm, &crypto.DomainParameterGeneratorParameters{Bits: keySize, Generator: generator})
	if err != nil {
		commandHandler.logger.Error(err)
		return
	}

	encoded, err := commandHandler.provider.EncodeParameters(params)
	if err != nil {
		commandHandler.logger.Error(err)
		return
	}

	if err := writeFile(outputFilePath, encoded); err != nil {
		commandHandler.logger.Error(err)
		return
	}
	commandHandler.logger.Info("Generated ", params.Bits(), " bit ", algorithm, " parameters at ", outputFilePath)
}

// ListAlgorithmsCmd prints the algorithm table with the scopes of each entry
func (commandHandler *KeyCommandHandler) ListAlgorithmsCmd(cmd *cobra.Command, _ []string) {
	var err error
	for _, algorithm := range crypto.Algorithms() {
		scopes := make([]string, 0, len(algorithm.Scopes))
		for _, scope := range algorithm.Scopes {
			scopes = append(scopes, string(scope))
		}
		_, printErr := fmt.Fprintf(cmd.OutOrStdout(), "%-18s %s\n", algorithm.Name, strings.Join(scopes, ","))
		err = multierr.Append(err, printErr)
	}
	if err != nil {
		commandHandler.logger.Error(err)
	}
}

// InitKeyCommands registers key and parameter generation commands
func InitKeyCommands(rootCmd *cobra.Command, provider crypto.Provider, logger logger.Logger) {
	handler := NewKeyCommandHandler(provider, logger)

	var listAlgorithmsCmd = &cobra.Command{
		Use:   "algorithms",
		Short: "List supported algorithms and their scopes",
		Run:   handler.ListAlgorithmsCmd,
	}
	rootCmd.AddCommand(listAlgorithmsCmd)

	var generateKeyCmd = &cobra.Command{
		Use:   "generate-key",
		Short: "Generate a symmetric key",
		Run:   handler.GenerateKeyCmd,
	}
	generateKeyCmd.Flags().StringP("algorithm", "", "AES", "Symmetric algorithm, e.g. AES or ChaCha20-Poly1305")
	generateKeyCmd.Flags().IntP("key-size", "", 0, "Key size in bits (algorithm default when 0)")
	generateKeyCmd.Flags().StringP("key-dir", "", "", "Directory to store the key")
	rootCmd.AddCommand(generateKeyCmd)

	var generateKeyPairCmd = &cobra.Command{
		Use:   "generate-keypair",
		Short: "Generate an asymmetric key pair",
		Run:   handler.GenerateKeyPairCmd,
	}
	generateKeyPairCmd.Flags().StringP("algorithm", "", "EC", "Asymmetric algorithm, e.g. RSA, EC, ECDH, DH, X25519, Ed25519, ML-DSA-65")
	generateKeyPairCmd.Flags().IntP("key-size", "", 0, "Key, curve or prime size in bits (algorithm default when 0)")
	generateKeyPairCmd.Flags().StringP("curve", "", "", "Named curve for EC and ECDH, e.g. P-384")
	generateKeyPairCmd.Flags().StringP("parameters-file", "", "", "Path to PEM domain parameters to draw a DH pair from")
	generateKeyPairCmd.Flags().StringP("key-dir", "", "", "Directory to store the key pair")
	rootCmd.AddCommand(generateKeyPairCmd)

	var generateParametersCmd = &cobra.Command{
		Use:   "generate-parameters",
		Short: "Generate domain parameters",
		Run:   handler.GenerateParametersCmd,
	}
	generateParametersCmd.Flags().StringP("algorithm", "", "DH", "Algorithm to generate parameters for")
	generateParametersCmd.Flags().IntP("key-size", "", 0, "Prime size in bits (algorithm default when 0)")
	generateParametersCmd.Flags().IntP("generator", "", 0, "Generator, 2 or 5 (2 when 0)")
	generateParametersCmd.Flags().StringP("output-file", "", "", "Path to PEM output file")
	rootCmd.AddCommand(generateParametersCmd)
}
