package commands

import (
	"encoding/hex"
	"fmt"

	"github.com/MGTheTrain/crypto-facade/internal/domain/crypto"
	"github.com/MGTheTrain/crypto-facade/internal/pkg/logger"

	"github.com/spf13/cobra"
)

// CipherCommandHandler encrypts and decrypts files with symmetric keys or RSA key pairs
type CipherCommandHandler struct {
	provider crypto.Provider
	logger   logger.Logger
}

// NewCipherCommandHandler creates a CipherCommandHandler driving provider
func NewCipherCommandHandler(provider crypto.Provider, logger logger.Logger) *CipherCommandHandler {
	return &CipherCommandHandler{
		provider: provider,
		logger:   logger,
	}
}

type cipherFlags struct {
	algorithm      *crypto.Algorithm
	params         *crypto.CipherParameters
	keyPath        string
	inputFilePath  string
	outputFilePath string
	aadFilePath    string
}

func readCipherFlags(cmd *cobra.Command, mode crypto.Mode) (*cipherFlags, error) {
	flags := cmd.Flags()
	algorithmName, err := flags.GetString("algorithm")
	if err != nil {
		return nil, fmt.Errorf("invalid algorithm flag: %w", err)
	}
	blockMode, err := flags.GetString("block-mode")
	if err != nil {
		return nil, fmt.Errorf("invalid block-mode flag: %w", err)
	}
	padding, err := flags.GetString("padding")
	if err != nil {
		return nil, fmt.Errorf("invalid padding flag: %w", err)
	}
	tagLength, err := flags.GetInt("tag-length")
	if err != nil {
		return nil, fmt.Errorf("invalid tag-length flag: %w", err)
	}
	ivHex, err := flags.GetString("iv")
	if err != nil {
		return nil, fmt.Errorf("invalid iv flag: %w", err)
	}
	parsed := &cipherFlags{
		algorithm: algorithmNamed(algorithmName),
		params: &crypto.CipherParameters{
			Mode:      mode,
			BlockMode: crypto.BlockMode(blockMode),
			Padding:   crypto.Padding(padding),
			TagLength: tagLength,
		},
	}
	if ivHex != "" {
		if parsed.params.IV, err = hex.DecodeString(ivHex); err != nil {
			return nil, fmt.Errorf("invalid iv flag: %w", err)
		}
	}
	if parsed.keyPath, err = flags.GetString("key"); err != nil {
		return nil, fmt.Errorf("invalid key flag: %w", err)
	}
	if parsed.inputFilePath, err = flags.GetString("input-file"); err != nil {
		return nil, fmt.Errorf("invalid input-file flag: %w", err)
	}
	if parsed.outputFilePath, err = flags.GetString("output-file"); err != nil {
		return nil, fmt.Errorf("invalid output-file flag: %w", err)
	}
	if parsed.aadFilePath, err = flags.GetString("aad-file"); err != nil {
		return nil, fmt.Errorf("invalid aad-file flag: %w", err)
	}
	return parsed, nil
}

// keyType picks the key form a cipher call needs: raw bytes for symmetric
// algorithms, the public half to encrypt and the private half to decrypt.
func (f *cipherFlags) keyType() crypto.KeyType {
	switch {
	case f.algorithm.HasScope(crypto.ScopeKeyGenerator) && !f.algorithm.IsUnchecked():
		return crypto.KeyTypeSymmetric
	case f.params.Mode == crypto.ModeEncrypt:
		return crypto.KeyTypePublic
	default:
		return crypto.KeyTypePrivate
	}
}

func (f *cipherFlags) ivSize() int {
	if f.keyType() != crypto.KeyTypeSymmetric {
		return 0
	}
	mode := f.params.BlockMode
	if mode == "" {
		mode = f.algorithm.DefaultBlockMode
	}
	return ivSize(mode)
}

func (commandHandler *CipherCommandHandler) run(cmd *cobra.Command, mode crypto.Mode) error {
	flags, err := readCipherFlags(cmd, mode)
	if err != nil {
		return err
	}

	input, err := readFile(flags.inputFilePath)
	if err != nil {
		return err
	}
	var aad []byte
	if flags.aadFilePath != "" {
		if aad, err = readFile(flags.aadFilePath); err != nil {
			return err
		}
	}

	// A generated IV is written in front of the ciphertext and read back from there.
	var prefix []byte
	if size := flags.ivSize(); size > 0 && flags.params.IV == nil {
		switch mode {
		case crypto.ModeEncrypt:
			if flags.params.IV, err = randomBytes(size); err != nil {
				return err
			}
			prefix = flags.params.IV
		case crypto.ModeDecrypt:
			if len(input) < size {
				return fmt.Errorf("%s is shorter than its %d byte iv", flags.inputFilePath, size)
			}
			flags.params.IV, input = input[:size], input[size:]
		}
	}

	key, err := readKey(commandHandler.provider, flags.algorithm, flags.keyType(), flags.keyPath)
	if err != nil {
		return err
	}
	defer key.Close()

	output, err := commandHandler.provider.Cipher(key, flags.params, input, aad)
	if err != nil {
		return err
	}

	return writeFile(flags.outputFilePath, append(prefix, output...))
}

// EncryptCmd encrypts a file
func (commandHandler *CipherCommandHandler) EncryptCmd(cmd *cobra.Command, _ []string) {
	if err := commandHandler.run(cmd, crypto.ModeEncrypt); err != nil {
		commandHandler.logger.Error(err)
		return
	}
	commandHandler.logger.Info("Encrypted data written to ", cmd.Flag("output-file").Value)
}

// DecryptCmd decrypts a file
func (commandHandler *CipherCommandHandler) DecryptCmd(cmd *cobra.Command, _ []string) {
	if err := commandHandler.run(cmd, crypto.ModeDecrypt); err != nil {
		commandHandler.logger.Error(err)
		return
	}
	commandHandler.logger.Info("Decrypted data written to ", cmd.Flag("output-file").Value)
}

func addCipherFlags(cmd *cobra.Command) {
	cmd.Flags().StringP("algorithm", "", "AES", "Cipher algorithm, e.g. AES, ChaCha20-Poly1305 or RSA")
	cmd.Flags().StringP("key", "", "", "Path to the symmetric key, or to the public (encrypt) or private (decrypt) PEM key")
	cmd.Flags().StringP("input-file", "", "", "Path to input file")
	cmd.Flags().StringP("output-file", "", "", "Path to output file")
	cmd.Flags().StringP("block-mode", "", "", "Block mode, e.g. CBC or GCM (algorithm default when empty)")
	cmd.Flags().StringP("padding", "", "", "Padding, e.g. PKCS7 or OAEP (algorithm default when empty)")
	cmd.Flags().IntP("tag-length", "", 0, "AEAD tag length in bytes (16 when 0)")
	cmd.Flags().StringP("iv", "", "", "Hex IV or nonce; generated and prefixed to the ciphertext when empty")
	cmd.Flags().StringP("aad-file", "", "", "Path to associated data for AEAD modes")
}

// InitCipherCommands registers the encrypt and decrypt commands
func InitCipherCommands(rootCmd *cobra.Command, provider crypto.Provider, logger logger.Logger) {
	handler := NewCipherCommandHandler(provider, logger)

	var encryptCmd = &cobra.Command{
		Use:   "encrypt",
		Short: "Encrypt a file",
		Run:   handler.EncryptCmd,
	}
	addCipherFlags(encryptCmd)
	rootCmd.AddCommand(encryptCmd)

	var decryptCmd = &cobra.Command{
		Use:   "decrypt",
		Short: "Decrypt a file",
		Run:   handler.DecryptCmd,
	}
	addCipherFlags(decryptCmd)
	rootCmd.AddCommand(decryptCmd)
}
