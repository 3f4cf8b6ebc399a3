package commands

import (
	"encoding/hex"
	"fmt"
	"strings"

	"github.com/MGTheTrain/crypto-facade/internal/domain/crypto"
	"github.com/MGTheTrain/crypto-facade/internal/pkg/logger"

	"github.com/spf13/cobra"
)

// SignatureCommandHandler signs and verifies files, agrees on shared secrets and hashes files
type SignatureCommandHandler struct {
	provider crypto.Provider
	logger   logger.Logger
}

// NewSignatureCommandHandler creates a SignatureCommandHandler driving provider
func NewSignatureCommandHandler(provider crypto.Provider, logger logger.Logger) *SignatureCommandHandler {
	return &SignatureCommandHandler{
		provider: provider,
		logger:   logger,
	}
}

func signatureParameters(cmd *cobra.Command, mode crypto.Mode) (*crypto.SignatureParameters, error) {
	digest, err := cmd.Flags().GetString("digest")
	if err != nil {
		return nil, fmt.Errorf("invalid digest flag: %w", err)
	}
	padding, err := cmd.Flags().GetString("padding")
	if err != nil {
		return nil, fmt.Errorf("invalid padding flag: %w", err)
	}
	return &crypto.SignatureParameters{Mode: mode, Digest: digest, Padding: crypto.Padding(padding)}, nil
}

// SignCmd signs the contents of a file and writes the hex signature
func (commandHandler *SignatureCommandHandler) SignCmd(cmd *cobra.Command, _ []string) {
	algorithmName, err := cmd.Flags().GetString("algorithm")
	if err != nil {
		commandHandler.logger.Error("invalid algorithm flag ", err)
		return
	}
	inputFilePath, err := cmd.Flags().GetString("input-file")
	if err != nil {
		commandHandler.logger.Error("invalid input-file flag ", err)
		return
	}
	privateKeyFilePath, err := cmd.Flags().GetString("private-key")
	if err != nil {
		commandHandler.logger.Error("invalid private-key flag ", err)
		return
	}
	signatureFilePath, err := cmd.Flags().GetString("output-file")
	if err != nil {
		commandHandler.logger.Error("invalid output-file flag ", err)
		return
	}
	params, err := signatureParameters(cmd, crypto.ModeSign)
	if err != nil {
		commandHandler.logger.Error(err)
		return
	}

	fileContent, err := readFile(inputFilePath)
	if err != nil {
		commandHandler.logger.Error(err)
		return
	}

	privateKey, err := readKey(commandHandler.provider, algorithmNamed(algorithmName), crypto.KeyTypePrivate, privateKeyFilePath)
	if err != nil {
		commandHandler.logger.Error(err)
		return
	}
	defer privateKey.Close()

	signature, err := commandHandler.provider.Sign(privateKey, params, fileContent)
	if err != nil {
		commandHandler.logger.Error(err)
		return
	}

	if err := writeFile(signatureFilePath, []byte(hex.EncodeToString(signature))); err != nil {
		commandHandler.logger.Error(err)
		return
	}
	commandHandler.logger.Info("Signature written to ", signatureFilePath)
}

// VerifyCmd verifies the hex signature of a file's content and prints the verdict
func (commandHandler *SignatureCommandHandler) VerifyCmd(cmd *cobra.Command, _ []string) {
	algorithmName, err := cmd.Flags().GetString("algorithm")
	if err != nil {
		commandHandler.logger.Error("invalid algorithm flag ", err)
		return
	}
	inputFilePath, err := cmd.Flags().GetString("input-file")
	if err != nil {
		commandHandler.logger.Error("invalid input-file flag ", err)
		return
	}
	publicKeyPath, err := cmd.Flags().GetString("public-key")
	if err != nil {
		commandHandler.logger.Error("invalid public-key flag ", err)
		return
	}
	signatureFile, err := cmd.Flags().GetString("signature-file")
	if err != nil {
		commandHandler.logger.Error("invalid signature-file flag ", err)
		return
	}
	params, err := signatureParameters(cmd, crypto.ModeVerify)
	if err != nil {
		commandHandler.logger.Error(err)
		return
	}

	fileContent, err := readFile(inputFilePath)
	if err != nil {
		commandHandler.logger.Error(err)
		return
	}

	signatureHex, err := readFile(signatureFile)
	if err != nil {
		commandHandler.logger.Error(err)
		return
	}

	signature, err := hex.DecodeString(strings.TrimSpace(string(signatureHex)))
	if err != nil {
		commandHandler.logger.Error(err)
		return
	}

	publicKey, err := readKey(commandHandler.provider, algorithmNamed(algorithmName), crypto.KeyTypePublic, publicKeyPath)
	if err != nil {
		commandHandler.logger.Error(err)
		return
	}
	defer publicKey.Close()

	valid, err := commandHandler.provider.Verify(publicKey, params, signature, fileContent)
	if err != nil {
		commandHandler.logger.Error(err)
		return
	}

	verdict := "invalid"
	if valid {
		verdict = "valid"
	}
	if _, err := fmt.Fprintln(cmd.OutOrStdout(), verdict); err != nil {
		commandHandler.logger.Error(err)
		return
	}
	commandHandler.logger.Info("Signature ", verdict, " for ", inputFilePath)
}

// AgreeCmd derives the shared secret of a private key and a peer public key and writes it as hex
func (commandHandler *SignatureCommandHandler) AgreeCmd(cmd *cobra.Command, _ []string) {
	algorithmName, err := cmd.Flags().GetString("algorithm")
	if err != nil {
		commandHandler.logger.Error("invalid algorithm flag ", err)
		return
	}
	privateKeyFilePath, err := cmd.Flags().GetString("private-key")
	if err != nil {
		commandHandler.logger.Error("invalid private-key flag ", err)
		return
	}
	peerKeyFilePath, err := cmd.Flags().GetString("peer-key")
	if err != nil {
		commandHandler.logger.Error("invalid peer-key flag ", err)
		return
	}
	outputFilePath, err := cmd.Flags().GetString("output-file")
	if err != nil {
		commandHandler.logger.Error("invalid output-file flag ", err)
		return
	}

	algorithm := algorithmNamed(algorithmName)

	privateKey, err := readKey(commandHandler.provider, algorithm, crypto.KeyTypePrivate, privateKeyFilePath)
	if err != nil {
		commandHandler.logger.Error(err)
		return
	}
	defer privateKey.Close()

	peerKey, err := readKey(commandHandler.provider, algorithm, crypto.KeyTypePublic, peerKeyFilePath)
	if err != nil {
		commandHandler.logger.Error(err)
		return
	}
	defer peerKey.Close()

	secret, err := commandHandler.provider.Agree(privateKey, peerKey)
	if err != nil {
		commandHandler.logger.Error(err)
		return
	}

	if err := writeFile(outputFilePath, []byte(hex.EncodeToString(secret))); err != nil {
		commandHandler.logger.Error(err)
		return
	}
	commandHandler.logger.Info("Shared secret written to ", outputFilePath)
}

// HashCmd prints the hex digest of a file
func (commandHandler *SignatureCommandHandler) HashCmd(cmd *cobra.Command, _ []string) {
	algorithmName, err := cmd.Flags().GetString("algorithm")
	if err != nil {
		commandHandler.logger.Error("invalid algorithm flag ", err)
		return
	}
	inputFilePath, err := cmd.Flags().GetString("input-file")
	if err != nil {
		commandHandler.logger.Error("invalid input-file flag ", err)
		return
	}

	fileContent, err := readFile(inputFilePath)
	if err != nil {
		commandHandler.logger.Error(err)
		return
	}

	digest, err := commandHandler.provider.Hash(algorithmNamed(algorithmName), fileContent)
	if err != nil {
		commandHandler.logger.Error(err)
		return
	}

	if _, err := fmt.Fprintln(cmd.OutOrStdout(), hex.EncodeToString(digest)); err != nil {
		commandHandler.logger.Error(err)
	}
}

// InitSignatureCommands registers sign, verify, agree and hash
func InitSignatureCommands(rootCmd *cobra.Command, provider crypto.Provider, logger logger.Logger, defaultDigest string) {
	handler := NewSignatureCommandHandler(provider, logger)

	var signCmd = &cobra.Command{
		Use:   "sign",
		Short: "Sign a file",
		Run:   handler.SignCmd,
	}
	signCmd.Flags().StringP("algorithm", "", "EC", "Signature algorithm, e.g. RSA, EC, Ed25519 or ML-DSA-65")
	signCmd.Flags().StringP("input-file", "", "", "Path to file that needs to be signed")
	signCmd.Flags().StringP("private-key", "", "", "Path to PEM private key")
	signCmd.Flags().StringP("output-file", "", "", "Path to signature output file")
	signCmd.Flags().StringP("digest", "", "", "Digest (algorithm default when empty)")
	signCmd.Flags().StringP("padding", "", "", "RSA padding, PKCS1 or PSS (algorithm default when empty)")
	rootCmd.AddCommand(signCmd)

	var verifyCmd = &cobra.Command{
		Use:   "verify",
		Short: "Verify the signature of a file",
		Run:   handler.VerifyCmd,
	}
	verifyCmd.Flags().StringP("algorithm", "", "EC", "Signature algorithm, e.g. RSA, EC, Ed25519 or ML-DSA-65")
	verifyCmd.Flags().StringP("input-file", "", "", "Path to file which needs to be validated")
	verifyCmd.Flags().StringP("public-key", "", "", "Path to PEM public key")
	verifyCmd.Flags().StringP("signature-file", "", "", "Path to signature input file")
	verifyCmd.Flags().StringP("digest", "", "", "Digest (algorithm default when empty)")
	verifyCmd.Flags().StringP("padding", "", "", "RSA padding, PKCS1 or PSS (algorithm default when empty)")
	rootCmd.AddCommand(verifyCmd)

	var agreeCmd = &cobra.Command{
		Use:   "agree",
		Short: "Derive a shared secret",
		Run:   handler.AgreeCmd,
	}
	agreeCmd.Flags().StringP("algorithm", "", "X25519", "Key agreement algorithm, e.g. X25519, ECDH or DH")
	agreeCmd.Flags().StringP("private-key", "", "", "Path to own PEM private key")
	agreeCmd.Flags().StringP("peer-key", "", "", "Path to the peer's PEM public key")
	agreeCmd.Flags().StringP("output-file", "", "", "Path to hex secret output file")
	rootCmd.AddCommand(agreeCmd)

	var hashCmd = &cobra.Command{
		Use:   "hash",
		Short: "Print the digest of a file",
		Run:   handler.HashCmd,
	}
	hashCmd.Flags().StringP("algorithm", "", defaultDigest, "Digest algorithm, e.g. SHA-256 or SHA3-512")
	hashCmd.Flags().StringP("input-file", "", "", "Path to file that needs to be hashed")
	rootCmd.AddCommand(hashCmd)
}
