//go:build unit
// +build unit

package commands

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/MGTheTrain/crypto-facade/internal/infrastructure/cryptography"
	"github.com/MGTheTrain/crypto-facade/internal/infrastructure/engine"
	"github.com/MGTheTrain/crypto-facade/internal/pkg/testutil"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type cli struct {
	t        *testing.T
	engine   *engine.SoftwareEngine
	provider *cryptography.Provider
	dir      string
}

func setupCLI(t *testing.T) *cli {
	t.Helper()

	log := testutil.SetupTestLogger(t)
	software, err := engine.NewSoftwareEngine(testutil.DefaultEngineSettings(), log)
	require.NoError(t, err)
	provider, err := cryptography.NewProvider(software, log)
	require.NoError(t, err)

	t.Cleanup(func() {
		assert.Zero(t, software.LiveHandles(), "every command releases its handles")
	})
	return &cli{t: t, engine: software, provider: provider, dir: t.TempDir()}
}

// run executes one command line against a fresh command tree and returns its output
func (c *cli) run(args ...string) string {
	c.t.Helper()

	log := testutil.SetupTestLogger(c.t)
	root := &cobra.Command{Use: "crypto-facade-cli"}
	InitKeyCommands(root, c.provider, log)
	InitCipherCommands(root, c.provider, log)
	InitSignatureCommands(root, c.provider, log, "SHA-256")

	var out bytes.Buffer
	root.SetOut(&out)
	root.SetArgs(args)
	require.NoError(c.t, root.Execute())
	return out.String()
}

func (c *cli) path(name string) string {
	return filepath.Join(c.dir, name)
}

func (c *cli) write(name, content string) string {
	c.t.Helper()
	return testutil.WriteTestFile(c.t, c.dir, name, []byte(content))
}

func (c *cli) read(path string) []byte {
	c.t.Helper()
	data, err := os.ReadFile(path)
	require.NoError(c.t, err)
	return data
}

// only returns the single file in the key directory matching suffix
func (c *cli) only(dir, suffix string) string {
	c.t.Helper()
	matches, err := filepath.Glob(filepath.Join(dir, "*"+suffix))
	require.NoError(c.t, err)
	require.Len(c.t, matches, 1)
	return matches[0]
}

func TestCipherCommands_SymmetricRoundTrip(t *testing.T) {
	tests := []struct {
		name      string
		algorithm string
		keySize   string
		extra     []string
	}{
		{"AES default CBC", "AES", "0", nil},
		{"AES-128 CTR", "AES", "128", []string{"--block-mode", "CTR"}},
		{"AES GCM with associated data", "AES", "256", []string{"--block-mode", "GCM"}},
		{"ChaCha20-Poly1305", "ChaCha20-Poly1305", "0", nil},
		{"AES-192 ECB", "AES", "192", []string{"--block-mode", "ECB"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := setupCLI(t)
			keyDir := t.TempDir()
			c.run("generate-key", "--algorithm", tt.algorithm, "--key-size", tt.keySize, "--key-dir", keyDir)
			key := c.only(keyDir, "-symmetric-key.bin")

			input := c.write("plain.txt", "This is a secret that spans more than one block")
			aad := c.write("aad.txt", "header")
			extra := tt.extra
			if strings.Contains(tt.name, "associated") {
				extra = append(extra, "--aad-file", aad)
			}

			encryptArgs := append([]string{"encrypt", "--algorithm", tt.algorithm, "--key", key,
				"--input-file", input, "--output-file", c.path("cipher.bin")}, extra...)
			c.run(encryptArgs...)
			assert.NotEqual(t, c.read(input), c.read(c.path("cipher.bin")))

			decryptArgs := append([]string{"decrypt", "--algorithm", tt.algorithm, "--key", key,
				"--input-file", c.path("cipher.bin"), "--output-file", c.path("plain.out")}, extra...)
			c.run(decryptArgs...)
			assert.Equal(t, c.read(input), c.read(c.path("plain.out")))
		})
	}
}

func TestCipherCommands_ExplicitIV(t *testing.T) {
	c := setupCLI(t)
	keyDir := t.TempDir()
	c.run("generate-key", "--key-size", "128", "--key-dir", keyDir)
	key := c.only(keyDir, "-symmetric-key.bin")
	input := c.write("plain.txt", "sixteen byte msg")
	iv := "000102030405060708090a0b0c0d0e0f"

	c.run("encrypt", "--key", key, "--iv", iv, "--padding", "NONE", "--input-file", input, "--output-file", c.path("cipher.bin"))
	assert.Len(t, c.read(c.path("cipher.bin")), 16, "no iv prefix and no padding block")

	c.run("decrypt", "--key", key, "--iv", iv, "--padding", "NONE", "--input-file", c.path("cipher.bin"), "--output-file", c.path("plain.out"))
	assert.Equal(t, "sixteen byte msg", string(c.read(c.path("plain.out"))))
}

func TestCipherCommands_RSA(t *testing.T) {
	c := setupCLI(t)
	keyDir := t.TempDir()
	c.run("generate-keypair", "--algorithm", "RSA", "--key-size", "1024", "--key-dir", keyDir)
	private := c.only(keyDir, "-private-key.pem")
	public := c.only(keyDir, "-public-key.pem")
	assert.Contains(t, string(c.read(public)), "PUBLIC KEY")

	input := c.write("session.key", "session key")
	c.run("encrypt", "--algorithm", "RSA", "--padding", "OAEP", "--key", public, "--input-file", input, "--output-file", c.path("cipher.bin"))
	assert.Len(t, c.read(c.path("cipher.bin")), 128)

	c.run("decrypt", "--algorithm", "RSA", "--padding", "OAEP", "--key", private, "--input-file", c.path("cipher.bin"), "--output-file", c.path("plain.out"))
	assert.Equal(t, "session key", string(c.read(c.path("plain.out"))))
}

func TestSignatureCommands_SignVerify(t *testing.T) {
	tests := []struct {
		algorithm string
		extra     []string
	}{
		{"EC", []string{"--curve", "P-384"}},
		{"Ed25519", nil},
		{"ML-DSA-65", nil},
		{"RSA", []string{"--key-size", "1024"}},
	}

	for _, tt := range tests {
		t.Run(tt.algorithm, func(t *testing.T) {
			c := setupCLI(t)
			keyDir := t.TempDir()
			c.run(append([]string{"generate-keypair", "--algorithm", tt.algorithm, "--key-dir", keyDir}, tt.extra...)...)
			private := c.only(keyDir, "-private-key.pem")
			public := c.only(keyDir, "-public-key.pem")

			input := c.write("message.txt", "signed content")
			c.run("sign", "--algorithm", tt.algorithm, "--private-key", private, "--input-file", input, "--output-file", c.path("message.sig"))

			out := c.run("verify", "--algorithm", tt.algorithm, "--public-key", public, "--input-file", input, "--signature-file", c.path("message.sig"))
			assert.Equal(t, "valid\n", out)

			tampered := c.write("tampered.txt", "signed content!")
			out = c.run("verify", "--algorithm", tt.algorithm, "--public-key", public, "--input-file", tampered, "--signature-file", c.path("message.sig"))
			assert.Equal(t, "invalid\n", out)
		})
	}
}

func TestSignatureCommands_Agree(t *testing.T) {
	c := setupCLI(t)
	aliceDir, bobDir := t.TempDir(), t.TempDir()
	c.run("generate-keypair", "--algorithm", "X25519", "--key-dir", aliceDir)
	c.run("generate-keypair", "--algorithm", "X25519", "--key-dir", bobDir)

	c.run("agree", "--private-key", c.only(aliceDir, "-private-key.pem"), "--peer-key", c.only(bobDir, "-public-key.pem"), "--output-file", c.path("alice.secret"))
	c.run("agree", "--private-key", c.only(bobDir, "-private-key.pem"), "--peer-key", c.only(aliceDir, "-public-key.pem"), "--output-file", c.path("bob.secret"))

	alice := c.read(c.path("alice.secret"))
	assert.Len(t, alice, 64)
	assert.Equal(t, alice, c.read(c.path("bob.secret")))
}

func TestKeyCommands_DHFromParameters(t *testing.T) {
	c := setupCLI(t)
	c.run("generate-parameters", "--key-size", "512", "--output-file", c.path("dh.pem"))
	assert.Contains(t, string(c.read(c.path("dh.pem"))), "DH PARAMETERS")

	aliceDir, bobDir := t.TempDir(), t.TempDir()
	c.run("generate-keypair", "--algorithm", "DH", "--parameters-file", c.path("dh.pem"), "--key-dir", aliceDir)
	c.run("generate-keypair", "--algorithm", "DH", "--parameters-file", c.path("dh.pem"), "--key-dir", bobDir)

	c.run("agree", "--algorithm", "DH", "--private-key", c.only(aliceDir, "-private-key.pem"), "--peer-key", c.only(bobDir, "-public-key.pem"), "--output-file", c.path("alice.secret"))
	c.run("agree", "--algorithm", "DH", "--private-key", c.only(bobDir, "-private-key.pem"), "--peer-key", c.only(aliceDir, "-public-key.pem"), "--output-file", c.path("bob.secret"))
	assert.Equal(t, c.read(c.path("alice.secret")), c.read(c.path("bob.secret")))
}

func TestKeyCommands_RejectedGenerationWritesNothing(t *testing.T) {
	c := setupCLI(t)
	keyDir := t.TempDir()

	c.run("generate-key", "--algorithm", "AES", "--key-size", "100", "--key-dir", keyDir)
	c.run("generate-key", "--algorithm", "SHA-256", "--key-dir", keyDir)
	c.run("generate-keypair", "--algorithm", "RSA", "--key-size", "1000", "--key-dir", keyDir)

	entries, err := os.ReadDir(keyDir)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestSignatureCommands_Hash(t *testing.T) {
	c := setupCLI(t)
	input := c.write("abc.txt", "abc")

	assert.Equal(t, "ba7816bf8f01cfea414140de5dae2223b00361a396177a9cb410ff61f20015ad\n", c.run("hash", "--input-file", input))
	assert.Empty(t, c.run("hash", "--algorithm", "AES", "--input-file", input), "AES is no digest")
}

func TestKeyCommands_ListAlgorithms(t *testing.T) {
	c := setupCLI(t)
	out := c.run("algorithms")

	assert.Contains(t, out, "AES")
	assert.Contains(t, out, "cipher,key-generator")
	assert.Contains(t, out, "ML-DSA-65")
}
