package v1

import (
	"time"

	"github.com/MGTheTrain/crypto-facade/internal/domain/crypto"
	"github.com/MGTheTrain/crypto-facade/internal/domain/keys"
	"github.com/MGTheTrain/crypto-facade/internal/pkg/validators"

	"github.com/go-playground/validator/v10"
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	err := validators.Register(v, map[string]validator.Func{
		// sizes of algorithms outside the table are left to the engine
		"keysize": validators.KeySizeValidation(func(name string, bits int) bool {
			algorithm, ok := crypto.AlgorithmByName(name)
			return !ok || algorithm.SupportsSize(bits)
		}),
	})
	if err != nil {
		panic(err)
	}
	return v
}

// ErrorResponse carries a failure message
type ErrorResponse struct {
	Message string `json:"message"`
}

// InfoResponse carries an informational message
type InfoResponse struct {
	Message string `json:"message"`
}

// GenerateKeyRequest asks for a symmetric key or a key pair
type GenerateKeyRequest struct {
	Algorithm string `json:"algorithm" validate:"required"`
	KeySize   int    `json:"key_size" validate:"omitempty,keysize"`
	Curve     string `json:"curve" validate:"omitempty,oneof=P-256 P-384 P-521"`
}

// Validate checks the request
func (r *GenerateKeyRequest) Validate() error {
	return validate.Struct(r)
}

// CryptoKeyMetaResponse describes one catalog key
type CryptoKeyMetaResponse struct {
	ID              string    `json:"id"`
	KeyPairID       string    `json:"key_pair_id"`
	Algorithm       string    `json:"algorithm"`
	KeySize         int       `json:"key_size"`
	Type            string    `json:"type"`
	Engine          string    `json:"engine"`
	DateTimeCreated time.Time `json:"date_time_created"`
	UserID          string    `json:"user_id"`
}

func newCryptoKeyMetaResponse(meta *keys.CryptoKeyMeta) CryptoKeyMetaResponse {
	return CryptoKeyMetaResponse{
		ID:              meta.ID,
		KeyPairID:       meta.KeyPairID,
		Algorithm:       meta.Algorithm,
		KeySize:         meta.KeySize,
		Type:            meta.Type,
		Engine:          meta.Engine,
		DateTimeCreated: meta.DateTimeCreated,
		UserID:          meta.UserID,
	}
}

// CipherRequest encrypts or decrypts data. Byte fields are base64 in JSON.
type CipherRequest struct {
	Data      []byte `json:"data" validate:"required"`
	BlockMode string `json:"block_mode"`
	Padding   string `json:"padding"`
	IV        []byte `json:"iv"`
	TagLength int    `json:"tag_length"`
	AAD       []byte `json:"aad"`
}

// Validate checks the request
func (r *CipherRequest) Validate() error {
	return validate.Struct(r)
}

func (r *CipherRequest) parameters() *crypto.CipherParameters {
	return &crypto.CipherParameters{
		BlockMode: crypto.BlockMode(r.BlockMode),
		Padding:   crypto.Padding(r.Padding),
		IV:        r.IV,
		TagLength: r.TagLength,
	}
}

// CipherResponse carries the cipher output
type CipherResponse struct {
	Data []byte `json:"data"`
}

// SignRequest signs data
type SignRequest struct {
	Data    []byte `json:"data" validate:"required"`
	Padding string `json:"padding"`
	Digest  string `json:"digest"`
}

// Validate checks the request
func (r *SignRequest) Validate() error {
	return validate.Struct(r)
}

// SignResponse carries a signature
type SignResponse struct {
	Signature []byte `json:"signature"`
}

// VerifyRequest checks a signature over data
type VerifyRequest struct {
	Data      []byte `json:"data" validate:"required"`
	Signature []byte `json:"signature" validate:"required"`
	Padding   string `json:"padding"`
	Digest    string `json:"digest"`
}

// Validate checks the request
func (r *VerifyRequest) Validate() error {
	return validate.Struct(r)
}

// VerifyResponse reports whether the signature matched
type VerifyResponse struct {
	Valid bool `json:"valid"`
}

// AgreeRequest names the peer public key
type AgreeRequest struct {
	PeerKeyID string `json:"peer_key_id" validate:"required"`
}

// Validate checks the request
func (r *AgreeRequest) Validate() error {
	return validate.Struct(r)
}

// AgreeResponse carries the shared secret
type AgreeResponse struct {
	Secret []byte `json:"secret"`
}

// HashRequest digests data; an empty algorithm selects the server default
type HashRequest struct {
	Algorithm string `json:"algorithm"`
	Data      []byte `json:"data" validate:"required"`
}

// Validate checks the request
func (r *HashRequest) Validate() error {
	return validate.Struct(r)
}

// HashResponse carries a digest
type HashResponse struct {
	Algorithm string `json:"algorithm"`
	Digest    []byte `json:"digest"`
}

// ParametersRequest asks for domain parameters
type ParametersRequest struct {
	Algorithm string `json:"algorithm" validate:"required"`
	KeySize   int    `json:"key_size" validate:"omitempty,keysize"`
	Generator int    `json:"generator" validate:"omitempty,oneof=2 5"`
}

// Validate checks the request
func (r *ParametersRequest) Validate() error {
	return validate.Struct(r)
}

// AlgorithmResponse describes one algorithm table entry
type AlgorithmResponse struct {
	Name             string   `json:"name"`
	Scopes           []string `json:"scopes"`
	BlockModes       []string `json:"block_modes,omitempty"`
	Paddings         []string `json:"paddings,omitempty"`
	Digests          []string `json:"digests,omitempty"`
	DefaultBlockMode string   `json:"default_block_mode,omitempty"`
	DefaultPadding   string   `json:"default_padding,omitempty"`
	DefaultDigest    string   `json:"default_digest,omitempty"`
	DefaultKeySize   int      `json:"default_key_size,omitempty"`
}

func newAlgorithmResponse(algorithm *crypto.Algorithm) AlgorithmResponse {
	response := AlgorithmResponse{
		Name:             algorithm.Name,
		Digests:          algorithm.SupportedDigests,
		DefaultBlockMode: string(algorithm.DefaultBlockMode),
		DefaultPadding:   string(algorithm.DefaultPadding),
		DefaultDigest:    algorithm.DefaultDigest,
		DefaultKeySize:   algorithm.DefaultSize,
	}
	for _, scope := range algorithm.Scopes {
		response.Scopes = append(response.Scopes, string(scope))
	}
	for _, mode := range algorithm.SupportedBlockModes {
		response.BlockModes = append(response.BlockModes, string(mode))
	}
	for _, padding := range algorithm.SupportedPaddings {
		response.Paddings = append(response.Paddings, string(padding))
	}
	return response
}
