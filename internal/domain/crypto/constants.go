package crypto

// Scope declares an operation family an algorithm takes part in.
type Scope string

const (
	ScopeCipher             Scope = "cipher"
	ScopeKeypairGenerator   Scope = "keypair-generator"
	ScopeKeyGenerator       Scope = "key-generator"
	ScopeKeyAgreement       Scope = "key-agreement"
	ScopeParameterGenerator Scope = "parameter-generator"
	ScopeSignature          Scope = "signature"
	ScopeDigest             Scope = "digest"
)

// AllScopes lists every scope in a stable order
var AllScopes = []Scope{
	ScopeCipher,
	ScopeKeypairGenerator,
	ScopeKeyGenerator,
	ScopeKeyAgreement,
	ScopeParameterGenerator,
	ScopeSignature,
	ScopeDigest,
}

// BlockMode selects the mode of operation of a symmetric cipher. The zero value means unset.
type BlockMode string

const (
	BlockModeECB      BlockMode = "ECB"
	BlockModeCBC      BlockMode = "CBC"
	BlockModeCTR      BlockMode = "CTR"
	BlockModeGCM      BlockMode = "GCM"
	BlockModePoly1305 BlockMode = "POLY1305"
)

// Padding selects a padding scheme. The zero value means unset.
type Padding string

const (
	PaddingNone  Padding = "NONE"
	PaddingPKCS7 Padding = "PKCS7"
	PaddingPKCS1 Padding = "PKCS1"
	PaddingOAEP  Padding = "OAEP"
	PaddingPSS   Padding = "PSS"
)

// Mode is the direction of a cipher or signature operation.
type Mode string

const (
	ModeEncrypt Mode = "encrypt"
	ModeDecrypt Mode = "decrypt"
	ModeSign    Mode = "sign"
	ModeVerify  Mode = "verify"
)

// KeyType tags the role of a key.
type KeyType string

const (
	KeyTypeSymmetric KeyType = "symmetric"
	KeyTypePublic    KeyType = "public"
	KeyTypePrivate   KeyType = "private"
)

// Digest names
const (
	DigestSHA256   = "SHA-256"
	DigestSHA384   = "SHA-384"
	DigestSHA512   = "SHA-512"
	DigestSHA3_256 = "SHA3-256"
	DigestSHA3_512 = "SHA3-512"
)

// Curve names
const (
	CurveP256    = "P-256"
	CurveP384    = "P-384"
	CurveP521    = "P-521"
	CurveX25519  = "X25519"
	CurveEd25519 = "Ed25519"
)

// Engine parameter names understood by generation contexts
const (
	ParamBits        = "bits"
	ParamCurve       = "group"
	ParamPrimeLength = "pbits"
	ParamGenerator   = "generator"
)

// Big number fields of domain parameter handles
const (
	FieldPrime     = "p"
	FieldGenerator = "g"
)

// AlgorithmID is the numeric identifier an engine uses to create generation contexts.
type AlgorithmID int

const (
	AlgorithmIDUnknown AlgorithmID = iota
	AlgorithmIDAES
	AlgorithmIDChaCha20Poly1305
	AlgorithmIDRSA
	AlgorithmIDEC
	AlgorithmIDECDH
	AlgorithmIDDH
	AlgorithmIDX25519
	AlgorithmIDEd25519
	AlgorithmIDMLDSA65
	AlgorithmIDSHA256
	AlgorithmIDSHA384
	AlgorithmIDSHA512
	AlgorithmIDSHA3_256
	AlgorithmIDSHA3_512
)

// CurveForSize maps a NIST prime curve bit size to its name.
func CurveForSize(bits int) (string, bool) {
	switch bits {
	case 256:
		return CurveP256, true
	case 384:
		return CurveP384, true
	case 521:
		return CurveP521, true
	default:
		return "", false
	}
}

// SizeForCurve is the inverse of CurveForSize.
func SizeForCurve(curve string) (int, bool) {
	switch curve {
	case CurveP256:
		return 256, true
	case CurveP384:
		return 384, true
	case CurveP521:
		return 521, true
	default:
		return 0, false
	}
}
