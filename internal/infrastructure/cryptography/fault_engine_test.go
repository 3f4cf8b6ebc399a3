//go:build unit
// +build unit

package cryptography

import (
	"errors"
	"fmt"
	"math/big"

	"github.com/MGTheTrain/crypto-facade/internal/domain/crypto"
	"github.com/MGTheTrain/crypto-facade/internal/infrastructure/engine"
)

// faultEngine fails, or panics on, the nth fallible engine call after arm.
// Release calls are never faulted.
type faultEngine struct {
	*engine.SoftwareEngine

	calls     int
	failAt    int
	panics    bool
	trippedAt string
	injected  []crypto.EngineError
}

func newFaultEngine(inner *engine.SoftwareEngine) *faultEngine {
	return &faultEngine{SoftwareEngine: inner}
}

func (f *faultEngine) arm(n int, panics bool) {
	f.calls, f.failAt, f.panics, f.trippedAt = 0, n, panics, ""
}

func (f *faultEngine) disarm() { f.failAt = 0 }

// tripped names the call that was faulted, if any.
func (f *faultEngine) tripped() string { return f.trippedAt }

func (f *faultEngine) fault(fn string) error {
	if f.failAt == 0 {
		return nil
	}
	f.calls++
	if f.calls != f.failAt {
		return nil
	}
	f.trippedAt = fn
	if f.panics {
		panic(fmt.Sprintf("injected panic in %s", fn))
	}
	f.injected = append(f.injected, crypto.EngineError{Code: 0xFF000001, Library: "fault", Function: fn, Reason: "injected"})
	return errors.New("injected failure")
}

func (f *faultEngine) PopError() (crypto.EngineError, bool) {
	if len(f.injected) > 0 {
		entry := f.injected[0]
		f.injected = f.injected[1:]
		return entry, true
	}
	return f.SoftwareEngine.PopError()
}

func (f *faultEngine) LookupAlgorithm(name string) (crypto.AlgorithmID, error) {
	if err := f.fault("LookupAlgorithm"); err != nil {
		return crypto.AlgorithmIDUnknown, err
	}
	return f.SoftwareEngine.LookupAlgorithm(name)
}

func (f *faultEngine) NewGenerationContext(id crypto.AlgorithmID) (crypto.Handle, error) {
	if err := f.fault("NewGenerationContext"); err != nil {
		return crypto.NilHandle, err
	}
	return f.SoftwareEngine.NewGenerationContext(id)
}

func (f *faultEngine) NewGenerationContextFromParameters(params crypto.Handle) (crypto.Handle, error) {
	if err := f.fault("NewGenerationContextFromParameters"); err != nil {
		return crypto.NilHandle, err
	}
	return f.SoftwareEngine.NewGenerationContextFromParameters(params)
}

func (f *faultEngine) NewKeyContext(key crypto.Handle) (crypto.Handle, error) {
	if err := f.fault("NewKeyContext"); err != nil {
		return crypto.NilHandle, err
	}
	return f.SoftwareEngine.NewKeyContext(key)
}

func (f *faultEngine) KeygenInit(ctx crypto.Handle) error {
	if err := f.fault("KeygenInit"); err != nil {
		return err
	}
	return f.SoftwareEngine.KeygenInit(ctx)
}

func (f *faultEngine) ParamgenInit(ctx crypto.Handle) error {
	if err := f.fault("ParamgenInit"); err != nil {
		return err
	}
	return f.SoftwareEngine.ParamgenInit(ctx)
}

func (f *faultEngine) SetIntParameter(ctx crypto.Handle, name string, value int) error {
	if err := f.fault("SetIntParameter"); err != nil {
		return err
	}
	return f.SoftwareEngine.SetIntParameter(ctx, name, value)
}

func (f *faultEngine) SetStringParameter(ctx crypto.Handle, name, value string) error {
	if err := f.fault("SetStringParameter"); err != nil {
		return err
	}
	return f.SoftwareEngine.SetStringParameter(ctx, name, value)
}

func (f *faultEngine) Keygen(ctx crypto.Handle) (crypto.Handle, error) {
	if err := f.fault("Keygen"); err != nil {
		return crypto.NilHandle, err
	}
	return f.SoftwareEngine.Keygen(ctx)
}

func (f *faultEngine) Paramgen(ctx crypto.Handle) (crypto.Handle, error) {
	if err := f.fault("Paramgen"); err != nil {
		return crypto.NilHandle, err
	}
	return f.SoftwareEngine.Paramgen(ctx)
}

func (f *faultEngine) PublicKeyOnly(key crypto.Handle) (crypto.Handle, error) {
	if err := f.fault("PublicKeyOnly"); err != nil {
		return crypto.NilHandle, err
	}
	return f.SoftwareEngine.PublicKeyOnly(key)
}

func (f *faultEngine) KeyBits(key crypto.Handle) (int, error) {
	if err := f.fault("KeyBits"); err != nil {
		return 0, err
	}
	return f.SoftwareEngine.KeyBits(key)
}

func (f *faultEngine) IsPrivateKey(key crypto.Handle) (bool, error) {
	if err := f.fault("IsPrivateKey"); err != nil {
		return false, err
	}
	return f.SoftwareEngine.IsPrivateKey(key)
}

func (f *faultEngine) GetBigNumParameter(key crypto.Handle, name string) (*big.Int, error) {
	if err := f.fault("GetBigNumParameter"); err != nil {
		return nil, err
	}
	return f.SoftwareEngine.GetBigNumParameter(key, name)
}

func (f *faultEngine) NewParameters(id crypto.AlgorithmID, fields map[string]*big.Int) (crypto.Handle, error) {
	if err := f.fault("NewParameters"); err != nil {
		return crypto.NilHandle, err
	}
	return f.SoftwareEngine.NewParameters(id, fields)
}

func (f *faultEngine) EncodeKeyPEM(key crypto.Handle) ([]byte, error) {
	if err := f.fault("EncodeKeyPEM"); err != nil {
		return nil, err
	}
	return f.SoftwareEngine.EncodeKeyPEM(key)
}

func (f *faultEngine) DecodeKeyPEM(id crypto.AlgorithmID, data []byte) (crypto.Handle, error) {
	if err := f.fault("DecodeKeyPEM"); err != nil {
		return crypto.NilHandle, err
	}
	return f.SoftwareEngine.DecodeKeyPEM(id, data)
}

func (f *faultEngine) NewRandomData(size int) (crypto.Handle, error) {
	if err := f.fault("NewRandomData"); err != nil {
		return crypto.NilHandle, err
	}
	return f.SoftwareEngine.NewRandomData(size)
}

func (f *faultEngine) NewData(material []byte) (crypto.Handle, error) {
	if err := f.fault("NewData"); err != nil {
		return crypto.NilHandle, err
	}
	return f.SoftwareEngine.NewData(material)
}

func (f *faultEngine) DataBytes(data crypto.Handle) ([]byte, error) {
	if err := f.fault("DataBytes"); err != nil {
		return nil, err
	}
	return f.SoftwareEngine.DataBytes(data)
}

func (f *faultEngine) FetchCipher(name string, mode crypto.BlockMode, keyBits int) (crypto.Handle, error) {
	if err := f.fault("FetchCipher"); err != nil {
		return crypto.NilHandle, err
	}
	return f.SoftwareEngine.FetchCipher(name, mode, keyBits)
}

func (f *faultEngine) CipherBlockSize(cipher crypto.Handle) (int, error) {
	if err := f.fault("CipherBlockSize"); err != nil {
		return 0, err
	}
	return f.SoftwareEngine.CipherBlockSize(cipher)
}

func (f *faultEngine) NewCipherContext() (crypto.Handle, error) {
	if err := f.fault("NewCipherContext"); err != nil {
		return crypto.NilHandle, err
	}
	return f.SoftwareEngine.NewCipherContext()
}

func (f *faultEngine) CipherInit(ctx, cipher crypto.Handle, key, iv []byte, encrypt bool) error {
	if err := f.fault("CipherInit"); err != nil {
		return err
	}
	return f.SoftwareEngine.CipherInit(ctx, cipher, key, iv, encrypt)
}

func (f *faultEngine) CipherSetPadding(ctx crypto.Handle, enabled bool) error {
	if err := f.fault("CipherSetPadding"); err != nil {
		return err
	}
	return f.SoftwareEngine.CipherSetPadding(ctx, enabled)
}

func (f *faultEngine) CipherSetTagLength(ctx crypto.Handle, tagLength int) error {
	if err := f.fault("CipherSetTagLength"); err != nil {
		return err
	}
	return f.SoftwareEngine.CipherSetTagLength(ctx, tagLength)
}

func (f *faultEngine) CipherSetAAD(ctx crypto.Handle, aad []byte) error {
	if err := f.fault("CipherSetAAD"); err != nil {
		return err
	}
	return f.SoftwareEngine.CipherSetAAD(ctx, aad)
}

func (f *faultEngine) CipherUpdate(ctx crypto.Handle, out, in []byte) (int, error) {
	if err := f.fault("CipherUpdate"); err != nil {
		return 0, err
	}
	return f.SoftwareEngine.CipherUpdate(ctx, out, in)
}

func (f *faultEngine) CipherFinal(ctx crypto.Handle, out []byte) (int, error) {
	if err := f.fault("CipherFinal"); err != nil {
		return 0, err
	}
	return f.SoftwareEngine.CipherFinal(ctx, out)
}

func (f *faultEngine) EncryptInit(ctx crypto.Handle) error {
	if err := f.fault("EncryptInit"); err != nil {
		return err
	}
	return f.SoftwareEngine.EncryptInit(ctx)
}

func (f *faultEngine) DecryptInit(ctx crypto.Handle) error {
	if err := f.fault("DecryptInit"); err != nil {
		return err
	}
	return f.SoftwareEngine.DecryptInit(ctx)
}

func (f *faultEngine) SetPadding(ctx crypto.Handle, padding crypto.Padding, digest string) error {
	if err := f.fault("SetPadding"); err != nil {
		return err
	}
	return f.SoftwareEngine.SetPadding(ctx, padding, digest)
}

func (f *faultEngine) Encrypt(ctx crypto.Handle, out, in []byte) (int, error) {
	if err := f.fault("Encrypt"); err != nil {
		return 0, err
	}
	return f.SoftwareEngine.Encrypt(ctx, out, in)
}

func (f *faultEngine) Decrypt(ctx crypto.Handle, out, in []byte) (int, error) {
	if err := f.fault("Decrypt"); err != nil {
		return 0, err
	}
	return f.SoftwareEngine.Decrypt(ctx, out, in)
}

func (f *faultEngine) DeriveInit(ctx crypto.Handle) error {
	if err := f.fault("DeriveInit"); err != nil {
		return err
	}
	return f.SoftwareEngine.DeriveInit(ctx)
}

func (f *faultEngine) DeriveSetPeer(ctx, peer crypto.Handle) error {
	if err := f.fault("DeriveSetPeer"); err != nil {
		return err
	}
	return f.SoftwareEngine.DeriveSetPeer(ctx, peer)
}

func (f *faultEngine) Derive(ctx crypto.Handle, out []byte) (int, error) {
	if err := f.fault("Derive"); err != nil {
		return 0, err
	}
	return f.SoftwareEngine.Derive(ctx, out)
}

func (f *faultEngine) NewDigestContext() (crypto.Handle, error) {
	if err := f.fault("NewDigestContext"); err != nil {
		return crypto.NilHandle, err
	}
	return f.SoftwareEngine.NewDigestContext()
}

func (f *faultEngine) DigestInit(ctx crypto.Handle, digest string) error {
	if err := f.fault("DigestInit"); err != nil {
		return err
	}
	return f.SoftwareEngine.DigestInit(ctx, digest)
}

func (f *faultEngine) DigestUpdate(ctx crypto.Handle, data []byte) error {
	if err := f.fault("DigestUpdate"); err != nil {
		return err
	}
	return f.SoftwareEngine.DigestUpdate(ctx, data)
}

func (f *faultEngine) DigestSize(ctx crypto.Handle) (int, error) {
	if err := f.fault("DigestSize"); err != nil {
		return 0, err
	}
	return f.SoftwareEngine.DigestSize(ctx)
}

func (f *faultEngine) DigestFinal(ctx crypto.Handle, out []byte) (int, error) {
	if err := f.fault("DigestFinal"); err != nil {
		return 0, err
	}
	return f.SoftwareEngine.DigestFinal(ctx, out)
}

func (f *faultEngine) DigestSignInit(ctx crypto.Handle, digest string, key crypto.Handle, padding crypto.Padding) error {
	if err := f.fault("DigestSignInit"); err != nil {
		return err
	}
	return f.SoftwareEngine.DigestSignInit(ctx, digest, key, padding)
}

func (f *faultEngine) DigestSign(ctx crypto.Handle, out, data []byte) (int, error) {
	if err := f.fault("DigestSign"); err != nil {
		return 0, err
	}
	return f.SoftwareEngine.DigestSign(ctx, out, data)
}

func (f *faultEngine) DigestVerifyInit(ctx crypto.Handle, digest string, key crypto.Handle, padding crypto.Padding) error {
	if err := f.fault("DigestVerifyInit"); err != nil {
		return err
	}
	return f.SoftwareEngine.DigestVerifyInit(ctx, digest, key, padding)
}

func (f *faultEngine) DigestVerify(ctx crypto.Handle, signature, data []byte) (bool, error) {
	if err := f.fault("DigestVerify"); err != nil {
		return false, err
	}
	return f.SoftwareEngine.DigestVerify(ctx, signature, data)
}
