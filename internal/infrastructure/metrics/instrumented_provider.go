package metrics

import (
	"time"

	"github.com/MGTheTrain/crypto-facade/internal/domain/crypto"
)

// InstrumentedProvider counts and times every call of the provider it wraps
type InstrumentedProvider struct {
	next    crypto.Provider
	metrics *Metrics
}

var _ crypto.Provider = (*InstrumentedProvider)(nil)

// NewInstrumentedProvider wraps next
func NewInstrumentedProvider(next crypto.Provider, metrics *Metrics) *InstrumentedProvider {
	return &InstrumentedProvider{next: next, metrics: metrics}
}

func name(algorithm *crypto.Algorithm) string {
	if algorithm == nil {
		return "none"
	}
	return algorithm.Name
}

func keyName(key *crypto.Key) string {
	if key == nil {
		return "none"
	}
	return name(key.Algorithm())
}

func (p *InstrumentedProvider) EngineName() string { return p.next.EngineName() }

func (p *InstrumentedProvider) GenerateKey(algorithm *crypto.Algorithm, params *crypto.KeyGeneratorParameters) (*crypto.Key, error) {
	started := time.Now()
	key, err := p.next.GenerateKey(algorithm, params)
	p.metrics.Observe("generate_key", name(algorithm), started, err)
	return key, err
}

func (p *InstrumentedProvider) GenerateKeyPair(algorithm *crypto.Algorithm, params *crypto.KeyPairGeneratorParameters) (*crypto.KeyPair, error) {
	started := time.Now()
	pair, err := p.next.GenerateKeyPair(algorithm, params)
	p.metrics.Observe("generate_key_pair", name(algorithm), started, err)
	return pair, err
}

func (p *InstrumentedProvider) GenerateKeyPairFromParameters(params *crypto.DomainParameters) (*crypto.KeyPair, error) {
	algorithm := "none"
	if params != nil {
		algorithm = name(params.Algorithm())
	}
	started := time.Now()
	pair, err := p.next.GenerateKeyPairFromParameters(params)
	p.metrics.Observe("generate_key_pair", algorithm, started, err)
	return pair, err
}

func (p *InstrumentedProvider) GenerateParameters(algorithm *crypto.Algorithm, params *crypto.DomainParameterGeneratorParameters) (*crypto.DomainParameters, error) {
	started := time.Now()
	domain, err := p.next.GenerateParameters(algorithm, params)
	p.metrics.Observe("generate_parameters", name(algorithm), started, err)
	return domain, err
}

func (p *InstrumentedProvider) Cipher(key *crypto.Key, params *crypto.CipherParameters, input, aad []byte) ([]byte, error) {
	operation := "cipher"
	if params != nil && params.Mode != "" {
		operation = string(params.Mode)
	}
	started := time.Now()
	output, err := p.next.Cipher(key, params, input, aad)
	p.metrics.Observe(operation, keyName(key), started, err)
	return output, err
}

func (p *InstrumentedProvider) Sign(key *crypto.Key, params *crypto.SignatureParameters, data []byte) ([]byte, error) {
	started := time.Now()
	signature, err := p.next.Sign(key, params, data)
	p.metrics.Observe("sign", keyName(key), started, err)
	return signature, err
}

// Verify counts a signature that does not match as OutcomeInvalid
func (p *InstrumentedProvider) Verify(key *crypto.Key, params *crypto.SignatureParameters, signature, data []byte) (bool, error) {
	started := time.Now()
	valid, err := p.next.Verify(key, params, signature, data)
	if err == nil && !valid {
		p.metrics.record("verify", keyName(key), started, OutcomeInvalid)
	} else {
		p.metrics.Observe("verify", keyName(key), started, err)
	}
	return valid, err
}

func (p *InstrumentedProvider) Agree(private, peer *crypto.Key) ([]byte, error) {
	started := time.Now()
	secret, err := p.next.Agree(private, peer)
	p.metrics.Observe("agree", keyName(private), started, err)
	return secret, err
}

func (p *InstrumentedProvider) Hash(algorithm *crypto.Algorithm, data []byte) ([]byte, error) {
	started := time.Now()
	digest, err := p.next.Hash(algorithm, data)
	p.metrics.Observe("hash", name(algorithm), started, err)
	return digest, err
}

func (p *InstrumentedProvider) ExportKey(key *crypto.Key) ([]byte, error) {
	started := time.Now()
	encoded, err := p.next.ExportKey(key)
	p.metrics.Observe("export_key", keyName(key), started, err)
	return encoded, err
}

func (p *InstrumentedProvider) ImportKey(algorithm *crypto.Algorithm, keyType crypto.KeyType, data []byte) (*crypto.Key, error) {
	started := time.Now()
	key, err := p.next.ImportKey(algorithm, keyType, data)
	p.metrics.Observe("import_key", name(algorithm), started, err)
	return key, err
}

func (p *InstrumentedProvider) EncodeParameters(params *crypto.DomainParameters) ([]byte, error) {
	algorithm := "none"
	if params != nil {
		algorithm = name(params.Algorithm())
	}
	started := time.Now()
	encoded, err := p.next.EncodeParameters(params)
	p.metrics.Observe("encode_parameters", algorithm, started, err)
	return encoded, err
}

func (p *InstrumentedProvider) DecodeParameters(algorithm *crypto.Algorithm, data []byte) (*crypto.DomainParameters, error) {
	started := time.Now()
	domain, err := p.next.DecodeParameters(algorithm, data)
	p.metrics.Observe("decode_parameters", name(algorithm), started, err)
	return domain, err
}
