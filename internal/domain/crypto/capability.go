package crypto

import (
	"fmt"
	"slices"
	"strings"
)

// Validate returns algorithm when it declares scope. Otherwise it fails with
// ErrUnsupportedScope and names the table algorithms that do declare it.
func Validate(algorithm *Algorithm, scope Scope) (*Algorithm, error) {
	if algorithm == nil {
		return nil, fmt.Errorf("%w: algorithm is nil", ErrUnsupportedScope)
	}
	if algorithm.HasScope(scope) {
		return algorithm, nil
	}

	supported := AlgorithmsWithScope(scope)
	names := make([]string, 0, len(supported))
	for _, alg := range supported {
		names = append(names, alg.Name)
	}
	return nil, fmt.Errorf("%w: %s does not support %s, supported algorithms: [%s]",
		ErrUnsupportedScope, algorithm.Name, scope, strings.Join(names, ", "))
}

// ValidateParameters checks params on their own and then against what
// algorithm supports. It has no side effects.
func ValidateParameters[P Parameters](algorithm *Algorithm, params P) (P, error) {
	if err := params.Validate(); err != nil {
		return params, err
	}
	if algorithm.IsUnchecked() {
		return params, nil
	}

	opts := params.Options()
	if opts.Padding != "" && !slices.Contains(algorithm.SupportedPaddings, opts.Padding) {
		return params, fmt.Errorf("%w: padding %s not supported by %s, supported: %v",
			ErrUnsupportedParameter, opts.Padding, algorithm.Name, algorithm.SupportedPaddings)
	}
	if opts.BlockMode != "" && !slices.Contains(algorithm.SupportedBlockModes, opts.BlockMode) {
		return params, fmt.Errorf("%w: block mode %s not supported by %s, supported: %v",
			ErrUnsupportedParameter, opts.BlockMode, algorithm.Name, algorithm.SupportedBlockModes)
	}
	if opts.Digest != "" && !slices.Contains(algorithm.SupportedDigests, opts.Digest) {
		return params, fmt.Errorf("%w: digest %s not supported by %s, supported: %v",
			ErrUnsupportedParameter, opts.Digest, algorithm.Name, algorithm.SupportedDigests)
	}
	return params, nil
}

// ValidateSize fails with ErrUnsupportedParameter when bits is not a valid size for algorithm.
func ValidateSize(algorithm *Algorithm, bits int) error {
	if !algorithm.SupportsSize(bits) {
		return fmt.Errorf("%w: size %d not supported by %s", ErrUnsupportedParameter, bits, algorithm.Name)
	}
	return nil
}

// SupportsSize reports whether the named table algorithm accepts bits.
func SupportsSize(algorithmName string, bits int) bool {
	alg, ok := AlgorithmByName(algorithmName)
	return ok && alg.SupportsSize(bits)
}
