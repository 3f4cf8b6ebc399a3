package v1

import (
	"errors"
	"net/http"

	"github.com/MGTheTrain/crypto-facade/internal/domain/crypto"
	"github.com/MGTheTrain/crypto-facade/internal/domain/keys"
)

// statusFor maps a service error to an HTTP status
func statusFor(err error) int {
	switch {
	case errors.Is(err, keys.ErrKeyNotFound):
		return http.StatusNotFound
	case errors.Is(err, crypto.ErrUnsupportedScope),
		errors.Is(err, crypto.ErrUnsupportedParameter),
		errors.Is(err, crypto.ErrUnsupportedConfiguration),
		errors.Is(err, crypto.ErrInitialization),
		errors.Is(err, crypto.ErrEncoding):
		return http.StatusBadRequest
	case errors.Is(err, crypto.ErrKeyClosed):
		return http.StatusConflict
	case errors.Is(err, crypto.ErrCipher),
		errors.Is(err, crypto.ErrSignature),
		errors.Is(err, crypto.ErrAgreement):
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}
