package keys

import (
	"errors"
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
)

// ErrKeyNotFound is returned when no key with the requested id exists
var ErrKeyNotFound = errors.New("keys: key not found")

// CryptoKeyMeta describes a key held by the catalog. Key material never
// leaves the engine; only this metadata is persisted.
type CryptoKeyMeta struct {
	ID              string    `validate:"required,uuid4"`
	KeyPairID       string    `validate:"required,uuid4"`
	Algorithm       string    `validate:"required"`
	KeySize         int       `validate:"gt=0"`
	Type            string    `validate:"required,oneof=private public symmetric"`
	Engine          string    `validate:"required"`
	DateTimeCreated time.Time `validate:"required"`
	UserID          string    `validate:"required"`
}

// Validate checks the metadata fields
func (k *CryptoKeyMeta) Validate() error {
	return validateStruct("CryptoKeyMeta", k)
}

// CryptoKeyQuery filters, sorts and pages a listing of key metadata
type CryptoKeyQuery struct {
	Algorithm       string    `validate:"omitempty"`
	Type            string    `validate:"omitempty,oneof=private public symmetric"`
	DateTimeCreated time.Time `validate:"omitempty"`
	Limit           int       `validate:"gte=0"`
	Offset          int       `validate:"gte=0"`
	SortBy          string    `validate:"omitempty,oneof=id algorithm key_size type date_time_created"`
	SortOrder       string    `validate:"omitempty,oneof=asc desc"`
}

// NewCryptoKeyQuery returns an empty query
func NewCryptoKeyQuery() *CryptoKeyQuery {
	return &CryptoKeyQuery{}
}

// Validate checks the query fields. SortBy is restricted to known columns.
func (q *CryptoKeyQuery) Validate() error {
	return validateStruct("CryptoKeyQuery", q)
}

var validate = validator.New()

func validateStruct(name string, s any) error {
	if err := validate.Struct(s); err != nil {
		var validationErrors validator.ValidationErrors
		if errors.As(err, &validationErrors) {
			var messages []string
			for _, fieldErr := range validationErrors {
				messages = append(messages, fmt.Sprintf("Field: %s, Tag: %s", fieldErr.Field(), fieldErr.Tag()))
			}
			return fmt.Errorf("validation failed for %s: %v", name, messages)
		}
		return fmt.Errorf("validation failed for %s: %w", name, err)
	}
	return nil
}
