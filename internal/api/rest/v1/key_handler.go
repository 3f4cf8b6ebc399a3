package v1

import (
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/MGTheTrain/crypto-facade/internal/domain/crypto"
	"github.com/MGTheTrain/crypto-facade/internal/domain/keys"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// KeyHandler defines the interface for handling key catalog requests
type KeyHandler interface {
	GenerateKeys(ctx *gin.Context)
	ListMetadata(ctx *gin.Context)
	GetMetadataByID(ctx *gin.Context)
	ExportByID(ctx *gin.Context)
	DeleteByID(ctx *gin.Context)
}

type keyHandler struct {
	cryptoKeyGenerateService keys.CryptoKeyGenerateService
	cryptoKeyExportService   keys.CryptoKeyExportService
	cryptoKeyMetadataService keys.CryptoKeyMetadataService
}

// NewKeyHandler creates a new KeyHandler
func NewKeyHandler(cryptoKeyGenerateService keys.CryptoKeyGenerateService, cryptoKeyExportService keys.CryptoKeyExportService, cryptoKeyMetadataService keys.CryptoKeyMetadataService) KeyHandler {
	return &keyHandler{
		cryptoKeyGenerateService: cryptoKeyGenerateService,
		cryptoKeyExportService:   cryptoKeyExportService,
		cryptoKeyMetadataService: cryptoKeyMetadataService,
	}
}

// GenerateKeys handles the POST request to generate a symmetric key or a key pair
// @Summary Generate a key or key pair
// @Description Generate a symmetric key or a key pair and add it to the key catalog.
// @Tags Key
// @Accept json
// @Produce json
// @Param requestBody body GenerateKeyRequest true "Key generation parameters"
// @Success 201 {array} CryptoKeyMetaResponse
// @Failure 400 {object} ErrorResponse
// @Router /keys [post]
func (handler *keyHandler) GenerateKeys(ctx *gin.Context) {
	var request GenerateKeyRequest
	if err := ctx.ShouldBindJSON(&request); err != nil {
		ctx.JSON(http.StatusBadRequest, ErrorResponse{Message: fmt.Sprintf("invalid key data: %v", err)})
		return
	}
	if err := request.Validate(); err != nil {
		ctx.JSON(http.StatusBadRequest, ErrorResponse{Message: fmt.Sprintf("validation failed: %v", err)})
		return
	}

	userID := uuid.NewString() // TODO(MGTheTrain): extract user id from JWT

	metas, err := handler.cryptoKeyGenerateService.Generate(ctx, userID, request.Algorithm, request.KeySize, request.Curve)
	if err != nil {
		ctx.JSON(statusFor(err), ErrorResponse{Message: fmt.Sprintf("error generating key: %v", err)})
		return
	}

	listResponse := make([]CryptoKeyMetaResponse, 0, len(metas))
	for _, meta := range metas {
		listResponse = append(listResponse, newCryptoKeyMetaResponse(meta))
	}
	ctx.JSON(http.StatusCreated, listResponse)
}

// ListMetadata handles the GET request to list key metadata with optional query parameters
// @Summary List key metadata based on query parameters
// @Description Fetch key metadata filtered by algorithm, type and creation date, with pagination and sorting options.
// @Tags Key
// @Produce json
// @Param algorithm query string false "Algorithm"
// @Param type query string false "Key Type"
// @Param dateTimeCreated query string false "Created at or after (RFC3339)"
// @Param limit query int false "Limit the number of results"
// @Param offset query int false "Offset the results"
// @Param sortBy query string false "Sort by a specific field"
// @Param sortOrder query string false "Sort order (asc/desc)"
// @Success 200 {array} CryptoKeyMetaResponse
// @Failure 400 {object} ErrorResponse
// @Router /keys [get]
func (handler *keyHandler) ListMetadata(ctx *gin.Context) {
	query := keys.NewCryptoKeyQuery()
	query.Algorithm = ctx.Query("algorithm")
	query.Type = ctx.Query("type")
	query.SortBy = ctx.Query("sortBy")
	query.SortOrder = ctx.Query("sortOrder")

	if dateTimeCreated := ctx.Query("dateTimeCreated"); len(dateTimeCreated) > 0 {
		parsedTime, err := time.Parse(time.RFC3339, dateTimeCreated)
		if err != nil {
			ctx.JSON(http.StatusBadRequest, ErrorResponse{Message: fmt.Sprintf("invalid dateTimeCreated: %v", err)})
			return
		}
		query.DateTimeCreated = parsedTime
	}

	for name, target := range map[string]*int{"limit": &query.Limit, "offset": &query.Offset} {
		if value := ctx.Query(name); len(value) > 0 {
			parsed, err := strconv.Atoi(value)
			if err != nil {
				ctx.JSON(http.StatusBadRequest, ErrorResponse{Message: fmt.Sprintf("invalid %s: %v", name, err)})
				return
			}
			*target = parsed
		}
	}

	if err := query.Validate(); err != nil {
		ctx.JSON(http.StatusBadRequest, ErrorResponse{Message: fmt.Sprintf("validation failed: %v", err)})
		return
	}

	metas, err := handler.cryptoKeyMetadataService.List(ctx, query)
	if err != nil {
		ctx.JSON(statusFor(err), ErrorResponse{Message: fmt.Sprintf("list query failed: %v", err)})
		return
	}

	listResponse := make([]CryptoKeyMetaResponse, 0, len(metas))
	for _, meta := range metas {
		listResponse = append(listResponse, newCryptoKeyMetaResponse(meta))
	}
	ctx.JSON(http.StatusOK, listResponse)
}

// GetMetadataByID handles the GET request to retrieve key metadata by ID
// @Summary Retrieve key metadata by ID
// @Tags Key
// @Produce json
// @Param id path string true "Key ID"
// @Success 200 {object} CryptoKeyMetaResponse
// @Failure 404 {object} ErrorResponse
// @Router /keys/{id} [get]
func (handler *keyHandler) GetMetadataByID(ctx *gin.Context) {
	keyID := ctx.Param("id")

	meta, err := handler.cryptoKeyMetadataService.GetByID(ctx, keyID)
	if err != nil {
		ctx.JSON(statusFor(err), ErrorResponse{Message: fmt.Sprintf("key with id %s not found", keyID)})
		return
	}
	ctx.JSON(http.StatusOK, newCryptoKeyMetaResponse(meta))
}

// ExportByID handles the GET request to export a key
// @Summary Export a key by ID
// @Description Public keys are returned in PEM format and symmetric keys as raw bytes. Private keys are not exported.
// @Tags Key
// @Produce application/x-pem-file
// @Produce application/octet-stream
// @Param id path string true "Key ID"
// @Success 200 {file} file "Key content"
// @Failure 403 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Router /keys/{id}/export [get]
func (handler *keyHandler) ExportByID(ctx *gin.Context) {
	keyID := ctx.Param("id")

	meta, err := handler.cryptoKeyMetadataService.GetByID(ctx, keyID)
	if err != nil {
		ctx.JSON(statusFor(err), ErrorResponse{Message: fmt.Sprintf("key with id %s not found", keyID)})
		return
	}
	var filename, contentType string
	switch crypto.KeyType(meta.Type) {
	case crypto.KeyTypePublic:
		filename, contentType = fmt.Sprintf("%s-public-key.pem", keyID), "application/x-pem-file"
	case crypto.KeyTypeSymmetric:
		filename, contentType = fmt.Sprintf("%s-symmetric-key.bin", keyID), "application/octet-stream"
	default:
		ctx.JSON(http.StatusForbidden, ErrorResponse{Message: fmt.Sprintf("export forbidden for %s keys", meta.Type)})
		return
	}

	encoded, err := handler.cryptoKeyExportService.ExportByID(ctx, keyID)
	if err != nil {
		ctx.JSON(statusFor(err), ErrorResponse{Message: fmt.Sprintf("could not export key with id %s: %v", keyID, err)})
		return
	}

	ctx.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%s", filename))
	ctx.Data(http.StatusOK, contentType, encoded)
}

// DeleteByID handles the DELETE request to delete a key by ID
// @Summary Delete a key by ID
// @Description Release the key and delete its metadata.
// @Tags Key
// @Param id path string true "Key ID"
// @Success 204
// @Failure 404 {object} ErrorResponse
// @Router /keys/{id} [delete]
func (handler *keyHandler) DeleteByID(ctx *gin.Context) {
	keyID := ctx.Param("id")

	if err := handler.cryptoKeyMetadataService.DeleteByID(ctx, keyID); err != nil {
		ctx.JSON(statusFor(err), ErrorResponse{Message: fmt.Sprintf("error deleting key with id %s: %v", keyID, err)})
		return
	}
	ctx.Status(http.StatusNoContent)
}
