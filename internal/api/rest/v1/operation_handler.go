package v1

import (
	"fmt"
	"net/http"

	"github.com/MGTheTrain/crypto-facade/internal/domain/crypto"
	"github.com/MGTheTrain/crypto-facade/internal/domain/keys"

	"github.com/gin-gonic/gin"
)

// OperationHandler defines the interface for handling cryptographic operation requests
type OperationHandler interface {
	ListAlgorithms(ctx *gin.Context)
	Encrypt(ctx *gin.Context)
	Decrypt(ctx *gin.Context)
	Sign(ctx *gin.Context)
	Verify(ctx *gin.Context)
	Agree(ctx *gin.Context)
	Hash(ctx *gin.Context)
	GenerateParameters(ctx *gin.Context)
}

type operationHandler struct {
	cryptoOperationService keys.CryptoOperationService
}

// NewOperationHandler creates a new OperationHandler
func NewOperationHandler(cryptoOperationService keys.CryptoOperationService) OperationHandler {
	return &operationHandler{cryptoOperationService: cryptoOperationService}
}

// bind decodes and validates the JSON body, answering 400 on failure
func bind[R interface{ Validate() error }](ctx *gin.Context, request R) bool {
	if err := ctx.ShouldBindJSON(request); err != nil {
		ctx.JSON(http.StatusBadRequest, ErrorResponse{Message: fmt.Sprintf("invalid request: %v", err)})
		return false
	}
	if err := request.Validate(); err != nil {
		ctx.JSON(http.StatusBadRequest, ErrorResponse{Message: fmt.Sprintf("validation failed: %v", err)})
		return false
	}
	return true
}

// ListAlgorithms handles the GET request for the algorithm table
// @Summary List supported algorithms
// @Tags Algorithm
// @Produce json
// @Success 200 {array} AlgorithmResponse
// @Router /algorithms [get]
func (handler *operationHandler) ListAlgorithms(ctx *gin.Context) {
	algorithms := handler.cryptoOperationService.Algorithms()
	response := make([]AlgorithmResponse, 0, len(algorithms))
	for _, algorithm := range algorithms {
		response = append(response, newAlgorithmResponse(algorithm))
	}
	ctx.JSON(http.StatusOK, response)
}

// Encrypt handles the POST request to encrypt with a catalog key
// @Summary Encrypt data
// @Tags Operation
// @Accept json
// @Produce json
// @Param id path string true "Key ID"
// @Param requestBody body CipherRequest true "Plaintext and cipher parameters"
// @Success 200 {object} CipherResponse
// @Failure 400 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Router /keys/{id}/encrypt [post]
func (handler *operationHandler) Encrypt(ctx *gin.Context) {
	var request CipherRequest
	if !bind(ctx, &request) {
		return
	}

	ciphertext, err := handler.cryptoOperationService.Encrypt(ctx, ctx.Param("id"), request.parameters(), request.Data, request.AAD)
	if err != nil {
		ctx.JSON(statusFor(err), ErrorResponse{Message: err.Error()})
		return
	}
	ctx.JSON(http.StatusOK, CipherResponse{Data: ciphertext})
}

// Decrypt handles the POST request to decrypt with a catalog key
// @Summary Decrypt data
// @Tags Operation
// @Accept json
// @Produce json
// @Param id path string true "Key ID"
// @Param requestBody body CipherRequest true "Ciphertext and cipher parameters"
// @Success 200 {object} CipherResponse
// @Failure 400 {object} ErrorResponse
// @Failure 422 {object} ErrorResponse
// @Router /keys/{id}/decrypt [post]
func (handler *operationHandler) Decrypt(ctx *gin.Context) {
	var request CipherRequest
	if !bind(ctx, &request) {
		return
	}

	plaintext, err := handler.cryptoOperationService.Decrypt(ctx, ctx.Param("id"), request.parameters(), request.Data, request.AAD)
	if err != nil {
		ctx.JSON(statusFor(err), ErrorResponse{Message: err.Error()})
		return
	}
	ctx.JSON(http.StatusOK, CipherResponse{Data: plaintext})
}

// Sign handles the POST request to sign with a catalog private key
// @Summary Sign data
// @Tags Operation
// @Accept json
// @Produce json
// @Param id path string true "Private key ID"
// @Param requestBody body SignRequest true "Data and signature parameters"
// @Success 200 {object} SignResponse
// @Failure 400 {object} ErrorResponse
// @Router /keys/{id}/sign [post]
func (handler *operationHandler) Sign(ctx *gin.Context) {
	var request SignRequest
	if !bind(ctx, &request) {
		return
	}

	params := &crypto.SignatureParameters{Padding: crypto.Padding(request.Padding), Digest: request.Digest}
	signature, err := handler.cryptoOperationService.Sign(ctx, ctx.Param("id"), params, request.Data)
	if err != nil {
		ctx.JSON(statusFor(err), ErrorResponse{Message: err.Error()})
		return
	}
	ctx.JSON(http.StatusOK, SignResponse{Signature: signature})
}

// Verify handles the POST request to verify with a catalog public key
// @Summary Verify a signature
// @Tags Operation
// @Accept json
// @Produce json
// @Param id path string true "Public key ID"
// @Param requestBody body VerifyRequest true "Data, signature and signature parameters"
// @Success 200 {object} VerifyResponse
// @Failure 400 {object} ErrorResponse
// @Router /keys/{id}/verify [post]
func (handler *operationHandler) Verify(ctx *gin.Context) {
	var request VerifyRequest
	if !bind(ctx, &request) {
		return
	}

	params := &crypto.SignatureParameters{Padding: crypto.Padding(request.Padding), Digest: request.Digest}
	valid, err := handler.cryptoOperationService.Verify(ctx, ctx.Param("id"), params, request.Signature, request.Data)
	if err != nil {
		ctx.JSON(statusFor(err), ErrorResponse{Message: err.Error()})
		return
	}
	ctx.JSON(http.StatusOK, VerifyResponse{Valid: valid})
}

// Agree handles the POST request to derive a shared secret
// @Summary Derive a shared secret
// @Tags Operation
// @Accept json
// @Produce json
// @Param id path string true "Private key ID"
// @Param requestBody body AgreeRequest true "Peer public key ID"
// @Success 200 {object} AgreeResponse
// @Failure 400 {object} ErrorResponse
// @Router /keys/{id}/agree [post]
func (handler *operationHandler) Agree(ctx *gin.Context) {
	var request AgreeRequest
	if !bind(ctx, &request) {
		return
	}

	secret, err := handler.cryptoOperationService.Agree(ctx, ctx.Param("id"), request.PeerKeyID)
	if err != nil {
		ctx.JSON(statusFor(err), ErrorResponse{Message: err.Error()})
		return
	}
	ctx.JSON(http.StatusOK, AgreeResponse{Secret: secret})
}

// Hash handles the POST request to digest data
// @Summary Digest data
// @Tags Operation
// @Accept json
// @Produce json
// @Param requestBody body HashRequest true "Data and digest algorithm"
// @Success 200 {object} HashResponse
// @Failure 400 {object} ErrorResponse
// @Router /hash [post]
func (handler *operationHandler) Hash(ctx *gin.Context) {
	var request HashRequest
	if !bind(ctx, &request) {
		return
	}

	digest, err := handler.cryptoOperationService.Hash(ctx, request.Algorithm, request.Data)
	if err != nil {
		ctx.JSON(statusFor(err), ErrorResponse{Message: err.Error()})
		return
	}
	ctx.JSON(http.StatusOK, HashResponse{Algorithm: request.Algorithm, Digest: digest})
}

// GenerateParameters handles the POST request to generate domain parameters
// @Summary Generate domain parameters
// @Tags Operation
// @Accept json
// @Produce application/x-pem-file
// @Param requestBody body ParametersRequest true "Algorithm, prime size and generator"
// @Success 200 {file} file "Parameters in PEM format"
// @Failure 400 {object} ErrorResponse
// @Router /parameters [post]
func (handler *operationHandler) GenerateParameters(ctx *gin.Context) {
	var request ParametersRequest
	if !bind(ctx, &request) {
		return
	}

	encoded, err := handler.cryptoOperationService.GenerateParameters(ctx, request.Algorithm, request.KeySize, request.Generator)
	if err != nil {
		ctx.JSON(statusFor(err), ErrorResponse{Message: err.Error()})
		return
	}
	ctx.Data(http.StatusOK, "application/x-pem-file", encoded)
}
