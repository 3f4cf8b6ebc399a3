package v1

import (
	"github.com/MGTheTrain/crypto-facade/internal/domain/keys"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// SetupRoutes sets up all the API routes for version 1. The metrics of
// gatherer are served on /metrics when it is not nil.
func SetupRoutes(r *gin.Engine,
	cryptoKeyGenerateService keys.CryptoKeyGenerateService,
	cryptoKeyExportService keys.CryptoKeyExportService,
	cryptoKeyMetadataService keys.CryptoKeyMetadataService,
	cryptoOperationService keys.CryptoOperationService,
	gatherer prometheus.Gatherer) {

	v1 := r.Group(BasePath)

	operationHandler := NewOperationHandler(cryptoOperationService)
	v1.GET("/algorithms", operationHandler.ListAlgorithms)
	v1.POST("/parameters", operationHandler.GenerateParameters)
	v1.POST("/hash", operationHandler.Hash)

	// Keys Routes
	keyHandler := NewKeyHandler(cryptoKeyGenerateService, cryptoKeyExportService, cryptoKeyMetadataService)
	v1.POST("/keys", keyHandler.GenerateKeys)
	v1.GET("/keys", keyHandler.ListMetadata)
	v1.GET("/keys/:id", keyHandler.GetMetadataByID)
	v1.GET("/keys/:id/export", keyHandler.ExportByID)
	v1.DELETE("/keys/:id", keyHandler.DeleteByID)

	v1.POST("/keys/:id/encrypt", operationHandler.Encrypt)
	v1.POST("/keys/:id/decrypt", operationHandler.Decrypt)
	v1.POST("/keys/:id/sign", operationHandler.Sign)
	v1.POST("/keys/:id/verify", operationHandler.Verify)
	v1.POST("/keys/:id/agree", operationHandler.Agree)

	if gatherer != nil {
		r.GET("/metrics", gin.WrapH(promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})))
	}
}
