//go:build integration
// +build integration

package persistence

import (
	"strings"
	"testing"
	"time"

	"github.com/MGTheTrain/crypto-facade/internal/domain/keys"
	"github.com/MGTheTrain/crypto-facade/internal/pkg/config"
	"github.com/MGTheTrain/crypto-facade/internal/pkg/testutil"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

// Test constants
const (
	TestKeyTypePublic    = "public"
	TestKeyTypePrivate   = "private"
	TestKeyTypeSymmetric = "symmetric"

	TestAlgorithmEC  = "EC"
	TestAlgorithmRSA = "RSA"
	TestAlgorithmAES = "AES"

	postgresDSN = "user=postgres password=postgres host=localhost port=5432 sslmode=disable"
)

// TestContext holds test database and repositories
type TestContext struct {
	DB            *gorm.DB
	CryptoKeyRepo keys.CryptoKeyRepository
}

// SetupTestDB opens a migrated catalog database that is removed when the test ends
func SetupTestDB(t *testing.T, dbType string) *TestContext {
	t.Helper()

	var settings config.DatabaseSettings
	cleanup := func() {}

	switch dbType {
	case config.DatabaseTypeSqlite:
		settings = config.DatabaseSettings{
			Type:   config.DatabaseTypeSqlite,
			DSN:    ":memory:",
			DBName: "test",
		}
	case config.DatabaseTypePostgres:
		name := "test_" + strings.ReplaceAll(uuid.NewString(), "-", "")[:16]
		settings = config.DatabaseSettings{
			Type:   config.DatabaseTypePostgres,
			DSN:    postgresDSN,
			DBName: name,
		}
		cleanup = func() {
			_ = DropDatabase(postgresDSN+" dbname=postgres", name)
		}
	default:
		t.Fatalf("Unsupported database type: %s", dbType)
	}

	log := testutil.SetupTestLogger(t)
	db, err := NewDBConnection(settings, log)
	require.NoError(t, err, "Failed to create database connection")
	t.Cleanup(func() {
		_ = CloseDB(db)
		cleanup()
	})

	repo, err := NewGormCryptoKeyRepository(db, log)
	require.NoError(t, err, "Failed to create crypto key repository")

	return &TestContext{DB: db, CryptoKeyRepo: repo}
}

// CreateTestKey creates catalog metadata for a key
func CreateTestKey(t *testing.T, userID, keyType, algorithm string, keySize int) *keys.CryptoKeyMeta {
	t.Helper()

	return &keys.CryptoKeyMeta{
		ID:              uuid.NewString(),
		KeyPairID:       uuid.NewString(),
		Type:            keyType,
		Algorithm:       algorithm,
		KeySize:         keySize,
		Engine:          config.EngineSoftware,
		DateTimeCreated: time.Now(),
		UserID:          userID,
	}
}
