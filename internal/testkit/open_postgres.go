//go:build integration

package testkit

import (
	"strings"
	"testing"

	"directMail/pkg/config"
	"directMail/pkg/database/postgres"

	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

// Tables the integration run empties before seeding. Packages share the
// database, so run them with -p 1.
var tables = []string{
	"orders", "offer_prints", "client_offers", "key_codes", "key_code_details",
	"clients", "campaign_offers", "campaigns", "offer_sequences", "chains", "offers",
}

func openDB(t *testing.T) *gorm.DB {
	t.Helper()
	t.Setenv("STORAGE", config.StoragePostgres)
	cfg, err := config.Load()
	require.NoError(t, err)
	require.NoError(t, postgres.MigrateUp(cfg))

	db, err := postgres.InitPostgres(cfg)
	require.NoError(t, err)
	t.Cleanup(func() { _ = postgres.ClosePostgres(db) })

	require.NoError(t, db.Exec("TRUNCATE "+strings.Join(tables, ", ")+" RESTART IDENTITY CASCADE").Error)
	return db
}
