//go:build !integration

package testkit

import (
	"testing"

	"directMail/domain"
	"directMail/pkg/database/sqlite"

	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func openDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := sqlite.InitSQLite(sqlite.MemoryPath, domain.Models()...)
	require.NoError(t, err)
	t.Cleanup(func() { _ = sqlite.CloseSQLite(db) })
	return db
}
