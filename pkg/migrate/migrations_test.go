package migrate

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func TestMigrationsDirIsValid(t *testing.T) {
	require.NoError(t, ValidateDir("migrations"))
}

func TestOffersMigrationContainsSchema(t *testing.T) {
	content := readMigration(t, "*_create_supplier_offers.sql")
	for _, sub := range []string{
		"CREATE TABLE IF NOT EXISTS supplier_offers",
		"unit_cost numeric(14,2) NOT NULL",
		"available_qty integer NULL",
		"CREATE UNIQUE INDEX IF NOT EXISTS ux_supplier_offers_identity",
		"COALESCE(variant_id, '')",
	} {
		assert.Contains(t, content, sub)
	}
}

func TestOutboxMigrationDeclaresEnums(t *testing.T) {
	content := readMigration(t, "*_create_outbox.sql")
	for _, sub := range []string{
		"CREATE TYPE event_type_enum AS ENUM ('order_priced', 'offers_imported')",
		"CREATE TYPE aggregate_type_enum AS ENUM ('priced_order', 'offer_feed')",
		"CREATE TABLE IF NOT EXISTS outbox_events",
		"CREATE TABLE IF NOT EXISTS outbox_dlq",
	} {
		assert.Contains(t, content, sub)
	}
}

func TestAutoMigrateModelsOnSQLite(t *testing.T) {
	conn, err := gorm.Open(sqlite.Open(fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())), &gorm.Config{})
	require.NoError(t, err)

	require.NoError(t, AutoMigrateModels(conn))

	for _, table := range []string{
		"supplier_offers",
		"product_variants",
		"settings",
		"priced_orders",
		"priced_order_allocations",
		"outbox_events",
		"outbox_dlq",
	} {
		assert.True(t, conn.Migrator().HasTable(table), "missing table %s", table)
	}
}

func TestCreateSQLMigrationWritesGooseTemplate(t *testing.T) {
	dir := t.TempDir()
	path, err := CreateSQLMigration(dir, "Add Offer Source!")
	require.NoError(t, err)
	assert.True(t, strings.HasSuffix(path, "_add_offer_source.sql"), path)
	require.NoError(t, ValidateDir(dir))
}

func TestValidateDirRejectsBadNames(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "001_bad.sql"), []byte("-- +goose Up\n-- +goose Down\n"), 0o644))
	assert.Error(t, ValidateDir(dir))
}

func readMigration(t *testing.T, pattern string) string {
	t.Helper()
	matches, err := filepath.Glob(filepath.Join("migrations", pattern))
	require.NoError(t, err)
	require.NotEmpty(t, matches, "no migration matching %s", pattern)
	data, err := os.ReadFile(matches[0])
	require.NoError(t, err)
	return string(data)
}
