package migrate_test

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/closingdesk/commission-backend/pkg/db/dbtest"
	"github.com/closingdesk/commission-backend/pkg/migrate"
)

func readMigration(t *testing.T, suffix string) string {
	t.Helper()
	matches, err := filepath.Glob(filepath.Join("migrations", "*_"+suffix+".sql"))
	if err != nil {
		t.Fatalf("glob migrations: %v", err)
	}
	if len(matches) == 0 {
		t.Fatalf("no %s migration file found", suffix)
	}
	data, err := os.ReadFile(matches[0])
	if err != nil {
		t.Fatalf("read migration file: %v", err)
	}
	return string(data)
}

func TestPayoutMigrationContainsConstraints(t *testing.T) {
	content := readMigration(t, "create_commission_payouts")

	checks := []string{
		"CREATE TABLE IF NOT EXISTS commission_payouts",
		"CONSTRAINT uq_commission_payouts_transaction UNIQUE (transaction_id)",
		"CHECK (payout_amount > 0)",
		"version integer NOT NULL DEFAULT 1",
		"DROP TABLE IF EXISTS commission_payouts",
	}
	for _, sub := range checks {
		if !strings.Contains(content, sub) {
			t.Errorf("missing expected statement %q", sub)
		}
	}
}

func TestEventMigrationIsAppendOnly(t *testing.T) {
	content := readMigration(t, "create_transaction_events")
	for _, sub := range []string{
		"BEFORE UPDATE OR DELETE ON transaction_events",
		"visible_to_agent boolean NOT NULL DEFAULT false",
	} {
		if !strings.Contains(content, sub) {
			t.Errorf("missing expected statement %q", sub)
		}
	}
}

func TestEnumMigrationListsPayoutStatuses(t *testing.T) {
	content := readMigration(t, "create_enums")
	if !strings.Contains(content, "'ready', 'scheduled', 'processing', 'paid', 'failed', 'cancelled'") {
		t.Fatalf("payout_status enum does not match the lifecycle")
	}
}

func TestValidateDirAcceptsShippedMigrations(t *testing.T) {
	if err := migrate.ValidateDir("migrations"); err != nil {
		t.Fatalf("validate migrations: %v", err)
	}
}

func TestCreateSQLMigration(t *testing.T) {
	dir := t.TempDir()
	path, err := migrate.CreateSQLMigration(dir, "Add Payout Notes!")
	if err != nil {
		t.Fatalf("create migration: %v", err)
	}
	if !strings.HasSuffix(path, "_add_payout_notes.sql") {
		t.Fatalf("unexpected filename %s", path)
	}
	if err := migrate.ValidateDir(dir); err != nil {
		t.Fatalf("created migration should validate: %v", err)
	}

	if _, err := migrate.CreateSQLMigration(dir, "   "); err == nil {
		t.Fatal("expected error for blank name")
	}
}

func TestValidateDirRejectsBadFilename(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "bad.sql"), []byte("-- +goose Up\n-- +goose Down\n"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	if err := migrate.ValidateDir(dir); err == nil {
		t.Fatal("expected invalid filename error")
	}
}

func TestValidateDirEmbeddedSet(t *testing.T) {
	if err := migrate.ValidateDir(""); err != nil {
		t.Fatalf("embedded migrations should validate: %v", err)
	}
}

func TestValidateDirReportsMissingDown(t *testing.T) {
	dir := t.TempDir()
	body := []byte("-- +goose Up\nSELECT 1;\n")
	if err := os.WriteFile(filepath.Join(dir, "20260101000000_only_up.sql"), body, 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	err := migrate.ValidateDir(dir)
	if err == nil || !strings.Contains(err.Error(), "+goose Down") {
		t.Fatalf("expected missing Down error, got %v", err)
	}
}

func TestFilesRejectsMissingDir(t *testing.T) {
	if _, err := migrate.Files(filepath.Join(t.TempDir(), "nope")); err == nil {
		t.Fatal("expected error for missing dir")
	}
}

func TestApplySQLiteSchemaIsRepeatable(t *testing.T) {
	conn := dbtest.NewSQLite(t)
	sqlDB, err := conn.DB()
	if err != nil {
		t.Fatalf("sql db: %v", err)
	}
	// dbtest already applied it once
	if err := migrate.ApplySQLiteSchema(context.Background(), sqlDB); err != nil {
		t.Fatalf("second apply: %v", err)
	}
	for _, table := range []string{"transactions", "commission_payouts", "transaction_events"} {
		if !conn.Migrator().HasTable(table) {
			t.Errorf("expected table %s", table)
		}
	}
}
