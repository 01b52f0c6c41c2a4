package migrate_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestPromotionsMigrationContainsConstraints(t *testing.T) {
	matches, err := filepath.Glob(filepath.Join("migrations", "*_create_promotions.sql"))
	if err != nil {
		t.Fatalf("glob migrations: %v", err)
	}
	if len(matches) == 0 {
		t.Fatalf("no promotions migration file found")
	}

	data, err := os.ReadFile(matches[0])
	if err != nil {
		t.Fatalf("read migration file: %v", err)
	}
	content := string(data)

	checks := []string{
		"CREATE TABLE IF NOT EXISTS promotions",
		"CREATE UNIQUE INDEX uq_promotions_code_live ON promotions (code) WHERE deleted_at IS NULL",
		"CHECK (amount >= 0)",
		"DROP TABLE IF EXISTS promotions",
	}

	for _, sub := range checks {
		if !strings.Contains(content, sub) {
			t.Errorf("missing expected statement %q", sub)
		}
	}
}

func TestApplicationsMigrationEnforcesSingleLiveRow(t *testing.T) {
	matches, err := filepath.Glob(filepath.Join("migrations", "*_create_promotion_applications.sql"))
	if err != nil {
		t.Fatalf("glob migrations: %v", err)
	}
	if len(matches) == 0 {
		t.Fatalf("no promotion applications migration file found")
	}

	data, err := os.ReadFile(matches[0])
	if err != nil {
		t.Fatalf("read migration file: %v", err)
	}
	content := string(data)

	if !strings.Contains(content, "uq_promotion_applications_live") {
		t.Errorf("missing partial unique index on (order_id, promotion_id)")
	}
	if !strings.Contains(content, "WHERE removed = false") {
		t.Errorf("unique index must exclude soft-removed rows")
	}
}
