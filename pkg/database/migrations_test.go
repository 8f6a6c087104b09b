package database

import (
	"strings"
	"testing"
)

func TestMigrationFilesAreOrdered(t *testing.T) {
	files, err := migrationFiles()
	if err != nil {
		t.Fatalf("migrationFiles: %v", err)
	}
	if len(files) < 3 {
		t.Fatalf("expected at least 3 migrations, got %d", len(files))
	}
	for i := 1; i < len(files); i++ {
		if files[i-1].Name >= files[i].Name {
			t.Fatalf("migrations out of order: %s before %s", files[i-1].Name, files[i].Name)
		}
	}
	if !strings.Contains(files[0].Content, "EXCLUDE USING gist") {
		t.Errorf("first migration should carry the booking overlap constraint")
	}
}
