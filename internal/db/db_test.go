package db

import (
	"path/filepath"
	"testing"
)

func TestEnsureSchemaIdempotent(t *testing.T) {
	database := NewTestDB(t)
	if err := EnsureSchema(database); err != nil {
		t.Fatalf("second EnsureSchema: %v", err)
	}

	for _, table := range []string{"users", "settings", "revoked_tokens", "admin_state", "document_cache", "cart_lines"} {
		var name string
		err := database.QueryRow(`SELECT name FROM sqlite_master WHERE type = 'table' AND name = ?`, table).Scan(&name)
		if err != nil {
			t.Errorf("table %s missing: %v", table, err)
		}
	}
}

func TestOpenWithSchemaFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "state.sqlite3")
	database, err := OpenWithSchema(path)
	if err != nil {
		t.Fatalf("OpenWithSchema: %v", err)
	}
	defer database.Close()

	if _, err := database.Exec(`INSERT INTO settings (key, value) VALUES ('k', 'v')`); err != nil {
		t.Fatalf("insert: %v", err)
	}
}
