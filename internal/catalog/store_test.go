package catalog

import (
	"path/filepath"
	"testing"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	store, err := Open(filepath.Join(t.TempDir(), "catalog.db"))
	if err != nil {
		t.Fatalf("failed to open store: %v", err)
	}
	t.Cleanup(func() { store.Close() })
	return store
}

func TestStoreOpenAndMigrate(t *testing.T) {
	store := openTestStore(t)

	version, err := store.getSchemaVersion()
	if err != nil {
		t.Fatalf("failed to get schema version: %v", err)
	}
	if version != currentSchemaVersion {
		t.Errorf("expected schema version %d, got %d", currentSchemaVersion, version)
	}

	tables := []string{
		"systems", "franchises", "software_titles", "releases",
		"release_software_titles", "release_systems", "release_file_sets",
		"items", "item_file_sets", "file_sets", "file_infos",
		"file_set_file_infos", "file_set_systems", "dat_files", "dat_games",
		"dat_roms", "dat_file_file_sets", "file_sync_logs", "settings",
		"schema_version",
	}
	for _, table := range tables {
		var count int
		err := store.db.QueryRow(
			"SELECT COUNT(*) FROM sqlite_master WHERE type='table' AND name=?", table).
			Scan(&count)
		if err != nil {
			t.Fatalf("failed to query table %s: %v", table, err)
		}
		if count != 1 {
			t.Errorf("expected table %s to exist", table)
		}
	}
}

func TestSettings(t *testing.T) {
	store := openTestStore(t)

	value, err := store.GetSetting("collection_root")
	if err != nil {
		t.Fatalf("GetSetting failed: %v", err)
	}
	if value != "" {
		t.Errorf("expected empty value for unset key, got %q", value)
	}

	if err := store.SetSetting("collection_root", "/data/collection"); err != nil {
		t.Fatalf("SetSetting failed: %v", err)
	}
	if err := store.SetSetting("collection_root", "/data/collection2"); err != nil {
		t.Fatalf("SetSetting update failed: %v", err)
	}

	value, err = store.GetSetting("collection_root")
	if err != nil {
		t.Fatalf("GetSetting failed: %v", err)
	}
	if value != "/data/collection2" {
		t.Errorf("expected updated value, got %q", value)
	}

	all, err := store.GetAllSettings()
	if err != nil {
		t.Fatalf("GetAllSettings failed: %v", err)
	}
	if len(all) != 1 {
		t.Errorf("expected 1 setting, got %d", len(all))
	}
}
