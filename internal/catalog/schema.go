package catalog

// Schema v1 - initial catalog schema
const schemaV1 = `
-- Schema version tracking
CREATE TABLE IF NOT EXISTS schema_version (
  version INTEGER PRIMARY KEY,
  applied_at DATETIME DEFAULT CURRENT_TIMESTAMP
);

-- Platform/console groupings
CREATE TABLE IF NOT EXISTS systems (
  id INTEGER PRIMARY KEY AUTOINCREMENT,
  name TEXT UNIQUE NOT NULL
);

-- Franchises group software titles ("The Legend of Zelda" series)
CREATE TABLE IF NOT EXISTS franchises (
  id INTEGER PRIMARY KEY AUTOINCREMENT,
  name TEXT UNIQUE NOT NULL
);

-- Canonical titles, distinct from regional releases
CREATE TABLE IF NOT EXISTS software_titles (
  id INTEGER PRIMARY KEY AUTOINCREMENT,
  name TEXT NOT NULL,
  franchise_id INTEGER REFERENCES franchises(id)
);

CREATE INDEX IF NOT EXISTS idx_software_titles_name ON software_titles(name);

CREATE TABLE IF NOT EXISTS releases (
  id INTEGER PRIMARY KEY AUTOINCREMENT,
  name TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS release_software_titles (
  release_id INTEGER NOT NULL REFERENCES releases(id) ON DELETE CASCADE,
  software_title_id INTEGER NOT NULL REFERENCES software_titles(id),
  PRIMARY KEY (release_id, software_title_id)
);

CREATE TABLE IF NOT EXISTS release_systems (
  release_id INTEGER NOT NULL REFERENCES releases(id) ON DELETE CASCADE,
  system_id INTEGER NOT NULL REFERENCES systems(id),
  PRIMARY KEY (release_id, system_id)
);

CREATE TABLE IF NOT EXISTS release_file_sets (
  release_id INTEGER NOT NULL REFERENCES releases(id) ON DELETE CASCADE,
  file_set_id INTEGER NOT NULL REFERENCES file_sets(id) ON DELETE CASCADE,
  PRIMARY KEY (release_id, file_set_id)
);

-- Physical/media items grouping file sets within a release
CREATE TABLE IF NOT EXISTS items (
  id INTEGER PRIMARY KEY AUTOINCREMENT,
  release_id INTEGER NOT NULL REFERENCES releases(id) ON DELETE CASCADE,
  item_type TEXT NOT NULL,
  notes TEXT
);

CREATE TABLE IF NOT EXISTS item_file_sets (
  item_id INTEGER NOT NULL REFERENCES items(id) ON DELETE CASCADE,
  file_set_id INTEGER NOT NULL REFERENCES file_sets(id) ON DELETE CASCADE,
  PRIMARY KEY (item_id, file_set_id)
);

-- Logical groups of files making up one release artifact
CREATE TABLE IF NOT EXISTS file_sets (
  id INTEGER PRIMARY KEY AUTOINCREMENT,
  file_set_name TEXT NOT NULL,
  file_set_file_name TEXT NOT NULL,
  file_type TEXT NOT NULL,
  source TEXT NOT NULL DEFAULT ''
);

CREATE INDEX IF NOT EXISTS idx_file_sets_file_type ON file_sets(file_type);

-- One concrete stored blob, unique by content hash within a file type
CREATE TABLE IF NOT EXISTS file_infos (
  id INTEGER PRIMARY KEY AUTOINCREMENT,
  sha1 TEXT NOT NULL,
  file_size INTEGER NOT NULL,
  archive_file_name TEXT NOT NULL,
  file_type TEXT NOT NULL,
  UNIQUE (sha1, file_type)
);

-- Link table carrying the display file name inside each set. The file
-- name is part of the key: a set may hold the same content under
-- several member names (disk1/disk2 images are often identical).
CREATE TABLE IF NOT EXISTS file_set_file_infos (
  file_set_id INTEGER NOT NULL REFERENCES file_sets(id) ON DELETE CASCADE,
  file_info_id INTEGER NOT NULL REFERENCES file_infos(id),
  file_name TEXT NOT NULL,
  PRIMARY KEY (file_set_id, file_info_id, file_name)
);

CREATE INDEX IF NOT EXISTS idx_file_set_file_infos_file_info ON file_set_file_infos(file_info_id);

CREATE TABLE IF NOT EXISTS file_set_systems (
  file_set_id INTEGER NOT NULL REFERENCES file_sets(id) ON DELETE CASCADE,
  system_id INTEGER NOT NULL REFERENCES systems(id),
  PRIMARY KEY (file_set_id, system_id)
);

-- Parsed DAT manifests, stored verbatim for cross-referencing
CREATE TABLE IF NOT EXISTS dat_files (
  id INTEGER PRIMARY KEY AUTOINCREMENT,
  name TEXT NOT NULL,
  description TEXT NOT NULL DEFAULT '',
  version TEXT NOT NULL DEFAULT '',
  author TEXT NOT NULL DEFAULT '',
  homepage TEXT NOT NULL DEFAULT ''
);

CREATE TABLE IF NOT EXISTS dat_games (
  id INTEGER PRIMARY KEY AUTOINCREMENT,
  dat_file_id INTEGER NOT NULL REFERENCES dat_files(id) ON DELETE CASCADE,
  name TEXT NOT NULL,
  description TEXT NOT NULL DEFAULT ''
);

CREATE INDEX IF NOT EXISTS idx_dat_games_dat_file ON dat_games(dat_file_id);

CREATE TABLE IF NOT EXISTS dat_roms (
  id INTEGER PRIMARY KEY AUTOINCREMENT,
  dat_game_id INTEGER NOT NULL REFERENCES dat_games(id) ON DELETE CASCADE,
  name TEXT NOT NULL,
  size INTEGER NOT NULL DEFAULT 0,
  crc TEXT NOT NULL DEFAULT '',
  md5 TEXT NOT NULL DEFAULT '',
  sha1 TEXT NOT NULL DEFAULT ''
);

CREATE INDEX IF NOT EXISTS idx_dat_roms_sha1 ON dat_roms(sha1);

CREATE TABLE IF NOT EXISTS dat_file_file_sets (
  dat_file_id INTEGER NOT NULL REFERENCES dat_files(id) ON DELETE CASCADE,
  file_set_id INTEGER NOT NULL REFERENCES file_sets(id) ON DELETE CASCADE,
  PRIMARY KEY (dat_file_id, file_set_id)
);

-- Append-only per-file-info history of cloud sync state transitions.
-- No foreign key: the log outlives deleted file infos.
CREATE TABLE IF NOT EXISTS file_sync_logs (
  id INTEGER PRIMARY KEY AUTOINCREMENT,
  file_info_id INTEGER NOT NULL,
  status TEXT NOT NULL,
  message TEXT NOT NULL DEFAULT '',
  cloud_key TEXT NOT NULL DEFAULT '',
  created_at DATETIME DEFAULT CURRENT_TIMESTAMP
);

CREATE INDEX IF NOT EXISTS idx_file_sync_logs_file_info ON file_sync_logs(file_info_id);
CREATE INDEX IF NOT EXISTS idx_file_sync_logs_status ON file_sync_logs(status);

CREATE TABLE IF NOT EXISTS settings (
  key TEXT PRIMARY KEY,
  value TEXT NOT NULL
);
`
