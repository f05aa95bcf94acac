package catalog

import (
	"database/sql"
	"fmt"

	"github.com/zorrokid/emulation-file-manager/internal/util"
)

// InsertRelease creates a release and returns its id
func (s *Store) InsertRelease(name string) (int64, error) {
	result, err := s.db.Exec("INSERT INTO releases (name) VALUES (?)", name)
	if err != nil {
		return 0, fmt.Errorf("failed to insert release: %w", err)
	}
	return result.LastInsertId()
}

// GetRelease retrieves a release by id
func (s *Store) GetRelease(id int64) (*Release, error) {
	r := &Release{}
	err := s.db.QueryRow("SELECT id, name FROM releases WHERE id = ?", id).
		Scan(&r.ID, &r.Name)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("release %d: %w", id, util.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get release: %w", err)
	}
	return r, nil
}

// GetReleases retrieves all releases ordered by name
func (s *Store) GetReleases() ([]Release, error) {
	rows, err := s.db.Query("SELECT id, name FROM releases ORDER BY name")
	if err != nil {
		return nil, fmt.Errorf("failed to query releases: %w", err)
	}
	defer rows.Close()

	var releases []Release
	for rows.Next() {
		var r Release
		if err := rows.Scan(&r.ID, &r.Name); err != nil {
			return nil, fmt.Errorf("failed to scan release: %w", err)
		}
		releases = append(releases, r)
	}
	return releases, rows.Err()
}

// LinkReleaseToSoftwareTitle attaches a title to a release (idempotent)
func (s *Store) LinkReleaseToSoftwareTitle(releaseID, softwareTitleID int64) error {
	_, err := s.db.Exec(`
		INSERT OR IGNORE INTO release_software_titles (release_id, software_title_id)
		VALUES (?, ?)`, releaseID, softwareTitleID)
	if err != nil {
		return fmt.Errorf("failed to link release to software title: %w", err)
	}
	return nil
}

// LinkReleaseToSystem attaches a system to a release (idempotent)
func (s *Store) LinkReleaseToSystem(releaseID, systemID int64) error {
	_, err := s.db.Exec(`
		INSERT OR IGNORE INTO release_systems (release_id, system_id)
		VALUES (?, ?)`, releaseID, systemID)
	if err != nil {
		return fmt.Errorf("failed to link release to system: %w", err)
	}
	return nil
}

// LinkReleaseToFileSet attaches a file set to a release (idempotent)
func (s *Store) LinkReleaseToFileSet(releaseID, fileSetID int64) error {
	_, err := s.db.Exec(`
		INSERT OR IGNORE INTO release_file_sets (release_id, file_set_id)
		VALUES (?, ?)`, releaseID, fileSetID)
	if err != nil {
		return fmt.Errorf("failed to link release to file set: %w", err)
	}
	return nil
}

// GetReleasesForFileSet returns the releases linked to a file set
func (s *Store) GetReleasesForFileSet(fileSetID int64) ([]Release, error) {
	rows, err := s.db.Query(`
		SELECT r.id, r.name FROM releases r
		JOIN release_file_sets rfs ON rfs.release_id = r.id
		WHERE rfs.file_set_id = ?
		ORDER BY r.name`, fileSetID)
	if err != nil {
		return nil, fmt.Errorf("failed to query releases for file set: %w", err)
	}
	defer rows.Close()

	var releases []Release
	for rows.Next() {
		var r Release
		if err := rows.Scan(&r.ID, &r.Name); err != nil {
			return nil, fmt.Errorf("failed to scan release: %w", err)
		}
		releases = append(releases, r)
	}
	return releases, rows.Err()
}

// DeleteRelease removes a release. It fails with ErrInUse while any
// file set link remains.
func (s *Store) DeleteRelease(id int64) error {
	var count int
	err := s.db.QueryRow(
		"SELECT COUNT(*) FROM release_file_sets WHERE release_id = ?", id).Scan(&count)
	if err != nil {
		return fmt.Errorf("failed to check release references: %w", err)
	}
	if count > 0 {
		return fmt.Errorf("release %d: %w", id, util.ErrInUse)
	}

	result, err := s.db.Exec("DELETE FROM releases WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("failed to delete release: %w", err)
	}
	if n, _ := result.RowsAffected(); n == 0 {
		return fmt.Errorf("release %d: %w", id, util.ErrNotFound)
	}
	return nil
}
