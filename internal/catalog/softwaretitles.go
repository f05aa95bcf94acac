package catalog

import (
	"database/sql"
	"fmt"

	"github.com/zorrokid/emulation-file-manager/internal/util"
)

// InsertSoftwareTitle creates a software title and returns its id
func (s *Store) InsertSoftwareTitle(name string, franchiseID *int64) (int64, error) {
	result, err := s.db.Exec(
		"INSERT INTO software_titles (name, franchise_id) VALUES (?, ?)",
		name, franchiseID)
	if err != nil {
		return 0, fmt.Errorf("failed to insert software title: %w", err)
	}
	return result.LastInsertId()
}

// GetSoftwareTitle retrieves a software title by id
func (s *Store) GetSoftwareTitle(id int64) (*SoftwareTitle, error) {
	t := &SoftwareTitle{}
	err := s.db.QueryRow(
		"SELECT id, name, franchise_id FROM software_titles WHERE id = ?", id).
		Scan(&t.ID, &t.Name, &t.FranchiseID)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("software title %d: %w", id, util.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get software title: %w", err)
	}
	return t, nil
}

// FindSoftwareTitleByName retrieves a software title by exact name,
// or nil when no such title exists
func (s *Store) FindSoftwareTitleByName(name string) (*SoftwareTitle, error) {
	t := &SoftwareTitle{}
	err := s.db.QueryRow(
		"SELECT id, name, franchise_id FROM software_titles WHERE name = ?", name).
		Scan(&t.ID, &t.Name, &t.FranchiseID)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find software title: %w", err)
	}
	return t, nil
}

// GetSoftwareTitles retrieves all software titles ordered by name
func (s *Store) GetSoftwareTitles() ([]SoftwareTitle, error) {
	rows, err := s.db.Query("SELECT id, name, franchise_id FROM software_titles ORDER BY name")
	if err != nil {
		return nil, fmt.Errorf("failed to query software titles: %w", err)
	}
	defer rows.Close()

	var titles []SoftwareTitle
	for rows.Next() {
		var t SoftwareTitle
		if err := rows.Scan(&t.ID, &t.Name, &t.FranchiseID); err != nil {
			return nil, fmt.Errorf("failed to scan software title: %w", err)
		}
		titles = append(titles, t)
	}
	return titles, rows.Err()
}

// DeleteSoftwareTitle removes a software title. It fails with ErrInUse
// while any release is linked to it.
func (s *Store) DeleteSoftwareTitle(id int64) error {
	var count int
	err := s.db.QueryRow(
		"SELECT COUNT(*) FROM release_software_titles WHERE software_title_id = ?", id).
		Scan(&count)
	if err != nil {
		return fmt.Errorf("failed to check software title references: %w", err)
	}
	if count > 0 {
		return fmt.Errorf("software title %d: %w", id, util.ErrInUse)
	}

	result, err := s.db.Exec("DELETE FROM software_titles WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("failed to delete software title: %w", err)
	}
	if n, _ := result.RowsAffected(); n == 0 {
		return fmt.Errorf("software title %d: %w", id, util.ErrNotFound)
	}
	return nil
}
