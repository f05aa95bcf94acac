package catalog

import (
	"database/sql"
	"fmt"

	"github.com/zorrokid/emulation-file-manager/internal/util"
)

// InsertSystem creates a system and returns its id
func (s *Store) InsertSystem(name string) (int64, error) {
	result, err := s.db.Exec("INSERT INTO systems (name) VALUES (?)", name)
	if err != nil {
		return 0, fmt.Errorf("failed to insert system: %w", err)
	}
	return result.LastInsertId()
}

// GetSystem retrieves a system by id
func (s *Store) GetSystem(id int64) (*System, error) {
	sys := &System{}
	err := s.db.QueryRow("SELECT id, name FROM systems WHERE id = ?", id).
		Scan(&sys.ID, &sys.Name)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("system %d: %w", id, util.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get system: %w", err)
	}
	return sys, nil
}

// GetSystems retrieves all systems ordered by name
func (s *Store) GetSystems() ([]System, error) {
	rows, err := s.db.Query("SELECT id, name FROM systems ORDER BY name")
	if err != nil {
		return nil, fmt.Errorf("failed to query systems: %w", err)
	}
	defer rows.Close()

	var systems []System
	for rows.Next() {
		var sys System
		if err := rows.Scan(&sys.ID, &sys.Name); err != nil {
			return nil, fmt.Errorf("failed to scan system: %w", err)
		}
		systems = append(systems, sys)
	}
	return systems, rows.Err()
}

// IsSystemInUse reports whether any release or file set references the system
func (s *Store) IsSystemInUse(id int64) (bool, error) {
	var count int
	err := s.db.QueryRow(`
		SELECT
			(SELECT COUNT(*) FROM release_systems WHERE system_id = ?) +
			(SELECT COUNT(*) FROM file_set_systems WHERE system_id = ?)
	`, id, id).Scan(&count)
	if err != nil {
		return false, fmt.Errorf("failed to check system references: %w", err)
	}
	return count > 0, nil
}

// DeleteSystem removes a system. It fails with ErrInUse while any
// release or file set still references it.
func (s *Store) DeleteSystem(id int64) error {
	inUse, err := s.IsSystemInUse(id)
	if err != nil {
		return err
	}
	if inUse {
		return fmt.Errorf("system %d: %w", id, util.ErrInUse)
	}

	result, err := s.db.Exec("DELETE FROM systems WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("failed to delete system: %w", err)
	}
	if n, _ := result.RowsAffected(); n == 0 {
		return fmt.Errorf("system %d: %w", id, util.ErrNotFound)
	}
	return nil
}
