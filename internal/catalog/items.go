package catalog

import (
	"database/sql"
	"fmt"

	"github.com/zorrokid/emulation-file-manager/internal/util"
)

// InsertItem creates an item under a release and returns its id
func (s *Store) InsertItem(releaseID int64, itemType ItemType, notes string) (int64, error) {
	result, err := s.db.Exec(
		"INSERT INTO items (release_id, item_type, notes) VALUES (?, ?, ?)",
		releaseID, string(itemType), notes)
	if err != nil {
		return 0, fmt.Errorf("failed to insert item: %w", err)
	}
	return result.LastInsertId()
}

// GetItem retrieves an item by id
func (s *Store) GetItem(id int64) (*Item, error) {
	i := &Item{}
	var notes sql.NullString
	err := s.db.QueryRow(
		"SELECT id, release_id, item_type, notes FROM items WHERE id = ?", id).
		Scan(&i.ID, &i.ReleaseID, &i.ItemType, &notes)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("item %d: %w", id, util.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get item: %w", err)
	}
	i.Notes = notes.String
	return i, nil
}

// GetItemsForRelease returns the items of a release
func (s *Store) GetItemsForRelease(releaseID int64) ([]Item, error) {
	rows, err := s.db.Query(`
		SELECT id, release_id, item_type, COALESCE(notes, '')
		FROM items WHERE release_id = ? ORDER BY id`, releaseID)
	if err != nil {
		return nil, fmt.Errorf("failed to query items: %w", err)
	}
	defer rows.Close()

	var items []Item
	for rows.Next() {
		var i Item
		if err := rows.Scan(&i.ID, &i.ReleaseID, &i.ItemType, &i.Notes); err != nil {
			return nil, fmt.Errorf("failed to scan item: %w", err)
		}
		items = append(items, i)
	}
	return items, rows.Err()
}

// LinkFileSetToItems attaches a file set to each of the given items
// in one transaction (idempotent per pair)
func (s *Store) LinkFileSetToItems(itemIDs []int64, fileSetID int64) error {
	if len(itemIDs) == 0 {
		return nil
	}
	return s.Transaction(func(tx *sql.Tx) error {
		for _, itemID := range itemIDs {
			_, err := tx.Exec(`
				INSERT OR IGNORE INTO item_file_sets (item_id, file_set_id)
				VALUES (?, ?)`, itemID, fileSetID)
			if err != nil {
				return fmt.Errorf("failed to link item %d to file set: %w", itemID, err)
			}
		}
		return nil
	})
}

// DeleteItem removes an item and its file set links
func (s *Store) DeleteItem(id int64) error {
	result, err := s.db.Exec("DELETE FROM items WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("failed to delete item: %w", err)
	}
	if n, _ := result.RowsAffected(); n == 0 {
		return fmt.Errorf("item %d: %w", id, util.ErrNotFound)
	}
	return nil
}
