package catalog

import (
	"database/sql"
	"fmt"

	"github.com/zorrokid/emulation-file-manager/internal/util"
)

// InsertDatFile stores a parsed DAT manifest with all its games and
// ROMs in one transaction and returns the dat file id
func (s *Store) InsertDatFile(df *DatFile) (int64, error) {
	var datFileID int64
	err := s.Transaction(func(tx *sql.Tx) error {
		result, err := tx.Exec(`
			INSERT INTO dat_files (name, description, version, author, homepage)
			VALUES (?, ?, ?, ?, ?)`,
			df.Name, df.Description, df.Version, df.Author, df.Homepage)
		if err != nil {
			return fmt.Errorf("failed to insert dat file: %w", err)
		}
		datFileID, err = result.LastInsertId()
		if err != nil {
			return err
		}

		for _, game := range df.Games {
			result, err := tx.Exec(`
				INSERT INTO dat_games (dat_file_id, name, description)
				VALUES (?, ?, ?)`, datFileID, game.Name, game.Description)
			if err != nil {
				return fmt.Errorf("failed to insert dat game %q: %w", game.Name, err)
			}
			gameID, err := result.LastInsertId()
			if err != nil {
				return err
			}

			for _, rom := range game.Roms {
				_, err := tx.Exec(`
					INSERT INTO dat_roms (dat_game_id, name, size, crc, md5, sha1)
					VALUES (?, ?, ?, ?, ?, ?)`,
					gameID, rom.Name, rom.Size, rom.CRC, rom.MD5, rom.SHA1)
				if err != nil {
					return fmt.Errorf("failed to insert dat rom %q: %w", rom.Name, err)
				}
			}
		}

		return nil
	})
	if err != nil {
		return 0, err
	}
	return datFileID, nil
}

// GetDatFile loads a DAT manifest with its games and ROMs
func (s *Store) GetDatFile(id int64) (*DatFile, error) {
	df := &DatFile{}
	err := s.db.QueryRow(`
		SELECT id, name, description, version, author, homepage
		FROM dat_files WHERE id = ?`, id).
		Scan(&df.ID, &df.Name, &df.Description, &df.Version, &df.Author, &df.Homepage)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("dat file %d: %w", id, util.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get dat file: %w", err)
	}

	gameRows, err := s.db.Query(`
		SELECT id, dat_file_id, name, description
		FROM dat_games WHERE dat_file_id = ? ORDER BY id`, id)
	if err != nil {
		return nil, fmt.Errorf("failed to query dat games: %w", err)
	}
	defer gameRows.Close()

	for gameRows.Next() {
		var g DatGame
		if err := gameRows.Scan(&g.ID, &g.DatFileID, &g.Name, &g.Description); err != nil {
			return nil, fmt.Errorf("failed to scan dat game: %w", err)
		}
		df.Games = append(df.Games, g)
	}
	if err := gameRows.Err(); err != nil {
		return nil, err
	}

	for i := range df.Games {
		romRows, err := s.db.Query(`
			SELECT id, dat_game_id, name, size, crc, md5, sha1
			FROM dat_roms WHERE dat_game_id = ? ORDER BY id`, df.Games[i].ID)
		if err != nil {
			return nil, fmt.Errorf("failed to query dat roms: %w", err)
		}
		for romRows.Next() {
			var r DatRom
			if err := romRows.Scan(&r.ID, &r.DatGameID, &r.Name, &r.Size, &r.CRC, &r.MD5, &r.SHA1); err != nil {
				romRows.Close()
				return nil, fmt.Errorf("failed to scan dat rom: %w", err)
			}
			df.Games[i].Roms = append(df.Games[i].Roms, r)
		}
		if err := romRows.Err(); err != nil {
			romRows.Close()
			return nil, err
		}
		romRows.Close()
	}

	return df, nil
}

// GetDatFiles returns every stored DAT manifest header, without games
func (s *Store) GetDatFiles() ([]DatFile, error) {
	rows, err := s.db.Query(`
		SELECT id, name, description, version, author, homepage
		FROM dat_files ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("failed to query dat files: %w", err)
	}
	defer rows.Close()

	var files []DatFile
	for rows.Next() {
		var df DatFile
		if err := rows.Scan(&df.ID, &df.Name, &df.Description, &df.Version, &df.Author, &df.Homepage); err != nil {
			return nil, fmt.Errorf("failed to scan dat file: %w", err)
		}
		files = append(files, df)
	}
	return files, rows.Err()
}

// LinkDatFileToFileSet attaches a file set to a DAT manifest.
// Re-linking the same pair is a no-op, so re-importing a DAT never
// duplicates rows.
func (s *Store) LinkDatFileToFileSet(datFileID, fileSetID int64) error {
	_, err := s.db.Exec(`
		INSERT OR IGNORE INTO dat_file_file_sets (dat_file_id, file_set_id)
		VALUES (?, ?)`, datFileID, fileSetID)
	if err != nil {
		return fmt.Errorf("failed to link dat file to file set: %w", err)
	}
	return nil
}

// IsFileSetLinkedToDat reports whether the file set is linked to the DAT
func (s *Store) IsFileSetLinkedToDat(datFileID, fileSetID int64) (bool, error) {
	var count int
	err := s.db.QueryRow(`
		SELECT COUNT(*) FROM dat_file_file_sets
		WHERE dat_file_id = ? AND file_set_id = ?`, datFileID, fileSetID).
		Scan(&count)
	if err != nil {
		return false, fmt.Errorf("failed to check dat link: %w", err)
	}
	return count > 0, nil
}

// CountDatLinks returns the number of file sets linked to a DAT
func (s *Store) CountDatLinks(datFileID int64) (int, error) {
	var count int
	err := s.db.QueryRow(
		"SELECT COUNT(*) FROM dat_file_file_sets WHERE dat_file_id = ?", datFileID).
		Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count dat links: %w", err)
	}
	return count, nil
}
