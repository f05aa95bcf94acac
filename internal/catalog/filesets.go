package catalog

import (
	"database/sql"
	"fmt"
	"sort"

	"github.com/zorrokid/emulation-file-manager/internal/filetype"
	"github.com/zorrokid/emulation-file-manager/internal/util"
)

// NewFileSetFile describes one member for InsertFileSetFull.
// ArchiveName is the freshly written blob name for new content; it is
// ignored (and reported as discarded) when a file info with the same
// (sha1, file type) already exists.
type NewFileSetFile struct {
	Name        string
	SHA1        string
	Size        int64
	ArchiveName string
}

// ReleaseRequest asks InsertFileSetFull to also create a software
// title and a release linked to the new file set, in the same
// transaction
type ReleaseRequest struct {
	ReleaseName       string
	SoftwareTitleName string
	FranchiseID       *int64
}

// InsertFileSetParams carries everything InsertFileSetFull needs
type InsertFileSetParams struct {
	Name      string
	FileName  string
	FileType  filetype.FileType
	Source    string
	Files     []NewFileSetFile
	SystemIDs []int64
	Release   *ReleaseRequest
}

// InsertFileSetResult reports what InsertFileSetFull created
type InsertFileSetResult struct {
	FileSetID       int64
	ReleaseID       int64 // 0 when no release was requested
	SoftwareTitleID int64 // 0 when no release was requested
	// DiscardedArchiveNames are blob names written for content that
	// turned out to already have a file info row; the caller must
	// remove those blobs.
	DiscardedArchiveNames []string
}

// InsertFileSetFull atomically creates a file set with its file infos
// (reusing rows whose (sha1, file type) already exists), links the
// given systems, and optionally creates a software title and release
// linked to the set. Either everything is committed or nothing is.
func (s *Store) InsertFileSetFull(p InsertFileSetParams) (*InsertFileSetResult, error) {
	if len(p.Files) == 0 {
		return nil, fmt.Errorf("file set %q has no files: %w", p.Name, util.ErrInvalidConfig)
	}

	res := &InsertFileSetResult{}
	err := s.Transaction(func(tx *sql.Tx) error {
		result, err := tx.Exec(`
			INSERT INTO file_sets (file_set_name, file_set_file_name, file_type, source)
			VALUES (?, ?, ?, ?)`,
			p.Name, p.FileName, p.FileType.String(), p.Source)
		if err != nil {
			return fmt.Errorf("failed to insert file set: %w", err)
		}
		res.FileSetID, err = result.LastInsertId()
		if err != nil {
			return err
		}

		for _, f := range p.Files {
			fileInfoID, discarded, err := upsertFileInfo(tx, f, p.FileType)
			if err != nil {
				return err
			}
			if discarded != "" {
				res.DiscardedArchiveNames = append(res.DiscardedArchiveNames, discarded)
			}

			_, err = tx.Exec(`
				INSERT INTO file_set_file_infos (file_set_id, file_info_id, file_name)
				VALUES (?, ?, ?)`, res.FileSetID, fileInfoID, f.Name)
			if err != nil {
				return fmt.Errorf("failed to link file info %q: %w", f.Name, err)
			}
		}

		for _, systemID := range p.SystemIDs {
			_, err := tx.Exec(`
				INSERT OR IGNORE INTO file_set_systems (file_set_id, system_id)
				VALUES (?, ?)`, res.FileSetID, systemID)
			if err != nil {
				return fmt.Errorf("failed to link system %d: %w", systemID, err)
			}
		}

		if p.Release != nil {
			if err := insertReleaseFull(tx, p.Release, p.SystemIDs, res); err != nil {
				return err
			}
		}

		return nil
	})
	if err != nil {
		return nil, err
	}
	return res, nil
}

// upsertFileInfo finds or creates the file info row for one member.
// Returns the row id and, when a fresh blob lost the (sha1, file type)
// race against an existing row, the archive name to discard.
func upsertFileInfo(tx *sql.Tx, f NewFileSetFile, ft filetype.FileType) (int64, string, error) {
	var existingID int64
	var existingArchive string
	err := tx.QueryRow(`
		SELECT id, archive_file_name FROM file_infos
		WHERE sha1 = ? AND file_type = ?`, f.SHA1, ft.String()).
		Scan(&existingID, &existingArchive)

	switch {
	case err == nil:
		// The pre-existing row wins; a freshly written blob is surplus
		discarded := ""
		if f.ArchiveName != "" && f.ArchiveName != existingArchive {
			discarded = f.ArchiveName
		}
		return existingID, discarded, nil

	case err == sql.ErrNoRows:
		if f.ArchiveName == "" {
			return 0, "", fmt.Errorf("file %q (%s) has no blob and no existing file info: %w",
				f.Name, f.SHA1, util.ErrNotFound)
		}
		result, err := tx.Exec(`
			INSERT INTO file_infos (sha1, file_size, archive_file_name, file_type)
			VALUES (?, ?, ?, ?)`, f.SHA1, f.Size, f.ArchiveName, ft.String())
		if err != nil {
			return 0, "", fmt.Errorf("failed to insert file info for %q: %w", f.Name, err)
		}
		id, err := result.LastInsertId()
		return id, "", err

	default:
		return 0, "", fmt.Errorf("failed to look up file info for %q: %w", f.Name, err)
	}
}

func insertReleaseFull(tx *sql.Tx, req *ReleaseRequest, systemIDs []int64, res *InsertFileSetResult) error {
	result, err := tx.Exec(
		"INSERT INTO software_titles (name, franchise_id) VALUES (?, ?)",
		req.SoftwareTitleName, req.FranchiseID)
	if err != nil {
		return fmt.Errorf("failed to insert software title: %w", err)
	}
	res.SoftwareTitleID, err = result.LastInsertId()
	if err != nil {
		return err
	}

	result, err = tx.Exec("INSERT INTO releases (name) VALUES (?)", req.ReleaseName)
	if err != nil {
		return fmt.Errorf("failed to insert release: %w", err)
	}
	res.ReleaseID, err = result.LastInsertId()
	if err != nil {
		return err
	}

	if _, err := tx.Exec(`
		INSERT INTO release_software_titles (release_id, software_title_id)
		VALUES (?, ?)`, res.ReleaseID, res.SoftwareTitleID); err != nil {
		return fmt.Errorf("failed to link release to software title: %w", err)
	}

	if _, err := tx.Exec(`
		INSERT INTO release_file_sets (release_id, file_set_id)
		VALUES (?, ?)`, res.ReleaseID, res.FileSetID); err != nil {
		return fmt.Errorf("failed to link release to file set: %w", err)
	}

	for _, systemID := range systemIDs {
		if _, err := tx.Exec(`
			INSERT OR IGNORE INTO release_systems (release_id, system_id)
			VALUES (?, ?)`, res.ReleaseID, systemID); err != nil {
			return fmt.Errorf("failed to link release to system %d: %w", systemID, err)
		}
	}

	return nil
}

// GetFileSet retrieves a file set by id
func (s *Store) GetFileSet(id int64) (*FileSet, error) {
	fs := &FileSet{}
	var ft string
	err := s.db.QueryRow(`
		SELECT id, file_set_name, file_set_file_name, file_type, source
		FROM file_sets WHERE id = ?`, id).
		Scan(&fs.ID, &fs.FileSetName, &fs.FileSetFileName, &ft, &fs.Source)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("file set %d: %w", id, util.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get file set: %w", err)
	}
	fs.FileType, err = filetype.Parse(ft)
	if err != nil {
		return nil, err
	}
	return fs, nil
}

// GetFileSets retrieves all file sets ordered by name
func (s *Store) GetFileSets() ([]FileSet, error) {
	rows, err := s.db.Query(`
		SELECT id, file_set_name, file_set_file_name, file_type, source
		FROM file_sets ORDER BY file_set_name`)
	if err != nil {
		return nil, fmt.Errorf("failed to query file sets: %w", err)
	}
	defer rows.Close()

	var sets []FileSet
	for rows.Next() {
		var fs FileSet
		var ft string
		if err := rows.Scan(&fs.ID, &fs.FileSetName, &fs.FileSetFileName, &ft, &fs.Source); err != nil {
			return nil, fmt.Errorf("failed to scan file set: %w", err)
		}
		fs.FileType, err = filetype.Parse(ft)
		if err != nil {
			return nil, err
		}
		sets = append(sets, fs)
	}
	return sets, rows.Err()
}

// GetFileSetFiles returns the members of a file set with their display names
func (s *Store) GetFileSetFiles(fileSetID int64) ([]FileSetFile, error) {
	rows, err := s.db.Query(`
		SELECT fi.id, fi.sha1, fi.file_size, fi.archive_file_name, fi.file_type, l.file_name
		FROM file_infos fi
		JOIN file_set_file_infos l ON l.file_info_id = fi.id
		WHERE l.file_set_id = ?
		ORDER BY l.file_name`, fileSetID)
	if err != nil {
		return nil, fmt.Errorf("failed to query file set files: %w", err)
	}
	defer rows.Close()

	var files []FileSetFile
	for rows.Next() {
		var f FileSetFile
		var ft string
		if err := rows.Scan(&f.ID, &f.SHA1, &f.FileSize, &f.ArchiveFileName, &ft, &f.FileName); err != nil {
			return nil, fmt.Errorf("failed to scan file set file: %w", err)
		}
		f.FileType, err = filetype.Parse(ft)
		if err != nil {
			return nil, err
		}
		files = append(files, f)
	}
	return files, rows.Err()
}

// IsFileSetInUse reports whether any release references the file set
func (s *Store) IsFileSetInUse(id int64) (bool, error) {
	var count int
	err := s.db.QueryRow(
		"SELECT COUNT(*) FROM release_file_sets WHERE file_set_id = ?", id).Scan(&count)
	if err != nil {
		return false, fmt.Errorf("failed to check file set references: %w", err)
	}
	return count > 0, nil
}

// FindMatchingFileSet looks for a file set of the given type whose
// members form exactly the same multiset of (name, sha1) pairs.
// Returns nil when no set matches.
func (s *Store) FindMatchingFileSet(spec FileSetSpec) (*int64, error) {
	want := memberKey(specPairs(spec.Files))

	rows, err := s.db.Query(
		"SELECT id FROM file_sets WHERE file_type = ?", spec.FileType.String())
	if err != nil {
		return nil, fmt.Errorf("failed to query file sets: %w", err)
	}
	defer rows.Close()

	var candidates []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("failed to scan file set id: %w", err)
		}
		candidates = append(candidates, id)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for _, id := range candidates {
		files, err := s.GetFileSetFiles(id)
		if err != nil {
			return nil, err
		}
		if len(files) != len(spec.Files) {
			continue
		}
		pairs := make([][2]string, len(files))
		for i, f := range files {
			pairs[i] = [2]string{f.FileName, f.SHA1}
		}
		if memberKey(pairs) == want {
			return &id, nil
		}
	}

	return nil, nil
}

// DeletedFileInfo describes a file info removed together with its file set
type DeletedFileInfo struct {
	FileInfo
}

// DeleteFileSet removes the file set row, its link rows and any file
// infos orphaned by the removal, all in one transaction. The orphaned
// file infos are returned so the caller can clean up their blobs and
// mark cloud copies for deletion.
func (s *Store) DeleteFileSet(id int64) ([]FileInfo, error) {
	var orphans []FileInfo

	err := s.Transaction(func(tx *sql.Tx) error {
		rows, err := tx.Query(`
			SELECT DISTINCT fi.id, fi.sha1, fi.file_size, fi.archive_file_name, fi.file_type
			FROM file_infos fi
			JOIN file_set_file_infos l ON l.file_info_id = fi.id
			WHERE l.file_set_id = ?
			AND NOT EXISTS (
				SELECT 1 FROM file_set_file_infos o
				WHERE o.file_info_id = fi.id AND o.file_set_id <> ?
			)`, id, id)
		if err != nil {
			return fmt.Errorf("failed to query orphaned file infos: %w", err)
		}
		orphans, err = scanFileInfos(rows)
		rows.Close()
		if err != nil {
			return err
		}

		result, err := tx.Exec("DELETE FROM file_sets WHERE id = ?", id)
		if err != nil {
			return fmt.Errorf("failed to delete file set: %w", err)
		}
		if n, _ := result.RowsAffected(); n == 0 {
			return fmt.Errorf("file set %d: %w", id, util.ErrNotFound)
		}

		for _, fi := range orphans {
			if _, err := tx.Exec("DELETE FROM file_infos WHERE id = ?", fi.ID); err != nil {
				return fmt.Errorf("failed to delete file info %d: %w", fi.ID, err)
			}
		}

		return nil
	})
	if err != nil {
		return nil, err
	}
	return orphans, nil
}

func specPairs(files []SpecFile) [][2]string {
	pairs := make([][2]string, len(files))
	for i, f := range files {
		pairs[i] = [2]string{f.Name, f.SHA1}
	}
	return pairs
}

// memberKey produces an order-independent fingerprint of member pairs
func memberKey(pairs [][2]string) string {
	keys := make([]string, len(pairs))
	for i, p := range pairs {
		keys[i] = p[0] + "\x00" + p[1]
	}
	sort.Strings(keys)
	out := ""
	for _, k := range keys {
		out += k + "\x01"
	}
	return out
}
