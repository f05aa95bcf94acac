package catalog

import (
	"database/sql"
	"fmt"
	"strings"

	"github.com/zorrokid/emulation-file-manager/internal/filetype"
	"github.com/zorrokid/emulation-file-manager/internal/util"
)

// GetFileInfo retrieves a file info by id
func (s *Store) GetFileInfo(id int64) (*FileInfo, error) {
	fi := &FileInfo{}
	var ft string
	err := s.db.QueryRow(`
		SELECT id, sha1, file_size, archive_file_name, file_type
		FROM file_infos WHERE id = ?`, id).
		Scan(&fi.ID, &fi.SHA1, &fi.FileSize, &fi.ArchiveFileName, &ft)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("file info %d: %w", id, util.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get file info: %w", err)
	}
	fi.FileType, err = filetype.Parse(ft)
	if err != nil {
		return nil, err
	}
	return fi, nil
}

// FindExistingFileInfos returns the file infos whose (sha1, file type)
// pair matches one of the given hashes
func (s *Store) FindExistingFileInfos(sha1s []string, ft filetype.FileType) ([]FileInfo, error) {
	if len(sha1s) == 0 {
		return nil, nil
	}

	placeholders := strings.Repeat("?,", len(sha1s))
	placeholders = placeholders[:len(placeholders)-1]

	args := make([]interface{}, 0, len(sha1s)+1)
	for _, h := range sha1s {
		args = append(args, h)
	}
	args = append(args, ft.String())

	rows, err := s.db.Query(fmt.Sprintf(`
		SELECT id, sha1, file_size, archive_file_name, file_type
		FROM file_infos
		WHERE sha1 IN (%s) AND file_type = ?`, placeholders), args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query file infos: %w", err)
	}
	defer rows.Close()

	return scanFileInfos(rows)
}

// IsOrphanAfterFileSetRemoval reports whether fileSetID is the only
// file set linking the given file info
func (s *Store) IsOrphanAfterFileSetRemoval(fileInfoID, fileSetID int64) (bool, error) {
	var count int
	err := s.db.QueryRow(`
		SELECT COUNT(*) FROM file_set_file_infos
		WHERE file_info_id = ? AND file_set_id <> ?`, fileInfoID, fileSetID).
		Scan(&count)
	if err != nil {
		return false, fmt.Errorf("failed to count file info references: %w", err)
	}
	return count == 0, nil
}

// FileInfosWithoutSyncLog returns up to limit file infos that have no
// sync log row yet
func (s *Store) FileInfosWithoutSyncLog(limit int) ([]FileInfo, error) {
	rows, err := s.db.Query(`
		SELECT fi.id, fi.sha1, fi.file_size, fi.archive_file_name, fi.file_type
		FROM file_infos fi
		WHERE NOT EXISTS (
			SELECT 1 FROM file_sync_logs l WHERE l.file_info_id = fi.id
		)
		ORDER BY fi.id
		LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query unsynced file infos: %w", err)
	}
	defer rows.Close()

	return scanFileInfos(rows)
}

func scanFileInfos(rows *sql.Rows) ([]FileInfo, error) {
	var infos []FileInfo
	for rows.Next() {
		var fi FileInfo
		var ft string
		if err := rows.Scan(&fi.ID, &fi.SHA1, &fi.FileSize, &fi.ArchiveFileName, &ft); err != nil {
			return nil, fmt.Errorf("failed to scan file info: %w", err)
		}
		parsed, err := filetype.Parse(ft)
		if err != nil {
			return nil, err
		}
		fi.FileType = parsed
		infos = append(infos, fi)
	}
	return infos, rows.Err()
}
