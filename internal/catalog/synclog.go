package catalog

import (
	"database/sql"
	"fmt"
)

// InsertSyncLog appends a sync log row for a file info and returns its id
func (s *Store) InsertSyncLog(fileInfoID int64, status SyncStatus, message, cloudKey string) (int64, error) {
	result, err := s.db.Exec(`
		INSERT INTO file_sync_logs (file_info_id, status, message, cloud_key)
		VALUES (?, ?, ?, ?)`, fileInfoID, string(status), message, cloudKey)
	if err != nil {
		return 0, fmt.Errorf("failed to insert sync log: %w", err)
	}
	return result.LastInsertId()
}

// GetLatestSyncLog returns the most recent sync log row of a file
// info, or nil when the file info has no sync history
func (s *Store) GetLatestSyncLog(fileInfoID int64) (*FileSyncLog, error) {
	l := &FileSyncLog{}
	err := s.db.QueryRow(`
		SELECT id, file_info_id, status, message, cloud_key, created_at
		FROM file_sync_logs
		WHERE file_info_id = ?
		ORDER BY id DESC LIMIT 1`, fileInfoID).
		Scan(&l.ID, &l.FileInfoID, &l.Status, &l.Message, &l.CloudKey, &l.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get latest sync log: %w", err)
	}
	return l, nil
}

// GetSyncLogs returns the full sync history of a file info in
// insertion order
func (s *Store) GetSyncLogs(fileInfoID int64) ([]FileSyncLog, error) {
	rows, err := s.db.Query(`
		SELECT id, file_info_id, status, message, cloud_key, created_at
		FROM file_sync_logs
		WHERE file_info_id = ?
		ORDER BY id`, fileInfoID)
	if err != nil {
		return nil, fmt.Errorf("failed to query sync logs: %w", err)
	}
	defer rows.Close()

	return scanSyncLogs(rows)
}

// SyncLogsForUpload returns up to limit sync log rows whose latest
// state makes them eligible for (re-)upload: Pending or UploadFailed
func (s *Store) SyncLogsForUpload(limit int) ([]FileSyncLog, error) {
	rows, err := s.db.Query(`
		SELECT l.id, l.file_info_id, l.status, l.message, l.cloud_key, l.created_at
		FROM file_sync_logs l
		JOIN (
			SELECT file_info_id, MAX(id) AS max_id
			FROM file_sync_logs
			GROUP BY file_info_id
		) latest ON latest.max_id = l.id
		WHERE l.status IN (?, ?)
		ORDER BY l.id
		LIMIT ?`, string(SyncPending), string(SyncUploadFailed), limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query uploadable sync logs: %w", err)
	}
	defer rows.Close()

	return scanSyncLogs(rows)
}

func scanSyncLogs(rows *sql.Rows) ([]FileSyncLog, error) {
	var logs []FileSyncLog
	for rows.Next() {
		var l FileSyncLog
		if err := rows.Scan(&l.ID, &l.FileInfoID, &l.Status, &l.Message, &l.CloudKey, &l.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan sync log: %w", err)
		}
		logs = append(logs, l)
	}
	return logs, rows.Err()
}
