package catalog

import (
	"fmt"
)

// Stats is a snapshot of catalog row counts and stored content size
type Stats struct {
	Systems        int64
	Franchises     int64
	SoftwareTitles int64
	Releases       int64
	Items          int64
	FileSets       int64
	FileInfos      int64
	DatFiles       int64
	// TotalBytes is the uncompressed size of all stored content
	TotalBytes int64
	// SyncStatusCounts maps the latest sync status of each file info
	// to the number of file infos in that state
	SyncStatusCounts map[SyncStatus]int64
}

// GetStats collects row counts per entity table, the total stored
// content size and the distribution of latest sync statuses
func (s *Store) GetStats() (*Stats, error) {
	st := &Stats{SyncStatusCounts: make(map[SyncStatus]int64)}

	counts := []struct {
		table string
		dest  *int64
	}{
		{"systems", &st.Systems},
		{"franchises", &st.Franchises},
		{"software_titles", &st.SoftwareTitles},
		{"releases", &st.Releases},
		{"items", &st.Items},
		{"file_sets", &st.FileSets},
		{"file_infos", &st.FileInfos},
		{"dat_files", &st.DatFiles},
	}
	for _, c := range counts {
		err := s.db.QueryRow("SELECT COUNT(*) FROM " + c.table).Scan(c.dest)
		if err != nil {
			return nil, fmt.Errorf("failed to count %s: %w", c.table, err)
		}
	}

	err := s.db.QueryRow(
		"SELECT COALESCE(SUM(file_size), 0) FROM file_infos").Scan(&st.TotalBytes)
	if err != nil {
		return nil, fmt.Errorf("failed to sum file sizes: %w", err)
	}

	rows, err := s.db.Query(`
		SELECT l.status, COUNT(*)
		FROM file_sync_logs l
		JOIN (
			SELECT file_info_id, MAX(id) AS max_id
			FROM file_sync_logs
			GROUP BY file_info_id
		) latest ON latest.max_id = l.id
		GROUP BY l.status`)
	if err != nil {
		return nil, fmt.Errorf("failed to count sync statuses: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var status string
		var count int64
		if err := rows.Scan(&status, &count); err != nil {
			return nil, fmt.Errorf("failed to scan sync status count: %w", err)
		}
		st.SyncStatusCounts[SyncStatus(status)] = count
	}
	return st, rows.Err()
}
