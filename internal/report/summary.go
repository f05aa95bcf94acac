package report

import (
	"fmt"
	"io"
	"time"

	"github.com/zorrokid/emulation-file-manager/internal/catalog"
	"github.com/zorrokid/emulation-file-manager/internal/util"
)

// SummaryReport is a point-in-time view of the collection
type SummaryReport struct {
	GeneratedAt time.Time

	Stats *catalog.Stats

	DatabasePath string
	StoreRoot    string
	EventLogPath string
}

// GenerateSummaryReport collects the collection status from the catalog
func GenerateSummaryReport(db *catalog.Store, databasePath, storeRoot string) (*SummaryReport, error) {
	stats, err := db.GetStats()
	if err != nil {
		return nil, fmt.Errorf("failed to collect catalog stats: %w", err)
	}
	return &SummaryReport{
		GeneratedAt:  time.Now(),
		Stats:        stats,
		DatabasePath: databasePath,
		StoreRoot:    storeRoot,
	}, nil
}

// WriteText renders the summary as aligned plain text
func (r *SummaryReport) WriteText(w io.Writer) error {
	s := r.Stats

	fmt.Fprintf(w, "Collection status (%s)\n\n", r.GeneratedAt.Format("2006-01-02 15:04:05"))
	if r.DatabasePath != "" {
		fmt.Fprintf(w, "  catalog:  %s\n", r.DatabasePath)
	}
	if r.StoreRoot != "" {
		fmt.Fprintf(w, "  store:    %s\n", r.StoreRoot)
	}
	fmt.Fprintln(w)

	rows := []struct {
		label string
		count int64
	}{
		{"systems", s.Systems},
		{"franchises", s.Franchises},
		{"software titles", s.SoftwareTitles},
		{"releases", s.Releases},
		{"items", s.Items},
		{"file sets", s.FileSets},
		{"stored files", s.FileInfos},
		{"dat files", s.DatFiles},
	}
	for _, row := range rows {
		fmt.Fprintf(w, "  %-16s %d\n", row.label, row.count)
	}
	fmt.Fprintf(w, "  %-16s %s\n", "content size", util.FormatBytes(uint64(s.TotalBytes)))

	if len(s.SyncStatusCounts) > 0 {
		fmt.Fprintf(w, "\nCloud sync:\n")
		order := []catalog.SyncStatus{
			catalog.SyncPending, catalog.SyncInProgress,
			catalog.SyncUploadCompleted, catalog.SyncUploadFailed,
			catalog.SyncDeletionPending, catalog.SyncDeletionCompleted,
			catalog.SyncDeletionFailed,
		}
		for _, status := range order {
			if count, ok := s.SyncStatusCounts[status]; ok {
				fmt.Fprintf(w, "  %-20s %d\n", status, count)
			}
		}
		unlogged := s.FileInfos - sumCounts(s.SyncStatusCounts)
		if unlogged > 0 {
			fmt.Fprintf(w, "  %-20s %d\n", "not yet queued", unlogged)
		}
	}

	return nil
}

func sumCounts(counts map[catalog.SyncStatus]int64) int64 {
	var total int64
	for _, c := range counts {
		total += c
	}
	return total
}
