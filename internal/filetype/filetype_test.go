package filetype

import "testing"

func TestDirNames(t *testing.T) {
	tests := []struct {
		ft  FileType
		dir string
	}{
		{Rom, "rom"},
		{DiskImage, "disk"},
		{TapeImage, "tape"},
		{Screenshot, "screenshot"},
		{Manual, "manual"},
		{CoverScan, "cover"},
		{MemorySnapshot, "memory_snapshot"},
	}

	for _, tt := range tests {
		if got := tt.ft.Dir(); got != tt.dir {
			t.Errorf("%v.Dir() = %q, want %q", tt.ft, got, tt.dir)
		}
	}
}

func TestParseRoundTrip(t *testing.T) {
	for _, ft := range All {
		parsed, err := Parse(ft.String())
		if err != nil {
			t.Fatalf("Parse(%q) failed: %v", ft.String(), err)
		}
		if parsed != ft {
			t.Errorf("Parse(%q) = %v, want %v", ft.String(), parsed, ft)
		}
	}

	if _, err := Parse("floppy"); err == nil {
		t.Error("expected error for unknown file type")
	}
}

func TestIsImage(t *testing.T) {
	if !Screenshot.IsImage() || !CoverScan.IsImage() {
		t.Error("screenshot and cover scan should be image types")
	}
	if Rom.IsImage() || Manual.IsImage() {
		t.Error("rom and manual should not be image types")
	}
}
