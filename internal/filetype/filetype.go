package filetype

import "fmt"

// FileType classifies the content of a stored file and determines its
// directory namespace within the content store.
type FileType int

const (
	Rom FileType = iota + 1
	DiskImage
	TapeImage
	Screenshot
	Manual
	CoverScan
	MemorySnapshot
)

// All lists every known file type
var All = []FileType{Rom, DiskImage, TapeImage, Screenshot, Manual, CoverScan, MemorySnapshot}

var names = map[FileType]string{
	Rom:            "rom",
	DiskImage:      "disk_image",
	TapeImage:      "tape_image",
	Screenshot:     "screenshot",
	Manual:         "manual",
	CoverScan:      "cover_scan",
	MemorySnapshot: "memory_snapshot",
}

var dirs = map[FileType]string{
	Rom:            "rom",
	DiskImage:      "disk",
	TapeImage:      "tape",
	Screenshot:     "screenshot",
	Manual:         "manual",
	CoverScan:      "cover",
	MemorySnapshot: "memory_snapshot",
}

func (t FileType) String() string {
	if name, ok := names[t]; ok {
		return name
	}
	return fmt.Sprintf("filetype(%d)", int(t))
}

// Dir returns the content-store directory name for this file type
func (t FileType) Dir() string {
	return dirs[t]
}

// Valid reports whether t is a known file type
func (t FileType) Valid() bool {
	_, ok := names[t]
	return ok
}

// IsImage reports whether files of this type are images that get
// thumbnails generated for them
func (t FileType) IsImage() bool {
	return t == Screenshot || t == CoverScan
}

// Parse converts a file type name to its FileType value
func Parse(s string) (FileType, error) {
	for t, name := range names {
		if name == s {
			return t, nil
		}
	}
	return 0, fmt.Errorf("unknown file type: %q", s)
}
