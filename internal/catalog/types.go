package catalog

import (
	"time"

	"github.com/zorrokid/emulation-file-manager/internal/filetype"
)

// System is a platform/console grouping
type System struct {
	ID   int64
	Name string
}

// Franchise groups software titles into a series
type Franchise struct {
	ID   int64
	Name string
}

// SoftwareTitle is a canonical title, distinct from a regional release
type SoftwareTitle struct {
	ID          int64
	Name        string
	FranchiseID *int64
}

// Release is a concrete regional/edition release of one or more titles
type Release struct {
	ID   int64
	Name string
}

// ItemType is one of the physical/media categories an item can have
type ItemType string

const (
	ItemDisk             ItemType = "disk"
	ItemTape             ItemType = "tape"
	ItemCartridge        ItemType = "cartridge"
	ItemCd               ItemType = "cd"
	ItemDvd              ItemType = "dvd"
	ItemFloppyDisk       ItemType = "floppy_disk"
	ItemManual           ItemType = "manual"
	ItemBox              ItemType = "box"
	ItemBoxInsert        ItemType = "box_insert"
	ItemMap              ItemType = "map"
	ItemPoster           ItemType = "poster"
	ItemRegistrationCard ItemType = "registration_card"
	ItemMemoryCard       ItemType = "memory_card"
	ItemOverlay          ItemType = "overlay"
	ItemCatalog          ItemType = "catalog"
	ItemMagazine         ItemType = "magazine"
	ItemOther            ItemType = "other"
)

// ItemTypes lists all known item categories
var ItemTypes = []ItemType{
	ItemDisk, ItemTape, ItemCartridge, ItemCd, ItemDvd, ItemFloppyDisk,
	ItemManual, ItemBox, ItemBoxInsert, ItemMap, ItemPoster,
	ItemRegistrationCard, ItemMemoryCard, ItemOverlay, ItemCatalog,
	ItemMagazine, ItemOther,
}

// Item groups file sets within a release
type Item struct {
	ID        int64
	ReleaseID int64
	ItemType  ItemType
	Notes     string
}

// FileSet is a logical group of files making one release artifact
type FileSet struct {
	ID              int64
	FileSetName     string
	FileSetFileName string
	FileType        filetype.FileType
	Source          string
}

// FileInfo identifies one concrete stored blob
type FileInfo struct {
	ID              int64
	SHA1            string // hex SHA-1 of the uncompressed content
	FileSize        int64
	ArchiveFileName string
	FileType        filetype.FileType
}

// FileSetFile is a FileInfo together with its display name inside a set
type FileSetFile struct {
	FileInfo
	FileName string
}

// SyncStatus is the state of a file info's remote copy
type SyncStatus string

const (
	SyncPending           SyncStatus = "pending"
	SyncInProgress        SyncStatus = "in_progress"
	SyncUploadCompleted   SyncStatus = "upload_completed"
	SyncUploadFailed      SyncStatus = "upload_failed"
	SyncDeletionPending   SyncStatus = "deletion_pending"
	SyncDeletionCompleted SyncStatus = "deletion_completed"
	SyncDeletionFailed    SyncStatus = "deletion_failed"
)

// FileSyncLog is one row of the append-only sync history
type FileSyncLog struct {
	ID         int64
	FileInfoID int64
	Status     SyncStatus
	Message    string
	CloudKey   string
	CreatedAt  time.Time
}

// DatFile is a stored DAT manifest header with its games
type DatFile struct {
	ID          int64
	Name        string
	Description string
	Version     string
	Author      string
	Homepage    string
	Games       []DatGame
}

// DatGame is one game entry of a DAT manifest
type DatGame struct {
	ID          int64
	DatFileID   int64
	Name        string
	Description string
	Roms        []DatRom
}

// DatRom is one ROM dump of a DAT game
type DatRom struct {
	ID        int64
	DatGameID int64
	Name      string
	Size      int64
	CRC       string
	MD5       string
	SHA1      string
}

// SpecFile is one member of a FileSetSpec
type SpecFile struct {
	Name string
	SHA1 string
}

// FileSetSpec describes a file set by its unordered member multiset,
// used for DAT matching
type FileSetSpec struct {
	Name     string
	FileType filetype.FileType
	Source   string
	Files    []SpecFile
}

// Setting is one key/value configuration row
type Setting struct {
	Key   string
	Value string
}
