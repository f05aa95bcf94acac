package dat

import (
	"fmt"
	"strings"

	"github.com/zorrokid/emulation-file-manager/internal/catalog"
	"github.com/zorrokid/emulation-file-manager/internal/filetype"
)

// MatchKind classifies a DAT game against the catalog
type MatchKind int

const (
	// NonExisting means no stored file set matches the game's ROMs;
	// ingest is the proposed action
	NonExisting MatchKind = iota
	// ExistingLinkedToThisDat means a matching file set exists and is
	// already linked; nothing to do
	ExistingLinkedToThisDat
	// ExistingUnlinkedToThisDat means a matching file set exists but
	// the DAT link is missing; linking is the proposed action
	ExistingUnlinkedToThisDat
)

func (k MatchKind) String() string {
	switch k {
	case NonExisting:
		return "non_existing"
	case ExistingLinkedToThisDat:
		return "existing_linked"
	case ExistingUnlinkedToThisDat:
		return "existing_unlinked"
	default:
		return fmt.Sprintf("MatchKind(%d)", int(k))
	}
}

// Match is the outcome for one DAT game
type Match struct {
	Game      catalog.DatGame
	Kind      MatchKind
	FileSetID int64 // set for Existing* kinds
}

// Matcher resolves DAT games against stored file sets
type Matcher struct {
	catalog *catalog.Store
}

// NewMatcher creates a matcher over the catalog
func NewMatcher(cat *catalog.Store) *Matcher {
	return &Matcher{catalog: cat}
}

// MatchGame looks for a stored file set whose members form exactly the
// game's (rom-name, sha1) multiset. Equal content under different
// member names does not match.
func (m *Matcher) MatchGame(datFile *catalog.DatFile, game catalog.DatGame, ft filetype.FileType) (*Match, error) {
	spec := GameSpec(datFile, game, ft)

	fileSetID, err := m.catalog.FindMatchingFileSet(spec)
	if err != nil {
		return nil, err
	}
	if fileSetID == nil {
		return &Match{Game: game, Kind: NonExisting}, nil
	}

	linked, err := m.catalog.IsFileSetLinkedToDat(datFile.ID, *fileSetID)
	if err != nil {
		return nil, err
	}
	kind := ExistingUnlinkedToThisDat
	if linked {
		kind = ExistingLinkedToThisDat
	}
	return &Match{Game: game, Kind: kind, FileSetID: *fileSetID}, nil
}

// MatchAll resolves every game of the manifest
func (m *Matcher) MatchAll(datFile *catalog.DatFile, ft filetype.FileType) ([]Match, error) {
	matches := make([]Match, 0, len(datFile.Games))
	for _, game := range datFile.Games {
		match, err := m.MatchGame(datFile, game, ft)
		if err != nil {
			return nil, err
		}
		matches = append(matches, *match)
	}
	return matches, nil
}

// GameSpec builds the file set spec describing a DAT game
func GameSpec(datFile *catalog.DatFile, game catalog.DatGame, ft filetype.FileType) catalog.FileSetSpec {
	spec := catalog.FileSetSpec{
		Name:     game.Name,
		FileType: ft,
		Source:   strings.TrimSpace(datFile.Name + " " + datFile.Version),
	}
	for _, rom := range game.Roms {
		spec.Files = append(spec.Files, catalog.SpecFile{Name: rom.Name, SHA1: rom.SHA1})
	}
	return spec
}
