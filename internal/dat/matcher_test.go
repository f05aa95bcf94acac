package dat

import (
	"path/filepath"
	"strings"
	"testing"

	"github.com/zorrokid/emulation-file-manager/internal/catalog"
	"github.com/zorrokid/emulation-file-manager/internal/filetype"
)

func openTestCatalog(t *testing.T) *catalog.Store {
	t.Helper()
	cat, err := catalog.Open(filepath.Join(t.TempDir(), "catalog.db"))
	if err != nil {
		t.Fatalf("failed to open catalog: %v", err)
	}
	t.Cleanup(func() { cat.Close() })
	return cat
}

func storeDat(t *testing.T, cat *catalog.Store) *catalog.DatFile {
	t.Helper()
	parsed, err := Parse(strings.NewReader(colecoDat))
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	id, err := cat.InsertDatFile(parsed)
	if err != nil {
		t.Fatalf("InsertDatFile failed: %v", err)
	}
	df, err := cat.GetDatFile(id)
	if err != nil {
		t.Fatalf("GetDatFile failed: %v", err)
	}
	return df
}

func insertMatchingSet(t *testing.T, cat *catalog.Store, game catalog.DatGame) int64 {
	t.Helper()
	var files []catalog.NewFileSetFile
	for i, rom := range game.Roms {
		files = append(files, catalog.NewFileSetFile{
			Name: rom.Name, SHA1: rom.SHA1, Size: rom.Size,
			ArchiveName: "uuid-" + rom.Name + string(rune('a'+i)),
		})
	}
	res, err := cat.InsertFileSetFull(catalog.InsertFileSetParams{
		Name:     game.Name,
		FileName: game.Name + ".zip",
		FileType: filetype.Rom,
		Files:    files,
	})
	if err != nil {
		t.Fatalf("InsertFileSetFull failed: %v", err)
	}
	return res.FileSetID
}

func TestMatcherOutcomes(t *testing.T) {
	cat := openTestCatalog(t)
	df := storeDat(t, cat)
	matcher := NewMatcher(cat)

	bios, zaxxon := df.Games[0], df.Games[1]

	// nothing ingested yet
	match, err := matcher.MatchGame(df, bios, filetype.Rom)
	if err != nil {
		t.Fatalf("MatchGame failed: %v", err)
	}
	if match.Kind != NonExisting {
		t.Errorf("expected non_existing, got %s", match.Kind)
	}

	// ingest the bios rom: unlinked match
	fileSetID := insertMatchingSet(t, cat, bios)
	match, err = matcher.MatchGame(df, bios, filetype.Rom)
	if err != nil {
		t.Fatalf("MatchGame failed: %v", err)
	}
	if match.Kind != ExistingUnlinkedToThisDat || match.FileSetID != fileSetID {
		t.Errorf("expected existing_unlinked for set %d, got %+v", fileSetID, match)
	}

	// link it: linked match
	if err := cat.LinkDatFileToFileSet(df.ID, fileSetID); err != nil {
		t.Fatalf("LinkDatFileToFileSet failed: %v", err)
	}
	match, err = matcher.MatchGame(df, bios, filetype.Rom)
	if err != nil {
		t.Fatalf("MatchGame failed: %v", err)
	}
	if match.Kind != ExistingLinkedToThisDat {
		t.Errorf("expected existing_linked, got %s", match.Kind)
	}

	// the other game remains unmatched
	match, err = matcher.MatchGame(df, zaxxon, filetype.Rom)
	if err != nil {
		t.Fatalf("MatchGame failed: %v", err)
	}
	if match.Kind != NonExisting {
		t.Errorf("expected non_existing for zaxxon, got %s", match.Kind)
	}
}

func TestMatcherRequiresSameMemberNames(t *testing.T) {
	cat := openTestCatalog(t)
	df := storeDat(t, cat)
	matcher := NewMatcher(cat)

	bios := df.Games[0]
	// same hash, different member name
	renamed := bios
	renamed.Roms = []catalog.DatRom{{
		Name: "renamed.rom", Size: bios.Roms[0].Size, SHA1: bios.Roms[0].SHA1,
	}}
	insertMatchingSet(t, cat, renamed)

	match, err := matcher.MatchGame(df, bios, filetype.Rom)
	if err != nil {
		t.Fatalf("MatchGame failed: %v", err)
	}
	if match.Kind != NonExisting {
		t.Errorf("renamed member must not match, got %s", match.Kind)
	}
}

func TestMatchAll(t *testing.T) {
	cat := openTestCatalog(t)
	df := storeDat(t, cat)
	matcher := NewMatcher(cat)

	insertMatchingSet(t, cat, df.Games[1])

	matches, err := matcher.MatchAll(df, filetype.Rom)
	if err != nil {
		t.Fatalf("MatchAll failed: %v", err)
	}
	if len(matches) != 2 {
		t.Fatalf("expected 2 matches, got %d", len(matches))
	}
	if matches[0].Kind != NonExisting || matches[1].Kind != ExistingUnlinkedToThisDat {
		t.Errorf("unexpected match kinds: %s, %s", matches[0].Kind, matches[1].Kind)
	}
}
