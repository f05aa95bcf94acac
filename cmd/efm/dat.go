package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/zorrokid/emulation-file-manager/internal/dat"
	"github.com/zorrokid/emulation-file-manager/internal/filetype"
	"github.com/zorrokid/emulation-file-manager/internal/util"
)

var datCmd = &cobra.Command{
	Use:   "dat",
	Short: "Manage DAT manifests",
	Long: `Import and match Logiqx DAT manifests.

A DAT manifest describes known-good dumps per game. Imported manifests
are matched against the collection: every game is reported as missing,
already linked, or present but not yet linked to this manifest.`,
}

var datImportCmd = &cobra.Command{
	Use:   "import <file>",
	Short: "Parse and store a Logiqx DAT manifest",
	Args:  cobra.ExactArgs(1),
	RunE:  runDatImport,
}

var datListCmd = &cobra.Command{
	Use:   "list",
	Short: "List stored DAT manifests",
	RunE:  runDatList,
}

var datMatchCmd = &cobra.Command{
	Use:   "match <dat-id>",
	Short: "Match a DAT manifest against the collection",
	Args:  cobra.ExactArgs(1),
	RunE:  runDatMatch,
}

func init() {
	rootCmd.AddCommand(datCmd)
	datCmd.AddCommand(datImportCmd)
	datCmd.AddCommand(datListCmd)
	datCmd.AddCommand(datMatchCmd)

	datMatchCmd.Flags().StringP("type", "t", "rom", "file type to match against")
	datMatchCmd.Flags().Bool("link", false, "link matching unlinked file sets to this manifest")
}

func runDatImport(cmd *cobra.Command, args []string) error {
	applyLogFlags()

	f, err := os.Open(args[0])
	if err != nil {
		return fmt.Errorf("failed to open %s: %w", args[0], err)
	}
	defer f.Close()

	parsed, err := dat.Parse(f)
	if err != nil {
		return fmt.Errorf("failed to parse %s: %w", args[0], err)
	}

	cat, err := openCatalog()
	if err != nil {
		return err
	}
	defer cat.Close()

	id, err := cat.InsertDatFile(parsed)
	if err != nil {
		return fmt.Errorf("failed to store DAT manifest: %w", err)
	}

	romCount := 0
	for _, g := range parsed.Games {
		romCount += len(g.Roms)
	}

	util.SuccessLog("Imported %s %s (id %d)", parsed.Name, parsed.Version, id)
	util.InfoLog("  Games: %d, ROMs: %d", len(parsed.Games), romCount)
	util.InfoLog("")
	util.InfoLog("Next step: efm dat match %d", id)

	return nil
}

func runDatList(cmd *cobra.Command, args []string) error {
	applyLogFlags()

	cat, err := openCatalog()
	if err != nil {
		return err
	}
	defer cat.Close()

	files, err := cat.GetDatFiles()
	if err != nil {
		return err
	}
	if len(files) == 0 {
		util.InfoLog("No DAT manifests imported yet")
		return nil
	}

	for _, df := range files {
		linked, err := cat.CountDatLinks(df.ID)
		if err != nil {
			return err
		}
		fmt.Printf("%4d  %-40s %-12s %d linked sets\n", df.ID, df.Name, df.Version, linked)
	}
	return nil
}

func runDatMatch(cmd *cobra.Command, args []string) error {
	applyLogFlags()

	datFileID, err := parseID(args[0], "dat file")
	if err != nil {
		return err
	}

	typeName, _ := cmd.Flags().GetString("type")
	ft, err := filetype.Parse(typeName)
	if err != nil {
		return err
	}
	link, _ := cmd.Flags().GetBool("link")

	cat, err := openCatalog()
	if err != nil {
		return err
	}
	defer cat.Close()

	df, err := cat.GetDatFile(datFileID)
	if err != nil {
		return fmt.Errorf("dat file %d: %w", datFileID, err)
	}

	logger := newEventLogger()
	defer logger.Close()

	matches, err := dat.NewMatcher(cat).MatchAll(df, ft)
	if err != nil {
		return fmt.Errorf("matching failed: %w", err)
	}

	var missing, linkedCount, unlinked, newLinks int
	for _, m := range matches {
		title := dat.CanonicalTitle(m.Game.Name)
		switch m.Kind {
		case dat.NonExisting:
			missing++
			util.DebugLog("  missing: %s", title)
		case dat.ExistingLinkedToThisDat:
			linkedCount++
		case dat.ExistingUnlinkedToThisDat:
			unlinked++
			if link {
				if err := cat.LinkDatFileToFileSet(df.ID, m.FileSetID); err != nil {
					return fmt.Errorf("failed to link %q: %w", m.Game.Name, err)
				}
				newLinks++
				logger.LogDatImport(m.Game.Name, "linked", "matched file set")
				util.InfoLog("  linked: %s (file set %d)", title, m.FileSetID)
			} else {
				logger.LogDatImport(m.Game.Name, "proposal", "matching file set not linked")
				util.InfoLog("  match: %s (file set %d, not linked)", title, m.FileSetID)
			}
		}
	}

	util.InfoLog("")
	util.SuccessLog("%s %s: %d games", df.Name, df.Version, len(matches))
	util.InfoLog("  In collection, linked: %d", linkedCount)
	util.InfoLog("  In collection, unlinked: %d", unlinked)
	util.InfoLog("  Missing: %d", missing)
	if newLinks > 0 {
		util.SuccessLog("  Linked now: %d", newLinks)
	} else if unlinked > 0 && !link {
		util.InfoLog("")
		util.InfoLog("Next step: efm dat match %d --link", df.ID)
	}

	return nil
}
