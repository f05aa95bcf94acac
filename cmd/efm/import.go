package main

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"
	"github.com/zorrokid/emulation-file-manager/internal/archive"
	"github.com/zorrokid/emulation-file-manager/internal/catalog"
	"github.com/zorrokid/emulation-file-manager/internal/filetype"
	"github.com/zorrokid/emulation-file-manager/internal/fsys"
	"github.com/zorrokid/emulation-file-manager/internal/ingest"
	"github.com/zorrokid/emulation-file-manager/internal/prepare"
	"github.com/zorrokid/emulation-file-manager/internal/report"
	"github.com/zorrokid/emulation-file-manager/internal/util"
)

var importCmd = &cobra.Command{
	Use:   "import <file>",
	Short: "Import a file or ZIP archive into the collection",
	Long: `Import an input file into the collection.

The file is prepared (hashed and classified against the catalog), new
content is compressed into the content store, and a file set with its
file infos is created in one catalog transaction. Content already
stored under the same hash and type is reused, never duplicated.

A release and software title can be created alongside the set with
--release and --title, and the set can be linked to existing systems,
items and DAT manifests.`,
	Args: cobra.ExactArgs(1),
	RunE: runImport,
}

func init() {
	rootCmd.AddCommand(importCmd)

	importCmd.Flags().StringP("type", "t", "rom", "file type (rom, disk_image, tape_image, screenshot, manual, cover_scan, memory_snapshot)")
	importCmd.Flags().String("source", "", "provenance note for the file set")
	importCmd.Flags().Int64Slice("system", nil, "system id to link (repeatable)")
	importCmd.Flags().String("release", "", "create a release with this name")
	importCmd.Flags().String("title", "", "software title for the release (defaults to the release name)")
	importCmd.Flags().Int64Slice("item", nil, "item id to link (repeatable)")
	importCmd.Flags().Int64("dat", 0, "DAT manifest id to link")
	importCmd.Flags().StringSlice("select", nil, "import only these archive members (repeatable)")
}

func runImport(cmd *cobra.Command, args []string) error {
	ctx := context.Background()
	applyLogFlags()

	typeName, _ := cmd.Flags().GetString("type")
	ft, err := filetype.Parse(typeName)
	if err != nil {
		return err
	}

	source, _ := cmd.Flags().GetString("source")
	systemIDs, _ := cmd.Flags().GetInt64Slice("system")
	releaseName, _ := cmd.Flags().GetString("release")
	titleName, _ := cmd.Flags().GetString("title")
	itemIDs, _ := cmd.Flags().GetInt64Slice("item")
	datFileID, _ := cmd.Flags().GetInt64("dat")
	selected, _ := cmd.Flags().GetStringSlice("select")

	if titleName != "" && releaseName == "" {
		return fmt.Errorf("--title requires --release")
	}

	cat, err := openCatalog()
	if err != nil {
		return err
	}
	defer cat.Close()

	logger := newEventLogger()
	defer logger.Close()

	fs := fsys.New()
	reader := archive.New(fs)
	content := openContent(cat)

	util.InfoLog("=== Phase 1: Prepare ===")

	prepared, err := prepare.Run(ctx, &prepare.Context{
		InputPath: args[0],
		FileType:  ft,
		FS:        fs,
		Reader:    reader,
		Catalog:   cat,
	})
	if err != nil {
		return fmt.Errorf("prepare failed: %w", err)
	}
	util.InfoLog("File set: %s, %d members", prepared.FileSetName, len(prepared.Entries))

	var release *catalog.ReleaseRequest
	if releaseName != "" {
		if titleName == "" {
			titleName = releaseName
		}
		release = &catalog.ReleaseRequest{
			ReleaseName:       releaseName,
			SoftwareTitleName: titleName,
		}
	}

	util.InfoLog("")
	util.InfoLog("=== Phase 2: Ingest ===")

	startTime := time.Now()

	ic := &ingest.Context{
		InputPath: args[0],
		FileType:  ft,
		Source:    source,
		Prepared:  prepared,
		Selected:  selected,
		SystemIDs: systemIDs,
		Release:   release,
		ItemIDs:   itemIDs,
		DatFileID: datFileID,
		Reader:    reader,
		Content:   content,
		Catalog:   cat,
	}
	result, err := ingest.Run(ctx, ic)
	if err != nil {
		logger.LogError(report.EventIngest, prepared.FileSetName, err)
		return fmt.Errorf("import failed: %w", err)
	}
	if result == nil {
		util.WarnLog("Nothing selected for import")
		return nil
	}

	var storedBytes int64
	for _, e := range prepared.Entries {
		imp, stored := ic.Imported[e.SHA1]
		if stored && imp.OriginalName == e.Name {
			storedBytes += imp.Size
		}
		logger.LogIngest(prepared.FileSetName, e.Name, e.SHA1, e.Size, !stored)
	}

	util.SuccessLog("Import complete in %v", time.Since(startTime).Round(time.Millisecond))
	util.InfoLog("  File set id: %d", result.FileSetID)
	if result.ReleaseID != 0 {
		util.InfoLog("  Release id: %d (title id %d)", result.ReleaseID, result.SoftwareTitleID)
	}
	util.InfoLog("  New content stored: %d files, %s", len(ic.Imported), util.FormatBytes(uint64(storedBytes)))

	util.InfoLog("")
	util.InfoLog("Next step: efm materialize %d --out <dir>", result.FileSetID)

	return nil
}
