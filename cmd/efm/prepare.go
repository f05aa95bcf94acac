package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
	"github.com/zorrokid/emulation-file-manager/internal/archive"
	"github.com/zorrokid/emulation-file-manager/internal/filetype"
	"github.com/zorrokid/emulation-file-manager/internal/fsys"
	"github.com/zorrokid/emulation-file-manager/internal/prepare"
	"github.com/zorrokid/emulation-file-manager/internal/util"
)

var prepareCmd = &cobra.Command{
	Use:   "prepare <file>",
	Short: "Inspect a file or ZIP archive before import",
	Long: `Inspect an input file before importing it into the collection.

The file (or every member of a ZIP archive) is hashed and checked
against the catalog, so you can see up front which content is new and
which is already stored. Nothing is written.`,
	Args: cobra.ExactArgs(1),
	RunE: runPrepare,
}

func init() {
	rootCmd.AddCommand(prepareCmd)

	prepareCmd.Flags().StringP("type", "t", "rom", "file type (rom, disk_image, tape_image, screenshot, manual, cover_scan, memory_snapshot)")
}

func runPrepare(cmd *cobra.Command, args []string) error {
	ctx := context.Background()
	applyLogFlags()

	typeName, _ := cmd.Flags().GetString("type")
	ft, err := filetype.Parse(typeName)
	if err != nil {
		return err
	}

	cat, err := openCatalog()
	if err != nil {
		return err
	}
	defer cat.Close()

	fs := fsys.New()
	result, err := prepare.Run(ctx, &prepare.Context{
		InputPath: args[0],
		FileType:  ft,
		FS:        fs,
		Reader:    archive.New(fs),
		Catalog:   cat,
	})
	if err != nil {
		return fmt.Errorf("prepare failed: %w", err)
	}

	util.InfoLog("File set: %s (%s)", result.FileSetName, ft)
	if result.IsZipArchive {
		util.InfoLog("Archive: %s, %d members", result.FileSetFileName, len(result.Entries))
	}

	newCount := 0
	for _, e := range result.Entries {
		state := "new"
		if e.Classification == prepare.Existing {
			state = "already stored"
		} else {
			newCount++
		}
		fmt.Printf("  %-40s %s  %s  %s\n", e.Name, e.SHA1, util.FormatBytes(uint64(e.Size)), state)
	}

	util.InfoLog("")
	util.SuccessLog("%d of %d files carry new content", newCount, len(result.Entries))
	util.InfoLog("Next step: efm import %s --type %s", args[0], ft)

	return nil
}
