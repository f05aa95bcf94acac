package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/zorrokid/emulation-file-manager/internal/deletion"
	"github.com/zorrokid/emulation-file-manager/internal/util"
)

var deleteCmd = &cobra.Command{
	Use:   "delete <file-set-id>",
	Short: "Delete a file set from the collection",
	Long: `Delete a file set: its catalog rows, the local blobs no other set
references, and a deletion mark in the sync log for every copy already
uploaded to the object store.

A file set that is still linked to an item or a DAT manifest is
refused; unlink it first.`,
	Args: cobra.ExactArgs(1),
	RunE: runDelete,
}

func init() {
	rootCmd.AddCommand(deleteCmd)

	deleteCmd.Flags().BoolP("yes", "y", false, "skip the confirmation prompt")
}

func runDelete(cmd *cobra.Command, args []string) error {
	ctx := context.Background()
	applyLogFlags()

	fileSetID, err := parseID(args[0], "file set")
	if err != nil {
		return err
	}

	cat, err := openCatalog()
	if err != nil {
		return err
	}
	defer cat.Close()

	fs, err := cat.GetFileSet(fileSetID)
	if err != nil {
		return fmt.Errorf("file set %d: %w", fileSetID, err)
	}

	yes, _ := cmd.Flags().GetBool("yes")
	if !yes {
		fmt.Printf("Delete file set %d (%s)? [y/N] ", fileSetID, fs.FileSetName)
		line, _ := bufio.NewReader(os.Stdin).ReadString('\n')
		if answer := strings.ToLower(strings.TrimSpace(line)); answer != "y" && answer != "yes" {
			util.InfoLog("Aborted")
			return nil
		}
	}

	logger := newEventLogger()
	defer logger.Close()

	outcomes, err := deletion.Run(ctx, &deletion.Context{
		FileSetID: fileSetID,
		Catalog:   cat,
		Content:   openContent(cat),
	})
	if err != nil {
		if errors.Is(err, util.ErrInUse) {
			return fmt.Errorf("file set %d is still linked to an item or DAT manifest: %w", fileSetID, err)
		}
		return fmt.Errorf("delete failed: %w", err)
	}

	failed := 0
	for _, o := range outcomes {
		outcome := describeOutcome(o)
		logger.LogDelete(fs.FileSetName, o.FileName, outcome)
		if o.Err != nil {
			failed++
			util.WarnLog("  %-40s %s (%v)", o.FileName, outcome, o.Err)
			continue
		}
		util.InfoLog("  %-40s %s", o.FileName, outcome)
	}

	if failed > 0 {
		util.WarnLog("Deleted file set %d with %d member errors", fileSetID, failed)
	} else {
		util.SuccessLog("Deleted file set %d (%s)", fileSetID, fs.FileSetName)
	}

	return nil
}

// describeOutcome renders a per-member outcome vector as a short phrase
func describeOutcome(o deletion.MemberOutcome) string {
	var parts []string
	if o.FileDeleted {
		parts = append(parts, "blob removed")
	} else {
		parts = append(parts, "blob kept (shared)")
	}
	if o.DBDeleted {
		parts = append(parts, "catalog rows removed")
	}
	if o.CloudDeleteMarked {
		parts = append(parts, "cloud copy marked for deletion")
	}
	return strings.Join(parts, ", ")
}
