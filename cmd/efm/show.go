package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/zorrokid/emulation-file-manager/internal/util"
)

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List file sets",
	RunE:  runList,
}

var showCmd = &cobra.Command{
	Use:   "show <file-set-id>",
	Short: "Show a file set with its members and sync state",
	Args:  cobra.ExactArgs(1),
	RunE:  runShow,
}

func init() {
	rootCmd.AddCommand(listCmd)
	rootCmd.AddCommand(showCmd)

	listCmd.Flags().StringP("type", "t", "", "only show sets of this file type")
}

func runList(cmd *cobra.Command, args []string) error {
	applyLogFlags()

	typeName, _ := cmd.Flags().GetString("type")

	cat, err := openCatalog()
	if err != nil {
		return err
	}
	defer cat.Close()

	sets, err := cat.GetFileSets()
	if err != nil {
		return err
	}
	for _, fs := range sets {
		if typeName != "" && fs.FileType.String() != typeName {
			continue
		}
		fmt.Printf("%4d  %-14s %s\n", fs.ID, fs.FileType, fs.FileSetName)
	}
	return nil
}

func runShow(cmd *cobra.Command, args []string) error {
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

	fmt.Printf("File set %d: %s (%s)\n", fs.ID, fs.FileSetName, fs.FileType)
	fmt.Printf("  File name: %s\n", fs.FileSetFileName)
	if fs.Source != "" {
		fmt.Printf("  Source: %s\n", fs.Source)
	}

	releases, err := cat.GetReleasesForFileSet(fileSetID)
	if err != nil {
		return err
	}
	for _, r := range releases {
		fmt.Printf("  Release: %s (id %d)\n", r.Name, r.ID)
	}

	members, err := cat.GetFileSetFiles(fileSetID)
	if err != nil {
		return err
	}

	content := openContent(cat)
	fmt.Printf("  Members: %d\n", len(members))
	for _, m := range members {
		local := "missing"
		if present, err := content.Exists(m.FileType, m.ArchiveFileName); err == nil && present {
			local = "local"
		}

		remote := "not queued"
		if latest, err := cat.GetLatestSyncLog(m.ID); err == nil && latest != nil {
			remote = string(latest.Status)
		}

		fmt.Printf("    %-40s %s  %9s  %s / %s\n",
			m.FileName, m.SHA1, util.FormatBytes(uint64(m.FileSize)), local, remote)
	}

	return nil
}
