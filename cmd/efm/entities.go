package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"
	"github.com/zorrokid/emulation-file-manager/internal/catalog"
	"github.com/zorrokid/emulation-file-manager/internal/util"
)

var systemCmd = &cobra.Command{
	Use:   "system",
	Short: "Manage systems (platforms)",
}

var systemAddCmd = &cobra.Command{
	Use:   "add <name>",
	Short: "Add a system",
	Args:  cobra.ExactArgs(1),
	RunE:  runSystemAdd,
}

var systemListCmd = &cobra.Command{
	Use:   "list",
	Short: "List systems",
	RunE:  runSystemList,
}

var systemRemoveCmd = &cobra.Command{
	Use:   "remove <id>",
	Short: "Remove a system not referenced by any release or file set",
	Args:  cobra.ExactArgs(1),
	RunE:  runSystemRemove,
}

var titleCmd = &cobra.Command{
	Use:   "title",
	Short: "Manage software titles",
}

var titleAddCmd = &cobra.Command{
	Use:   "add <name>",
	Short: "Add a software title",
	Args:  cobra.ExactArgs(1),
	RunE:  runTitleAdd,
}

var titleListCmd = &cobra.Command{
	Use:   "list",
	Short: "List software titles",
	RunE:  runTitleList,
}

var titleRemoveCmd = &cobra.Command{
	Use:   "remove <id>",
	Short: "Remove a software title not referenced by any release",
	Args:  cobra.ExactArgs(1),
	RunE:  runTitleRemove,
}

var releaseCmd = &cobra.Command{
	Use:   "release",
	Short: "Manage releases",
}

var releaseAddCmd = &cobra.Command{
	Use:   "add <name>",
	Short: "Add a release, optionally linked to titles and systems",
	Args:  cobra.ExactArgs(1),
	RunE:  runReleaseAdd,
}

var releaseListCmd = &cobra.Command{
	Use:   "list",
	Short: "List releases",
	RunE:  runReleaseList,
}

var releaseRemoveCmd = &cobra.Command{
	Use:   "remove <id>",
	Short: "Remove a release without items or file sets",
	Args:  cobra.ExactArgs(1),
	RunE:  runReleaseRemove,
}

var itemCmd = &cobra.Command{
	Use:   "item",
	Short: "Manage physical items of a release",
}

var itemAddCmd = &cobra.Command{
	Use:   "add <release-id> <type>",
	Short: "Add an item (disk, tape, cartridge, manual, box, ...)",
	Args:  cobra.ExactArgs(2),
	RunE:  runItemAdd,
}

var itemListCmd = &cobra.Command{
	Use:   "list <release-id>",
	Short: "List the items of a release",
	Args:  cobra.ExactArgs(1),
	RunE:  runItemList,
}

var itemRemoveCmd = &cobra.Command{
	Use:   "remove <id>",
	Short: "Remove an item not referenced by any file set",
	Args:  cobra.ExactArgs(1),
	RunE:  runItemRemove,
}

func init() {
	rootCmd.AddCommand(systemCmd)
	systemCmd.AddCommand(systemAddCmd, systemListCmd, systemRemoveCmd)

	rootCmd.AddCommand(titleCmd)
	titleCmd.AddCommand(titleAddCmd, titleListCmd, titleRemoveCmd)

	rootCmd.AddCommand(releaseCmd)
	releaseCmd.AddCommand(releaseAddCmd, releaseListCmd, releaseRemoveCmd)
	releaseAddCmd.Flags().Int64Slice("title", nil, "software title id to link (repeatable)")
	releaseAddCmd.Flags().Int64Slice("system", nil, "system id to link (repeatable)")

	rootCmd.AddCommand(itemCmd)
	itemCmd.AddCommand(itemAddCmd, itemListCmd, itemRemoveCmd)
	itemAddCmd.Flags().String("notes", "", "free-form notes")
}

func runSystemAdd(cmd *cobra.Command, args []string) error {
	applyLogFlags()
	cat, err := openCatalog()
	if err != nil {
		return err
	}
	defer cat.Close()

	id, err := cat.InsertSystem(args[0])
	if err != nil {
		return err
	}
	util.SuccessLog("Added system %q (id %d)", args[0], id)
	return nil
}

func runSystemList(cmd *cobra.Command, args []string) error {
	applyLogFlags()
	cat, err := openCatalog()
	if err != nil {
		return err
	}
	defer cat.Close()

	systems, err := cat.GetSystems()
	if err != nil {
		return err
	}
	for _, sys := range systems {
		fmt.Printf("%4d  %s\n", sys.ID, sys.Name)
	}
	return nil
}

func runSystemRemove(cmd *cobra.Command, args []string) error {
	applyLogFlags()
	id, err := parseID(args[0], "system")
	if err != nil {
		return err
	}
	cat, err := openCatalog()
	if err != nil {
		return err
	}
	defer cat.Close()

	if err := cat.DeleteSystem(id); err != nil {
		return describeInUse(err, "system", id)
	}
	util.SuccessLog("Removed system %d", id)
	return nil
}

func runTitleAdd(cmd *cobra.Command, args []string) error {
	applyLogFlags()
	cat, err := openCatalog()
	if err != nil {
		return err
	}
	defer cat.Close()

	id, err := cat.InsertSoftwareTitle(args[0], nil)
	if err != nil {
		return err
	}
	util.SuccessLog("Added software title %q (id %d)", args[0], id)
	return nil
}

func runTitleList(cmd *cobra.Command, args []string) error {
	applyLogFlags()
	cat, err := openCatalog()
	if err != nil {
		return err
	}
	defer cat.Close()

	titles, err := cat.GetSoftwareTitles()
	if err != nil {
		return err
	}
	for _, t := range titles {
		fmt.Printf("%4d  %s\n", t.ID, t.Name)
	}
	return nil
}

func runTitleRemove(cmd *cobra.Command, args []string) error {
	applyLogFlags()
	id, err := parseID(args[0], "software title")
	if err != nil {
		return err
	}
	cat, err := openCatalog()
	if err != nil {
		return err
	}
	defer cat.Close()

	if err := cat.DeleteSoftwareTitle(id); err != nil {
		return describeInUse(err, "software title", id)
	}
	util.SuccessLog("Removed software title %d", id)
	return nil
}

func runReleaseAdd(cmd *cobra.Command, args []string) error {
	applyLogFlags()
	titleIDs, _ := cmd.Flags().GetInt64Slice("title")
	systemIDs, _ := cmd.Flags().GetInt64Slice("system")

	cat, err := openCatalog()
	if err != nil {
		return err
	}
	defer cat.Close()

	id, err := cat.InsertRelease(args[0])
	if err != nil {
		return err
	}
	for _, titleID := range titleIDs {
		if err := cat.LinkReleaseToSoftwareTitle(id, titleID); err != nil {
			return err
		}
	}
	for _, systemID := range systemIDs {
		if err := cat.LinkReleaseToSystem(id, systemID); err != nil {
			return err
		}
	}
	util.SuccessLog("Added release %q (id %d)", args[0], id)
	return nil
}

func runReleaseList(cmd *cobra.Command, args []string) error {
	applyLogFlags()
	cat, err := openCatalog()
	if err != nil {
		return err
	}
	defer cat.Close()

	releases, err := cat.GetReleases()
	if err != nil {
		return err
	}
	for _, r := range releases {
		fmt.Printf("%4d  %s\n", r.ID, r.Name)
	}
	return nil
}

func runReleaseRemove(cmd *cobra.Command, args []string) error {
	applyLogFlags()
	id, err := parseID(args[0], "release")
	if err != nil {
		return err
	}
	cat, err := openCatalog()
	if err != nil {
		return err
	}
	defer cat.Close()

	if err := cat.DeleteRelease(id); err != nil {
		return describeInUse(err, "release", id)
	}
	util.SuccessLog("Removed release %d", id)
	return nil
}

func runItemAdd(cmd *cobra.Command, args []string) error {
	applyLogFlags()
	releaseID, err := parseID(args[0], "release")
	if err != nil {
		return err
	}

	itemType := catalog.ItemType(args[1])
	known := false
	for _, t := range catalog.ItemTypes {
		if t == itemType {
			known = true
			break
		}
	}
	if !known {
		return fmt.Errorf("unknown item type %q", args[1])
	}

	notes, _ := cmd.Flags().GetString("notes")

	cat, err := openCatalog()
	if err != nil {
		return err
	}
	defer cat.Close()

	id, err := cat.InsertItem(releaseID, itemType, notes)
	if err != nil {
		return err
	}
	util.SuccessLog("Added %s item (id %d) to release %d", itemType, id, releaseID)
	return nil
}

func runItemList(cmd *cobra.Command, args []string) error {
	applyLogFlags()
	releaseID, err := parseID(args[0], "release")
	if err != nil {
		return err
	}
	cat, err := openCatalog()
	if err != nil {
		return err
	}
	defer cat.Close()

	items, err := cat.GetItemsForRelease(releaseID)
	if err != nil {
		return err
	}
	for _, it := range items {
		fmt.Printf("%4d  %-18s %s\n", it.ID, it.ItemType, it.Notes)
	}
	return nil
}

func runItemRemove(cmd *cobra.Command, args []string) error {
	applyLogFlags()
	id, err := parseID(args[0], "item")
	if err != nil {
		return err
	}
	cat, err := openCatalog()
	if err != nil {
		return err
	}
	defer cat.Close()

	if err := cat.DeleteItem(id); err != nil {
		return describeInUse(err, "item", id)
	}
	util.SuccessLog("Removed item %d", id)
	return nil
}

// describeInUse turns the in-use guard error into an actionable message
func describeInUse(err error, what string, id int64) error {
	if errors.Is(err, util.ErrInUse) {
		return fmt.Errorf("%s %d is still referenced, unlink it first: %w", what, id, err)
	}
	return err
}
