package main

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/zorrokid/emulation-file-manager/internal/cloud"
	"github.com/zorrokid/emulation-file-manager/internal/util"
	"golang.org/x/term"
)

var settingsCmd = &cobra.Command{
	Use:   "settings",
	Short: "Manage collection settings and cloud credentials",
	Long: `Manage the settings table and the S3 credential pair.

Bucket location (endpoint, bucket, region) lives in the settings table
of the catalog. The credential pair is kept in the OS keyring, never in
the database. The AWS_ACCESS_KEY_ID / AWS_SECRET_ACCESS_KEY environment
variables work as a fallback when the keyring has no entry.`,
}

var settingsListCmd = &cobra.Command{
	Use:   "list",
	Short: "Show all settings",
	RunE:  runSettingsList,
}

var settingsSetCmd = &cobra.Command{
	Use:   "set <key> <value>",
	Short: "Set a setting",
	Args:  cobra.ExactArgs(2),
	RunE:  runSettingsSet,
}

var credentialsCmd = &cobra.Command{
	Use:   "credentials",
	Short: "Manage the S3 credential pair in the OS keyring",
}

var credentialsSetCmd = &cobra.Command{
	Use:   "set",
	Short: "Store the S3 credential pair",
	RunE:  runCredentialsSet,
}

var credentialsClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Remove the S3 credential pair",
	RunE:  runCredentialsClear,
}

func init() {
	rootCmd.AddCommand(settingsCmd)
	settingsCmd.AddCommand(settingsListCmd)
	settingsCmd.AddCommand(settingsSetCmd)
	settingsCmd.AddCommand(credentialsCmd)
	credentialsCmd.AddCommand(credentialsSetCmd)
	credentialsCmd.AddCommand(credentialsClearCmd)
}

func runSettingsList(cmd *cobra.Command, args []string) error {
	applyLogFlags()

	cat, err := openCatalog()
	if err != nil {
		return err
	}
	defer cat.Close()

	settings, err := cat.GetAllSettings()
	if err != nil {
		return err
	}
	if len(settings) == 0 {
		util.InfoLog("No settings stored yet")
		util.InfoLog("Next step: efm settings set %s <endpoint>", settingCloudEndpoint)
		return nil
	}

	for _, st := range settings {
		fmt.Printf("%-24s %s\n", st.Key, st.Value)
	}
	return nil
}

func runSettingsSet(cmd *cobra.Command, args []string) error {
	applyLogFlags()

	cat, err := openCatalog()
	if err != nil {
		return err
	}
	defer cat.Close()

	if err := cat.SetSetting(args[0], args[1]); err != nil {
		return err
	}
	util.SuccessLog("Set %s = %s", args[0], args[1])
	return nil
}

func runCredentialsSet(cmd *cobra.Command, args []string) error {
	applyLogFlags()

	reader := bufio.NewReader(os.Stdin)

	fmt.Print("Access key id: ")
	accessKey, err := reader.ReadString('\n')
	if err != nil {
		return fmt.Errorf("failed to read access key: %w", err)
	}
	accessKey = strings.TrimSpace(accessKey)

	var secretKey string
	if util.IsTerminal(os.Stdin.Fd()) {
		fmt.Print("Secret access key: ")
		secret, err := term.ReadPassword(int(os.Stdin.Fd()))
		fmt.Println()
		if err != nil {
			return fmt.Errorf("failed to read secret: %w", err)
		}
		secretKey = strings.TrimSpace(string(secret))
	} else {
		secret, err := reader.ReadString('\n')
		if err != nil {
			return fmt.Errorf("failed to read secret: %w", err)
		}
		secretKey = strings.TrimSpace(secret)
	}

	if err := cloud.StoreCredentials(&cloud.Credentials{
		AccessKeyID:     accessKey,
		SecretAccessKey: secretKey,
	}); err != nil {
		return err
	}

	util.SuccessLog("Credentials stored in the OS keyring")
	return nil
}

func runCredentialsClear(cmd *cobra.Command, args []string) error {
	applyLogFlags()

	if err := cloud.DeleteCredentials(); err != nil {
		return err
	}
	util.SuccessLog("Credentials removed from the OS keyring")
	return nil
}
