package cli

import (
	"errors"
	"fmt"
	"strconv"

	"github.com/spf13/cobra"
)

var settingsCmd = &cobra.Command{
	Use:   "settings",
	Short: "Manage application settings",
	Long: `View and configure the service URL, upload limit and logging.

Settings are stored in ~/.docqa/config.toml unless --config-dir is given.`,
	RunE: runSettingsShow,
}

var settingsShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show current settings",
	RunE:  runSettingsShow,
}

var settingsServerCmd = &cobra.Command{
	Use:   "set-server <url>",
	Short: "Set the service base URL",
	Long: `Set the base URL of the document question-answering service,
e.g. http://localhost:8000. API paths are appended to it.`,
	Args: cobra.ExactArgs(1),
	RunE: runSettingsServer,
}

var settingsMaxUploadCmd = &cobra.Command{
	Use:   "set-max-upload <mb>",
	Short: "Set the local upload size limit",
	Long:  `Reject larger files before uploading them. 0 disables the check.`,
	Args:  cobra.ExactArgs(1),
	RunE:  runSettingsMaxUpload,
}

func init() {
	settingsCmd.AddCommand(settingsShowCmd)
	settingsCmd.AddCommand(settingsServerCmd)
	settingsCmd.AddCommand(settingsMaxUploadCmd)
	rootCmd.AddCommand(settingsCmd)
}

func runSettingsShow(cmd *cobra.Command, _ []string) error {
	if settingsService == nil {
		return errors.New("settings service not configured")
	}

	settings, err := settingsService.Get()
	if err != nil {
		return fmt.Errorf("failed to get settings: %w", err)
	}

	cmd.Println("Current Settings")
	cmd.Println("================")
	cmd.Println()

	cmd.Println("[Server]")
	cmd.Printf("  Base URL: %s\n", settings.Server.BaseURL)
	cmd.Println()

	cmd.Println("[Upload]")
	if settings.Upload.MaxSizeMB > 0 {
		cmd.Printf("  Max size: %d MB\n", settings.Upload.MaxSizeMB)
	} else {
		cmd.Println("  Max size: unlimited")
	}
	cmd.Println()

	cmd.Println("[Log]")
	cmd.Printf("  Verbose: %t\n", settings.Log.Verbose)
	if settings.Log.File != "" {
		cmd.Printf("  File: %s\n", settings.Log.File)
	} else {
		cmd.Println("  File: (none)")
	}

	if err := settingsService.Validate(); err != nil {
		cmd.Println()
		cmd.Printf("Warning: %v\n", err)
	}
	return nil
}

func runSettingsServer(cmd *cobra.Command, args []string) error {
	if settingsService == nil {
		return errors.New("settings service not configured")
	}
	if err := settingsService.SetServerURL(args[0]); err != nil {
		return fmt.Errorf("failed to set server: %w", err)
	}
	cmd.Printf("Server set to %s\n", args[0])
	return nil
}

func runSettingsMaxUpload(cmd *cobra.Command, args []string) error {
	if settingsService == nil {
		return errors.New("settings service not configured")
	}
	mb, err := strconv.Atoi(args[0])
	if err != nil {
		return fmt.Errorf("invalid size %q: expected whole megabytes", args[0])
	}
	if err := settingsService.SetMaxUploadMB(mb); err != nil {
		return fmt.Errorf("failed to set upload limit: %w", err)
	}
	if mb == 0 {
		cmd.Println("Upload limit disabled")
		return nil
	}
	cmd.Printf("Upload limit set to %d MB\n", mb)
	return nil
}
