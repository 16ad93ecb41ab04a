// ABOUTME: CLI commands for Charm-based cloud backup.
// ABOUTME: Supports link, unlink, push, pull, and status operations.
package main

import (
	"fmt"
	"os"
	"os/exec"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/harperreed/morning/internal/charm"
)

var syncCmd = &cobra.Command{
	Use:     "sync",
	Aliases: []string{"s"},
	Short:   "Back up health data to Charm Cloud",
	Long: `Back up health data to Charm Cloud and restore it on other devices.

Your data is E2E encrypted with your SSH key before upload.
The server never sees your unencrypted health data.

GETTING STARTED:

  1. Link your device (creates/uses SSH key automatically):
     morning sync link

  2. Push your local records to the cloud:
     morning sync push

  3. On other devices, link with the same Charm account and pull:
     morning sync pull

COMMANDS:

  link        Link this device to your Charm account
  unlink      Disconnect this device from Charm
  push        Mirror local records and baselines to the cloud
  pull        Restore records and baselines from the cloud (destructive)
  status      Show backup status and account info`,
}

var syncLinkCmd = &cobra.Command{
	Use:   "link",
	Short: "Link this device to Charm",
	Long: `Link this device to your Charm account.

If you don't have a Charm account, one will be created using your SSH key.
If you already have an account, you'll be prompted to link via charm.sh.

Example:
  morning sync link`,
	RunE: func(cmd *cobra.Command, args []string) error {
		// Use charm CLI to link
		charmCmd := exec.Command("charm", "link")
		charmCmd.Stdin = os.Stdin
		charmCmd.Stdout = os.Stdout
		charmCmd.Stderr = os.Stderr

		if err := charmCmd.Run(); err != nil {
			return fmt.Errorf("failed to link: %w\n\nMake sure 'charm' CLI is installed: go install github.com/charmbracelet/charm@latest", err)
		}

		color.Green("\n✓ Device linked to Charm")
		fmt.Println("Run 'morning sync push' to back up your data.")
		return nil
	},
}

var syncUnlinkCmd = &cobra.Command{
	Use:   "unlink",
	Short: "Disconnect from Charm",
	Long: `Disconnect this device from Charm.

This does not delete your local health data.
You can link again later with 'morning sync link'.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		// Use charm CLI to unlink
		charmCmd := exec.Command("charm", "unlink")
		charmCmd.Stdin = os.Stdin
		charmCmd.Stdout = os.Stdout
		charmCmd.Stderr = os.Stderr

		if err := charmCmd.Run(); err != nil {
			return fmt.Errorf("failed to unlink: %w", err)
		}

		color.Green("✓ Device unlinked from Charm")
		fmt.Println("Your local health data is preserved.")
		return nil
	},
}

var syncPushCmd = &cobra.Command{
	Use:   "push",
	Short: "Mirror local data to the cloud",
	RunE: func(cmd *cobra.Command, args []string) error {
		client, err := charm.Open()
		if err != nil {
			return fmt.Errorf("connecting to charm: %w", err)
		}
		defer client.Close()

		count, err := client.PushAll(store)
		if err != nil {
			return fmt.Errorf("push failed: %w", err)
		}

		color.Green("✓ Pushed %d records to Charm Cloud", count)
		return nil
	},
}

var syncPullCmd = &cobra.Command{
	Use:   "pull",
	Short: "Restore data from the cloud",
	Long: `Restore daily records and baselines from Charm Cloud.

Cloud copies overwrite local files for the dates they cover. Local
records the cloud does not have are preserved.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		// Confirm
		fmt.Println("This will overwrite local daily records with the cloud copies.")
		fmt.Print("Continue? [y/N]: ")
		var confirm string
		fmt.Scanln(&confirm)
		if confirm != "y" && confirm != "Y" {
			fmt.Println("Canceled.")
			return nil
		}

		client, err := charm.Open()
		if err != nil {
			return fmt.Errorf("connecting to charm: %w", err)
		}
		defer client.Close()

		count, err := client.Pull(store)
		if err != nil {
			return fmt.Errorf("pull failed: %w", err)
		}

		color.Green("✓ Restored %d records from cloud", count)
		return nil
	},
}

var syncStatusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show backup status",
	Long: `Show current backup status including:
- Charm account info
- Connection status
- Cloud data info`,
	RunE: func(cmd *cobra.Command, args []string) error {
		client, err := charm.Open()
		if err != nil {
			return fmt.Errorf("connecting to charm: %w", err)
		}
		defer client.Close()

		id, err := client.ID()
		if err != nil {
			color.Yellow("Not linked to Charm")
			fmt.Println("\nRun 'morning sync link' to connect to Charm.")
			return nil
		}

		fmt.Println("Charm ID:", id)
		fmt.Println("Server: charm.2389.dev")
		fmt.Println()

		stats, err := client.Status()
		if err != nil {
			return fmt.Errorf("reading cloud state: %w", err)
		}

		color.Green("✓ Connected to Charm")
		fmt.Printf("  Records: %d\n", stats.Records)
		if stats.Records > 0 {
			fmt.Printf("  Date range: %s to %s\n", stats.OldestDate, stats.NewestDate)
		}
		fmt.Printf("  Baselines backed up: %v\n", stats.HasBaselines)
		if stats.ReadOnly {
			color.Yellow("⚠ Local replica is read-only; another process holds the lock")
		}
		return nil
	},
}

func init() {
	syncCmd.AddCommand(syncLinkCmd)
	syncCmd.AddCommand(syncUnlinkCmd)
	syncCmd.AddCommand(syncPushCmd)
	syncCmd.AddCommand(syncPullCmd)
	syncCmd.AddCommand(syncStatusCmd)

	rootCmd.AddCommand(syncCmd)
}
