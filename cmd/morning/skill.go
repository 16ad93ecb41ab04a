// ABOUTME: CLI command installing the Claude Code skill definition.
// ABOUTME: Embeds SKILL.md and copies it to ~/.claude/skills/morning/.
package main

import (
	"embed"
	"fmt"
	"os"
	"path/filepath"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

//go:embed skill/SKILL.md
var skillFS embed.FS

var skillSkipConfirm bool

var installSkillCmd = &cobra.Command{
	Use:   "install-skill",
	Short: "Install the Claude Code skill",
	Long: `Install the morning skill for Claude Code.

The skill file is copied to ~/.claude/skills/morning/ and teaches Claude
Code when to reach for the MCP tools: querying sleep and readiness
metrics, comparing readings against your baselines, and logging
interventions. Pair it with 'morning mcp' in your MCP configuration.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return installSkill()
	},
}

func init() {
	installSkillCmd.Flags().BoolVarP(&skillSkipConfirm, "yes", "y", false, "Skip confirmation prompt")
	rootCmd.AddCommand(installSkillCmd)
}

func installSkill() error {
	home, err := os.UserHomeDir()
	if err != nil {
		return fmt.Errorf("failed to get home directory: %w", err)
	}
	skillDir := filepath.Join(home, ".claude", "skills", "morning")
	skillPath := filepath.Join(skillDir, "SKILL.md")

	if !skillSkipConfirm {
		fmt.Println("This installs the morning skill so Claude Code can query your")
		fmt.Println("health data, compare it against baselines, and log interventions.")
		if _, err := os.Stat(skillPath); err == nil {
			fmt.Println("An existing skill file will be overwritten.")
		}
		fmt.Printf("Install to %s? [y/N]: ", skillPath)
		var confirm string
		fmt.Scanln(&confirm)
		if confirm != "y" && confirm != "Y" {
			fmt.Println("Canceled.")
			return nil
		}
	}

	content, err := skillFS.ReadFile("skill/SKILL.md")
	if err != nil {
		return fmt.Errorf("failed to read embedded skill: %w", err)
	}
	if err := os.MkdirAll(skillDir, 0750); err != nil {
		return fmt.Errorf("failed to create skill directory: %w", err)
	}
	if err := os.WriteFile(skillPath, content, 0600); err != nil {
		return fmt.Errorf("failed to write skill file: %w", err)
	}

	color.Green("✓ Installed morning skill")
	faint := color.New(color.Faint)
	faint.Printf("  %s\n", skillPath)
	fmt.Println()
	fmt.Println("Try asking Claude: \"How did I sleep this week?\" or \"Log 400mg magnesium\"")
	return nil
}
