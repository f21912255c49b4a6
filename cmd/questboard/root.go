package main

import (
	"github.com/spf13/cobra"
)

// Global flags available to all subcommands.
var configFile string

// NewRootCmd creates the root command for the QuestBoard CLI.
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "questboard",
		Short: "QuestBoard - a quest marketplace for adventurers and guild commanders",
		Long: `QuestBoard runs the quest marketplace API: guild commanders post and
manage quests, adventurers browse the board and join crews.`,
	}

	// Global flag for config file path
	cmd.PersistentFlags().StringVar(&configFile, "config", "", "config file path")

	// Add subcommands
	cmd.AddCommand(NewServeCmd())
	cmd.AddCommand(NewMigrateCmd())

	return cmd
}
