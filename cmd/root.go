package cmd

import (
	"fmt"
	"os"

	"log/slog"

	"github.com/gookit/event"
	"github.com/psource-dev/psman/cmd/flags"
	"github.com/psource-dev/psman/internal/eventType"

	"github.com/spf13/cobra"
)

func GetEnv(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}

var (
	configFileEnv = GetEnv("PSMAN_CONFIG_FILE", "./data/psman.json")
)

var RootCmd = &cobra.Command{
	Use:   "psman",
	Short: "psman manages PSource plugins and themes for a ClassicPress install",
	Long: `psman discovers, installs, updates and toggles the curated catalog of
PSource plugins and themes against their GitHub release repositories.`,
	Run: func(cmd *cobra.Command, args []string) {
		cmd.SetArgs([]string{"server"})
		cmd.Execute()
	},
}

func Execute() {
	if err := os.MkdirAll("./data", os.ModePerm); err != nil {
		slog.Error("Failed to create data directory", slog.Any("error", err))
	}
	err, _ := event.Trigger(eventType.ProcessStart, event.M{})
	if err != nil {
		slog.Error("Something went wrong during process start.", slog.Any("error", err))
		os.Exit(1)
	}
	if err := RootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	RootCmd.PersistentFlags().StringVarP(&flags.ConfigFile, "config", "c", configFileEnv, "Configuration file path [env: PSMAN_CONFIG_FILE]")
	RootCmd.PersistentFlags().StringVarP(&flags.Listen, "listen", "l", GetEnv("PSMAN_LISTEN", ""), "Listen address, overrides the config file [env: PSMAN_LISTEN]")
}
