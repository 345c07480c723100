package main

import (
	"os"

	"diskwatch/cmd"
	"diskwatch/internal/conf"
	"diskwatch/internal/logging"
)

func main() {
	logging.Init()

	settings, err := conf.Load()
	if err != nil {
		logging.Fatal("failed to load configuration", "error", err)
	}

	if settings.Main.Log.Enabled {
		closeLog, err := logging.InitFile(settings.Main.Log.Path, logging.FileRotation{
			MaxSizeMB:  settings.Main.Log.MaxSizeMB,
			MaxBackups: settings.Main.Log.MaxBackups,
			MaxAgeDays: settings.Main.Log.MaxAgeDays,
		})
		if err != nil {
			logging.Fatal("failed to open log file", "path", settings.Main.Log.Path, "error", err)
		}
		defer func() { _ = closeLog() }()
	}

	rootCmd := cmd.RootCommand(settings)
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
