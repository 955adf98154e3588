// P.A.L. updater - downloads the replacement server artifact, swaps it
// into place, and relaunches it. Runs as its own process so the gateway
// never blocks on an update.
package main

import (
	"errors"
	"log/slog"
	"os"
	"os/exec"

	"github.com/joho/godotenv"

	"github.com/Lucifer12122001/PAL/internal/config"
	"github.com/Lucifer12122001/PAL/internal/update"
)

// Exit codes distinguish where the update failed: 1 before any
// destructive write (download/validation), 2 during the swap.
const (
	exitDownloadFailed = 1
	exitSwapFailed     = 2
)

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	slog.SetDefault(logger)

	if err := godotenv.Load(); err != nil {
		slog.Info("No .env file found, using environment variables")
	}

	cfg, err := config.Load()
	if err != nil {
		slog.Error("Failed to load configuration", "error", err)
		os.Exit(exitDownloadFailed)
	}

	applyCfg := update.ApplyConfig{
		SourceURL:  cfg.Update.SourceURL,
		TargetPath: cfg.Update.TargetPath,
		Timeout:    cfg.Update.Timeout,
	}

	slog.Info("Initiating download of new version", "source", applyCfg.SourceURL, "target", applyCfg.TargetPath)

	if err := update.Apply(applyCfg); err != nil {
		if errors.Is(err, update.ErrSwap) {
			slog.Error("Update swap failed", "error", err)
			os.Exit(exitSwapFailed)
		}
		slog.Error("Update download failed, artifact untouched", "error", err)
		os.Exit(exitDownloadFailed)
	}

	slog.Info("Update applied, launching new version")

	cmd := exec.Command(applyCfg.TargetPath)
	cmd.Env = os.Environ()
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	cmd.Stdin = os.Stdin
	if err := cmd.Start(); err != nil {
		slog.Error("Failed to launch new version", "error", err)
		os.Exit(exitSwapFailed)
	}

	slog.Info("New process launched, exiting old updater", "pid", cmd.Process.Pid)
}
