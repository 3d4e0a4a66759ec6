// Command import_transcripts copies every transcriptN.txt from the folder into
// the record store ahead of time, so first reads do not pay for the download.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"sort"
	"syscall"

	"dialoguehub/internal/util"
	"dialoguehub/services/dialogue/internal/app"
	"dialoguehub/services/dialogue/internal/bootstrap"
	"dialoguehub/services/dialogue/internal/config"
)

func main() {
	configPath := flag.String("config", config.ConfigPath, "path to config.yaml")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}
	logger := util.InitLogger(cfg.LogLevel)

	mode, _ := config.ParseMode(cfg.Mode)
	if !mode.UsesDatabase() {
		log.Fatalf("mode %q keeps transcripts in the folder; nothing to import", mode)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	folder, err := bootstrap.OpenFolder(ctx, cfg, mode)
	if err != nil {
		log.Fatalf("failed to open folder: %v", err)
	}
	st, err := bootstrap.OpenStore(ctx, cfg, mode)
	if err != nil {
		log.Fatalf("failed to open store: %v", err)
	}
	appCore, err := app.New(app.Config{Mode: mode, Folder: folder, Store: st, AudioExtensions: cfg.AudioExtensions})
	if err != nil {
		log.Fatalf("failed to init app: %v", err)
	}
	defer appCore.Close()

	report, err := appCore.ImportAll(ctx)
	if err != nil {
		logger.Error("import failed", "err", err)
		os.Exit(1)
	}

	failed := make([]int, 0, len(report.Failed))
	for n := range report.Failed {
		failed = append(failed, n)
	}
	sort.Ints(failed)
	for _, n := range failed {
		logger.Error("transcript import failed", "number", n, "err", report.Failed[n])
	}
	fmt.Printf("scanned=%d imported=%d skipped=%d failed=%d\n", report.Scanned, report.Imported, report.Skipped, len(report.Failed))
	if len(failed) > 0 {
		os.Exit(1)
	}
}
