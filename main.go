// Command modchecker is the interactive entry point: it walks the user
// through classifying a modpack against the Modrinth registry and exporting
// or repackaging the results. The scripted CLI lives in cmd/modchecker.
package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/Beelzebub2/mod-side-checker/internal/checker"
	"github.com/Beelzebub2/mod-side-checker/internal/config"
	"github.com/Beelzebub2/mod-side-checker/internal/export"
	"github.com/Beelzebub2/mod-side-checker/internal/logging"
	"github.com/Beelzebub2/mod-side-checker/internal/manifest"
	"github.com/Beelzebub2/mod-side-checker/internal/packer"
	"github.com/Beelzebub2/mod-side-checker/internal/registry"
	"github.com/Beelzebub2/mod-side-checker/internal/state"
	"github.com/Beelzebub2/mod-side-checker/internal/ui"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, ui.ErrorStyle.Render("Error: "+err.Error()))
		os.Exit(1)
	}
}

func run() error {
	// Load configuration first; a missing file is created with defaults.
	cfg, created, err := config.Load(config.DefaultFileName)
	if err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("configuration error: %w", err)
	}

	for _, dir := range []string{cfg.Folders.Input, cfg.Folders.Output} {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("could not create directory %s: %w", dir, err)
		}
	}

	// The progress display owns the terminal, so run logs go to the file
	// only.
	logger, logFile := logging.NewFileOnly(cfg.Folders.Output, cfg.Logging.FileName, logging.ParseLevel(cfg.Logging.Level))
	if logFile != nil {
		defer logFile.Close()
	}

	// Lock the output directory for the lifetime of the session.
	stateMgr, err := state.NewManager(cfg.Folders.Output, logger)
	if err != nil {
		return err
	}
	defer stateMgr.Close()

	app := &App{
		cfg:      cfg,
		logger:   logger,
		stateMgr: stateMgr,
		menu:     ui.NewMenu(os.Stdin, os.Stdout, cfg),
		out:      os.Stdout,
	}

	ui.PrintBanner(app.out)
	if created {
		fmt.Fprintln(app.out, ui.MutedStyle.Render("Created default configuration at "+config.DefaultFileName))
	}
	fmt.Fprintln(app.out, ui.MutedStyle.Render("Input folder:  "+absPath(cfg.Folders.Input)))
	fmt.Fprintln(app.out, ui.MutedStyle.Render("Output folder: "+absPath(cfg.Folders.Output)))

	return app.Run()
}

// App drives the interactive session. One App serves one terminal session;
// each classification run inside it gets fresh pipeline state.
type App struct {
	cfg      *config.Config
	logger   *slog.Logger
	stateMgr *state.Manager
	menu     *ui.Menu
	out      io.Writer
}

// Run loops the mode menu. The checker mode ends the session after its
// export menu; the packer mode can return to the menu instead.
func (a *App) Run() error {
	for {
		mode, err := a.menu.Mode()
		if err != nil {
			return err
		}

		switch mode {
		case ui.ModeChecker:
			return a.runChecker()
		case ui.ModePacker:
			again, err := a.runPacker()
			if err != nil {
				return err
			}
			if !again {
				return nil
			}
		}
	}
}

// runChecker classifies the modpack in the input folder and loops the
// export menu over the results.
func (a *App) runChecker() error {
	resolved, err := a.loadManifest()
	if err != nil {
		return err
	}
	if resolved.TempDir != "" {
		defer manifest.CleanTemp(resolved.TempDir)
	}
	m := resolved.Manifest

	workers, err := a.menu.WorkerCount()
	if err != nil {
		return err
	}

	fmt.Fprintln(a.out, ui.MenuStyle.Render(fmt.Sprintf("\nAnalyzing %d mods using %d workers...", m.ModCount(), workers)))
	report := a.classify(m, workers)

	if len(report.Results) == 0 {
		fmt.Fprintln(a.out, ui.WarnStyle.Render("No mod data found to process or operation was interrupted."))
		return nil
	}
	if report.Stats.Interrupted {
		fmt.Fprintln(a.out, ui.WarnStyle.Render("Stopped due to user interrupt. Partial results available."))
	}

	fmt.Fprintln(a.out, ui.RenderSummary(report.Results))
	fmt.Fprintln(a.out, ui.RenderRunStats(report.Stats))

	return a.exportLoop(report.Results)
}

// runPacker builds side-specific archives. It reports whether the user
// asked to return to the mode menu.
func (a *App) runPacker() (again bool, err error) {
	choice, err := a.menu.PackChoice()
	if err != nil {
		return false, err
	}
	if choice == ui.PackReturn {
		return true, nil
	}

	var types []packer.PackType
	switch choice {
	case ui.PackServerOnly:
		types = []packer.PackType{packer.PackServer}
	case ui.PackClientOnly:
		types = []packer.PackType{packer.PackClient}
	case ui.PackBothPacks:
		types = []packer.PackType{packer.PackServer, packer.PackClient}
	}

	fmt.Fprintln(a.out, ui.MenuStyle.Render("\nLooking for modpack files..."))
	resolved, err := a.loadManifest()
	if err != nil {
		fmt.Fprintln(a.out, ui.ErrorStyle.Render("No modpack data found. Please add a .mrpack file to the input folder."))
		return false, err
	}
	if resolved.TempDir != "" {
		defer manifest.CleanTemp(resolved.TempDir)
	}
	m := resolved.Manifest

	// Report on available jars before the user commits to a long run.
	jarCount := 0
	if resolved.ModsDir != "" {
		if jars, err := packer.ScanJarFiles(resolved.ModsDir, a.logger); err == nil {
			jarCount = len(jars)
		}
	}
	if jarCount == 0 {
		fmt.Fprintln(a.out, ui.WarnStyle.Render("Warning: No mod files found in the extracted modpack."))
		fmt.Fprintln(a.out, ui.WarnStyle.Render("The packs will carry info records instead of jars."))
	} else {
		fmt.Fprintln(a.out, ui.SuccessStyle.Render(fmt.Sprintf("Found %d mod JAR files for packaging", jarCount)))
	}

	workers, err := a.menu.WorkerCount()
	if err != nil {
		return false, err
	}

	fmt.Fprintln(a.out, ui.MenuStyle.Render(fmt.Sprintf("\nAnalyzing %d mods using %d workers...", m.ModCount(), workers)))
	report := a.classify(m, workers)

	if len(report.Results) == 0 {
		fmt.Fprintln(a.out, ui.ErrorStyle.Render("No mod data available after processing."))
		return false, nil
	}
	if report.Stats.Interrupted {
		fmt.Fprintln(a.out, ui.WarnStyle.Render("Stopped due to user interrupt. Packing the partial results."))
	}

	fmt.Fprintln(a.out, ui.RenderSummary(report.Results))

	p := packer.NewPacker(a.cfg.Folders.Output, a.cfg.Files, a.logger)
	for _, packType := range types {
		summary, err := p.Create(packType, report.Results, resolved.ModsDir)
		if err != nil {
			return false, fmt.Errorf("failed to build %s pack: %w", packType, err)
		}
		fmt.Fprintln(a.out, ui.RenderPackSummary(*summary))
	}

	fmt.Fprintln(a.out, ui.SuccessStyle.Render("\n✓ Modpack creation completed successfully!"))
	return false, nil
}

// loadManifest resolves the manifest from the input folder, extracting a
// modpack archive into the temp folder when that is what it finds.
func (a *App) loadManifest() (*manifest.Resolved, error) {
	fmt.Fprintln(a.out, ui.MenuStyle.Render("\nLoading mod data..."))

	resolved, err := manifest.Resolve(a.cfg.Folders.Input, a.cfg.Files.ModIndex, a.cfg.Folders.Temp)
	if err != nil {
		fmt.Fprintln(a.out, ui.WarnStyle.Render(fmt.Sprintf(
			"Place your %s or .mrpack file in: %s", a.cfg.Files.ModIndex, absPath(a.cfg.Folders.Input))))
		return nil, err
	}
	if resolved.Manifest.ModCount() == 0 {
		return nil, fmt.Errorf("manifest %s lists no mods", resolved.Manifest.Name)
	}

	fmt.Fprintln(a.out, ui.MenuStyle.Render(fmt.Sprintf("Found %d mods to process", resolved.Manifest.ModCount())))
	return resolved, nil
}

// classify runs one classification with a live progress display and
// persists the run state. Interrupts are scoped to this run.
func (a *App) classify(m *manifest.Manifest, workers int) *checker.Report {
	runState := state.NewRunState(m.Name, workers)
	runState.TotalMods = m.ModCount()
	if err := a.stateMgr.WriteState(runState); err != nil {
		a.logger.Warn("Failed to write run state.", "error", err)
	}

	client := registry.NewClient(registry.ClientConfig{
		BaseURL:      a.cfg.API.BaseURL,
		UserAgent:    a.cfg.API.UserAgent,
		RequestDelay: a.cfg.RequestDelayDuration(),
		Timeout:      a.cfg.TimeoutDuration(),
	}, a.logger)

	coord := checker.NewCoordinator(a.logger)
	disarm := coord.Arm()
	defer disarm()

	pipeline := checker.NewPipeline(client, coord, workers, a.logger)

	displayCtx, stopDisplay := context.WithCancel(context.Background())
	var wg sync.WaitGroup
	display := ui.NewDisplay(pipeline, client, checker.BatchSizes(m.ModCount(), workers), a.cfg.UI)
	wg.Add(1)
	go display.Run(displayCtx, &wg)

	report := pipeline.Check(context.Background(), m.Files)

	stopDisplay()
	wg.Wait()
	fmt.Fprintln(a.out)

	stats := client.Stats()
	runState.Processed = report.Stats.Processed
	runState.Interrupted = report.Stats.Interrupted
	runState.FinishedAt = time.Now().UTC()
	for side, count := range report.Results.Counts() {
		runState.Counts[string(side)] = count
	}
	runState.Registry = &state.RegistryStats{
		Calls:    stats.Calls,
		MeanMs:   stats.MeanMs,
		P99Ms:    stats.P99Ms,
		Failures: stats.Failures,
	}
	if err := a.stateMgr.WriteState(runState); err != nil {
		a.logger.Warn("Failed to write run state.", "error", err)
	}

	return report
}

// exportLoop serves the export menu until the user exits.
func (a *App) exportLoop(results checker.Results) error {
	exporter := export.NewExporter(a.cfg.Folders.Output, a.cfg.Files, a.logger)

	for {
		action, err := a.menu.ExportChoice()
		if err != nil {
			return err
		}

		switch action {
		case ui.ExportAll:
			path, err := exporter.SaveAll(results)
			a.confirmSave(path, err, len(results))
		case ui.ExportClient:
			path, err := exporter.SaveSide(results, registry.SideClient)
			a.confirmSave(path, err, len(results.BySide(registry.SideClient)))
		case ui.ExportServer:
			path, err := exporter.SaveSide(results, registry.SideServer)
			a.confirmSave(path, err, len(results.BySide(registry.SideServer)))
		case ui.ExportBoth:
			path, err := exporter.SaveSide(results, registry.SideBoth)
			a.confirmSave(path, err, len(results.BySide(registry.SideBoth)))
		case ui.ExportSeparately:
			path, err := exporter.SaveAll(results)
			a.confirmSave(path, err, len(results))
			for _, side := range []registry.Side{registry.SideClient, registry.SideServer, registry.SideBoth} {
				path, err := exporter.SaveSide(results, side)
				a.confirmSave(path, err, len(results.BySide(side)))
			}
		case ui.ExportExit:
			fmt.Fprintln(a.out, ui.SuccessStyle.Render("\nGoodbye!"))
			return nil
		}
	}
}

func (a *App) confirmSave(path string, err error, rows int) {
	if err != nil {
		fmt.Fprintln(a.out, ui.ErrorStyle.Render("Export failed: "+err.Error()))
		return
	}
	fmt.Fprintln(a.out, ui.SuccessStyle.Render(fmt.Sprintf("✓ Saved %d mods to %s", rows, filepath.Base(path))))
	fmt.Fprintln(a.out, ui.MutedStyle.Render("  "+path))
}

func absPath(p string) string {
	abs, err := filepath.Abs(p)
	if err != nil {
		return p
	}
	return abs
}
