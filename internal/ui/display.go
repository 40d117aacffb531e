package ui

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/Beelzebub2/mod-side-checker/internal/checker"
	"github.com/Beelzebub2/mod-side-checker/internal/config"
	"github.com/Beelzebub2/mod-side-checker/internal/registry"
)

type rateDataPoint struct {
	time  time.Time
	value int
}

// ProgressSource reports how far a classification run has advanced.
type ProgressSource interface {
	Progress() checker.Progress
}

// StatsSource reports registry call statistics.
type StatsSource interface {
	Stats() registry.Stats
}

// Display renders the live progress screen for a classification run: one
// gradient bar per worker, an overall bar, a rolling rate with an ETA and a
// registry latency footer. It owns the whole terminal while running, which
// is why run logs go to a file instead of stdout.
type Display struct {
	progress ProgressSource
	stats    StatsSource
	totals   []int
	total    int

	width int
	ascii bool

	// For rolling average rate calculation.
	rateWindow  time.Duration
	rateHistory []rateDataPoint
	currentRate float64
}

// NewDisplay builds a display for a run with len(totals) workers, where
// totals[i] is the number of mods assigned to worker i.
func NewDisplay(progress ProgressSource, stats StatsSource, totals []int, uiCfg config.UIConfig) *Display {
	total := 0
	for _, n := range totals {
		total += n
	}

	width := uiCfg.ProgressBarWidth
	if width < 40 {
		width = 40
	}

	return &Display{
		progress:   progress,
		stats:      stats,
		totals:     totals,
		total:      total,
		width:      width,
		ascii:      uiCfg.UseASCIIBars,
		rateWindow: 60 * time.Second,
	}
}

// Run redraws the screen on a ticker until ctx is cancelled, then renders
// one final frame so the finished bars stay visible.
func (d *Display) Run(ctx context.Context, wg *sync.WaitGroup) {
	defer wg.Done()

	fmt.Print("\033[?25l")
	defer fmt.Print("\033[?25h")

	ticker := time.NewTicker(500 * time.Millisecond)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			d.render()
		case <-ctx.Done():
			d.render()
			return
		}
	}
}

func (d *Display) render() {
	snapshot := d.progress.Progress()
	d.updateOverallRate(snapshot.Processed)
	eta := d.calculateETA(snapshot.Processed)

	var sb strings.Builder
	sb.WriteString("\033[H\033[2J")

	var overall float64
	if d.total > 0 {
		overall = float64(snapshot.Processed) / float64(d.total)
	}
	sb.WriteString(fmt.Sprintf("Progress: %s (%d / %d)\n",
		SuccessStyle.Render(fmt.Sprintf("%.1f%%", overall*100)),
		snapshot.Processed, d.total))
	sb.WriteString(d.buildBar(overall))
	sb.WriteString("\n")

	sb.WriteString(fmt.Sprintf("Rate (60s avg): %s | ETA: %s\n\n",
		AccentStyle.Render(fmt.Sprintf("%.1f mods/s", d.currentRate)),
		WarnStyle.Render(eta)))

	sb.WriteString("Workers:\n")
	for i, total := range d.totals {
		done := 0
		if i < len(snapshot.PerWorker) {
			done = snapshot.PerWorker[i]
		}
		sb.WriteString(d.buildWorkerLine(i+1, done, total))
		sb.WriteString("\n")
	}

	sb.WriteString("\n")
	sb.WriteString(d.buildStatsLine())
	sb.WriteString("\n")

	fmt.Print(sb.String())
}

func (d *Display) buildWorkerLine(worker, done, total int) string {
	var ratio float64
	if total > 0 {
		ratio = float64(done) / float64(total)
	}
	return fmt.Sprintf("  Worker %-2d %s %3.0f%% (%d/%d)",
		worker, d.buildBar(ratio), ratio*100, done, total)
}

// buildBar renders a progress bar whose fill color moves from red through
// yellow to green as the ratio approaches 1.
func (d *Display) buildBar(ratio float64) string {
	if ratio < 0 {
		ratio = 0
	}
	if ratio > 1 {
		ratio = 1
	}

	// Leave room for the worker label, percentage and counts on either side.
	barWidth := d.width - 30
	if barWidth < 10 {
		barWidth = 10
	}

	filled := int(ratio * float64(barWidth))
	if filled > barWidth {
		filled = barWidth
	}

	style := lipgloss.NewStyle().Foreground(progressColor(ratio))
	if d.ascii {
		return "[" + style.Render(strings.Repeat("=", filled)+">") + strings.Repeat(" ", barWidth-filled) + "]"
	}
	return "[" + style.Render(strings.Repeat("█", filled)) + MutedStyle.Render(strings.Repeat("░", barWidth-filled)) + "]"
}

func (d *Display) buildStatsLine() string {
	stats := d.stats.Stats()

	failures := MutedStyle.Render("0")
	if stats.Failures > 0 {
		failures = ErrorStyle.Render(fmt.Sprintf("%d", stats.Failures))
	}

	return fmt.Sprintf("Registry: %s calls | Latency (avg/p99): %s | Failures: %s",
		AccentStyle.Render(fmt.Sprintf("%d", stats.Calls)),
		MutedStyle.Render(fmt.Sprintf("%.0fms/%dms", stats.MeanMs, stats.P99Ms)),
		failures)
}

func (d *Display) updateOverallRate(processed int) {
	now := time.Now()
	d.rateHistory = append(d.rateHistory, rateDataPoint{time: now, value: processed})

	cutoff := now.Add(-d.rateWindow)
	firstValidIndex := 0
	for i, dp := range d.rateHistory {
		if !dp.time.Before(cutoff) {
			firstValidIndex = i
			break
		}
	}
	d.rateHistory = d.rateHistory[firstValidIndex:]

	if len(d.rateHistory) < 2 {
		d.currentRate = 0
		return
	}
	first := d.rateHistory[0]
	last := d.rateHistory[len(d.rateHistory)-1]
	elapsedSeconds := last.time.Sub(first.time).Seconds()
	if elapsedSeconds < 1 {
		d.currentRate = 0
		return
	}
	d.currentRate = float64(last.value-first.value) / elapsedSeconds
}

func (d *Display) calculateETA(processed int) string {
	if d.currentRate <= 0 || processed >= d.total {
		return "n/a"
	}
	remaining := d.total - processed
	seconds := int(float64(remaining) / d.currentRate)
	return (time.Duration(seconds) * time.Second).String()
}
