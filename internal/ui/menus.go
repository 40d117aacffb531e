package ui

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/Beelzebub2/mod-side-checker/internal/config"
)

// AppMode selects which half of the application to run.
type AppMode int

const (
	// ModeChecker classifies mods from the manifest.
	ModeChecker AppMode = iota + 1
	// ModePacker builds side-specific archives from earlier results.
	ModePacker
)

// ExportAction is a choice from the export menu.
type ExportAction int

const (
	// ExportAll writes every classified mod to one file.
	ExportAll ExportAction = iota + 1
	// ExportClient writes client-only mods.
	ExportClient
	// ExportServer writes server-only mods.
	ExportServer
	// ExportBoth writes mods required on both sides.
	ExportBoth
	// ExportSeparately writes client, server and both files in one go.
	ExportSeparately
	// ExportExit leaves the export menu.
	ExportExit
)

// PackAction is a choice from the modpack creator menu.
type PackAction int

const (
	// PackServerOnly builds the server archive.
	PackServerOnly PackAction = iota + 1
	// PackClientOnly builds the client archive.
	PackClientOnly
	// PackBothPacks builds both archives.
	PackBothPacks
	// PackReturn goes back to the main menu.
	PackReturn
)

// Menu drives the interactive prompts. Choices are read line by line from
// in; rendered menus and retry notices go to out. Every prompt loops until
// it reads a valid option, and reports an error only when the input source
// is exhausted or failing.
type Menu struct {
	in  *bufio.Scanner
	out io.Writer
	cfg *config.Config
}

// NewMenu builds a menu reading from in and writing to out.
func NewMenu(in io.Reader, out io.Writer, cfg *config.Config) *Menu {
	return &Menu{
		in:  bufio.NewScanner(in),
		out: out,
		cfg: cfg,
	}
}

// Mode asks which application mode to run.
func (m *Menu) Mode() (AppMode, error) {
	for {
		fmt.Fprintln(m.out, MenuStyle.Render("\n╭─── Select Mode ─────────────╮"))
		fmt.Fprintln(m.out, MenuStyle.Render("│ 1. Mod Side Checker        │"))
		fmt.Fprintln(m.out, MenuStyle.Render("│ 2. Modpack Creator         │"))
		fmt.Fprintln(m.out, MenuStyle.Render("╰────────────────────────────╯"))
		fmt.Fprint(m.out, MenuStyle.Render("\nEnter your choice (1-2): "))

		choice, err := m.readLine()
		if err != nil {
			return 0, err
		}
		switch choice {
		case "1":
			return ModeChecker, nil
		case "2":
			return ModePacker, nil
		}
		fmt.Fprintln(m.out, WarnStyle.Render("→ Please enter a valid option (1-2)"))
	}
}

// WorkerCount asks how many workers to run, bounded by the configured
// maximum. Counts above the recommended maximum print a notice but are
// still accepted.
func (m *Menu) WorkerCount() (int, error) {
	maxAllowed := m.cfg.Threading.MaxThreads
	recommended := m.cfg.Threading.RecommendedMax

	for {
		fmt.Fprintln(m.out, MenuStyle.Render("\n╭─── Worker Configuration ────╮"))
		fmt.Fprintln(m.out, MenuStyle.Render(fmt.Sprintf("│ Recommended max: %d", recommended)))
		if warning := m.cfg.Threading.Warning; warning != "" {
			fmt.Fprintln(m.out, WarnStyle.Render("│ "+truncate(warning, 40)))
		}
		fmt.Fprint(m.out, MenuStyle.Render(fmt.Sprintf("│ Number of workers (1-%d): ", maxAllowed)))

		line, err := m.readLine()
		if err != nil {
			return 0, err
		}
		count, err := strconv.Atoi(line)
		if err != nil {
			fmt.Fprintln(m.out, WarnStyle.Render("→ Please enter a valid number"))
			continue
		}
		if count < 1 || count > maxAllowed {
			fmt.Fprintln(m.out, WarnStyle.Render(fmt.Sprintf("→ Please enter a number between 1 and %d", maxAllowed)))
			continue
		}
		if count > recommended {
			fmt.Fprintln(m.out, WarnStyle.Render(fmt.Sprintf("│ Note: Using %d workers may affect UI stability", count)))
		}
		fmt.Fprintln(m.out, MenuStyle.Render("╰──────────────────────────╯"))
		return count, nil
	}
}

// ExportChoice asks what to export after a classification run.
func (m *Menu) ExportChoice() (ExportAction, error) {
	for {
		fmt.Fprintln(m.out, MenuStyle.Render("\n╭─── Export Options ─────────╮"))
		fmt.Fprintln(m.out, MenuStyle.Render("│ 1. Export all mods"))
		fmt.Fprintln(m.out, MenuStyle.Render("│ 2. Export client-only mods"))
		fmt.Fprintln(m.out, MenuStyle.Render("│ 3. Export server-only mods"))
		fmt.Fprintln(m.out, MenuStyle.Render("│ 4. Export mods for both sides"))
		fmt.Fprintln(m.out, MenuStyle.Render("│ 5. Export all types separately"))
		fmt.Fprintln(m.out, MenuStyle.Render("│ 6. Exit"))
		fmt.Fprintln(m.out, MenuStyle.Render("╰────────────────────────────╯"))
		fmt.Fprint(m.out, MenuStyle.Render("\nEnter your choice (1-6): "))

		choice, err := m.readLine()
		if err != nil {
			return 0, err
		}
		if action, ok := exportActions[choice]; ok {
			return action, nil
		}
		fmt.Fprintln(m.out, WarnStyle.Render("\nInvalid choice. Please try again."))
	}
}

// PackChoice asks which archives the modpack creator should build.
func (m *Menu) PackChoice() (PackAction, error) {
	for {
		fmt.Fprintln(m.out, MenuStyle.Render("\n╭─── Modpack Creator Options ───╮"))
		fmt.Fprintln(m.out, MenuStyle.Render("│ 1. Create server-side pack    │"))
		fmt.Fprintln(m.out, MenuStyle.Render("│ 2. Create client-side pack    │"))
		fmt.Fprintln(m.out, MenuStyle.Render("│ 3. Create both packs          │"))
		fmt.Fprintln(m.out, MenuStyle.Render("│ 4. Return to main menu        │"))
		fmt.Fprintln(m.out, MenuStyle.Render("╰────────────────────────────────╯"))
		fmt.Fprint(m.out, MenuStyle.Render("\nEnter your choice (1-4): "))

		choice, err := m.readLine()
		if err != nil {
			return 0, err
		}
		if action, ok := packActions[choice]; ok {
			return action, nil
		}
		fmt.Fprintln(m.out, WarnStyle.Render("\nInvalid choice. Please try again."))
	}
}

var exportActions = map[string]ExportAction{
	"1": ExportAll,
	"2": ExportClient,
	"3": ExportServer,
	"4": ExportBoth,
	"5": ExportSeparately,
	"6": ExportExit,
}

var packActions = map[string]PackAction{
	"1": PackServerOnly,
	"2": PackClientOnly,
	"3": PackBothPacks,
	"4": PackReturn,
}

func (m *Menu) readLine() (string, error) {
	if !m.in.Scan() {
		if err := m.in.Err(); err != nil {
			return "", err
		}
		return "", io.EOF
	}
	return strings.TrimSpace(m.in.Text()), nil
}

func truncate(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n]) + "..."
}
