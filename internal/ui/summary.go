package ui

import (
	"fmt"
	"sort"
	"strings"

	"github.com/Beelzebub2/mod-side-checker/internal/checker"
	"github.com/Beelzebub2/mod-side-checker/internal/packer"
)

// RenderSummary formats the side distribution box shown after a
// classification run. Sides are listed by count, most common first.
func RenderSummary(results checker.Results) string {
	var sb strings.Builder
	sb.WriteString("\n╭─── Summary ───────────────╮\n")
	sb.WriteString(fmt.Sprintf("│ Total mods: %d\n", len(results)))
	sb.WriteString("│ Distribution:\n")
	for _, line := range distributionLines(results) {
		sb.WriteString(line)
		sb.WriteString("\n")
	}
	sb.WriteString("╰────────────────────────────╯")
	return MenuStyle.Render(sb.String())
}

// RenderRunStats formats the one-line wrap-up shown under the summary box.
func RenderRunStats(stats checker.RunStats) string {
	line := stats.CompactFormat()
	if stats.Interrupted {
		return WarnStyle.Render(line)
	}
	return SuccessStyle.Render(line)
}

// RenderPackSummary formats the wrap-up box for one created archive.
func RenderPackSummary(s packer.Summary) string {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("\n╭─── %s pack ───────────────╮\n", s.Type))
	sb.WriteString(fmt.Sprintf("│ Archive: %s\n", s.Path))
	sb.WriteString(fmt.Sprintf("│ Mods included: %d (%d bundled)\n", s.Included, s.Bundled))
	if s.Missing > 0 {
		sb.WriteString(fmt.Sprintf("│ Missing jars: %d (see missing_mods.txt)\n", s.Missing))
	}
	if s.Extras > 0 {
		sb.WriteString(fmt.Sprintf("│ Unlisted jars left out: %d\n", s.Extras))
	}
	sb.WriteString("╰────────────────────────────╯")
	return MenuStyle.Render(sb.String())
}

func distributionLines(results checker.Results) []string {
	counts := results.Counts()

	type sideCount struct {
		side  string
		count int
	}
	pairs := make([]sideCount, 0, len(counts))
	for side, count := range counts {
		pairs = append(pairs, sideCount{side: string(side), count: count})
	}
	sort.Slice(pairs, func(i, j int) bool {
		if pairs[i].count != pairs[j].count {
			return pairs[i].count > pairs[j].count
		}
		return pairs[i].side < pairs[j].side
	})

	lines := make([]string, 0, len(pairs))
	for _, p := range pairs {
		lines = append(lines, fmt.Sprintf("│ • %s: %d", p.side, p.count))
	}
	return lines
}
