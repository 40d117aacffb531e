package ui

import (
	"strings"
	"testing"
	"time"

	"github.com/Beelzebub2/mod-side-checker/internal/checker"
	"github.com/Beelzebub2/mod-side-checker/internal/packer"
	"github.com/Beelzebub2/mod-side-checker/internal/registry"
)

func TestRenderSummary(t *testing.T) {
	results := checker.Results{
		{Name: "sodium.jar", Side: registry.SideClient},
		{Name: "lithium.jar", Side: registry.SideBoth},
		{Name: "fabric-api.jar", Side: registry.SideBoth},
		{Name: "chunky.jar", Side: registry.SideServer},
		{Name: "mystery.jar", Side: registry.SideUnknown},
	}

	summary := RenderSummary(results)

	if !strings.Contains(summary, "Total mods: 5") {
		t.Errorf("expected the total, got %q", summary)
	}
	for _, want := range []string{"• Both: 2", "• Client: 1", "• Server: 1", "• Unknown: 1"} {
		if !strings.Contains(summary, want) {
			t.Errorf("expected %q in the summary, got %q", want, summary)
		}
	}

	// The most common side comes first.
	if strings.Index(summary, "Both") > strings.Index(summary, "Client") {
		t.Error("expected sides ordered by count, most common first")
	}
}

func TestRenderSummaryEmpty(t *testing.T) {
	summary := RenderSummary(nil)

	if !strings.Contains(summary, "Total mods: 0") {
		t.Errorf("expected a zero total, got %q", summary)
	}
}

func TestRenderRunStats(t *testing.T) {
	stats := checker.BuildRunStats(10, checker.Results{{Name: "a.jar", Side: registry.SideBoth}}, false, time.Now())
	if RenderRunStats(stats) == "" {
		t.Error("expected a rendered stats line")
	}

	interrupted := checker.BuildRunStats(10, checker.Results{{Name: "a.jar", Side: registry.SideBoth}}, true, time.Now())
	if !strings.Contains(RenderRunStats(interrupted), "interrupted") {
		t.Error("expected the interrupted marker")
	}
}

func TestRenderPackSummary(t *testing.T) {
	summary := RenderPackSummary(packer.Summary{
		Path:     "output/server_pack.zip",
		Type:     packer.PackServer,
		Included: 10,
		Bundled:  8,
		Missing:  2,
		Extras:   1,
	})

	for _, want := range []string{"server pack", "output/server_pack.zip", "Mods included: 10 (8 bundled)", "Missing jars: 2", "Unlisted jars left out: 1"} {
		if !strings.Contains(summary, want) {
			t.Errorf("expected %q in the pack summary, got %q", want, summary)
		}
	}
}

func TestRenderPackSummaryCleanRun(t *testing.T) {
	summary := RenderPackSummary(packer.Summary{
		Path:     "output/client_pack.zip",
		Type:     packer.PackClient,
		Included: 5,
		Bundled:  5,
	})

	if strings.Contains(summary, "Missing jars") {
		t.Error("expected no missing-jars line for a clean run")
	}
	if strings.Contains(summary, "Unlisted jars") {
		t.Error("expected no extras line for a clean run")
	}
}
