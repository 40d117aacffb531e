package checker

import (
	"testing"

	"github.com/Beelzebub2/mod-side-checker/internal/registry"
)

func sampleResults() Results {
	return Results{
		{Name: "sodium.jar", Side: registry.SideClient, DownloadURL: "https://cdn.modrinth.com/data/AANobbMI/versions/1/sodium.jar"},
		{Name: "lithium.jar", Side: registry.SideBoth, DownloadURL: "https://cdn.modrinth.com/data/gvQqBUqZ/versions/1/lithium.jar"},
		{Name: "chunky.jar", Side: registry.SideServer, DownloadURL: "https://cdn.modrinth.com/data/fALzjamp/versions/1/chunky.jar"},
		{Name: "fabric-api.jar", Side: registry.SideBoth, DownloadURL: "https://cdn.modrinth.com/data/P7dR8mSH/versions/1/fabric-api.jar"},
		{Name: "mystery.jar", Side: registry.SideUnknown, DownloadURL: ""},
	}
}

func TestResultsBySide(t *testing.T) {
	results := sampleResults()

	both := results.BySide(registry.SideBoth)
	if len(both) != 2 {
		t.Fatalf("expected 2 Both results, got %d", len(both))
	}
	for _, r := range both {
		if r.Side != registry.SideBoth {
			t.Errorf("filter leaked a %s result: %s", r.Side, r.Name)
		}
	}

	if got := results.BySide(registry.SideOptional); len(got) != 0 {
		t.Errorf("expected no Optional results, got %d", len(got))
	}
}

func TestResultsCounts(t *testing.T) {
	counts := sampleResults().Counts()

	want := map[registry.Side]int{
		registry.SideClient:  1,
		registry.SideServer:  1,
		registry.SideBoth:    2,
		registry.SideUnknown: 1,
	}
	for side, n := range want {
		if counts[side] != n {
			t.Errorf("side %s: expected %d, got %d", side, n, counts[side])
		}
	}
}

func TestResultsSorted(t *testing.T) {
	results := sampleResults()
	sorted := results.Sorted()

	wantFirst := "chunky.jar"
	if sorted[0].Name != wantFirst {
		t.Errorf("expected %s first, got %s", wantFirst, sorted[0].Name)
	}
	for i := 1; i < len(sorted); i++ {
		if sorted[i-1].Name > sorted[i].Name {
			t.Errorf("results not sorted at position %d: %s > %s", i, sorted[i-1].Name, sorted[i].Name)
		}
	}

	// The original order must survive.
	if results[0].Name != "sodium.jar" {
		t.Errorf("Sorted must not mutate the receiver, got %s first", results[0].Name)
	}
}

func TestResultsNames(t *testing.T) {
	names := sampleResults().Names()
	if len(names) != 5 {
		t.Fatalf("expected 5 names, got %d", len(names))
	}
	if names[0] != "sodium.jar" {
		t.Errorf("expected names in result order, got %s first", names[0])
	}
}
