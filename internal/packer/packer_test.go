package packer

import (
	"archive/zip"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/Beelzebub2/mod-side-checker/internal/checker"
	"github.com/Beelzebub2/mod-side-checker/internal/config"
	"github.com/Beelzebub2/mod-side-checker/internal/registry"
)

func testLogger() *slog.Logger {
	return slog.New(slog.DiscardHandler)
}

func writeJar(t *testing.T, dir, name string) {
	t.Helper()
	if err := os.WriteFile(filepath.Join(dir, name), []byte("jar bytes: "+name), 0644); err != nil {
		t.Fatalf("failed to write jar %s: %v", name, err)
	}
}

func packResults() checker.Results {
	return checker.Results{
		{Name: "sodium.jar", Side: registry.SideClient, DownloadURL: "https://cdn.modrinth.com/data/AANobbMI/versions/1/sodium.jar"},
		{Name: "chunky.jar", Side: registry.SideServer, DownloadURL: "https://cdn.modrinth.com/data/fALzjamp/versions/1/chunky.jar"},
		{Name: "fabric-api.jar", Side: registry.SideBoth, DownloadURL: "https://cdn.modrinth.com/data/P7dR8mSH/versions/1/fabric-api.jar"},
		{Name: "mystery.jar", Side: registry.SideUnknown, DownloadURL: ""},
	}
}

func zipEntries(t *testing.T, archivePath string) map[string]string {
	t.Helper()
	reader, err := zip.OpenReader(archivePath)
	if err != nil {
		t.Fatalf("failed to open archive %s: %v", archivePath, err)
	}
	defer reader.Close()

	entries := make(map[string]string)
	for _, file := range reader.File {
		rc, err := file.Open()
		if err != nil {
			t.Fatalf("failed to open entry %s: %v", file.Name, err)
		}
		data, err := io.ReadAll(rc)
		rc.Close()
		if err != nil {
			t.Fatalf("failed to read entry %s: %v", file.Name, err)
		}
		entries[file.Name] = string(data)
	}
	return entries
}

func newTestPacker(t *testing.T) (*Packer, string, string) {
	t.Helper()
	outputDir := t.TempDir()
	modsDir := t.TempDir()
	return NewPacker(outputDir, config.Default().Files, testLogger()), outputDir, modsDir
}

func TestCreateServerPackExcludesClientMods(t *testing.T) {
	packer, _, modsDir := newTestPacker(t)
	for _, name := range []string{"sodium.jar", "chunky.jar", "fabric-api.jar", "mystery.jar"} {
		writeJar(t, modsDir, name)
	}

	summary, err := packer.Create(PackServer, packResults(), modsDir)
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	if filepath.Base(summary.Path) != "server_pack.zip" {
		t.Errorf("unexpected archive name: %s", summary.Path)
	}

	entries := zipEntries(t, summary.Path)
	if _, ok := entries["mods/sodium.jar"]; ok {
		t.Error("server pack must not contain the client-only mod")
	}
	for _, want := range []string{"mods/chunky.jar", "mods/fabric-api.jar", "mods/mystery.jar"} {
		if _, ok := entries[want]; !ok {
			t.Errorf("expected %s in server pack", want)
		}
	}
	if summary.Bundled != 3 || summary.Missing != 0 {
		t.Errorf("unexpected summary: %+v", summary)
	}
}

func TestCreateClientPackExcludesServerMods(t *testing.T) {
	packer, _, modsDir := newTestPacker(t)
	for _, name := range []string{"sodium.jar", "chunky.jar", "fabric-api.jar", "mystery.jar"} {
		writeJar(t, modsDir, name)
	}

	summary, err := packer.Create(PackClient, packResults(), modsDir)
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	if filepath.Base(summary.Path) != "client_pack.zip" {
		t.Errorf("unexpected archive name: %s", summary.Path)
	}

	entries := zipEntries(t, summary.Path)
	if _, ok := entries["mods/chunky.jar"]; ok {
		t.Error("client pack must not contain the server-only mod")
	}
	if _, ok := entries["mods/sodium.jar"]; !ok {
		t.Error("expected the client mod in the client pack")
	}
}

func TestCreateRecordsMissingJars(t *testing.T) {
	packer, _, modsDir := newTestPacker(t)
	writeJar(t, modsDir, "chunky.jar")
	// fabric-api.jar and mystery.jar have no jar on disk.

	summary, err := packer.Create(PackServer, packResults(), modsDir)
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	if summary.Missing != 2 {
		t.Errorf("expected 2 missing mods, got %d", summary.Missing)
	}

	entries := zipEntries(t, summary.Path)
	missingList, ok := entries["missing_mods.txt"]
	if !ok {
		t.Fatal("expected missing_mods.txt in the archive")
	}
	if !strings.Contains(missingList, "fabric-api.jar") {
		t.Errorf("missing list should name fabric-api.jar: %s", missingList)
	}
	if !strings.Contains(missingList, "https://cdn.modrinth.com/data/P7dR8mSH") {
		t.Errorf("missing list should carry the download reference: %s", missingList)
	}
	if !strings.Contains(missingList, "no download reference") {
		t.Errorf("missing list should flag mods without a reference: %s", missingList)
	}
}

func TestCreateWritesReport(t *testing.T) {
	packer, _, modsDir := newTestPacker(t)
	writeJar(t, modsDir, "chunky.jar")
	writeJar(t, modsDir, "manually-added.jar")

	summary, err := packer.Create(PackServer, packResults(), modsDir)
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	entries := zipEntries(t, summary.Path)
	report, ok := entries["pack_report.txt"]
	if !ok {
		t.Fatal("expected pack_report.txt in the archive")
	}
	if !strings.Contains(report, "Pack type:   server") {
		t.Errorf("report should state the pack type: %s", report)
	}
	if !strings.Contains(report, "manually-added.jar") {
		t.Errorf("report should list the unclaimed extra jar: %s", report)
	}
	if summary.Extras != 1 {
		t.Errorf("expected 1 extra jar, got %d", summary.Extras)
	}
}

func TestCreateWithoutModsDirBuildsInfoOnlyPack(t *testing.T) {
	packer, _, _ := newTestPacker(t)
	missingDir := filepath.Join(t.TempDir(), "never-extracted")

	summary, err := packer.Create(PackServer, packResults(), missingDir)
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	if summary.Bundled != 0 {
		t.Errorf("expected nothing bundled, got %d", summary.Bundled)
	}
	if summary.Missing != summary.Included {
		t.Errorf("every included mod should be missing, got %d/%d", summary.Missing, summary.Included)
	}

	entries := zipEntries(t, summary.Path)
	if _, ok := entries["missing_mods.txt"]; !ok {
		t.Error("expected missing_mods.txt in info-only pack")
	}
}

func TestCreateRejectsEmptyResults(t *testing.T) {
	packer, _, modsDir := newTestPacker(t)

	if _, err := packer.Create(PackServer, nil, modsDir); err == nil {
		t.Error("expected error for empty results")
	}
}

func TestCreateRejectsUnknownPackType(t *testing.T) {
	packer, _, modsDir := newTestPacker(t)

	if _, err := packer.Create(PackType("universal"), packResults(), modsDir); err == nil {
		t.Error("expected error for unknown pack type")
	}
}

func TestCreateLeavesNoTempFiles(t *testing.T) {
	packer, outputDir, modsDir := newTestPacker(t)
	writeJar(t, modsDir, "chunky.jar")

	if _, err := packer.Create(PackServer, packResults(), modsDir); err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	leftovers, err := filepath.Glob(filepath.Join(outputDir, "pack-*.zip.tmp"))
	if err != nil {
		t.Fatalf("glob failed: %v", err)
	}
	if len(leftovers) != 0 {
		t.Errorf("expected no temp files, found %v", leftovers)
	}
}

func TestScanJarFiles(t *testing.T) {
	modsDir := t.TempDir()
	writeJar(t, modsDir, "alpha.jar")
	writeJar(t, modsDir, "BETA.JAR")
	if err := os.WriteFile(filepath.Join(modsDir, "readme.txt"), []byte("not a jar"), 0644); err != nil {
		t.Fatalf("failed to write file: %v", err)
	}

	nested := filepath.Join(modsDir, "nested")
	if err := os.Mkdir(nested, 0755); err != nil {
		t.Fatalf("failed to create nested dir: %v", err)
	}
	writeJar(t, nested, "gamma.jar")

	jars, err := ScanJarFiles(modsDir, testLogger())
	if err != nil {
		t.Fatalf("ScanJarFiles failed: %v", err)
	}

	if len(jars) != 3 {
		t.Errorf("expected 3 jars, got %d: %v", len(jars), jars)
	}
	if _, ok := jars["BETA.JAR"]; !ok {
		t.Error("case-insensitive suffix match should keep BETA.JAR")
	}
	if _, ok := jars["gamma.jar"]; !ok {
		t.Error("nested jars should be found")
	}
	if _, ok := jars["readme.txt"]; ok {
		t.Error("non-jar files must be ignored")
	}
}

func TestScanJarFilesMissingDir(t *testing.T) {
	if _, err := ScanJarFiles(filepath.Join(t.TempDir(), "nope"), testLogger()); err == nil {
		t.Error("expected error for missing directory")
	}
}
