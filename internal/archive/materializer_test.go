package archive_test

import (
	"archive/zip"
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"ghdeploy/internal/archive"
	"ghdeploy/internal/models"
)

func buildZip(t *testing.T, entries map[string]string, order ...string) []byte {
	t.Helper()

	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	for _, name := range order {
		w, err := zw.Create(name)
		if err != nil {
			t.Fatalf("creating zip entry %s: %v", name, err)
		}
		if _, err := w.Write([]byte(entries[name])); err != nil {
			t.Fatalf("writing zip entry %s: %v", name, err)
		}
	}
	if err := zw.Close(); err != nil {
		t.Fatalf("closing zip: %v", err)
	}
	return buf.Bytes()
}

func readAndRemove(t *testing.T, path string) string {
	t.Helper()
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("reading staged file %s: %v", path, err)
	}
	os.Remove(path)
	return string(data)
}

func TestMaterializeExplicitFile(t *testing.T) {
	zipBytes := buildZip(t, map[string]string{"bin/app": "binary bytes"}, "bin/app")

	spec := models.DeploySpec{
		CopyFiles: []models.CopyFile{{ArchivePath: "bin/app", TargetPath: "/opt/app/app"}},
	}

	staged, err := archive.NewMaterializer(4).Materialize(zipBytes, spec)
	if err != nil {
		t.Fatalf("Materialize failed: %v", err)
	}

	if len(staged) != 1 {
		t.Fatalf("expected 1 staged file, got %d", len(staged))
	}
	if staged[0].TargetPath != "/opt/app/app" {
		t.Errorf("unexpected target: %s", staged[0].TargetPath)
	}
	if got := readAndRemove(t, staged[0].TempPath); got != "binary bytes" {
		t.Errorf("staged content mismatch: %q", got)
	}
}

func TestMaterializeEntryNotFound(t *testing.T) {
	zipBytes := buildZip(t, map[string]string{"bin/app": "x"}, "bin/app")

	spec := models.DeploySpec{
		CopyFiles: []models.CopyFile{{ArchivePath: "bin/missing", TargetPath: "/opt/app/missing"}},
	}

	_, err := archive.NewMaterializer(4096).Materialize(zipBytes, spec)

	var notFound *models.EntryNotFoundError
	if !errors.As(err, &notFound) {
		t.Fatalf("expected EntryNotFoundError, got %v", err)
	}
	if notFound.Path != "bin/missing" {
		t.Errorf("error should name the missing entry, got %q", notFound.Path)
	}
}

func TestMaterializePatternMatchesFullPath(t *testing.T) {
	entries := map[string]string{
		"lib/x.so":     "x",
		"lib/y.txt":    "y",
		"lib/sub/z.so": "z",
	}
	zipBytes := buildZip(t, entries, "lib/x.so", "lib/y.txt", "lib/sub/z.so")

	spec := models.DeploySpec{
		CopyPatterns: []models.CopyPattern{{Pattern: "*.so", TargetDir: "/opt/app/lib"}},
	}

	staged, err := archive.NewMaterializer(4096).Materialize(zipBytes, spec)
	if err != nil {
		t.Fatalf("Materialize failed: %v", err)
	}

	// fnmatch semantics: "*" crosses path separators, so the nested entry
	// matches too, in archive enumeration order.
	if len(staged) != 2 {
		t.Fatalf("expected 2 staged files, got %d: %+v", len(staged), staged)
	}
	if staged[0].TargetPath != "/opt/app/lib/x.so" {
		t.Errorf("unexpected first target: %s", staged[0].TargetPath)
	}
	if staged[1].TargetPath != "/opt/app/lib/z.so" {
		t.Errorf("unexpected second target: %s", staged[1].TargetPath)
	}
	for _, sf := range staged {
		os.Remove(sf.TempPath)
	}
}

func TestMaterializePatternFullPathPrefix(t *testing.T) {
	entries := map[string]string{
		"lib/x.so":     "x",
		"lib/sub/z.so": "z",
	}
	zipBytes := buildZip(t, entries, "lib/x.so", "lib/sub/z.so")

	spec := models.DeploySpec{
		CopyPatterns: []models.CopyPattern{{Pattern: "lib/*.so", TargetDir: "/opt/app/lib"}},
	}

	staged, err := archive.NewMaterializer(4096).Materialize(zipBytes, spec)
	if err != nil {
		t.Fatalf("Materialize failed: %v", err)
	}

	// A path-qualified pattern still matches both: "*" does not stop at
	// separators, exactly as the basename-style pattern does not.
	if len(staged) != 2 {
		t.Fatalf("expected 2 staged files, got %d: %+v", len(staged), staged)
	}
	for _, sf := range staged {
		os.Remove(sf.TempPath)
	}
}

func TestMaterializeOrdering(t *testing.T) {
	entries := map[string]string{
		"bin/app":   "app",
		"lib/a.so":  "a",
		"lib/b.so":  "b",
		"conf/c.nf": "c",
	}
	zipBytes := buildZip(t, entries, "bin/app", "lib/a.so", "lib/b.so", "conf/c.nf")

	spec := models.DeploySpec{
		CopyFiles: []models.CopyFile{{ArchivePath: "bin/app", TargetPath: "/opt/app/app"}},
		CopyPatterns: []models.CopyPattern{
			{Pattern: "*.nf", TargetDir: "/etc/app"},
			{Pattern: "*.so", TargetDir: "/opt/app/lib"},
		},
	}

	staged, err := archive.NewMaterializer(4096).Materialize(zipBytes, spec)
	if err != nil {
		t.Fatalf("Materialize failed: %v", err)
	}

	// Explicit mappings first, then pattern rules in list order, archive
	// order within a rule.
	want := []string{"/opt/app/app", "/etc/app/c.nf", "/opt/app/lib/a.so", "/opt/app/lib/b.so"}
	if len(staged) != len(want) {
		t.Fatalf("expected %d staged files, got %d", len(want), len(staged))
	}
	for i, sf := range staged {
		if sf.TargetPath != want[i] {
			t.Errorf("staged[%d]: expected target %s, got %s", i, want[i], sf.TargetPath)
		}
		os.Remove(sf.TempPath)
	}
}

func TestMaterializeSkipsDirectories(t *testing.T) {
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	if _, err := zw.Create("lib/"); err != nil {
		t.Fatalf("creating dir entry: %v", err)
	}
	w, err := zw.Create("lib/x.so")
	if err != nil {
		t.Fatalf("creating file entry: %v", err)
	}
	w.Write([]byte("x"))
	zw.Close()

	spec := models.DeploySpec{
		CopyPatterns: []models.CopyPattern{{Pattern: "lib*", TargetDir: "/opt/app/lib"}},
	}

	staged, err := archive.NewMaterializer(4096).Materialize(buf.Bytes(), spec)
	if err != nil {
		t.Fatalf("Materialize failed: %v", err)
	}
	if len(staged) != 1 || staged[0].TargetPath != "/opt/app/lib/x.so" {
		t.Fatalf("expected only the regular file staged, got %+v", staged)
	}
	os.Remove(staged[0].TempPath)
}

func TestMaterializeSavesRawArchive(t *testing.T) {
	zipBytes := buildZip(t, map[string]string{"bin/app": "x"}, "bin/app")
	zipLocation := filepath.Join(t.TempDir(), "artifact.zip")

	spec := models.DeploySpec{ZipLocation: zipLocation}

	if _, err := archive.NewMaterializer(4096).Materialize(zipBytes, spec); err != nil {
		t.Fatalf("Materialize failed: %v", err)
	}

	saved, err := os.ReadFile(zipLocation)
	if err != nil {
		t.Fatalf("raw archive not saved: %v", err)
	}
	if !bytes.Equal(saved, zipBytes) {
		t.Error("saved archive differs from downloaded bytes")
	}
}

func TestMaterializeRawArchiveWriteFailure(t *testing.T) {
	zipBytes := buildZip(t, map[string]string{"bin/app": "x"}, "bin/app")

	spec := models.DeploySpec{
		ZipLocation: filepath.Join(t.TempDir(), "no", "such", "dir", "artifact.zip"),
	}

	if _, err := archive.NewMaterializer(4096).Materialize(zipBytes, spec); err == nil {
		t.Fatal("expected fatal error when the raw archive cannot be written")
	}
}

func TestMaterializeCleansUpOnFailure(t *testing.T) {
	zipBytes := buildZip(t, map[string]string{"bin/app": "app bytes"}, "bin/app")

	spec := models.DeploySpec{
		CopyFiles: []models.CopyFile{
			{ArchivePath: "bin/app", TargetPath: "/opt/app/app"},
			{ArchivePath: "bin/missing", TargetPath: "/opt/app/missing"},
		},
	}

	// Isolated temp dir so the leak check sees only this test's files.
	t.Setenv("TMPDIR", t.TempDir())

	if _, err := archive.NewMaterializer(4096).Materialize(zipBytes, spec); err == nil {
		t.Fatal("expected failure for the missing entry")
	}

	if leaked := listTempFiles(t); len(leaked) > 0 {
		t.Errorf("staged temp files leaked after failed materialize: %v", leaked)
	}
}

func TestMaterializeRejectsUnsafeBasename(t *testing.T) {
	// A crafted archive can carry an entry whose basename is "..";
	// joining it under the target directory must be refused.
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	w, err := zw.Create("lib/..")
	if err != nil {
		t.Skipf("zip writer refuses crafted entry: %v", err)
	}
	w.Write([]byte("evil"))
	zw.Close()

	spec := models.DeploySpec{
		CopyPatterns: []models.CopyPattern{{Pattern: "lib*", TargetDir: "/opt/app/lib"}},
	}

	if _, err := archive.NewMaterializer(4096).Materialize(buf.Bytes(), spec); err == nil {
		t.Fatal("expected traversal rejection")
	}
}

func listTempFiles(t *testing.T) []string {
	t.Helper()
	matches, err := filepath.Glob(filepath.Join(os.TempDir(), "ghdeploy-*"))
	if err != nil {
		t.Fatalf("globbing temp dir: %v", err)
	}
	return matches
}
