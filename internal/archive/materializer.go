// Package archive stages selected zip entries to temporary files.
package archive

import (
	"archive/zip"
	"bytes"
	"fmt"
	"io"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/gobwas/glob"

	"ghdeploy/internal/models"
)

// Materializer extracts configured archive entries into private temp files
// and records where each one must be copied.
type Materializer struct {
	// ChunkSize bounds peak memory while streaming one entry.
	ChunkSize int
}

// NewMaterializer creates a materializer with the given streaming chunk size.
func NewMaterializer(chunkSize int) *Materializer {
	return &Materializer{ChunkSize: chunkSize}
}

// Materialize opens the downloaded zip payload, optionally persists the raw
// bytes, and stages every entry selected by the spec's copy_files and
// copy_patterns rules. Explicit rules are staged before pattern rules;
// within a pattern rule, matches follow archive enumeration order.
//
// On error, every temp file staged so far is removed before returning.
func (m *Materializer) Materialize(zipBytes []byte, spec models.DeploySpec) ([]models.StagedFile, error) {
	if spec.ZipLocation != "" {
		if err := os.WriteFile(spec.ZipLocation, zipBytes, 0644); err != nil {
			return nil, fmt.Errorf("saving raw archive: %w", err)
		}
	}

	zr, err := zip.NewReader(bytes.NewReader(zipBytes), int64(len(zipBytes)))
	if err != nil {
		return nil, fmt.Errorf("opening archive: %w", err)
	}

	var staged []models.StagedFile
	fail := func(err error) ([]models.StagedFile, error) {
		for _, sf := range staged {
			os.Remove(sf.TempPath)
		}
		return nil, err
	}

	for _, rule := range spec.CopyFiles {
		entry := findEntry(zr, rule.ArchivePath)
		if entry == nil {
			return fail(&models.EntryNotFoundError{Path: rule.ArchivePath})
		}

		tempPath, err := m.stage(entry)
		if err != nil {
			return fail(err)
		}
		staged = append(staged, models.StagedFile{TempPath: tempPath, TargetPath: rule.TargetPath})
	}

	for _, rule := range spec.CopyPatterns {
		// fnmatch semantics: the pattern matches the full archive-internal
		// path as a plain string, so "*" crosses path separators.
		matcher, err := glob.Compile(rule.Pattern)
		if err != nil {
			return fail(fmt.Errorf("compiling pattern %q: %w", rule.Pattern, err))
		}

		for _, entry := range zr.File {
			if entry.FileInfo().IsDir() {
				continue
			}
			if !matcher.Match(entry.Name) {
				continue
			}

			target, err := patternTarget(rule.TargetDir, entry.Name)
			if err != nil {
				return fail(err)
			}

			tempPath, err := m.stage(entry)
			if err != nil {
				return fail(err)
			}
			staged = append(staged, models.StagedFile{TempPath: tempPath, TargetPath: target})
		}
	}

	return staged, nil
}

// stage streams one archive entry into a new private temp file and returns
// its path.
func (m *Materializer) stage(entry *zip.File) (string, error) {
	src, err := entry.Open()
	if err != nil {
		return "", fmt.Errorf("opening archive entry %s: %w", entry.Name, err)
	}
	defer src.Close()

	tmp, err := os.CreateTemp("", "ghdeploy-*")
	if err != nil {
		return "", fmt.Errorf("creating staging file: %w", err)
	}

	buf := make([]byte, m.ChunkSize)
	if _, err := io.CopyBuffer(tmp, src, buf); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return "", fmt.Errorf("staging %s: %w", entry.Name, err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return "", fmt.Errorf("staging %s: %w", entry.Name, err)
	}

	return tmp.Name(), nil
}

func findEntry(zr *zip.Reader, name string) *zip.File {
	for _, f := range zr.File {
		if f.Name == name {
			return f
		}
	}
	return nil
}

// patternTarget builds targetDir/basename(entry) and rejects entries whose
// basename would resolve outside the target directory. Archive entry names
// are attacker-influenced when the archive source is not fully trusted.
func patternTarget(targetDir, entryName string) (string, error) {
	base := path.Base(entryName)
	if base == "." || base == ".." || base == "/" || strings.ContainsAny(base, `/\`) {
		return "", fmt.Errorf("archive entry %q has an unsafe basename", entryName)
	}

	target := filepath.Join(targetDir, base)
	if rel, err := filepath.Rel(targetDir, target); err != nil || rel != base {
		return "", fmt.Errorf("archive entry %q escapes target directory %s", entryName, targetDir)
	}

	return target, nil
}
