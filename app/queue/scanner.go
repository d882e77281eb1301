package queue

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// Scan lists eligible images in dir ordered by file name. A missing directory
// is created and yields an empty queue.
func Scan(dir string) ([]Item, error) {
	entries, err := os.ReadDir(dir)
	if errors.Is(err, fs.ErrNotExist) {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("failed to create queue directory: %w", err)
		}
		slog.Info("Queue directory created", "dir", dir)
		return []Item{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read queue directory: %w", err)
	}

	names := make(map[string]bool, len(entries))
	for _, entry := range entries {
		if !entry.IsDir() {
			names[entry.Name()] = true
		}
	}

	items := make([]Item, 0, len(entries))
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}

		name := entry.Name()
		contentType := ContentTypeFor(name)
		if contentType == "" {
			continue
		}

		stem := strings.TrimSuffix(name, filepath.Ext(name))
		item := Item{
			Name:        name,
			Stem:        stem,
			Path:        filepath.Join(dir, name),
			ContentType: contentType,
		}
		if sidecar := findSidecar(names, stem); sidecar != "" {
			item.SidecarPath = filepath.Join(dir, sidecar)
		}

		items = append(items, item)
	}

	stems := make(map[string]int, len(items))
	for _, item := range items {
		stems[item.Stem]++
	}
	for i := range items {
		items[i].SharedSidecar = items[i].SidecarPath != "" && stems[items[i].Stem] > 1
	}

	sort.Slice(items, func(i, j int) bool {
		return items[i].Name < items[j].Name
	})

	slog.Debug("Queue scanned", "dir", dir, "items", len(items))

	return items, nil
}

func findSidecar(names map[string]bool, stem string) string {
	for _, ext := range sidecarExts {
		if names[stem+ext] {
			return stem + ext
		}
	}
	return ""
}

// Count returns the number of eligible images in dir. Unlike Scan it never
// creates the directory; a missing one counts as empty.
func Count(dir string) (int, error) {
	entries, err := os.ReadDir(dir)
	if errors.Is(err, fs.ErrNotExist) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("failed to read queue directory: %w", err)
	}

	count := 0
	for _, entry := range entries {
		if !entry.IsDir() && IsEligible(entry.Name()) {
			count++
		}
	}
	return count, nil
}
