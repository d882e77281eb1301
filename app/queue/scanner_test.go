package queue

import (
	"os"
	"path/filepath"
	"testing"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
}

func TestScanMissingDirectory(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "inputs")

	items, err := Scan(dir)
	if err != nil {
		t.Fatal(err)
	}
	if len(items) != 0 {
		t.Errorf("Expected empty queue, got %d items", len(items))
	}

	info, err := os.Stat(dir)
	if err != nil {
		t.Fatalf("Expected queue directory to be created: %v", err)
	}
	if !info.IsDir() {
		t.Error("Expected queue path to be a directory")
	}
}

func TestScanFiltersAndOrders(t *testing.T) {
	dir := t.TempDir()

	for _, name := range []string{"c.png", "a.JPG", "b.jpeg", "notes.txt", "b.json", "d.gif"} {
		writeFile(t, filepath.Join(dir, name), "x")
	}
	if err := os.Mkdir(filepath.Join(dir, "nested.png"), 0o755); err != nil {
		t.Fatal(err)
	}

	items, err := Scan(dir)
	if err != nil {
		t.Fatal(err)
	}

	want := []string{"a.JPG", "b.jpeg", "c.png"}
	if len(items) != len(want) {
		t.Fatalf("Expected %d items, got %d", len(want), len(items))
	}
	for i, name := range want {
		if items[i].Name != name {
			t.Errorf("Expected item %d to be '%s', got '%s'", i, name, items[i].Name)
		}
	}

	if items[0].ContentType != "image/jpeg" {
		t.Errorf("Expected image/jpeg for upper-case JPG, got '%s'", items[0].ContentType)
	}
	if items[2].ContentType != "image/png" {
		t.Errorf("Expected image/png, got '%s'", items[2].ContentType)
	}
	if items[1].Stem != "b" {
		t.Errorf("Expected stem 'b', got '%s'", items[1].Stem)
	}
	if items[1].SidecarPath != filepath.Join(dir, "b.json") {
		t.Errorf("Expected sidecar for 'b.jpeg', got '%s'", items[1].SidecarPath)
	}
	if items[0].SidecarPath != "" {
		t.Errorf("Expected no sidecar for 'a.JPG', got '%s'", items[0].SidecarPath)
	}
}

func TestScanIsDeterministic(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"z.png", "m.png", "a.png"} {
		writeFile(t, filepath.Join(dir, name), "x")
	}

	first, err := Scan(dir)
	if err != nil {
		t.Fatal(err)
	}
	second, err := Scan(dir)
	if err != nil {
		t.Fatal(err)
	}

	for i := range first {
		if first[i].Name != second[i].Name {
			t.Errorf("Scan order differs at %d: '%s' vs '%s'", i, first[i].Name, second[i].Name)
		}
	}
}

func TestScanPrefersJSONSidecar(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "pin.png"), "x")
	writeFile(t, filepath.Join(dir, "pin.yaml"), "title: yaml")
	writeFile(t, filepath.Join(dir, "pin.json"), `{"title": "json"}`)

	items, err := Scan(dir)
	if err != nil {
		t.Fatal(err)
	}
	if len(items) != 1 {
		t.Fatalf("Expected 1 item, got %d", len(items))
	}
	if filepath.Base(items[0].SidecarPath) != "pin.json" {
		t.Errorf("Expected pin.json sidecar, got '%s'", items[0].SidecarPath)
	}
}

func TestScanMarksSharedSidecar(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "photo.jpg"), "x")
	writeFile(t, filepath.Join(dir, "photo.png"), "x")
	writeFile(t, filepath.Join(dir, "photo.json"), `{"title": "Custom"}`)
	writeFile(t, filepath.Join(dir, "solo.png"), "x")
	writeFile(t, filepath.Join(dir, "solo.json"), `{"title": "Solo"}`)
	writeFile(t, filepath.Join(dir, "bare.jpg"), "x")
	writeFile(t, filepath.Join(dir, "bare.png"), "x")

	items, err := Scan(dir)
	if err != nil {
		t.Fatal(err)
	}

	want := map[string]bool{
		"bare.jpg":  false,
		"bare.png":  false,
		"photo.jpg": true,
		"photo.png": true,
		"solo.png":  false,
	}
	if len(items) != len(want) {
		t.Fatalf("Expected %d items, got %d", len(want), len(items))
	}
	for _, item := range items {
		if item.SharedSidecar != want[item.Name] {
			t.Errorf("Expected SharedSidecar=%v for '%s'", want[item.Name], item.Name)
		}
	}
}

func TestCountDoesNotCreateDirectory(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "missing")

	count, err := Count(dir)
	if err != nil {
		t.Fatal(err)
	}
	if count != 0 {
		t.Errorf("Expected 0, got %d", count)
	}
	if _, err := os.Stat(dir); !os.IsNotExist(err) {
		t.Error("Expected queue directory not to be created")
	}
}

func TestCountEligibleImages(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "a.png"), "x")
	writeFile(t, filepath.Join(dir, "b.JPG"), "x")
	writeFile(t, filepath.Join(dir, "b.json"), "{}")
	writeFile(t, filepath.Join(dir, "notes.txt"), "x")
	if err := os.Mkdir(filepath.Join(dir, "nested.png"), 0o755); err != nil {
		t.Fatal(err)
	}

	count, err := Count(dir)
	if err != nil {
		t.Fatal(err)
	}
	if count != 2 {
		t.Errorf("Expected 2 eligible images, got %d", count)
	}
}
