package pin

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/lysyi3m/pin-drip/app/queue"
)

const testLink = "https://example.com"

func itemWithSidecar(t *testing.T, name, sidecarName, sidecarContent string) queue.Item {
	t.Helper()
	dir := t.TempDir()

	if err := os.WriteFile(filepath.Join(dir, name), []byte("image"), 0o644); err != nil {
		t.Fatal(err)
	}
	if sidecarName != "" {
		if err := os.WriteFile(filepath.Join(dir, sidecarName), []byte(sidecarContent), 0o644); err != nil {
			t.Fatal(err)
		}
	}

	items, err := queue.Scan(dir)
	if err != nil {
		t.Fatal(err)
	}
	if len(items) != 1 {
		t.Fatalf("Expected 1 item, got %d", len(items))
	}
	return items[0]
}

func TestResolveDefaults(t *testing.T) {
	item := itemWithSidecar(t, "lucky-number_seven.png", "", "")

	meta := NewResolver("").Resolve(item, testLink)

	if meta.Title != "Lucky Number Seven" {
		t.Errorf("Expected title 'Lucky Number Seven', got '%s'", meta.Title)
	}
	wantDescription := "Lucky Number Seven. Get your daily numerology reading at https://example.com. #numerology #affirmations"
	if meta.Description != wantDescription {
		t.Errorf("Expected description '%s', got '%s'", wantDescription, meta.Description)
	}
	if meta.Link != testLink {
		t.Errorf("Expected link '%s', got '%s'", testLink, meta.Link)
	}
}

func TestResolveTitlePrefix(t *testing.T) {
	item := itemWithSidecar(t, "angel_NUMBERS.jpg", "", "")

	meta := NewResolver("Daily: ").Resolve(item, testLink)

	if meta.Title != "Daily: Angel Numbers" {
		t.Errorf("Expected title 'Daily: Angel Numbers', got '%s'", meta.Title)
	}
}

func TestResolveSidecarTitleOnly(t *testing.T) {
	item := itemWithSidecar(t, "pin.png", "pin.json", `{"title": "Custom Title"}`)

	meta := NewResolver("").Resolve(item, testLink)

	if meta.Title != "Custom Title" {
		t.Errorf("Expected title 'Custom Title', got '%s'", meta.Title)
	}
	if meta.Description != DefaultDescription("Pin", testLink) {
		t.Errorf("Expected default description, got '%s'", meta.Description)
	}
	if meta.Link != testLink {
		t.Errorf("Expected default link, got '%s'", meta.Link)
	}
}

func TestResolveSidecarAllFields(t *testing.T) {
	content := `{"title": "T", "description": "D", "link": "https://other.example.com/page"}`
	item := itemWithSidecar(t, "pin.png", "pin.json", content)

	meta := NewResolver("Prefix ").Resolve(item, testLink)

	if meta.Title != "T" || meta.Description != "D" || meta.Link != "https://other.example.com/page" {
		t.Errorf("Expected all fields overridden, got %+v", meta)
	}
}

func TestResolveJSONSidecarEscapedSlashes(t *testing.T) {
	content := `{"title": "Custom", "link": "https:\/\/x.example\/p"}`
	item := itemWithSidecar(t, "pin.png", "pin.json", content)

	meta := NewResolver("").Resolve(item, testLink)

	if meta.Title != "Custom" {
		t.Errorf("Expected title 'Custom', got '%s'", meta.Title)
	}
	if meta.Link != "https://x.example/p" {
		t.Errorf("Expected link 'https://x.example/p', got '%s'", meta.Link)
	}
}

func TestResolveJSONSidecarDuplicateKeyLastWins(t *testing.T) {
	item := itemWithSidecar(t, "pin.png", "pin.json", `{"title": "Old", "title": "New"}`)

	meta := NewResolver("").Resolve(item, testLink)

	if meta.Title != "New" {
		t.Errorf("Expected title 'New', got '%s'", meta.Title)
	}
}

func TestResolveYAMLSidecar(t *testing.T) {
	item := itemWithSidecar(t, "pin.png", "pin.yml", "description: From YAML\n")

	meta := NewResolver("").Resolve(item, testLink)

	if meta.Description != "From YAML" {
		t.Errorf("Expected description 'From YAML', got '%s'", meta.Description)
	}
	if meta.Title != "Pin" {
		t.Errorf("Expected default title 'Pin', got '%s'", meta.Title)
	}
}

func TestResolveEmptySidecarFieldsFallBack(t *testing.T) {
	item := itemWithSidecar(t, "pin.png", "pin.json", `{"title": "", "link": null}`)

	meta := NewResolver("").Resolve(item, testLink)

	if meta.Title != "Pin" {
		t.Errorf("Expected default title, got '%s'", meta.Title)
	}
	if meta.Link != testLink {
		t.Errorf("Expected default link, got '%s'", meta.Link)
	}
}

func TestResolveMalformedSidecar(t *testing.T) {
	cases := map[string]string{
		"broken json": `{"title": `,
		"array":       `["a", "b"]`,
		"scalar":      `just a string`,
		"empty":       ``,
	}

	for name, content := range cases {
		t.Run(name, func(t *testing.T) {
			item := itemWithSidecar(t, "pin.png", "pin.json", content)

			meta := NewResolver("").Resolve(item, testLink)

			want := Metadata{
				Title:       "Pin",
				Description: DefaultDescription("Pin", testLink),
				Link:        testLink,
			}
			if meta != want {
				t.Errorf("Expected defaults %+v, got %+v", want, meta)
			}
		})
	}
}

func TestResolveUnreadableSidecar(t *testing.T) {
	item := itemWithSidecar(t, "pin.png", "pin.json", `{"title": "x"}`)
	if err := os.Remove(item.SidecarPath); err != nil {
		t.Fatal(err)
	}

	meta := NewResolver("").Resolve(item, testLink)

	if meta.Title != "Pin" {
		t.Errorf("Expected default title, got '%s'", meta.Title)
	}
}
