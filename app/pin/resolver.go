package pin

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"gopkg.in/yaml.v3"

	"github.com/lysyi3m/pin-drip/app/queue"
)

// Metadata is what a pin is published with.
type Metadata struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	Link        string `json:"link"`
}

// sidecar holds the overrides read from the optional per-image file.
type sidecar struct {
	Title       string
	Description string
	Link        string
}

type Resolver struct {
	TitlePrefix string
}

func NewResolver(titlePrefix string) *Resolver {
	return &Resolver{TitlePrefix: titlePrefix}
}

// Resolve computes the defaults for item and applies any sidecar overrides.
// A broken sidecar is logged and ignored.
func (r *Resolver) Resolve(item queue.Item, defaultLink string) Metadata {
	title := r.DefaultTitle(item.Stem)
	meta := Metadata{
		Title:       title,
		Description: DefaultDescription(title, defaultLink),
		Link:        defaultLink,
	}

	if item.SidecarPath == "" {
		return meta
	}

	override, err := readSidecar(item.SidecarPath)
	if err != nil {
		slog.Warn("Ignoring sidecar", "item", item.Name, "sidecar", item.SidecarPath, "error", err)
		return meta
	}

	if override.Title != "" {
		meta.Title = override.Title
	}
	if override.Description != "" {
		meta.Description = override.Description
	}
	if override.Link != "" {
		meta.Link = override.Link
	}

	return meta
}

func (r *Resolver) DefaultTitle(stem string) string {
	clean := strings.NewReplacer("-", " ", "_", " ").Replace(stem)
	return r.TitlePrefix + cases.Title(language.Und).String(clean)
}

func DefaultDescription(title, link string) string {
	return fmt.Sprintf("%s. Get your daily numerology reading at %s. #numerology #affirmations", title, link)
}

func readSidecar(path string) (*sidecar, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read file: %w", err)
	}

	var doc map[string]any
	if strings.EqualFold(filepath.Ext(path), ".json") {
		err = json.Unmarshal(data, &doc)
	} else {
		err = yaml.Unmarshal(data, &doc)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to parse sidecar: %w", err)
	}
	if doc == nil {
		return nil, fmt.Errorf("sidecar is not an object")
	}

	return &sidecar{
		Title:       stringField(doc, "title"),
		Description: stringField(doc, "description"),
		Link:        stringField(doc, "link"),
	}, nil
}

// stringField tolerates scalars of other types (a numeric title stays usable).
func stringField(doc map[string]any, key string) string {
	v, ok := doc[key]
	if !ok || v == nil {
		return ""
	}
	switch val := v.(type) {
	case string:
		return strings.TrimSpace(val)
	case map[string]any, []any:
		return ""
	default:
		return fmt.Sprint(val)
	}
}
