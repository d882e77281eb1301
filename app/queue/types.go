package queue

import (
	"path/filepath"
	"strings"
)

// Item is an image waiting in the queue directory.
type Item struct {
	Name        string // file name including extension
	Stem        string // file name without extension, the item identity
	Path        string
	ContentType string
	SidecarPath string // empty when the item has no sidecar

	// SharedSidecar is set when another queued image has the same stem and
	// therefore reads the same sidecar.
	SharedSidecar bool
}

var contentTypes = map[string]string{
	".jpg":  "image/jpeg",
	".jpeg": "image/jpeg",
	".png":  "image/png",
}

// Sidecar extensions in lookup order.
var sidecarExts = []string{".json", ".yaml", ".yml"}

// ContentTypeFor returns the MIME type for an eligible image name, or "" when
// the extension is not on the allow-list.
func ContentTypeFor(name string) string {
	return contentTypes[strings.ToLower(filepath.Ext(name))]
}

func IsEligible(name string) bool {
	return ContentTypeFor(name) != ""
}
