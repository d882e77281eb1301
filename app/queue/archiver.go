package queue

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"syscall"
	"time"
)

const dateLayout = "2006-01-02"

// Archiver relocates published items into <Root>/<publish date>/.
type Archiver struct {
	Root string
}

func NewArchiver(root string) *Archiver {
	return &Archiver{Root: root}
}

// DayDir returns the archive directory for the given publish time.
func (a *Archiver) DayDir(at time.Time) string {
	return filepath.Join(a.Root, at.Format(dateLayout))
}

// Archive moves the item image into the dated directory and returns its new
// path. The source is only removed once the destination is fully written; on
// error the item stays in the queue. The sidecar follows the image on a best
// effort basis; a shared sidecar is copied and stays queued for the other
// images that read it.
func (a *Archiver) Archive(item Item, at time.Time) (string, error) {
	dir := a.DayDir(at)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("failed to create archive directory: %w", err)
	}

	dst, err := freePath(dir, item.Name)
	if err != nil {
		return "", err
	}

	if err := moveFile(item.Path, dst); err != nil {
		return "", fmt.Errorf("failed to move %s: %w", item.Name, err)
	}

	if item.SidecarPath != "" {
		sidecarDst, err := freePath(dir, filepath.Base(item.SidecarPath))
		if err == nil {
			if item.SharedSidecar {
				err = copyVerified(item.SidecarPath, sidecarDst)
			} else {
				err = moveFile(item.SidecarPath, sidecarDst)
			}
		}
		if err != nil {
			slog.Warn("Failed to archive sidecar", "item", item.Name, "sidecar", item.SidecarPath, "error", err)
		}
	}

	slog.Debug("Item archived", "item", item.Name, "path", dst)

	return dst, nil
}

// freePath returns dir/name, or dir/<stem>-N<ext> when that name is taken.
func freePath(dir, name string) (string, error) {
	ext := filepath.Ext(name)
	stem := strings.TrimSuffix(name, ext)

	candidate := filepath.Join(dir, name)
	for counter := 1; ; counter++ {
		_, err := os.Lstat(candidate)
		if errors.Is(err, os.ErrNotExist) {
			return candidate, nil
		}
		if err != nil {
			return "", fmt.Errorf("failed to check archive path: %w", err)
		}
		candidate = filepath.Join(dir, stem+"-"+strconv.Itoa(counter)+ext)
	}
}

func moveFile(src, dst string) error {
	err := os.Rename(src, dst)
	if err == nil {
		return nil
	}

	var linkErr *os.LinkError
	if !errors.As(err, &linkErr) || !errors.Is(linkErr.Err, syscall.EXDEV) {
		return err
	}

	// Different filesystems: copy, verify, then drop the source.
	if err := copyVerified(src, dst); err != nil {
		return err
	}
	return os.Remove(src)
}

func copyVerified(src, dst string) error {
	srcInfo, err := os.Stat(src)
	if err != nil {
		return fmt.Errorf("stat source: %w", err)
	}

	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := os.OpenFile(dst, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0o644)
	if err != nil {
		return err
	}

	written, err := io.Copy(out, in)
	if err == nil {
		err = out.Sync()
	}
	if closeErr := out.Close(); err == nil {
		err = closeErr
	}
	if err == nil && written != srcInfo.Size() {
		err = fmt.Errorf("copy size mismatch: source %d bytes, copied %d bytes", srcInfo.Size(), written)
	}
	if err != nil {
		_ = os.Remove(dst)
		return err
	}

	return nil
}
