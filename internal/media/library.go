package media

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"mime"
	"net/http"
	"os"
	"path/filepath"
	"strings"
)

// ErrOutsideRoot rejects asset names that escape the library directory.
var ErrOutsideRoot = errors.New("asset path escapes library root")

// Library serves assets from a single root directory. Asset names are
// slash-separated paths relative to the root; anything resolving outside the
// root is refused.
type Library struct {
	root   string
	logger *slog.Logger
}

func NewLibrary(root string, logger *slog.Logger) *Library {
	return &Library{root: root, logger: logger}
}

// Resolve maps an asset name to an absolute path inside the root.
func (l *Library) Resolve(name string) (string, error) {
	cleaned := filepath.Clean("/" + name)
	path := filepath.Join(l.root, cleaned)

	rel, err := filepath.Rel(l.root, path)
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return "", ErrOutsideRoot
	}
	return path, nil
}

// ServeAsset streams the named asset, honoring a Range request header with a
// 206 partial response.
func (l *Library) ServeAsset(w http.ResponseWriter, r *http.Request, name string) error {
	path, err := l.Resolve(name)
	if err != nil {
		http.Error(w, "invalid asset path", http.StatusBadRequest)
		return nil
	}

	file, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			http.Error(w, "asset not found", http.StatusNotFound)
			return nil
		}
		return fmt.Errorf("open asset: %w", err)
	}
	defer file.Close()

	stat, err := file.Stat()
	if err != nil {
		return fmt.Errorf("stat asset: %w", err)
	}
	if stat.IsDir() {
		http.Error(w, "asset not found", http.StatusNotFound)
		return nil
	}

	size := stat.Size()
	contentType := mime.TypeByExtension(filepath.Ext(path))
	if contentType == "" {
		contentType = "application/octet-stream"
	}

	w.Header().Set("Accept-Ranges", "bytes")
	w.Header().Set("Content-Type", contentType)

	br, err := ParseRange(r.Header.Get("Range"), size)
	if err == ErrUnsatisfiable {
		w.Header().Set("Content-Range", fmt.Sprintf("bytes */%d", size))
		http.Error(w, "Range Not Satisfiable", http.StatusRequestedRangeNotSatisfiable)
		return nil
	}
	if err == ErrInvalidRange {
		// Malformed Range headers fall back to a full response.
		br = nil
	} else if err != nil {
		return err
	}

	if br == nil {
		w.Header().Set("Content-Length", fmt.Sprintf("%d", size))
		w.WriteHeader(http.StatusOK)
		io.Copy(w, file)
		return nil
	}

	w.Header().Set("Content-Length", fmt.Sprintf("%d", br.Length()))
	w.Header().Set("Content-Range", br.ContentRange(size))
	w.WriteHeader(http.StatusPartialContent)

	if _, err := file.Seek(br.Start, io.SeekStart); err != nil {
		return fmt.Errorf("seek asset: %w", err)
	}
	io.CopyN(w, file, br.Length())
	return nil
}
