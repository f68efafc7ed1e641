// Package blob stores uploaded files in local-filesystem buckets and derives
// their public URLs.
package blob

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path"
	"path/filepath"
	"strconv"
	"strings"
	"time"
)

// Bucket names used by the dashboard.
const (
	BucketDocuments = "documents"
	BucketBriefs    = "briefs"
)

// ErrInvalidName is returned for an empty or unusable file or bucket name.
var ErrInvalidName = errors.New("invalid object name")

// Object describes a stored file.
type Object struct {
	Bucket string `json:"bucket"`
	// Path is relative to the bucket, e.g. "documents/1700000000000_brief.pdf".
	Path string `json:"path"`
	URL  string `json:"url"`
	Size int64  `json:"size"`
}

// Store is a set of buckets rooted at one directory.
type Store struct {
	root       string
	publicBase string
	now        func() time.Time
}

// New returns a Store writing under root and publishing under publicBase
// (for example "/files" or "https://cdn.example.com/files").
func New(root, publicBase string) *Store {
	return &Store{root: root, publicBase: strings.TrimRight(publicBase, "/"), now: time.Now}
}

// Key builds the object path <prefix>/<unixmillis>_<name>. Only the base name
// of name is kept.
func Key(prefix, name string, at time.Time) (string, error) {
	base := filepath.Base(strings.ReplaceAll(name, "\\", "/"))
	if base == "." || base == "/" || base == ".." || strings.TrimSpace(base) == "" {
		return "", ErrInvalidName
	}
	file := strconv.FormatInt(at.UnixMilli(), 10) + "_" + base
	if prefix == "" {
		return file, nil
	}
	return path.Join(prefix, file), nil
}

// Upload writes r into bucket under <prefix>/<unixmillis>_<name>.
func (s *Store) Upload(ctx context.Context, bucket, prefix, name string, r io.Reader) (Object, error) {
	if !validSegment(bucket) {
		return Object{}, ErrInvalidName
	}
	key, err := Key(prefix, name, s.now())
	if err != nil {
		return Object{}, err
	}
	if err := ctx.Err(); err != nil {
		return Object{}, err
	}
	full := filepath.Join(s.root, bucket, filepath.FromSlash(key))
	if err := os.MkdirAll(filepath.Dir(full), 0o755); err != nil {
		return Object{}, fmt.Errorf("create bucket dir: %w", err)
	}
	// O_EXCL keeps two uploads landing on the same millisecond from clobbering each other.
	f, err := os.OpenFile(full, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		return Object{}, fmt.Errorf("create object: %w", err)
	}
	n, err := io.Copy(f, r)
	if cerr := f.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		_ = os.Remove(full)
		return Object{}, fmt.Errorf("write object: %w", err)
	}
	return Object{Bucket: bucket, Path: key, URL: s.PublicURL(bucket, key), Size: n}, nil
}

// PublicURL derives <public base>/<bucket>/<path>.
func (s *Store) PublicURL(bucket, p string) string {
	return s.publicBase + "/" + bucket + "/" + strings.TrimLeft(p, "/")
}

// Handler serves the buckets read only. Mount it with http.StripPrefix.
func (s *Store) Handler() http.Handler {
	fs := http.FileServer(http.Dir(s.root))
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet && r.Method != http.MethodHead {
			w.Header().Set("Allow", "GET, HEAD")
			http.Error(w, http.StatusText(http.StatusMethodNotAllowed), http.StatusMethodNotAllowed)
			return
		}
		if strings.HasSuffix(r.URL.Path, "/") {
			http.NotFound(w, r)
			return
		}
		fs.ServeHTTP(w, r)
	})
}

func validSegment(s string) bool {
	return s != "" && s != "." && s != ".." && !strings.ContainsAny(s, `/\`)
}
