// Package attach validates, stores and deletes the photo and file attachments
// of database records.
//
// Accepted uploads are written to <root>/<table>/<random-hex>.<ext>, where
// <table> is the owning record's table name. The returned path is what the
// record stores; it is also the path Delete and Replace expect back.
package attach

import (
	"encoding/hex"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/gabriel-vasile/mimetype"
	"github.com/google/uuid"

	"github.com/celerix-dev/celerix-attach/internal/tasks"
)

// Table is anything that lives in a named database table.
type Table interface {
	TableName() string
}

// Record is a database row that owns attachments.
type Record interface {
	Table
	// AttachmentPath returns the stored path of field, or "" when unset.
	AttachmentPath(field string) string
}

// Scheduler accepts work to run after the current request completes.
// *tasks.Queue satisfies it.
type Scheduler interface {
	Add(name string, fn tasks.Task)
}

// Options configures an Attacher.
type Options struct {
	Root         string
	MaxSize      int64
	PhotoFormats []string
	FileFormats  []string
}

// Attacher enforces the upload policy and owns the attachment root.
type Attacher struct {
	root    string
	maxSize int64

	photoFormats []string
	fileFormats  []string
	photos       map[string]struct{}
	files        map[string]struct{}
}

// New returns an Attacher for opts.
func New(opts Options) *Attacher {
	a := &Attacher{
		root:         filepath.Clean(opts.Root),
		maxSize:      opts.MaxSize,
		photoFormats: opts.PhotoFormats,
		fileFormats:  opts.FileFormats,
		photos:       make(map[string]struct{}),
		files:        make(map[string]struct{}),
	}
	for _, f := range opts.PhotoFormats {
		a.photos[mediaType(f)] = struct{}{}
	}
	for _, f := range opts.FileFormats {
		a.files[mediaType(f)] = struct{}{}
	}
	return a
}

// Root returns the directory attachments are stored under.
func (a *Attacher) Root() string {
	return a.root
}

// Validate checks up against the allow-list for kind and the size limit.
// Photos are type-checked first; files are size-checked first.
func (a *Attacher) Validate(up *Upload, kind Kind) error {
	ct := mediaType(up.ContentType)
	if kind == KindPhoto {
		if _, ok := a.photos[ct]; !ok {
			return invalidType(kind, up.ContentType, a.photoFormats)
		}
	}
	if up.Size > a.maxSize {
		return oversize(a.maxSize)
	}
	if kind == KindFile {
		if _, ok := a.files[ct]; !ok {
			return invalidType(kind, up.ContentType, a.fileFormats)
		}
	}
	return nil
}

// Save validates up and writes it under the directory of t's table. It
// returns the stored path.
func (a *Attacher) Save(up *Upload, t Table, kind Kind) (string, error) {
	if err := a.Validate(up, kind); err != nil {
		return "", err
	}

	dir := filepath.Join(a.root, TableDir(t.TableName()))
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", err
	}

	path := filepath.Join(dir, FileName(up))

	src, err := up.Open()
	if err != nil {
		return "", fmt.Errorf("open upload %q: %w", up.Filename, err)
	}
	defer src.Close()

	if err := writeFile(path, src, a.maxSize); err != nil {
		return "", err
	}
	return path, nil
}

// Replace stores up as the new value of rec's field and schedules deletion
// of the previous file, if any. The old file is only scheduled for deletion
// once the new one has been written.
func (a *Attacher) Replace(up *Upload, rec Record, field string, s Scheduler, kind Kind) (string, error) {
	path, err := a.Save(up, rec, kind)
	if err != nil {
		return "", err
	}

	if old := rec.AttachmentPath(field); old != "" && old != path {
		s.Add("delete "+old, func() error {
			_, err := a.Delete(old)
			return err
		})
	}
	return path, nil
}

// Delete removes the file at path if it exists and reports whether it did.
// A missing file is not an error wherever it would have lived; an existing
// file outside the root is refused with ErrOutsideRoot.
func (a *Attacher) Delete(path string) (bool, error) {
	if path == "" {
		return false, nil
	}
	target, err := filepath.Abs(path)
	if err != nil {
		return false, err
	}

	if _, err := os.Lstat(target); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return false, nil
		}
		return false, err
	}

	if !a.contains(target) {
		return false, fmt.Errorf("delete %q: %w", path, ErrOutsideRoot)
	}

	if err := os.Remove(target); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

// contains reports whether the absolute path target sits strictly below the
// root.
func (a *Attacher) contains(target string) bool {
	root, err := filepath.Abs(a.root)
	if err != nil {
		return false
	}
	return strings.HasPrefix(target, root+string(os.PathSeparator))
}

// TableDir returns the directory name used for a table's attachments.
func TableDir(table string) string {
	return strings.ReplaceAll(strings.ToLower(table), " ", "_")
}

// FileName returns a fresh random name for up that keeps its extension.
func FileName(up *Upload) string {
	id := uuid.New()
	return hex.EncodeToString(id[:]) + "." + extension(up)
}

// extension returns the extension of the client filename. Filenames without
// a usable one fall back to the extension registered for the declared
// content type, then to "bin".
func extension(up *Upload) string {
	if ext := strings.TrimPrefix(filepath.Ext(filepath.Base(up.Filename)), "."); isPlainExt(ext) {
		return ext
	}
	if m := mimetype.Lookup(mediaType(up.ContentType)); m != nil {
		if ext := strings.TrimPrefix(m.Extension(), "."); isPlainExt(ext) {
			return ext
		}
	}
	return "bin"
}

func isPlainExt(ext string) bool {
	if ext == "" || len(ext) > 16 {
		return false
	}
	for _, r := range ext {
		if !(r >= 'a' && r <= 'z' || r >= 'A' && r <= 'Z' || r >= '0' && r <= '9') {
			return false
		}
	}
	return true
}
