package attach

import (
	"io"
	"os"
	"path/filepath"
)

// writeFile copies r into path through a temp file in the same directory,
// then renames it into place. Copying stops one byte past limit; a payload
// that long is rejected with 413 and nothing is left on disk.
func writeFile(path string, r io.Reader, limit int64) (err error) {
	f, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+".tmp-*")
	if err != nil {
		return err
	}
	tmp := f.Name()

	closed := false
	defer func() {
		if !closed {
			f.Close()
		}
		if err != nil {
			os.Remove(tmp)
		}
	}()

	n, err := io.Copy(f, io.LimitReader(r, limit+1))
	if err != nil {
		return err
	}
	if n > limit {
		return oversize(limit)
	}

	if err = f.Chmod(0644); err != nil {
		return err
	}
	closed = true
	if err = f.Close(); err != nil {
		return err
	}

	// Rename is atomic on the same filesystem: readers see no file or the whole file.
	return os.Rename(tmp, path)
}
