package gputex

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path"
	"strings"
)

// Source opens named byte streams. Implementations report a missing stream
// with an error wrapping ErrSourceNotFound. Each Open returns an independent
// stream owned by the caller.
type Source interface {
	Open(name string) (io.ReadCloser, error)
}

// SourceFunc adapts a function to Source.
type SourceFunc func(name string) (io.ReadCloser, error)

// Open calls f(name).
func (f SourceFunc) Open(name string) (io.ReadCloser, error) {
	return f(name)
}

// FSSource serves streams from an fs.FS.
type FSSource struct {
	FS fs.FS
}

// DirSource returns a Source rooted at dir on the local filesystem.
func DirSource(dir string) *FSSource {
	return &FSSource{FS: os.DirFS(dir)}
}

// Open implements Source. Names use forward slashes; a leading slash is ignored.
func (s *FSSource) Open(name string) (io.ReadCloser, error) {
	clean := path.Clean(strings.TrimPrefix(name, "/"))
	f, err := s.FS.Open(clean)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) || errors.Is(err, fs.ErrInvalid) {
			return nil, fmt.Errorf("%w: %q", ErrSourceNotFound, name)
		}
		return nil, err
	}

	if st, err := f.Stat(); err == nil && st.IsDir() {
		_ = f.Close()
		return nil, fmt.Errorf("%w: %q is a directory", ErrSourceNotFound, name)
	}

	return f, nil
}
