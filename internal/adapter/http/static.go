package http

import (
	"errors"
	"io/fs"
	"net/http"
	"path"
)

// staticFS serves engine output read-only. Directories resolve to their
// index.html, bare names fall back to name.html, and directories without an
// index are reported as missing so nothing is ever listed.
type staticFS struct {
	root http.FileSystem
}

func newStaticFS(dir string) http.FileSystem {
	return staticFS{root: http.Dir(dir)}
}

func (s staticFS) Open(name string) (http.File, error) {
	f, err := s.root.Open(name)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) && path.Ext(name) == "" && name != "/" {
			return s.root.Open(name + ".html")
		}
		return nil, err
	}

	info, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, err
	}
	if !info.IsDir() {
		return f, nil
	}

	index, err := s.root.Open(path.Join(name, "index.html"))
	if err != nil {
		f.Close()
		return nil, fs.ErrNotExist
	}
	index.Close()
	return f, nil
}
