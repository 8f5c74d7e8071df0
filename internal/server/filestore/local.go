package filestore

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/dmitrijs2005/userservice/internal/common"
	"github.com/dmitrijs2005/userservice/internal/filex"
)

// Local keeps files below a root directory and serves them under baseURL.
type Local struct {
	root    string
	baseURL string
}

func NewLocal(root, baseURL string) (*Local, error) {
	if root == "" {
		root = "media"
	}
	dir, err := filex.EnsureDir(root)
	if err != nil {
		return nil, fmt.Errorf("media root: %w", err)
	}
	return &Local{root: dir, baseURL: baseURL}, nil
}

// Root returns the absolute directory the files are stored in.
func (l *Local) Root() string {
	return l.root
}

func (l *Local) resolve(name string) (string, error) {
	key, err := cleanKey(name)
	if err != nil {
		return "", err
	}
	return filepath.Join(l.root, filepath.FromSlash(key)), nil
}

func (l *Local) Save(_ context.Context, name string, r io.Reader) error {
	p, err := l.resolve(name)
	if err != nil {
		return err
	}
	if err := filex.WriteFileAtomic(p, r, 0o640); err != nil {
		return storageErr("save", name, err)
	}
	return nil
}

func (l *Local) Open(_ context.Context, name string) (io.ReadCloser, error) {
	p, err := l.resolve(name)
	if err != nil {
		return nil, err
	}
	f, err := os.Open(p)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("open %s: %w", name, common.ErrorNotFound)
	}
	if err != nil {
		return nil, storageErr("open", name, err)
	}
	return f, nil
}

func (l *Local) Exists(_ context.Context, name string) (bool, error) {
	p, err := l.resolve(name)
	if err != nil {
		return false, err
	}
	_, err = os.Stat(p)
	if errors.Is(err, fs.ErrNotExist) {
		return false, nil
	}
	if err != nil {
		return false, storageErr("stat", name, err)
	}
	return true, nil
}

// Delete removes name. Missing files are not an error.
func (l *Local) Delete(_ context.Context, name string) error {
	p, err := l.resolve(name)
	if err != nil {
		return err
	}
	if err := os.Remove(p); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return storageErr("delete", name, err)
	}
	return nil
}

func (l *Local) URL(name string) string {
	return joinURL(l.baseURL, name)
}
