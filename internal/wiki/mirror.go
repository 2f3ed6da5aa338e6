package wiki

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/Baykugan/Wiki-Crawler/internal/model"
)

// MirrorSource serves articles from a directory of saved HTML pages, one
// file per title named by model.PageID.FileName. Redirect stubs saved the
// way "?redirect=no" renders them are followed like live redirects.
//
// It makes offline runs and tests independent of the network.
type MirrorSource struct {
	dir string
}

// NewMirrorSource creates a source reading from dir, which must exist.
func NewMirrorSource(dir string) (*MirrorSource, error) {
	info, err := os.Stat(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to open mirror directory: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("mirror path %s is not a directory", dir)
	}
	return &MirrorSource{dir: dir}, nil
}

// Dir returns the mirror directory.
func (m *MirrorSource) Dir() string {
	return m.dir
}

// Fetch reads one saved article.
func (m *MirrorSource) Fetch(ctx context.Context, id model.PageID) (*Document, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	// #nosec G304 -- the file name is escaped by PageID.FileName
	body, err := os.ReadFile(filepath.Join(m.dir, id.FileName()))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrPageNotFound, id)
		}
		return nil, fmt.Errorf("%w: %s: %w", ErrTransient, id, err)
	}

	if target, ok := FindRedirectTarget(body); ok {
		return &Document{ID: id, RedirectTo: target}, nil
	}
	return &Document{ID: id, Body: body}, nil
}
