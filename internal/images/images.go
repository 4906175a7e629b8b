package images

import (
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// URLPrefix is the path under which stored images are served back.
const URLPrefix = "/images/"

// Store writes uploaded images to one local directory under random
// names. Names never collide in practice, so concurrent uploads need
// no coordination; replaced images are not cleaned up.
type Store struct {
	Dir    string
	Logger *zap.SugaredLogger
}

func NewStore(dir string, logger *zap.SugaredLogger) *Store {
	return &Store{
		Dir:    dir,
		Logger: logger,
	}
}

// Save stores the upload and returns its serving path, e.g.
// /images/3f2a...9c.png. The extension is taken from the original
// filename as-is; content is written without inspection.
func (s *Store) Save(originalFilename string, r io.Reader) (string, error) {
	ext := filepath.Ext(originalFilename)
	name := strings.ReplaceAll(uuid.NewString(), "-", "") + ext

	path := filepath.Join(s.Dir, name)

	f, err := os.Create(path)
	if err != nil {
		s.Logger.Errorf("Failed to create image file %s: %v", path, err)
		return "", err
	}
	defer f.Close()

	if _, err := io.Copy(f, r); err != nil {
		s.Logger.Errorf("Failed to write image file %s: %v", path, err)
		return "", err
	}

	return URLPrefix + name, nil
}

// Remove deletes a previously stored image given its serving path.
func (s *Store) Remove(url string) error {
	name := filepath.Base(strings.TrimPrefix(url, URLPrefix))
	return os.Remove(filepath.Join(s.Dir, name))
}
