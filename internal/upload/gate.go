package upload

import (
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"os"
	"path"
	"path/filepath"
	"strings"
	"time"

	"employee-management/internal/apperror"

	"github.com/google/uuid"
	"github.com/spf13/afero"
)

const (
	// FieldName is the multipart field carrying the profile image.
	FieldName = "profileImage"

	MaxImageSize int64 = 5 << 20

	// PublicPrefix is both the URL prefix the files are served under and
	// the prefix of the stored relative path.
	PublicPrefix = "uploads"
)

var allowedTypes = map[string]bool{
	"image/jpeg": true,
	"image/png":  true,
}

// Gate polices and stores profile images. Only the declared Content-Type
// header is checked; file bytes are never sniffed.
type Gate struct {
	fs  afero.Fs
	dir string
	now func() time.Time
}

func NewGate(fs afero.Fs, dir string) *Gate {
	return &Gate{
		fs:  fs,
		dir: dir,
		now: time.Now,
	}
}

// EnsureDir creates the upload directory if it does not exist yet.
func (g *Gate) EnsureDir() error {
	if err := g.fs.MkdirAll(g.dir, 0o755); err != nil {
		return fmt.Errorf("create upload dir %s: %w", g.dir, err)
	}
	return nil
}

// HTTPFileSystem serves stored images. Directories and in-flight temp
// files are hidden.
func (g *Gate) HTTPFileSystem() http.FileSystem {
	return imagesOnly{afero.NewHttpFs(afero.NewBasePathFs(g.fs, g.dir))}
}

type imagesOnly struct {
	fs http.FileSystem
}

func (f imagesOnly) Open(name string) (http.File, error) {
	if strings.HasPrefix(path.Base(name), ".") {
		return nil, os.ErrNotExist
	}
	file, err := f.fs.Open(name)
	if err != nil {
		return nil, err
	}
	info, err := file.Stat()
	if err != nil || info.IsDir() {
		file.Close()
		return nil, os.ErrNotExist
	}
	return file, nil
}

// Pick returns the single file under FieldName, nil when none was sent.
func Pick(form *multipart.Form) (*multipart.FileHeader, error) {
	if form == nil {
		return nil, nil
	}
	files := form.File[FieldName]
	switch len(files) {
	case 0:
		return nil, nil
	case 1:
		return files[0], nil
	default:
		return nil, apperror.New(apperror.KindTooManyFiles, "only one profile image may be uploaded per request")
	}
}

func (g *Gate) Check(fh *multipart.FileHeader) error {
	contentType := strings.ToLower(strings.TrimSpace(fh.Header.Get("Content-Type")))
	if i := strings.IndexByte(contentType, ';'); i >= 0 {
		contentType = strings.TrimSpace(contentType[:i])
	}
	if !allowedTypes[contentType] {
		return apperror.New(apperror.KindInvalidFileType, "only JPEG and PNG images are allowed")
	}
	if fh.Size > MaxImageSize {
		return TooLarge()
	}
	return nil
}

func TooLarge() error {
	return apperror.New(apperror.KindFileTooLarge, "file too large: maximum size is 5MB")
}

// Save writes the file under a generated name and returns its relative
// path. The bytes go to a temp file first, so a failed copy never leaves
// a file under a final name.
func (g *Gate) Save(fh *multipart.FileHeader) (string, error) {
	src, err := fh.Open()
	if err != nil {
		return "", fmt.Errorf("open uploaded file: %w", err)
	}
	defer src.Close()

	tmp, err := afero.TempFile(g.fs, g.dir, ".upload-*")
	if err != nil {
		return "", fmt.Errorf("create temp file: %w", err)
	}
	tmpName := tmp.Name()

	written, err := io.Copy(tmp, io.LimitReader(src, MaxImageSize+1))
	if closeErr := tmp.Close(); err == nil {
		err = closeErr
	}
	if err != nil {
		_ = g.fs.Remove(tmpName)
		return "", fmt.Errorf("write upload: %w", err)
	}
	if written > MaxImageSize {
		_ = g.fs.Remove(tmpName)
		return "", TooLarge()
	}

	name := g.storageName(fh.Filename)
	if err := g.fs.Rename(tmpName, filepath.Join(g.dir, name)); err != nil {
		_ = g.fs.Remove(tmpName)
		return "", fmt.Errorf("store upload: %w", err)
	}
	return path.Join(PublicPrefix, name), nil
}

// Discard removes a file returned by Save. Used when a later step fails.
func (g *Gate) Discard(relPath string) error {
	name := path.Base(relPath)
	if name == "." || name == "/" {
		return nil
	}
	return g.fs.Remove(filepath.Join(g.dir, name))
}

func (g *Gate) storageName(original string) string {
	base := filepath.Base(strings.ReplaceAll(original, `\`, "/"))
	base = strings.Map(func(r rune) rune {
		if r == '/' || r == ' ' || r < 0x20 {
			return '_'
		}
		return r
	}, base)
	if base == "." || base == "/" || base == "" {
		base = "image"
	}
	return fmt.Sprintf("%d-%d-%s", g.now().UnixMilli(), uuid.New().ID(), base)
}
