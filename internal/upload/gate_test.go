package upload

import (
	"bytes"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"path"
	"strings"
	"testing"
	"time"

	"employee-management/internal/apperror"

	"github.com/spf13/afero"
)

func fileHeader(t *testing.T, filename, contentType string, size int) *multipart.FileHeader {
	t.Helper()

	form := buildForm(t, []string{filename}, contentType, size)
	return form.File[FieldName][0]
}

func buildForm(t *testing.T, filenames []string, contentType string, size int) *multipart.Form {
	t.Helper()

	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)
	for _, filename := range filenames {
		header := textproto.MIMEHeader{}
		header.Set("Content-Disposition", fmt.Sprintf(`form-data; name="%s"; filename="%s"`, FieldName, filename))
		header.Set("Content-Type", contentType)
		part, err := writer.CreatePart(header)
		if err != nil {
			t.Fatalf("create part: %v", err)
		}
		if _, err := part.Write(bytes.Repeat([]byte{0x89}, size)); err != nil {
			t.Fatalf("write part: %v", err)
		}
	}
	if err := writer.Close(); err != nil {
		t.Fatalf("close writer: %v", err)
	}

	form, err := multipart.NewReader(body, writer.Boundary()).ReadForm(1 << 20)
	if err != nil {
		t.Fatalf("read form: %v", err)
	}
	t.Cleanup(func() { _ = form.RemoveAll() })
	return form
}

func newTestGate(t *testing.T) (*Gate, afero.Fs) {
	t.Helper()

	fs := afero.NewMemMapFs()
	gate := NewGate(fs, "/srv/uploads")
	if err := gate.EnsureDir(); err != nil {
		t.Fatalf("ensure dir: %v", err)
	}
	return gate, fs
}

func TestCheckRejectsDisallowedType(t *testing.T) {
	gate, _ := newTestGate(t)

	err := gate.Check(fileHeader(t, "resume.pdf", "application/pdf", 1024))
	if apperror.KindOf(err) != apperror.KindInvalidFileType {
		t.Fatalf("expected invalid file type, got %v", err)
	}
}

func TestCheckRejectsOversizedImage(t *testing.T) {
	gate, _ := newTestGate(t)

	err := gate.Check(fileHeader(t, "big.jpg", "image/jpeg", 6<<20))
	if apperror.KindOf(err) != apperror.KindFileTooLarge {
		t.Fatalf("expected file too large, got %v", err)
	}
}

func TestCheckAcceptsAllowedTypes(t *testing.T) {
	gate, _ := newTestGate(t)

	for _, ct := range []string{"image/png", "image/jpeg", "IMAGE/PNG", "image/jpeg; charset=binary"} {
		if err := gate.Check(fileHeader(t, "a.png", ct, 1024)); err != nil {
			t.Errorf("content type %q rejected: %v", ct, err)
		}
	}
	if err := gate.Check(fileHeader(t, "edge.jpg", "image/jpeg", int(MaxImageSize))); err != nil {
		t.Errorf("file of exactly the ceiling rejected: %v", err)
	}
}

func TestSaveGeneratesDistinctPaths(t *testing.T) {
	gate, fs := newTestGate(t)
	gate.now = func() time.Time { return time.UnixMilli(1700000000000) }

	fh := fileHeader(t, "avatar.png", "image/png", 1024)
	first, err := gate.Save(fh)
	if err != nil {
		t.Fatalf("save: %v", err)
	}
	second, err := gate.Save(fh)
	if err != nil {
		t.Fatalf("save: %v", err)
	}

	if first == second {
		t.Fatalf("expected distinct paths, both were %s", first)
	}
	for _, p := range []string{first, second} {
		if !strings.HasPrefix(p, PublicPrefix+"/1700000000000-") || !strings.HasSuffix(p, "-avatar.png") {
			t.Fatalf("unexpected storage path %s", p)
		}
		data, err := afero.ReadFile(fs, path.Join("/srv/uploads", path.Base(p)))
		if err != nil {
			t.Fatalf("stored file missing: %v", err)
		}
		if len(data) != 1024 {
			t.Fatalf("expected 1024 bytes, got %d", len(data))
		}
	}

	entries, err := afero.ReadDir(fs, "/srv/uploads")
	if err != nil {
		t.Fatalf("read dir: %v", err)
	}
	for _, entry := range entries {
		if strings.HasPrefix(entry.Name(), ".upload-") {
			t.Fatalf("temp file left behind: %s", entry.Name())
		}
	}
}

func TestDiscardRemovesFile(t *testing.T) {
	gate, fs := newTestGate(t)

	saved, err := gate.Save(fileHeader(t, "avatar.png", "image/png", 16))
	if err != nil {
		t.Fatalf("save: %v", err)
	}
	if err := gate.Discard(saved); err != nil {
		t.Fatalf("discard: %v", err)
	}
	if exists, _ := afero.Exists(fs, path.Join("/srv/uploads", path.Base(saved))); exists {
		t.Fatalf("file still present after discard")
	}
}

func TestStorageNameStripsDirectories(t *testing.T) {
	gate, _ := newTestGate(t)

	name := gate.storageName(`..\..\etc\my photo.png`)
	if strings.ContainsAny(name, `/\ `) {
		t.Fatalf("unsafe storage name %q", name)
	}
	if !strings.HasSuffix(name, "-my_photo.png") {
		t.Fatalf("unexpected storage name %q", name)
	}
}

func TestPick(t *testing.T) {
	if fh, err := Pick(nil); fh != nil || err != nil {
		t.Fatalf("nil form must yield no file")
	}

	one := buildForm(t, []string{"a.png"}, "image/png", 8)
	if fh, err := Pick(one); err != nil || fh == nil {
		t.Fatalf("expected single file, got %v %v", fh, err)
	}

	two := buildForm(t, []string{"a.png", "b.png"}, "image/png", 8)
	if _, err := Pick(two); apperror.KindOf(err) != apperror.KindTooManyFiles {
		t.Fatalf("expected too many files, got %v", err)
	}
}

func TestHTTPFileSystemHidesTempFilesAndDirs(t *testing.T) {
	gate, fs := newTestGate(t)

	saved, err := gate.Save(fileHeader(t, "avatar.png", "image/png", 32))
	if err != nil {
		t.Fatalf("save: %v", err)
	}
	if err := afero.WriteFile(fs, "/srv/uploads/.upload-123", []byte("partial"), 0o644); err != nil {
		t.Fatalf("write temp: %v", err)
	}

	httpFS := gate.HTTPFileSystem()

	file, err := httpFS.Open("/" + path.Base(saved))
	if err != nil {
		t.Fatalf("open stored image: %v", err)
	}
	data, _ := io.ReadAll(file)
	file.Close()
	if len(data) != 32 {
		t.Fatalf("expected 32 bytes, got %d", len(data))
	}

	if _, err := httpFS.Open("/.upload-123"); err == nil {
		t.Fatalf("temp files must not be served")
	}
	if _, err := httpFS.Open("/"); err == nil {
		t.Fatalf("directories must not be served")
	}
	var _ http.FileSystem = httpFS
}
