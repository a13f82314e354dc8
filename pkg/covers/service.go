package covers

import (
	"fmt"
	"io"
	"mime/multipart"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/gabriel-vasile/mimetype"
	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/shelfpress/shelfpress/pkg/errcodes"
)

// BaseURL is the public path prefix covers are served under.
const BaseURL = "/uploads"

var allowedExtensions = map[string]string{
	"image/jpeg": ".jpg",
	"image/png":  ".png",
	"image/webp": ".webp",
	"image/gif":  ".gif",
}

// Service validates and stores cover image attachments on local disk. A
// stored cover is addressed by the public URL returned from Store; Remove is
// the compensating action when the row mutation after an upload fails.
type Service struct {
	dir      string
	maxBytes int64
}

func NewService(dir string, maxBytes int64) *Service {
	return &Service{dir: dir, maxBytes: maxBytes}
}

// Store validates the attachment and writes it under a generated filename.
// Validation happens before anything touches disk or the database, so a
// rejected attachment leaves no partial state behind.
func (svc *Service) Store(fh *multipart.FileHeader) (string, error) {
	if fh.Size > svc.maxBytes {
		return "", errcodes.ValidationError(fmt.Sprintf("Cover image must be %d MiB or smaller", svc.maxBytes>>20))
	}

	src, err := fh.Open()
	if err != nil {
		return "", errors.WithStack(err)
	}
	defer src.Close()

	mtype, err := mimetype.DetectReader(src)
	if err != nil {
		return "", errors.WithStack(err)
	}
	ext, ok := allowedExtensions[mtype.String()]
	if !ok {
		return "", errcodes.ValidationError(fmt.Sprintf("Cover must be an image, got %s", mtype.String()))
	}

	// DetectReader consumed the head of the stream.
	if _, err := src.Seek(0, io.SeekStart); err != nil {
		return "", errors.WithStack(err)
	}

	id, err := uuid.NewRandom()
	if err != nil {
		return "", errors.WithStack(err)
	}
	filename := id.String() + ext

	if err := os.MkdirAll(svc.dir, 0755); err != nil {
		return "", errors.WithStack(err)
	}

	dst, err := os.Create(filepath.Join(svc.dir, filename))
	if err != nil {
		return "", errors.WithStack(err)
	}
	defer dst.Close()

	if _, err := io.Copy(dst, src); err != nil {
		// Don't leave a truncated file behind.
		_ = os.Remove(dst.Name())
		return "", errors.WithStack(err)
	}

	return path.Join(BaseURL, filename), nil
}

// Remove deletes a stored cover by its public URL. URLs outside the upload
// prefix are ignored so external cover links are never touched.
func (svc *Service) Remove(coverURL string) error {
	if !strings.HasPrefix(coverURL, BaseURL+"/") {
		return nil
	}

	filename := path.Base(coverURL)
	err := os.Remove(filepath.Join(svc.dir, filename))
	if err != nil && !os.IsNotExist(err) {
		return errors.WithStack(err)
	}
	return nil
}
