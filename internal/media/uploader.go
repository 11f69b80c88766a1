package media

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/clipstream/backend/internal/logging"
)

// ObjectStorage persists a blob and returns its durable public location.
type ObjectStorage interface {
	Save(ctx context.Context, name string, r io.Reader) (string, error)
}

// DurationProber resolves the playback duration of a local media file.
type DurationProber interface {
	Duration(ctx context.Context, path string) (float64, error)
}

// Kind distinguishes uploads that carry a playable duration from plain images.
type Kind string

const (
	KindVideo Kind = "video"
	KindImage Kind = "image"
)

// Upload is the result of pushing a file to the media host.
type Upload struct {
	URL             string
	DurationSeconds float64
	Size            int64
}

// Uploader stages inbound files on local disk, pushes them to the object
// store and reports derived metadata. The staged temp file is removed on
// every exit path: success, remote failure, or local error.
type Uploader struct {
	storage ObjectStorage
	prober  DurationProber
	tempDir string
	timeout time.Duration
	logger  *slog.Logger
}

// NewUploader constructs an Uploader writing temp files under tempDir.
func NewUploader(storage ObjectStorage, prober DurationProber, tempDir string, timeout time.Duration, logger *slog.Logger) *Uploader {
	if tempDir == "" {
		tempDir = os.TempDir()
	}
	if timeout <= 0 {
		timeout = 2 * time.Minute
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Uploader{
		storage: storage,
		prober:  prober,
		tempDir: tempDir,
		timeout: timeout,
		logger:  logger,
	}
}

// Upload stages the reader's content, probes video duration when applicable,
// and pushes the file to the object store under keyPrefix.
func (u *Uploader) Upload(ctx context.Context, kind Kind, keyPrefix, filename string, r io.Reader) (Upload, error) {
	if u == nil || u.storage == nil {
		return Upload{}, ErrStorageUnavailable
	}

	ctx, span := logging.StartSpan(ctx, "media.upload")
	defer span.End()

	tmp, err := os.CreateTemp(u.tempDir, "clipstream-upload-*"+sanitizeExt(filename))
	if err != nil {
		return Upload{}, fmt.Errorf("create temp file: %w", err)
	}
	tmpPath := tmp.Name()
	defer func() {
		if err := os.Remove(tmpPath); err != nil && !os.IsNotExist(err) {
			u.logger.Warn("remove temp upload", "path", tmpPath, "error", err)
		}
	}()

	size, err := io.Copy(tmp, r)
	if err != nil {
		tmp.Close()
		return Upload{}, fmt.Errorf("stage upload: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return Upload{}, fmt.Errorf("close temp file: %w", err)
	}
	if size == 0 {
		return Upload{}, ErrEmptyFile
	}

	var duration float64
	if kind == KindVideo && u.prober != nil {
		duration, err = u.prober.Duration(ctx, tmpPath)
		if err != nil {
			// Duration is derived metadata; a probe failure does not
			// invalidate the upload.
			u.logger.Warn("probe media duration", "file", filename, "error", err)
			duration = 0
		}
	}

	src, err := os.Open(tmpPath)
	if err != nil {
		return Upload{}, fmt.Errorf("reopen temp file: %w", err)
	}
	defer src.Close()

	uploadCtx, cancel := context.WithTimeout(ctx, u.timeout)
	defer cancel()

	key := path.Join(keyPrefix, uuid.NewString()+sanitizeExt(filename))
	url, err := u.storage.Save(uploadCtx, key, src)
	if err != nil {
		return Upload{}, fmt.Errorf("store upload %s: %w", key, err)
	}

	return Upload{URL: url, DurationSeconds: duration, Size: size}, nil
}

func sanitizeExt(filename string) string {
	ext := strings.ToLower(filepath.Ext(filename))
	for _, r := range ext {
		if r != '.' && (r < 'a' || r > 'z') && (r < '0' || r > '9') {
			return ""
		}
	}
	return ext
}
