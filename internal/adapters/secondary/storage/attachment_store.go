// Package storage serves attachment files from the local filesystem.
package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"mime"
	"net/http"
	"os"
	"path/filepath"

	"github.com/lorrc/helpdesk-portal/internal/core/domain"
	apperrors "github.com/lorrc/helpdesk-portal/internal/core/errors"
	"github.com/lorrc/helpdesk-portal/internal/core/ports"
)

// FileStore reads attachments from one directory. Lookups go through
// os.Root, so names can never reach outside it.
type FileStore struct {
	dir string
}

var _ ports.AttachmentStore = (*FileStore)(nil)

// NewFileStore creates the directory if it does not exist yet.
func NewFileStore(dir string) (*FileStore, error) {
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return nil, fmt.Errorf("create attachments dir: %w", err)
	}
	return &FileStore{dir: dir}, nil
}

func (s *FileStore) Open(_ context.Context, name string) (ports.Attachment, error) {
	if !domain.IsSafeAttachmentName(name) {
		return ports.Attachment{}, apperrors.ErrInvalidAttachmentRef
	}

	root, err := os.OpenRoot(s.dir)
	if err != nil {
		return ports.Attachment{}, fmt.Errorf("open attachments dir: %w", err)
	}
	defer root.Close()

	f, err := root.Open(name)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return ports.Attachment{}, apperrors.ErrAttachmentNotFound
		}
		return ports.Attachment{}, fmt.Errorf("open attachment: %w", err)
	}

	info, err := f.Stat()
	if err != nil {
		f.Close()
		return ports.Attachment{}, fmt.Errorf("stat attachment: %w", err)
	}
	if info.IsDir() {
		f.Close()
		return ports.Attachment{}, apperrors.ErrAttachmentNotFound
	}

	contentType, err := detectContentType(f, name)
	if err != nil {
		f.Close()
		return ports.Attachment{}, err
	}

	return ports.Attachment{
		Name:        info.Name(),
		ContentType: contentType,
		Size:        info.Size(),
		ModTime:     info.ModTime(),
		Body:        f,
	}, nil
}

// detectContentType prefers the extension and falls back to sniffing the
// first 512 bytes. The reader is rewound afterwards.
func detectContentType(f io.ReadSeeker, name string) (string, error) {
	if ct := mime.TypeByExtension(filepath.Ext(name)); ct != "" {
		return ct, nil
	}

	buf := make([]byte, 512)
	n, err := io.ReadFull(f, buf)
	if err != nil && !errors.Is(err, io.ErrUnexpectedEOF) && !errors.Is(err, io.EOF) {
		return "", fmt.Errorf("read attachment: %w", err)
	}
	if _, err := f.Seek(0, io.SeekStart); err != nil {
		return "", fmt.Errorf("rewind attachment: %w", err)
	}
	return http.DetectContentType(buf[:n]), nil
}
