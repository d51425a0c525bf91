package storage

import (
	"encoding/base64"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"

	"momentum/internal/model"
)

// AttachmentStore persists binary attachments. The file store writes real
// files under the data directory and references them by path; the inline
// store encodes the content as a data URL inside the record itself.
type AttachmentStore interface {
	Save(name, mimeType string, content []byte) (model.Attachment, error)
	Load(att model.Attachment) ([]byte, error)
	Delete(att model.Attachment) error
}

type FileAttachmentStore struct {
	dir string
}

func NewFileAttachmentStore(dir string) (*FileAttachmentStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create attachment dir: %w", err)
	}
	return &FileAttachmentStore{dir: dir}, nil
}

func (s *FileAttachmentStore) Save(name, mimeType string, content []byte) (model.Attachment, error) {
	id := uuid.NewString()
	path := filepath.Join(s.dir, id+sanitizeExt(name))
	if err := os.WriteFile(path, content, 0o644); err != nil {
		return model.Attachment{}, fmt.Errorf("write attachment: %w", err)
	}
	return model.Attachment{
		ID:       id,
		Name:     name,
		MimeType: mimeType,
		Ref:      path,
		Size:     int64(len(content)),
	}, nil
}

func (s *FileAttachmentStore) Load(att model.Attachment) ([]byte, error) {
	data, err := os.ReadFile(att.Ref)
	if err != nil {
		return nil, fmt.Errorf("read attachment: %w", err)
	}
	return data, nil
}

func (s *FileAttachmentStore) Delete(att model.Attachment) error {
	if err := os.Remove(att.Ref); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("remove attachment: %w", err)
	}
	return nil
}

type InlineAttachmentStore struct{}

func NewInlineAttachmentStore() *InlineAttachmentStore {
	return &InlineAttachmentStore{}
}

func (s *InlineAttachmentStore) Save(name, mimeType string, content []byte) (model.Attachment, error) {
	if mimeType == "" {
		mimeType = "application/octet-stream"
	}
	ref := "data:" + mimeType + ";base64," + base64.StdEncoding.EncodeToString(content)
	return model.Attachment{
		ID:       uuid.NewString(),
		Name:     name,
		MimeType: mimeType,
		Ref:      ref,
		Size:     int64(len(content)),
	}, nil
}

func (s *InlineAttachmentStore) Load(att model.Attachment) ([]byte, error) {
	idx := strings.Index(att.Ref, ";base64,")
	if !strings.HasPrefix(att.Ref, "data:") || idx < 0 {
		return nil, fmt.Errorf("attachment %s is not a data URL", att.ID)
	}
	data, err := base64.StdEncoding.DecodeString(att.Ref[idx+len(";base64,"):])
	if err != nil {
		return nil, fmt.Errorf("decode attachment: %w", err)
	}
	return data, nil
}

func (s *InlineAttachmentStore) Delete(model.Attachment) error {
	// Nothing external to clean up; the data lives in the record.
	return nil
}

func sanitizeExt(name string) string {
	ext := filepath.Ext(name)
	if len(ext) > 10 {
		return ""
	}
	for _, r := range ext {
		if r == '/' || r == '\\' || r == ':' {
			return ""
		}
	}
	return ext
}
