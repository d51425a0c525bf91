package storage

import (
	"bytes"
	"strings"
	"testing"
)

func TestFileAttachmentStore(t *testing.T) {
	store, err := NewFileAttachmentStore(t.TempDir())
	if err != nil {
		t.Fatalf("new store: %v", err)
	}

	content := []byte("attachment body")
	att, err := store.Save("notes.txt", "text/plain", content)
	if err != nil {
		t.Fatalf("save: %v", err)
	}
	if att.Size != int64(len(content)) || att.Ref == "" {
		t.Fatalf("unexpected attachment record: %#v", att)
	}

	loaded, err := store.Load(att)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if !bytes.Equal(loaded, content) {
		t.Fatalf("content mismatch")
	}

	if err := store.Delete(att); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, err := store.Load(att); err == nil {
		t.Fatalf("expected load failure after delete")
	}
	// Deleting twice is not an error.
	if err := store.Delete(att); err != nil {
		t.Fatalf("second delete: %v", err)
	}
}

func TestInlineAttachmentStore(t *testing.T) {
	store := NewInlineAttachmentStore()

	content := []byte{0x89, 0x50, 0x4e, 0x47}
	att, err := store.Save("pixel.png", "image/png", content)
	if err != nil {
		t.Fatalf("save: %v", err)
	}
	if !strings.HasPrefix(att.Ref, "data:image/png;base64,") {
		t.Fatalf("expected data URL, got %q", att.Ref)
	}

	loaded, err := store.Load(att)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if !bytes.Equal(loaded, content) {
		t.Fatalf("content mismatch")
	}

	att.Ref = "https://example.com/not-a-data-url"
	if _, err := store.Load(att); err == nil {
		t.Fatalf("expected error for non data URL ref")
	}
}
