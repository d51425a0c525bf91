package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"momentum/internal/model"
	"momentum/internal/storage"
)

type Notes struct {
	repo        storage.Repository
	attachments storage.AttachmentStore
	now         clock
}

func NewNotes(repo storage.Repository, attachments storage.AttachmentStore) *Notes {
	return &Notes{repo: repo, attachments: attachments, now: time.Now}
}

type NoteInput struct {
	ListID  string
	Title   string
	Content string
	Tags    []string
}

func (s *Notes) Create(ctx context.Context, in NoteInput) (model.Note, error) {
	if in.ListID != "" {
		if _, err := s.repo.GetList(ctx, in.ListID); err != nil {
			return model.Note{}, fmt.Errorf("resolve list: %w", err)
		}
	}
	now := s.now()
	note := model.Note{
		ID:        uuid.NewString(),
		ListID:    in.ListID,
		Title:     in.Title,
		Content:   in.Content,
		Tags:      in.Tags,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := note.Validate(); err != nil {
		return model.Note{}, err
	}
	if err := s.repo.CreateNote(ctx, note); err != nil {
		return model.Note{}, fmt.Errorf("create note: %w", err)
	}
	return note, nil
}

func (s *Notes) Get(ctx context.Context, id string) (model.Note, error) {
	return s.repo.GetNote(ctx, id)
}

func (s *Notes) List(ctx context.Context, filter storage.NoteFilter) ([]model.Note, error) {
	return s.repo.ListNotes(ctx, filter)
}

func (s *Notes) Update(ctx context.Context, note model.Note) (model.Note, error) {
	current, err := s.repo.GetNote(ctx, note.ID)
	if err != nil {
		return model.Note{}, err
	}
	note.CreatedAt = current.CreatedAt
	note.UpdatedAt = s.now()
	if err := note.Validate(); err != nil {
		return model.Note{}, err
	}
	if err := s.repo.UpdateNote(ctx, note); err != nil {
		return model.Note{}, fmt.Errorf("update note: %w", err)
	}
	return note, nil
}

func (s *Notes) Delete(ctx context.Context, id string) error {
	return s.repo.DeleteNote(ctx, id)
}

func (s *Notes) Attach(ctx context.Context, id, name, mimeType string, data []byte) (model.Note, error) {
	note, err := s.repo.GetNote(ctx, id)
	if err != nil {
		return model.Note{}, err
	}
	att, err := s.attachments.Save(name, mimeType, data)
	if err != nil {
		return model.Note{}, fmt.Errorf("save attachment: %w", err)
	}
	note.Attachments = append(note.Attachments, att)
	note.UpdatedAt = s.now()
	if err := s.repo.UpdateNote(ctx, note); err != nil {
		return model.Note{}, fmt.Errorf("update note: %w", err)
	}
	return note, nil
}
