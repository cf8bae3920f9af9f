package service

import (
	"context"
	"fmt"
	"time"

	"notebot-be/internal/entity"
	"notebot-be/internal/pkg/logger"
	"notebot-be/internal/repository/specification"
	"notebot-be/internal/repository/unitofwork"
	"notebot-be/pkg/events"
	pktNats "notebot-be/pkg/nats"
	"notebot-be/pkg/plural"
	"notebot-be/pkg/tags"
)

// INoteService is the tagged-note storage engine behind the dialogue
// router. Every operation is owner-scoped: a note id belonging to another
// user behaves exactly like a missing note.
type INoteService interface {
	// AddNote persists text and its extracted tags atomically and returns
	// the stored note with Tags populated.
	AddNote(ctx context.Context, userId int64, text string) (*entity.Note, error)
	// GetAllNotes returns the user's note texts ascending by id.
	GetAllNotes(ctx context.Context, userId int64) ([]string, error)
	// GetNoteIDByIndex maps a 1-based display position onto the stable id.
	GetNoteIDByIndex(ctx context.Context, userId int64, index int) (int64, error)
	GetNoteTextByID(ctx context.Context, userId, noteId int64) (string, error)
	// UpdateNote rewrites the text and derives a fresh tag set from it; the
	// old associations are discarded, never merged.
	UpdateNote(ctx context.Context, userId, noteId int64, newText string) error
	DeleteNote(ctx context.Context, userId, noteId int64) error
	GetTagsForNote(ctx context.Context, noteId int64) ([]string, error)
	// GetNotesByTag filters by an exact, case-folded tag; an empty tag
	// returns everything.
	GetNotesByTag(ctx context.Context, userId int64, tag string) ([]string, error)
	// GetAllUserTagsWithCounts renders "тег — N заметка/заметки/заметок"
	// lines sorted by tag.
	GetAllUserTagsWithCounts(ctx context.Context, userId int64) ([]string, error)
}

type noteService struct {
	uowFactory unitofwork.RepositoryFactory
	publisher  IPublisherService
	natsPub    *pktNats.Publisher
	logger     logger.ILogger
}

func NewNoteService(
	uowFactory unitofwork.RepositoryFactory,
	publisher IPublisherService,
	natsPub *pktNats.Publisher,
	log logger.ILogger,
) INoteService {
	return &noteService{
		uowFactory: uowFactory,
		publisher:  publisher,
		natsPub:    natsPub,
		logger:     log,
	}
}

func (s *noteService) AddNote(ctx context.Context, userId int64, text string) (*entity.Note, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)
	if err := uow.Begin(ctx); err != nil {
		return nil, err
	}

	note := &entity.Note{
		UserId:    userId,
		Text:      text,
		CreatedAt: time.Now(),
	}
	if err := uow.NoteRepository().Create(ctx, note); err != nil {
		uow.Rollback()
		return nil, err
	}

	extracted := tags.Extract(text)
	if err := uow.NoteRepository().ReplaceTags(ctx, note.Id, extracted); err != nil {
		uow.Rollback()
		return nil, err
	}

	if err := uow.Commit(); err != nil {
		return nil, err
	}

	note.Tags = extracted
	s.publishEvent(ctx, events.NoteCreated, userId, note.Id)
	return note, nil
}

func (s *noteService) GetAllNotes(ctx context.Context, userId int64) ([]string, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)
	notes, err := uow.NoteRepository().FindAll(ctx,
		specification.OwnedBy{UserID: userId},
		specification.OrderByIDAsc{},
	)
	if err != nil {
		return nil, err
	}
	return noteTexts(notes), nil
}

func (s *noteService) GetNoteIDByIndex(ctx context.Context, userId int64, index int) (int64, error) {
	if index < 1 {
		return 0, entity.ErrNoteNotFound
	}

	uow := s.uowFactory.NewUnitOfWork(ctx)
	note, err := uow.NoteRepository().FindOne(ctx,
		specification.OwnedBy{UserID: userId},
		specification.OrderByIDAsc{},
		specification.AtOffset{Offset: index - 1},
	)
	if err != nil {
		return 0, err
	}
	if note == nil {
		return 0, entity.ErrNoteNotFound
	}
	return note.Id, nil
}

func (s *noteService) GetNoteTextByID(ctx context.Context, userId, noteId int64) (string, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)
	note, err := uow.NoteRepository().FindOne(ctx,
		specification.ByID{ID: noteId},
		specification.OwnedBy{UserID: userId},
	)
	if err != nil {
		return "", err
	}
	if note == nil {
		return "", entity.ErrNoteNotFound
	}
	return note.Text, nil
}

func (s *noteService) UpdateNote(ctx context.Context, userId, noteId int64, newText string) error {
	uow := s.uowFactory.NewUnitOfWork(ctx)
	if err := uow.Begin(ctx); err != nil {
		return err
	}

	updated, err := uow.NoteRepository().UpdateText(ctx, userId, noteId, newText)
	if err != nil {
		uow.Rollback()
		return err
	}
	if !updated {
		uow.Rollback()
		return entity.ErrNoteNotFound
	}

	if err := uow.NoteRepository().ReplaceTags(ctx, noteId, tags.Extract(newText)); err != nil {
		uow.Rollback()
		return err
	}

	if err := uow.Commit(); err != nil {
		return err
	}

	s.publishEvent(ctx, events.NoteUpdated, userId, noteId)
	return nil
}

func (s *noteService) DeleteNote(ctx context.Context, userId, noteId int64) error {
	uow := s.uowFactory.NewUnitOfWork(ctx)
	if err := uow.Begin(ctx); err != nil {
		return err
	}

	// Ownership gate before any row is touched.
	note, err := uow.NoteRepository().FindOne(ctx,
		specification.ByID{ID: noteId},
		specification.OwnedBy{UserID: userId},
	)
	if err != nil {
		uow.Rollback()
		return err
	}
	if note == nil {
		uow.Rollback()
		return entity.ErrNoteNotFound
	}

	if err := uow.NoteRepository().ReplaceTags(ctx, noteId, nil); err != nil {
		uow.Rollback()
		return err
	}
	deleted, err := uow.NoteRepository().Delete(ctx, userId, noteId)
	if err != nil {
		uow.Rollback()
		return err
	}
	if !deleted {
		uow.Rollback()
		return entity.ErrNoteNotFound
	}

	if err := uow.Commit(); err != nil {
		return err
	}

	s.publishEvent(ctx, events.NoteDeleted, userId, noteId)
	return nil
}

func (s *noteService) GetTagsForNote(ctx context.Context, noteId int64) ([]string, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)
	return uow.NoteRepository().TagsForNote(ctx, noteId)
}

func (s *noteService) GetNotesByTag(ctx context.Context, userId int64, tag string) ([]string, error) {
	tag = tags.Normalize(tag)
	if tag == "" {
		return s.GetAllNotes(ctx, userId)
	}

	uow := s.uowFactory.NewUnitOfWork(ctx)
	notes, err := uow.NoteRepository().FindAll(ctx,
		specification.OwnedBy{UserID: userId},
		specification.HasTag{Tag: tag},
		specification.OrderByIDAsc{},
	)
	if err != nil {
		return nil, err
	}
	return noteTexts(notes), nil
}

func (s *noteService) GetAllUserTagsWithCounts(ctx context.Context, userId int64) ([]string, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)
	counts, err := uow.NoteRepository().TagCounts(ctx, userId)
	if err != nil {
		return nil, err
	}

	lines := make([]string, len(counts))
	for i, c := range counts {
		lines[i] = fmt.Sprintf("%s — %d %s", c.Tag, c.Count, plural.Notes(c.Count))
	}
	return lines, nil
}

func (s *noteService) publishEvent(ctx context.Context, eventType string, userId, noteId int64) {
	evt := events.BaseEvent{
		Type: eventType,
		Data: map[string]interface{}{
			"user_id": userId,
			"note_id": noteId,
		},
		OccurredAt: time.Now(),
	}

	// Notifications are auxiliary: a publish failure never fails the write.
	if s.publisher != nil {
		if err := s.publisher.Publish(ctx, evt); err != nil {
			s.logger.Warn("NoteService", "Failed to publish event", map[string]interface{}{
				"event": eventType, "error": err.Error(),
			})
		}
	}
	if s.natsPub != nil {
		if err := s.natsPub.Publish(ctx, evt); err != nil {
			s.logger.Warn("NoteService", "Failed to mirror event to NATS", map[string]interface{}{
				"event": eventType, "error": err.Error(),
			})
		}
	}
}

func noteTexts(notes []*entity.Note) []string {
	texts := make([]string, len(notes))
	for i, n := range notes {
		texts[i] = n.Text
	}
	return texts
}
