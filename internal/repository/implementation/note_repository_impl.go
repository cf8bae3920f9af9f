package implementation

import (
	"context"
	"errors"

	"notebot-be/internal/entity"
	"notebot-be/internal/mapper"
	"notebot-be/internal/model"
	"notebot-be/internal/repository/contract"
	"notebot-be/internal/repository/specification"

	"gorm.io/gorm"
)

type NoteRepositoryImpl struct {
	db     *gorm.DB
	mapper *mapper.NoteMapper
}

func NewNoteRepository(db *gorm.DB) contract.NoteRepository {
	return &NoteRepositoryImpl{
		db:     db,
		mapper: mapper.NewNoteMapper(),
	}
}

func (r *NoteRepositoryImpl) applySpecifications(db *gorm.DB, specs ...specification.Specification) *gorm.DB {
	for _, spec := range specs {
		db = spec.Apply(db)
	}
	return db
}

func (r *NoteRepositoryImpl) Create(ctx context.Context, note *entity.Note) error {
	m := r.mapper.ToModel(note)
	if err := r.db.WithContext(ctx).Create(m).Error; err != nil {
		return err
	}
	*note = *r.mapper.ToEntity(m)
	return nil
}

func (r *NoteRepositoryImpl) UpdateText(ctx context.Context, userId, noteId int64, text string) (bool, error) {
	res := r.db.WithContext(ctx).Model(&model.Note{}).
		Where("id = ? AND user_id = ?", noteId, userId).
		Update("text", text)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

func (r *NoteRepositoryImpl) Delete(ctx context.Context, userId, noteId int64) (bool, error) {
	res := r.db.WithContext(ctx).
		Where("id = ? AND user_id = ?", noteId, userId).
		Delete(&model.Note{})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

func (r *NoteRepositoryImpl) FindOne(ctx context.Context, specs ...specification.Specification) (*entity.Note, error) {
	var m model.Note
	query := r.applySpecifications(r.db.WithContext(ctx), specs...)
	if err := query.First(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return r.mapper.ToEntity(&m), nil
}

func (r *NoteRepositoryImpl) FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.Note, error) {
	var models []*model.Note
	query := r.applySpecifications(r.db.WithContext(ctx), specs...)
	if err := query.Find(&models).Error; err != nil {
		return nil, err
	}
	return r.mapper.ToEntities(models), nil
}

func (r *NoteRepositoryImpl) Count(ctx context.Context, specs ...specification.Specification) (int64, error) {
	var count int64
	query := r.applySpecifications(r.db.WithContext(ctx).Model(&model.Note{}), specs...)
	if err := query.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

func (r *NoteRepositoryImpl) ReplaceTags(ctx context.Context, noteId int64, tags []string) error {
	if err := r.db.WithContext(ctx).
		Where("note_id = ?", noteId).
		Delete(&model.NoteTag{}).Error; err != nil {
		return err
	}
	if len(tags) == 0 {
		return nil
	}
	rows := make([]model.NoteTag, len(tags))
	for i, tag := range tags {
		rows[i] = model.NoteTag{NoteId: noteId, Tag: tag}
	}
	return r.db.WithContext(ctx).Create(&rows).Error
}

func (r *NoteRepositoryImpl) TagsForNote(ctx context.Context, noteId int64) ([]string, error) {
	var tags []string
	err := r.db.WithContext(ctx).Model(&model.NoteTag{}).
		Where("note_id = ?", noteId).
		Order("id ASC").
		Pluck("tag", &tags).Error
	if err != nil {
		return nil, err
	}
	return tags, nil
}

func (r *NoteRepositoryImpl) TagCounts(ctx context.Context, userId int64) ([]entity.TagCount, error) {
	var counts []entity.TagCount
	err := r.db.WithContext(ctx).Model(&model.NoteTag{}).
		Select("note_tags.tag AS tag, COUNT(*) AS count").
		Joins("JOIN notes ON notes.id = note_tags.note_id").
		Where("notes.user_id = ?", userId).
		Group("note_tags.tag").
		Order("note_tags.tag ASC").
		Scan(&counts).Error
	if err != nil {
		return nil, err
	}
	return counts, nil
}
