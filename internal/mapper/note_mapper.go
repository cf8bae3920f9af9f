package mapper

import (
	"notebot-be/internal/entity"
	"notebot-be/internal/model"
)

type NoteMapper struct{}

func NewNoteMapper() *NoteMapper {
	return &NoteMapper{}
}

func (m *NoteMapper) ToEntity(n *model.Note) *entity.Note {
	if n == nil {
		return nil
	}

	var tags []string
	if len(n.Tags) > 0 {
		tags = make([]string, len(n.Tags))
		for i, t := range n.Tags {
			tags[i] = t.Tag
		}
	}

	return &entity.Note{
		Id:        n.Id,
		UserId:    n.UserId,
		Text:      n.Text,
		Tags:      tags,
		CreatedAt: n.CreatedAt,
	}
}

func (m *NoteMapper) ToModel(n *entity.Note) *model.Note {
	if n == nil {
		return nil
	}

	return &model.Note{
		Id:        n.Id,
		UserId:    n.UserId,
		Text:      n.Text,
		CreatedAt: n.CreatedAt,
	}
}

func (m *NoteMapper) ToEntities(notes []*model.Note) []*entity.Note {
	entities := make([]*entity.Note, len(notes))
	for i, n := range notes {
		entities[i] = m.ToEntity(n)
	}
	return entities
}
