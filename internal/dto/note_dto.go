package dto

type NoteListResponse struct {
	Notes []string `json:"notes"`
}

type TagListResponse struct {
	// Tags are pre-rendered "тег — N заметка" lines, sorted by tag.
	Tags []string `json:"tags"`
}
