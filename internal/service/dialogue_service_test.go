package service

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"testing"

	"notebot-be/internal/constant"
	"notebot-be/internal/entity"
	"notebot-be/internal/repository/memory"
	"notebot-be/pkg/plural"
	"notebot-be/pkg/store"
	"notebot-be/pkg/tags"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeNoteService is an in-memory stand-in for the GORM-backed note engine
// with the same owner-scoping and tag semantics. Setting err makes every
// call fail, simulating a database outage.
type fakeNoteService struct {
	nextID int64
	notes  []*fakeNote
	err    error
}

type fakeNote struct {
	id     int64
	userId int64
	text   string
	tags   []string
}

func newFakeNotes() *fakeNoteService {
	return &fakeNoteService{}
}

func (f *fakeNoteService) seed(userId int64, text string) int64 {
	f.nextID++
	f.notes = append(f.notes, &fakeNote{
		id:     f.nextID,
		userId: userId,
		text:   text,
		tags:   tags.Extract(text),
	})
	return f.nextID
}

func (f *fakeNoteService) owned(userId int64) []*fakeNote {
	var out []*fakeNote
	for _, n := range f.notes {
		if n.userId == userId {
			out = append(out, n)
		}
	}
	return out
}

func (f *fakeNoteService) find(userId, noteId int64) *fakeNote {
	for _, n := range f.notes {
		if n.id == noteId && n.userId == userId {
			return n
		}
	}
	return nil
}

func (f *fakeNoteService) AddNote(ctx context.Context, userId int64, text string) (*entity.Note, error) {
	if f.err != nil {
		return nil, f.err
	}
	id := f.seed(userId, text)
	n := f.find(userId, id)
	return &entity.Note{Id: n.id, UserId: userId, Text: n.text, Tags: n.tags}, nil
}

func (f *fakeNoteService) GetAllNotes(ctx context.Context, userId int64) ([]string, error) {
	if f.err != nil {
		return nil, f.err
	}
	var texts []string
	for _, n := range f.owned(userId) {
		texts = append(texts, n.text)
	}
	return texts, nil
}

func (f *fakeNoteService) GetNoteIDByIndex(ctx context.Context, userId int64, index int) (int64, error) {
	if f.err != nil {
		return 0, f.err
	}
	owned := f.owned(userId)
	if index < 1 || index > len(owned) {
		return 0, entity.ErrNoteNotFound
	}
	return owned[index-1].id, nil
}

func (f *fakeNoteService) GetNoteTextByID(ctx context.Context, userId, noteId int64) (string, error) {
	if f.err != nil {
		return "", f.err
	}
	n := f.find(userId, noteId)
	if n == nil {
		return "", entity.ErrNoteNotFound
	}
	return n.text, nil
}

func (f *fakeNoteService) UpdateNote(ctx context.Context, userId, noteId int64, newText string) error {
	if f.err != nil {
		return f.err
	}
	n := f.find(userId, noteId)
	if n == nil {
		return entity.ErrNoteNotFound
	}
	n.text = newText
	n.tags = tags.Extract(newText)
	return nil
}

func (f *fakeNoteService) DeleteNote(ctx context.Context, userId, noteId int64) error {
	if f.err != nil {
		return f.err
	}
	for i, n := range f.notes {
		if n.id == noteId && n.userId == userId {
			f.notes = append(f.notes[:i], f.notes[i+1:]...)
			return nil
		}
	}
	return entity.ErrNoteNotFound
}

func (f *fakeNoteService) GetTagsForNote(ctx context.Context, noteId int64) ([]string, error) {
	if f.err != nil {
		return nil, f.err
	}
	for _, n := range f.notes {
		if n.id == noteId {
			return n.tags, nil
		}
	}
	return nil, nil
}

func (f *fakeNoteService) GetNotesByTag(ctx context.Context, userId int64, tag string) ([]string, error) {
	if f.err != nil {
		return nil, f.err
	}
	tag = tags.Normalize(tag)
	if tag == "" {
		return f.GetAllNotes(ctx, userId)
	}
	var texts []string
	for _, n := range f.owned(userId) {
		for _, t := range n.tags {
			if t == tag {
				texts = append(texts, n.text)
				break
			}
		}
	}
	return texts, nil
}

func (f *fakeNoteService) GetAllUserTagsWithCounts(ctx context.Context, userId int64) ([]string, error) {
	if f.err != nil {
		return nil, f.err
	}
	counts := make(map[string]int64)
	for _, n := range f.owned(userId) {
		for _, t := range n.tags {
			counts[t]++
		}
	}
	var sorted []string
	for t := range counts {
		sorted = append(sorted, t)
	}
	sort.Strings(sorted)

	var lines []string
	for _, t := range sorted {
		lines = append(lines, fmt.Sprintf("%s — %d %s", t, counts[t], plural.Notes(counts[t])))
	}
	return lines, nil
}

var _ INoteService = (*fakeNoteService)(nil)

type noopLogger struct{}

func (noopLogger) Debug(module, message string, details map[string]interface{}) {}
func (noopLogger) Info(module, message string, details map[string]interface{})  {}
func (noopLogger) Warn(module, message string, details map[string]interface{})  {}
func (noopLogger) Error(module, message string, details map[string]interface{}) {}
func (noopLogger) Sync() error { return nil }

func newTestDialogue(t *testing.T) (IDialogueService, *fakeNoteService) {
	t.Helper()
	notes := newFakeNotes()
	svc := NewDialogueService(notes, memory.NewDialogueRepository(0), noopLogger{})
	return svc, notes
}

const testUser int64 = 100

func TestStartGreeting(t *testing.T) {
	svc, _ := newTestDialogue(t)
	ctx := context.Background()

	reply := svc.Handle(ctx, testUser, "/start")
	assert.Equal(t, constant.MsgGreeting, reply)
	assert.Equal(t, store.StateNone, svc.CurrentState(ctx, testUser))
}

func TestUnknownCommand(t *testing.T) {
	svc, _ := newTestDialogue(t)
	ctx := context.Background()

	reply := svc.Handle(ctx, testUser, "произвольный текст")
	assert.Equal(t, constant.MsgUnknownCommand, reply)
	assert.Equal(t, store.StateNone, svc.CurrentState(ctx, testUser))
}

func TestCreateNoteFlow(t *testing.T) {
	svc, _ := newTestDialogue(t)
	ctx := context.Background()

	reply := svc.Handle(ctx, testUser, constant.CommandNewNote)
	assert.Equal(t, constant.MsgSendNoteText, reply)
	assert.Equal(t, store.StateAwaitingNoteText, svc.CurrentState(ctx, testUser))

	reply = svc.Handle(ctx, testUser, "купить хлеб #покупки")
	assert.Equal(t, constant.MsgNoteSaved+" 🏷️ Тег: #покупки", reply)
	assert.Equal(t, store.StateNone, svc.CurrentState(ctx, testUser))

	reply = svc.Handle(ctx, testUser, constant.CommandListNotes)
	assert.Equal(t, "1. купить хлеб #покупки", reply)
}

func TestCreateNoteWithoutTags(t *testing.T) {
	svc, _ := newTestDialogue(t)
	ctx := context.Background()

	svc.Handle(ctx, testUser, constant.CommandNewNote)
	reply := svc.Handle(ctx, testUser, "просто текст")
	assert.Equal(t, constant.MsgNoteSaved, reply)
}

func TestListNotesEmpty(t *testing.T) {
	svc, _ := newTestDialogue(t)
	ctx := context.Background()

	assert.Equal(t, constant.MsgNoNotesYet, svc.Handle(ctx, testUser, constant.CommandListNotes))
	assert.Equal(t, constant.MsgNoNotes, svc.Handle(ctx, testUser, constant.CommandEditNote))
	assert.Equal(t, store.StateNone, svc.CurrentState(ctx, testUser))
}

func TestCancelWinsFromEveryState(t *testing.T) {
	states := []store.State{
		store.StateAwaitingNoteText,
		store.StateAwaitingNoteIDEdit,
		store.StateAwaitingNoteAction,
		store.StateAwaitingNewTextEdit,
		store.StateAwaitingNoteIDDelete,
		store.StateAwaitingDeleteConfirm,
		store.StateAwaitingTagFilter,
		store.StateAwaitingNoteIDTagEdit,
		store.StateAwaitingNewTags,
	}

	for _, st := range states {
		for _, word := range []string{"cancel", "/cancel", "Отмена", "отмена"} {
			t.Run(string(st)+"/"+word, func(t *testing.T) {
				notes := newFakeNotes()
				repo := memory.NewDialogueRepository(0)
				svc := NewDialogueService(notes, repo, noopLogger{})
				ctx := context.Background()

				session := store.NewSession(testUser)
				session.State = st
				session.PendingNoteID = 5
				require.NoError(t, repo.Save(ctx, session))

				reply := svc.Handle(ctx, testUser, word)
				assert.Equal(t, constant.MsgCancelled, reply)
				assert.Equal(t, store.StateNone, svc.CurrentState(ctx, testUser))
			})
		}
	}
}

func TestEditFlow(t *testing.T) {
	svc, notes := newTestDialogue(t)
	ctx := context.Background()
	notes.seed(testUser, "первая")
	notes.seed(testUser, "вторая #работа")

	reply := svc.Handle(ctx, testUser, constant.CommandEditNote)
	assert.Equal(t, constant.MsgSelectForEdit+"\n1. первая\n2. вторая #работа", reply)
	assert.Equal(t, store.StateAwaitingNoteIDEdit, svc.CurrentState(ctx, testUser))

	// Out-of-range and garbage keep the state so the user can retry.
	assert.Equal(t, constant.MsgNoSuchNumber, svc.Handle(ctx, testUser, "99"))
	assert.Equal(t, store.StateAwaitingNoteIDEdit, svc.CurrentState(ctx, testUser))
	assert.Equal(t, constant.MsgEnterNumber, svc.Handle(ctx, testUser, "abc"))
	assert.Equal(t, store.StateAwaitingNoteIDEdit, svc.CurrentState(ctx, testUser))

	reply = svc.Handle(ctx, testUser, "2")
	assert.Equal(t,
		"Текст: вторая #работа\nТеги: #работа\nВыберите действие:\n[Изменить текст]\n[Изменить теги]\n[Удалить заметку]",
		reply)
	assert.Equal(t, store.StateAwaitingNoteAction, svc.CurrentState(ctx, testUser))

	reply = svc.Handle(ctx, testUser, constant.CommandEditText)
	assert.Equal(t, "Текущий текст заметки: «вторая #работа» Отправьте новый текст.", reply)
	assert.Equal(t, store.StateAwaitingNewTextEdit, svc.CurrentState(ctx, testUser))

	reply = svc.Handle(ctx, testUser, "новый текст #дом")
	assert.Equal(t, constant.MsgNoteUpdated, reply)
	assert.Equal(t, store.StateNone, svc.CurrentState(ctx, testUser))

	// The rewrite derives a fresh tag set from the new text.
	got, err := notes.GetTagsForNote(ctx, 2)
	require.NoError(t, err)
	assert.Equal(t, []string{"#дом"}, got)
}

func TestEditFlowNoteWithoutTagsShowsNone(t *testing.T) {
	svc, notes := newTestDialogue(t)
	ctx := context.Background()
	notes.seed(testUser, "без тегов")

	svc.Handle(ctx, testUser, constant.CommandEditNote)
	reply := svc.Handle(ctx, testUser, "1")
	assert.Contains(t, reply, "Теги: нет")
}

func TestUnknownActionKeepsMenu(t *testing.T) {
	svc, notes := newTestDialogue(t)
	ctx := context.Background()
	notes.seed(testUser, "одна")

	svc.Handle(ctx, testUser, constant.CommandEditNote)
	svc.Handle(ctx, testUser, "1")

	reply := svc.Handle(ctx, testUser, "что-то другое")
	assert.Equal(t, constant.MsgUnknownAction, reply)
	assert.Equal(t, store.StateAwaitingNoteAction, svc.CurrentState(ctx, testUser))
}

func TestDeleteFlow(t *testing.T) {
	svc, notes := newTestDialogue(t)
	ctx := context.Background()
	notes.seed(testUser, "первая")
	notes.seed(testUser, "вторая")

	svc.Handle(ctx, testUser, constant.CommandDeleteNote)
	assert.Equal(t, store.StateAwaitingNoteIDDelete, svc.CurrentState(ctx, testUser))

	reply := svc.Handle(ctx, testUser, "1")
	assert.Equal(t, "Вы уверены, что хотите удалить заметку:\n«первая»?\nОтветьте «да» или «нет».", reply)
	assert.Equal(t, store.StateAwaitingDeleteConfirm, svc.CurrentState(ctx, testUser))

	// Anything but да/нет re-asks without losing the pending note.
	assert.Equal(t, constant.MsgAnswerYesNo, svc.Handle(ctx, testUser, "может быть"))
	assert.Equal(t, store.StateAwaitingDeleteConfirm, svc.CurrentState(ctx, testUser))

	reply = svc.Handle(ctx, testUser, "нет")
	assert.Equal(t, constant.MsgDeleteCancelled, reply)
	assert.Equal(t, store.StateNone, svc.CurrentState(ctx, testUser))
	all, _ := notes.GetAllNotes(ctx, testUser)
	assert.Len(t, all, 2)

	svc.Handle(ctx, testUser, constant.CommandDeleteNote)
	svc.Handle(ctx, testUser, "1")
	reply = svc.Handle(ctx, testUser, "Да")
	assert.Equal(t, constant.MsgNoteDeleted, reply)
	assert.Equal(t, store.StateNone, svc.CurrentState(ctx, testUser))

	// Display positions compact after deletion.
	all, _ = notes.GetAllNotes(ctx, testUser)
	assert.Equal(t, []string{"вторая"}, all)
}

func TestDeleteOutOfRange(t *testing.T) {
	svc, notes := newTestDialogue(t)
	ctx := context.Background()
	notes.seed(testUser, "одна")

	svc.Handle(ctx, testUser, constant.CommandDeleteNote)
	reply := svc.Handle(ctx, testUser, "5")
	assert.Equal(t, constant.MsgNoSuchNote, reply)
	assert.Equal(t, store.StateAwaitingNoteIDDelete, svc.CurrentState(ctx, testUser))
}

func TestTagEditDiff(t *testing.T) {
	svc, notes := newTestDialogue(t)
	ctx := context.Background()
	notes.seed(testUser, "текст #a #b")

	svc.Handle(ctx, testUser, constant.CommandEditTags)
	assert.Equal(t, store.StateAwaitingNoteIDTagEdit, svc.CurrentState(ctx, testUser))

	reply := svc.Handle(ctx, testUser, "1")
	assert.Equal(t, constant.MsgSendNewTags, reply)
	assert.Equal(t, store.StateAwaitingNewTags, svc.CurrentState(ctx, testUser))

	reply = svc.Handle(ctx, testUser, "#b #c")
	assert.Equal(t, constant.MsgTagsUpdated+" Удалён(ы): #a Добавлен(ы): #c", reply)
	assert.Equal(t, store.StateNone, svc.CurrentState(ctx, testUser))

	// Prose survives, tags are rewritten in place.
	text, err := notes.GetNoteTextByID(ctx, testUser, 1)
	require.NoError(t, err)
	assert.Equal(t, "текст #b #c", text)
}

func TestTagEditEmptyRemovesAll(t *testing.T) {
	svc, notes := newTestDialogue(t)
	ctx := context.Background()
	notes.seed(testUser, "текст #a #b")

	svc.Handle(ctx, testUser, constant.CommandEditTags)
	svc.Handle(ctx, testUser, "1")
	reply := svc.Handle(ctx, testUser, "   ")
	assert.Equal(t, constant.MsgAllTagsRemoved, reply)

	text, _ := notes.GetNoteTextByID(ctx, testUser, 1)
	assert.Equal(t, "текст", text)
	got, _ := notes.GetTagsForNote(ctx, 1)
	assert.Empty(t, got)
}

func TestTagEditUnchangedSingleTag(t *testing.T) {
	svc, notes := newTestDialogue(t)
	ctx := context.Background()
	notes.seed(testUser, "текст #a")

	svc.Handle(ctx, testUser, constant.CommandEditTags)
	svc.Handle(ctx, testUser, "1")
	reply := svc.Handle(ctx, testUser, "#a")
	assert.Equal(t, constant.MsgTagsUpdated+" Новый тег: #a", reply)
}

func TestTagEditViaActionMenu(t *testing.T) {
	svc, notes := newTestDialogue(t)
	ctx := context.Background()
	notes.seed(testUser, "текст #a")

	svc.Handle(ctx, testUser, constant.CommandEditNote)
	svc.Handle(ctx, testUser, "1")
	reply := svc.Handle(ctx, testUser, constant.CommandEditTags)
	assert.Equal(t, constant.MsgSendNewTags, reply)
	assert.Equal(t, store.StateAwaitingNewTags, svc.CurrentState(ctx, testUser))
}

func TestFilterByTag(t *testing.T) {
	svc, notes := newTestDialogue(t)
	ctx := context.Background()
	notes.seed(testUser, "хлеб #покупки")
	notes.seed(testUser, "молоко #покупки")
	notes.seed(testUser, "позвонить #дела")

	reply := svc.Handle(ctx, testUser, constant.CommandFilterByTag)
	assert.Equal(t,
		constant.MsgChooseTag+"\n#дела — 1 заметка\n#покупки — 2 заметки\n"+constant.LabelAllNotes,
		reply)
	assert.Equal(t, store.StateAwaitingTagFilter, svc.CurrentState(ctx, testUser))

	// Tag without '#' and with different case addresses the same tag.
	reply = svc.Handle(ctx, testUser, "Покупки")
	assert.Equal(t, "хлеб #покупки\nмолоко #покупки", reply)
	assert.Equal(t, store.StateNone, svc.CurrentState(ctx, testUser))
}

func TestFilterByTagNoMatches(t *testing.T) {
	svc, notes := newTestDialogue(t)
	ctx := context.Background()
	notes.seed(testUser, "хлеб #покупки")

	svc.Handle(ctx, testUser, constant.CommandFilterByTag)
	reply := svc.Handle(ctx, testUser, "спорт")
	assert.Equal(t, "Заметок с тегом #спорт не найдено.", reply)
	assert.Equal(t, store.StateNone, svc.CurrentState(ctx, testUser))
}

func TestFilterByTagAllNotes(t *testing.T) {
	svc, notes := newTestDialogue(t)
	ctx := context.Background()
	notes.seed(testUser, "хлеб #покупки")
	notes.seed(testUser, "без тега")

	svc.Handle(ctx, testUser, constant.CommandFilterByTag)
	reply := svc.Handle(ctx, testUser, constant.CommandAllNotes)
	assert.Equal(t, "1. хлеб #покупки\n2. без тега", reply)
	assert.Equal(t, store.StateNone, svc.CurrentState(ctx, testUser))
}

func TestFilterByTagNoTagsYet(t *testing.T) {
	svc, notes := newTestDialogue(t)
	ctx := context.Background()
	notes.seed(testUser, "без тега")

	reply := svc.Handle(ctx, testUser, constant.CommandFilterByTag)
	assert.Equal(t, constant.MsgNoTagsYet, reply)
	assert.Equal(t, store.StateNone, svc.CurrentState(ctx, testUser))
}

func TestViewTags(t *testing.T) {
	svc, notes := newTestDialogue(t)
	ctx := context.Background()
	for i := 0; i < 5; i++ {
		notes.seed(testUser, fmt.Sprintf("заметка %d #дела", i))
	}
	notes.seed(testUser, "одна #дом")

	reply := svc.Handle(ctx, testUser, constant.CommandViewTags)
	assert.Equal(t, constant.MsgAvailableTags+"\n#дела — 5 заметок\n#дом — 1 заметка", reply)
	assert.Equal(t, store.StateNone, svc.CurrentState(ctx, testUser))
}

func TestStorageErrorLeavesStateUnchanged(t *testing.T) {
	svc, notes := newTestDialogue(t)
	ctx := context.Background()

	svc.Handle(ctx, testUser, constant.CommandNewNote)
	require.Equal(t, store.StateAwaitingNoteText, svc.CurrentState(ctx, testUser))

	notes.err = errors.New("connection refused")
	reply := svc.Handle(ctx, testUser, "текст")
	assert.Equal(t, constant.MsgStorageError, reply)
	assert.Equal(t, store.StateAwaitingNoteText, svc.CurrentState(ctx, testUser))

	// Recovery: the same input succeeds once storage is back.
	notes.err = nil
	reply = svc.Handle(ctx, testUser, "текст")
	assert.Equal(t, constant.MsgNoteSaved, reply)
	assert.Equal(t, store.StateNone, svc.CurrentState(ctx, testUser))
}

func TestUsersAreIsolated(t *testing.T) {
	svc, notes := newTestDialogue(t)
	ctx := context.Background()
	const other int64 = 200
	notes.seed(testUser, "моя заметка")
	notes.seed(other, "чужая заметка")

	assert.Equal(t, "1. моя заметка", svc.Handle(ctx, testUser, constant.CommandListNotes))
	assert.Equal(t, "1. чужая заметка", svc.Handle(ctx, other, constant.CommandListNotes))

	// A flow started by one user does not move the other.
	svc.Handle(ctx, testUser, constant.CommandNewNote)
	assert.Equal(t, store.StateAwaitingNoteText, svc.CurrentState(ctx, testUser))
	assert.Equal(t, store.StateNone, svc.CurrentState(ctx, other))
}

func TestVanishedNoteAbortsFlow(t *testing.T) {
	svc, notes := newTestDialogue(t)
	ctx := context.Background()
	id := notes.seed(testUser, "исчезающая")

	svc.Handle(ctx, testUser, constant.CommandEditNote)
	svc.Handle(ctx, testUser, "1")
	require.Equal(t, store.StateAwaitingNoteAction, svc.CurrentState(ctx, testUser))

	// Another device deletes the note mid-flow.
	require.NoError(t, notes.DeleteNote(ctx, testUser, id))

	reply := svc.Handle(ctx, testUser, constant.CommandEditText)
	assert.Equal(t, constant.MsgNoteNotFound, reply)
	assert.Equal(t, store.StateNone, svc.CurrentState(ctx, testUser))
}
