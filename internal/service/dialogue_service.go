package service

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"sync"

	"notebot-be/internal/constant"
	"notebot-be/internal/entity"
	"notebot-be/internal/pkg/logger"
	"notebot-be/internal/repository/contract"
	"notebot-be/pkg/store"
	"notebot-be/pkg/tags"
)

// IDialogueService is the per-user command router. Handle is the only
// mutating entry point; it never fails, every branch answers with a reply
// string. CurrentState lets adapters pick quick-reply controls.
type IDialogueService interface {
	Handle(ctx context.Context, userId int64, input string) string
	CurrentState(ctx context.Context, userId int64) store.State
}

type dialogueService struct {
	notes     INoteService
	dialogues contract.DialogueRepository
	logger    logger.ILogger

	// One mutex per user id: two near-simultaneous messages from the same
	// user are serialized, different users proceed in parallel.
	locks sync.Map
}

func NewDialogueService(
	notes INoteService,
	dialogues contract.DialogueRepository,
	log logger.ILogger,
) IDialogueService {
	return &dialogueService{
		notes:     notes,
		dialogues: dialogues,
		logger:    log,
	}
}

func (s *dialogueService) lockFor(userId int64) *sync.Mutex {
	mu, _ := s.locks.LoadOrStore(userId, &sync.Mutex{})
	return mu.(*sync.Mutex)
}

func (s *dialogueService) Handle(ctx context.Context, userId int64, input string) string {
	mu := s.lockFor(userId)
	mu.Lock()
	defer mu.Unlock()

	trimmed := strings.TrimSpace(input)

	// Cancel wins over every state.
	if isCancel(trimmed) {
		if err := s.dialogues.Delete(ctx, userId); err != nil {
			return s.storageFailure("cancel", err)
		}
		return constant.MsgCancelled
	}

	session, err := s.dialogues.Get(ctx, userId)
	if err != nil {
		return s.storageFailure("load session", err)
	}

	switch session.State {
	case store.StateAwaitingNoteText:
		return s.saveNewNote(ctx, session, input)
	case store.StateAwaitingNoteIDEdit:
		return s.selectNoteForEdit(ctx, session, trimmed)
	case store.StateAwaitingNoteAction:
		return s.selectNoteAction(ctx, session, trimmed)
	case store.StateAwaitingNewTextEdit:
		return s.updateNoteText(ctx, session, input)
	case store.StateAwaitingNoteIDDelete:
		return s.selectNoteForDelete(ctx, session, trimmed)
	case store.StateAwaitingDeleteConfirm:
		return s.confirmDelete(ctx, session, trimmed)
	case store.StateAwaitingTagFilter:
		return s.filterByTag(ctx, session, trimmed)
	case store.StateAwaitingNoteIDTagEdit:
		return s.selectNoteForTagEdit(ctx, session, trimmed)
	case store.StateAwaitingNewTags:
		return s.updateNoteTags(ctx, session, input)
	default:
		return s.mainMenu(ctx, session, trimmed)
	}
}

func (s *dialogueService) CurrentState(ctx context.Context, userId int64) store.State {
	session, err := s.dialogues.Get(ctx, userId)
	if err != nil {
		return store.StateNone
	}
	return session.State
}

// --- main menu -------------------------------------------------------------

func (s *dialogueService) mainMenu(ctx context.Context, session *store.DialogueSession, input string) string {
	switch input {
	case constant.CommandStart:
		return constant.MsgGreeting

	case constant.CommandNewNote:
		if msg := s.transition(ctx, session, store.StateAwaitingNoteText); msg != "" {
			return msg
		}
		return constant.MsgSendNoteText

	case constant.CommandListNotes:
		return s.renderAllNotes(ctx, session.UserID)

	case constant.CommandEditNote:
		return s.promptNoteSelection(ctx, session, constant.MsgSelectForEdit, store.StateAwaitingNoteIDEdit)

	case constant.CommandDeleteNote:
		return s.promptNoteSelection(ctx, session, constant.MsgSelectForDelete, store.StateAwaitingNoteIDDelete)

	case constant.CommandEditTags:
		return s.promptNoteSelection(ctx, session, constant.MsgSelectForTags, store.StateAwaitingNoteIDTagEdit)

	case constant.CommandFilterByTag:
		tagLines, err := s.notes.GetAllUserTagsWithCounts(ctx, session.UserID)
		if err != nil {
			return s.storageFailure("list tags", err)
		}
		if len(tagLines) == 0 {
			return constant.MsgNoTagsYet
		}
		if msg := s.transition(ctx, session, store.StateAwaitingTagFilter); msg != "" {
			return msg
		}
		return constant.MsgChooseTag + "\n" + strings.Join(tagLines, "\n") + "\n" + constant.LabelAllNotes

	case constant.CommandViewTags:
		tagLines, err := s.notes.GetAllUserTagsWithCounts(ctx, session.UserID)
		if err != nil {
			return s.storageFailure("list tags", err)
		}
		if len(tagLines) == 0 {
			return constant.MsgNoTagsYet
		}
		return constant.MsgAvailableTags + "\n" + strings.Join(tagLines, "\n")

	default:
		return constant.MsgUnknownCommand
	}
}

// --- note creation ---------------------------------------------------------

func (s *dialogueService) saveNewNote(ctx context.Context, session *store.DialogueSession, input string) string {
	note, err := s.notes.AddNote(ctx, session.UserID, input)
	if err != nil {
		return s.storageFailure("add note", err)
	}
	if msg := s.clear(ctx, session); msg != "" {
		return msg
	}
	if len(note.Tags) > 0 {
		return constant.MsgNoteSaved + " 🏷️ Тег: " + strings.Join(note.Tags, ", ")
	}
	return constant.MsgNoteSaved
}

// --- edit flow -------------------------------------------------------------

func (s *dialogueService) selectNoteForEdit(ctx context.Context, session *store.DialogueSession, input string) string {
	index, ok := parseIndex(input)
	if !ok {
		return constant.MsgEnterNumber
	}

	noteId, err := s.notes.GetNoteIDByIndex(ctx, session.UserID, index)
	if errors.Is(err, entity.ErrNoteNotFound) {
		return constant.MsgNoSuchNumber
	}
	if err != nil {
		return s.storageFailure("resolve index", err)
	}

	text, err := s.notes.GetNoteTextByID(ctx, session.UserID, noteId)
	if errors.Is(err, entity.ErrNoteNotFound) {
		return s.abort(ctx, session, constant.MsgNoteNotFound)
	}
	if err != nil {
		return s.storageFailure("load note", err)
	}

	noteTags, err := s.notes.GetTagsForNote(ctx, noteId)
	if err != nil {
		return s.storageFailure("load tags", err)
	}
	tagStr := "нет"
	if len(noteTags) > 0 {
		tagStr = strings.Join(noteTags, " ")
	}

	session.PendingNoteID = noteId
	if msg := s.transition(ctx, session, store.StateAwaitingNoteAction); msg != "" {
		return msg
	}

	return fmt.Sprintf(
		"Текст: %s\nТеги: %s\nВыберите действие:\n[Изменить текст]\n[Изменить теги]\n[Удалить заметку]",
		text, tagStr,
	)
}

func (s *dialogueService) selectNoteAction(ctx context.Context, session *store.DialogueSession, input string) string {
	if session.PendingNoteID == 0 {
		return s.abort(ctx, session, constant.MsgNoteNotSelected)
	}

	switch input {
	case constant.CommandEditText:
		current, err := s.notes.GetNoteTextByID(ctx, session.UserID, session.PendingNoteID)
		if errors.Is(err, entity.ErrNoteNotFound) {
			return s.abort(ctx, session, constant.MsgNoteNotFound)
		}
		if err != nil {
			return s.storageFailure("load note", err)
		}
		if msg := s.transition(ctx, session, store.StateAwaitingNewTextEdit); msg != "" {
			return msg
		}
		return fmt.Sprintf("Текущий текст заметки: «%s» Отправьте новый текст.", current)

	case constant.CommandEditTags:
		if msg := s.transition(ctx, session, store.StateAwaitingNewTags); msg != "" {
			return msg
		}
		return constant.MsgSendNewTags

	case constant.CommandDeleteNote:
		text, err := s.notes.GetNoteTextByID(ctx, session.UserID, session.PendingNoteID)
		if errors.Is(err, entity.ErrNoteNotFound) {
			return s.abort(ctx, session, constant.MsgNoteNotFound)
		}
		if err != nil {
			return s.storageFailure("load note", err)
		}
		if msg := s.transition(ctx, session, store.StateAwaitingDeleteConfirm); msg != "" {
			return msg
		}
		return deleteConfirmPrompt(text)

	default:
		return constant.MsgUnknownAction
	}
}

func (s *dialogueService) updateNoteText(ctx context.Context, session *store.DialogueSession, input string) string {
	if session.PendingNoteID == 0 {
		return s.abort(ctx, session, constant.MsgNoteNotSelected)
	}

	err := s.notes.UpdateNote(ctx, session.UserID, session.PendingNoteID, input)
	if errors.Is(err, entity.ErrNoteNotFound) {
		return s.abort(ctx, session, constant.MsgNoteNotFound)
	}
	if err != nil {
		return s.storageFailure("update note", err)
	}

	if msg := s.clear(ctx, session); msg != "" {
		return msg
	}
	return constant.MsgNoteUpdated
}

// --- delete flow -----------------------------------------------------------

func (s *dialogueService) selectNoteForDelete(ctx context.Context, session *store.DialogueSession, input string) string {
	index, ok := parseIndex(input)
	if !ok {
		return constant.MsgEnterNumber
	}

	noteId, err := s.notes.GetNoteIDByIndex(ctx, session.UserID, index)
	if errors.Is(err, entity.ErrNoteNotFound) {
		return constant.MsgNoSuchNote
	}
	if err != nil {
		return s.storageFailure("resolve index", err)
	}

	text, err := s.notes.GetNoteTextByID(ctx, session.UserID, noteId)
	if errors.Is(err, entity.ErrNoteNotFound) {
		return s.abort(ctx, session, constant.MsgNoteNotFound)
	}
	if err != nil {
		return s.storageFailure("load note", err)
	}

	session.PendingNoteID = noteId
	if msg := s.transition(ctx, session, store.StateAwaitingDeleteConfirm); msg != "" {
		return msg
	}
	return deleteConfirmPrompt(text)
}

func (s *dialogueService) confirmDelete(ctx context.Context, session *store.DialogueSession, input string) string {
	switch {
	case strings.EqualFold(input, constant.AnswerYes):
		if session.PendingNoteID != 0 {
			err := s.notes.DeleteNote(ctx, session.UserID, session.PendingNoteID)
			if errors.Is(err, entity.ErrNoteNotFound) {
				return s.abort(ctx, session, constant.MsgNoteNotFound)
			}
			if err != nil {
				return s.storageFailure("delete note", err)
			}
		}
		if msg := s.clear(ctx, session); msg != "" {
			return msg
		}
		return constant.MsgNoteDeleted

	case strings.EqualFold(input, constant.AnswerNo):
		if msg := s.clear(ctx, session); msg != "" {
			return msg
		}
		return constant.MsgDeleteCancelled

	default:
		return constant.MsgAnswerYesNo
	}
}

// --- tag flows -------------------------------------------------------------

func (s *dialogueService) filterByTag(ctx context.Context, session *store.DialogueSession, input string) string {
	if input == constant.CommandAllNotes || strings.EqualFold(input, constant.LabelAllNotes) {
		if msg := s.clear(ctx, session); msg != "" {
			return msg
		}
		return s.renderAllNotes(ctx, session.UserID)
	}

	tag := tags.Normalize(input)
	notes, err := s.notes.GetNotesByTag(ctx, session.UserID, tag)
	if err != nil {
		return s.storageFailure("filter by tag", err)
	}

	if msg := s.clear(ctx, session); msg != "" {
		return msg
	}
	if len(notes) == 0 {
		return fmt.Sprintf("Заметок с тегом %s не найдено.", tag)
	}
	return strings.Join(notes, "\n")
}

func (s *dialogueService) selectNoteForTagEdit(ctx context.Context, session *store.DialogueSession, input string) string {
	index, ok := parseIndex(input)
	if !ok {
		return constant.MsgEnterNumber
	}

	noteId, err := s.notes.GetNoteIDByIndex(ctx, session.UserID, index)
	if errors.Is(err, entity.ErrNoteNotFound) {
		return constant.MsgNoSuchNumber
	}
	if err != nil {
		return s.storageFailure("resolve index", err)
	}

	session.PendingNoteID = noteId
	if msg := s.transition(ctx, session, store.StateAwaitingNewTags); msg != "" {
		return msg
	}
	return constant.MsgSendNewTags
}

func (s *dialogueService) updateNoteTags(ctx context.Context, session *store.DialogueSession, input string) string {
	if session.PendingNoteID == 0 {
		return s.abort(ctx, session, constant.MsgNoteNotSelected)
	}

	currentText, err := s.notes.GetNoteTextByID(ctx, session.UserID, session.PendingNoteID)
	if errors.Is(err, entity.ErrNoteNotFound) {
		return s.abort(ctx, session, constant.MsgNoteNotFound)
	}
	if err != nil {
		return s.storageFailure("load note", err)
	}

	oldTags, err := s.notes.GetTagsForNote(ctx, session.PendingNoteID)
	if err != nil {
		return s.storageFailure("load tags", err)
	}

	var newTags []string
	if strings.TrimSpace(input) != "" {
		newTags = tags.Extract(input)
	}

	newText := tags.Strip(currentText)
	if len(newTags) > 0 {
		newText = strings.TrimSpace(newText + " " + strings.Join(newTags, " "))
	}

	err = s.notes.UpdateNote(ctx, session.UserID, session.PendingNoteID, newText)
	if errors.Is(err, entity.ErrNoteNotFound) {
		return s.abort(ctx, session, constant.MsgNoteNotFound)
	}
	if err != nil {
		return s.storageFailure("update note", err)
	}

	if msg := s.clear(ctx, session); msg != "" {
		return msg
	}

	if len(newTags) == 0 {
		return constant.MsgAllTagsRemoved
	}

	removed := diff(oldTags, newTags)
	added := diff(newTags, oldTags)

	var b strings.Builder
	b.WriteString(constant.MsgTagsUpdated)
	if len(removed) > 0 {
		b.WriteString(" Удалён(ы): " + strings.Join(removed, ", "))
	}
	if len(added) > 0 {
		b.WriteString(" Добавлен(ы): " + strings.Join(added, ", "))
	}
	if len(newTags) == 1 && len(removed) == 0 && len(added) == 0 {
		b.WriteString(" Новый тег: " + newTags[0])
	}
	return b.String()
}

// --- shared helpers --------------------------------------------------------

// transition stores the new state; on a session-store failure the state is
// left as it was and a retry message is returned.
func (s *dialogueService) transition(ctx context.Context, session *store.DialogueSession, next store.State) string {
	prev := session.State
	session.State = next
	if err := s.dialogues.Save(ctx, session); err != nil {
		session.State = prev
		return s.storageFailure("save session", err)
	}
	return ""
}

// clear ends the flow: state back to NONE, pending id dropped.
func (s *dialogueService) clear(ctx context.Context, session *store.DialogueSession) string {
	if err := s.dialogues.Delete(ctx, session.UserID); err != nil {
		return s.storageFailure("clear session", err)
	}
	session.State = store.StateNone
	session.PendingNoteID = 0
	return ""
}

// abort ends a flow that can no longer proceed (e.g. the pending note
// vanished) and tells the user why.
func (s *dialogueService) abort(ctx context.Context, session *store.DialogueSession, reply string) string {
	if msg := s.clear(ctx, session); msg != "" {
		return msg
	}
	return reply
}

func (s *dialogueService) storageFailure(op string, err error) string {
	s.logger.Error("Dialogue", "Storage failure", map[string]interface{}{
		"op": op, "error": err.Error(),
	})
	return constant.MsgStorageError
}

func (s *dialogueService) renderAllNotes(ctx context.Context, userId int64) string {
	notes, err := s.notes.GetAllNotes(ctx, userId)
	if err != nil {
		return s.storageFailure("list notes", err)
	}
	if len(notes) == 0 {
		return constant.MsgNoNotesYet
	}
	return numberedList(notes)
}

func (s *dialogueService) promptNoteSelection(ctx context.Context, session *store.DialogueSession, prompt string, next store.State) string {
	notes, err := s.notes.GetAllNotes(ctx, session.UserID)
	if err != nil {
		return s.storageFailure("list notes", err)
	}
	if len(notes) == 0 {
		return constant.MsgNoNotes
	}
	if msg := s.transition(ctx, session, next); msg != "" {
		return msg
	}
	return prompt + "\n" + numberedList(notes)
}

func isCancel(input string) bool {
	return strings.EqualFold(input, constant.CommandCancel) ||
		strings.EqualFold(input, "/cancel") ||
		strings.EqualFold(input, constant.LabelCancel)
}

func parseIndex(input string) (int, bool) {
	n, err := strconv.Atoi(input)
	if err != nil {
		return 0, false
	}
	return n, true
}

func numberedList(items []string) string {
	var b strings.Builder
	for i, item := range items {
		if i > 0 {
			b.WriteByte('\n')
		}
		fmt.Fprintf(&b, "%d. %s", i+1, item)
	}
	return b.String()
}

func deleteConfirmPrompt(text string) string {
	return fmt.Sprintf("Вы уверены, что хотите удалить заметку:\n«%s»?\nОтветьте «да» или «нет».", text)
}

// diff returns the elements of a that are absent from b, preserving a's order.
func diff(a, b []string) []string {
	inB := make(map[string]struct{}, len(b))
	for _, x := range b {
		inB[x] = struct{}{}
	}
	var out []string
	for _, x := range a {
		if _, ok := inB[x]; !ok {
			out = append(out, x)
		}
	}
	return out
}
