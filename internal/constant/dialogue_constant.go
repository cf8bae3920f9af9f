package constant

import "notebot-be/pkg/store"

// Command tokens form the protocol between adapters and the dialogue core.
// An adapter maps its platform-specific button identifiers to these tokens
// before calling Handle; free-form user text is passed through untouched.
const (
	CommandStart       = "/start"
	CommandCancel      = "cancel"
	CommandNewNote     = "new_note"
	CommandListNotes   = "list_notes"
	CommandEditNote    = "edit_note"
	CommandEditTags    = "edit_tags"
	CommandEditText    = "edit_text"
	CommandDeleteNote  = "delete_note"
	CommandFilterByTag = "filter_by_tag"
	CommandViewTags    = "view_tags"
	CommandAllNotes    = "all_notes"
)

// Confirmation words the user types during deletion. Matched
// case-insensitively.
const (
	AnswerYes = "да"
	AnswerNo  = "нет"
)

// Button labels shown to the user. These are presentation only: the
// adapters render them and translate a press back into a command token.
const (
	LabelNewNote     = "Новая заметка"
	LabelListNotes   = "Список заметок"
	LabelEditNote    = "Изменить заметку"
	LabelEditTags    = "Изменить теги"
	LabelEditText    = "Изменить текст"
	LabelDeleteNote  = "Удалить заметку"
	LabelFilterByTag = "Фильтр по тегу"
	LabelViewTags    = "Теги"
	LabelAllNotes    = "Все заметки"
	LabelCancel      = "Отмена"
)

// Reply texts. Wording is kept stable because regression tests and the
// adapters' screenshot suites depend on it.
const (
	MsgGreeting        = "Привет! Я помогу тебе сохранять и просматривать заметки. Используй кнопки ниже."
	MsgCancelled       = "Действие отменено. Вы в главном меню."
	MsgUnknownCommand  = "Неизвестная команда. Используйте кнопки."
	MsgUnknownAction   = "Неизвестная команда. Выберите действие из списка."
	MsgSendNoteText    = "Отправьте текст заметки."
	MsgNoteSaved       = "Заметка сохранена!"
	MsgNoNotesYet      = "У вас пока нет заметок."
	MsgNoNotes         = "Нет заметок."
	MsgNoTagsYet       = "У вас пока нет тегов."
	MsgSelectForEdit   = "Введите номер заметки для редактирования:"
	MsgSelectForDelete = "Введите номер заметки для удаления:"
	MsgSelectForTags   = "Введите номер заметки для изменения тегов:"
	MsgNoSuchNumber    = "Заметки с таким номером нет. Попробуйте снова."
	MsgNoSuchNote      = "Заметки с таким номером не существует."
	MsgEnterNumber     = "Введите корректный номер заметки."
	MsgNoteUpdated     = "Заметка обновлена!"
	MsgNoteDeleted     = "Заметка удалена."
	MsgDeleteCancelled = "Удаление отменено."
	MsgAnswerYesNo     = "Ответьте «да» или «нет»."
	MsgSendNewTags     = "Отправьте новые теги (например: #работа #важное) или оставьте пустым для удаления всех тегов."
	MsgAllTagsRemoved  = "Все теги удалены!"
	MsgTagsUpdated     = "Теги обновлены!"
	MsgNoteNotSelected = "Ошибка: заметка не выбрана."
	MsgNoteNotFound    = "Заметка не найдена."
	MsgAvailableTags   = "Доступные теги:"
	MsgChooseTag       = "Выберите тег из списка:"
	MsgStorageError    = "Ошибка базы данных. Попробуйте позже."
)

// KeyboardFor suggests quick-reply labels for the given dialogue state.
// Adapters are free to ignore it and render their own controls.
func KeyboardFor(state store.State) []string {
	switch state {
	case store.StateNone:
		return []string{LabelNewNote, LabelListNotes, LabelEditNote, LabelDeleteNote, LabelEditTags, LabelFilterByTag, LabelViewTags}
	case store.StateAwaitingNoteAction:
		return []string{LabelEditText, LabelEditTags, LabelDeleteNote, LabelCancel}
	case store.StateAwaitingDeleteConfirm:
		return []string{AnswerYes, AnswerNo}
	case store.StateAwaitingTagFilter:
		return []string{LabelAllNotes, LabelCancel}
	default:
		return []string{LabelCancel}
	}
}
