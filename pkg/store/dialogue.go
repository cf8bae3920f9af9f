package store

// State is the current step of a user's multi-turn interaction. The set is
// closed: the router only ever writes one of the constants below.
type State string

const (
	StateNone                  State = "NONE"
	StateAwaitingNoteText      State = "AWAITING_NOTE_TEXT"
	StateAwaitingNoteIDEdit    State = "AWAITING_NOTE_ID_FOR_EDIT"
	StateAwaitingNewTextEdit   State = "AWAITING_NEW_TEXT_FOR_EDIT"
	StateAwaitingNoteIDDelete  State = "AWAITING_NOTE_ID_FOR_DELETE"
	StateAwaitingDeleteConfirm State = "AWAITING_DELETE_CONFIRMATION"
	StateAwaitingTagFilter     State = "AWAITING_TAG_FOR_FILTER"
	StateAwaitingNoteIDTagEdit State = "AWAITING_NOTE_ID_FOR_TAG_EDIT"
	StateAwaitingNewTags       State = "AWAITING_NEW_TAGS_INPUT"
	StateAwaitingNoteAction    State = "AWAITING_ACTION_ON_NOTE"
)

// DialogueSession is the per-user dialogue position shared by every chat
// front end. PendingNoteID holds the stable note id a multi-step flow is
// working on; zero means no note is selected.
type DialogueSession struct {
	UserID        int64 `json:"user_id"`
	State         State `json:"state"`
	PendingNoteID int64 `json:"pending_note_id"`
}

// NewSession returns an idle session for userID.
func NewSession(userID int64) *DialogueSession {
	return &DialogueSession{UserID: userID, State: StateNone}
}
