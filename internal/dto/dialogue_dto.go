package dto

import "notebot-be/pkg/store"

// HandleMessageRequest is one user utterance relayed by a chat adapter.
// Text is either free-form user input or a command token the adapter
// translated from a button press.
type HandleMessageRequest struct {
	UserId int64  `json:"user_id" validate:"required,gt=0"`
	Text   string `json:"text" validate:"required"`
}

type HandleMessageResponse struct {
	Reply string      `json:"reply"`
	State store.State `json:"state"`
	// Suggestions are quick-reply labels for the state the dialogue is now
	// in; adapters may render them as buttons.
	Suggestions []string `json:"suggestions"`
}

type DialogueStateResponse struct {
	UserId      int64       `json:"user_id"`
	State       store.State `json:"state"`
	Suggestions []string    `json:"suggestions"`
}
