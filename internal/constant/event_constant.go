package constant

// NoteEventsTopic is the in-process watermill topic carrying note
// lifecycle events from the services to the notification consumer.
const NoteEventsTopic = "note-events"
