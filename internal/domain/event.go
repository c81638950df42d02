package domain

type EventKind string

const (
	EventText   EventKind = "text"
	EventButton EventKind = "button"
)

// IncomingEvent is an already authenticated message or button press from the transport.
type IncomingEvent struct {
	UpdateID   int64
	UserID     int64
	ChannelID  int64
	MessageID  int64
	Kind       EventKind
	Text       string
	ButtonData string
	CallbackID string
	Private    bool
}

// DedupKeys derives the source-event keys used for idempotent inserts.
// Button presses reuse the message they are attached to, so only the update id is used.
func (e IncomingEvent) DedupKeys() DedupKeys {
	var keys DedupKeys
	if e.UpdateID != 0 {
		id := e.UpdateID
		keys.UpdateID = &id
	}
	if e.Kind == EventText && e.ChannelID != 0 && e.MessageID != 0 {
		chat, msg := e.ChannelID, e.MessageID
		keys.ChatID = &chat
		keys.MessageID = &msg
	}
	return keys
}

type KeyboardKind int

const (
	KeyboardInline KeyboardKind = iota
	KeyboardReply
	KeyboardRemove
)

type Button struct {
	Text string
	Data string
}

type Keyboard struct {
	Kind KeyboardKind
	Rows [][]Button
}

// OutgoingReply is sent back on the channel the event came from. When EditMessageID is
// set the transport edits that message in place and falls back to a new message.
type OutgoingReply struct {
	ChannelID     int64
	Text          string
	Keyboard      *Keyboard
	EditMessageID int64
}
