// Package chat defines the transport-neutral contract between the task core
// and the messaging gateway: inbound user events and outbound actions.
package chat

// EventKind identifies the kind of an inbound user event.
type EventKind int

const (
	// EventCommand is a slash command such as /start or /task 12.
	EventCommand EventKind = iota + 1
	// EventText is a free-form text message.
	EventText
	// EventButton is a press of a reply-keyboard button, delivered as its label.
	EventButton
	// EventInline is a selection on an inline keyboard, delivered as its token.
	EventInline
)

func (k EventKind) String() string {
	switch k {
	case EventCommand:
		return "command"
	case EventText:
		return "text"
	case EventButton:
		return "button"
	case EventInline:
		return "inline"
	default:
		return "unknown"
	}
}

// Event is a single inbound user interaction attributed to a user and chat.
type Event struct {
	Kind   EventKind
	UserID int64
	ChatID int64

	// Name is the command name (without slash), the button label or the
	// inline token, depending on Kind.
	Name string
	// Args holds the text after a command name.
	Args string
	// Text is the message body for EventText and EventButton.
	Text string

	// MessageID refers to the displayed message an inline selection came from.
	MessageID int
	// CallbackID must be acknowledged for every inline selection.
	CallbackID string
}

// ActionKind identifies an outbound action for the gateway.
type ActionKind int

const (
	// ActionSendText sends a new message.
	ActionSendText ActionKind = iota + 1
	// ActionEditText replaces the text (and optionally the inline keyboard)
	// of the message the event came from.
	ActionEditText
	// ActionEditKeyboard replaces only the inline keyboard of that message.
	ActionEditKeyboard
	// ActionAcknowledge answers an inline selection, optionally with a
	// transient notice.
	ActionAcknowledge
)

func (k ActionKind) String() string {
	switch k {
	case ActionSendText:
		return "send_text"
	case ActionEditText:
		return "edit_text"
	case ActionEditKeyboard:
		return "edit_keyboard"
	case ActionAcknowledge:
		return "acknowledge"
	default:
		return "unknown"
	}
}

// Action is an outbound request for the gateway.
type Action struct {
	Kind     ActionKind
	Text     string
	Keyboard *Keyboard
}

// SendText builds an ActionSendText.
func SendText(text string, kb *Keyboard) Action {
	return Action{Kind: ActionSendText, Text: text, Keyboard: kb}
}

// EditText builds an ActionEditText.
func EditText(text string, kb *Keyboard) Action {
	return Action{Kind: ActionEditText, Text: text, Keyboard: kb}
}

// EditKeyboard builds an ActionEditKeyboard.
func EditKeyboard(kb *Keyboard) Action {
	return Action{Kind: ActionEditKeyboard, Keyboard: kb}
}

// Acknowledge builds an ActionAcknowledge. An empty notice is a silent receipt.
func Acknowledge(notice string) Action {
	return Action{Kind: ActionAcknowledge, Text: notice}
}

// Button is a single keyboard cell. Token is empty for reply-keyboard buttons.
type Button struct {
	Text  string
	Token string
}

// Keyboard is either an inline keyboard (buttons carry tokens) or a reply
// keyboard (buttons are sent back as text).
type Keyboard struct {
	Inline  bool
	OneTime bool
	Rows    [][]Button
}
