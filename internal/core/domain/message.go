package domain

// Sender identifies who produced a transcript message.
type Sender string

// Message senders.
const (
	SenderUser Sender = "user"
	SenderBot  Sender = "bot"
)

// Label returns the display label for the sender.
func (s Sender) Label() string {
	if s == SenderUser {
		return "You"
	}
	return "Bot"
}

// Message is one turn in the transcript.
type Message struct {
	// Sender is the user or the bot.
	Sender Sender `json:"sender"`

	// Text is the question, the answer, or a synthesized error string.
	Text string `json:"text"`

	// Sources holds citations and is only populated on successful answers.
	Sources []string `json:"sources,omitempty"`

	// Failed marks bot turns that carry an error instead of an answer.
	Failed bool `json:"failed,omitempty"`
}

// UserMessage creates a user turn.
func UserMessage(text string) Message {
	return Message{Sender: SenderUser, Text: text}
}

// AnswerMessage creates a bot turn from a successful answer.
// Sources default to an empty slice when the server omits them.
func AnswerMessage(answer *Answer) Message {
	sources := make([]string, 0, len(answer.Sources))
	sources = append(sources, answer.Sources...)
	return Message{Sender: SenderBot, Text: answer.Text, Sources: sources}
}

// FailedAnswerMessage creates a bot turn carrying the display text of err.
func FailedAnswerMessage(err error) Message {
	return Message{Sender: SenderBot, Text: DisplayMessage(err), Failed: true}
}

// Turn identifies a posted question awaiting its bot reply.
type Turn struct {
	// SessionID scopes the question.
	SessionID string

	// Query is the question text as entered.
	Query string

	// Index is the position of the user message in the transcript.
	Index int

	// Generation ties the turn to one transcript lifetime.
	Generation uint64
}
