package chat

// Role identifies who authored a Message.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// PlaceholderText is shown while an answer is outstanding.
const PlaceholderText = "typing..."

// FallbackText replaces the answer when the exchange fails for any reason.
const FallbackText = "Sorry, something went wrong. Please try again."

// Message is a single entry of the conversation log.
type Message struct {
	Role Role   `json:"role"`
	Text string `json:"text"`

	// Pending marks the transient typing placeholder.
	Pending bool `json:"-"`
}

// UserMessage builds a message authored by the user.
func UserMessage(text string) Message {
	return Message{Role: RoleUser, Text: text}
}

// AssistantMessage builds a message authored by the assistant.
func AssistantMessage(text string) Message {
	return Message{Role: RoleAssistant, Text: text}
}

// Placeholder builds the typing indicator.
func Placeholder() Message {
	return Message{Role: RoleAssistant, Text: PlaceholderText, Pending: true}
}

// Fallback builds the apology shown after a failed exchange.
func Fallback() Message {
	return Message{Role: RoleAssistant, Text: FallbackText}
}
