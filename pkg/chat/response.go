package chat

// ChatResponse is the body returned by the response endpoint.
// Answer is a pointer so a reply without the field can be told apart from an
// empty answer.
type ChatResponse struct {
	Answer *string `json:"answer"`
}

// NewChatResponse wraps an answer for encoding.
func NewChatResponse(answer string) ChatResponse {
	return ChatResponse{Answer: &answer}
}
