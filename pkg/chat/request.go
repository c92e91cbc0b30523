package chat

// ChatRequest is the body posted to the response endpoint.
type ChatRequest struct {
	Question string `json:"question"`
}
