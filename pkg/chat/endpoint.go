package chat

// ResponsePath is the route that turns a question into an answer.
const ResponsePath = "/get_response/"

// Icon paths used by the browser widget.
const (
	AssistantIconPath = "/static/images/chatbot-icon.png"
	UserIconPath      = "/static/images/user-icon.png"
)
