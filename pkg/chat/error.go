// Package chat holds the wire and conversation types shared by the widget
// controller, the transport client and the host server.
package chat

// ErrorResponse is the body of a non-2xx reply from the host server.
type ErrorResponse struct {
	Error string `json:"error"`
}
