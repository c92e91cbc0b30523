package proxy

import "time"

// Config is the widget host server configuration.
type Config struct {
	// Address to listen on (e.g., ":8080")
	ListenAddr string

	// Backend that answers questions (e.g., "http://localhost:8000").
	// Questions are forwarded to UpstreamURL + "/get_response/".
	UpstreamURL string

	// Comma separated CORS origins, "*" for any
	AllowOrigins string

	// Upper bound on a forwarded request; zero means no bound
	UpstreamTimeout time.Duration
}
