// Package web embeds the browser rendition of the chat widget.
package web

import (
	"embed"
	"io/fs"
)

//go:embed templates/chatbot.html
var page []byte

//go:embed static
var static embed.FS

// Page returns the chatbot HTML page.
func Page() []byte {
	return page
}

// Static returns the asset tree served under /static.
func Static() fs.FS {
	sub, err := fs.Sub(static, "static")
	if err != nil {
		panic("embedded static tree missing: " + err.Error())
	}
	return sub
}
