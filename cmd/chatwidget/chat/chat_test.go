package chatcmder

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"github.com/spf13/cobra"

	"github.com/papercomputeco/chatwidget/pkg/chat"
)

var _ = Describe("Chat Command", func() {
	var (
		ctx    context.Context
		server *httptest.Server
	)

	BeforeEach(func() {
		ctx = context.Background()
		GinkgoT().Setenv("HOME", GinkgoT().TempDir())

		server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			var req chat.ChatRequest
			data, _ := io.ReadAll(r.Body)
			_ = json.Unmarshal(data, &req)
			if req.Question == "break" {
				w.WriteHeader(http.StatusInternalServerError)
				return
			}
			_ = json.NewEncoder(w).Encode(chat.NewChatResponse("re: " + req.Question))
		}))
	})

	AfterEach(func() {
		server.Close()
	})

	// newLineModeCmd builds the command with the full-screen widget disabled.
	newLineModeCmd := func() *cobra.Command {
		return newChatCmd(&chatCommander{interactive: func() bool { return false }})
	}

	It("answers each input line in order", func() {
		var out bytes.Buffer
		cmd := newLineModeCmd()
		cmd.SetIn(strings.NewReader("first\n\n   \nsecond\n"))
		cmd.SetOut(&out)
		cmd.SetArgs([]string{"--endpoint", server.URL})

		Expect(cmd.ExecuteContext(ctx)).To(Succeed())
		Expect(out.String()).To(Equal("re: first\nre: second\n"))
	})

	It("prints the apology for a failed exchange and keeps going", func() {
		var out bytes.Buffer
		cmd := newLineModeCmd()
		cmd.SetIn(strings.NewReader("break\nafter\n"))
		cmd.SetOut(&out)
		cmd.SetArgs([]string{"--endpoint", server.URL})

		Expect(cmd.ExecuteContext(ctx)).To(Succeed())
		Expect(out.String()).To(Equal(chat.FallbackText + "\nre: after\n"))
	})

	It("prints a configured greeting first", func() {
		dir := GinkgoT().TempDir()
		path := filepath.Join(dir, "chatwidget.toml")
		Expect(os.WriteFile(path, []byte("[widget]\ngreetings = [\"Welcome aboard!\"]\n"), 0o644)).To(Succeed())

		var out bytes.Buffer
		cmd := newLineModeCmd()
		cmd.SetIn(strings.NewReader("hi\n"))
		cmd.SetOut(&out)
		cmd.SetArgs([]string{"--config", path, "--endpoint", server.URL})

		Expect(cmd.ExecuteContext(ctx)).To(Succeed())
		Expect(out.String()).To(Equal("Welcome aboard!\nre: hi\n"))
	})

	It("logs failed exchanges to stderr in line mode", func() {
		var out, errOut bytes.Buffer
		cmd := newLineModeCmd()
		cmd.SetIn(strings.NewReader("break\n"))
		cmd.SetOut(&out)
		cmd.SetErr(&errOut)
		cmd.SetArgs([]string{"--endpoint", server.URL})

		Expect(cmd.ExecuteContext(ctx)).To(Succeed())
		Expect(out.String()).To(Equal(chat.FallbackText + "\n"))
		Expect(errOut.String()).To(ContainSubstring("exchange failed"))
	})

	It("writes logs to the requested file", func() {
		logPath := filepath.Join(GinkgoT().TempDir(), "widget.log")

		cmd := newLineModeCmd()
		cmd.SetIn(strings.NewReader("break\n"))
		cmd.SetOut(io.Discard)
		cmd.SetErr(io.Discard)
		cmd.SetArgs([]string{"--endpoint", server.URL, "--log-file", logPath})

		Expect(cmd.ExecuteContext(ctx)).To(Succeed())

		data, err := os.ReadFile(logPath)
		Expect(err).NotTo(HaveOccurred())
		Expect(string(data)).To(ContainSubstring("exchange failed"))
	})
})
