package askcmder

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/papercomputeco/chatwidget/pkg/chat"
)

var _ = Describe("Ask Command", func() {
	var (
		ctx       context.Context
		questions []string
		status    int
		server    *httptest.Server
	)

	BeforeEach(func() {
		ctx = context.Background()
		questions = nil
		status = http.StatusOK
		GinkgoT().Setenv("HOME", GinkgoT().TempDir())

		server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			var req chat.ChatRequest
			data, _ := io.ReadAll(r.Body)
			_ = json.Unmarshal(data, &req)
			questions = append(questions, req.Question)

			w.WriteHeader(status)
			_ = json.NewEncoder(w).Encode(chat.NewChatResponse("Visit Alfama."))
		}))
	})

	AfterEach(func() {
		server.Close()
	})

	execute := func(args ...string) (string, error) {
		var out, errOut bytes.Buffer
		cmd := NewAskCmd()
		cmd.SetOut(&out)
		cmd.SetErr(&errOut)
		cmd.SetArgs(args)
		err := cmd.ExecuteContext(ctx)
		return out.String(), err
	}

	It("prints the answer", func() {
		out, err := execute("--endpoint", server.URL, "where", "to", "go?")
		Expect(err).NotTo(HaveOccurred())
		Expect(out).To(Equal("Visit Alfama.\n"))
		Expect(questions).To(Equal([]string{"where to go?"}))
	})

	It("prints the apology when the server fails", func() {
		status = http.StatusInternalServerError

		out, err := execute("--endpoint", server.URL, "hello")
		Expect(err).NotTo(HaveOccurred())
		Expect(out).To(Equal(chat.FallbackText + "\n"))
	})

	It("rejects a blank question without calling the server", func() {
		_, err := execute("--endpoint", server.URL, "   ")
		Expect(err).To(MatchError("question is blank"))
		Expect(questions).To(BeEmpty())
	})

	It("requires a question", func() {
		_, err := execute("--endpoint", server.URL)
		Expect(err).To(HaveOccurred())
	})
})
