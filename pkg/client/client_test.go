package client_test

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/papercomputeco/chatwidget/pkg/chat"
	"github.com/papercomputeco/chatwidget/pkg/client"
)

var _ = Describe("Client", func() {
	var (
		ctx     context.Context
		handler http.HandlerFunc
		server  *httptest.Server
	)

	BeforeEach(func() {
		ctx = context.Background()
		handler = nil
		server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			handler(w, r)
		}))
	})

	AfterEach(func() {
		server.Close()
	})

	It("posts the question as JSON to the response path", func() {
		var (
			gotPath        string
			gotMethod      string
			gotContentType string
			gotBody        chat.ChatRequest
		)
		handler = func(w http.ResponseWriter, r *http.Request) {
			gotPath = r.URL.Path
			gotMethod = r.Method
			gotContentType = r.Header.Get("Content-Type")
			data, _ := io.ReadAll(r.Body)
			_ = json.Unmarshal(data, &gotBody)
			_, _ = w.Write([]byte(`{"answer":"hi"}`))
		}

		_, err := client.New(server.URL).Ask(ctx, "where to eat?")
		Expect(err).NotTo(HaveOccurred())

		Expect(gotPath).To(Equal("/get_response/"))
		Expect(gotMethod).To(Equal(http.MethodPost))
		Expect(gotContentType).To(Equal("application/json"))
		Expect(gotBody.Question).To(Equal("where to eat?"))
	})

	It("returns the answer verbatim", func() {
		handler = func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte(`{"answer":"  Try *Lisbon*\n"}`))
		}

		answer, err := client.New(server.URL).Ask(ctx, "q")
		Expect(err).NotTo(HaveOccurred())
		Expect(answer).To(Equal("  Try *Lisbon*\n"))
	})

	It("tolerates a trailing slash on the base URL", func() {
		c := client.New(server.URL + "/")
		Expect(c.Endpoint()).To(Equal(server.URL + "/get_response/"))
	})

	It("returns a StatusError for non-2xx replies", func() {
		handler = func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusInternalServerError)
			_, _ = w.Write([]byte(`{"detail":"boom"}`))
		}

		_, err := client.New(server.URL).Ask(ctx, "q")
		var statusErr *client.StatusError
		Expect(errors.As(err, &statusErr)).To(BeTrue())
		Expect(statusErr.Code).To(Equal(http.StatusInternalServerError))
		Expect(statusErr.Body).To(ContainSubstring("boom"))
	})

	It("fails on malformed JSON", func() {
		handler = func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte(`not json`))
		}

		_, err := client.New(server.URL).Ask(ctx, "q")
		Expect(err).To(MatchError(ContainSubstring("unmarshal response")))
	})

	It("fails when the answer field is missing", func() {
		handler = func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte(`{"reply":"x"}`))
		}

		_, err := client.New(server.URL).Ask(ctx, "q")
		Expect(err).To(MatchError(client.ErrMissingAnswer))
	})

	It("fails when the backend is unreachable", func() {
		url := server.URL
		server.Close()

		_, err := client.New(url).Ask(ctx, "q")
		Expect(err).To(MatchError(ContainSubstring("do request")))
	})

	It("stops when the context is cancelled", func() {
		release := make(chan struct{})
		defer close(release)
		handler = func(w http.ResponseWriter, r *http.Request) {
			select {
			case <-release:
			case <-r.Context().Done():
			}
		}

		cctx, cancel := context.WithCancel(ctx)
		cancel()

		_, err := client.New(server.URL).Ask(cctx, "q")
		Expect(errors.Is(err, context.Canceled)).To(BeTrue())
	})
})
