// Package proxy hosts the browser chat widget and forwards its questions to
// an answering backend.
package proxy

import (
	"encoding/json"
	"errors"
	"io/fs"
	"net/http"
	"strings"
	"sync/atomic"
	"time"

	"github.com/gofiber/adaptor/v2"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/papercomputeco/chatwidget/pkg/chat"
	"github.com/papercomputeco/chatwidget/pkg/client"
	"github.com/papercomputeco/chatwidget/pkg/logger"
	"github.com/papercomputeco/chatwidget/web"
)

// Proxy serves the widget page and assets and relays each question to the
// upstream backend. It keeps no conversation state.
type Proxy struct {
	config     Config
	upstream   atomic.Pointer[upstream]
	logger     *zap.Logger
	httpClient *http.Client
	server     *fiber.App
}

// upstream pairs a backend URL with the client posting to it so both are
// swapped together.
type upstream struct {
	url    string
	client *client.Client
}

// New creates a new Proxy.
func New(config Config, logger *zap.Logger) (*Proxy, error) {
	if config.UpstreamURL == "" {
		return nil, errors.New("upstream URL is required")
	}

	app := fiber.New(fiber.Config{
		// Disable startup message for cleaner logs
		DisableStartupMessage: true,
	})

	p := &Proxy{
		config: config,
		logger: logger,
		server: app,
		httpClient: &http.Client{
			Timeout: config.UpstreamTimeout,
		},
	}
	p.SetUpstream(config.UpstreamURL)
	p.routes(app)

	return p, nil
}

func (p *Proxy) routes(app *fiber.App) {
	origins := p.config.AllowOrigins
	if origins == "" {
		origins = "*"
	}
	app.Use(cors.New(cors.Config{
		AllowOrigins: origins,
		AllowMethods: "GET,POST,OPTIONS",
		AllowHeaders: "Content-Type",
	}))

	app.Get("/", p.handlePage)
	app.Get("/static/*", adaptor.HTTPHandler(
		http.StripPrefix("/static", http.FileServer(filesOnly{http.FS(web.Static())})),
	))
	app.Post(chat.ResponsePath, p.handleResponse)

	// Health check
	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(map[string]string{"status": "ok"})
	})
}

// Run starts the server on the configured listening address.
func (p *Proxy) Run() error {
	p.logger.Info("starting widget server",
		zap.String("listen", p.config.ListenAddr),
		zap.String("upstream", p.Upstream()),
	)

	return p.server.Listen(p.config.ListenAddr)
}

// Shutdown stops accepting connections and waits for in-flight requests.
func (p *Proxy) Shutdown() error {
	return p.server.Shutdown()
}

// Upstream returns the backend questions are currently forwarded to.
func (p *Proxy) Upstream() string {
	return p.upstream.Load().url
}

// SetUpstream switches the backend for subsequent questions. Requests already
// in flight finish against the previous backend.
func (p *Proxy) SetUpstream(url string) {
	url = strings.TrimRight(url, "/")
	p.upstream.Store(&upstream{
		url: url,
		client: client.New(url,
			client.WithHTTPClient(p.httpClient),
			client.WithLogger(p.logger),
		),
	})
}

func (p *Proxy) handlePage(c *fiber.Ctx) error {
	c.Type("html", "utf-8")
	return c.Send(web.Page())
}

// handleResponse validates a question and relays it to the upstream backend.
// The answer is passed back untouched.
func (p *Proxy) handleResponse(c *fiber.Ctx) error {
	startTime := time.Now()
	requestID := uuid.NewString()
	log := p.logger.With(zap.String("request_id", requestID))

	var req chat.ChatRequest
	if err := json.Unmarshal(c.Body(), &req); err != nil {
		log.Error("failed to parse request", zap.Error(err))
		return c.Status(fiber.StatusBadRequest).JSON(chat.ErrorResponse{Error: "invalid request body"})
	}

	if strings.TrimSpace(req.Question) == "" {
		return c.Status(fiber.StatusBadRequest).JSON(chat.ErrorResponse{Error: "question is required"})
	}

	log.Debug("received question",
		zap.String("content_preview", logger.Preview(req.Question, 100)),
	)

	answer, err := p.upstream.Load().client.Ask(c.UserContext(), req.Question)
	if err != nil {
		log.Error("failed to forward request", zap.Error(err))
		return c.Status(fiber.StatusBadGateway).JSON(chat.ErrorResponse{Error: "upstream request failed"})
	}

	log.Info("question answered",
		zap.String("content_preview", logger.Preview(answer, 100)),
		zap.Duration("duration", time.Since(startTime)),
	)

	return c.JSON(chat.NewChatResponse(answer))
}

// filesOnly hides directories so the asset tree is never listed.
type filesOnly struct {
	http.FileSystem
}

func (f filesOnly) Open(name string) (http.File, error) {
	file, err := f.FileSystem.Open(name)
	if err != nil {
		return nil, err
	}

	info, err := file.Stat()
	if err != nil {
		file.Close()
		return nil, err
	}
	if info.IsDir() {
		file.Close()
		return nil, fs.ErrNotExist
	}

	return file, nil
}
