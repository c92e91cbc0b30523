// Package widget implements the chat widget controller: panel visibility,
// the input field, and the conversation log fed by one outbound question per
// sent message.
package widget

import (
	"context"
	"math/rand/v2"
	"strings"
	"sync"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/papercomputeco/chatwidget/pkg/chat"
	"github.com/papercomputeco/chatwidget/pkg/logger"
)

// EnterKey is the key name that submits the input field.
const EnterKey = "Enter"

// Asker turns a question into an answer. Any error is treated as a failed
// exchange.
type Asker interface {
	Ask(ctx context.Context, question string) (string, error)
}

// AskerFunc adapts a function to the Asker interface.
type AskerFunc func(ctx context.Context, question string) (string, error)

// Ask calls f.
func (f AskerFunc) Ask(ctx context.Context, question string) (string, error) {
	return f(ctx, question)
}

// entry is a message plus the key used to find its placeholder again.
type entry struct {
	key uint64
	msg chat.Message
}

// Controller is the chat widget state. It is safe for concurrent use; any
// number of exchanges may be in flight and their replies are appended in
// completion order.
type Controller struct {
	id        string
	asker     Asker
	logger    *zap.Logger
	greetings []string

	mu        sync.Mutex
	open      bool
	input     string
	entries   []entry
	nextKey   uint64
	listeners []func()
}

// Option configures a Controller.
type Option func(*Controller)

// WithLogger sets the diagnostic logger failed exchanges are reported to.
func WithLogger(logger *zap.Logger) Option {
	return func(c *Controller) {
		c.logger = logger
	}
}

// WithGreetings sets the messages Greet picks from.
func WithGreetings(greetings ...string) Option {
	return func(c *Controller) {
		c.greetings = append([]string(nil), greetings...)
	}
}

// New creates a closed widget with an empty conversation.
func New(asker Asker, opts ...Option) *Controller {
	c := &Controller{
		id:     uuid.NewString(),
		asker:  asker,
		logger: zap.NewNop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	c.logger = c.logger.With(zap.String("widget", c.id))

	return c
}

// ID identifies this widget instance in logs.
func (c *Controller) ID() string {
	return c.id
}

// Subscribe registers fn to be called after every visible change. Listeners
// run on the goroutine that made the change, outside the controller lock.
func (c *Controller) Subscribe(fn func()) {
	c.mu.Lock()
	c.listeners = append(c.listeners, fn)
	c.mu.Unlock()
}

func (c *Controller) notify() {
	c.mu.Lock()
	listeners := append([]func(){}, c.listeners...)
	c.mu.Unlock()

	for _, fn := range listeners {
		fn()
	}
}

// Open shows the panel.
func (c *Controller) Open() {
	c.setOpen(true)
}

// Close hides the panel.
func (c *Controller) Close() {
	c.setOpen(false)
}

// Toggle flips panel visibility.
func (c *Controller) Toggle() {
	c.mu.Lock()
	c.open = !c.open
	open := c.open
	c.mu.Unlock()

	c.logger.Debug("panel visibility changed", zap.Bool("open", open))
	c.notify()
}

func (c *Controller) setOpen(open bool) {
	c.mu.Lock()
	changed := c.open != open
	c.open = open
	c.mu.Unlock()

	if changed {
		c.logger.Debug("panel visibility changed", zap.Bool("open", open))
		c.notify()
	}
}

// IsOpen reports whether the panel is visible.
func (c *Controller) IsOpen() bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.open
}

// SetInput replaces the contents of the input field.
func (c *Controller) SetInput(text string) {
	c.mu.Lock()
	c.input = text
	c.mu.Unlock()

	c.notify()
}

// Input returns the contents of the input field.
func (c *Controller) Input() string {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.input
}

// Submit sends the input field as a message, clearing the field before the
// exchange starts. It returns nil when the input was blank.
func (c *Controller) Submit(ctx context.Context) *Reply {
	c.mu.Lock()
	text := c.input
	c.input = ""
	c.mu.Unlock()

	return c.SendMessage(ctx, text)
}

// HandleKey is the input field's key handler; only EnterKey submits.
func (c *Controller) HandleKey(ctx context.Context, key string) *Reply {
	if key != EnterKey {
		return nil
	}

	return c.Submit(ctx)
}

// Messages returns a snapshot of the conversation, placeholders included.
func (c *Controller) Messages() []chat.Message {
	c.mu.Lock()
	defer c.mu.Unlock()

	msgs := make([]chat.Message, len(c.entries))
	for i, e := range c.entries {
		msgs[i] = e.msg
	}

	return msgs
}

// Greet appends one of the configured greetings. It does nothing when no
// greetings are configured.
func (c *Controller) Greet() {
	if len(c.greetings) == 0 {
		return
	}

	greeting := c.greetings[rand.IntN(len(c.greetings))]

	c.mu.Lock()
	c.appendLocked(chat.AssistantMessage(greeting))
	c.mu.Unlock()

	c.notify()
}

// SendMessage appends text as a user message followed by a typing
// placeholder and asks the backend in the background. Blank text is ignored
// and yields a nil Reply.
func (c *Controller) SendMessage(ctx context.Context, text string) *Reply {
	question := strings.TrimSpace(text)
	if question == "" {
		return nil
	}

	c.mu.Lock()
	c.appendLocked(chat.UserMessage(question))
	placeholder := c.appendLocked(chat.Placeholder())
	c.mu.Unlock()

	c.logger.Debug("user message", zap.String("content_preview", logger.Preview(question, 50)))
	c.notify()

	reply := newReply()
	go c.exchange(ctx, question, placeholder, reply)

	return reply
}

func (c *Controller) exchange(ctx context.Context, question string, placeholder uint64, reply *Reply) {
	msg := chat.Fallback()

	answer, err := c.asker.Ask(ctx, question)
	if err != nil {
		c.logger.Warn("exchange failed", zap.Error(err))
	} else {
		msg = chat.AssistantMessage(answer)
		c.logger.Debug("assistant message", zap.String("content_preview", logger.Preview(answer, 50)))
	}

	c.mu.Lock()
	c.removeLocked(placeholder)
	c.appendLocked(msg)
	c.mu.Unlock()

	reply.resolve(msg, err)
	c.notify()
}

func (c *Controller) appendLocked(msg chat.Message) uint64 {
	c.nextKey++
	c.entries = append(c.entries, entry{key: c.nextKey, msg: msg})

	return c.nextKey
}

func (c *Controller) removeLocked(key uint64) {
	for i, e := range c.entries {
		if e.key == key {
			c.entries = append(c.entries[:i], c.entries[i+1:]...)
			return
		}
	}
}
