// Package session implements the interaction controller: the single owner of
// a chat session's transcript, draft and pending simulated reply.
//
// The controller is a two-state machine. Submitting a non-blank draft while
// Idle appends a user message and schedules one delayed assistant reply;
// while that reply is pending every submission is ignored. Teardown cancels
// the pending reply, after which the controller never mutates again.
package session

import (
	"math/rand/v2"
	"strings"
	"sync"
	"time"

	"copilotdesk/internal/config"
	"copilotdesk/internal/conversation"
	"copilotdesk/internal/logging"
	"copilotdesk/internal/reply"

	"go.uber.org/zap"
)

// State is the controller's interaction state.
type State int

const (
	StateIdle State = iota
	StateAwaitingReply
)

// String returns the log name of the state.
func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateAwaitingReply:
		return "awaiting_reply"
	default:
		return "unknown"
	}
}

// eventBuffer bounds Events(). A full buffer drops the notification; readers
// re-read the whole snapshot so nothing is lost but a redundant redraw.
const eventBuffer = 16

// Controller owns one chat session. All methods are safe for concurrent use;
// the reply timer fires on its own goroutine.
type Controller struct {
	mu sync.Mutex

	store *conversation.Store
	synth *reply.Synthesizer
	sched Scheduler
	rng   *rand.Rand

	minDelay time.Duration
	maxDelay time.Duration

	logger *zap.Logger

	state  State
	draft  string
	token  uint64      // identifies the pending reply; bumped on every schedule
	cancel func() bool // stops the pending reply timer
	closed bool

	events       chan Event
	teardownOnce sync.Once
}

// Option configures a Controller.
type Option func(*Controller)

// WithScheduler replaces the time.AfterFunc scheduler.
func WithScheduler(s Scheduler) Option {
	return func(c *Controller) { c.sched = s }
}

// WithSynthesizer replaces the built-in reply rules.
func WithSynthesizer(s *reply.Synthesizer) Option {
	return func(c *Controller) { c.synth = s }
}

// WithDelayWindow sets the reply latency bounds, drawn uniformly from [lo, hi).
func WithDelayWindow(lo, hi time.Duration) Option {
	return func(c *Controller) {
		if hi < lo {
			lo, hi = hi, lo
		}
		c.minDelay, c.maxDelay = lo, hi
	}
}

// WithRand sets the random source used for reply delays.
func WithRand(r *rand.Rand) Option {
	return func(c *Controller) { c.rng = r }
}

// WithLogger sets the controller's logger.
func WithLogger(l *zap.Logger) Option {
	return func(c *Controller) { c.logger = l }
}

// NewController starts a session seeded with the welcome message.
func NewController(opts ...Option) *Controller {
	c := &Controller{
		store:    conversation.NewStore(conversation.WelcomeMessage()),
		synth:    reply.New(),
		sched:    TimerScheduler{},
		minDelay: config.DefaultMinDelay,
		maxDelay: config.DefaultMaxDelay,
		state:    StateIdle,
		events:   make(chan Event, eventBuffer),
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.logger == nil {
		c.logger = logging.Get(logging.CategorySession)
	}
	return c
}

// Submit sends text as a user message. Blank text, a pending reply, or a torn
// down controller make it a no-op that returns false.
func (c *Controller) Submit(text string) bool {
	prompt := strings.TrimSpace(text)

	c.mu.Lock()
	defer c.mu.Unlock()

	if prompt == "" || c.closed || c.state != StateIdle {
		c.logger.Debug("submit ignored",
			zap.Bool("blank", prompt == ""),
			zap.Bool("closed", c.closed),
			zap.Stringer("state", c.state))
		return false
	}

	msg := conversation.NewMessage(conversation.RoleUser, prompt)
	c.store.Append(msg)
	c.draft = ""
	c.state = StateAwaitingReply

	c.token++
	token := c.token
	delay := c.nextDelay()
	c.cancel = c.sched.Schedule(delay, func() { c.deliver(token, prompt) })

	c.logger.Info("user message appended",
		zap.String("id", msg.ID),
		zap.Duration("reply_delay", delay))
	c.emit(Event{Kind: EventUserMessage, Message: msg, State: c.state})
	return true
}

// deliver appends the assistant reply for the submission identified by token.
func (c *Controller) deliver(token uint64, prompt string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed || c.state != StateAwaitingReply || token != c.token {
		c.logger.Debug("stale reply dropped", zap.Uint64("token", token))
		return
	}

	rule, matched := c.synth.Match(prompt)
	msg := conversation.NewMessage(conversation.RoleAssistant, c.synth.Synthesize(prompt))
	msg.Verbatim = !matched
	c.store.Append(msg)
	c.state = StateIdle
	c.cancel = nil

	ruleName := "fallback"
	if matched {
		ruleName = rule.Name
	}
	c.logger.Info("assistant reply appended",
		zap.String("id", msg.ID),
		zap.String("rule", ruleName))
	c.emit(Event{Kind: EventAssistantMessage, Message: msg, State: c.state})
}

// nextDelay draws the reply latency. Caller holds c.mu.
func (c *Controller) nextDelay() time.Duration {
	span := int64(c.maxDelay - c.minDelay)
	if span <= 0 {
		return c.minDelay
	}
	if c.rng != nil {
		return c.minDelay + time.Duration(c.rng.Int64N(span))
	}
	return c.minDelay + time.Duration(rand.Int64N(span))
}

// SelectStarter copies a quick-start prompt into the draft. It never submits,
// and is a no-op while a reply is pending.
func (c *Controller) SelectStarter(prompt string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed || c.state != StateIdle {
		return false
	}
	c.draft = prompt
	c.emit(Event{Kind: EventDraftChanged, State: c.state, Draft: c.draft})
	return true
}

// SetDraft records the composer text. Ignored while a reply is pending.
func (c *Controller) SetDraft(text string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed || c.state != StateIdle {
		return
	}
	c.draft = text
}

// Draft returns the current composer text.
func (c *Controller) Draft() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.draft
}

// State returns the current interaction state.
func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Awaiting reports whether a reply is pending.
func (c *Controller) Awaiting() bool {
	return c.State() == StateAwaitingReply
}

// Messages returns a snapshot of the transcript.
func (c *Controller) Messages() []conversation.Message {
	return c.store.Messages()
}

// Reset cancels any pending reply and restores the seeded transcript.
func (c *Controller) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return
	}
	c.stopPending()
	c.store.ReplaceAll([]conversation.Message{conversation.WelcomeMessage()})
	c.draft = ""
	c.state = StateIdle

	c.logger.Info("conversation reset")
	c.emit(Event{Kind: EventReset, State: c.state})
}

// Events delivers change notifications. The channel is closed by Teardown.
func (c *Controller) Events() <-chan Event {
	return c.events
}

// Teardown cancels any pending reply and freezes the session. Safe to call
// more than once.
func (c *Controller) Teardown() {
	c.teardownOnce.Do(func() {
		c.mu.Lock()
		defer c.mu.Unlock()

		c.stopPending()
		c.closed = true
		close(c.events)
		c.logger.Info("session torn down", zap.Int("messages", c.store.Len()))
	})
}

// stopPending cancels the pending timer and invalidates its token.
// Caller holds c.mu.
func (c *Controller) stopPending() {
	if c.cancel != nil {
		c.cancel()
		c.cancel = nil
	}
	c.token++
}

// emit sends without blocking. Caller holds c.mu, which orders it before close.
func (c *Controller) emit(ev Event) {
	if c.closed {
		return
	}
	select {
	case c.events <- ev:
	default:
	}
}
