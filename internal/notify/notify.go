package notify

import (
	"fmt"
	"io"
	"sync"

	"go.uber.org/zap"
)

// Notifier is the user-feedback surface of the receipt flow. The deliverer
// guarantees exactly one Success or Error per invocation after Preparing;
// implementations just emit.
type Notifier interface {
	Preparing(msg string)
	Success(msg string)
	Error(msg string)
}

// Console writes notices to out (stderr in the CLI) and mirrors them to
// the logger.
type Console struct {
	out    io.Writer
	logger *zap.Logger
}

func NewConsole(out io.Writer, logger *zap.Logger) *Console {
	return &Console{out: out, logger: logger}
}

func (c *Console) Preparing(msg string) {
	fmt.Fprintf(c.out, "... %s\n", msg)
	c.logger.Info("notice", zap.String("kind", "preparing"), zap.String("msg", msg))
}

func (c *Console) Success(msg string) {
	fmt.Fprintf(c.out, "ok: %s\n", msg)
	c.logger.Info("notice", zap.String("kind", "success"), zap.String("msg", msg))
}

func (c *Console) Error(msg string) {
	fmt.Fprintf(c.out, "error: %s\n", msg)
	c.logger.Warn("notice", zap.String("kind", "error"), zap.String("msg", msg))
}

type Kind string

const (
	KindPreparing Kind = "preparing"
	KindSuccess   Kind = "success"
	KindError     Kind = "error"
)

type Event struct {
	Kind    Kind
	Message string
}

// Memory captures notices for tests.
type Memory struct {
	mu     sync.Mutex
	events []Event
}

func NewMemory() *Memory { return &Memory{} }

func (m *Memory) push(k Kind, msg string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.events = append(m.events, Event{Kind: k, Message: msg})
}

func (m *Memory) Preparing(msg string) { m.push(KindPreparing, msg) }
func (m *Memory) Success(msg string)   { m.push(KindSuccess, msg) }
func (m *Memory) Error(msg string)     { m.push(KindError, msg) }

func (m *Memory) Events() []Event {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]Event, len(m.events))
	copy(out, m.events)
	return out
}

// Terminal returns the events after the first Preparing notice.
func (m *Memory) Terminal() []Event {
	var out []Event
	for _, e := range m.Events() {
		if e.Kind != KindPreparing {
			out = append(out, e)
		}
	}
	return out
}
