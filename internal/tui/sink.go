package tui

import (
	"context"
	"errors"
	"sync"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/julianstephens/finlit/internal/models"
	"github.com/julianstephens/finlit/internal/utils"
)

// ErrViewClosed is returned for notifications that arrive after the view
// has exited. The poller keeps such reminders armed.
var ErrViewClosed = errors.New("watch view is closed")

// ProgramSink delivers notifications into a running program as FiredMsg.
type ProgramSink struct {
	send func(tea.Msg)
	now  func() time.Time

	done      chan struct{}
	closeOnce sync.Once
}

func NewProgramSink(p *tea.Program) *ProgramSink {
	return &ProgramSink{send: p.Send, now: utils.Now, done: make(chan struct{})}
}

// Close marks the program finished. Call it as soon as Run returns, since
// Send silently drops messages from then on.
func (s *ProgramSink) Close() {
	s.closeOnce.Do(func() { close(s.done) })
}

func (s *ProgramSink) Notify(ctx context.Context, r models.Reminder) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	select {
	case <-s.done:
		return ErrViewClosed
	default:
	}
	s.send(FiredMsg{Reminder: r, At: s.now()})
	return nil
}
