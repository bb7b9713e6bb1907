package camera

import (
	"context"
	"sync"
	"sync/atomic"
)

// Mailbox is a single-slot Source fed by Publish. A new frame overwrites an
// unconsumed one and counts as a drop.
type Mailbox struct {
	mu     sync.Mutex
	frame  Frame
	full   bool
	closed bool
	seq    uint64

	drops atomic.Uint64
}

// NewMailbox creates an empty mailbox.
func NewMailbox() *Mailbox {
	return &Mailbox{}
}

// Start is a no-op for an open mailbox; frames arrive through Publish.
func (m *Mailbox) Start(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return &AcquireError{Kind: DeviceAbsent, Err: ErrClosed}
	}
	return ctx.Err()
}

// Publish stores f as the latest frame. It never blocks.
// Frames published after Close are discarded.
func (m *Mailbox) Publish(f Frame) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return
	}
	if m.full {
		m.drops.Add(1)
	}
	m.seq++
	if f.Seq == 0 {
		f.Seq = m.seq
	}
	m.frame = f
	m.full = true
}

// Latest takes the pending frame, if any.
func (m *Mailbox) Latest() (Frame, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if !m.full {
		return Frame{}, false
	}
	f := m.frame
	m.frame = Frame{}
	m.full = false
	return f, true
}

// Drops returns how many frames were overwritten before being taken.
func (m *Mailbox) Drops() uint64 {
	return m.drops.Load()
}

// Close releases the pending frame. Close is idempotent.
func (m *Mailbox) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.closed = true
	m.frame = Frame{}
	m.full = false
	return nil
}

// Reopen clears the closed flag so the mailbox can back a new session.
func (m *Mailbox) Reopen() {
	m.mu.Lock()
	m.closed = false
	m.mu.Unlock()
}

var _ Source = (*Mailbox)(nil)
