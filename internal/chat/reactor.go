package chat

import (
	"context"
	"errors"
	"io"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

var ErrReactorStopped = errorString("reactor_stopped")

// Reactor is the single owner of all sessions and rooms. Connection goroutines
// only post events; every state change happens inside Run, one event at a
// time, so a broadcast is fully queued before the next event is looked at.
type Reactor struct {
	events   chan Event
	stopCh   chan struct{}
	doneCh   chan struct{}
	stopOnce sync.Once

	reg    *Registry
	framer Framer
	disp   *Dispatcher
	logger zerolog.Logger
}

func NewReactor(opts Options, logger *zerolog.Logger) *Reactor {
	opts = opts.withDefaults()
	if logger == nil {
		nop := zerolog.Nop()
		logger = &nop
	}
	l := logger.With().Str("component", "reactor").Logger()
	reg := NewRegistry()
	return &Reactor{
		events: make(chan Event, opts.EventBuffer),
		stopCh: make(chan struct{}),
		doneCh: make(chan struct{}),
		reg:    reg,
		framer: Framer{MaxPending: opts.MaxPendingInput},
		disp:   NewDispatcher(reg),
		logger: l,
	}
}

// Post hands an event to the loop. It returns false once the reactor stopped.
func (r *Reactor) Post(ev Event) bool {
	select {
	case r.events <- ev:
		return true
	case <-r.stopCh:
		return false
	}
}

// Stop signals the Run loop to exit.
func (r *Reactor) Stop() {
	r.stopOnce.Do(func() { close(r.stopCh) })
}

// Wait blocks until the Run loop has completely finished.
func (r *Reactor) Wait() {
	<-r.doneCh
}

// Stats asks the loop for a snapshot of sessions and rooms.
func (r *Reactor) Stats(ctx context.Context) (Stats, error) {
	reply := make(chan Stats, 1)
	select {
	case r.events <- Event{Type: EventStats, Reply: reply}:
	case <-r.stopCh:
		return Stats{}, ErrReactorStopped
	case <-ctx.Done():
		return Stats{}, ctx.Err()
	}
	select {
	case st := <-reply:
		return st, nil
	case <-r.stopCh:
		return Stats{}, ErrReactorStopped
	case <-ctx.Done():
		return Stats{}, ctx.Err()
	}
}

func (r *Reactor) Run() {
	defer close(r.doneCh)

	for {
		select {
		case ev := <-r.events:
			start := time.Now()
			r.handle(ev)
			EventProcessingDuration.WithLabelValues(ev.Type.String()).Observe(time.Since(start).Seconds())
		case <-r.stopCh:
			r.closeAll()
			return
		}
	}
}

func (r *Reactor) handle(ev Event) {
	switch ev.Type {
	case EventAccept:
		r.handleAccept(ev.Session)
	case EventRead:
		r.handleRead(ev.Session, ev.Data)
	case EventClosed:
		cause := "error"
		if errors.Is(ev.Err, io.EOF) {
			cause = "eof"
		}
		r.teardown(ev.Session, cause, ev.Err)
	case EventWriteFailed:
		r.teardown(ev.Session, "write_failed", ev.Err)
	case EventStats:
		ev.Reply <- r.reg.snapshot()
	}
	r.reap()
}

func (r *Reactor) handleAccept(s *Session) {
	r.reg.add(s)
	StartOutboundWriter(s.Conn, s.out, func(err error) {
		r.Post(Event{Type: EventWriteFailed, Session: s, Err: err})
	})
	ConnectedClients.Set(float64(r.reg.Len()))
	s.logger.Info().Msg("client connected")
}

func (r *Reactor) handleRead(s *Session, data []byte) {
	if !r.reg.has(s) {
		return
	}

	lines, err := r.framer.Feed(s, data)
	if err != nil {
		r.teardown(s, "input_overflow", err)
		return
	}

	for _, line := range lines {
		bye, err := r.disp.Dispatch(s, line)
		switch {
		case bye:
			r.teardown(s, "bye", nil)
		case errors.Is(err, ErrRoomVanished):
			r.teardown(s, "invariant", err)
		}
		r.reap()
		if !r.reg.has(s) {
			return
		}
	}
}

// reap tears down sessions whose outbound queue overflowed during fan-out.
// Their own LEFT broadcasts may doom further sessions, hence the loop.
func (r *Reactor) reap() {
	for {
		doomed := r.reg.takeDoomed()
		if len(doomed) == 0 {
			return
		}
		for _, d := range doomed {
			r.teardown(d.s, "outbound_overflow", d.err)
		}
	}
}

// teardown runs at most once per session: leave the room with a LEFT
// broadcast, forget the session, then release its connection. A "bye"
// teardown lets queued output (the BYE line) drain before closing.
func (r *Reactor) teardown(s *Session, cause string, err error) {
	if !r.reg.has(s) {
		return
	}

	r.reg.leaveRoom(s)
	r.reg.remove(s)

	if cause == "bye" {
		s.out.close()
	} else {
		s.out.abort()
		if cerr := s.Conn.Close(); cerr != nil {
			s.logger.Debug().Err(cerr).Msg("close connection")
		}
	}

	ConnectedClients.Set(float64(r.reg.Len()))
	DisconnectsTotal.WithLabelValues(cause).Inc()

	switch cause {
	case "bye", "eof":
		s.logger.Info().Str("nick", s.nick).Str("cause", cause).Msg("client disconnected")
	default:
		s.logger.Warn().Err(err).Str("nick", s.nick).Str("cause", cause).Msg("client dropped")
	}
}

// closeAll releases every connection when the loop stops. No broadcasts are
// sent since everybody is going away.
func (r *Reactor) closeAll() {
	r.logger.Info().Int("sessions", r.reg.Len()).Msg("closing all sessions")
	for _, s := range r.reg.sessions {
		r.reg.remove(s)
		s.out.abort()
		_ = s.Conn.Close()
		DisconnectsTotal.WithLabelValues("shutdown").Inc()
	}
	ConnectedClients.Set(0)
}
