package chat

import (
	"strings"
	"testing"

	"github.com/rs/zerolog"
)

func newTestDispatcher() (*Registry, *Dispatcher) {
	reg := NewRegistry()
	return reg, NewDispatcher(reg)
}

// connect registers a session that has no socket; its output stays in the
// outbox where drain can inspect it.
func connect(reg *Registry) *Session {
	s := newSession(nil, 0, zerolog.Nop())
	reg.add(s)
	return s
}

func drain(s *Session) []string {
	s.out.mu.Lock()
	data := s.out.buf
	s.out.buf = nil
	s.out.mu.Unlock()

	text := strings.TrimSuffix(string(data), "\n")
	if text == "" {
		return nil
	}
	return strings.Split(text, "\n")
}

func send(t *testing.T, d *Dispatcher, s *Session, line string) {
	t.Helper()
	if _, err := d.Dispatch(s, line); err != nil {
		t.Fatalf("dispatch %q: unexpected error %v", line, err)
	}
}

func expectLines(t *testing.T, s *Session, want ...string) {
	t.Helper()
	got := drain(s)
	if strings.Join(got, "|") != strings.Join(want, "|") {
		t.Fatalf("session %q got %q, want %q", s.nick, got, want)
	}
}

// login sets a nickname and optionally joins a room, discarding the replies.
func login(t *testing.T, d *Dispatcher, s *Session, nick, room string) {
	t.Helper()
	send(t, d, s, "/nick "+nick)
	if room != "" {
		send(t, d, s, "/join "+room)
	}
	drain(s)
}
