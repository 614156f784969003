package chat

import (
	"context"
	"errors"
	"io"
	"net"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"
)

// attach registers a piped session directly with the registry. No writer
// goroutine is started, so output stays queued for drain.
func attach(t *testing.T, r *Reactor, maxOutbound int) *Session {
	t.Helper()
	server, client := net.Pipe()
	t.Cleanup(func() { _ = client.Close() })
	s := newSession(server, maxOutbound, zerolog.Nop())
	r.reg.add(s)
	return s
}

func feed(r *Reactor, s *Session, text string) {
	r.handle(Event{Type: EventRead, Session: s, Data: []byte(text)})
}

func TestReactor_DispatchesLinesOfOneReadInOrder(t *testing.T) {
	r := NewReactor(Options{}, nil)
	s := attach(t, r, 0)

	feed(r, s, "/nick alice\n/join x\n/leave\n")
	expectLines(t, s, "OK", "OK", "OK")
	if s.State() != StateIdle {
		t.Fatalf("expected idle, got %v", s.State())
	}
}

func TestReactor_SplitReadsFormOneCommand(t *testing.T) {
	r := NewReactor(Options{}, nil)
	s := attach(t, r, 0)

	feed(r, s, "/nick a")
	expectLines(t, s)
	feed(r, s, "lice\n")
	expectLines(t, s, "OK")
	if s.Nick() != "alice" {
		t.Fatalf("unexpected nick %q", s.Nick())
	}
}

func TestReactor_DisconnectInRoomAnnouncesOnce(t *testing.T) {
	r := NewReactor(Options{}, nil)
	alice := attach(t, r, 0)
	bob := attach(t, r, 0)
	carol := attach(t, r, 0)
	feed(r, alice, "/nick alice\n/join lobby\n")
	feed(r, bob, "/nick bob\n/join lobby\n")
	feed(r, carol, "/nick carol\n")
	drain(alice)
	drain(bob)
	drain(carol)

	r.handle(Event{Type: EventClosed, Session: bob, Err: io.EOF})
	r.handle(Event{Type: EventClosed, Session: bob, Err: errors.New("reset")})
	r.handle(Event{Type: EventWriteFailed, Session: bob, Err: errors.New("broken pipe")})

	expectLines(t, alice, "LEFT bob")
	expectLines(t, carol)
	if r.reg.has(bob) || r.reg.byNick("bob") != nil {
		t.Fatalf("bob still registered")
	}
	if r.reg.Rooms().Find("lobby").Has(bob) {
		t.Fatalf("bob still in lobby")
	}

	// Events for a torn down session are ignored.
	feed(r, bob, "hello\n")
	expectLines(t, alice)
}

func TestReactor_ByeStopsDispatchAndAnnounces(t *testing.T) {
	r := NewReactor(Options{}, nil)
	alice := attach(t, r, 0)
	bob := attach(t, r, 0)
	feed(r, alice, "/nick alice\n/join lobby\n")
	feed(r, bob, "/nick bob\n/join lobby\n")
	drain(alice)
	drain(bob)

	feed(r, alice, "/bye\nstill here\n")
	expectLines(t, alice, "BYE")
	expectLines(t, bob, "LEFT alice")
	if r.reg.has(alice) {
		t.Fatalf("alice still registered")
	}
	if err := alice.out.push("late"); !errors.Is(err, ErrOutboxClosed) {
		t.Fatalf("expected closed outbox, got %v", err)
	}

	// The nickname is free again.
	carol := attach(t, r, 0)
	feed(r, carol, "/nick alice\n")
	expectLines(t, carol, "OK")
}

func TestReactor_SlowMemberIsDroppedNotWaitedFor(t *testing.T) {
	r := NewReactor(Options{}, nil)
	alice := attach(t, r, 0)
	slow := attach(t, r, 24)
	feed(r, alice, "/nick alice\n/join lobby\n")
	feed(r, slow, "/nick slow\n/join lobby\n")
	drain(alice)
	drain(slow)

	feed(r, alice, strings.Repeat("x", 32)+"\n")

	expectLines(t, alice, "MESSAGE alice "+strings.Repeat("x", 32), "LEFT slow")
	if r.reg.has(slow) {
		t.Fatalf("slow member should have been dropped")
	}
}

func TestReactor_PendingInputLimit(t *testing.T) {
	r := NewReactor(Options{MaxPendingInput: 4}, nil)
	s := attach(t, r, 0)

	feed(r, s, "abcdefgh")
	if r.reg.has(s) {
		t.Fatalf("session should be dropped after overflowing its input buffer")
	}
}

func TestReactor_StatsAndStop(t *testing.T) {
	r := NewReactor(Options{}, nil)
	s := attach(t, r, 0)
	feed(r, s, "/nick alice\n/join lobby\n")

	go r.Run()

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	st, err := r.Stats(ctx)
	if err != nil {
		t.Fatalf("stats: %v", err)
	}
	if st.Sessions != 1 || len(st.Rooms) != 1 || st.Rooms[0] != (RoomInfo{Name: "lobby", Members: 1}) {
		t.Fatalf("unexpected stats: %+v", st)
	}

	r.Stop()
	r.Wait()
	if _, err := r.Stats(ctx); !errors.Is(err, ErrReactorStopped) {
		t.Fatalf("expected ErrReactorStopped, got %v", err)
	}
	if r.reg.Len() != 0 {
		t.Fatalf("sessions left after stop: %d", r.reg.Len())
	}
}
