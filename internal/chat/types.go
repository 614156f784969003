package chat

import (
	"net"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// State is the protocol state of a session.
type State int

const (
	StateUnauthenticated State = iota
	StateIdle
	StateInRoom
)

func (s State) String() string {
	switch s {
	case StateUnauthenticated:
		return "unauthenticated"
	case StateIdle:
		return "idle"
	case StateInRoom:
		return "in_room"
	default:
		return "unknown"
	}
}

// Session is the server-side state of one connection. Every field except out
// is touched only by the reactor goroutine.
type Session struct {
	ID     string
	Conn   net.Conn
	Remote string

	nick    string
	state   State
	room    *Room
	pending []byte // bytes received but not yet terminated by '\n'
	out     *outbox

	logger zerolog.Logger
}

func newSession(conn net.Conn, maxOutbound int, logger zerolog.Logger) *Session {
	s := &Session{
		ID:    uuid.NewString(),
		Conn:  conn,
		state: StateUnauthenticated,
		out:   newOutbox(maxOutbound),
	}
	if conn != nil {
		s.Remote = conn.RemoteAddr().String()
	}
	s.logger = logger.With().Str("session", s.ID).Str("remote", s.Remote).Logger()
	return s
}

func (s *Session) Nick() string { return s.nick }
func (s *Session) State() State { return s.state }
func (s *Session) Room() *Room { return s.room }

type EventType int

const (
	EventAccept EventType = iota
	EventRead
	EventClosed
	EventWriteFailed
	EventStats
)

func (t EventType) String() string {
	switch t {
	case EventAccept:
		return "accept"
	case EventRead:
		return "read"
	case EventClosed:
		return "closed"
	case EventWriteFailed:
		return "write_failed"
	case EventStats:
		return "stats"
	default:
		return "unknown"
	}
}

type Event struct {
	Type    EventType
	Session *Session
	Data    []byte     // EventRead
	Err     error      // EventClosed, EventWriteFailed
	Reply   chan Stats // EventStats
}

// Stats is a point-in-time view of the reactor state.
type Stats struct {
	Sessions int        `json:"sessions"`
	Rooms    []RoomInfo `json:"rooms"`
}

type RoomInfo struct {
	Name    string `json:"name"`
	Members int    `json:"members"`
}
