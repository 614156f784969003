package chat

import "strings"

// Dispatcher interprets framed lines against a session's state.
type Dispatcher struct {
	reg *Registry
}

func NewDispatcher(reg *Registry) *Dispatcher {
	return &Dispatcher{reg: reg}
}

// Dispatch handles one line from s. Protocol errors have already been
// answered with ERROR when they are returned. bye reports that s asked to
// disconnect and must now be torn down.
//
// ErrRoomVanished is returned, without a reply, when s claims a room that does
// not list it; the caller must drop the connection.
func (d *Dispatcher) Dispatch(s *Session, line string) (bye bool, err error) {
	if s.state == StateInRoom && (s.room == nil || !s.room.Has(s)) {
		s.logger.Error().Str("nick", s.nick).Msg("session in room state without membership")
		return false, ErrRoomVanished
	}

	kind, err := d.dispatch(s, line)
	MessagesTotal.WithLabelValues(kind).Inc()
	if err != nil {
		ProtocolErrorsTotal.WithLabelValues(err.Error()).Inc()
		s.logger.Debug().Err(err).Str("kind", kind).Msg("protocol error")
		d.reg.sendLine(s, "ERROR")
		return false, err
	}
	return kind == "bye", nil
}

func (d *Dispatcher) dispatch(s *Session, line string) (string, error) {
	if line == "" {
		return "empty", ErrEmptyLine
	}
	if strings.HasPrefix(line, "//") {
		return "message", d.handleMessage(s, line[1:])
	}
	if !strings.HasPrefix(line, "/") {
		return "message", d.handleMessage(s, line)
	}

	args := splitArgs(line)
	switch args[0] {
	case "/nick":
		return "nick", d.handleNick(s, args[1:])
	case "/join":
		return "join", d.handleJoin(s, args[1:])
	case "/leave":
		return "leave", d.handleLeave(s, args[1:])
	case "/priv":
		return "priv", d.handlePriv(s, line)
	case "/bye":
		return "bye", d.handleBye(s, args[1:])
	default:
		return "unknown", ErrUnknownCommand
	}
}

func (d *Dispatcher) handleNick(s *Session, args []string) error {
	if len(args) != 1 {
		return ErrBadArguments
	}
	nick := args[0]
	if d.reg.byNick(nick) != nil {
		return ErrNickTaken
	}

	old := s.nick
	d.reg.setNick(s, nick)
	if s.state == StateUnauthenticated {
		s.state = StateIdle
	}
	d.reg.sendLine(s, "OK")

	if s.state == StateInRoom {
		d.reg.broadcast(s.room, "NEWNICK "+old+" "+nick, s)
	}
	s.logger.Info().Str("old", old).Str("nick", nick).Msg("nickname set")
	return nil
}

func (d *Dispatcher) handleJoin(s *Session, args []string) error {
	if s.state == StateUnauthenticated {
		return ErrNotAuthenticated
	}
	if len(args) != 1 {
		return ErrBadArguments
	}
	name := args[0]

	if s.room != nil && s.room.Name == name {
		d.reg.sendLine(s, "OK")
		return nil
	}

	d.reg.leaveRoom(s)

	room, created := d.reg.rooms.FindOrCreate(name)
	d.reg.rooms.Add(s, room)
	s.room = room
	s.state = StateInRoom
	d.reg.sendLine(s, "OK")

	if !created {
		d.reg.broadcast(room, "JOINED "+s.nick, s)
	}
	s.logger.Info().Str("nick", s.nick).Str("room", name).Bool("created", created).Msg("joined room")
	return nil
}

func (d *Dispatcher) handleLeave(s *Session, args []string) error {
	if s.state != StateInRoom {
		return ErrNotInRoom
	}
	if len(args) != 0 {
		return ErrBadArguments
	}

	name := s.room.Name
	d.reg.leaveRoom(s)
	d.reg.sendLine(s, "OK")
	s.logger.Info().Str("nick", s.nick).Str("room", name).Msg("left room")
	return nil
}

func (d *Dispatcher) handlePriv(s *Session, line string) error {
	if s.state == StateUnauthenticated {
		return ErrNotAuthenticated
	}
	parts := strings.SplitN(line, " ", 3)
	if len(parts) != 3 || parts[1] == "" || parts[2] == "" {
		return ErrBadArguments
	}

	target := d.reg.byNick(parts[1])
	if target == nil {
		return ErrUnknownNick
	}
	d.reg.sendLine(target, "PRIVATE "+s.nick+" "+parts[2])
	d.reg.sendLine(s, "OK")
	return nil
}

// handleBye only acknowledges. The LEFT broadcast belongs to teardown so it
// happens once no matter how the connection ends.
func (d *Dispatcher) handleBye(s *Session, args []string) error {
	if len(args) != 0 {
		return ErrBadArguments
	}
	d.reg.sendLine(s, "BYE")
	return nil
}

func (d *Dispatcher) handleMessage(s *Session, text string) error {
	if s.state != StateInRoom {
		return ErrNotInRoom
	}
	d.reg.broadcast(s.room, "MESSAGE "+s.nick+" "+text, nil)
	return nil
}

// splitArgs splits on single spaces and drops trailing empty fields, so
// "/leave " has no arguments while "/nick  a" carries an empty one.
func splitArgs(line string) []string {
	args := strings.Split(line, " ")
	for len(args) > 1 && args[len(args)-1] == "" {
		args = args[:len(args)-1]
	}
	return args
}
