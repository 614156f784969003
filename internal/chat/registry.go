package chat

// Registry holds every live session and every room. Single-writer ownership:
// it is only accessed from the reactor goroutine.
type Registry struct {
	sessions map[string]*Session
	nicks    map[string]*Session
	rooms    *Rooms

	// doomed collects sessions that must be torn down once the current
	// fan-out is over; tearing them down mid-broadcast would mutate the
	// member set being walked.
	doomed []doomedSession
}

type doomedSession struct {
	s   *Session
	err error
}

func NewRegistry() *Registry {
	return &Registry{
		sessions: make(map[string]*Session),
		nicks:    make(map[string]*Session),
		rooms:    NewRooms(),
	}
}

func (g *Registry) Rooms() *Rooms { return g.rooms }

func (g *Registry) Len() int { return len(g.sessions) }

func (g *Registry) add(s *Session) {
	g.sessions[s.ID] = s
}

func (g *Registry) has(s *Session) bool {
	cur, ok := g.sessions[s.ID]
	return ok && cur == s
}

// remove drops s and its nickname. Returns false if s was already gone.
func (g *Registry) remove(s *Session) bool {
	if !g.has(s) {
		return false
	}
	delete(g.sessions, s.ID)
	if s.nick != "" && g.nicks[s.nick] == s {
		delete(g.nicks, s.nick)
	}
	return true
}

func (g *Registry) byNick(nick string) *Session {
	return g.nicks[nick]
}

func (g *Registry) setNick(s *Session, nick string) {
	if s.nick != "" {
		delete(g.nicks, s.nick)
	}
	s.nick = nick
	g.nicks[nick] = s
}

// leaveRoom takes s out of its current room and tells the remaining members.
// Nothing is broadcast if the room no longer lists s.
func (g *Registry) leaveRoom(s *Session) {
	room := s.room
	if room == nil {
		return
	}
	s.room = nil
	s.state = StateIdle
	if g.rooms.Remove(s, room) {
		g.broadcast(room, "LEFT "+s.nick, nil)
	}
}

func (g *Registry) markDoomed(s *Session, err error) {
	for _, d := range g.doomed {
		if d.s == s {
			return
		}
	}
	g.doomed = append(g.doomed, doomedSession{s: s, err: err})
}

func (g *Registry) takeDoomed() []doomedSession {
	d := g.doomed
	g.doomed = nil
	return d
}

func (g *Registry) snapshot() Stats {
	return Stats{
		Sessions: len(g.sessions),
		Rooms:    g.rooms.Snapshot(),
	}
}
