package chat

import "errors"

// sendLine queues one protocol line for s. A session whose queue overflows is
// scheduled for teardown rather than slowing anyone else down.
func (g *Registry) sendLine(s *Session, line string) {
	err := s.out.push(line)
	switch {
	case err == nil:
		LinesSentTotal.Inc()
	case errors.Is(err, ErrOutboundOverflow):
		OutboundOverflowsTotal.Inc()
		g.markDoomed(s, err)
	default:
		// Outbox already closed: the session is on its way out.
	}
}

// broadcast queues line for every member of room except the given session,
// which may be nil.
func (g *Registry) broadcast(room *Room, line string, except *Session) {
	for s := range room.members {
		if s == except {
			continue
		}
		g.sendLine(s, line)
	}
}
