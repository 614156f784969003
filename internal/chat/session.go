package chat

// readLoop moves bytes from the connection into the reactor. It never
// interprets them; framing and dispatch happen on the reactor goroutine.
func readLoop(s *Session, r *Reactor) {
	buf := make([]byte, readBufferSize)
	for {
		n, err := s.Conn.Read(buf)
		if n > 0 {
			data := make([]byte, n)
			copy(data, buf[:n])
			if !r.Post(Event{Type: EventRead, Session: s, Data: data}) {
				return
			}
		}
		if err != nil {
			// Also sent after teardown closed the conn; the reactor ignores
			// events for sessions it no longer knows.
			r.Post(Event{Type: EventClosed, Session: s, Err: err})
			return
		}
	}
}
