package chat

import (
	"bytes"
	"strings"
)

// Framer turns the raw byte stream of a session into protocol lines.
type Framer struct {
	// MaxPending caps the bytes held for an unterminated line; 0 disables it.
	MaxPending int
}

// Feed appends data to the session's pending input. Lines are released only
// when a read ends exactly on '\n'; then the whole accumulated buffer is split
// and returned in arrival order.
func (f Framer) Feed(s *Session, data []byte) ([]string, error) {
	s.pending = append(s.pending, data...)

	if len(data) == 0 || data[len(data)-1] != '\n' {
		if f.MaxPending > 0 && len(s.pending) > f.MaxPending {
			s.pending = nil
			return nil, ErrInputOverflow
		}
		return nil, nil
	}

	buf := s.pending[:len(s.pending)-1]
	s.pending = nil

	parts := bytes.Split(buf, []byte{'\n'})
	lines := make([]string, 0, len(parts))
	for _, p := range parts {
		lines = append(lines, strings.ToValidUTF8(string(p), "�"))
	}
	return lines, nil
}
