package chat

import (
	"testing"

	"github.com/rs/zerolog"
)

func TestRooms_FindOrCreateIsIdempotent(t *testing.T) {
	rs := NewRooms()

	if rs.Find("lobby") != nil {
		t.Fatalf("room exists before creation")
	}
	r1, created := rs.FindOrCreate("lobby")
	if !created {
		t.Fatalf("expected creation")
	}
	r2, created := rs.FindOrCreate("lobby")
	if created || r1 != r2 {
		t.Fatalf("second lookup created a duplicate")
	}
	if rs.Find("Lobby") != nil {
		t.Fatalf("room names must be case-sensitive")
	}
}

func TestRooms_AddRemove(t *testing.T) {
	rs := NewRooms()
	room, _ := rs.FindOrCreate("lobby")
	s := newSession(nil, 0, zerolog.Nop())

	if !rs.Add(s, room) || rs.Add(s, room) {
		t.Fatalf("add should succeed exactly once")
	}
	if room.Len() != 1 {
		t.Fatalf("expected one member, got %d", room.Len())
	}
	if !rs.Remove(s, room) || rs.Remove(s, room) {
		t.Fatalf("remove should succeed exactly once")
	}
	if rs.Find("lobby") == nil {
		t.Fatalf("empty room should persist")
	}
}

func TestRooms_Snapshot(t *testing.T) {
	rs := NewRooms()
	b, _ := rs.FindOrCreate("b")
	rs.FindOrCreate("a")
	rs.Add(newSession(nil, 0, zerolog.Nop()), b)

	snap := rs.Snapshot()
	if len(snap) != 2 || snap[0].Name != "a" || snap[1].Name != "b" || snap[1].Members != 1 {
		t.Fatalf("unexpected snapshot: %+v", snap)
	}
}
