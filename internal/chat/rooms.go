package chat

import "sort"

// Room groups sessions that receive each other's broadcasts.
type Room struct {
	Name    string
	members map[*Session]struct{}
}

func newRoom(name string) *Room {
	return &Room{
		Name:    name,
		members: make(map[*Session]struct{}),
	}
}

// Has reports whether s is a member.
func (r *Room) Has(s *Session) bool {
	_, ok := r.members[s]
	return ok
}

func (r *Room) Len() int { return len(r.members) }

// Rooms is the name index of every room ever created. Empty rooms are kept.
type Rooms struct {
	byName map[string]*Room
}

func NewRooms() *Rooms {
	return &Rooms{byName: make(map[string]*Room)}
}

func (rs *Rooms) Find(name string) *Room {
	return rs.byName[name]
}

// FindOrCreate returns the room called name, creating it when absent.
// created is true if the room did not exist before the call.
func (rs *Rooms) FindOrCreate(name string) (room *Room, created bool) {
	if r, ok := rs.byName[name]; ok {
		return r, false
	}
	r := newRoom(name)
	rs.byName[name] = r
	RoomsCreated.Set(float64(len(rs.byName)))
	return r, true
}

// Add inserts s into room. Returns true if newly added.
func (rs *Rooms) Add(s *Session, room *Room) bool {
	if room.Has(s) {
		return false
	}
	room.members[s] = struct{}{}
	return true
}

// Remove deletes s from room. Returns true if it was a member.
func (rs *Rooms) Remove(s *Session, room *Room) bool {
	if !room.Has(s) {
		return false
	}
	delete(room.members, s)
	return true
}

func (rs *Rooms) Len() int { return len(rs.byName) }

// Snapshot lists rooms sorted by name.
func (rs *Rooms) Snapshot() []RoomInfo {
	out := make([]RoomInfo, 0, len(rs.byName))
	for name, r := range rs.byName {
		out = append(out, RoomInfo{Name: name, Members: r.Len()})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}
