package core

// room groups the clients currently joined to the same chat room. Access is
// guarded by the owning Hub's mutex.
type room struct {
	id      string
	members map[*Client]struct{}
}

func newRoom(id string) *room {
	return &room{
		id:      id,
		members: make(map[*Client]struct{}),
	}
}

func (r *room) add(c *Client) {
	r.members[c] = struct{}{}
}

func (r *room) remove(c *Client) {
	delete(r.members, c)
}

func (r *room) empty() bool {
	return len(r.members) == 0
}

// snapshot returns the current member set for fan-out outside the hub lock.
func (r *room) snapshot() []*Client {
	members := make([]*Client, 0, len(r.members))
	for c := range r.members {
		members = append(members, c)
	}
	return members
}
