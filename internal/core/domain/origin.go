package domain

// Origins name the host a poll was created through. A host only sees the
// polls it created.
const (
	OriginDiscord = "discord"
	OriginAPI     = "api"
)

// VoterKey scopes a host-local user id, so the same raw id coming from two
// hosts counts as two different voters.
func VoterKey(origin, id string) string {
	if id == "" {
		return ""
	}
	return origin + ":" + id
}

// VisibleTo reports whether a host with the given origin may read, vote on or
// remove the poll. An empty origin is unscoped.
func (p *Poll) VisibleTo(origin string) bool {
	return p != nil && (origin == "" || p.Origin == origin)
}
