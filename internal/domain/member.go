package domain

// ConnID identifies one live signaling connection. Assigned by the transport.
type ConnID string

// Role is a connection's part in a session.
type Role string

const (
	RoleUnassigned Role = "unassigned"
	RoleHost       Role = "host"
	RoleGuest      Role = "guest"
)

// Binding is the session metadata annotated onto a connection while it is a member.
// No transport or lifecycle logic here.
type Binding struct {
	Session SessionID
	Role    Role
}

// Bound reports whether the connection currently belongs to a session.
func (b Binding) Bound() bool { return b.Session != "" && b.Role != RoleUnassigned }
