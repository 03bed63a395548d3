package models

// Role is the dashboard role of the current user. The set is open: roles the
// backend introduces later are carried through unchanged.
type Role string

const (
	RoleConsumer Role = "consumer"
	RoleOperator Role = "operator"
	RoleAdmin    Role = "admin"
)

const AnonymousUserID = "anonymous"

// CanOperate reports whether the role may push operator-owned sections
// (pipeline stages, governance flags, certificates).
func (r Role) CanOperate() bool {
	return r == RoleOperator || r == RoleAdmin
}

func (r Role) String() string {
	return string(r)
}

// Identity is who the dashboard is acting for.
type Identity struct {
	UserID    string `json:"userId"`
	UserRole  Role   `json:"userRole"`
	CSRFToken string `json:"csrfToken,omitempty"`
}

// DefaultIdentity is used until a bootstrap payload or snapshot says otherwise.
func DefaultIdentity() Identity {
	return Identity{UserID: AnonymousUserID, UserRole: RoleConsumer}
}

// IsAnonymous reports whether no real user has been identified yet.
func (i Identity) IsAnonymous() bool {
	return i.UserID == "" || i.UserID == AnonymousUserID
}
