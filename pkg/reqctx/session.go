package reqctx

import "context"

type Role string

const (
	RoleDentist      Role = "dentist"
	RoleReceptionist Role = "receptionist"
	RoleAssistant    Role = "assistant"
)

// Valid reports whether r is one of the dashboard roles.
func (r Role) Valid() bool {
	switch r {
	case RoleDentist, RoleReceptionist, RoleAssistant:
		return true
	}
	return false
}

// Session is the resolved dashboard session of a request. The role is
// carried for display; table operations do not check it.
type Session struct {
	ID     string `json:"id"`
	UserID string `json:"user_id"`
	Name   string `json:"name,omitempty"`
	Role   Role   `json:"role"`
}

func WithSession(ctx context.Context, s *Session) context.Context {
	return context.WithValue(ctx, keySession, s)
}

func SessionFromContext(ctx context.Context) (*Session, bool) {
	s, ok := ctx.Value(keySession).(*Session)
	return s, ok && s != nil
}
