package data

// Caller roles forwarded by the portal gateway. Authentication itself
// happens upstream; this service only trusts the forwarded identity.
const (
	RoleStudent = "student"
	RoleAdmin   = "admin"
)

// Caller is the already-authenticated identity a request acts as. Email is
// optional and only used to address order notifications.
type Caller struct {
	ID    int64  `json:"id"`
	Role  string `json:"role"`
	Email string `json:"email,omitempty"`
}

// AnonymousCaller represents a request carrying no forwarded identity.
var AnonymousCaller = &Caller{}

// IsAnonymous checks if a Caller instance is the AnonymousCaller.
func (c *Caller) IsAnonymous() bool {
	return c == AnonymousCaller
}

func (c *Caller) IsAdmin() bool {
	return c.Role == RoleAdmin
}

func (c *Caller) IsStudent() bool {
	return c.Role == RoleStudent
}
