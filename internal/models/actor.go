package models

// Actor identifies the caller of an engine operation. Role checks gate which
// transitions an actor may drive; they are not a security boundary.
type Actor struct {
	Email string `json:"email"`
	Name  string `json:"name"`
	Role  string `json:"role"` // "customer", "restaurant", "driver", "admin", "system"
}

func SystemActor() Actor {
	return Actor{Email: "system", Name: "system", Role: RoleSystem}
}

func (a Actor) Is(role string) bool {
	return a.Role == role
}

// Privileged actors may force transitions outside the normal table.
func (a Actor) Privileged() bool {
	return a.Role == RoleAdmin || a.Role == RoleSystem
}
