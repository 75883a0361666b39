package domain

// User models an account that can sign in to the tender board.
type User struct {
	ID           string `json:"id" bson:"_id"`
	Username     string `json:"username" bson:"username"`
	PasswordHash string `json:"-" bson:"password"`
	IsAdmin      bool   `json:"isAdmin" bson:"is_admin"`
}

// UserPatch carries the fields of a partial user update. Nil fields are left
// untouched by repositories.
type UserPatch struct {
	Username     *string
	PasswordHash *string
	IsAdmin      *bool
}

// IsEmpty reports whether the patch changes nothing.
func (p UserPatch) IsEmpty() bool {
	return p.Username == nil && p.PasswordHash == nil && p.IsAdmin == nil
}

// Apply merges the patch into u.
func (p UserPatch) Apply(u *User) {
	if p.Username != nil {
		u.Username = *p.Username
	}
	if p.PasswordHash != nil {
		u.PasswordHash = *p.PasswordHash
	}
	if p.IsAdmin != nil {
		u.IsAdmin = *p.IsAdmin
	}
}
