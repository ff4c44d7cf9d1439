package models

type User struct {
	ID       int64  `json:"id"`
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"-"` // bcrypt hash
}

// PublicUser is the shape returned to clients.
type PublicUser struct {
	Name  string `json:"name"`
	Email string `json:"email"`
	ID    int64  `json:"id"`
}

func (u *User) Public() PublicUser {
	return PublicUser{Name: u.Name, Email: u.Email, ID: u.ID}
}
