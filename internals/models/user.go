package models

type User struct {
	Id       int64  `db:"id"`
	Username string `db:"username"`
	Password string `db:"password"` // verbatim unless auth.password_mode is bcrypt
}

// Identity is what the session remembers about a logged-in user.
type Identity struct {
	Id       int64
	Username string
}

func (u *User) Identity() Identity {
	return Identity{Id: u.Id, Username: u.Username}
}
