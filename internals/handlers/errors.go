package handlers

import "errors"

var (
	ErrEmptyField         = errors.New("required field is empty")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrUnauthenticated    = errors.New("not logged in")
)

// Flash texts shown after each outcome.
const (
	MsgRegistered    = "Registration successful."
	MsgFillBoth      = "Please fill in both fields."
	MsgUsernameTaken = "Username already exists."
	MsgPasswordLong  = "Password is too long."
	MsgLoggedIn      = "Logged in."
	MsgInvalidLogin  = "Invalid credentials."
	MsgLoggedOut     = "Logged out."
	MsgMustLogIn     = "You must be logged in to post."
	MsgEmptyPost     = "Subject and content cannot be empty."
	MsgPostCreated   = "Post created."
)
