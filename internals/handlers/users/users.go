package users

import (
	"errors"
	"net/http"
	"strings"

	"Friendbook/internals/handlers"
	"Friendbook/internals/render"
	"Friendbook/internals/store"
)

type credentialsForm struct {
	Username string `validate:"required"`
	Password string `validate:"required"`
}

// Password is taken verbatim; only the username is trimmed.
func readCredentials(r *http.Request) credentialsForm {
	return credentialsForm{
		Username: strings.TrimSpace(r.PostFormValue("username")),
		Password: r.PostFormValue("password"),
	}
}

// RegisterPage renders the registration form
func RegisterPage(env *handlers.Env) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		env.Render(w, r, env.Sessions.Load(r), render.PageRegister, render.View{})
	}
}

// RegisterHandler creates an account and sends the user to the login form
func RegisterHandler(env *handlers.Env) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sess := env.Sessions.Load(r)
		form := readCredentials(r)
		log := env.LogFor(r).WithField("username", form.Username)

		if err := env.Validate(form); err != nil {
			log.WithError(err).Info("Registration rejected")
			env.Redirect(w, r, sess, "/register", handlers.MsgFillBoth)
			return
		}

		err := env.Store.CreateUser(r.Context(), form.Username, form.Password)
		if errors.Is(err, store.ErrDuplicateUsername) {
			log.Info("Registration rejected: username taken")
			env.Redirect(w, r, sess, "/register", handlers.MsgUsernameTaken)
			return
		} else if errors.Is(err, store.ErrPasswordTooLong) {
			log.WithError(err).Info("Registration rejected")
			env.Redirect(w, r, sess, "/register", handlers.MsgPasswordLong)
			return
		} else if err != nil {
			env.ServerError(w, r, err)
			return
		}

		log.Info("User registered")
		env.Redirect(w, r, sess, "/login", handlers.MsgRegistered)
	}
}

// LoginPage renders the login form
func LoginPage(env *handlers.Env) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		env.Render(w, r, env.Sessions.Load(r), render.PageLogin, render.View{})
	}
}

// LoginHandler checks credentials and stores the identity in the session
func LoginHandler(env *handlers.Env) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sess := env.Sessions.Load(r)
		form := readCredentials(r)
		log := env.LogFor(r).WithField("username", form.Username)

		user, err := env.Store.FindUserByCredentials(r.Context(), form.Username, form.Password)
		if errors.Is(err, store.ErrNotFound) {
			log.WithError(handlers.ErrInvalidCredentials).Info("Login rejected")
			env.Redirect(w, r, sess, "/login", handlers.MsgInvalidLogin)
			return
		} else if err != nil {
			env.ServerError(w, r, err)
			return
		}

		sess.SetIdentity(user.Identity())
		log.WithField("user_id", user.Id).Info("User logged in")
		env.Redirect(w, r, sess, "/", handlers.MsgLoggedIn)
	}
}

// LogoutHandler forgets the identity
func LogoutHandler(env *handlers.Env) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sess := env.Sessions.Load(r)
		sess.Clear()
		env.Redirect(w, r, sess, "/", handlers.MsgLoggedOut)
	}
}
