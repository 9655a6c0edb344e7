package handlers

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-playground/validator/v10"
	"github.com/sirupsen/logrus"

	"Friendbook/internals/models"
	"Friendbook/internals/render"
	"Friendbook/internals/session"
)

// Store is the persistence the route handlers need.
type Store interface {
	CreateUser(ctx context.Context, username, password string) error
	FindUserByCredentials(ctx context.Context, username, password string) (*models.User, error)
	CreatePost(ctx context.Context, authorId int64, subject, content string) (*models.Post, error)
	ListPostsWithAuthors(ctx context.Context) ([]models.FeedItem, error)
}

// Env carries the dependencies shared by every route handler.
type Env struct {
	Store    Store
	Sessions *session.Manager
	Pages    *render.Renderer
	Log      logrus.FieldLogger

	validate *validator.Validate
}

func NewEnv(st Store, sessions *session.Manager, pages *render.Renderer, log logrus.FieldLogger) *Env {
	return &Env{
		Store:    st,
		Sessions: sessions,
		Pages:    pages,
		Log:      log,
		validate: validator.New(validator.WithRequiredStructEnabled()),
	}
}

// LogFor returns a logger tagged with the request id.
func (e *Env) LogFor(r *http.Request) logrus.FieldLogger {
	return e.Log.WithFields(logrus.Fields{
		"request_id": middleware.GetReqID(r.Context()),
		"path":       r.URL.Path,
	})
}

// Validate reports ErrEmptyField naming every required field left blank.
func (e *Env) Validate(form any) error {
	err := e.validate.Struct(form)
	if err == nil {
		return nil
	}
	verrs, ok := err.(validator.ValidationErrors)
	if !ok {
		return err
	}
	fields := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		fields = append(fields, strings.ToLower(fe.Field()))
	}
	return fmt.Errorf("%w: %s", ErrEmptyField, strings.Join(fields, ", "))
}

// Redirect queues msg for the next page and sends a 303 to path.
func (e *Env) Redirect(w http.ResponseWriter, r *http.Request, sess *session.Session, path, msg string) {
	if msg != "" {
		sess.AddFlash(msg)
	}
	if err := sess.Save(w, r); err != nil {
		e.ServerError(w, r, fmt.Errorf("saving session: %w", err))
		return
	}
	http.Redirect(w, r, path, http.StatusSeeOther)
}

// Render drains pending flashes into the page and writes it. The cookie is
// only rewritten when there was a session to update.
func (e *Env) Render(w http.ResponseWriter, r *http.Request, sess *session.Session, page string, view render.View) {
	if id, ok := sess.Identity(); ok {
		view.Identity = &id
	}
	view.Flashes = sess.DrainFlashes()
	if len(view.Flashes) > 0 || !sess.IsNew() {
		if err := sess.Save(w, r); err != nil {
			e.ServerError(w, r, fmt.Errorf("saving session: %w", err))
			return
		}
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := e.Pages.Page(w, page, view); err != nil {
		e.ServerError(w, r, err)
	}
}

// ServerError logs err and answers with a generic 500 page.
func (e *Env) ServerError(w http.ResponseWriter, r *http.Request, err error) {
	e.LogFor(r).WithError(err).Error("Request failed")

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusInternalServerError)
	if rerr := e.Pages.Page(w, render.PageError, render.View{}); rerr != nil {
		fmt.Fprint(w, http.StatusText(http.StatusInternalServerError))
	}
}
