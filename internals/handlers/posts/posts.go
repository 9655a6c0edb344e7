package posts

import (
	"errors"
	"net/http"
	"strings"

	"Friendbook/internals/handlers"
	"Friendbook/internals/models"
	"Friendbook/internals/render"
	"Friendbook/internals/session"
	"Friendbook/internals/store"
)

type postForm struct {
	Subject string `validate:"required"`
	Content string `validate:"required"`
}

// FeedHandler renders every post, newest first.
func FeedHandler(env *handlers.Env) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sess := env.Sessions.Load(r)
		items, err := env.Store.ListPostsWithAuthors(r.Context())
		if err != nil {
			env.ServerError(w, r, err)
			return
		}
		env.Render(w, r, sess, render.PageFeed, render.View{Posts: items})
	}
}

// requireIdentity sends anonymous visitors to the login form.
func requireIdentity(env *handlers.Env, w http.ResponseWriter, r *http.Request, sess *session.Session) (models.Identity, bool) {
	id, ok := sess.Identity()
	if !ok {
		env.LogFor(r).WithError(handlers.ErrUnauthenticated).Info("Post attempt without identity")
		env.Redirect(w, r, sess, "/login", handlers.MsgMustLogIn)
	}
	return id, ok
}

func CreatePostPage(env *handlers.Env) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sess := env.Sessions.Load(r)
		if _, ok := requireIdentity(env, w, r, sess); !ok {
			return
		}
		env.Render(w, r, sess, render.PageCreatePost, render.View{})
	}
}

// CreatePostHandler stores a post authored by the session identity.
func CreatePostHandler(env *handlers.Env) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sess := env.Sessions.Load(r)
		id, ok := requireIdentity(env, w, r, sess)
		if !ok {
			return
		}

		form := postForm{
			Subject: strings.TrimSpace(r.PostFormValue("subject")),
			Content: strings.TrimSpace(r.PostFormValue("content")),
		}
		log := env.LogFor(r).WithField("user_id", id.Id)
		if err := env.Validate(form); err != nil {
			log.WithError(err).Info("Post rejected")
			env.Redirect(w, r, sess, "/create_post", handlers.MsgEmptyPost)
			return
		}

		post, err := env.Store.CreatePost(r.Context(), id.Id, form.Subject, form.Content)
		if errors.Is(err, store.ErrUnknownAuthor) {
			// The cookie outlived its user row.
			log.WithError(err).Warn("Dropping stale identity")
			sess.Clear()
			env.Redirect(w, r, sess, "/login", handlers.MsgMustLogIn)
			return
		} else if err != nil {
			env.ServerError(w, r, err)
			return
		}

		log.WithField("post_id", post.Id).Info("Post created")
		env.Redirect(w, r, sess, "/", handlers.MsgPostCreated)
	}
}
