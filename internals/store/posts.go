package store

import (
	"context"

	"github.com/pkg/errors"

	"Friendbook/internals/models"
)

// CreatePost inserts a post stamped with the store clock.
func (s *Store) CreatePost(ctx context.Context, authorId int64, subject, content string) (*models.Post, error) {
	post := &models.Post{
		UserId:    authorId,
		Subject:   subject,
		Content:   content,
		CreatedAt: s.clock.NowUtc(),
	}

	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	res, err := s.db.ExecContext(ctx,
		`INSERT INTO posts (user_id, subject, content, created_at) VALUES (?, ?, ?, ?)`,
		post.UserId, post.Subject, post.Content, post.CreatedAt)
	if err != nil {
		if isForeignKeyViolation(err) {
			return nil, ErrUnknownAuthor
		}
		return nil, errors.Wrapf(err, "inserting post for user %d", authorId)
	}
	if post.Id, err = res.LastInsertId(); err != nil {
		return nil, errors.Wrap(err, "reading post id")
	}
	return post, nil
}

// ListPostsWithAuthors returns every post with its author, newest first.
func (s *Store) ListPostsWithAuthors(ctx context.Context) ([]models.FeedItem, error) {
	items := []models.FeedItem{}
	err := s.db.SelectContext(ctx, &items, `
		SELECT posts.id, posts.subject, posts.content, posts.created_at, users.username
		FROM posts JOIN users ON posts.user_id = users.id
		ORDER BY posts.created_at DESC, posts.id DESC
	`)
	if err != nil {
		return nil, errors.Wrap(err, "listing posts")
	}
	return items, nil
}

func (s *Store) CountPosts(ctx context.Context) (int, error) {
	var n int
	if err := s.db.GetContext(ctx, &n, `SELECT COUNT(*) FROM posts`); err != nil {
		return 0, errors.Wrap(err, "counting posts")
	}
	return n, nil
}
