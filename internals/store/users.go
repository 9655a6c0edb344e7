package store

import (
	"context"
	"database/sql"

	"github.com/pkg/errors"
	"golang.org/x/crypto/bcrypt"

	"Friendbook/internals/models"
)

// CreateUser inserts a new user. It returns ErrDuplicateUsername when the
// username is taken and, in bcrypt mode, ErrPasswordTooLong for passwords
// bcrypt cannot hash.
func (s *Store) CreateUser(ctx context.Context, username, password string) error {
	stored := password
	if s.bcrypt {
		hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
		if errors.Is(err, bcrypt.ErrPasswordTooLong) {
			return ErrPasswordTooLong
		} else if err != nil {
			return errors.Wrap(err, "hashing password")
		}
		stored = string(hash)
	}

	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO users (username, password) VALUES (?, ?)`, username, stored)
	if err != nil {
		if isUniqueViolation(err) {
			return ErrDuplicateUsername
		}
		return errors.Wrapf(err, "inserting user %q", username)
	}
	return nil
}

// FindUserByCredentials returns the user whose username and password both
// match exactly, or ErrNotFound.
func (s *Store) FindUserByCredentials(ctx context.Context, username, password string) (*models.User, error) {
	var user models.User
	var err error
	if s.bcrypt {
		err = s.db.GetContext(ctx, &user,
			`SELECT id, username, password FROM users WHERE username = ?`, username)
	} else {
		err = s.db.GetContext(ctx, &user,
			`SELECT id, username, password FROM users WHERE username = ? AND password = ?`, username, password)
	}
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	} else if err != nil {
		return nil, errors.Wrapf(err, "looking up user %q", username)
	}

	if s.bcrypt {
		if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(password)); err != nil {
			return nil, ErrNotFound
		}
	}
	user.Password = ""
	return &user, nil
}

func (s *Store) CountUsers(ctx context.Context) (int, error) {
	var n int
	if err := s.db.GetContext(ctx, &n, `SELECT COUNT(*) FROM users`); err != nil {
		return 0, errors.Wrap(err, "counting users")
	}
	return n, nil
}
