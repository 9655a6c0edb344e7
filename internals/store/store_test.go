package store_test

import (
	"context"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/brianvoe/gofakeit/v7"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"Friendbook/internals/clock"
	"Friendbook/internals/store"
)

func newTestStore(t *testing.T, opts ...store.Option) *store.Store {
	t.Helper()
	path := filepath.Join(t.TempDir(), "friendbook.db")
	s, err := store.Open(path, 5000, opts...)
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	require.NoError(t, s.InitSchema(context.Background()))
	return s
}

func getTestContext() (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), 30*time.Second)
}

func TestInitSchemaIsIdempotent(t *testing.T) {
	ctx, cancel := getTestContext()
	defer cancel()

	s := newTestStore(t)
	require.NoError(t, s.CreateUser(ctx, "alice", "pw1"))

	require.NoError(t, s.InitSchema(ctx))
	require.NoError(t, s.InitSchema(ctx))

	n, err := s.CountUsers(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}

func TestCreateUserDuplicate(t *testing.T) {
	ctx, cancel := getTestContext()
	defer cancel()

	s := newTestStore(t)
	username := gofakeit.Username()

	require.NoError(t, s.CreateUser(ctx, username, "pw"))
	err := s.CreateUser(ctx, username, "other")
	require.ErrorIs(t, err, store.ErrDuplicateUsername)

	n, err := s.CountUsers(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}

func TestCreateUserConcurrentDuplicate(t *testing.T) {
	ctx, cancel := getTestContext()
	defer cancel()

	s := newTestStore(t)
	const workers = 8

	var wg sync.WaitGroup
	errs := make([]error, workers)
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			errs[i] = s.CreateUser(ctx, "racer", "pw")
		}(i)
	}
	wg.Wait()

	var ok, dup int
	for _, err := range errs {
		switch {
		case err == nil:
			ok++
		case assert.ErrorIs(t, err, store.ErrDuplicateUsername):
			dup++
		}
	}
	assert.Equal(t, 1, ok)
	assert.Equal(t, workers-1, dup)
}

func TestFindUserByCredentials(t *testing.T) {
	ctx, cancel := getTestContext()
	defer cancel()

	s := newTestStore(t)
	require.NoError(t, s.CreateUser(ctx, "alice", "pw1"))

	user, err := s.FindUserByCredentials(ctx, "alice", "pw1")
	require.NoError(t, err)
	assert.Equal(t, "alice", user.Username)
	assert.NotZero(t, user.Id)
	assert.Empty(t, user.Password)

	tests := []struct {
		name     string
		username string
		password string
	}{
		{"wrong password", "alice", "pw2"},
		{"unknown user", "bob", "pw1"},
		{"case differs", "Alice", "pw1"},
		{"prefix only", "ali", "pw1"},
		{"empty password", "alice", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := s.FindUserByCredentials(ctx, tt.username, tt.password)
			assert.ErrorIs(t, err, store.ErrNotFound)
		})
	}
}

func TestBcryptPasswords(t *testing.T) {
	ctx, cancel := getTestContext()
	defer cancel()

	s := newTestStore(t, store.WithBcrypt())
	require.NoError(t, s.CreateUser(ctx, "alice", "pw1"))

	user, err := s.FindUserByCredentials(ctx, "alice", "pw1")
	require.NoError(t, err)
	assert.Equal(t, "alice", user.Username)

	_, err = s.FindUserByCredentials(ctx, "alice", "nope")
	assert.ErrorIs(t, err, store.ErrNotFound)
	_, err = s.FindUserByCredentials(ctx, "bob", "pw1")
	assert.ErrorIs(t, err, store.ErrNotFound)
}

func TestBcryptPasswordTooLong(t *testing.T) {
	ctx, cancel := getTestContext()
	defer cancel()

	s := newTestStore(t, store.WithBcrypt())
	err := s.CreateUser(ctx, "alice", strings.Repeat("x", 73))
	require.ErrorIs(t, err, store.ErrPasswordTooLong)

	n, err := s.CountUsers(ctx)
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestListPostsNewestFirst(t *testing.T) {
	ctx, cancel := getTestContext()
	defer cancel()

	stub := clock.NewStubClock(time.Date(2024, 1, 1, 0, 0, 1, 0, time.UTC))
	s := newTestStore(t, store.WithClock(stub))

	require.NoError(t, s.CreateUser(ctx, "alice", "pw1"))
	alice, err := s.FindUserByCredentials(ctx, "alice", "pw1")
	require.NoError(t, err)

	p1, err := s.CreatePost(ctx, alice.Id, "P1", "first")
	require.NoError(t, err)
	assert.Equal(t, stub.NowUtc(), p1.CreatedAt)

	stub.Advance(time.Second)
	p2, err := s.CreatePost(ctx, alice.Id, "P2", "second")
	require.NoError(t, err)

	feed, err := s.ListPostsWithAuthors(ctx)
	require.NoError(t, err)
	require.Len(t, feed, 2)
	assert.Equal(t, p2.Id, feed[0].Id)
	assert.Equal(t, "P2", feed[0].Subject)
	assert.Equal(t, "alice", feed[0].Username)
	assert.Equal(t, p1.Id, feed[1].Id)
	assert.True(t, feed[0].CreatedAt.Equal(p2.CreatedAt))
}

func TestListPostsSameTimestampFallsBackToId(t *testing.T) {
	ctx, cancel := getTestContext()
	defer cancel()

	stub := clock.NewStubClock(time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC))
	s := newTestStore(t, store.WithClock(stub))
	require.NoError(t, s.CreateUser(ctx, "bob", "pw"))
	bob, err := s.FindUserByCredentials(ctx, "bob", "pw")
	require.NoError(t, err)

	for _, subject := range []string{"a", "b", "c"} {
		_, err := s.CreatePost(ctx, bob.Id, subject, "x")
		require.NoError(t, err)
	}

	feed, err := s.ListPostsWithAuthors(ctx)
	require.NoError(t, err)
	require.Len(t, feed, 3)
	assert.Equal(t, []string{"c", "b", "a"},
		[]string{feed[0].Subject, feed[1].Subject, feed[2].Subject})
}

func TestListPostsEmpty(t *testing.T) {
	ctx, cancel := getTestContext()
	defer cancel()

	feed, err := newTestStore(t).ListPostsWithAuthors(ctx)
	require.NoError(t, err)
	assert.Empty(t, feed)
}

func TestCreatePostUnknownAuthor(t *testing.T) {
	ctx, cancel := getTestContext()
	defer cancel()

	s := newTestStore(t)
	_, err := s.CreatePost(ctx, 42, "ghost", "boo")
	require.ErrorIs(t, err, store.ErrUnknownAuthor)

	n, err := s.CountPosts(ctx)
	require.NoError(t, err)
	assert.Zero(t, n)
}
