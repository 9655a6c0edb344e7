package models

import "time"

type Post struct {
	Id        int64     `db:"id"`
	UserId    int64     `db:"user_id"`
	Subject   string    `db:"subject"`
	Content   string    `db:"content"`
	CreatedAt time.Time `db:"created_at"`
}

// FeedItem is a post joined with its author's username.
type FeedItem struct {
	Id        int64     `db:"id"`
	Subject   string    `db:"subject"`
	Content   string    `db:"content"`
	CreatedAt time.Time `db:"created_at"`
	Username  string    `db:"username"`
}
