package model

import "time"

type Article struct {
	ID        int64        `json:"id"`
	Title     string       `json:"title"`
	Content   string       `json:"content"`
	AuthorID  int64        `json:"-"`
	Author    *UserProfile `json:"author,omitempty"`
	CreatedAt time.Time    `json:"created_at"`
	UpdatedAt time.Time    `json:"updated_at"`
}

type Comment struct {
	ID        int64        `json:"id"`
	ArticleID int64        `json:"-"`
	Body      string       `json:"body"`
	AuthorID  int64        `json:"-"`
	Author    *UserProfile `json:"author,omitempty"`
	CreatedAt time.Time    `json:"created_at"`
}
