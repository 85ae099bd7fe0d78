package model

import "errors"

var (
	// User related errors
	ErrUserNotFound       = errors.New("user not found")
	ErrUsernameTaken      = errors.New("username already taken")
	ErrInvalidCredentials = errors.New("invalid credentials")

	// Article/comment related errors
	ErrArticleNotFound = errors.New("article not found")
	ErrCommentNotFound = errors.New("comment not found")

	// Permission/Access related errors
	ErrUnauthenticated = errors.New("unauthenticated")
	ErrAccessDenied    = errors.New("access denied")
)
