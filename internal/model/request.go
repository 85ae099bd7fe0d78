package model

type RegisterRequest struct {
	Username string `json:"username" validate:"required,min=3,max=50"`
	Password string `json:"password" validate:"required,min=8,max=72"`
}

// LoginRequest carries no validate tags: a missing or malformed field is
// treated as a failed authentication, never as a 400.
type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type ArticleRequest struct {
	Title   string `json:"title" validate:"required,max=200"`
	Content string `json:"content" validate:"required,max=20000"`
}

type CommentRequest struct {
	Body string `json:"body" validate:"required,max=1000"`
}
