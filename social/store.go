// social/store.go
package social

import (
	"context"
	"errors"
)

// ErrNotFound indicates a requested record is missing.
var ErrNotFound = errors.New("record not found")

// ErrAlreadyExists indicates a uniqueness-constrained record already exists.
var ErrAlreadyExists = errors.New("record already exists")

// UserStore persists account records.
type UserStore interface {
	// CreateUser inserts a new user. Returns ErrAlreadyExists when the
	// username or email is taken.
	CreateUser(ctx context.Context, user *User) error
	GetUserByID(ctx context.Context, id string) (*User, error)
	GetUserByEmail(ctx context.Context, email string) (*User, error)
	// SearchUsers matches keyword against name or username,
	// case-insensitively.
	SearchUsers(ctx context.Context, keyword string) ([]User, error)
}

// PostStore persists posts with their embedded comments and likes.
type PostStore interface {
	CreatePost(ctx context.Context, post *Post) error
	// GetPostByID returns the post joined with its author, the author's
	// password stripped.
	GetPostByID(ctx context.Context, id string) (*Post, error)
	// ListPosts returns all posts joined with authors, ordered by
	// updated_at descending. Ties keep storage order.
	ListPosts(ctx context.Context) ([]Post, error)
	// AppendComment adds a comment and bumps the post's updated_at.
	AppendComment(ctx context.Context, postID string, comment Comment) error
	// InsertLike is an atomic conditional insert: it either inserts the
	// like or returns ErrAlreadyExists, never both under concurrency.
	InsertLike(ctx context.Context, postID string, like Like) error
}

// GraphStore persists directed follow edges and resolves the two-hop
// joins that materialize follower/following detail lists.
type GraphStore interface {
	// CreateFollow inserts an edge. Returns ErrAlreadyExists when the
	// ordered pair already has one.
	CreateFollow(ctx context.Context, edge FollowEdge) error
	ListFollowing(ctx context.Context, userID string) ([]User, error)
	ListFollowers(ctx context.Context, userID string) ([]User, error)
}
