// social/models.go
package social

import (
	"time"
)

// User is an account record. Password holds the bcrypt hash and is
// stripped before a user ever leaves the service layer.
type User struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Username  string    `json:"username"`
	Email     string    `json:"email"`
	Password  string    `json:"password,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Profile is a user plus the materialized two-hop follow joins.
type Profile struct {
	User
	FollowingsDetail []User `json:"followings_detail"`
	FollowersDetail  []User `json:"followers_detail"`
}

// Post carries its comments and likes inline, joined with its author.
type Post struct {
	ID        string    `json:"id"`
	AuthorID  string    `json:"author_id"`
	Content   string    `json:"content"`
	Tags      []string  `json:"tags"`
	ImgURL    string    `json:"img_url,omitempty"`
	Comments  []Comment `json:"comments"`
	Likes     []Like    `json:"likes"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
	Author    *User     `json:"author,omitempty"`
}

// Comment is append-only; comments are never edited or removed.
type Comment struct {
	Content   string    `json:"content"`
	Username  string    `json:"username"`
	CreatedAt time.Time `json:"created_at"`
}

// Like is keyed by username; at most one per (post, username).
type Like struct {
	Username  string    `json:"username"`
	CreatedAt time.Time `json:"created_at"`
}

// FollowEdge is a directed follow relationship. Edges are created once
// and never removed; there is no unfollow.
type FollowEdge struct {
	FollowerID  string    `json:"follower_id"`
	FollowingID string    `json:"following_id"`
	CreatedAt   time.Time `json:"created_at"`
}
