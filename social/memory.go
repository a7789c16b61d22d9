// social/memory.go
package social

import (
	"context"
	"sort"
	"strings"
	"sync"
)

// MemoryStore is an in-process implementation of UserStore, PostStore
// and GraphStore. It backs tests and the no-database dev mode. A single
// mutex guards every map and slice, so the uniqueness checks and their
// inserts happen under one lock hold.
type MemoryStore struct {
	mu      sync.Mutex
	users   []*User
	posts   []*Post
	follows []FollowEdge
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

// --- UserStore ---

func (m *MemoryStore) CreateUser(_ context.Context, user *User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, existing := range m.users {
		if existing.Username == user.Username || existing.Email == user.Email {
			return ErrAlreadyExists
		}
	}
	clone := *user
	m.users = append(m.users, &clone)
	return nil
}

func (m *MemoryStore) GetUserByID(_ context.Context, id string) (*User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, user := range m.users {
		if user.ID == id {
			clone := *user
			return &clone, nil
		}
	}
	return nil, ErrNotFound
}

func (m *MemoryStore) GetUserByEmail(_ context.Context, email string) (*User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, user := range m.users {
		if user.Email == email {
			clone := *user
			return &clone, nil
		}
	}
	return nil, ErrNotFound
}

func (m *MemoryStore) SearchUsers(_ context.Context, keyword string) ([]User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	needle := strings.ToLower(keyword)
	users := []User{}
	for _, user := range m.users {
		if strings.Contains(strings.ToLower(user.Name), needle) ||
			strings.Contains(strings.ToLower(user.Username), needle) {
			clone := *user
			clone.Sanitize()
			users = append(users, clone)
		}
	}
	return users, nil
}

// --- PostStore ---

func (m *MemoryStore) CreatePost(_ context.Context, post *Post) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	clone := *post
	clone.Comments = append([]Comment{}, post.Comments...)
	clone.Likes = append([]Like{}, post.Likes...)
	m.posts = append(m.posts, &clone)
	return nil
}

func (m *MemoryStore) GetPostByID(_ context.Context, id string) (*Post, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, post := range m.posts {
		if post.ID == id {
			return m.clonePost(post), nil
		}
	}
	return nil, ErrNotFound
}

func (m *MemoryStore) ListPosts(_ context.Context) ([]Post, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	posts := make([]Post, 0, len(m.posts))
	for _, post := range m.posts {
		posts = append(posts, *m.clonePost(post))
	}
	// Stable sort keeps insertion order for equal timestamps.
	sort.SliceStable(posts, func(i, j int) bool {
		return posts[i].UpdatedAt.After(posts[j].UpdatedAt)
	})
	return posts, nil
}

func (m *MemoryStore) AppendComment(_ context.Context, postID string, comment Comment) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, post := range m.posts {
		if post.ID == postID {
			post.Comments = append(post.Comments, comment)
			post.UpdatedAt = comment.CreatedAt
			return nil
		}
	}
	return ErrNotFound
}

func (m *MemoryStore) InsertLike(_ context.Context, postID string, like Like) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, post := range m.posts {
		if post.ID == postID {
			for _, existing := range post.Likes {
				if existing.Username == like.Username {
					return ErrAlreadyExists
				}
			}
			post.Likes = append(post.Likes, like)
			return nil
		}
	}
	return ErrNotFound
}

// clonePost joins the author and deep-copies the mutable sequences.
// Callers hold the mutex.
func (m *MemoryStore) clonePost(post *Post) *Post {
	clone := *post
	clone.Comments = append([]Comment{}, post.Comments...)
	clone.Likes = append([]Like{}, post.Likes...)
	for _, user := range m.users {
		if user.ID == post.AuthorID {
			author := *user
			author.Sanitize()
			clone.Author = &author
			break
		}
	}
	return &clone
}

// --- GraphStore ---

func (m *MemoryStore) CreateFollow(_ context.Context, edge FollowEdge) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, existing := range m.follows {
		if existing.FollowerID == edge.FollowerID && existing.FollowingID == edge.FollowingID {
			return ErrAlreadyExists
		}
	}
	m.follows = append(m.follows, edge)
	return nil
}

func (m *MemoryStore) ListFollowing(_ context.Context, userID string) ([]User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	users := []User{}
	for _, edge := range m.follows {
		if edge.FollowerID == userID {
			if user := m.userByIDLocked(edge.FollowingID); user != nil {
				users = append(users, *user)
			}
		}
	}
	return users, nil
}

func (m *MemoryStore) ListFollowers(_ context.Context, userID string) ([]User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	users := []User{}
	for _, edge := range m.follows {
		if edge.FollowingID == userID {
			if user := m.userByIDLocked(edge.FollowerID); user != nil {
				users = append(users, *user)
			}
		}
	}
	return users, nil
}

func (m *MemoryStore) userByIDLocked(id string) *User {
	for _, user := range m.users {
		if user.ID == id {
			clone := *user
			clone.Sanitize()
			return &clone
		}
	}
	return nil
}
