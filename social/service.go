// social/service.go
package social

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Service composes the auth gate, the stores and the feed cache into
// the request-level operations. Every identity-scoped operation
// resolves the bearer credential before any domain logic runs. All
// dependencies are injected; there is no package-level state.
type Service struct {
	users  UserStore
	posts  PostStore
	graph  GraphStore
	cache  *FeedCache
	tokens *TokenManager
	logger *zap.Logger
}

func NewService(users UserStore, posts PostStore, graph GraphStore, cache *FeedCache, tokens *TokenManager, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		users:  users,
		posts:  posts,
		graph:  graph,
		cache:  cache,
		tokens: tokens,
		logger: logger,
	}
}

// Authenticate verifies a bearer credential and re-reads the subject's
// backing record. Pure verification: no session cache, no side effects.
func (s *Service) Authenticate(ctx context.Context, credential string) (*User, error) {
	identity, err := s.tokens.Verify(credential)
	if err != nil {
		return nil, err
	}
	user, err := s.users.GetUserByID(ctx, identity.ID)
	if errors.Is(err, ErrNotFound) {
		return nil, NewError(CodeUnauthorized, "credential subject no longer exists")
	}
	if err != nil {
		return nil, err
	}
	user.Sanitize()
	return user, nil
}

// --- Account Operations ---

func (s *Service) Register(ctx context.Context, name, username, email, password string) error {
	if err := validateRegistration(name, username, email, password); err != nil {
		return err
	}
	user := NewUser(name, username, email)
	if err := user.SetPassword(password); err != nil {
		return err
	}
	err := s.users.CreateUser(ctx, user)
	if errors.Is(err, ErrAlreadyExists) {
		return NewError(CodeUserConflict, "username or email already in use")
	}
	return err
}

// Login collapses unknown-email and wrong-password failures into one
// error so callers cannot enumerate accounts.
func (s *Service) Login(ctx context.Context, email, password string) (string, error) {
	badLogin := NewError(CodeBadLogin, "invalid email or password")
	user, err := s.users.GetUserByEmail(ctx, email)
	if errors.Is(err, ErrNotFound) {
		return "", badLogin
	}
	if err != nil {
		return "", err
	}
	ok, err := user.PasswordMatches(password)
	if err != nil {
		return "", err
	}
	if !ok {
		return "", badLogin
	}
	return s.tokens.Mint(user)
}

func (s *Service) GetProfile(ctx context.Context, credential string) (*Profile, error) {
	user, err := s.Authenticate(ctx, credential)
	if err != nil {
		return nil, err
	}
	return s.resolveProfile(ctx, user)
}

func (s *Service) GetUserByID(ctx context.Context, credential, id string) (*Profile, error) {
	if _, err := s.Authenticate(ctx, credential); err != nil {
		return nil, err
	}
	user, err := s.users.GetUserByID(ctx, id)
	if errors.Is(err, ErrNotFound) {
		return nil, NewError(CodeUserNotFound, "user not found")
	}
	if err != nil {
		return nil, err
	}
	user.Sanitize()
	return s.resolveProfile(ctx, user)
}

// resolveProfile runs the two independent two-hop joins. Detail lists
// come back in edge insertion order.
func (s *Service) resolveProfile(ctx context.Context, user *User) (*Profile, error) {
	followings, err := s.graph.ListFollowing(ctx, user.ID)
	if err != nil {
		return nil, err
	}
	followers, err := s.graph.ListFollowers(ctx, user.ID)
	if err != nil {
		return nil, err
	}
	return &Profile{
		User:             *user,
		FollowingsDetail: followings,
		FollowersDetail:  followers,
	}, nil
}

func (s *Service) SearchUsers(ctx context.Context, credential, keyword string) ([]User, error) {
	if _, err := s.Authenticate(ctx, credential); err != nil {
		return nil, err
	}
	return s.users.SearchUsers(ctx, keyword)
}

func (s *Service) FollowUser(ctx context.Context, credential, followingID string) error {
	user, err := s.Authenticate(ctx, credential)
	if err != nil {
		return err
	}
	if user.ID == followingID {
		return NewError(CodeSelfFollow, "you can't follow yourself")
	}
	err = s.graph.CreateFollow(ctx, FollowEdge{
		FollowerID:  user.ID,
		FollowingID: followingID,
		CreatedAt:   time.Now().UTC(),
	})
	if errors.Is(err, ErrAlreadyExists) {
		return NewError(CodeDuplicateFollow, "follow already exists")
	}
	return err
}

// --- Post Operations ---

// GetFeed is a cache-aside read over the post listing. A hit returns
// the cached serialized sequence; a miss reads through to the store,
// populates the cache with no expiry and returns the result.
func (s *Service) GetFeed(ctx context.Context, credential string) ([]Post, error) {
	if _, err := s.Authenticate(ctx, credential); err != nil {
		return nil, err
	}
	if payload, ok := s.cache.Get(); ok {
		var posts []Post
		if err := json.Unmarshal(payload, &posts); err == nil {
			return posts, nil
		}
		// Undecodable entry: drop it and read through.
		s.logger.Warn("discarding undecodable feed cache entry")
		s.cache.Invalidate()
	}
	posts, err := s.posts.ListPosts(ctx)
	if err != nil {
		return nil, err
	}
	if posts == nil {
		posts = []Post{}
	}
	payload, err := json.Marshal(posts)
	if err != nil {
		return nil, err
	}
	s.cache.Set(payload)
	return posts, nil
}

func (s *Service) GetPostByID(ctx context.Context, credential, id string) (*Post, error) {
	if _, err := s.Authenticate(ctx, credential); err != nil {
		return nil, err
	}
	post, err := s.posts.GetPostByID(ctx, id)
	if errors.Is(err, ErrNotFound) {
		return nil, NewError(CodePostNotFound, "post not found")
	}
	return post, err
}

// AddPost inserts the post and invalidates the feed cache before
// acknowledging, so a feed read issued after the ack observes the post.
func (s *Service) AddPost(ctx context.Context, credential, content string, tags []string, imgURL string) error {
	user, err := s.Authenticate(ctx, credential)
	if err != nil {
		return err
	}
	if strings.TrimSpace(content) == "" {
		return NewError(CodeContentEmpty, "content is required")
	}
	if tags == nil {
		tags = []string{}
	}
	now := time.Now().UTC()
	post := &Post{
		ID:        uuid.New().String(),
		AuthorID:  user.ID,
		Content:   content,
		Tags:      tags,
		ImgURL:    imgURL,
		Comments:  []Comment{},
		Likes:     []Like{},
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.posts.CreatePost(ctx, post); err != nil {
		return err
	}
	s.cache.Invalidate()
	return nil
}

// CommentPost appends a comment under the caller's username and bumps
// the post's updated_at. The comment changes visible feed content, so
// the cache is invalidated before the ack.
func (s *Service) CommentPost(ctx context.Context, credential, postID, content string) error {
	user, err := s.Authenticate(ctx, credential)
	if err != nil {
		return err
	}
	if strings.TrimSpace(content) == "" {
		return NewError(CodeCommentEmpty, "comment content is required")
	}
	err = s.posts.AppendComment(ctx, postID, Comment{
		Content:   content,
		Username:  user.Username,
		CreatedAt: time.Now().UTC(),
	})
	if errors.Is(err, ErrNotFound) {
		return NewError(CodePostNotFound, "post not found")
	}
	if err != nil {
		return err
	}
	s.cache.Invalidate()
	return nil
}

// LikePost inserts at most one like per (post, username). The store
// performs the conditional insert atomically; there is no
// check-then-insert window here. Repeats fail, there is no unlike.
func (s *Service) LikePost(ctx context.Context, credential, postID string) error {
	user, err := s.Authenticate(ctx, credential)
	if err != nil {
		return err
	}
	err = s.posts.InsertLike(ctx, postID, Like{
		Username:  user.Username,
		CreatedAt: time.Now().UTC(),
	})
	if errors.Is(err, ErrAlreadyExists) {
		return NewError(CodeAlreadyLiked, "you have already liked this post")
	}
	if errors.Is(err, ErrNotFound) {
		return NewError(CodePostNotFound, "post not found")
	}
	if err != nil {
		return err
	}
	s.cache.Invalidate()
	return nil
}
