package social

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type testEnv struct {
	svc   *Service
	store *MemoryStore
	cache *FeedCache
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	store := NewMemoryStore()
	cache := NewFeedCache()
	tokens := NewTokenManager("test-secret", time.Hour)
	return &testEnv{
		svc:   NewService(store, store, store, cache, tokens, zap.NewNop()),
		store: store,
		cache: cache,
	}
}

func (e *testEnv) registerAndLogin(t *testing.T, name, username, email string) string {
	t.Helper()
	ctx := context.Background()
	require.NoError(t, e.svc.Register(ctx, name, username, email, "secret"))
	token, err := e.svc.Login(ctx, email, "secret")
	require.NoError(t, err)
	return token
}

func TestRegisterValidation(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	t.Run("missing name", func(t *testing.T) {
		err := env.svc.Register(ctx, "", "ann1", "ann@x.com", "secret")
		assert.Equal(t, CodeNameEmpty, CodeOf(err))
	})

	t.Run("missing username", func(t *testing.T) {
		err := env.svc.Register(ctx, "Ann", "", "ann@x.com", "secret")
		assert.Equal(t, CodeUsernameEmpty, CodeOf(err))
	})

	t.Run("malformed email", func(t *testing.T) {
		err := env.svc.Register(ctx, "Ann", "ann1", "not-an-email", "secret")
		assert.Equal(t, CodeEmailInvalid, CodeOf(err))
	})

	t.Run("four character password fails", func(t *testing.T) {
		err := env.svc.Register(ctx, "Ann", "ann1", "ann@x.com", "1234")
		assert.Equal(t, CodePasswordTooShort, CodeOf(err))
	})

	t.Run("five character password succeeds", func(t *testing.T) {
		err := env.svc.Register(ctx, "Ann", "ann1", "ann@x.com", "12345")
		assert.NoError(t, err)
	})

	t.Run("duplicate username conflicts", func(t *testing.T) {
		err := env.svc.Register(ctx, "Ann Again", "ann1", "again@x.com", "secret")
		assert.Equal(t, CodeUserConflict, CodeOf(err))
	})

	t.Run("duplicate email conflicts", func(t *testing.T) {
		err := env.svc.Register(ctx, "Ann Again", "ann2", "ann@x.com", "secret")
		assert.Equal(t, CodeUserConflict, CodeOf(err))
	})
}

func TestLoginDoesNotLeakAccountExistence(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	require.NoError(t, env.svc.Register(ctx, "Ann", "ann1", "ann@x.com", "secret"))

	_, wrongPassword := env.svc.Login(ctx, "ann@x.com", "wrong")
	_, unknownEmail := env.svc.Login(ctx, "nobody@x.com", "secret")

	assert.Equal(t, CodeBadLogin, CodeOf(wrongPassword))
	assert.Equal(t, CodeBadLogin, CodeOf(unknownEmail))
	assert.Equal(t, wrongPassword.Error(), unknownEmail.Error())
}

func TestAuthenticationGatesEveryIdentityScopedOperation(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	checks := map[string]func() error{
		"getFeed": func() error {
			_, err := env.svc.GetFeed(ctx, "bad-token")
			return err
		},
		"getPostById": func() error {
			_, err := env.svc.GetPostByID(ctx, "bad-token", "p1")
			return err
		},
		"addPost": func() error {
			return env.svc.AddPost(ctx, "bad-token", "hi", nil, "")
		},
		"commentPost": func() error {
			return env.svc.CommentPost(ctx, "bad-token", "p1", "hi")
		},
		"likePost": func() error {
			return env.svc.LikePost(ctx, "bad-token", "p1")
		},
		"getProfile": func() error {
			_, err := env.svc.GetProfile(ctx, "bad-token")
			return err
		},
		"getUserById": func() error {
			_, err := env.svc.GetUserByID(ctx, "bad-token", "u1")
			return err
		},
		"searchUsers": func() error {
			_, err := env.svc.SearchUsers(ctx, "bad-token", "ann")
			return err
		},
		"followUser": func() error {
			return env.svc.FollowUser(ctx, "bad-token", "u1")
		},
	}
	for name, call := range checks {
		t.Run(name, func(t *testing.T) {
			assert.Equal(t, CodeUnauthorized, CodeOf(call()))
		})
	}
}

func TestAuthenticateRejectsDeletedSubject(t *testing.T) {
	env := newTestEnv(t)
	tokens := NewTokenManager("test-secret", time.Hour)
	ghost := NewUser("Ghost", "ghost", "ghost@x.com")
	raw, err := tokens.Mint(ghost)
	require.NoError(t, err)

	_, err = env.svc.Authenticate(context.Background(), raw)
	assert.Equal(t, CodeUnauthorized, CodeOf(err))
}

func TestFeedReflectsNewPostAfterAck(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	token := env.registerAndLogin(t, "Ann", "ann1", "ann@x.com")

	// Populate the cache with the empty feed first.
	posts, err := env.svc.GetFeed(ctx, token)
	require.NoError(t, err)
	assert.Empty(t, posts)

	require.NoError(t, env.svc.AddPost(ctx, token, "hi", []string{"intro"}, ""))

	posts, err = env.svc.GetFeed(ctx, token)
	require.NoError(t, err)
	require.Len(t, posts, 1)
	assert.Equal(t, "hi", posts[0].Content)
	require.NotNil(t, posts[0].Author)
	assert.Equal(t, "ann1", posts[0].Author.Username)
	assert.Empty(t, posts[0].Author.Password)
	assert.Empty(t, posts[0].Likes)
	assert.Empty(t, posts[0].Comments)
}

func TestFeedServedFromCacheUntilInvalidated(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	token := env.registerAndLogin(t, "Ann", "ann1", "ann@x.com")
	require.NoError(t, env.svc.AddPost(ctx, token, "hi", nil, ""))

	_, err := env.svc.GetFeed(ctx, token)
	require.NoError(t, err)

	// Pin the cache to a recognizable payload: a hit must return it
	// verbatim, bypassing the store.
	env.cache.Set([]byte(`[{"id":"pinned","content":"cached"}]`))
	posts, err := env.svc.GetFeed(ctx, token)
	require.NoError(t, err)
	require.Len(t, posts, 1)
	assert.Equal(t, "pinned", posts[0].ID)
}

func TestMutationsInvalidateFeedCache(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	token := env.registerAndLogin(t, "Ann", "ann1", "ann@x.com")
	require.NoError(t, env.svc.AddPost(ctx, token, "hi", nil, ""))

	posts, err := env.svc.GetFeed(ctx, token)
	require.NoError(t, err)
	postID := posts[0].ID

	t.Run("commentPost", func(t *testing.T) {
		require.NoError(t, env.svc.CommentPost(ctx, token, postID, "nice"))
		_, ok := env.cache.Get()
		assert.False(t, ok)

		posts, err := env.svc.GetFeed(ctx, token)
		require.NoError(t, err)
		require.Len(t, posts[0].Comments, 1)
		assert.Equal(t, "nice", posts[0].Comments[0].Content)
		assert.Equal(t, "ann1", posts[0].Comments[0].Username)
	})

	t.Run("likePost", func(t *testing.T) {
		require.NoError(t, env.svc.LikePost(ctx, token, postID))
		_, ok := env.cache.Get()
		assert.False(t, ok)

		posts, err := env.svc.GetFeed(ctx, token)
		require.NoError(t, err)
		require.Len(t, posts[0].Likes, 1)
		assert.Equal(t, "ann1", posts[0].Likes[0].Username)
	})
}

func TestCommentValidationAndMissingPost(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	token := env.registerAndLogin(t, "Ann", "ann1", "ann@x.com")

	err := env.svc.CommentPost(ctx, token, "p1", "   ")
	assert.Equal(t, CodeCommentEmpty, CodeOf(err))

	err = env.svc.CommentPost(ctx, token, "missing", "hello")
	assert.Equal(t, CodePostNotFound, CodeOf(err))
}

func TestLikePostRejectsRepeat(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	token := env.registerAndLogin(t, "Ann", "ann1", "ann@x.com")
	require.NoError(t, env.svc.AddPost(ctx, token, "hi", nil, ""))
	posts, err := env.svc.GetFeed(ctx, token)
	require.NoError(t, err)
	postID := posts[0].ID

	require.NoError(t, env.svc.LikePost(ctx, token, postID))
	err = env.svc.LikePost(ctx, token, postID)
	assert.Equal(t, CodeAlreadyLiked, CodeOf(err))

	post, err := env.svc.GetPostByID(ctx, token, postID)
	require.NoError(t, err)
	assert.Len(t, post.Likes, 1)
}

func TestAddPostRequiresContent(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	token := env.registerAndLogin(t, "Ann", "ann1", "ann@x.com")

	err := env.svc.AddPost(ctx, token, "  ", nil, "")
	assert.Equal(t, CodeContentEmpty, CodeOf(err))
}

func TestFollowUser(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	annToken := env.registerAndLogin(t, "Ann", "ann1", "ann@x.com")
	bobToken := env.registerAndLogin(t, "Bob", "bob1", "bob@x.com")

	ann, err := env.svc.GetProfile(ctx, annToken)
	require.NoError(t, err)
	bob, err := env.svc.GetProfile(ctx, bobToken)
	require.NoError(t, err)

	t.Run("self follow fails", func(t *testing.T) {
		err := env.svc.FollowUser(ctx, annToken, ann.ID)
		assert.Equal(t, CodeSelfFollow, CodeOf(err))
	})

	t.Run("follow then duplicate", func(t *testing.T) {
		require.NoError(t, env.svc.FollowUser(ctx, annToken, bob.ID))
		err := env.svc.FollowUser(ctx, annToken, bob.ID)
		assert.Equal(t, CodeDuplicateFollow, CodeOf(err))
	})

	t.Run("profiles resolve both directions", func(t *testing.T) {
		annProfile, err := env.svc.GetProfile(ctx, annToken)
		require.NoError(t, err)
		require.Len(t, annProfile.FollowingsDetail, 1)
		assert.Equal(t, "bob1", annProfile.FollowingsDetail[0].Username)
		assert.Empty(t, annProfile.FollowersDetail)

		bobProfile, err := env.svc.GetProfile(ctx, bobToken)
		require.NoError(t, err)
		require.Len(t, bobProfile.FollowersDetail, 1)
		assert.Equal(t, "ann1", bobProfile.FollowersDetail[0].Username)
		assert.Empty(t, bobProfile.FollowingsDetail)
	})

	t.Run("edge count stays one", func(t *testing.T) {
		annProfile, err := env.svc.GetUserByID(ctx, bobToken, ann.ID)
		require.NoError(t, err)
		assert.Len(t, annProfile.FollowingsDetail, 1)
	})
}

func TestSearchUsers(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	token := env.registerAndLogin(t, "Annabel", "bee", "annabel@x.com")
	env.registerAndLogin(t, "Bob", "ANNularity", "bob@x.com")
	env.registerAndLogin(t, "Carol", "carol", "carol@x.com")

	users, err := env.svc.SearchUsers(ctx, token, "ann")
	require.NoError(t, err)
	require.Len(t, users, 2)
	names := []string{users[0].Name, users[1].Name}
	assert.Contains(t, names, "Annabel")
	assert.Contains(t, names, "Bob")
}

func TestGetUserByIDNotFound(t *testing.T) {
	env := newTestEnv(t)
	token := env.registerAndLogin(t, "Ann", "ann1", "ann@x.com")

	_, err := env.svc.GetUserByID(context.Background(), token, "missing")
	assert.Equal(t, CodeUserNotFound, CodeOf(err))
}

func TestGetPostByIDNotFound(t *testing.T) {
	env := newTestEnv(t)
	token := env.registerAndLogin(t, "Ann", "ann1", "ann@x.com")

	_, err := env.svc.GetPostByID(context.Background(), token, "missing")
	assert.Equal(t, CodePostNotFound, CodeOf(err))
}

func TestEndToEndFlow(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	require.NoError(t, env.svc.Register(ctx, "Ann", "ann1", "ann@x.com", "secret"))
	token, err := env.svc.Login(ctx, "ann@x.com", "secret")
	require.NoError(t, err)

	require.NoError(t, env.svc.AddPost(ctx, token, "hi", nil, ""))

	posts, err := env.svc.GetFeed(ctx, token)
	require.NoError(t, err)
	require.Len(t, posts, 1)
	assert.Equal(t, "hi", posts[0].Content)
	require.NotNil(t, posts[0].Author)
	assert.Equal(t, "ann1", posts[0].Author.Username)
	assert.Empty(t, posts[0].Likes)
	assert.Empty(t, posts[0].Comments)
}
