// social/db.go
package social

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

const schema = `
CREATE TABLE IF NOT EXISTS users (
    id UUID PRIMARY KEY,
    name TEXT NOT NULL,
    username TEXT NOT NULL UNIQUE,
    email TEXT NOT NULL UNIQUE,
    password TEXT NOT NULL,
    created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
    updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
);
CREATE TABLE IF NOT EXISTS follows (
    follower_id UUID NOT NULL,
    following_id UUID NOT NULL,
    created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
    PRIMARY KEY (follower_id, following_id),
    CHECK (follower_id <> following_id)
);
CREATE TABLE IF NOT EXISTS posts (
    id UUID PRIMARY KEY,
    author_id UUID NOT NULL REFERENCES users(id),
    content TEXT NOT NULL,
    tags TEXT[] NOT NULL DEFAULT '{}',
    img_url TEXT NOT NULL DEFAULT '',
    created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
    updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
);
CREATE TABLE IF NOT EXISTS comments (
    id SERIAL PRIMARY KEY,
    post_id UUID NOT NULL REFERENCES posts(id) ON DELETE CASCADE,
    content TEXT NOT NULL,
    username TEXT NOT NULL,
    created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
);
CREATE TABLE IF NOT EXISTS likes (
    post_id UUID NOT NULL REFERENCES posts(id) ON DELETE CASCADE,
    username TEXT NOT NULL,
    created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
    PRIMARY KEY (post_id, username)
);
CREATE INDEX IF NOT EXISTS idx_posts_on_updated_at ON posts(updated_at DESC);
CREATE INDEX IF NOT EXISTS idx_follows_on_following_id ON follows(following_id);
CREATE INDEX IF NOT EXISTS idx_comments_on_post_id ON comments(post_id);
`

// Postgres error codes used to translate constraint violations into
// store sentinels.
const (
	pgUniqueViolation     = "23505"
	pgForeignKeyViolation = "23503"
)

type Database struct {
	pool *pgxpool.Pool
}

func NewDatabase(ctx context.Context, connectionString string) (*Database, error) {
	pool, err := pgxpool.New(ctx, connectionString)
	if err != nil {
		return nil, fmt.Errorf("failed to create connection pool: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}
	return &Database{pool: pool}, nil
}

func (d *Database) CreateTables(ctx context.Context) error {
	_, err := d.pool.Exec(ctx, schema)
	return err
}

func (d *Database) Close() {
	d.pool.Close()
}

func isPgErrorCode(err error, code string) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == code
}

// --- User Functions ---

func (d *Database) CreateUser(ctx context.Context, user *User) error {
	query := `INSERT INTO users (id, name, username, email, password, created_at, updated_at)
              VALUES ($1, $2, $3, $4, $5, $6, $7)`
	_, err := d.pool.Exec(ctx, query,
		user.ID,
		user.Name,
		user.Username,
		user.Email,
		user.Password,
		user.CreatedAt,
		user.UpdatedAt,
	)
	if isPgErrorCode(err, pgUniqueViolation) {
		return ErrAlreadyExists
	}
	return err
}

func (d *Database) GetUserByID(ctx context.Context, id string) (*User, error) {
	query := `SELECT id, name, username, email, password, created_at, updated_at FROM users WHERE id = $1`
	return d.scanUser(d.pool.QueryRow(ctx, query, id))
}

func (d *Database) GetUserByEmail(ctx context.Context, email string) (*User, error) {
	query := `SELECT id, name, username, email, password, created_at, updated_at FROM users WHERE email = $1`
	return d.scanUser(d.pool.QueryRow(ctx, query, email))
}

func (d *Database) scanUser(row pgx.Row) (*User, error) {
	var user User
	err := row.Scan(
		&user.ID,
		&user.Name,
		&user.Username,
		&user.Email,
		&user.Password,
		&user.CreatedAt,
		&user.UpdatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &user, nil
}

func (d *Database) SearchUsers(ctx context.Context, keyword string) ([]User, error) {
	query := `SELECT id, name, username, email, created_at, updated_at FROM users
              WHERE name ILIKE $1 OR username ILIKE $1`
	rows, err := d.pool.Query(ctx, query, "%"+keyword+"%")
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanUsers(rows)
}

// scanUsers reads password-stripped user rows.
func scanUsers(rows pgx.Rows) ([]User, error) {
	var users []User
	for rows.Next() {
		var user User
		if err := rows.Scan(
			&user.ID,
			&user.Name,
			&user.Username,
			&user.Email,
			&user.CreatedAt,
			&user.UpdatedAt,
		); err != nil {
			return nil, err
		}
		users = append(users, user)
	}
	return users, rows.Err()
}

// --- Post Functions ---

func (d *Database) CreatePost(ctx context.Context, post *Post) error {
	query := `INSERT INTO posts (id, author_id, content, tags, img_url, created_at, updated_at)
              VALUES ($1, $2, $3, $4, $5, $6, $7)`
	_, err := d.pool.Exec(ctx, query,
		post.ID,
		post.AuthorID,
		post.Content,
		post.Tags,
		post.ImgURL,
		post.CreatedAt,
		post.UpdatedAt,
	)
	if isPgErrorCode(err, pgForeignKeyViolation) {
		return ErrNotFound
	}
	return err
}

func (d *Database) GetPostByID(ctx context.Context, id string) (*Post, error) {
	query := `SELECT p.id, p.author_id, p.content, p.tags, p.img_url, p.created_at, p.updated_at,
                     u.id, u.name, u.username, u.email, u.created_at, u.updated_at
              FROM posts p JOIN users u ON u.id = p.author_id
              WHERE p.id = $1`
	row := d.pool.QueryRow(ctx, query, id)
	var post Post
	var author User
	err := row.Scan(
		&post.ID,
		&post.AuthorID,
		&post.Content,
		&post.Tags,
		&post.ImgURL,
		&post.CreatedAt,
		&post.UpdatedAt,
		&author.ID,
		&author.Name,
		&author.Username,
		&author.Email,
		&author.CreatedAt,
		&author.UpdatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	post.Author = &author
	if err := d.attachCommentsAndLikes(ctx, []*Post{&post}); err != nil {
		return nil, err
	}
	return &post, nil
}

func (d *Database) ListPosts(ctx context.Context) ([]Post, error) {
	query := `SELECT p.id, p.author_id, p.content, p.tags, p.img_url, p.created_at, p.updated_at,
                     u.id, u.name, u.username, u.email, u.created_at, u.updated_at
              FROM posts p JOIN users u ON u.id = p.author_id
              ORDER BY p.updated_at DESC`
	rows, err := d.pool.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var posts []Post
	for rows.Next() {
		var post Post
		var author User
		if err := rows.Scan(
			&post.ID,
			&post.AuthorID,
			&post.Content,
			&post.Tags,
			&post.ImgURL,
			&post.CreatedAt,
			&post.UpdatedAt,
			&author.ID,
			&author.Name,
			&author.Username,
			&author.Email,
			&author.CreatedAt,
			&author.UpdatedAt,
		); err != nil {
			return nil, err
		}
		post.Author = &author
		posts = append(posts, post)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	refs := make([]*Post, len(posts))
	for i := range posts {
		refs[i] = &posts[i]
	}
	if err := d.attachCommentsAndLikes(ctx, refs); err != nil {
		return nil, err
	}
	return posts, nil
}

// attachCommentsAndLikes fills the inline comment and like sequences for
// the given posts, comments in append order and likes in insert order.
func (d *Database) attachCommentsAndLikes(ctx context.Context, posts []*Post) error {
	if len(posts) == 0 {
		return nil
	}
	byID := make(map[string]*Post, len(posts))
	ids := make([]string, 0, len(posts))
	for _, post := range posts {
		post.Comments = []Comment{}
		post.Likes = []Like{}
		byID[post.ID] = post
		ids = append(ids, post.ID)
	}

	commentQuery := `SELECT post_id, content, username, created_at FROM comments
                     WHERE post_id = ANY($1) ORDER BY id`
	rows, err := d.pool.Query(ctx, commentQuery, ids)
	if err != nil {
		return err
	}
	defer rows.Close()
	for rows.Next() {
		var postID string
		var comment Comment
		if err := rows.Scan(&postID, &comment.Content, &comment.Username, &comment.CreatedAt); err != nil {
			return err
		}
		if post, ok := byID[postID]; ok {
			post.Comments = append(post.Comments, comment)
		}
	}
	if err := rows.Err(); err != nil {
		return err
	}

	likeQuery := `SELECT post_id, username, created_at FROM likes
                  WHERE post_id = ANY($1) ORDER BY created_at`
	rows, err = d.pool.Query(ctx, likeQuery, ids)
	if err != nil {
		return err
	}
	defer rows.Close()
	for rows.Next() {
		var postID string
		var like Like
		if err := rows.Scan(&postID, &like.Username, &like.CreatedAt); err != nil {
			return err
		}
		if post, ok := byID[postID]; ok {
			post.Likes = append(post.Likes, like)
		}
	}
	return rows.Err()
}

func (d *Database) AppendComment(ctx context.Context, postID string, comment Comment) error {
	bump := `UPDATE posts SET updated_at = $2 WHERE id = $1`
	tag, err := d.pool.Exec(ctx, bump, postID, comment.CreatedAt)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	insert := `INSERT INTO comments (post_id, content, username, created_at) VALUES ($1, $2, $3, $4)`
	_, err = d.pool.Exec(ctx, insert, postID, comment.Content, comment.Username, comment.CreatedAt)
	return err
}

// InsertLike relies on the (post_id, username) primary key: concurrent
// identical requests resolve at the database, one insert wins.
func (d *Database) InsertLike(ctx context.Context, postID string, like Like) error {
	query := `INSERT INTO likes (post_id, username, created_at) VALUES ($1, $2, $3)
              ON CONFLICT (post_id, username) DO NOTHING`
	tag, err := d.pool.Exec(ctx, query, postID, like.Username, like.CreatedAt)
	if isPgErrorCode(err, pgForeignKeyViolation) {
		return ErrNotFound
	}
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrAlreadyExists
	}
	return nil
}

// --- Follow Graph Functions ---

func (d *Database) CreateFollow(ctx context.Context, edge FollowEdge) error {
	query := `INSERT INTO follows (follower_id, following_id, created_at) VALUES ($1, $2, $3)
              ON CONFLICT (follower_id, following_id) DO NOTHING`
	tag, err := d.pool.Exec(ctx, query, edge.FollowerID, edge.FollowingID, edge.CreatedAt)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrAlreadyExists
	}
	return nil
}

func (d *Database) ListFollowing(ctx context.Context, userID string) ([]User, error) {
	query := `SELECT u.id, u.name, u.username, u.email, u.created_at, u.updated_at
              FROM follows f JOIN users u ON u.id = f.following_id
              WHERE f.follower_id = $1
              ORDER BY f.created_at`
	rows, err := d.pool.Query(ctx, query, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanUsers(rows)
}

func (d *Database) ListFollowers(ctx context.Context, userID string) ([]User, error) {
	query := `SELECT u.id, u.name, u.username, u.email, u.created_at, u.updated_at
              FROM follows f JOIN users u ON u.id = f.follower_id
              WHERE f.following_id = $1
              ORDER BY f.created_at`
	rows, err := d.pool.Query(ctx, query, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanUsers(rows)
}
