package blogservice

import (
	"context"
	"database/sql"
	"errors"
	"strconv"

	"github.com/lib/pq"
)

var (
	ErrRecordNotFound = errors.New("record not found")
	ErrMalformedID    = errors.New("malformed id")
	ErrUserForeignKey = errors.New("user_id does not exist")
	ErrNotOwner       = errors.New("not the owner")
)

func newBlogModel(db *sql.DB) *BlogModel {
	return &BlogModel{db: db}
}

// ParseBlogID turns a raw path parameter into a store key. A value that is
// not a well-formed key is a client input error (ErrMalformedID), distinct
// from a well-formed key that matches no record.
func ParseBlogID(raw string) (int, error) {
	id, err := strconv.Atoi(raw)
	if err != nil || id < 1 {
		return 0, ErrMalformedID
	}

	return id, nil
}

// ForeignKeyError reports whether err is a foreign key constraint violation
// on the named constraint.
func ForeignKeyError(err error, name string) bool {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		if pqErr.Code == "23503" && pqErr.Constraint == name {
			return true
		}
	}

	return false
}

func (m *BlogModel) insert(ctx context.Context, blog *Blog) error {
	query := `
		INSERT INTO blogs (title, author, url, likes, user_id)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, created_at, updated_at, version`

	args := []any{
		blog.Title,
		blog.Author,
		blog.URL,
		blog.Likes,
		blog.UserID,
	}

	err := m.db.QueryRowContext(ctx, query, args...).Scan(&blog.ID, &blog.CreatedAt, &blog.UpdatedAt, &blog.Version)
	if err != nil {
		switch {
		case ForeignKeyError(err, "blogs_user_id_fkey"):
			return ErrUserForeignKey
		default:
			return err
		}
	}

	return nil
}

// getByID fetches a blog together with the owner projection when the owner
// exists.
func (m *BlogModel) getByID(ctx context.Context, id int) (*Blog, error) {
	query := `
		SELECT b.id, b.title, b.author, b.url, b.likes, b.user_id, b.created_at, b.updated_at, b.version, u.id, u.username, u.name
		FROM blogs b
		LEFT JOIN users u ON b.user_id = u.id
		WHERE b.id = $1`

	row := m.db.QueryRowContext(ctx, query, id)

	blog, err := scanBlog(row)
	if err != nil {
		switch {
		case errors.Is(err, sql.ErrNoRows):
			return nil, ErrRecordNotFound
		default:
			return nil, err
		}
	}

	return blog, nil
}

func (m *BlogModel) update(ctx context.Context, blog *Blog) error {
	query := `
		UPDATE blogs
		SET title = $1, author = $2, url = $3, likes = $4, updated_at = now(), version = version + 1
		WHERE id = $5
		RETURNING created_at, updated_at, version`

	args := []any{
		blog.Title,
		blog.Author,
		blog.URL,
		blog.Likes,
		blog.ID,
	}

	err := m.db.QueryRowContext(ctx, query, args...).Scan(&blog.CreatedAt, &blog.UpdatedAt, &blog.Version)
	if err != nil {
		switch {
		case errors.Is(err, sql.ErrNoRows):
			return ErrRecordNotFound
		default:
			return err
		}
	}

	return nil
}

// delete removes a blog by id. Deleting an absent id is not an error: two
// requests racing on the same id must both finish cleanly.
func (m *BlogModel) delete(ctx context.Context, id int) (bool, error) {
	query := `
		DELETE FROM blogs
		WHERE id = $1`

	res, err := m.db.ExecContext(ctx, query, id)
	if err != nil {
		return false, err
	}

	rows, err := res.RowsAffected()
	if err != nil {
		return false, err
	}

	return rows > 0, nil
}

func (m *BlogModel) getAll(ctx context.Context) ([]Blog, error) {
	query := `
		SELECT b.id, b.title, b.author, b.url, b.likes, b.user_id, b.created_at, b.updated_at, b.version, u.id, u.username, u.name
		FROM blogs b
		LEFT JOIN users u ON b.user_id = u.id
		ORDER BY b.id`

	rows, err := m.db.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	blogs := []Blog{}
	for rows.Next() {
		blog, err := scanBlog(rows)
		if err != nil {
			return nil, err
		}
		blogs = append(blogs, *blog)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return blogs, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanBlog(row rowScanner) (*Blog, error) {
	var (
		blog     Blog
		userID   sql.NullInt64
		ownerID  sql.NullInt64
		username sql.NullString
		name     sql.NullString
	)

	err := row.Scan(&blog.ID, &blog.Title, &blog.Author, &blog.URL, &blog.Likes, &userID, &blog.CreatedAt, &blog.UpdatedAt, &blog.Version, &ownerID, &username, &name)
	if err != nil {
		return nil, err
	}

	if userID.Valid {
		blog.UserID = int(userID.Int64)
	}

	if ownerID.Valid {
		blog.User = &Owner{
			ID:       int(ownerID.Int64),
			Username: username.String,
			Name:     name.String,
		}
	}

	return &blog, nil
}
