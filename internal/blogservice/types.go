package blogservice

import (
	"context"
	"database/sql"
	"log/slog"
	"time"

	"github.com/sushihentaime/bloglist/internal/common"
	"github.com/sushihentaime/bloglist/internal/userservice"
)

// Owner is the public projection of a blog's owner that is safe to embed in
// API responses: id, username and display name, never the password hash.
type Owner struct {
	ID       int    `json:"id"`
	Username string `json:"username"`
	Name     string `json:"name,omitempty"`
}

type Blog struct {
	ID     int    `json:"id"`
	Title  string `json:"title"`
	Author string `json:"author,omitempty"`
	URL    string `json:"url"`
	Likes  int    `json:"likes"`

	// UserID is set once at creation and never reassigned.
	UserID int    `json:"-"`
	User   *Owner `json:"user,omitempty"`

	CreatedAt time.Time `json:"-"`
	UpdatedAt time.Time `json:"-"`
	Version   int       `json:"-"`
}

type BlogModel struct {
	db *sql.DB
}

// UserDirectory is the slice of the user service the blog lifecycle needs:
// resolving a bearer token to a verified user, and maintaining the
// owned-blog back-reference on create and delete.
type UserDirectory interface {
	UserFromToken(ctx context.Context, token string) (*userservice.User, error)
	LinkBlog(ctx context.Context, userID, blogID int) error
	UnlinkBlog(ctx context.Context, userID, blogID int) error
}

type BlogService struct {
	m      *BlogModel
	users  UserDirectory
	mb     common.MessageProducer
	c      *common.Cache
	logger *slog.Logger
}
