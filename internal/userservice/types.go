package userservice

import (
	"database/sql"
	"time"

	"github.com/sushihentaime/bloglist/internal/common"
)

const (
	// UserCacheTime bounds how long a token resolves to a cached user.
	UserCacheTime time.Duration = 1 * time.Minute
)

type UserService struct {
	m  *UserModel
	tm *TokenManager
	mb common.MessageProducer
	c  *common.Cache
}

type UserModel struct {
	db *sql.DB
}

type User struct {
	ID       int      `json:"id"`
	Username string   `json:"username"`
	Name     string   `json:"name,omitempty"`
	Password Password `json:"-"`

	// BlogIDs is the owned-blog back-reference, kept as the inverse of each
	// blog's user_id. Appended on create, filtered on delete.
	BlogIDs []int64 `json:"blogs"`

	CreatedAt time.Time `json:"-"`
	UpdatedAt time.Time `json:"-"`
	Version   int       `json:"-"`
}

type Password struct {
	Plain string `json:"-"`
	hash  []byte `json:"-"`
}
