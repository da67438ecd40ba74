package userservice

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/sushihentaime/bloglist/internal/common"
)

var (
	ErrAuthenticationFailure = fmt.Errorf("invalid username or password")
)

func NewUserService(db *sql.DB, tm *TokenManager, mb common.MessageProducer, c *common.Cache) *UserService {
	return &UserService{
		m:  newUserModel(db),
		tm: tm,
		mb: mb,
		c:  c,
	}
}

// CreateUser registers a new user account and publishes a user.created event.
func (s *UserService) CreateUser(ctx context.Context, username, name, password string) (*User, error) {
	v := common.NewValidator()
	validateUsername(v, username)
	validateName(v, name)
	validatePassword(v, password)
	if !v.Valid() {
		return nil, v.ValidationError()
	}

	u := User{
		Username: username,
		Name:     name,
		Password: Password{Plain: password},
		BlogIDs:  []int64{},
	}

	err := u.Password.set(u.Password.Plain)
	if err != nil {
		return nil, err
	}

	err = s.m.insert(ctx, &u)
	if err != nil {
		return nil, err
	}

	data := struct {
		ID       int    `json:"id"`
		Username string `json:"username"`
	}{
		ID:       u.ID,
		Username: u.Username,
	}

	event, err := json.Marshal(data)
	if err != nil {
		return nil, err
	}

	err = s.mb.Publish(ctx, event, common.UserCreatedKey, common.UserExchange)
	if err != nil {
		return nil, err
	}

	return &u, nil
}

// LoginUser checks the credentials and mints a signed bearer token.
func (s *UserService) LoginUser(ctx context.Context, username, password string) (string, *User, error) {
	v := common.NewValidator()
	v.Check(username != "", "username", "must be provided")
	v.Check(password != "", "password", "must be provided")
	if !v.Valid() {
		return "", nil, v.ValidationError()
	}

	user, err := s.m.getByUsername(ctx, username)
	if err != nil {
		switch {
		case errors.Is(err, ErrNotFound):
			return "", nil, ErrAuthenticationFailure
		default:
			return "", nil, err
		}
	}

	ok, err := user.Password.compare(password)
	if err != nil {
		return "", nil, err
	}

	if !ok {
		return "", nil, ErrAuthenticationFailure
	}

	token, err := s.tm.New(user)
	if err != nil {
		return "", nil, err
	}

	return token, user, nil
}

// UserFromToken verifies a bearer token and resolves the user it identifies.
// Returns ErrMissingToken or ErrInvalidToken when the credential cannot be
// verified, and ErrNotFound when the identified user no longer exists (a
// legitimate race against token issuance).
func (s *UserService) UserFromToken(ctx context.Context, token string) (*User, error) {
	claims, err := s.tm.Verify(token)
	if err != nil {
		return nil, err
	}

	if cached, ok := s.c.Get(common.CacheKeyUserByToken(token)); ok {
		if user, ok := cached.(*User); ok {
			return user, nil
		}
	}

	user, err := s.m.getByID(ctx, claims.UserID)
	if err != nil {
		return nil, err
	}

	s.c.Set(common.CacheKeyUserByToken(token), user, UserCacheTime)

	return user, nil
}

// LinkBlog records blog ownership on the user side of the relation.
func (s *UserService) LinkBlog(ctx context.Context, userID, blogID int) error {
	v := common.NewValidator()
	validateInt(v, userID, "user_id")
	validateInt(v, blogID, "blog_id")
	if !v.Valid() {
		return v.ValidationError()
	}

	return s.m.addBlogID(ctx, userID, blogID)
}

// UnlinkBlog removes a deleted blog id from the user's owned list.
func (s *UserService) UnlinkBlog(ctx context.Context, userID, blogID int) error {
	v := common.NewValidator()
	validateInt(v, userID, "user_id")
	validateInt(v, blogID, "blog_id")
	if !v.Valid() {
		return v.ValidationError()
	}

	return s.m.removeBlogID(ctx, userID, blogID)
}

// GetUsers lists all user accounts with their owned blog ids. Password
// hashes never leave the model layer.
func (s *UserService) GetUsers(ctx context.Context) ([]User, error) {
	return s.m.getAll(ctx)
}
