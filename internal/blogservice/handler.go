package blogservice

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"log/slog"

	"github.com/sushihentaime/bloglist/internal/common"
)

func NewBlogService(db *sql.DB, users UserDirectory, mb common.MessageProducer, c *common.Cache, logger *slog.Logger) *BlogService {
	return &BlogService{
		m:      newBlogModel(db),
		users:  users,
		mb:     mb,
		c:      c,
		logger: logger,
	}
}

type CreateBlogRequest struct {
	Title  string `json:"title"`
	Author string `json:"author"`
	URL    string `json:"url"`

	// Likes is a pointer so an omitted counter can default to zero while an
	// explicit value, including an invalid negative one, is preserved.
	Likes *int `json:"likes"`
}

type UpdateBlogRequest struct {
	Title  *string `json:"title"`
	Author *string `json:"author"`
	URL    *string `json:"url"`
	Likes  *int    `json:"likes"`
}

// CreateBlog authenticates the bearer token, validates the payload, persists
// the blog and links it into the owner's blog list. The back-reference
// update is best-effort: a failure after the blog was persisted leaves a
// recoverable inconsistency and is logged, not rolled back.
func (s *BlogService) CreateBlog(ctx context.Context, token string, req *CreateBlogRequest) (*Blog, error) {
	user, err := s.users.UserFromToken(ctx, token)
	if err != nil {
		return nil, err
	}

	likes := 0
	if req.Likes != nil {
		likes = *req.Likes
	}

	v := common.NewValidator()
	validateTitle(v, req.Title)
	validateURL(v, req.URL)
	validateLikes(v, likes)
	if !v.Valid() {
		return nil, v.ValidationError()
	}

	blog := &Blog{
		Title:  req.Title,
		Author: req.Author,
		URL:    req.URL,
		Likes:  likes,
		UserID: user.ID,
	}

	err = s.m.insert(ctx, blog)
	if err != nil {
		return nil, err
	}

	err = s.users.LinkBlog(ctx, user.ID, blog.ID)
	if err != nil {
		s.logger.Error("could not link blog to owner", slog.Int("blog_id", blog.ID), slog.Int("user_id", user.ID), slog.String("error", err.Error()))
	}

	blog.User = &Owner{ID: user.ID, Username: user.Username, Name: user.Name}

	s.c.Delete(common.CacheKeyBlogList)
	s.publishEvent(ctx, common.BlogCreatedKey, blog.ID, user.ID)

	return blog, nil
}

// DeleteBlog removes a blog after verifying the caller owns it. Deleting an
// id that matches no record succeeds as a no-op before any authentication
// happens: a missing target is not an authorization question. The owner
// back-reference cleanup is attempted but never reverses the deletion.
func (s *BlogService) DeleteBlog(ctx context.Context, token, rawID string) error {
	id, err := ParseBlogID(rawID)
	if err != nil {
		return err
	}

	blog, err := s.m.getByID(ctx, id)
	if err != nil {
		switch {
		case errors.Is(err, ErrRecordNotFound):
			return nil
		default:
			return err
		}
	}

	user, err := s.users.UserFromToken(ctx, token)
	if err != nil {
		return err
	}

	if blog.UserID != user.ID {
		return ErrNotOwner
	}

	// A concurrent delete may have won the race; the store treats that as a
	// clean no-op.
	_, err = s.m.delete(ctx, id)
	if err != nil {
		return err
	}

	err = s.users.UnlinkBlog(ctx, user.ID, id)
	if err != nil {
		s.logger.Error("could not unlink blog from owner", slog.Int("blog_id", id), slog.Int("user_id", user.ID), slog.String("error", err.Error()))
	}

	s.c.Delete(common.CacheKeyBlogList)
	s.publishEvent(ctx, common.BlogDeletedKey, id, user.ID)

	return nil
}

// UpdateBlog merges the provided fields over the stored blog and persists
// the result. The update surface carries no authentication or ownership
// check; only delete enforces ownership. That asymmetry matches the observed
// behavior of the API and is kept deliberately.
func (s *BlogService) UpdateBlog(ctx context.Context, rawID string, req *UpdateBlogRequest) (*Blog, error) {
	id, err := ParseBlogID(rawID)
	if err != nil {
		return nil, err
	}

	blog, err := s.m.getByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.Title != nil {
		blog.Title = *req.Title
	}
	if req.Author != nil {
		blog.Author = *req.Author
	}
	if req.URL != nil {
		blog.URL = *req.URL
	}
	if req.Likes != nil {
		blog.Likes = *req.Likes
	}

	v := common.NewValidator()
	validateTitle(v, blog.Title)
	validateURL(v, blog.URL)
	validateLikes(v, blog.Likes)
	if !v.Valid() {
		return nil, v.ValidationError()
	}

	err = s.m.update(ctx, blog)
	if err != nil {
		return nil, err
	}

	s.c.Delete(common.CacheKeyBlogList)

	return blog, nil
}

// GetBlogs lists every blog with the owner projection attached. The listing
// is cached between mutations.
func (s *BlogService) GetBlogs(ctx context.Context) ([]Blog, error) {
	if cached, ok := s.c.Get(common.CacheKeyBlogList); ok {
		if blogs, ok := cached.([]Blog); ok {
			return blogs, nil
		}
	}

	blogs, err := s.m.getAll(ctx)
	if err != nil {
		return nil, err
	}

	s.c.Set(common.CacheKeyBlogList, blogs)

	return blogs, nil
}

func (s *BlogService) publishEvent(ctx context.Context, key common.BindingKey, blogID, userID int) {
	data := struct {
		BlogID int `json:"blog_id"`
		UserID int `json:"user_id"`
	}{
		BlogID: blogID,
		UserID: userID,
	}

	event, err := json.Marshal(data)
	if err != nil {
		s.logger.Error("could not marshal blog event", slog.String("key", string(key)), slog.String("error", err.Error()))
		return
	}

	err = s.mb.Publish(ctx, event, key, common.BlogExchange)
	if err != nil {
		s.logger.Error("could not publish blog event", slog.String("key", string(key)), slog.String("error", err.Error()))
	}
}
