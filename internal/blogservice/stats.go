package blogservice

import "context"

// ListStats summarizes the blog collection for the public stats endpoint.
type ListStats struct {
	Count      int   `json:"count"`
	TotalLikes int   `json:"totalLikes"`
	Favorite   *Blog `json:"favorite,omitempty"`
}

// TotalLikes sums the like counters over a list of blogs.
func TotalLikes(blogs []Blog) int {
	total := 0
	for _, blog := range blogs {
		total += blog.Likes
	}

	return total
}

// FavoriteBlog returns the blog with the most likes, or nil for an empty
// list. Ties keep the earliest entry.
func FavoriteBlog(blogs []Blog) *Blog {
	if len(blogs) == 0 {
		return nil
	}

	favorite := blogs[0]
	for _, blog := range blogs[1:] {
		if blog.Likes > favorite.Likes {
			favorite = blog
		}
	}

	return &favorite
}

func (s *BlogService) Stats(ctx context.Context) (*ListStats, error) {
	blogs, err := s.GetBlogs(ctx)
	if err != nil {
		return nil, err
	}

	return &ListStats{
		Count:      len(blogs),
		TotalLikes: TotalLikes(blogs),
		Favorite:   FavoriteBlog(blogs),
	}, nil
}
