package sdk

import (
	"context"
	"net/url"
	"strconv"
	"time"
)

// BlogQuery selects a blog listing. Sort is "visits" or "date"; empty uses
// the backend default.
type BlogQuery struct {
	Limit int
	Sort  string
}

// ListBlogs returns published articles.
func (c *Client) ListBlogs(ctx context.Context, q BlogQuery) ([]Blog, error) {
	query := url.Values{}
	if q.Limit > 0 {
		query.Set("limit", strconv.Itoa(q.Limit))
	}
	if q.Sort != "" {
		query.Set("sort", q.Sort)
	}
	var blogs []Blog
	if err := c.get(ctx, "/blogs", query, &blogs); err != nil {
		return nil, err
	}
	return blogs, nil
}

// GetBlog returns one article.
func (c *Client) GetBlog(ctx context.Context, id string) (*Blog, error) {
	if err := requireID("blog", id); err != nil {
		return nil, err
	}
	var blog Blog
	if err := c.get(ctx, "/blogs/"+segment(id), nil, &blog); err != nil {
		return nil, err
	}
	return &blog, nil
}

// VisitBlog increments the article's visit counter.
func (c *Client) VisitBlog(ctx context.Context, id string) error {
	if err := requireID("blog", id); err != nil {
		return err
	}
	return c.patch(ctx, "/blogs/"+segment(id)+"/visit", nil, nil)
}

// CreateBlog publishes an article authored by identity.
func (c *Client) CreateBlog(ctx context.Context, identity *Identity, blog Blog) (*Blog, error) {
	if identity != nil {
		if blog.Author == "" {
			blog.Author = identity.DisplayName
		}
		blog.AuthorEmail = identity.Address
	}
	if blog.PublishDate.IsZero() {
		blog.PublishDate = time.Now().UTC()
	}
	var res InsertResult
	if err := c.post(ctx, "/blogs", blog, &res); err != nil {
		return nil, err
	}
	blog.ID = res.InsertedID
	return &blog, nil
}

// UpdateBlog replaces an article's editable fields.
func (c *Client) UpdateBlog(ctx context.Context, id string, blog Blog) error {
	if err := requireID("blog", id); err != nil {
		return err
	}
	return c.patch(ctx, "/blogs/"+segment(id), blog, nil)
}

// DeleteBlog removes an article.
func (c *Client) DeleteBlog(ctx context.Context, id string) error {
	if err := requireID("blog", id); err != nil {
		return err
	}
	return c.delete(ctx, "/blogs/"+segment(id), nil)
}
