package cms

import (
	"context"
	"errors"
	"io/fs"
	"path"
	"sort"
	"strings"
	"time"
)

// Post is the listing view of a blog entry.
type Post struct {
	Slug           string
	Title          string
	Summary        string
	Author         string
	Category       string
	Tags           []string
	Image          string
	PublishedAt    time.Time
	UpdatedAt      time.Time
	ReadingMinutes int
}

// ListPostsOptions controls post listing.
type ListPostsOptions struct {
	Category string
	Tag      string
	Search   string
	Limit    int
}

// ListPosts returns published blog posts, newest first and then by slug.
// Drafts and posts scheduled after now are skipped.
func (c *Client) ListPosts(ctx context.Context, opts ListPostsOptions) ([]Post, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	posts, ok := c.cachedPosts(KindBlog)
	if !ok {
		var err error
		posts, err = c.loadPosts()
		if err != nil {
			return nil, err
		}
		c.storePosts(KindBlog, posts)
	}
	return filterPosts(posts, opts), nil
}

// RelatedPosts returns up to limit posts sharing the category or a tag with slug.
// Category matches rank ahead of tag matches.
func (c *Client) RelatedPosts(ctx context.Context, slug string, limit int) ([]Post, error) {
	all, err := c.ListPosts(ctx, ListPostsOptions{})
	if err != nil {
		return nil, err
	}
	slug = sanitizeSlug(slug)
	var current *Post
	for i := range all {
		if all[i].Slug == slug {
			current = &all[i]
			break
		}
	}
	if current == nil {
		return nil, ErrNotFound
	}

	type scored struct {
		post  Post
		score int
	}
	var candidates []scored
	for _, p := range all {
		if p.Slug == current.Slug {
			continue
		}
		score := 0
		if current.Category != "" && p.Category == current.Category {
			score += 10
		}
		for _, tag := range p.Tags {
			if containsString(current.Tags, tag) {
				score++
			}
		}
		if score > 0 {
			candidates = append(candidates, scored{post: p, score: score})
		}
	}
	// all is already newest first, so a stable sort keeps recency as the tiebreak
	sort.SliceStable(candidates, func(i, j int) bool {
		return candidates[i].score > candidates[j].score
	})
	out := make([]Post, 0, len(candidates))
	for _, cand := range candidates {
		if limit > 0 && len(out) >= limit {
			break
		}
		out = append(out, cand.post)
	}
	return out, nil
}

func (c *Client) loadPosts() ([]Post, error) {
	fsys := c.filesystem()
	entries, err := fs.ReadDir(fsys, KindBlog)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return []Post{}, nil
		}
		return nil, err
	}
	now := c.clock()
	posts := make([]Post, 0, len(entries))
	for _, entry := range entries {
		if entry.IsDir() || path.Ext(entry.Name()) != ".md" {
			continue
		}
		slug := sanitizeSlug(strings.TrimSuffix(entry.Name(), ".md"))
		if slug == "" {
			continue
		}
		page, err := readContentMarkdown(fsys, KindBlog, slug)
		if err != nil {
			return nil, err
		}
		if page.Draft || page.PublishedAt.After(now) {
			continue
		}
		posts = append(posts, postFromPage(page))
	}
	sortPosts(posts)
	return posts, nil
}

func postFromPage(p ContentPage) Post {
	return Post{
		Slug:           p.Slug,
		Title:          p.Title,
		Summary:        p.Summary,
		Author:         p.Author,
		Category:       p.Category,
		Tags:           append([]string(nil), p.Tags...),
		Image:          p.Image,
		PublishedAt:    p.PublishedAt,
		UpdatedAt:      p.UpdatedAt,
		ReadingMinutes: p.ReadingMinutes,
	}
}

func filterPosts(posts []Post, opts ListPostsOptions) []Post {
	category := strings.ToLower(strings.TrimSpace(opts.Category))
	tag := strings.ToLower(strings.TrimSpace(opts.Tag))
	search := strings.ToLower(strings.TrimSpace(opts.Search))

	filtered := make([]Post, 0, len(posts))
	for _, p := range posts {
		if category != "" && p.Category != category {
			continue
		}
		if tag != "" && !containsString(p.Tags, tag) {
			continue
		}
		if search != "" {
			hay := strings.ToLower(p.Title + " " + p.Summary + " " + strings.Join(p.Tags, " "))
			if !strings.Contains(hay, search) {
				continue
			}
		}
		filtered = append(filtered, p)
		if opts.Limit > 0 && len(filtered) >= opts.Limit {
			break
		}
	}
	return copyPosts(filtered)
}

func sortPosts(items []Post) {
	sort.SliceStable(items, func(i, j int) bool {
		a := items[i]
		b := items[j]
		if !a.PublishedAt.Equal(b.PublishedAt) {
			return a.PublishedAt.After(b.PublishedAt)
		}
		return strings.Compare(a.Slug, b.Slug) < 0
	})
}

func copyPosts(src []Post) []Post {
	if len(src) == 0 {
		return []Post{}
	}
	out := make([]Post, len(src))
	for i, p := range src {
		out[i] = p
		if p.Tags != nil {
			out[i].Tags = append([]string(nil), p.Tags...)
		}
	}
	return out
}

func containsString(list []string, val string) bool {
	val = strings.ToLower(strings.TrimSpace(val))
	for _, item := range list {
		if strings.ToLower(strings.TrimSpace(item)) == val {
			return true
		}
	}
	return false
}
