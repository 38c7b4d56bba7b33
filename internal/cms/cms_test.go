package cms

import (
	"context"
	"errors"
	"strings"
	"testing"
	"testing/fstest"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/stretchr/testify/require"
)

func post(frontMatter, body string) *fstest.MapFile {
	return &fstest.MapFile{Data: []byte("---\n" + frontMatter + "\n---\n" + body)}
}

func TestGetContentPageFromDisk(t *testing.T) {
	t.Parallel()

	c := NewClient("../../content")
	page, err := c.GetContentPage(context.Background(), KindPages, "about")
	require.NoError(t, err)
	require.Equal(t, "About Next Trip Anywhere", page.Title)
	require.Equal(t, "About Us | Next Trip Anywhere", page.SEO.Title)
	require.Contains(t, string(page.HTML), `<h2 id="what-we-do">`)
	require.Greater(t, page.WordCount, 40)
	require.Equal(t, 1, page.ReadingMinutes)
	require.NotEmpty(t, page.Headings)
	require.Equal(t, "what-we-do", page.Headings[0].ID)
	require.Equal(t, "What we do", page.Headings[0].Text)

	posts, err := c.ListPosts(context.Background(), ListPostsOptions{})
	require.NoError(t, err)
	require.Len(t, posts, 4)
	require.Equal(t, "essex-county-corporate-travel-solutions", posts[0].Slug)
	require.Equal(t, "best-time-book-flights-newark-airport", posts[3].Slug)
}

func TestGetContentPageSanitizes(t *testing.T) {
	t.Parallel()

	c := NewClientFS(fstest.MapFS{
		"pages/unsafe.md": post("title: Unsafe", strings.Join([]string{
			"Hello <script>alert(1)</script> world.",
			"",
			"[external](https://example.com/offer) and [internal](/quote).",
			"",
			`<img src="/x.png" onerror="steal()">`,
		}, "\n")),
	})
	page, err := c.GetContentPage(context.Background(), KindPages, "unsafe")
	require.NoError(t, err)

	html := string(page.HTML)
	require.NotContains(t, html, "<script")
	require.NotContains(t, html, "onerror")

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	require.NoError(t, err)
	ext := doc.Find(`a[href="https://example.com/offer"]`)
	require.Equal(t, 1, ext.Length())
	rel, _ := ext.Attr("rel")
	require.Contains(t, rel, "nofollow")
	target, _ := ext.Attr("target")
	require.Equal(t, "_blank", target)

	internal := doc.Find(`a[href="/quote"]`)
	require.Equal(t, 1, internal.Length())
	_, hasRel := internal.Attr("rel")
	require.False(t, hasRel)
}

func TestGetContentPageRejectsBadSlugs(t *testing.T) {
	t.Parallel()

	c := NewClientFS(fstest.MapFS{
		"pages/about.md": post("title: About", "Body"),
		"secret.md":      post("title: Secret", "Body"),
	})
	for _, slug := range []string{"", "../secret", "pages/../../secret", `a\b`, "missing"} {
		_, err := c.GetContentPage(context.Background(), KindPages, slug)
		require.ErrorIs(t, err, ErrNotFound, slug)
	}
	_, err := c.GetContentPage(context.Background(), "..", "secret")
	require.ErrorIs(t, err, ErrNotFound)

	page, err := c.GetContentPage(context.Background(), KindPages, "/About/")
	require.NoError(t, err)
	require.Equal(t, "about", page.Slug)
}

func TestGetContentPageDefaults(t *testing.T) {
	t.Parallel()

	mod := time.Date(2026, 5, 1, 0, 0, 0, 0, time.UTC)
	c := NewClientFS(fstest.MapFS{
		"pages/travel-tips.md": &fstest.MapFile{Data: []byte("No front matter here."), ModTime: mod},
		"blog/dated.md":        post("title: Dated\npublished_at: 2026-03-02", "Body"),
		"blog/broken.md":       post("title: [unterminated", "Body"),
	})

	page, err := c.GetContentPage(context.Background(), KindPages, "travel-tips")
	require.NoError(t, err)
	require.Equal(t, "Travel Tips", page.Title)
	require.Equal(t, mod, page.UpdatedAt)

	page, err = c.GetContentPage(context.Background(), KindBlog, "dated")
	require.NoError(t, err)
	require.Equal(t, "2026-03-02", page.PublishedAt.Format("2006-01-02"))
	require.Equal(t, page.PublishedAt, page.UpdatedAt)

	_, err = c.GetContentPage(context.Background(), KindBlog, "broken")
	require.Error(t, err)
	require.False(t, errors.Is(err, ErrNotFound))
}

func blogFS() fstest.MapFS {
	return fstest.MapFS{
		"blog/a-cruise.md":   post("title: A\npublished_at: 2026-03-01\ncategory: Cruises\ntags: [Bermuda, Cape Liberty]", "Body"),
		"blog/b-cruise.md":   post("title: B\npublished_at: 2026-03-01\ncategory: cruises\ntags: [bahamas]", "Body"),
		"blog/airport.md":    post("title: Airport\npublished_at: 2026-04-01\ncategory: airport-guides\ntags: [cape liberty]", "Body"),
		"blog/older.md":      post("title: Older\npublished_at: 2025-01-01\ncategory: family", "Body"),
		"blog/draft.md":      post("title: Draft\npublished_at: 2026-01-01\ndraft: true", "Body"),
		"blog/scheduled.md":  post("title: Later\npublished_at: 2027-01-01", "Body"),
		"blog/notes.txt":     &fstest.MapFile{Data: []byte("ignored")},
		"blog/sub/nested.md": post("title: Nested", "Body"),
	}
}

func newBlogClient() *Client {
	c := NewClientFS(blogFS())
	c.now = func() time.Time { return time.Date(2026, 10, 16, 0, 0, 0, 0, time.UTC) }
	return c
}

func slugs(posts []Post) []string {
	out := make([]string, len(posts))
	for i, p := range posts {
		out[i] = p.Slug
	}
	return out
}

func TestListPostsOrderAndFilters(t *testing.T) {
	t.Parallel()

	c := newBlogClient()
	ctx := context.Background()

	posts, err := c.ListPosts(ctx, ListPostsOptions{})
	require.NoError(t, err)
	require.Equal(t, []string{"airport", "a-cruise", "b-cruise", "older"}, slugs(posts))

	posts, err = c.ListPosts(ctx, ListPostsOptions{Category: "CRUISES"})
	require.NoError(t, err)
	require.Equal(t, []string{"a-cruise", "b-cruise"}, slugs(posts))

	posts, err = c.ListPosts(ctx, ListPostsOptions{Tag: "Cape Liberty"})
	require.NoError(t, err)
	require.Equal(t, []string{"airport", "a-cruise"}, slugs(posts))

	posts, err = c.ListPosts(ctx, ListPostsOptions{Limit: 2})
	require.NoError(t, err)
	require.Len(t, posts, 2)

	posts, err = c.ListPosts(ctx, ListPostsOptions{Search: "older"})
	require.NoError(t, err)
	require.Equal(t, []string{"older"}, slugs(posts))

	_, err = c.GetContentPage(ctx, KindBlog, "draft")
	require.ErrorIs(t, err, ErrNotFound)
}

func TestListPostsReturnsCopies(t *testing.T) {
	t.Parallel()

	c := newBlogClient()
	posts, err := c.ListPosts(context.Background(), ListPostsOptions{})
	require.NoError(t, err)
	posts[0].Tags[0] = "mutated"
	posts[0].Title = "mutated"

	again, err := c.ListPosts(context.Background(), ListPostsOptions{})
	require.NoError(t, err)
	require.Equal(t, "Airport", again[0].Title)
	require.Equal(t, "cape liberty", again[0].Tags[0])
}

func TestRelatedPosts(t *testing.T) {
	t.Parallel()

	c := newBlogClient()
	related, err := c.RelatedPosts(context.Background(), "a-cruise", 5)
	require.NoError(t, err)
	require.Equal(t, []string{"b-cruise", "airport"}, slugs(related))

	related, err = c.RelatedPosts(context.Background(), "a-cruise", 1)
	require.NoError(t, err)
	require.Equal(t, []string{"b-cruise"}, slugs(related))

	_, err = c.RelatedPosts(context.Background(), "missing", 3)
	require.ErrorIs(t, err, ErrNotFound)
}

func TestContentCache(t *testing.T) {
	t.Parallel()

	fsys := fstest.MapFS{"pages/about.md": post("title: First", "Body")}
	now := time.Date(2026, 10, 16, 12, 0, 0, 0, time.UTC)
	c := NewClientFS(fsys)
	c.now = func() time.Time { return now }

	page, err := c.GetContentPage(context.Background(), KindPages, "about")
	require.NoError(t, err)
	require.Equal(t, "First", page.Title)

	fsys["pages/about.md"] = post("title: Second", "Body")
	page, err = c.GetContentPage(context.Background(), KindPages, "about")
	require.NoError(t, err)
	require.Equal(t, "First", page.Title)

	now = now.Add(6 * time.Minute)
	page, err = c.GetContentPage(context.Background(), KindPages, "about")
	require.NoError(t, err)
	require.Equal(t, "Second", page.Title)

	fsys["pages/about.md"] = post("title: Third", "Body")
	c.Flush()
	page, err = c.GetContentPage(context.Background(), KindPages, "about")
	require.NoError(t, err)
	require.Equal(t, "Third", page.Title)
}

// Not parallel: the cache duration is process-wide.
func TestSetContentCacheDuration(t *testing.T) {
	SetContentCacheDuration(30 * time.Second)
	defer SetContentCacheDuration(5 * time.Minute)

	fsys := fstest.MapFS{"pages/about.md": post("title: First", "Body")}
	now := time.Date(2026, 10, 16, 12, 0, 0, 0, time.UTC)
	c := NewClientFS(fsys)
	c.now = func() time.Time { return now }

	_, err := c.GetContentPage(context.Background(), KindPages, "about")
	require.NoError(t, err)
	fsys["pages/about.md"] = post("title: Second", "Body")

	now = now.Add(20 * time.Second)
	page, err := c.GetContentPage(context.Background(), KindPages, "about")
	require.NoError(t, err)
	require.Equal(t, "First", page.Title)

	now = now.Add(15 * time.Second)
	page, err = c.GetContentPage(context.Background(), KindPages, "about")
	require.NoError(t, err)
	require.Equal(t, "Second", page.Title)

	SetContentCacheDuration(0)
	require.Equal(t, time.Minute, time.Duration(contentCacheTTL.Load()))
}

func TestCanceledContext(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	c := newBlogClient()
	_, err := c.ListPosts(ctx, ListPostsOptions{})
	require.ErrorIs(t, err, context.Canceled)
}

func TestReadingMinutes(t *testing.T) {
	t.Parallel()

	require.Equal(t, 1, readingMinutes(0))
	require.Equal(t, 1, readingMinutes(200))
	require.Equal(t, 3, readingMinutes(450))

	body := strings.Repeat("word ", 450)
	out, err := renderMarkdown(body)
	require.NoError(t, err)
	require.Equal(t, 450, out.words)
}
