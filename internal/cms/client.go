package cms

import (
	"errors"
	"io/fs"
	"os"
	"strings"
	"sync"
	"sync/atomic"
	"time"
)

// ErrNotFound is returned when a content resource cannot be located.
var ErrNotFound = errors.New("cms: not found")

const (
	defaultContentDir = "content"

	// KindBlog and KindPages are the content directories served by the site.
	KindBlog  = "blog"
	KindPages = "pages"
)

var contentCacheTTL atomic.Int64

func init() {
	contentCacheTTL.Store(int64(5 * time.Minute))
}

// SetContentCacheDuration allows overriding the in-memory cache duration (primarily for tests).
func SetContentCacheDuration(d time.Duration) {
	if d <= 0 {
		d = time.Minute
	}
	contentCacheTTL.Store(int64(d))
}

// Client provides read-only access to markdown content on disk.
type Client struct {
	contentDir string
	fsys       fs.FS
	now        func() time.Time

	mu    sync.RWMutex
	pages map[string]cacheEntry[ContentPage]
	posts map[string]cacheEntry[[]Post]
}

type cacheEntry[T any] struct {
	value   T
	expires time.Time
}

// NewClient constructs a Client reading from contentDir.
func NewClient(contentDir string) *Client {
	c := &Client{}
	c.SetContentDir(contentDir)
	return c
}

// NewClientFS constructs a Client over an arbitrary filesystem rooted at the content dir.
func NewClientFS(fsys fs.FS) *Client {
	return &Client{contentDir: defaultContentDir, fsys: fsys}
}

// SetContentDir configures the directory holding <kind>/<slug>.md files.
func (c *Client) SetContentDir(dir string) {
	if c == nil {
		return
	}
	dir = strings.TrimSpace(dir)
	if dir == "" {
		dir = defaultContentDir
	}
	c.mu.Lock()
	c.contentDir = dir
	c.fsys = os.DirFS(dir)
	c.pages = nil
	c.posts = nil
	c.mu.Unlock()
}

// ContentDir returns the configured directory.
func (c *Client) ContentDir() string {
	if c == nil || strings.TrimSpace(c.contentDir) == "" {
		return defaultContentDir
	}
	return c.contentDir
}

// Flush drops every cached page and post listing.
func (c *Client) Flush() {
	c.mu.Lock()
	c.pages = nil
	c.posts = nil
	c.mu.Unlock()
}

func (c *Client) clock() time.Time {
	if c.now != nil {
		return c.now()
	}
	return time.Now()
}

func (c *Client) filesystem() fs.FS {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.fsys == nil {
		return os.DirFS(defaultContentDir)
	}
	return c.fsys
}

func (c *Client) cachedPage(key string) (ContentPage, bool) {
	c.mu.RLock()
	entry, ok := c.pages[key]
	c.mu.RUnlock()
	if !ok || c.clock().After(entry.expires) {
		return ContentPage{}, false
	}
	return cloneContentPage(entry.value), true
}

func (c *Client) storePage(key string, page ContentPage) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.pages == nil {
		c.pages = map[string]cacheEntry[ContentPage]{}
	}
	c.pages[key] = cacheEntry[ContentPage]{
		value:   cloneContentPage(page),
		expires: c.clock().Add(time.Duration(contentCacheTTL.Load())),
	}
}

func (c *Client) cachedPosts(key string) ([]Post, bool) {
	c.mu.RLock()
	entry, ok := c.posts[key]
	c.mu.RUnlock()
	if !ok || c.clock().After(entry.expires) {
		return nil, false
	}
	return copyPosts(entry.value), true
}

func (c *Client) storePosts(key string, posts []Post) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.posts == nil {
		c.posts = map[string]cacheEntry[[]Post]{}
	}
	c.posts[key] = cacheEntry[[]Post]{
		value:   copyPosts(posts),
		expires: c.clock().Add(time.Duration(contentCacheTTL.Load())),
	}
}
