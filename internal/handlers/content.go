package handlers

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"nexttripanywhere.com/web/internal/cms"
	"nexttripanywhere.com/web/internal/nav"
	"nexttripanywhere.com/web/internal/observability"
	"nexttripanywhere.com/web/internal/seo"
)

const relatedPostLimit = 3

// BlogView is /blog with optional ?category= and ?tag= filters.
type BlogView struct {
	Category string
	Tag      string
	Posts    []cms.Post
}

// PostView is /blog/<slug>.
type PostView struct {
	Post    cms.ContentPage
	Related []cms.Post
}

// ContentView is a static markdown page such as /about.
type ContentView struct {
	Page cms.ContentPage
}

// Blog lists published posts, newest first.
func (a *App) Blog(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	opts := cms.ListPostsOptions{
		Category: strings.TrimSpace(q.Get("category")),
		Tag:      strings.TrimSpace(q.Get("tag")),
	}
	posts, err := a.content.ListPosts(r.Context(), opts)
	if err != nil {
		a.serverError(w, r, err)
		return
	}
	meta := a.identity.Page(
		"Travel Blog for Essex County | "+a.identity.Name,
		"Newark airport tips, school break planning and corporate travel advice from the Next Trip Anywhere team in Essex County, NJ.",
		"/blog",
		"essex county travel blog", "newark airport tips",
	)
	if opts.Category != "" || opts.Tag != "" {
		meta.Robots = seo.RobotsNoIndex
	}
	items := listItems(posts, func(p cms.Post) seo.ListItem {
		return seo.ListItem{Name: p.Title, URL: "/blog/" + p.Slug}
	})
	vm := a.page(r, meta, a.crumbs(r), a.identity.ItemList("/blog", "Blog posts", items))
	vm.Page = BlogView{Category: opts.Category, Tag: opts.Tag, Posts: posts}
	a.renderPage(w, r, http.StatusOK, "blog", vm)
}

// BlogPost renders one post with related posts.
func (a *App) BlogPost(w http.ResponseWriter, r *http.Request) {
	slug := chi.URLParam(r, "slug")
	post, err := a.content.GetContentPage(r.Context(), cms.KindBlog, slug)
	if errors.Is(err, cms.ErrNotFound) || (err == nil && post.PublishedAt.After(a.now())) {
		a.NotFound(w, r)
		return
	}
	if err != nil {
		a.serverError(w, r, err)
		return
	}
	related, err := a.content.RelatedPosts(r.Context(), post.Slug, relatedPostLimit)
	if err != nil {
		observability.FromContext(r.Context()).Warn("related posts", zap.String("slug", post.Slug), zap.Error(err))
	}

	path := "/blog/" + post.Slug
	meta := a.contentMeta(post, path)
	meta.OG.Type = "article"
	article := a.identity.Article(seo.ArticleInput{
		Headline:      post.Title,
		Description:   post.Description(),
		URL:           path,
		Image:         post.Image,
		Author:        post.Author,
		DatePublished: isoDate(post.PublishedAt),
		DateModified:  isoDate(post.UpdatedAt),
		Keywords:      post.Tags,
		WordCount:     post.WordCount,
		Section:       post.Category,
	})
	crumbs := nav.Trail(
		nav.Crumb{Href: "/blog", LabelKey: "nav.blog", Label: "Blog"},
		nav.Crumb{Href: path, Label: post.Title},
	)
	vm := a.page(r, meta, crumbs, article)
	vm.Page = PostView{Post: post, Related: related}
	a.renderPage(w, r, http.StatusOK, "post", vm)
}

// StaticPage serves a markdown page from the pages collection.
func (a *App) StaticPage(slug string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		page, err := a.content.GetContentPage(r.Context(), cms.KindPages, slug)
		if errors.Is(err, cms.ErrNotFound) {
			a.NotFound(w, r)
			return
		}
		if err != nil {
			a.serverError(w, r, err)
			return
		}
		path := "/" + slug
		crumbs := nav.Trail(nav.Crumb{Href: path, LabelKey: "nav." + slug, Label: page.Title})
		var nodes []map[string]any
		if slug == "about" {
			nodes = append(nodes, a.identity.LocalBusiness(nil))
		}
		nodes = append(nodes, a.identity.FAQPage(a.identity.Abs(path), contentFAQ(page)))
		vm := a.page(r, a.contentMeta(page, path), crumbs, nodes...)
		vm.Page = ContentView{Page: page}
		a.renderPage(w, r, http.StatusOK, "content", vm)
	}
}

func (a *App) contentMeta(p cms.ContentPage, path string) seo.Meta {
	title := p.SEO.Title
	if title == "" {
		title = p.Title + " | " + a.identity.Name
	}
	meta := a.identity.Page(title, p.Description(), path, p.SEO.Keywords...)
	if p.Image != "" {
		img := a.identity.Abs(p.Image)
		meta.OG.Image, meta.Twitter.Image = img, img
	}
	if p.SEO.OGImage != "" {
		img := a.identity.Abs(p.SEO.OGImage)
		meta.OG.Image, meta.Twitter.Image = img, img
	}
	if p.SEO.NoIndex {
		meta.Robots = seo.RobotsNoIndex
	}
	return meta
}

func isoDate(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format("2006-01-02")
}
