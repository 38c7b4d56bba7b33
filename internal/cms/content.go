package cms

import (
	"context"
	"errors"
	"fmt"
	"html/template"
	"io/fs"
	"path"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// ContentPage is a markdown document rendered to sanitized HTML.
type ContentPage struct {
	Kind           string
	Slug           string
	Title          string
	Summary        string
	Author         string
	Category       string
	Tags           []string
	Image          string
	PublishedAt    time.Time
	UpdatedAt      time.Time
	Draft          bool
	Body           string
	HTML           template.HTML
	Headings       []Heading
	WordCount      int
	ReadingMinutes int
	SEO            ContentSEO
	FAQ            []FAQ
}

// FAQ is a question/answer pair declared in front matter.
type FAQ struct {
	Question string `yaml:"question"`
	Answer   string `yaml:"answer"`
}

// ContentSEO holds optional metadata overrides.
type ContentSEO struct {
	Title       string
	Description string
	Keywords    []string
	OGImage     string
	NoIndex     bool
}

// Heading is a section anchor extracted from the rendered body.
type Heading struct {
	Level int
	ID    string
	Text  string
}

type contentFrontMatter struct {
	Title       string                `yaml:"title"`
	Summary     string                `yaml:"summary"`
	Author      string                `yaml:"author"`
	Category    string                `yaml:"category"`
	Tags        []string              `yaml:"tags"`
	Image       string                `yaml:"image"`
	PublishedAt string                `yaml:"published_at"`
	UpdatedAt   string                `yaml:"updated_at"`
	Draft       bool                  `yaml:"draft"`
	SEO         contentFrontMatterSEO `yaml:"seo"`
	FAQ         []FAQ                 `yaml:"faq"`
}

type contentFrontMatterSEO struct {
	Title       string   `yaml:"title"`
	Description string   `yaml:"description"`
	Keywords    []string `yaml:"keywords"`
	OGImage     string   `yaml:"og_image"`
	NoIndex     bool     `yaml:"noindex"`
}

// GetContentPage loads content/<kind>/<slug>.md. Drafts are reported as ErrNotFound.
func (c *Client) GetContentPage(ctx context.Context, kind, slug string) (ContentPage, error) {
	kind = sanitizeSlug(kind)
	slug = sanitizeSlug(slug)
	if kind == "" || slug == "" {
		return ContentPage{}, ErrNotFound
	}
	if err := ctx.Err(); err != nil {
		return ContentPage{}, err
	}

	cacheKey := kind + "|" + slug
	if page, ok := c.cachedPage(cacheKey); ok {
		return page, nil
	}

	page, err := readContentMarkdown(c.filesystem(), kind, slug)
	if err != nil {
		return ContentPage{}, err
	}
	if page.Draft {
		return ContentPage{}, ErrNotFound
	}
	c.storePage(cacheKey, page)
	return cloneContentPage(page), nil
}

func readContentMarkdown(fsys fs.FS, kind, slug string) (ContentPage, error) {
	if slug == "" {
		return ContentPage{}, ErrNotFound
	}
	file := path.Join(kind, slug+".md")

	data, err := fs.ReadFile(fsys, file)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return ContentPage{}, ErrNotFound
		}
		return ContentPage{}, err
	}
	fm, body := splitFrontMatter(string(data))
	front := contentFrontMatter{}
	if strings.TrimSpace(fm) != "" {
		if err := yaml.Unmarshal([]byte(fm), &front); err != nil {
			return ContentPage{}, fmt.Errorf("cms: parse front matter %s: %w", file, err)
		}
	}

	rendered, err := renderMarkdown(body)
	if err != nil {
		return ContentPage{}, fmt.Errorf("cms: render %s: %w", file, err)
	}

	page := ContentPage{
		Kind:           kind,
		Slug:           slug,
		Title:          strings.TrimSpace(front.Title),
		Summary:        strings.TrimSpace(front.Summary),
		Author:         strings.TrimSpace(front.Author),
		Category:       strings.ToLower(strings.TrimSpace(front.Category)),
		Tags:           lowerSlice(front.Tags),
		Image:          strings.TrimSpace(front.Image),
		PublishedAt:    parseContentDate(front.PublishedAt),
		UpdatedAt:      parseContentDate(front.UpdatedAt),
		Draft:          front.Draft,
		Body:           body,
		HTML:           rendered.html,
		Headings:       rendered.headings,
		WordCount:      rendered.words,
		ReadingMinutes: readingMinutes(rendered.words),
		SEO: ContentSEO{
			Title:       strings.TrimSpace(front.SEO.Title),
			Description: strings.TrimSpace(front.SEO.Description),
			Keywords:    front.SEO.Keywords,
			OGImage:     strings.TrimSpace(front.SEO.OGImage),
			NoIndex:     front.SEO.NoIndex,
		},
	}
	for _, f := range front.FAQ {
		if q, a := strings.TrimSpace(f.Question), strings.TrimSpace(f.Answer); q != "" && a != "" {
			page.FAQ = append(page.FAQ, FAQ{Question: q, Answer: a})
		}
	}
	if page.UpdatedAt.IsZero() {
		page.UpdatedAt = page.PublishedAt
	}
	if page.UpdatedAt.IsZero() {
		if info, statErr := fs.Stat(fsys, file); statErr == nil {
			page.UpdatedAt = info.ModTime()
		}
	}
	if page.Title == "" {
		page.Title = prettifySlug(slug)
	}
	return page, nil
}

// Description returns the SEO description, falling back to the summary.
func (p ContentPage) Description() string {
	if p.SEO.Description != "" {
		return p.SEO.Description
	}
	return p.Summary
}

func splitFrontMatter(input string) (string, string) {
	input = strings.TrimLeft(input, "\ufeff")
	input = strings.ReplaceAll(input, "\r\n", "\n")
	lines := strings.Split(input, "\n")
	if strings.TrimSpace(lines[0]) != "---" {
		return "", input
	}
	for i := 1; i < len(lines); i++ {
		if strings.TrimSpace(lines[i]) == "---" {
			fm := strings.Join(lines[1:i], "\n")
			body := strings.Join(lines[i+1:], "\n")
			return fm, strings.TrimLeft(body, "\n")
		}
	}
	return "", input
}

func parseContentDate(v string) time.Time {
	v = strings.TrimSpace(v)
	if v == "" {
		return time.Time{}
	}
	layouts := []string{
		time.RFC3339,
		"2006-01-02",
		"2006/01/02",
		"2006-1-2",
	}
	for _, layout := range layouts {
		if t, err := time.Parse(layout, v); err == nil {
			return t
		}
	}
	return time.Time{}
}

func prettifySlug(slug string) string {
	slug = strings.TrimSpace(slug)
	if slug == "" {
		return slug
	}
	parts := strings.Split(slug, "-")
	for i, part := range parts {
		if part == "" {
			continue
		}
		parts[i] = strings.ToUpper(part[:1]) + part[1:]
	}
	return strings.Join(parts, " ")
}

func sanitizeSlug(slug string) string {
	slug = strings.TrimSpace(strings.ToLower(slug))
	slug = strings.Trim(slug, "/")
	if slug == "" {
		return ""
	}
	if strings.Contains(slug, "..") {
		return ""
	}
	if strings.ContainsAny(slug, `/\`) {
		return ""
	}
	return slug
}

func cloneContentPage(src ContentPage) ContentPage {
	cp := src
	if src.Tags != nil {
		cp.Tags = append([]string(nil), src.Tags...)
	}
	if src.Headings != nil {
		cp.Headings = append([]Heading(nil), src.Headings...)
	}
	if src.SEO.Keywords != nil {
		cp.SEO.Keywords = append([]string(nil), src.SEO.Keywords...)
	}
	return cp
}

func lowerSlice(values []string) []string {
	if len(values) == 0 {
		return nil
	}
	out := make([]string, 0, len(values))
	for _, v := range values {
		v = strings.ToLower(strings.TrimSpace(v))
		if v != "" {
			out = append(out, v)
		}
	}
	return out
}
