package sitemap

import (
	"encoding/xml"
	"fmt"
	"io"
	"time"
)

const namespace = "http://www.sitemaps.org/schemas/sitemap/0.9"

// dateLayout is the W3C date form sitemaps.org accepts for lastmod.
const dateLayout = "2006-01-02"

type urlSet struct {
	XMLName xml.Name `xml:"urlset"`
	Xmlns   string   `xml:"xmlns,attr"`
	URLs    []xmlURL `xml:"url"`
}

type xmlURL struct {
	Loc        string `xml:"loc"`
	LastMod    string `xml:"lastmod,omitempty"`
	ChangeFreq string `xml:"changefreq,omitempty"`
	Priority   string `xml:"priority,omitempty"`
}

type sitemapIndex struct {
	XMLName  xml.Name     `xml:"sitemapindex"`
	Xmlns    string       `xml:"xmlns,attr"`
	Sitemaps []xmlSitemap `xml:"sitemap"`
}

type xmlSitemap struct {
	Loc     string `xml:"loc"`
	LastMod string `xml:"lastmod,omitempty"`
}

// WriteURLSet encodes entries as a sitemaps.org <urlset>.
func WriteURLSet(w io.Writer, entries []Entry) error {
	set := urlSet{Xmlns: namespace, URLs: make([]xmlURL, 0, len(entries))}
	for _, e := range entries {
		set.URLs = append(set.URLs, xmlURL{
			Loc:        e.Loc,
			LastMod:    lastMod(e.LastMod),
			ChangeFreq: e.ChangeFreq,
			Priority:   e.PriorityString(),
		})
	}
	return encode(w, set)
}

// WriteIndex encodes a <sitemapindex>.
func WriteIndex(w io.Writer, entries []IndexEntry) error {
	idx := sitemapIndex{Xmlns: namespace, Sitemaps: make([]xmlSitemap, 0, len(entries))}
	for _, e := range entries {
		idx.Sitemaps = append(idx.Sitemaps, xmlSitemap{Loc: e.Loc, LastMod: lastMod(e.LastMod)})
	}
	return encode(w, idx)
}

func encode(w io.Writer, v any) error {
	if _, err := io.WriteString(w, xml.Header); err != nil {
		return fmt.Errorf("sitemap: write header: %w", err)
	}
	enc := xml.NewEncoder(w)
	enc.Indent("", "  ")
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("sitemap: encode: %w", err)
	}
	if err := enc.Flush(); err != nil {
		return fmt.Errorf("sitemap: flush: %w", err)
	}
	_, err := io.WriteString(w, "\n")
	return err
}

func lastMod(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format(dateLayout)
}
