package main

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/spf13/cobra"

	"nexttripanywhere.com/web/internal/audit"
	"nexttripanywhere.com/web/internal/seo"
)

// previewPaths maps a record kind to its page path.
var previewPaths = map[string]func(slug string) string{
	"cruise":      func(s string) string { return "/cruises/" + s },
	"cruise-line": func(s string) string { return "/cruises/" + s },
	"destination": func(s string) string { return "/destinations/" + s },
	"deal":        func(s string) string { return "/deals/" + s },
	"package":     func(s string) string { return "/packages/" + s },
	"guide":       func(s string) string { return "/guides/" + s },
	"town":        func(s string) string { return "/travel-from-" + s },
	"service":     func(s string) string { return "/services/" + s },
	"location":    func(s string) string { return "/from/" + s },
	"post":        func(s string) string { return "/blog/" + s },
	"page":        func(s string) string { return "/" + strings.TrimPrefix(s, "/") },
}

func newSchemaCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "schema",
		Short: "Validate or preview JSON-LD structured data",
	}
	cmd.AddCommand(newSchemaValidateCommand(), newSchemaPreviewCommand())
	return cmd
}

func newSchemaValidateCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "validate",
		Short: "Render every sitemap page and validate its JSON-LD graph",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			rt, err := getRuntime(cmd)
			if err != nil {
				return err
			}
			app, err := rt.App()
			if err != nil {
				return err
			}
			h, _ := rt.Handler()
			paths, err := app.PagePaths(cmd.Context())
			if err != nil {
				return err
			}

			failed := 0
			for _, p := range paths {
				docs, err := pageSchemas(cmd, h, p)
				if err != nil {
					failed++
					_, _ = fmt.Fprintf(rt.Writer(), "FAIL %s: %v\n", p, err)
					continue
				}
				for _, d := range docs {
					for _, verr := range seo.Validate(d) {
						failed++
						_, _ = fmt.Fprintf(rt.Writer(), "FAIL %s: %v\n", p, verr)
					}
				}
			}
			_, _ = fmt.Fprintf(rt.Writer(), "%d pages validated, %d problems\n", len(paths), failed)
			if failed > 0 {
				return codeError(1, "%d schema problems", failed)
			}
			return nil
		},
	}
}

func newSchemaPreviewCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "preview <kind> <slug>",
		Short: "Print a text rich-snippet preview of one page",
		Long:  "Kinds: cruise, cruise-line, destination, deal, package, guide, town, service, location, post, page.",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			rt, err := getRuntime(cmd)
			if err != nil {
				return err
			}
			pathFor, ok := previewPaths[args[0]]
			if !ok {
				return codeError(2, "unknown kind %q", args[0])
			}
			h, err := rt.Handler()
			if err != nil {
				return err
			}
			docs, err := pageSchemas(cmd, h, pathFor(args[1]))
			if err != nil {
				return err
			}
			for _, d := range docs {
				_, _ = fmt.Fprintln(rt.Writer(), seo.PreviewRichSnippet(d))
			}
			return nil
		},
	}
}

func pageSchemas(cmd *cobra.Command, h http.Handler, path string) ([]map[string]any, error) {
	rec := audit.Fetch(cmd.Context(), h, path)
	if rec.Code != http.StatusOK {
		return nil, codeError(1, "%s answered %d", path, rec.Code)
	}
	doc, err := goquery.NewDocumentFromReader(rec.Body)
	if err != nil {
		return nil, err
	}
	return audit.JSONLD(doc)
}
