package main

import (
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/spf13/cobra"

	"nexttripanywhere.com/web/internal/audit"
)

func newRedirectsCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "redirects",
		Short: "List the redirect table and check each fixed entry end to end",
		Long: "Fixed entries are requested through the router: the old path must answer the " +
			"configured 301 or 302 to its target, and the target must answer 200. " +
			"Entries with :parameters are listed but not requested.",
		Args: cobra.NoArgs,
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

			table := app.Catalog().Redirects
			broken := 0
			for _, rd := range table {
				want := http.StatusMovedPermanently
				if !rd.IsPermanent() {
					want = http.StatusFound
				}
				if strings.Contains(rd.From, ":") {
					_, _ = fmt.Fprintf(rt.Writer(), "%d %s -> %s (pattern)\n", want, rd.From, rd.To)
					continue
				}
				problem := checkRedirect(cmd, h, rd.From, rd.To, want)
				if problem != "" {
					broken++
					_, _ = fmt.Fprintf(rt.Writer(), "FAIL %s: %s\n", rd.From, problem)
					continue
				}
				_, _ = fmt.Fprintf(rt.Writer(), "%d %s -> %s\n", want, rd.From, rd.To)
			}
			_, _ = fmt.Fprintf(rt.Writer(), "%d redirects, %d broken\n", len(table), broken)
			if broken > 0 {
				return codeError(1, "%d broken redirects", broken)
			}
			return nil
		},
	}
}

func checkRedirect(cmd *cobra.Command, h http.Handler, from, to string, want int) string {
	rec := audit.Fetch(cmd.Context(), h, (&url.URL{Path: from}).EscapedPath())
	if rec.Code != want {
		return fmt.Sprintf("answered %d, want %d", rec.Code, want)
	}
	if loc := rec.Header().Get("Location"); loc != to {
		return fmt.Sprintf("redirects to %q, want %q", loc, to)
	}
	if rec = audit.Fetch(cmd.Context(), h, to); rec.Code != http.StatusOK {
		return fmt.Sprintf("target %s answered %d", to, rec.Code)
	}
	return ""
}
