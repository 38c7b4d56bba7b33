package main

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"nexttripanywhere.com/web/internal/audit"
)

func newAuditCommand() *cobra.Command {
	var (
		asJSON bool
		strict bool
	)
	cmd := &cobra.Command{
		Use:   "audit [path...]",
		Short: "Render pages in-process and check titles, descriptions, headings, canonicals and JSON-LD",
		Long:  "Without arguments every sitemap page is checked. Errors exit 1; warnings only do with --strict.",
		RunE: func(cmd *cobra.Command, args []string) error {
			rt, err := getRuntime(cmd)
			if err != nil {
				return err
			}
			app, err := rt.App()
			if err != nil {
				return err
			}
			h, _ := rt.Handler()
			paths := args
			if len(paths) == 0 {
				if paths, err = app.PagePaths(cmd.Context()); err != nil {
					return err
				}
			}

			rep, err := audit.Crawl(cmd.Context(), h, paths)
			if err != nil {
				return err
			}
			if asJSON {
				enc := json.NewEncoder(rt.Writer())
				enc.SetIndent("", "  ")
				if err := enc.Encode(rep); err != nil {
					return err
				}
			} else {
				for _, i := range rep.Issues {
					_, _ = fmt.Fprintln(rt.Writer(), i.String())
				}
				_, _ = fmt.Fprintf(rt.Writer(), "%d pages checked, %d errors, %d warnings\n",
					rep.Pages, rep.Errors(), len(rep.Issues)-rep.Errors())
			}

			switch {
			case rep.Errors() > 0:
				return codeError(1, "audit found %d errors", rep.Errors())
			case strict && len(rep.Issues) > 0:
				return codeError(1, "audit found %d warnings", len(rep.Issues))
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "Print the report as JSON")
	cmd.Flags().BoolVar(&strict, "strict", false, "Fail on warnings too")
	return cmd
}
