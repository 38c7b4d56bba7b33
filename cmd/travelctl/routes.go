package main

import (
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/spf13/cobra"
)

func newRoutesCommand() *cobra.Command {
	var patterns bool
	cmd := &cobra.Command{
		Use:   "routes",
		Short: "List every generated page URL",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			rt, err := getRuntime(cmd)
			if err != nil {
				return err
			}
			if patterns {
				h, err := rt.Handler()
				if err != nil {
					return err
				}
				routes, ok := h.(chi.Routes)
				if !ok {
					return fmt.Errorf("router does not expose its routes")
				}
				return chi.Walk(routes, func(method, route string, _ http.Handler, _ ...func(http.Handler) http.Handler) error {
					_, _ = fmt.Fprintf(rt.Writer(), "%-6s %s\n", method, route)
					return nil
				})
			}
			app, err := rt.App()
			if err != nil {
				return err
			}
			paths, err := app.PagePaths(cmd.Context())
			if err != nil {
				return err
			}
			for _, p := range paths {
				_, _ = fmt.Fprintln(rt.Writer(), p)
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&patterns, "patterns", false, "List router patterns instead of page URLs")
	return cmd
}
