package main

import (
	"context"
	"errors"
	"io"
	"net/http"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"nexttripanywhere.com/web/internal/catalog"
	"nexttripanywhere.com/web/internal/cms"
	"nexttripanywhere.com/web/internal/config"
	"nexttripanywhere.com/web/internal/handlers"
	"nexttripanywhere.com/web/internal/i18n"
	"nexttripanywhere.com/web/internal/observability"
)

// clock stamps rendered output; tests move it.
var clock = time.Now

type runtimeState struct {
	root       string
	configPath string
	baseURL    string
	verbose    bool
	writer     io.Writer

	app     *handlers.App
	handler http.Handler
}

type runtimeKey struct{}

func newRootCommand(out io.Writer) *cobra.Command {
	rt := &runtimeState{root: ".", writer: out}

	root := &cobra.Command{
		Use:           "travelctl",
		Short:         "Offline tooling for the Next Trip Anywhere site",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVar(&rt.root, "root", rt.root, "Repository root holding data, content, templates and locales")
	root.PersistentFlags().StringVar(&rt.configPath, "config", "", "YAML config overlay")
	root.PersistentFlags().StringVar(&rt.baseURL, "base-url", "", "Override the site base URL")
	root.PersistentFlags().BoolVarP(&rt.verbose, "verbose", "v", false, "Log catalog loading")

	root.SetContext(context.WithValue(context.Background(), runtimeKey{}, rt))

	root.AddCommand(
		newSitemapCommand(),
		newSchemaCommand(),
		newRoutesCommand(),
		newAuditCommand(),
		newRedirectsCommand(),
	)
	return root
}

func getRuntime(cmd *cobra.Command) (*runtimeState, error) {
	rt, ok := cmd.Context().Value(runtimeKey{}).(*runtimeState)
	if !ok || rt == nil {
		return nil, errors.New("runtime not initialized")
	}
	return rt, nil
}

// App builds the site handlers once per invocation.
func (rt *runtimeState) App() (*handlers.App, error) {
	if rt.app != nil {
		return rt.app, nil
	}
	var opts []config.Option
	if rt.configPath != "" {
		opts = append(opts, config.WithFile(rt.configPath))
	}
	cfg, err := config.Load(opts...)
	if err != nil {
		return nil, err
	}
	if rt.baseURL != "" {
		cfg.Site.BaseURL = strings.TrimRight(rt.baseURL, "/")
	}
	for _, p := range []*string{&cfg.Paths.Templates, &cfg.Paths.Public, &cfg.Paths.Data, &cfg.Paths.Content, &cfg.Paths.Locales} {
		if !filepath.IsAbs(*p) {
			*p = filepath.Join(rt.root, *p)
		}
	}
	cfg.Dev = false

	logger := observability.Nop()
	if rt.verbose {
		if logger, err = observability.NewLogger(true); err != nil {
			return nil, err
		}
	}
	bundle, err := i18n.Load(cfg.Paths.Locales, "en", []string{"en", "es"})
	if err != nil {
		return nil, err
	}
	store, err := catalog.NewStore(cfg.Paths.Data, logger)
	if err != nil {
		return nil, err
	}
	app, err := handlers.New(handlers.Options{
		Config:  cfg,
		Logger:  logger.With(zap.String("component", "travelctl")),
		Catalog: store,
		Content: cms.NewClient(cfg.Paths.Content),
		I18n:    bundle,
		Now:     clock,
	})
	if err != nil {
		return nil, err
	}
	rt.app = app
	rt.handler = app.Routes()
	return app, nil
}

// Handler is the full router of App.
func (rt *runtimeState) Handler() (http.Handler, error) {
	if _, err := rt.App(); err != nil {
		return nil, err
	}
	return rt.handler, nil
}

func (rt *runtimeState) Writer() io.Writer {
	return rt.writer
}
