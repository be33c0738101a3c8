package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/alecthomas/kong"
	"github.com/joho/godotenv"

	"github.com/margay/margay"
	"github.com/margay/margay/engine"
	"github.com/margay/margay/internal/config"
	"github.com/margay/margay/internal/htmlcheck"
	"github.com/margay/margay/internal/preview"
	"github.com/margay/margay/internal/site"
)

var version = "dev"

var CLI struct {
	Config  string `short:"c" help:"Configuration file path" default:""`
	Verbose bool   `short:"v" help:"Enable verbose logging"`

	Render struct {
		File      string   `arg:"" optional:"" help:"Markdown file to render (stdin when omitted)"`
		Engine    string   `help:"Rendering engine: margay or goldmark" enum:"margay,goldmark," default:""`
		Plugins   []string `help:"Plugin set overriding the default (empty string disables all)"`
		Highlight bool     `help:"Run code blocks through the syntax highlighter hook"`
	} `cmd:"" help:"Render one Markdown document to HTML on stdout"`

	Build struct {
		Source  string `short:"s" help:"Source directory or git+URL#branch"`
		Output  string `short:"o" help:"Output directory for the rendered site"`
		Cache   string `help:"SQLite render cache path (disabled when empty)"`
		NatsURL string `name:"nats-url" help:"Publish build events to this NATS server"`
	} `cmd:"" help:"Render a documentation tree to a static site"`

	Serve struct {
		Source       string        `short:"s" help:"Source directory to watch and rebuild"`
		Output       string        `short:"o" help:"Directory the rendered site is served from"`
		Addr         string        `help:"HTTP listen address"`
		RebuildEvery time.Duration `help:"Also rebuild on a fixed interval (0 disables)"`
	} `cmd:"" help:"Serve a live-rebuilding preview of a documentation tree"`

	Check struct {
		Dir string `arg:"" help:"Rendered site directory to inspect"`
	} `cmd:"" help:"Check rendered HTML for empty links and duplicate anchors"`

	Version struct{} `cmd:"" help:"Print the version"`
}

func main() {
	_ = godotenv.Load()
	kctx := kong.Parse(&CLI)

	logLevel := slog.LevelInfo
	if CLI.Verbose {
		logLevel = slog.LevelDebug
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: logLevel,
	})))

	cfg, err := config.Load(CLI.Config)
	if err != nil {
		slog.Error("Failed to load configuration", "error", err)
		os.Exit(1)
	}

	switch kctx.Command() {
	case "render", "render <file>":
		if err := runRender(cfg); err != nil {
			slog.Error("Render failed", "error", err)
			os.Exit(1)
		}
	case "build":
		if err := runBuild(cfg); err != nil {
			slog.Error("Build failed", "error", err)
			os.Exit(1)
		}
	case "serve":
		if err := runServe(cfg); err != nil {
			slog.Error("Serve failed", "error", err)
			os.Exit(1)
		}
	case "check <dir>":
		if err := runCheck(CLI.Check.Dir); err != nil {
			slog.Error("Check failed", "error", err)
			os.Exit(1)
		}
	case "version":
		fmt.Println("margay", version)
	}
}

// pick resolves one string setting with flag > file > fallback precedence.
func pick(flag, file, fallback string) string {
	if flag != "" {
		return flag
	}
	if file != "" {
		return file
	}
	return fallback
}

func newEngine(cfg *config.Config, name string, plugins []string, highlight bool) (engine.Engine, error) {
	picked := pick(name, cfg.Engine, "margay")
	switch picked {
	case "goldmark":
		return engine.Goldmark(engine.GoldmarkOptions{GFM: true}), nil
	case "margay":
	default:
		return nil, fmt.Errorf("unknown engine %q", picked)
	}

	mcfg := margay.Config{
		Highlight:         highlight || cfg.Highlight,
		MaxNestingDepth:   cfg.MaxNestingDepth,
		MaxDelimiterStack: cfg.MaxDelimiterStack,
	}
	switch {
	case plugins != nil:
		mcfg.Plugins = normalizePlugins(plugins)
	case cfg.Plugins != nil:
		mcfg.Plugins = cfg.Plugins
	}
	return margay.New(mcfg)
}

// normalizePlugins turns --plugins "" into the explicit empty set and
// splits comma-separated values kong leaves as single entries.
func normalizePlugins(raw []string) []string {
	out := []string{}
	for _, entry := range raw {
		for _, name := range strings.Split(entry, ",") {
			if name = strings.TrimSpace(name); name != "" {
				out = append(out, name)
			}
		}
	}
	return out
}

func runRender(cfg *config.Config) error {
	eng, err := newEngine(cfg, CLI.Render.Engine, CLI.Render.Plugins, CLI.Render.Highlight)
	if err != nil {
		return err
	}

	var src []byte
	if CLI.Render.File != "" {
		src, err = os.ReadFile(CLI.Render.File)
	} else {
		src, err = io.ReadAll(os.Stdin)
	}
	if err != nil {
		return err
	}

	_, err = io.WriteString(os.Stdout, eng.Render(string(src)))
	return err
}

func runBuild(cfg *config.Config) error {
	eng, err := newEngine(cfg, "", nil, false)
	if err != nil {
		return err
	}

	sourceRef := pick(CLI.Build.Source, cfg.Source, ".")
	outDir := pick(CLI.Build.Output, cfg.Output, "./site")

	src, err := site.OpenSource(sourceRef)
	if err != nil {
		return err
	}
	defer src.Cleanup()

	b := &site.Builder{Engine: eng}

	if cachePath := pick(CLI.Build.Cache, cfg.CachePath, ""); cachePath != "" {
		cache, err := site.OpenCache(cachePath)
		if err != nil {
			return err
		}
		defer func() { _ = cache.Close() }()
		b.Cache = cache
	}

	if natsURL := pick(CLI.Build.NatsURL, cfg.NATSURL, ""); natsURL != "" {
		pub, err := site.Connect(natsURL)
		if err != nil {
			return err
		}
		defer pub.Close()
		b.Events = pub
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	res, err := b.Build(ctx, src, outDir)
	if err != nil {
		return err
	}
	slog.Info("Build completed",
		"build_id", res.BuildID,
		"rendered", res.Rendered,
		"cached", res.Cached,
		"skipped", res.Skipped,
		"failed", res.Failed,
		"elapsed", res.Elapsed)
	if res.Failed > 0 {
		return fmt.Errorf("%d document(s) failed to build", res.Failed)
	}
	return nil
}

func runServe(cfg *config.Config) error {
	eng, err := newEngine(cfg, "", nil, false)
	if err != nil {
		return err
	}

	src, err := site.OpenSource(pick(CLI.Serve.Source, cfg.Source, "."))
	if err != nil {
		return err
	}
	defer src.Cleanup()

	rebuildEvery := CLI.Serve.RebuildEvery
	if rebuildEvery == 0 {
		rebuildEvery = cfg.RebuildEvery.Std()
	}

	srv, err := preview.New(preview.Options{
		Source:       src,
		Builder:      &site.Builder{Engine: eng},
		OutDir:       pick(CLI.Serve.Output, cfg.Output, "./site"),
		Addr:         pick(CLI.Serve.Addr, cfg.Addr, ":8080"),
		RebuildEvery: rebuildEvery,
	})
	if err != nil {
		return err
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()
	return srv.Run(ctx)
}

func runCheck(dir string) error {
	issues, err := htmlcheck.CheckDir(dir)
	if err != nil {
		return err
	}
	for _, issue := range issues {
		fmt.Println(issue)
	}
	if len(issues) > 0 {
		return fmt.Errorf("%d issue(s) found", len(issues))
	}
	slog.Info("No issues found", "dir", dir)
	return nil
}
