package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"
	cobradoc "github.com/spf13/cobra/doc"

	"pydocmd/internal/config"
	"pydocmd/internal/document"
	"pydocmd/internal/render"
	"pydocmd/internal/resolver"
	"pydocmd/internal/storage"
)

const rootLongDesc = `
pydocmd renders numpydoc docstrings of Python objects as Markdown.

Objects are found by reading the Python sources below the configured roots,
or a module index built beforehand with "pydocmd index". Markdown templates
may hold placeholder lines such as

  {{"obj": "package.module.function", "md_section_level": 2}}

which render-string, render-file and render-folder replace by the rendered
docstring of the named object.
`

// cliApp holds the global flags and the state built from them before a
// subcommand runs.
type cliApp struct {
	stdout     io.Writer
	stderr     io.Writer
	configPath string
	roots      []string
	index      string
	verbose    bool

	cfg    *config.Config
	logger *log.Logger
}

func run(ctx context.Context, argv []string, stdout, stderr io.Writer) error {
	cmd := newRootCmd(stdout, stderr)
	cmd.SetArgs(argv)
	return cmd.ExecuteContext(ctx)
}

func newRootCmd(stdout, stderr io.Writer) *cobra.Command {
	app := &cliApp{stdout: stdout, stderr: stderr}
	cmd := &cobra.Command{
		Use:           "pydocmd",
		Short:         "Render Python numpydoc docstrings as Markdown",
		Long:          strings.TrimSpace(rootLongDesc),
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	cmd.DisableAutoGenTag = true
	cmd.SetOut(stdout)
	cmd.SetErr(stderr)
	cmd.CompletionOptions.DisableDefaultCmd = true

	flags := cmd.PersistentFlags()
	flags.StringVar(&app.configPath, "config", "", "path to the YAML configuration (default "+config.DefaultPath+" when present)")
	flags.StringArrayVar(&app.roots, "root", nil, "directory searched for Python modules (repeatable)")
	flags.StringVar(&app.index, "index", "", "SQLite module index built by the index command")
	flags.BoolVarP(&app.verbose, "verbose", "v", false, "enable verbose logging")

	cmd.PersistentPreRunE = func(cmd *cobra.Command, args []string) error {
		return app.setup(cmd)
	}

	cmd.AddCommand(
		newRenderObjCmd(app),
		newRenderStringCmd(app),
		newRenderFileCmd(app),
		newRenderFolderCmd(app),
		newIndexCmd(app),
		newCompletionCmd(cmd),
		newDocsCmd(cmd),
	)
	return cmd
}

// setup loads the configuration, applies the global flags and attaches the
// logger to the command context.
func (a *cliApp) setup(cmd *cobra.Command) error {
	cfg, err := config.LoadConfig(a.configPath)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	if len(a.roots) > 0 {
		cfg.Roots = a.roots
	}
	if a.index != "" {
		cfg.Index = a.index
	}

	level := log.InfoLevel
	if a.verbose {
		level = log.DebugLevel
	} else if cfg.LogLevel != "" {
		level, err = log.ParseLevel(cfg.LogLevel)
		if err != nil {
			return fmt.Errorf("invalid log_level %q: %w", cfg.LogLevel, err)
		}
	}

	a.cfg = cfg
	a.logger = newLogger(a.stderr, level)

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	cmd.SetContext(withLogger(ctx, a.logger))
	return nil
}

// renderer builds the object renderer: the index, when configured, is
// consulted before the source roots. The returned func releases the index.
func (a *cliApp) renderer(ctx context.Context) (*render.Renderer, func(), error) {
	logger := loggerFromContext(ctx)

	var resolvers []resolver.Resolver
	cleanup := func() {}
	if a.cfg.Index != "" {
		store, err := storage.NewSQLiteStore(a.cfg.Index)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to open index %s: %w", a.cfg.Index, err)
		}
		cleanup = func() { store.Close() }
		resolvers = append(resolvers, resolver.NewSourceResolver(store, a.cacheOptions()...))
		logger.Debug("using module index", "path", a.cfg.Index)
	}

	loader, err := resolver.NewFSLoader(a.cfg.Roots...)
	if err != nil {
		cleanup()
		return nil, nil, err
	}
	resolvers = append(resolvers, resolver.NewSourceResolver(loader, a.cacheOptions()...))
	logger.Debug("searching source roots", "roots", a.cfg.Roots)

	return render.New(resolver.NewChain(resolvers...), render.WithLogger(logger)), cleanup, nil
}

func (a *cliApp) cacheOptions() []resolver.Option {
	return []resolver.Option{
		resolver.WithCacheSize(a.cfg.CacheSize),
		resolver.WithCacheTTL(a.cfg.CacheTTL),
	}
}

func (a *cliApp) processor(ctx context.Context) (*document.Processor, func(), error) {
	r, cleanup, err := a.renderer(ctx)
	if err != nil {
		return nil, nil, err
	}
	p := document.NewProcessor(r,
		document.WithLogger(loggerFromContext(ctx)),
		document.WithWorkers(a.cfg.Workers),
		document.WithDefaults(a.cfg.Render),
	)
	return p, cleanup, nil
}

func newCompletionCmd(root *cobra.Command) *cobra.Command {
	const longDesc = `Generate shell completion scripts for pydocmd.

The output should be evaluated by your shell. For example:

  # bash
  pydocmd completion bash > /usr/local/etc/bash_completion.d/pydocmd

  # zsh
  pydocmd completion zsh > "${fpath[1]}/_pydocmd"

  # fish
  pydocmd completion fish | source

  # PowerShell
  pydocmd completion powershell | Out-String | Invoke-Expression
`
	cmd := &cobra.Command{
		Use:                   "completion [bash|zsh|fish|powershell]",
		Short:                 "Generate shell completion scripts",
		Long:                  longDesc,
		Args:                  cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
		ValidArgs:             []string{"bash", "zsh", "fish", "powershell"},
		DisableFlagsInUseLine: true,
		PersistentPreRunE:     func(*cobra.Command, []string) error { return nil },
	}
	cmd.RunE = func(cmd *cobra.Command, args []string) error {
		switch args[0] {
		case "bash":
			return root.GenBashCompletion(cmd.OutOrStdout())
		case "zsh":
			return root.GenZshCompletion(cmd.OutOrStdout())
		case "fish":
			return root.GenFishCompletion(cmd.OutOrStdout(), true)
		case "powershell":
			return root.GenPowerShellCompletion(cmd.OutOrStdout())
		default:
			return fmt.Errorf("unsupported shell %q", args[0])
		}
	}
	return cmd
}

func newDocsCmd(root *cobra.Command) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "gen-docs [directory]",
		Short: "Generate Markdown reference docs for the CLI",
		Long: strings.TrimSpace(`
Write a Markdown file per command (suitable for publishing CLI docs).

Example:

  pydocmd gen-docs ./docs/cli
`),
		Args:              cobra.ExactArgs(1),
		PersistentPreRunE: func(*cobra.Command, []string) error { return nil },
	}
	cmd.RunE = func(cmd *cobra.Command, args []string) error {
		target := args[0]
		if target == "" {
			return fmt.Errorf("target directory is required")
		}
		if err := os.MkdirAll(target, 0o755); err != nil {
			return err
		}
		return cobradoc.GenMarkdownTree(root, target)
	}
	return cmd
}
