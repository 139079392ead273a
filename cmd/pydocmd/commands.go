package main

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"pydocmd/internal/crawler"
	"pydocmd/internal/document"
	"pydocmd/internal/extractor"
	"pydocmd/internal/render"
	"pydocmd/internal/resolver"
	"pydocmd/internal/storage"
)

func newRenderObjCmd(app *cliApp) *cobra.Command {
	var cfg render.Config
	cmd := &cobra.Command{
		Use:     "render-obj-docstring OBJ",
		Aliases: []string{"render_obj_docstring"},
		Short:   "Render the docstring of one Python object",
		Example: "  pydocmd render-obj-docstring mypkg.Client --members 'public$' --alias Client",
		Args:    cobra.ExactArgs(1),
	}

	def := render.DefaultConfig()
	flags := cmd.Flags()
	flags.StringVar(&cfg.Alias, "alias", "", "name shown instead of OBJ in the signature heading")
	flags.StringVar(&cfg.ExamplesMDLang, "examples-md-lang", def.ExamplesMDLang, "language of example output blocks")
	flags.BoolVar(&cfg.RemoveDoctestBlanklines, "remove-doctest-blanklines", false, "drop <BLANKLINE> markers from examples")
	flags.BoolVar(&cfg.RemoveDoctestSkip, "remove-doctest-skip", false, "drop doctest SKIP directives from examples")
	flags.IntVar(&cfg.MDSectionLevel, "md-section-level", def.MDSectionLevel, "Markdown heading level of sections")
	flags.BoolVar(&cfg.IgnoreCustomSectionWarning, "ignore-custom-section-warning", false, "do not warn about custom sections")
	flags.StringArrayVar(&cfg.Members, "members", nil, "members to render after OBJ (repeatable)")

	cmd.RunE = func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		r, cleanup, err := app.renderer(ctx)
		if err != nil {
			return err
		}
		defer cleanup()

		md, err := r.Render(ctx, args[0], mergeRenderFlags(cmd, app.cfg.Render, cfg))
		if err != nil {
			return err
		}
		fmt.Fprintln(app.stdout, md)
		return nil
	}
	return cmd
}

// mergeRenderFlags overrides base with the flags set on the command line.
func mergeRenderFlags(cmd *cobra.Command, base, flagged render.Config) render.Config {
	flags := cmd.Flags()
	cfg := base
	cfg.Members = append([]string(nil), base.Members...)
	if flags.Changed("alias") {
		cfg.Alias = flagged.Alias
	}
	if flags.Changed("examples-md-lang") {
		cfg.ExamplesMDLang = flagged.ExamplesMDLang
	}
	if flags.Changed("remove-doctest-blanklines") {
		cfg.RemoveDoctestBlanklines = flagged.RemoveDoctestBlanklines
	}
	if flags.Changed("remove-doctest-skip") {
		cfg.RemoveDoctestSkip = flagged.RemoveDoctestSkip
	}
	if flags.Changed("md-section-level") {
		cfg.MDSectionLevel = flagged.MDSectionLevel
	}
	if flags.Changed("ignore-custom-section-warning") {
		cfg.IgnoreCustomSectionWarning = flagged.IgnoreCustomSectionWarning
	}
	if flags.Changed("members") {
		cfg.Members = flagged.Members
	}
	return cfg
}

func newRenderStringCmd(app *cliApp) *cobra.Command {
	var ignoreErrors bool
	cmd := &cobra.Command{
		Use:     "render-string TEXT",
		Aliases: []string{"render_string"},
		Short:   "Render the placeholders of a string",
		Args:    cobra.ExactArgs(1),
	}
	cmd.Flags().BoolVar(&ignoreErrors, "ignore-errors", false, "keep placeholders whose object cannot be rendered")

	cmd.RunE = func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		p, cleanup, err := app.processor(ctx)
		if err != nil {
			return err
		}
		defer cleanup()

		out, err := p.RenderString(ctx, args[0], ignoreErrors)
		if err != nil {
			return err
		}
		fmt.Fprintln(app.stdout, out)
		return nil
	}
	return cmd
}

func newRenderFileCmd(app *cliApp) *cobra.Command {
	var (
		destination  string
		ignoreErrors bool
	)
	cmd := &cobra.Command{
		Use:     "render-file SOURCE",
		Aliases: []string{"render_file"},
		Short:   "Render the placeholders of a template file",
		Long:    "Render the placeholders of a template file. Without --destination the result is printed.",
		Args:    cobra.ExactArgs(1),
	}
	cmd.Flags().StringVarP(&destination, "destination", "d", "", "file the result is written to")
	cmd.Flags().BoolVar(&ignoreErrors, "ignore-errors", false, "keep placeholders whose object cannot be rendered")

	cmd.RunE = func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		p, cleanup, err := app.processor(ctx)
		if err != nil {
			return err
		}
		defer cleanup()

		rf, err := p.RenderFile(ctx, args[0], destination, ignoreErrors)
		if err != nil {
			return err
		}
		if destination == "" {
			fmt.Fprintln(app.stdout, rf.RenderedText)
		}
		return nil
	}
	return cmd
}

func newRenderFolderCmd(app *cliApp) *cobra.Command {
	var (
		opts  document.FolderOptions
		watch bool
	)
	cmd := &cobra.Command{
		Use:     "render-folder SOURCE",
		Aliases: []string{"render_folder"},
		Short:   "Render every template of a folder",
		Long: `Render every template of a folder into --destination, keeping the
relative layout. Templates are the files whose name matches --pattern; their
output always has the .md extension.`,
		Args: cobra.ExactArgs(1),
	}
	flags := cmd.Flags()
	flags.StringVarP(&opts.Destination, "destination", "d", "", "folder the results are written to")
	flags.StringVar(&opts.Pattern, "pattern", document.DefaultPattern, "regular expression matched against file names")
	flags.BoolVar(&opts.CaseSensitive, "case-sensitive", false, "match --pattern case-sensitively")
	flags.BoolVarP(&opts.Recursive, "recursive", "r", false, "descend into subfolders")
	flags.BoolVar(&opts.IgnoreErrors, "ignore-errors", false, "keep placeholders whose object cannot be rendered")
	flags.BoolVarP(&watch, "watch", "w", false, "keep running and re-render templates when they change")

	cmd.RunE = func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		logger := loggerFromContext(ctx)
		p, cleanup, err := app.processor(ctx)
		if err != nil {
			return err
		}
		defer cleanup()

		opts.Source = args[0]
		folder := app.cfg.Folder
		if !flags.Changed("pattern") && folder.Pattern != "" {
			opts.Pattern = folder.Pattern
		}
		opts.CaseSensitive = opts.CaseSensitive || folder.CaseSensitive
		opts.Recursive = opts.Recursive || folder.Recursive

		start := time.Now()
		results, err := p.RenderFolder(ctx, opts)
		if err != nil {
			return err
		}
		logger.Infof("rendered %d files (%s)", len(results), time.Since(start).Round(time.Millisecond))

		if !watch {
			return nil
		}
		return p.Watch(ctx, opts, nil)
	}
	return cmd
}

func newIndexCmd(app *cliApp) *cobra.Command {
	var (
		dbPath string
		update []string
		list   bool
	)
	cmd := &cobra.Command{
		Use:   "index",
		Short: "Scan the source roots and store their modules in a SQLite index",
		Long: `Scan the source roots and store their modules in a SQLite index.

The index replaces the previous one. With --update only the named files are
parsed again and stored. Pass the index to other commands with --index to
resolve objects without reading the sources again.`,
		Args: cobra.NoArgs,
	}
	flags := cmd.Flags()
	flags.StringVar(&dbPath, "db", "", "index path (default: the configured index, else pydocmd.db)")
	flags.StringArrayVarP(&update, "update", "u", nil, "re-index only this source file (repeatable)")
	flags.BoolVarP(&list, "list", "l", false, "print the indexed module paths and exit")
	cmd.MarkFlagsMutuallyExclusive("update", "list")

	cmd.RunE = func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		logger := loggerFromContext(ctx)

		if dbPath == "" {
			dbPath = app.cfg.Index
		}
		if dbPath == "" {
			dbPath = "pydocmd.db"
		}

		store, err := storage.NewSQLiteStore(dbPath)
		if err != nil {
			return fmt.Errorf("failed to initialize database: %w", err)
		}
		defer store.Close()

		if list {
			paths, err := store.ListModules(ctx)
			if err != nil {
				return err
			}
			for _, p := range paths {
				fmt.Fprintln(app.stdout, p)
			}
			return nil
		}

		ext, err := extractor.NewExtractor("python")
		if err != nil {
			return err
		}

		start := time.Now()
		if len(update) > 0 {
			for _, file := range update {
				mod, err := app.extractFile(ctx, ext, file)
				if err != nil {
					return err
				}
				if err := store.SaveModule(ctx, mod); err != nil {
					return fmt.Errorf("failed to save %s: %w", mod.Path, err)
				}
				logger.Info("updated module", "module", mod.Path, "path", file)
			}
			logger.Infof("updated %d modules in %s (%s)", len(update), dbPath, time.Since(start).Round(time.Millisecond))
			return nil
		}

		cr := crawler.NewCrawler(ext, crawler.WithLogger(logger))
		seen := make(map[string]bool)
		var mods []*extractor.Module
		for _, root := range app.cfg.Roots {
			logger.Info("scanning directory", "path", root)
			err := cr.ScanProject(ctx, root, func(mod *extractor.Module) {
				// Earlier roots shadow later ones, as on import.
				if seen[mod.Path] {
					return
				}
				seen[mod.Path] = true
				mods = append(mods, mod)
			})
			if err != nil {
				return fmt.Errorf("scan %s: %w", root, err)
			}
		}

		if err := store.SaveModules(ctx, mods); err != nil {
			return fmt.Errorf("failed to save modules: %w", err)
		}
		logger.Infof("indexed %d modules into %s (%s)", len(mods), dbPath, time.Since(start).Round(time.Millisecond))
		return nil
	}
	return cmd
}

// extractFile parses one source file under the first root that contains it.
func (a *cliApp) extractFile(ctx context.Context, ext *extractor.Extractor, file string) (*extractor.Module, error) {
	for _, root := range a.cfg.Roots {
		modPath, err := resolver.ModulePath(root, file)
		if err != nil {
			continue
		}
		return ext.ExtractFromFile(ctx, file, modPath)
	}
	return nil, fmt.Errorf("%s is not below any source root %v", file, a.cfg.Roots)
}
