package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"mercator-hq/dashgate/pkg/builder"
	"mercator-hq/dashgate/pkg/cli"
	"mercator-hq/dashgate/pkg/config"
	"mercator-hq/dashgate/pkg/store"
	"mercator-hq/dashgate/pkg/tenant"
)

var appsFlags struct {
	file     string
	compress bool
	output   string
	dir      string
}

var appsCmd = &cobra.Command{
	Use:   "apps",
	Short: "Manage stored application definitions",
	Long: `Manage the application definitions dashgate builds tenants from.

Definitions are YAML documents with a title, a layout and an optional Lua
script. They are written to the configured store and picked up by a running
server the next time the tenant's root page is requested after its cached
instance expires.`,
}

var appsPutCmd = &cobra.Command{
	Use:   "put <id>",
	Short: "Store a definition under a tenant identifier",
	Long: `Store a definition under a tenant identifier, replacing any existing one.

Examples:
  dashgate apps put demo1 --file demo1.yaml
  dashgate apps put demo1 --file demo1.yaml --compress`,
	Args: cobra.ExactArgs(1),
	RunE: runAppsPut,
}

var appsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List stored definitions",
	Args:  cobra.NoArgs,
	RunE:  runAppsList,
}

var appsRmCmd = &cobra.Command{
	Use:     "rm <id>",
	Aliases: []string{"remove"},
	Short:   "Remove a stored definition",
	Args:    cobra.ExactArgs(1),
	RunE:    runAppsRm,
}

var appsImportCmd = &cobra.Command{
	Use:   "import",
	Short: "Store every *.yaml definition in a directory",
	Long: `Store every *.yaml and *.yml file in a directory. The file name without
its extension is the tenant identifier. Files that fail to parse or carry an
invalid identifier are reported and skipped.

Example:
  dashgate apps import --dir ./definitions --compress`,
	Args: cobra.NoArgs,
	RunE: runAppsImport,
}

func init() {
	rootCmd.AddCommand(appsCmd)
	appsCmd.AddCommand(appsPutCmd, appsListCmd, appsRmCmd, appsImportCmd)

	appsPutCmd.Flags().StringVarP(&appsFlags.file, "file", "f", "", "definition file (required)")
	appsPutCmd.Flags().BoolVar(&appsFlags.compress, "compress", false, "store the definition brotli-compressed")
	_ = appsPutCmd.MarkFlagRequired("file")

	appsImportCmd.Flags().StringVarP(&appsFlags.dir, "dir", "d", "", "directory of definition files (required)")
	appsImportCmd.Flags().BoolVar(&appsFlags.compress, "compress", false, "store definitions brotli-compressed")
	_ = appsImportCmd.MarkFlagRequired("dir")

	appsListCmd.Flags().StringVarP(&appsFlags.output, "output", "o", "text", "output format: text, json, csv")
}

// withStore loads the configuration, opens the store and runs fn with it.
func withStore(fn func(ctx context.Context, cfg *config.Config, st store.Store) error) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	st, err := openStore(&cfg.Store)
	if err != nil {
		return err
	}
	defer st.Close()

	return fn(context.Background(), cfg, st)
}

// checkID rejects identifiers the dispatcher would never route to.
func checkID(cfg *config.Config, id string) error {
	if tenant.IsReserved(id) {
		return fmt.Errorf("%q is reserved", id)
	}
	v, err := tenant.NewValidator(cfg.Dispatch.AllowedNamePattern)
	if err != nil {
		return cli.NewConfigError("dispatch.allowed_name_pattern", err.Error())
	}
	if !v.Valid(id) {
		return fmt.Errorf("%q does not match %s", id, v.Pattern())
	}
	return nil
}

// putFile parses, encodes and stores the definition in path under id.
func putFile(ctx context.Context, cfg *config.Config, st store.Writer, id, path string, compress bool) (*store.Record, error) {
	if err := checkID(cfg, id); err != nil {
		return nil, err
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}
	def, err := builder.Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	blob, encoding, err := builder.Encode(def, compress)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}

	rec := &store.Record{
		ID:         id,
		Title:      def.Title,
		Definition: blob,
		Encoding:   encoding,
		UpdatedAt:  time.Now().UTC(),
	}
	if err := st.PutDefinition(ctx, rec); err != nil {
		return nil, err
	}
	return rec, nil
}

func runAppsPut(cmd *cobra.Command, args []string) error {
	id := args[0]
	return withStore(func(ctx context.Context, cfg *config.Config, st store.Store) error {
		rec, err := putFile(ctx, cfg, st, id, appsFlags.file, appsFlags.compress)
		if err != nil {
			return cli.NewCommandError("apps put", err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "✓ Stored %s (%d bytes, %s)\n", id, len(rec.Definition), rec.Encoding)
		return nil
	})
}

func runAppsList(cmd *cobra.Command, args []string) error {
	format, err := cli.ParseOutputFormat(appsFlags.output)
	if err != nil {
		return err
	}

	return withStore(func(ctx context.Context, cfg *config.Config, st store.Store) error {
		ids, err := st.ListIDs(ctx)
		if err != nil {
			return cli.NewCommandError("apps list", err)
		}

		table := &cli.Table{Headers: []string{"id", "title", "encoding", "updated_at"}}
		for _, id := range ids {
			rec, err := st.FindDefinition(ctx, id)
			if errors.Is(err, store.ErrNotFound) {
				continue
			}
			if err != nil {
				return cli.NewCommandError("apps list", err)
			}
			table.Rows = append(table.Rows, []string{
				rec.ID, rec.Title, rec.Encoding, rec.UpdatedAt.UTC().Format(time.RFC3339),
			})
		}

		return cli.NewFormatter(format).FormatTo(cmd.OutOrStdout(), table)
	})
}

func runAppsRm(cmd *cobra.Command, args []string) error {
	id := args[0]
	return withStore(func(ctx context.Context, cfg *config.Config, st store.Store) error {
		if err := st.DeleteDefinition(ctx, id); err != nil {
			return cli.NewCommandError("apps rm", err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "✓ Removed %s\n", id)
		return nil
	})
}

func runAppsImport(cmd *cobra.Command, args []string) error {
	files, err := definitionFiles(appsFlags.dir)
	if err != nil {
		return cli.NewCommandError("apps import", err)
	}
	if len(files) == 0 {
		return cli.NewCommandError("apps import", fmt.Errorf("no definition files in %s", appsFlags.dir))
	}

	return withStore(func(ctx context.Context, cfg *config.Config, st store.Store) error {
		progress := cli.NewProgressReporter(cmd.ErrOrStderr())
		progress.Start(int64(len(files)))

		failed := 0
		for i, path := range files {
			id := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
			if _, err := putFile(ctx, cfg, st, id, path, appsFlags.compress); err != nil {
				failed++
				progress.Error(err)
			}
			progress.Update(int64(i + 1))
		}
		progress.Finish()

		fmt.Fprintf(cmd.OutOrStdout(), "✓ Imported %d of %d definitions\n", len(files)-failed, len(files))
		if failed > 0 {
			return cli.NewCommandError("apps import", fmt.Errorf("%d definitions failed", failed))
		}
		return nil
	})
}

// definitionFiles lists *.yaml and *.yml files in dir, sorted by name.
func definitionFiles(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}

	var files []string
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		switch filepath.Ext(e.Name()) {
		case ".yaml", ".yml":
			files = append(files, filepath.Join(dir, e.Name()))
		}
	}
	sort.Strings(files)
	return files, nil
}
