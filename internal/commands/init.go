package commands

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/cleared-dev/ledgerport/internal/config"
	"github.com/cleared-dev/ledgerport/internal/model"
)

type initOptions struct {
	company     int
	companyName string
	model       string
	driver      string
	dsn         string
	force       bool
}

func newInitCommand(root *rootOptions) *cobra.Command {
	var opts initOptions

	cmd := &cobra.Command{
		Use:   "init [directory]",
		Short: "Initialize a new ledgerport project",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			dir := "."
			if len(args) > 0 {
				dir = args[0]
			}

			absDir, err := filepath.Abs(dir)
			if err != nil {
				return fmt.Errorf("resolving path: %w", err)
			}

			return runInit(cmd, root, absDir, opts)
		},
	}

	cmd.Flags().IntVar(&opts.company, "company", 0, "default company ID")
	cmd.Flags().StringVar(&opts.companyName, "company-name", "", "default company name")
	cmd.Flags().StringVar(&opts.model, "model", "", "classification model (padrao, simplificado, ifrs)")
	cmd.Flags().StringVar(&opts.driver, "driver", "", "database driver (sqlite3, pgx)")
	cmd.Flags().StringVar(&opts.dsn, "dsn", "", "database DSN")
	cmd.Flags().BoolVar(&opts.force, "force", false, "overwrite an existing ledgerport.yaml")

	return cmd
}

func runInit(cmd *cobra.Command, root *rootOptions, dir string, opts initOptions) error {
	cfgPath := filepath.Join(dir, config.FileName)
	if _, err := os.Stat(cfgPath); err == nil && !opts.force {
		return fmt.Errorf("%s already exists (use --force to overwrite)", cfgPath)
	} else if err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("checking config: %w", err)
	}

	// Create directory structure.
	dirs := []string{
		"data",
		"output",
		"logs",
		"import",
		filepath.Join("import", "processed"),
	}
	for _, d := range dirs {
		if err := os.MkdirAll(filepath.Join(dir, d), 0o755); err != nil {
			return fmt.Errorf("creating directory %s: %w", d, err)
		}
	}

	cfg := config.Default()
	cfg.Company = config.CompanyConfig{ID: opts.company, Name: opts.companyName}
	if opts.model != "" {
		cfg.Model.Name = opts.model
	}
	if opts.driver != "" {
		cfg.Database.Driver = opts.driver
	}
	if opts.dsn != "" {
		cfg.Database.DSN = opts.dsn
	}
	if err := cfg.Validate(); err != nil {
		return err
	}
	if err := config.Save(cfgPath, cfg); err != nil {
		return fmt.Errorf("writing config: %w", err)
	}

	if err := os.WriteFile(filepath.Join(dir, ".env.example"), []byte(config.EnvExample), 0o644); err != nil {
		return fmt.Errorf("writing .env.example: %w", err)
	}

	gitignore := "data/\n.env\n"
	if err := os.WriteFile(filepath.Join(dir, ".gitignore"), []byte(gitignore), 0o644); err != nil {
		return fmt.Errorf("writing .gitignore: %w", err)
	}

	if err := os.WriteFile(filepath.Join(dir, "import", ".gitkeep"), []byte{}, 0o644); err != nil {
		return fmt.Errorf("writing .gitkeep: %w", err)
	}

	// Create the schema.
	p := &project{cfg: cfg, dir: dir, logger: root.logger}
	st, err := p.openStore(cmd.Context())
	if err != nil {
		return err
	}
	defer st.Close()
	if opts.company > 0 {
		if err := st.UpsertCompany(cmd.Context(), model.Company{ID: opts.company, Name: opts.companyName}); err != nil {
			return err
		}
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Initialized ledgerport project at %s\n", dir)
	return nil
}
