package commands

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/cleared-dev/ledgerport/internal/importer"
	"github.com/cleared-dev/ledgerport/internal/model"
	"github.com/cleared-dev/ledgerport/internal/runlog"
)

type ingestOptions struct {
	company     int
	companyName string
	files       map[string]*string
}

func newIngestCommand(root *rootOptions) *cobra.Command {
	opts := ingestOptions{files: make(map[string]*string)}

	cmd := &cobra.Command{
		Use:   "ingest",
		Short: "Load extract CSVs into the database",
		Long: `Load companies, chart of accounts, opening balances and journal entries
from ';'-separated CSV extracts. Without file flags, every recognized CSV
under import/ is loaded and moved to import/processed/.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runIngest(cmd, root, opts)
		},
	}

	registry := importer.DefaultRegistry()
	for _, kind := range registry.Kinds() {
		opts.files[kind] = cmd.Flags().String(kind, "", kind+" CSV file")
	}
	cmd.Flags().IntVar(&opts.company, "company", 0, "company ID for files without a company column")
	cmd.Flags().StringVar(&opts.companyName, "company-name", "", "register the company under this name")

	return cmd
}

func runIngest(cmd *cobra.Command, root *rootOptions, opts ingestOptions) error {
	p, err := root.loadProject()
	if err != nil {
		return err
	}
	company, err := p.company(cmd, opts.company)
	if err != nil {
		return err
	}

	ctx := cmd.Context()
	st, err := p.openStore(ctx)
	if err != nil {
		return err
	}
	defer st.Close()

	if opts.companyName != "" {
		if err := st.UpsertCompany(ctx, model.Company{ID: company, Name: opts.companyName}); err != nil {
			return err
		}
	}

	registry := importer.DefaultRegistry()
	var results []importer.Result
	var skipped []string
	explicit := false
	for _, kind := range registry.Kinds() {
		path := *opts.files[kind]
		if path == "" {
			continue
		}
		explicit = true
		n, err := registry.LoadFile(ctx, kind, path, company, st)
		if err != nil {
			return err
		}
		results = append(results, importer.Result{File: filepath.Base(path), Kind: kind, Rows: n})
	}
	if !explicit {
		results, skipped, err = registry.ImportDir(ctx, p.dir, company, st)
		if err != nil {
			return err
		}
	}

	out := cmd.OutOrStdout()
	details := make([]string, 0, len(results))
	for _, r := range results {
		fmt.Fprintf(out, "%-10s %6d rows  %s\n", r.Kind, r.Rows, r.File)
		details = append(details, fmt.Sprintf("%s=%d", r.Kind, r.Rows))
	}
	for _, name := range skipped {
		p.logger.Warn("skipping file of unknown kind", "file", name)
	}
	if len(results) == 0 {
		fmt.Fprintln(out, "Nothing to ingest.")
	}

	entry := runlog.NewEntry("ingest", company)
	entry.Details = strings.Join(details, " ")
	p.record(entry)
	return nil
}
