package commands

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"

	"github.com/cleared-dev/ledgerport/internal/accounts"
	"github.com/cleared-dev/ledgerport/internal/balances"
	"github.com/cleared-dev/ledgerport/internal/config"
	"github.com/cleared-dev/ledgerport/internal/csvio"
	"github.com/cleared-dev/ledgerport/internal/diag"
	"github.com/cleared-dev/ledgerport/internal/gitops"
	"github.com/cleared-dev/ledgerport/internal/pipeline"
	"github.com/cleared-dev/ledgerport/internal/runlog"
	"github.com/cleared-dev/ledgerport/internal/store"
)

// project is a resolved configuration plus the directory it was loaded
// from. Relative paths in the configuration resolve against dir.
type project struct {
	cfg    *config.Config
	dir    string
	strict bool
	logger *slog.Logger
}

func (o *rootOptions) loadProject() (*project, error) {
	path, err := filepath.Abs(o.configPath)
	if err != nil {
		return nil, fmt.Errorf("resolving config path: %w", err)
	}
	cfg, err := config.Resolve(path)
	if err != nil {
		return nil, err
	}
	logger := o.logger
	if logger == nil {
		logger = slog.Default()
	}
	return &project{
		cfg:    cfg,
		dir:    filepath.Dir(path),
		strict: o.strict || cfg.Strict,
		logger: logger,
	}, nil
}

func (p *project) path(rel string) string {
	if filepath.IsAbs(rel) {
		return rel
	}
	return filepath.Join(p.dir, rel)
}

func (p *project) outDir(flag string) string {
	if flag != "" {
		return p.path(flag)
	}
	return p.path(p.cfg.Output.Dir)
}

func (p *project) openStore(ctx context.Context) (*store.Store, error) {
	dsn := p.cfg.Database.DSN
	if p.cfg.Database.Driver == store.DriverSQLite && dsn != store.MemoryDSN && !strings.HasPrefix(dsn, "file:") {
		dsn = p.path(dsn)
	}
	return store.Open(ctx, p.cfg.Database.Driver, dsn, p.logger)
}

func (p *project) pipelineOptions() (pipeline.Options, error) {
	custom, err := p.cfg.Customizations(p.dir)
	if err != nil {
		return pipeline.Options{}, err
	}
	opts := pipeline.DefaultOptions()
	opts.Model = p.cfg.Model.Name
	opts.Customizations = custom
	opts.Mapper = accounts.Options{
		SubgroupDepth: p.cfg.Model.SubgroupDepth,
		PreserveCase:  p.cfg.Model.PreserveCase,
		ActiveOnly:    p.cfg.Model.ActiveOnly,
		SkipInvalid:   p.cfg.Model.SkipInvalid,
	}
	opts.Balances = balances.Options{
		KeepZero:  p.cfg.Balances.KeepZero,
		Tolerance: decimal.NewFromFloat(p.cfg.Balances.Tolerance),
	}
	opts.Currency = p.cfg.Output.Currency
	opts.Title = p.cfg.Output.Title
	return opts, nil
}

// service opens the store and builds a pipeline service over it. The
// caller closes the returned store.
func (p *project) service(ctx context.Context) (*pipeline.Service, *store.Store, error) {
	opts, err := p.pipelineOptions()
	if err != nil {
		return nil, nil, err
	}
	st, err := p.openStore(ctx)
	if err != nil {
		return nil, nil, err
	}
	svc, err := pipeline.New(st, st, opts, p.logger)
	if err != nil {
		st.Close()
		return nil, nil, err
	}
	return svc, st, nil
}

// company returns the --company flag when set, else the configured default.
func (p *project) company(cmd *cobra.Command, flag int) (int, error) {
	if cmd.Flags().Changed("company") {
		return flag, nil
	}
	if p.cfg.Company.ID > 0 {
		return p.cfg.Company.ID, nil
	}
	return 0, &diag.ConfigurationError{Setting: "company.id", Description: "no company selected; pass --company or set company.id"}
}

func (p *project) author() gitops.Author {
	return gitops.Author{Name: p.cfg.Git.AuthorName, Email: p.cfg.Git.AuthorEmail}
}

// record appends to the run log. Failures are logged, not returned.
func (p *project) record(e runlog.Entry) {
	if err := runlog.Append(p.dir, []runlog.Entry{e}); err != nil {
		p.logger.Warn("appending run log", "error", err)
	}
}

func parseDate(flag, value string) (time.Time, error) {
	if value == "" {
		return time.Time{}, fmt.Errorf("--%s is required", flag)
	}
	t, err := csvio.ParseDate(value)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid --%s: %w", flag, err)
	}
	return t, nil
}

// enforce fails the command in strict mode when diagnostics were produced.
// Outputs have already been written.
func (p *project) enforce(diags diag.List) error {
	return diag.Enforce(p.strict, diags)
}
