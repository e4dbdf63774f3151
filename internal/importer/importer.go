// Package importer loads extracted CSV files into the store.
package importer

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/cleared-dev/ledgerport/internal/model"
)

// Sink receives parsed rows. *store.Store satisfies it.
type Sink interface {
	UpsertCompany(ctx context.Context, c model.Company) error
	InsertAccounts(ctx context.Context, accts []model.RawAccount) (int, error)
	InsertEntries(ctx context.Context, entries []model.Entry) (int, error)
	SaveOpeningBalances(ctx context.Context, company int, cutoff time.Time, balances []model.OpeningBalance) error
}

// Loader parses one kind of extract and writes it to a Sink. company is
// used for rows whose file carries no company column.
type Loader interface {
	Load(ctx context.Context, r io.Reader, company int, sink Sink) (int, error)
	Kind() string
}

// Registry holds named loaders.
type Registry struct {
	loaders map[string]Loader
}

// FileInfo describes a CSV file in the import directory.
type FileInfo struct {
	Name string
	Path string
	Size int64
}

// Result reports one loaded file.
type Result struct {
	File string
	Kind string
	Rows int
}

// NewRegistry creates an empty loader registry.
func NewRegistry() *Registry {
	return &Registry{loaders: make(map[string]Loader)}
}

// Register adds a loader. Panics on duplicate kind.
func (r *Registry) Register(l Loader) {
	key := strings.ToLower(l.Kind())
	if _, ok := r.loaders[key]; ok {
		panic("duplicate loader kind: " + key)
	}
	r.loaders[key] = l
}

// Get returns the loader for kind, or nil.
func (r *Registry) Get(kind string) Loader {
	return r.loaders[strings.ToLower(kind)]
}

// Kinds lists registered kinds in load order: companies, accounts,
// balances, entries, then anything else alphabetically.
func (r *Registry) Kinds() []string {
	kinds := make([]string, 0, len(r.loaders))
	for k := range r.loaders {
		kinds = append(kinds, k)
	}
	sort.Slice(kinds, func(i, j int) bool {
		ri, rj := kindRank(kinds[i]), kindRank(kinds[j])
		if ri != rj {
			return ri < rj
		}
		return kinds[i] < kinds[j]
	})
	return kinds
}

// DefaultRegistry returns a registry with all built-in loaders.
func DefaultRegistry() *Registry {
	r := NewRegistry()
	r.Register(CompaniesLoader{})
	r.Register(AccountsLoader{})
	r.Register(EntriesLoader{})
	r.Register(BalancesLoader{})
	return r
}

// LoadFile opens path and runs the loader registered for kind.
func (r *Registry) LoadFile(ctx context.Context, kind, path string, company int, sink Sink) (int, error) {
	l := r.Get(kind)
	if l == nil {
		return 0, fmt.Errorf("no loader for %q", kind)
	}
	f, err := os.Open(path)
	if err != nil {
		return 0, fmt.Errorf("opening %s: %w", path, err)
	}
	defer f.Close()

	n, err := l.Load(ctx, f, company, sink)
	if err != nil {
		return 0, fmt.Errorf("loading %s %s: %w", kind, filepath.Base(path), err)
	}
	return n, nil
}

// filePrefixes maps import file name prefixes to loader kinds.
var filePrefixes = []struct {
	prefix string
	kind   string
}{
	{"companies", KindCompanies},
	{"empresas", KindCompanies},
	{"accounts", KindAccounts},
	{"plano", KindAccounts},
	{"entries", KindEntries},
	{"lancamentos", KindEntries},
	{"balances", KindBalances},
	{"saldos", KindBalances},
}

// KindForFile infers a loader kind from a file name, or "" when unknown.
func KindForFile(name string) string {
	lower := strings.ToLower(filepath.Base(name))
	for _, p := range filePrefixes {
		if strings.HasPrefix(lower, p.prefix) {
			return p.kind
		}
	}
	return ""
}

func kindRank(kind string) int {
	switch kind {
	case KindCompanies:
		return 0
	case KindAccounts:
		return 1
	case KindBalances:
		return 2
	case KindEntries:
		return 3
	}
	return 4
}

// ImportDir loads every recognized CSV under <root>/import/ in kind order
// and moves each loaded file to import/processed/. Files whose kind cannot
// be inferred are left in place and returned in skipped.
func (r *Registry) ImportDir(ctx context.Context, root string, company int, sink Sink) (results []Result, skipped []string, err error) {
	files, err := Scan(root)
	if err != nil {
		return nil, nil, err
	}
	sort.SliceStable(files, func(i, j int) bool {
		ki, kj := kindRank(KindForFile(files[i].Name)), kindRank(KindForFile(files[j].Name))
		if ki != kj {
			return ki < kj
		}
		return files[i].Name < files[j].Name
	})

	for _, f := range files {
		kind := KindForFile(f.Name)
		if kind == "" || r.Get(kind) == nil {
			skipped = append(skipped, f.Name)
			continue
		}
		n, err := r.LoadFile(ctx, kind, f.Path, company, sink)
		if err != nil {
			return results, skipped, err
		}
		if err := MarkProcessed(root, f.Name); err != nil {
			return results, skipped, err
		}
		results = append(results, Result{File: f.Name, Kind: kind, Rows: n})
	}
	return results, skipped, nil
}

// importDir is the subdirectory for import CSVs.
const importDir = "import"

// processedDir is the subdirectory for processed CSVs.
const processedDir = "import/processed"

// Scan returns CSV files in <root>/import/.
func Scan(root string) ([]FileInfo, error) {
	dir := filepath.Join(root, importDir)
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("reading import dir: %w", err)
	}

	var files []FileInfo
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		if !strings.HasSuffix(strings.ToLower(e.Name()), ".csv") {
			continue
		}
		info, err := e.Info()
		if err != nil {
			return nil, fmt.Errorf("stat %s: %w", e.Name(), err)
		}
		files = append(files, FileInfo{
			Name: e.Name(),
			Path: filepath.Join(dir, e.Name()),
			Size: info.Size(),
		})
	}
	return files, nil
}

// MarkProcessed moves a file from import/ to import/processed/.
func MarkProcessed(root, fileName string) error {
	src := filepath.Join(root, importDir, fileName)
	dstDir := filepath.Join(root, processedDir)

	if err := os.MkdirAll(dstDir, 0o755); err != nil {
		return fmt.Errorf("creating processed dir: %w", err)
	}

	dst := filepath.Join(dstDir, fileName)
	if err := os.Rename(src, dst); err != nil {
		return fmt.Errorf("moving %s to processed: %w", fileName, err)
	}
	return nil
}
