package catalog

import (
	"context"
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/roach88/sake/internal/experiment"
	"github.com/roach88/sake/internal/filter"
	"github.com/roach88/sake/internal/repoerr"
)

// DefaultWorkers is the number of records loaded concurrently.
const DefaultWorkers = 8

// ExperimentsDir returns the directory holding experiment records under a
// repository root.
func ExperimentsDir(root string) string {
	return filepath.Join(root, "metadata", "experiments")
}

// Catalog loads and filters experiment records.
//
// A Catalog holds no records between calls; every call re-reads storage.
type Catalog struct {
	workers int
	logger  *zap.Logger
}

// Option configures a Catalog.
type Option func(*Catalog)

// WithWorkers bounds concurrent loads. n <= 1 loads sequentially.
func WithWorkers(n int) Option {
	return func(c *Catalog) {
		c.workers = n
	}
}

// WithLogger sets the logger. The default discards everything.
func WithLogger(logger *zap.Logger) Option {
	return func(c *Catalog) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// New creates a Catalog.
func New(opts ...Option) *Catalog {
	c := &Catalog{
		workers: DefaultWorkers,
		logger:  zap.NewNop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// List loads every record in dir, then keeps those matching all filter
// tokens.
//
// Records are loaded before tokens are parsed, so a load failure wins over
// a malformed token. Returned records are in enumeration order.
func (c *Catalog) List(ctx context.Context, dir string, tokens []string) ([]*experiment.Experiment, error) {
	exps, err := c.LoadAll(ctx, dir)
	if err != nil {
		return nil, err
	}

	preds, err := filter.ParseAll(tokens)
	if err != nil {
		return nil, err
	}

	matched := Filter(exps, filter.And{Predicates: preds})

	c.logger.Debug("filtered experiments",
		zap.String("filter", filter.String(filter.And{Predicates: preds})),
		zap.Int("loaded", len(exps)),
		zap.Int("matched", len(matched)))

	return matched, nil
}

// Filter returns the experiments satisfying p, preserving order.
func Filter(exps []*experiment.Experiment, p filter.Predicate) []*experiment.Experiment {
	out := make([]*experiment.Experiment, 0, len(exps))
	for _, exp := range exps {
		if filter.Test(p, exp) {
			out = append(out, exp)
		}
	}
	return out
}

// LoadAll loads every entry of dir in enumeration order.
func (c *Catalog) LoadAll(ctx context.Context, dir string) ([]*experiment.Experiment, error) {
	paths, err := Entries(dir)
	if err != nil {
		return nil, err
	}

	c.logger.Debug("enumerated experiments directory",
		zap.String("dir", dir),
		zap.Int("entries", len(paths)),
		zap.Int("workers", c.workers))

	return c.loadPaths(ctx, paths)
}

// Entries lists the paths of every entry in dir, without recursion and
// without sorting.
func Entries(dir string) ([]string, error) {
	f, err := os.Open(dir)
	if err != nil {
		return nil, repoerr.NewIOError(dir, err)
	}
	defer f.Close()

	entries, err := f.ReadDir(-1)
	if err != nil {
		return nil, repoerr.NewIOError(dir, err)
	}

	paths := make([]string, len(entries))
	for i, e := range entries {
		paths[i] = filepath.Join(dir, e.Name())
	}
	return paths, nil
}

// loadPaths loads paths with at most c.workers in flight. Each load writes
// its own slot and siblings are not cancelled on failure, so after Wait the
// first error by index is the one a sequential scan would hit.
func (c *Catalog) loadPaths(ctx context.Context, paths []string) ([]*experiment.Experiment, error) {
	exps := make([]*experiment.Experiment, len(paths))

	if c.workers <= 1 {
		for i, path := range paths {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
			exp, err := experiment.Load(path)
			if err != nil {
				return nil, err
			}
			exps[i] = exp
		}
		return exps, nil
	}

	errs := make([]error, len(paths))
	var g errgroup.Group
	g.SetLimit(c.workers)

	for i, path := range paths {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			// Load errors stay in their slot; returning them would report
			// whichever load finished first.
			exps[i], errs[i] = experiment.Load(path)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	for _, err := range errs {
		if err != nil {
			return nil, err
		}
	}
	return exps, nil
}

// Find loads the single record whose file name starts with prefix.
//
// Matching uses the file name without extension, so both ids and
// abbreviated ids work. No match is NotFound; several are Ambiguous.
func (c *Catalog) Find(ctx context.Context, dir, prefix string) (*experiment.Experiment, error) {
	paths, err := Entries(dir)
	if err != nil {
		return nil, err
	}

	var matches []string
	for _, path := range paths {
		name := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
		if strings.HasPrefix(name, prefix) {
			matches = append(matches, path)
		}
	}

	switch len(matches) {
	case 0:
		return nil, repoerr.NewNotFoundError(dir, prefix)
	case 1:
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		c.logger.Debug("resolved id prefix", zap.String("prefix", prefix), zap.String("path", matches[0]))
		return experiment.Load(matches[0])
	default:
		return nil, repoerr.NewAmbiguousError(dir, prefix, len(matches))
	}
}
