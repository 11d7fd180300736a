package cli

import (
	"io"

	"go.uber.org/zap"

	"github.com/roach88/sake/internal/catalog"
	"github.com/roach88/sake/internal/config"
)

// experimentsDir locates keepsake.yml (opts.Config, or the nearest one
// above the working directory) and returns the experiments directory of
// the repository it names.
func experimentsDir(opts *RootOptions) (string, error) {
	path := opts.Config
	if path == "" {
		found, err := config.Find(".")
		if err != nil {
			return "", err
		}
		path = found
	}

	cfg, err := config.Load(path)
	if err != nil {
		return "", err
	}

	root, err := cfg.Root()
	if err != nil {
		return "", err
	}

	dir := catalog.ExperimentsDir(root)
	opts.logger().Debug("resolved repository",
		zap.String("config", path),
		zap.String("repository", cfg.Repository),
		zap.String("dir", dir))
	return dir, nil
}

// newCatalog builds a catalog from the global options.
func newCatalog(opts *RootOptions) *catalog.Catalog {
	return catalog.New(
		catalog.WithWorkers(opts.Workers),
		catalog.WithLogger(opts.logger()),
	)
}

// newFormatter builds the formatter for a command's output streams.
func newFormatter(opts *RootOptions, out, errOut io.Writer) *OutputFormatter {
	return &OutputFormatter{
		Format:    opts.Format,
		Writer:    out,
		ErrWriter: errOut,
		Verbose:   opts.Verbose,
	}
}
