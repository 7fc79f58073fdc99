package drivers

import (
	"context"
	"fmt"

	"github.com/tsukumogami/gpudrv/internal/executor"
	"github.com/tsukumogami/gpudrv/internal/log"
	"github.com/tsukumogami/gpudrv/internal/platform"
)

// CommandError reports an external command that wrote to stderr or
// exited nonzero. It is a warning: the session keeps running.
type CommandError struct {
	Command  string
	ExitCode int
	Stderr   string
}

func (e *CommandError) Error() string {
	if e.Command == "" {
		return e.Stderr
	}
	if e.Stderr == "" {
		return fmt.Sprintf("%s exited with status %d", e.Command, e.ExitCode)
	}
	return fmt.Sprintf("%s: %s", e.Command, e.Stderr)
}

func commandError(cmd executor.Command, res executor.Result) *CommandError {
	return &CommandError{Command: cmd.String(), ExitCode: res.ExitCode, Stderr: res.Stderr}
}

// Catalog queries the package index for driver packages and memoizes the
// result per vendor for the lifetime of one session.
//
// A Catalog is not safe for concurrent use.
type Catalog struct {
	runner  executor.Runner
	manager platform.PackageManager
	logger  log.Logger
	cache   map[platform.Vendor]Listing
}

// NewCatalog creates a Catalog that searches with the given manager.
func NewCatalog(r executor.Runner, m platform.PackageManager, l log.Logger) *Catalog {
	return &Catalog{
		runner:  r,
		manager: m,
		logger:  log.OrNoop(l),
		cache:   make(map[platform.Vendor]Listing),
	}
}

// Query returns the driver listing for v. A non-empty cached listing is
// returned as-is without running any command. Otherwise the search runs;
// if it writes to stderr the listing is empty and a *CommandError is
// returned. Empty results are not memoized.
func (c *Catalog) Query(ctx context.Context, v platform.Vendor) (Listing, error) {
	if cached, ok := c.Cached(v); ok {
		c.logger.Debug("driver listing cache hit", "vendor", v, "count", len(cached))
		return cached, nil
	}

	spec, err := searchFor(c.manager, v)
	if err != nil {
		return nil, err
	}

	res := c.runner.Run(ctx, spec.cmd)
	if res.Stderr != "" {
		return nil, commandError(spec.cmd, res)
	}

	out := res.Stdout
	if spec.filter != "" {
		out = filterLines(out, spec.filter)
	}
	listing := ParseListing(out)

	c.cache[v] = listing
	c.logger.Info("driver listing updated", "vendor", v, "manager", c.manager, "count", len(listing))
	return listing, nil
}

// Refresh discards the cached listing for v and queries again.
func (c *Catalog) Refresh(ctx context.Context, v platform.Vendor) (Listing, error) {
	delete(c.cache, v)
	return c.Query(ctx, v)
}

// Cached returns the memoized listing for v if it is non-empty.
func (c *Catalog) Cached(v platform.Vendor) (Listing, bool) {
	l := c.cache[v]
	return l, len(l) > 0
}
