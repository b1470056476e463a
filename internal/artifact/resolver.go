package artifact

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v5"

	"systest/internal/fsutil"
	"systest/pkg/logging"
)

const resolverSubsystem = "Resolver"

// NotFoundError is returned when no repository holds an artifact.
type NotFoundError struct {
	Coordinate   Coordinate
	Repositories []string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("could not resolve %s: not found in %s", e.Coordinate, strings.Join(e.Repositories, ", "))
}

// Resolver fetches artifacts into a local Maven layout repository.
type Resolver struct {
	local      string
	remotes    []string
	client     *http.Client
	maxTries   uint
	maxElapsed time.Duration
	newBackOff func() backoff.BackOff
}

// Option customises a Resolver.
type Option func(*Resolver)

// WithHTTPClient sets the client used for remote repositories.
func WithHTTPClient(c *http.Client) Option {
	return func(r *Resolver) { r.client = c }
}

// WithRetries bounds download attempts per repository.
func WithRetries(maxTries uint, maxElapsed time.Duration) Option {
	return func(r *Resolver) {
		r.maxTries = maxTries
		r.maxElapsed = maxElapsed
	}
}

// WithBackOff replaces the retry back-off policy.
func WithBackOff(f func() backoff.BackOff) Option {
	return func(r *Resolver) { r.newBackOff = f }
}

// NewResolver returns a resolver that consults local first, then each remote
// repository in order.
func NewResolver(local string, remotes []string, opts ...Option) *Resolver {
	r := &Resolver{
		local:      local,
		remotes:    remotes,
		client:     &http.Client{Timeout: 5 * time.Minute},
		maxTries:   4,
		maxElapsed: 2 * time.Minute,
		newBackOff: func() backoff.BackOff {
			b := backoff.NewExponentialBackOff()
			b.InitialInterval = 500 * time.Millisecond
			b.MaxInterval = 10 * time.Second
			return b
		},
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Repositories lists every location searched, local first.
func (r *Resolver) Repositories() []string {
	return append([]string{r.local}, r.remotes...)
}

// Fetch returns the local path of the artifact, downloading it if needed.
func (r *Resolver) Fetch(ctx context.Context, c Coordinate) (string, error) {
	dest := filepath.Join(r.local, filepath.FromSlash(c.RepositoryPath()))
	if fsutil.Exists(dest) {
		logging.Debug(resolverSubsystem, "Found %s in local repository", c)
		return dest, nil
	}

	for _, remote := range r.remotes {
		err := r.download(ctx, remote, c, dest)
		if err == nil {
			logging.Info(resolverSubsystem, "Downloaded %s from %s", c, remote)
			return dest, nil
		}
		if ctx.Err() != nil {
			return "", ctx.Err()
		}
		if !errors.Is(err, errNotInRepository) {
			logging.Warn(resolverSubsystem, "Failed to download %s from %s: %v", c, remote, err)
			continue
		}
		logging.Debug(resolverSubsystem, "%s not found in %s", c, remote)
	}

	return "", &NotFoundError{Coordinate: c, Repositories: r.Repositories()}
}

var errNotInRepository = errors.New("artifact not in repository")

func (r *Resolver) download(ctx context.Context, remote string, c Coordinate, dest string) error {
	base, err := url.Parse(strings.TrimSuffix(remote, "/") + "/")
	if err != nil {
		return backoff.Permanent(fmt.Errorf("invalid repository URL %q: %w", remote, err))
	}
	src := base.JoinPath(c.RepositoryPath())

	if src.Scheme == "file" {
		f, err := os.Open(src.Path)
		if errors.Is(err, os.ErrNotExist) {
			return errNotInRepository
		}
		if err != nil {
			return err
		}
		defer f.Close()
		return fsutil.WriteAtomic(dest, f, 0o644)
	}

	operation := func() (struct{}, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, src.String(), nil)
		if err != nil {
			return struct{}{}, backoff.Permanent(err)
		}

		resp, err := r.client.Do(req)
		if err != nil {
			return struct{}{}, err
		}
		defer resp.Body.Close()

		switch {
		case resp.StatusCode == http.StatusNotFound:
			return struct{}{}, backoff.Permanent(errNotInRepository)
		case resp.StatusCode >= 500 || resp.StatusCode == http.StatusTooManyRequests:
			return struct{}{}, fmt.Errorf("GET %s: %s", src, resp.Status)
		case resp.StatusCode != http.StatusOK:
			return struct{}{}, backoff.Permanent(fmt.Errorf("GET %s: %s", src, resp.Status))
		}

		if err := fsutil.WriteAtomic(dest, resp.Body, 0o644); err != nil {
			return struct{}{}, err
		}
		return struct{}{}, nil
	}

	_, err = backoff.Retry(ctx, operation,
		backoff.WithBackOff(r.newBackOff()),
		backoff.WithMaxTries(r.maxTries),
		backoff.WithMaxElapsedTime(r.maxElapsed),
		backoff.WithNotify(func(err error, next time.Duration) {
			logging.Debug(resolverSubsystem, "Retrying %s in %s: %v", src, next, err)
		}),
	)
	return err
}

// dependencies returns the direct runtime dependencies declared in the POM
// of c. Artifacts without a POM have none.
func (r *Resolver) dependencies(ctx context.Context, c Coordinate) ([]Coordinate, error) {
	pomPath, err := r.Fetch(ctx, c.POM())
	if err != nil {
		var notFound *NotFoundError
		if errors.As(err, &notFound) {
			logging.Debug(resolverSubsystem, "No POM for %s, assuming no dependencies", c)
			return nil, nil
		}
		return nil, err
	}

	f, err := os.Open(pomPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open POM for %s: %w", c, err)
	}
	defer f.Close()

	p, err := parsePOM(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", c, err)
	}

	deps, skipped := p.dependencies()
	for _, s := range skipped {
		logging.Debug(resolverSubsystem, "Skipping dependency %s of %s: version not resolvable", s, c)
	}
	return deps, nil
}

// ResolveTransitive returns the files of c and, breadth first, of every
// direct runtime dependency reachable from it. The first version seen of a
// module wins.
func (r *Resolver) ResolveTransitive(ctx context.Context, c Coordinate) ([]string, error) {
	resolved, err := r.resolveTransitive(ctx, c)
	if err != nil {
		return nil, err
	}
	files := make([]string, len(resolved))
	for i, f := range resolved {
		files[i] = f.path
	}
	return files, nil
}

// resolvedFile is a fetched artifact and the coordinate it was fetched for.
type resolvedFile struct {
	coordinate Coordinate
	path       string
}

func (r *Resolver) resolveTransitive(ctx context.Context, c Coordinate) ([]resolvedFile, error) {
	seen := map[string]bool{c.Module(): true}
	queue := []Coordinate{c}
	var files []resolvedFile

	for len(queue) > 0 {
		next := queue[0]
		queue = queue[1:]

		if next.Ext() != "pom" {
			file, err := r.Fetch(ctx, next)
			if err != nil {
				return nil, err
			}
			files = append(files, resolvedFile{coordinate: next, path: file})
		}

		deps, err := r.dependencies(ctx, next)
		if err != nil {
			return nil, err
		}
		for _, d := range deps {
			if seen[d.Module()] {
				continue
			}
			seen[d.Module()] = true
			queue = append(queue, d)
		}
	}
	return files, nil
}
