package artifact

import (
	"context"
	"fmt"
	"sync"

	"golang.org/x/sync/errgroup"

	"systest/internal/fsutil"
	"systest/pkg/logging"
)

// maxConcurrentResolves bounds parallel downloads per bucket.
const maxConcurrentResolves = 4

// Bucket is a named, resolvable set of dependencies.
type Bucket struct {
	Name        string
	Description string
	Visible     bool
	Transitive  bool
	Consumable  bool
	Resolvable  bool

	resolver *Resolver

	mu       sync.Mutex
	declared []Entry
	defaults []Entry
	resolved []string
	done     bool
}

// NewBucket returns an empty bucket resolved through resolver.
func NewBucket(name, description string, resolver *Resolver) *Bucket {
	return &Bucket{
		Name:        name,
		Description: description,
		Visible:     true,
		Transitive:  true,
		Consumable:  true,
		Resolvable:  true,
		resolver:    resolver,
	}
}

// Add declares entries.
func (b *Bucket) Add(entries ...Entry) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.declared = append(b.declared, entries...)
	b.done = false
}

// SetDefaultDependencies sets the entries used when none are declared.
func (b *Bucket) SetDefaultDependencies(entries ...Entry) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.defaults = entries
	b.done = false
}

// Declared returns only the explicitly declared entries.
func (b *Bucket) Declared() []Entry {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]Entry(nil), b.declared...)
}

// Dependencies returns the effective entries: the declared ones, or the
// defaults when nothing is declared.
func (b *Bucket) Dependencies() []Entry {
	b.mu.Lock()
	defer b.mu.Unlock()
	if len(b.declared) > 0 {
		return append([]Entry(nil), b.declared...)
	}
	return append([]Entry(nil), b.defaults...)
}

// Resolve returns the bucket's files in declaration order without
// duplicates. Each module appears once across all entries: the first
// version seen wins. The result is cached until entries change.
func (b *Bucket) Resolve(ctx context.Context) ([]string, error) {
	if !b.Resolvable {
		return nil, fmt.Errorf("bucket %s cannot be resolved", b.Name)
	}

	b.mu.Lock()
	if b.done {
		files := append([]string(nil), b.resolved...)
		b.mu.Unlock()
		return files, nil
	}
	b.mu.Unlock()

	entries := b.Dependencies()
	perEntry := make([][]resolvedFile, len(entries))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(maxConcurrentResolves)
	for i, entry := range entries {
		g.Go(func() error {
			files, err := b.resolveEntry(gctx, entry)
			if err != nil {
				return fmt.Errorf("failed to resolve %s in %s: %w", entry, b.Name, err)
			}
			perEntry[i] = files
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	versions := make(map[string]string)
	var files []string
	for _, group := range perEntry {
		for _, f := range group {
			key := f.path
			if f.coordinate.Group != "" {
				key = moduleKey(f.coordinate)
			}
			if kept, ok := versions[key]; ok {
				if f.coordinate.Version != kept {
					logging.Debug(resolverSubsystem, "Using %s %s over %s in %s", key, kept, f.coordinate.Version, b.Name)
				}
				continue
			}
			versions[key] = f.coordinate.Version
			files = append(files, f.path)
		}
	}

	logging.Debug(resolverSubsystem, "Resolved %s to %d file(s)", b.Name, len(files))

	b.mu.Lock()
	b.resolved = files
	b.done = true
	b.mu.Unlock()

	return append([]string(nil), files...), nil
}

func (b *Bucket) resolveEntry(ctx context.Context, entry Entry) ([]resolvedFile, error) {
	if entry.IsFile() {
		if !fsutil.Exists(entry.File) {
			return nil, fmt.Errorf("file %s does not exist", entry.File)
		}
		return []resolvedFile{{path: entry.File}}, nil
	}
	if b.Transitive {
		return b.resolver.resolveTransitive(ctx, *entry.Coordinate)
	}
	file, err := b.resolver.Fetch(ctx, *entry.Coordinate)
	if err != nil {
		return nil, err
	}
	return []resolvedFile{{coordinate: *entry.Coordinate, path: file}}, nil
}

// moduleKey identifies one class path slot: a module and its classifier.
func moduleKey(c Coordinate) string {
	if c.Classifier == "" {
		return c.Module()
	}
	return c.Module() + ":" + c.Classifier
}

// HasModule reports whether the effective entries include group:name, and
// returns the matching coordinate.
func (b *Bucket) HasModule(group, name string) (Coordinate, bool) {
	for _, e := range b.Dependencies() {
		if e.Coordinate != nil && e.Coordinate.Group == group && e.Coordinate.Name == name {
			return *e.Coordinate, true
		}
	}
	return Coordinate{}, false
}
