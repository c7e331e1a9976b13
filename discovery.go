package main

import (
	"context"
	"os"
	"path"
	"path/filepath"

	"github.com/rs/zerolog"
	"github.com/spf13/afero"
	"golang.org/x/sync/errgroup"
)

// Discoverer turns command-line style arguments into a flat list of
// candidate paths. It does not filter by extension; the registry does.
type Discoverer struct {
	fs      afero.Fs
	join    func(elem ...string) string
	getwd   func() (string, error)
	workers int
	sorter  SortStrategy
	log     zerolog.Logger
}

// NewDiscoverer creates a Discoverer over the OS-style filesystem fs.
func NewDiscoverer(fs afero.Fs, cfg Config, logger zerolog.Logger) *Discoverer {
	workers := cfg.ScanWorkers
	if workers < 1 {
		workers = 1
	}
	return &Discoverer{
		fs:      fs,
		join:    filepath.Join,
		getwd:   os.Getwd,
		workers: workers,
		sorter:  GetSortStrategy(cfg.SortMethod),
		log:     componentLogger(logger, targetDiscovery),
	}
}

// withFS returns a copy of d bound to a slash-separated filesystem such as
// the one holding dropped files.
func (d *Discoverer) withFS(fs afero.Fs) *Discoverer {
	c := *d
	c.fs = fs
	c.join = path.Join
	return &c
}

// Discover resolves args:
//   - none: the working directory
//   - one directory: that directory
//   - one file: the file, then its siblings
//   - several: the arguments as given
//
// Directories are walked recursively only when recursive is set.
func (d *Discoverer) Discover(ctx context.Context, args []string, recursive bool) []string {
	switch len(args) {
	case 0:
		wd, err := d.getwd()
		if err != nil {
			d.log.Error().Err(err).Msg("failed to get current directory")
			return nil
		}
		return d.ListDir(ctx, wd, recursive)
	case 1:
		arg := args[0]
		info, err := d.fs.Stat(arg)
		if err != nil {
			d.log.Warn().Err(err).Str("path", arg).Msg("failed to stat argument")
			return []string{arg}
		}
		if info.IsDir() {
			return d.ListDir(ctx, arg, recursive)
		}
		siblings := d.ListDir(ctx, filepath.Dir(arg), false)
		return dedupePaths(append([]string{arg}, siblings...))
	default:
		return dedupePaths(args)
	}
}

// dirNode holds one directory's listing. Each node is written by exactly one
// worker and read only after the group has finished.
type dirNode struct {
	files    []string
	children []*dirNode
}

// ListDir lists the files under dir. Subdirectories are visited by up to
// d.workers concurrent goroutines when recursive is set; the merged result is
// ordered by the sort strategy at every level.
func (d *Discoverer) ListDir(ctx context.Context, dir string, recursive bool) []string {
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(d.workers)

	root := &dirNode{}
	d.visit(ctx, g, root, dir, recursive)
	if err := g.Wait(); err != nil {
		d.log.Warn().Err(err).Str("dir", dir).Msg("directory scan interrupted")
	}

	var out []string
	flattenDirNode(root, &out)
	d.log.Debug().Str("dir", dir).Int("count", len(out)).Msg("directory listed")
	return out
}

func (d *Discoverer) visit(ctx context.Context, g *errgroup.Group, node *dirNode, dir string, recursive bool) {
	if ctx.Err() != nil {
		return
	}

	entries, err := afero.ReadDir(d.fs, dir)
	if err != nil {
		d.log.Error().Err(err).Str("dir", dir).Msg("failed to read directory")
		return
	}

	var files, subdirs []string
	for _, entry := range entries {
		p := d.join(dir, entry.Name())
		if entry.IsDir() {
			if recursive {
				subdirs = append(subdirs, p)
			}
			continue
		}
		files = append(files, p)
	}

	node.files = d.sorter.Sort(files)
	subdirs = d.sorter.Sort(subdirs)
	node.children = make([]*dirNode, len(subdirs))

	for i, sub := range subdirs {
		child := &dirNode{}
		node.children[i] = child
		task := func() error {
			d.visit(ctx, g, child, sub, recursive)
			return ctx.Err()
		}
		// A full pool walks the subtree inline rather than blocking on a slot.
		if !g.TryGo(task) {
			_ = task()
		}
	}
}

func flattenDirNode(node *dirNode, out *[]string) {
	*out = append(*out, node.files...)
	for _, child := range node.children {
		flattenDirNode(child, out)
	}
}

// dedupePaths removes repeated paths, keeping the first occurrence.
func dedupePaths(paths []string) []string {
	seen := make(map[string]bool, len(paths))
	out := make([]string, 0, len(paths))
	for _, p := range paths {
		key := filepath.Clean(p)
		if seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, p)
	}
	return out
}
