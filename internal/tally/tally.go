package tally

import (
	"errors"
	"os"
	"path"
	"path/filepath"
	"sort"
	"sync"

	"github.com/go-git/go-billy/v5"
)

var errNotDirectory = errors.New("not a directory")

// Result is the aggregation map of a finished run
type Result struct {
	Root     string
	Mode     Mode
	Counts   map[string]int // Aggregation key -> lines
	Files    int
	Warnings []Warning
}

// Total sums Counts at call time
func (r *Result) Total() int {
	total := 0
	for _, n := range r.Counts {
		total += n
	}
	return total
}

// SortOrder controls the order of Keys
type SortOrder int

const (
	// SortByName orders keys lexically
	SortByName SortOrder = iota
	// SortByLines orders keys by descending line count, ties by name
	SortByLines
)

// Keys returns the aggregation keys in the requested order
func (r *Result) Keys(order SortOrder) []string {
	keys := make([]string, 0, len(r.Counts))
	for k := range r.Counts {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		if order == SortByLines && r.Counts[keys[i]] != r.Counts[keys[j]] {
			return r.Counts[keys[i]] > r.Counts[keys[j]]
		}
		return keys[i] < keys[j]
	})
	return keys
}

// job is one matching file found during traversal. path is used to open
// the file and name to report it. err is set when the entry already failed
// while walking (an unreadable subdirectory).
type job struct {
	seq  int
	path string
	name string
	key  string
	err  error
}

type outcome struct {
	job
	lines int
}

// Aggregate walks opts.Root in fsys and tallies the lines of every file whose
// name ends with one of opts.Extensions, pruning excluded directories. Only
// an invalid root is fatal; unreadable or undecodable files are skipped and
// reported as warnings.
func Aggregate(fsys billy.Filesystem, opts Options) (*Result, error) {
	if len(opts.Extensions) == 0 {
		return nil, ErrNoExtensions
	}

	root := opts.Root
	if root == "" {
		root = "."
	}

	shown := root
	if opts.Prefix != "" {
		shown = opts.Prefix
	}

	info, err := fsys.Stat(root)
	if err != nil {
		return nil, &PathError{Path: shown, Err: err}
	}
	if !info.IsDir() {
		return nil, &PathError{Path: shown, Err: errNotDirectory}
	}
	entries, err := fsys.ReadDir(root)
	if err != nil {
		return nil, &PathError{Path: shown, Err: err}
	}

	w := &walker{fsys: fsys, opts: &opts}
	result := &Result{
		Root:   shown,
		Mode:   opts.Mode,
		Counts: make(map[string]int),
	}

	if opts.Workers < 2 {
		w.walk(root, "", entries, func(j job) {
			o := countFile(fsys, j)
			notify(&opts, o)
			merge(result, o)
		})
		return result, nil
	}

	for _, o := range w.runPool(root, entries, opts.Workers) {
		merge(result, o)
	}
	return result, nil
}

// runPool walks on the calling goroutine's behalf while a fixed set of
// workers reads files. Outcomes are returned in traversal order.
func (w *walker) runPool(root string, entries []os.FileInfo, workers int) []outcome {
	jobs := make(chan job)
	outcomes := make(chan outcome)

	go func() {
		defer close(jobs)
		w.walk(root, "", entries, func(j job) {
			jobs <- j
		})
	}()

	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := range jobs {
				outcomes <- countFile(w.fsys, j)
			}
		}()
	}

	go func() {
		wg.Wait()
		close(outcomes)
	}()

	var done []outcome
	for o := range outcomes {
		notify(w.opts, o)
		done = append(done, o)
	}

	sort.Slice(done, func(i, j int) bool { return done[i].seq < done[j].seq })
	return done
}

type walker struct {
	fsys billy.Filesystem
	opts *Options
	seq  int
}

// walk visits entries of dir depth-first in name order. rel is the
// slash-separated path of dir relative to the root.
func (w *walker) walk(dir, rel string, entries []os.FileInfo, visit func(job)) {
	sort.Slice(entries, func(i, j int) bool { return entries[i].Name() < entries[j].Name() })

	emit := func(j job) {
		j.seq = w.seq
		w.seq++
		visit(j)
	}

	for _, fi := range entries {
		name := fi.Name()
		p := w.fsys.Join(dir, name)
		r := path.Join(rel, name)
		shown := w.display(p, r)

		if fi.Mode()&os.ModeSymlink != 0 {
			target, err := w.fsys.Stat(p)
			if err != nil {
				if w.opts.matchSuffix(name) != "" {
					emit(job{path: p, name: shown, err: &IOError{Path: shown, Err: err}})
				}
				continue
			}
			if target.IsDir() {
				continue
			}
			fi = target
		}

		if fi.IsDir() {
			if w.opts.excluded(r) {
				continue
			}
			children, err := w.fsys.ReadDir(p)
			if err != nil {
				emit(job{path: p, name: shown, err: &IOError{Path: shown, Err: err}})
				continue
			}
			w.walk(p, r, children, visit)
			continue
		}

		suffix := w.opts.matchSuffix(name)
		if suffix == "" {
			continue
		}
		key := shown
		if w.opts.Mode == ByExtension {
			key = extensionKey(suffix)
		}
		emit(job{path: p, name: shown, key: key})
	}
}

// display returns the reported form of the entry at p, whose path relative
// to the root is rel.
func (w *walker) display(p, rel string) string {
	if w.opts.Prefix == "" {
		return p
	}
	return filepath.Join(w.opts.Prefix, filepath.FromSlash(rel))
}

func countFile(fsys billy.Filesystem, j job) outcome {
	o := outcome{job: j}
	if j.err != nil {
		return o
	}

	f, err := fsys.Open(j.path)
	if err != nil {
		o.err = &IOError{Path: j.name, Err: err}
		return o
	}
	defer f.Close()

	lines, err := CountLines(f)
	switch {
	case errors.Is(err, errInvalidUTF8):
		o.err = &DecodeError{Path: j.name, Err: err}
	case err != nil:
		o.err = &IOError{Path: j.name, Err: err}
	default:
		o.lines = lines
	}
	return o
}

func notify(opts *Options, o outcome) {
	if o.err != nil {
		if opts.OnWarning != nil {
			opts.OnWarning(Warning{Path: o.name, Err: o.err})
		}
		return
	}
	if opts.OnFile != nil {
		opts.OnFile(o.name)
	}
}

func merge(r *Result, o outcome) {
	if o.err != nil {
		r.Warnings = append(r.Warnings, Warning{Path: o.name, Err: o.err})
		return
	}
	r.Counts[o.key] += o.lines
	r.Files++
}
