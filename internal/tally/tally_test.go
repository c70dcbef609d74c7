package tally_test

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/go-git/go-billy/v5"
	"github.com/go-git/go-billy/v5/memfs"
	"github.com/go-git/go-billy/v5/osfs"
	"github.com/go-git/go-billy/v5/util"
	"github.com/google/go-cmp/cmp"

	"github.com/pthm/loctally/internal/tally"
)

// lines returns n newline-terminated lines
func lines(n int) string {
	return strings.Repeat("x\n", n)
}

func newTree(t *testing.T, files map[string]string) billy.Filesystem {
	t.Helper()

	fs := memfs.New()
	if err := fs.MkdirAll("/r", 0o755); err != nil {
		t.Fatalf("Failed to create root: %v", err)
	}
	for name, content := range files {
		p := fs.Join("/r", name)
		if err := fs.MkdirAll(fs.Join(p, ".."), 0o755); err != nil {
			t.Fatalf("Failed to create dir for %s: %v", name, err)
		}
		if err := util.WriteFile(fs, p, []byte(content), 0o644); err != nil {
			t.Fatalf("Failed to write %s: %v", name, err)
		}
	}
	return fs
}

func TestAggregateExcludesDirectories(t *testing.T) {
	fs := newTree(t, map[string]string{
		"node_modules/a.js": lines(10),
		"src/b.js":          lines(5),
	})

	result, err := tally.Aggregate(fs, tally.Options{
		Root:       "/r",
		Exclusions: []string{"node_modules"},
		Extensions: []string{".js"},
	})
	if err != nil {
		t.Fatalf("Aggregate failed: %v", err)
	}

	expected := map[string]int{"js": 5}
	if diff := cmp.Diff(expected, result.Counts); diff != "" {
		t.Errorf("counts mismatch (-want +got):\n%s", diff)
	}
	if result.Files != 1 {
		t.Errorf("Files = %d, want 1", result.Files)
	}
}

func TestAggregateSuffixIsExact(t *testing.T) {
	fs := newTree(t, map[string]string{
		"a.js":  lines(3),
		"a.jsx": lines(4),
	})

	result, err := tally.Aggregate(fs, tally.Options{
		Root:       "/r",
		Extensions: []string{".js"},
	})
	if err != nil {
		t.Fatalf("Aggregate failed: %v", err)
	}

	expected := map[string]int{"js": 3}
	if diff := cmp.Diff(expected, result.Counts); diff != "" {
		t.Errorf("counts mismatch (-want +got):\n%s", diff)
	}
}

func TestAggregateSuffixIsCaseSensitive(t *testing.T) {
	fs := newTree(t, map[string]string{
		"a.go": lines(2),
		"b.GO": lines(7),
	})

	result, err := tally.Aggregate(fs, tally.Options{
		Root:       "/r",
		Extensions: []string{".go"},
	})
	if err != nil {
		t.Fatalf("Aggregate failed: %v", err)
	}
	if got := result.Total(); got != 2 {
		t.Errorf("Total() = %d, want 2", got)
	}
}

func TestAggregateLongestSuffixWins(t *testing.T) {
	fs := newTree(t, map[string]string{
		"types.d.ts": lines(2),
		"main.ts":    lines(6),
	})

	result, err := tally.Aggregate(fs, tally.Options{
		Root:       "/r",
		Extensions: []string{".ts", ".d.ts"},
	})
	if err != nil {
		t.Fatalf("Aggregate failed: %v", err)
	}

	expected := map[string]int{"ts": 6, "d.ts": 2}
	if diff := cmp.Diff(expected, result.Counts); diff != "" {
		t.Errorf("counts mismatch (-want +got):\n%s", diff)
	}
}

func TestAggregateDecodeFailure(t *testing.T) {
	fs := newTree(t, map[string]string{
		"good.py": "a = 1\nb = 2\n",
		"bad.py":  string([]byte{0xff, 0xfe, 'x', '\n', 0xc3}),
	})

	var warned []tally.Warning
	result, err := tally.Aggregate(fs, tally.Options{
		Root:       "/r",
		Extensions: []string{".py"},
		OnWarning:  func(w tally.Warning) { warned = append(warned, w) },
	})
	if err != nil {
		t.Fatalf("Aggregate failed: %v", err)
	}

	expected := map[string]int{"py": 2}
	if diff := cmp.Diff(expected, result.Counts); diff != "" {
		t.Errorf("counts mismatch (-want +got):\n%s", diff)
	}

	if len(result.Warnings) != 1 {
		t.Fatalf("expected 1 warning, got %d", len(result.Warnings))
	}
	if len(warned) != 1 {
		t.Fatalf("expected OnWarning to be called once, got %d", len(warned))
	}

	w := result.Warnings[0]
	if w.Path != "/r/bad.py" {
		t.Errorf("warning path = %q, want /r/bad.py", w.Path)
	}
	var decodeErr *tally.DecodeError
	if !errors.As(w.Err, &decodeErr) {
		t.Errorf("expected DecodeError, got %T: %v", w.Err, w.Err)
	}
}

func TestAggregateEmptyRoot(t *testing.T) {
	tests := []struct {
		name  string
		files map[string]string
	}{
		{name: "no files", files: nil},
		{name: "no matching files", files: map[string]string{"README.md": lines(4)}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fs := newTree(t, tt.files)
			result, err := tally.Aggregate(fs, tally.Options{
				Root:       "/r",
				Extensions: []string{".go"},
			})
			if err != nil {
				t.Fatalf("Aggregate failed: %v", err)
			}
			if len(result.Counts) != 0 {
				t.Errorf("expected empty counts, got %v", result.Counts)
			}
			if result.Total() != 0 {
				t.Errorf("Total() = %d, want 0", result.Total())
			}
		})
	}
}

func TestAggregateInvalidRoot(t *testing.T) {
	fs := newTree(t, map[string]string{"file.go": lines(1)})

	tests := []struct {
		name string
		root string
	}{
		{name: "missing", root: "/nope"},
		{name: "not a directory", root: "/r/file.go"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := tally.Aggregate(fs, tally.Options{
				Root:       tt.root,
				Extensions: []string{".go"},
			})
			var pathErr *tally.PathError
			if !errors.As(err, &pathErr) {
				t.Fatalf("expected PathError, got %v", err)
			}
			if pathErr.Path != tt.root {
				t.Errorf("PathError.Path = %q, want %q", pathErr.Path, tt.root)
			}
		})
	}
}

func TestAggregateRequiresExtensions(t *testing.T) {
	fs := newTree(t, nil)
	_, err := tally.Aggregate(fs, tally.Options{Root: "/r"})
	if !errors.Is(err, tally.ErrNoExtensions) {
		t.Errorf("expected ErrNoExtensions, got %v", err)
	}
}

func TestAggregateMatchModes(t *testing.T) {
	files := map[string]string{
		"build/out.go":             lines(1),
		"rebuild-artifacts/gen.go": lines(2),
		"src/main.go":              lines(4),
	}

	tests := []struct {
		match tally.MatchMode
		want  int
	}{
		{tally.MatchSubstring, 4},
		{tally.MatchSegment, 6},
	}

	for _, tt := range tests {
		t.Run(tt.match.String(), func(t *testing.T) {
			fs := newTree(t, files)
			result, err := tally.Aggregate(fs, tally.Options{
				Root:       "/r",
				Exclusions: []string{"build"},
				Match:      tt.match,
				Extensions: []string{".go"},
			})
			if err != nil {
				t.Fatalf("Aggregate failed: %v", err)
			}
			if got := result.Total(); got != tt.want {
				t.Errorf("Total() = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestAggregateExclusionIgnoresRootPath(t *testing.T) {
	fs := memfs.New()
	if err := fs.MkdirAll("/build/src", 0o755); err != nil {
		t.Fatalf("Failed to create dir: %v", err)
	}
	if err := util.WriteFile(fs, "/build/src/main.go", []byte(lines(3)), 0o644); err != nil {
		t.Fatalf("Failed to write file: %v", err)
	}

	result, err := tally.Aggregate(fs, tally.Options{
		Root:       "/build",
		Exclusions: []string{"build"},
		Extensions: []string{".go"},
	})
	if err != nil {
		t.Fatalf("Aggregate failed: %v", err)
	}
	if got := result.Total(); got != 3 {
		t.Errorf("Total() = %d, want 3", got)
	}
}

func TestAggregateByFile(t *testing.T) {
	fs := newTree(t, map[string]string{
		"a.rs":        lines(3),
		"src/lib.rs":  "fn main() {}",
		"src/x.css":   lines(8),
		"target/t.rs": lines(100),
	})

	result, err := tally.Aggregate(fs, tally.Options{
		Root:       "/r",
		Exclusions: []string{"target"},
		Extensions: []string{".rs", ".css"},
		Mode:       tally.ByFile,
	})
	if err != nil {
		t.Fatalf("Aggregate failed: %v", err)
	}

	expected := map[string]int{
		"/r/a.rs":       3,
		"/r/src/lib.rs": 1,
		"/r/src/x.css":  8,
	}
	if diff := cmp.Diff(expected, result.Counts); diff != "" {
		t.Errorf("counts mismatch (-want +got):\n%s", diff)
	}
}

func TestAggregatePrefix(t *testing.T) {
	fs := newTree(t, map[string]string{
		"a.rs":       lines(3),
		"src/lib.rs": lines(1),
		"src/bad.rs": "\xff\n",
	})

	prefix := filepath.Join("work", "proj")
	a := filepath.Join(prefix, "a.rs")
	lib := filepath.Join(prefix, "src", "lib.rs")
	bad := filepath.Join(prefix, "src", "bad.rs")

	var files []string
	result, err := tally.Aggregate(fs, tally.Options{
		Root:       "/r",
		Prefix:     prefix,
		Extensions: []string{".rs"},
		Mode:       tally.ByFile,
		OnFile:     func(path string) { files = append(files, path) },
	})
	if err != nil {
		t.Fatalf("Aggregate failed: %v", err)
	}

	if diff := cmp.Diff(map[string]int{a: 3, lib: 1}, result.Counts); diff != "" {
		t.Errorf("counts mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]string{a, lib}, files); diff != "" {
		t.Errorf("OnFile paths mismatch (-want +got):\n%s", diff)
	}
	if result.Root != prefix {
		t.Errorf("Root = %q, want %q", result.Root, prefix)
	}
	if len(result.Warnings) != 1 || result.Warnings[0].Path != bad {
		t.Errorf("unexpected warnings: %v", result.Warnings)
	}

	_, err = tally.Aggregate(fs, tally.Options{Root: "/missing", Prefix: "proj", Extensions: []string{".rs"}})
	var pathErr *tally.PathError
	if !errors.As(err, &pathErr) || pathErr.Path != "proj" {
		t.Errorf("expected PathError for proj, got %v", err)
	}
}

func TestAggregateTotalEqualsSum(t *testing.T) {
	files := map[string]string{
		"a.js":         lines(3),
		"b.jsx":        lines(4),
		"c/d.css":      lines(5),
		"c/e/f.rs":     lines(6),
		"c/e/g.js":     "no newline",
		".git/HEAD.js": lines(50),
		"venv/lib.js":  lines(70),
		"c/empty.rs":   "",
		"c/crlf.css":   "a\r\nb\r\n",
	}

	for _, mode := range []tally.Mode{tally.ByExtension, tally.ByFile} {
		t.Run(mode.String(), func(t *testing.T) {
			fs := newTree(t, files)
			result, err := tally.Aggregate(fs, tally.Options{
				Root:       "/r",
				Exclusions: []string{".git", "venv"},
				Extensions: []string{".js", ".jsx", ".css", ".rs"},
				Mode:       mode,
			})
			if err != nil {
				t.Fatalf("Aggregate failed: %v", err)
			}

			sum := 0
			for _, n := range result.Counts {
				sum += n
			}
			if result.Total() != sum {
				t.Errorf("Total() = %d, sum of counts = %d", result.Total(), sum)
			}
			if result.Total() != 3+4+5+6+1+2 {
				t.Errorf("Total() = %d, want %d", result.Total(), 3+4+5+6+1+2)
			}
			if result.Files != 7 {
				t.Errorf("Files = %d, want 7", result.Files)
			}
		})
	}
}

func TestAggregateIdempotent(t *testing.T) {
	fs := newTree(t, map[string]string{
		"x/a.go": lines(2),
		"y/b.go": lines(3),
		"z.go":   lines(4),
	})
	opts := tally.Options{Root: "/r", Extensions: []string{".go"}, Mode: tally.ByFile}

	first, err := tally.Aggregate(fs, opts)
	if err != nil {
		t.Fatalf("Aggregate failed: %v", err)
	}
	second, err := tally.Aggregate(fs, opts)
	if err != nil {
		t.Fatalf("Aggregate failed: %v", err)
	}

	if diff := cmp.Diff(first, second); diff != "" {
		t.Errorf("runs differ (-first +second):\n%s", diff)
	}
}

func TestAggregateWorkersMatchSequential(t *testing.T) {
	files := map[string]string{}
	for i := 0; i < 40; i++ {
		dir := string(rune('a' + i%5))
		files[filepath.Join(dir, strings.Repeat("f", i+1)+".go")] = lines(i)
	}
	files["bad.go"] = string([]byte{0xff})

	fs := newTree(t, files)
	opts := tally.Options{Root: "/r", Extensions: []string{".go"}, Mode: tally.ByFile}

	sequential, err := tally.Aggregate(fs, opts)
	if err != nil {
		t.Fatalf("Aggregate failed: %v", err)
	}

	opts.Workers = 4
	var seen int
	opts.OnFile = func(string) { seen++ }
	pooled, err := tally.Aggregate(fs, opts)
	if err != nil {
		t.Fatalf("Aggregate failed: %v", err)
	}

	if diff := cmp.Diff(sequential.Counts, pooled.Counts); diff != "" {
		t.Errorf("counts differ (-sequential +pooled):\n%s", diff)
	}
	if len(pooled.Warnings) != 1 || pooled.Warnings[0].Path != "/r/bad.go" {
		t.Errorf("unexpected warnings: %v", pooled.Warnings)
	}
	if seen != pooled.Files {
		t.Errorf("OnFile called %d times, want %d", seen, pooled.Files)
	}
}

func TestAggregateOnDisk(t *testing.T) {
	tmpDir := t.TempDir()

	write := func(name, content string) {
		p := filepath.Join(tmpDir, name)
		if err := os.MkdirAll(filepath.Dir(p), 0o755); err != nil {
			t.Fatalf("Failed to create dir: %v", err)
		}
		if err := os.WriteFile(p, []byte(content), 0o644); err != nil {
			t.Fatalf("Failed to write %s: %v", name, err)
		}
	}
	write("src/b.js", lines(5))
	write("node_modules/a.js", lines(10))
	write("lib/real/c.js", lines(2))

	// Symlinked directories are not followed; symlinked files are counted.
	if err := os.Symlink(filepath.Join(tmpDir, "lib"), filepath.Join(tmpDir, "linked")); err != nil {
		t.Skipf("symlinks unsupported: %v", err)
	}
	if err := os.Symlink(filepath.Join(tmpDir, "src", "b.js"), filepath.Join(tmpDir, "alias.js")); err != nil {
		t.Skipf("symlinks unsupported: %v", err)
	}

	result, err := tally.Aggregate(osfs.New(tmpDir), tally.Options{
		Exclusions: []string{"node_modules"},
		Extensions: []string{".js"},
		Mode:       tally.ByFile,
	})
	if err != nil {
		t.Fatalf("Aggregate failed: %v", err)
	}

	expected := map[string]int{
		"alias.js":      5,
		"lib/real/c.js": 2,
		"src/b.js":      5,
	}
	if diff := cmp.Diff(expected, result.Counts); diff != "" {
		t.Errorf("counts mismatch (-want +got):\n%s", diff)
	}
}

func TestAggregateUnreadableFile(t *testing.T) {
	if os.Geteuid() == 0 {
		t.Skip("permission checks do not apply to root")
	}

	tmpDir := t.TempDir()
	if err := os.WriteFile(filepath.Join(tmpDir, "ok.go"), []byte(lines(2)), 0o644); err != nil {
		t.Fatalf("Failed to write file: %v", err)
	}
	locked := filepath.Join(tmpDir, "locked.go")
	if err := os.WriteFile(locked, []byte(lines(9)), 0o000); err != nil {
		t.Fatalf("Failed to write file: %v", err)
	}

	result, err := tally.Aggregate(osfs.New(tmpDir), tally.Options{Extensions: []string{".go"}})
	if err != nil {
		t.Fatalf("Aggregate failed: %v", err)
	}
	if result.Total() != 2 {
		t.Errorf("Total() = %d, want 2", result.Total())
	}
	if len(result.Warnings) != 1 {
		t.Fatalf("expected 1 warning, got %v", result.Warnings)
	}
	var ioErr *tally.IOError
	if !errors.As(result.Warnings[0].Err, &ioErr) {
		t.Errorf("expected IOError, got %T", result.Warnings[0].Err)
	}
}

func TestResultKeys(t *testing.T) {
	r := &tally.Result{Counts: map[string]int{"rs": 10, "css": 40, "js": 10}}

	if diff := cmp.Diff([]string{"css", "js", "rs"}, r.Keys(tally.SortByName)); diff != "" {
		t.Errorf("name order mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]string{"css", "js", "rs"}, r.Keys(tally.SortByLines)); diff != "" {
		t.Errorf("lines order mismatch (-want +got):\n%s", diff)
	}

	r.Counts["rs"] = 50
	if diff := cmp.Diff([]string{"rs", "css", "js"}, r.Keys(tally.SortByLines)); diff != "" {
		t.Errorf("lines order mismatch (-want +got):\n%s", diff)
	}
}
