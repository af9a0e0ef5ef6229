package scanner

import (
	"context"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/danieljhkim/modclash/internal/fsops"
)

// writeTree creates the given slash-separated files under root.
func writeTree(t *testing.T, root string, files ...string) {
	t.Helper()
	for _, rel := range files {
		p := filepath.Join(root, filepath.FromSlash(rel))
		require.NoError(t, os.MkdirAll(filepath.Dir(p), 0755))
		require.NoError(t, os.WriteFile(p, []byte(rel), 0644))
	}
}

func sortedMembers(members map[string]struct{}) []string {
	out := make([]string, 0, len(members))
	for m := range members {
		out = append(out, m)
	}
	sort.Strings(out)
	return out
}

func TestScan_CaseInsensitiveExtensionFilter(t *testing.T) {
	root := t.TempDir()
	writeTree(t, root, "a.txt", "a.BAK")

	members, err := Scan(context.Background(), root, []string{"bak"})
	require.NoError(t, err)
	assert.Equal(t, []string{"a.txt"}, sortedMembers(members))
}

func TestScanner_Scan(t *testing.T) {
	tests := []struct {
		name        string
		files       []string
		opts        Options
		wantMembers []string
		wantIgnored []string
	}{
		{
			name:        "nested paths use slash separators",
			files:       []string{"Data/meshes/rock.nif", "Data/textures/rock.dds", "readme.md"},
			wantMembers: []string{"Data/meshes/rock.nif", "Data/textures/rock.dds", "readme.md"},
		},
		{
			name:        "entries without extension are never filtered",
			files:       []string{"LICENSE", "bin/run", "notes.txt"},
			opts:        Options{IgnoreExtensions: []string{"txt"}},
			wantMembers: []string{"LICENSE", "bin/run"},
			wantIgnored: []string{"notes.txt"},
		},
		{
			name:        "ignore set is normalized",
			files:       []string{"a.Bak", "b.OLD", "c.esp"},
			opts:        Options{IgnoreExtensions: []string{".BAK", " old ", ""}},
			wantMembers: []string{"c.esp"},
			wantIgnored: []string{"a.Bak", "b.OLD"},
		},
		{
			name:        "only the last extension counts",
			files:       []string{"archive.tar.gz", "archive.gz.tar"},
			opts:        Options{IgnoreExtensions: []string{"gz"}},
			wantMembers: []string{"archive.gz.tar"},
			wantIgnored: []string{"archive.tar.gz"},
		},
		{
			name:        "dotted directory names do not count as extensions",
			files:       []string{"conf.bak/settings"},
			opts:        Options{IgnoreExtensions: []string{"bak"}},
			wantMembers: []string{"conf.bak/settings"},
		},
		{
			name:        "ignore patterns",
			files:       []string{"docs/a.md", "docs/sub/b.md", "Data/c.esp", "thumbs.db"},
			opts:        Options{IgnorePatterns: []string{"docs/**", "*.db"}},
			wantMembers: []string{"Data/c.esp"},
			wantIgnored: []string{"docs/a.md", "docs/sub/b.md", "thumbs.db"},
		},
		{
			name:        "single star stays in one segment",
			files:       []string{"a.log", "logs/b.log"},
			opts:        Options{IgnorePatterns: []string{"*.log"}},
			wantMembers: []string{"logs/b.log"},
			wantIgnored: []string{"a.log"},
		},
		{
			name:        "empty root",
			files:       nil,
			wantMembers: []string{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			root := t.TempDir()
			writeTree(t, root, tt.files...)

			s, err := New(fsops.NewRealFS(), tt.opts)
			require.NoError(t, err)

			res, err := s.Scan(context.Background(), root)
			require.NoError(t, err)

			assert.Equal(t, tt.wantMembers, sortedMembers(res.Members))
			ignored := append([]string(nil), res.Ignored...)
			sort.Strings(ignored)
			if len(tt.wantIgnored) == 0 {
				assert.Empty(t, ignored)
			} else {
				assert.Equal(t, tt.wantIgnored, ignored)
			}
			assert.Empty(t, res.Skipped)
			assert.Equal(t, root, res.Root)
		})
	}
}

func TestScanner_DirectoriesAreNotMembers(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(root, "empty", "deeper"), 0755))
	writeTree(t, root, "full/file.txt")

	s, err := New(fsops.NewRealFS(), Options{})
	require.NoError(t, err)
	res, err := s.Scan(context.Background(), root)
	require.NoError(t, err)

	assert.Equal(t, []string{"full/file.txt"}, sortedMembers(res.Members))
}

func TestScanner_SymlinksAreMembers(t *testing.T) {
	root := t.TempDir()
	writeTree(t, root, "real.txt")
	if err := os.Symlink(filepath.Join(root, "missing"), filepath.Join(root, "dangling")); err != nil {
		t.Skipf("symlinks not supported: %v", err)
	}

	s, err := New(fsops.NewRealFS(), Options{})
	require.NoError(t, err)
	res, err := s.Scan(context.Background(), root)
	require.NoError(t, err)

	assert.Equal(t, []string{"dangling", "real.txt"}, sortedMembers(res.Members))
}

func TestScanner_SymlinkedRoot(t *testing.T) {
	base := t.TempDir()
	target := filepath.Join(base, "real")
	writeTree(t, target, "sub/y.txt", "top.txt")
	link := filepath.Join(base, "link")
	if err := os.Symlink(target, link); err != nil {
		t.Skipf("symlinks not supported: %v", err)
	}
	chain := filepath.Join(base, "chain")
	require.NoError(t, os.Symlink(link, chain))

	s, err := New(fsops.NewRealFS(), Options{})
	require.NoError(t, err)

	for _, root := range []string{link, chain} {
		res, err := s.Scan(context.Background(), root)
		require.NoError(t, err, root)
		assert.Equal(t, root, res.Root)
		assert.Equal(t, []string{"sub/y.txt", "top.txt"}, sortedMembers(res.Members))
	}

	file := filepath.Join(base, "file-link")
	require.NoError(t, os.Symlink(filepath.Join(target, "top.txt"), file))
	_, err = s.Scan(context.Background(), file)
	assert.ErrorIs(t, err, ErrNotDirectory)

	dangling := filepath.Join(base, "dangling")
	require.NoError(t, os.Symlink(filepath.Join(base, "missing"), dangling))
	_, err = s.Scan(context.Background(), dangling)
	assert.ErrorIs(t, err, os.ErrNotExist)
	assert.False(t, errors.Is(err, ErrPathEscapesRoot))
}

func TestScanner_RootErrors(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "plain.txt")
	require.NoError(t, os.WriteFile(file, nil, 0644))

	s, err := New(fsops.NewRealFS(), Options{})
	require.NoError(t, err)

	_, err = s.Scan(context.Background(), file)
	assert.ErrorIs(t, err, ErrNotDirectory)

	_, err = s.Scan(context.Background(), filepath.Join(dir, "missing"))
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestNew_InvalidPattern(t *testing.T) {
	_, err := New(fsops.NewRealFS(), Options{IgnorePatterns: []string{"[unclosed"}})
	assert.ErrorIs(t, err, ErrInvalidPattern)
}

func TestExtension(t *testing.T) {
	tests := []struct {
		name string
		want string
	}{
		{"a.txt", "txt"},
		{"A.TXT", "txt"},
		{"dir/a.Dds", "dds"},
		{"archive.tar.gz", "gz"},
		{"README", ""},
		{"trailing.", ""},
		{".bashrc", "bashrc"},
		{"dir.d/file", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Extension(tt.name))
		})
	}
}

func TestOutcome_String(t *testing.T) {
	assert.Equal(t, "kept", OutcomeKept.String())
	assert.Equal(t, "ignored", OutcomeIgnored.String())
	assert.Equal(t, "skipped", OutcomeSkipped.String())
	assert.Equal(t, "outcome(9)", Outcome(9).String())
}

// walkStep is one callback invocation scripted by scriptedFS.
type walkStep struct {
	path string
	dir  bool
	err  error
	// noEntry passes a nil DirEntry, as WalkDir does when Lstat of the root fails
	noEntry bool
}

// scriptedFS replays a fixed walk so tests can inject traversal failures.
type scriptedFS struct {
	fsops.RealFS
	root  string
	steps []walkStep
}

func (f *scriptedFS) Lstat(path string) (os.FileInfo, error) {
	return &fakeFileInfo{name: filepath.Base(path), isDir: true}, nil
}

func (f *scriptedFS) Stat(path string) (os.FileInfo, error) {
	return &fakeFileInfo{name: filepath.Base(path), isDir: true}, nil
}

func (f *scriptedFS) WalkDir(root string, fn fs.WalkDirFunc) error {
	for _, step := range f.steps {
		var d fs.DirEntry
		if !step.noEntry {
			d = fs.FileInfoToDirEntry(&fakeFileInfo{name: filepath.Base(step.path), isDir: step.dir})
		}
		err := fn(step.path, d, step.err)
		if errors.Is(err, fs.SkipDir) || errors.Is(err, fs.SkipAll) {
			continue
		}
		if err != nil {
			return err
		}
	}
	return nil
}

type fakeFileInfo struct {
	name  string
	isDir bool
}

func (f *fakeFileInfo) Name() string { return f.name }
func (f *fakeFileInfo) Size() int64  { return 0 }
func (f *fakeFileInfo) Mode() os.FileMode {
	if f.isDir {
		return os.ModeDir | 0755
	}
	return 0644
}
func (f *fakeFileInfo) ModTime() time.Time { return time.Time{} }
func (f *fakeFileInfo) IsDir() bool        { return f.isDir }
func (f *fakeFileInfo) Sys() interface{}   { return nil }

func TestScanner_SkipsUnreadableEntries(t *testing.T) {
	root := filepath.FromSlash("/mods/ModA")
	join := func(rel string) string { return filepath.Join(root, filepath.FromSlash(rel)) }

	fake := &scriptedFS{
		root: root,
		steps: []walkStep{
			{path: root, dir: true},
			{path: join("a.txt")},
			{path: join("locked"), dir: true},
			{path: join("locked"), dir: true, err: fs.ErrPermission},
			{path: join("vanished.txt"), err: fs.ErrNotExist, noEntry: true},
			{path: join("z/b.txt")},
		},
	}

	s, err := New(fake, Options{})
	require.NoError(t, err)

	res, err := s.Scan(context.Background(), root)
	require.NoError(t, err)

	assert.Equal(t, []string{"a.txt", "z/b.txt"}, sortedMembers(res.Members))
	require.Len(t, res.Skipped, 2)
	assert.Equal(t, "locked", res.Skipped[0].Path)
	assert.ErrorIs(t, res.Skipped[0].Err, fs.ErrPermission)
	assert.Equal(t, "vanished.txt", res.Skipped[1].Path)
	assert.ErrorIs(t, res.Skipped[1].Err, fs.ErrNotExist)
}

func TestResult_Record(t *testing.T) {
	res := &Result{Members: make(map[string]struct{})}
	res.record(OutcomeKept, "a.txt", nil)
	res.record(OutcomeIgnored, "a.bak", nil)
	res.record(OutcomeSkipped, "locked", fs.ErrPermission)

	assert.Equal(t, []string{"a.txt"}, sortedMembers(res.Members))
	assert.Equal(t, []string{"a.bak"}, res.Ignored)
	require.Len(t, res.Skipped, 1)
	assert.Equal(t, "locked", res.Skipped[0].Path)
	assert.ErrorIs(t, res.Skipped[0].Err, fs.ErrPermission)
}

func TestScanner_PathEscapingRootIsFatal(t *testing.T) {
	root := filepath.FromSlash("/mods/ModA")

	fake := &scriptedFS{
		root: root,
		steps: []walkStep{
			{path: root, dir: true},
			{path: filepath.Join(root, "ok.txt")},
			{path: filepath.FromSlash("/mods/ModB/stolen.txt")},
			{path: filepath.Join(root, "never-reached.txt")},
		},
	}

	s, err := New(fake, Options{})
	require.NoError(t, err)

	res, err := s.Scan(context.Background(), root)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrPathEscapesRoot)
	assert.Contains(t, err.Error(), "stolen.txt")
	assert.Nil(t, res)
}

func TestScanner_ContextCanceled(t *testing.T) {
	root := t.TempDir()
	writeTree(t, root, "a.txt")

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	s, err := New(fsops.NewRealFS(), Options{})
	require.NoError(t, err)

	_, err = s.Scan(ctx, root)
	assert.ErrorIs(t, err, context.Canceled)
}
