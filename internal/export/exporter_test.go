package export

import (
	"context"
	"errors"
	"testing"
	"time"

	"designify/internal/github"
	"designify/internal/projecttree"
)

type write struct {
	path string
	sha  string
}

type fakeRepoWriter struct {
	userErr   error
	createErr error
	existing  map[string]string // path -> sha
	failAt    string            // path whose PutFile fails
	writes    []write
	lookups   []string
}

func (f *fakeRepoWriter) AuthenticatedUser(context.Context) (github.User, error) {
	if f.userErr != nil {
		return github.User{}, f.userErr
	}
	return github.User{Login: "octo"}, nil
}

func (f *fakeRepoWriter) CreateRepo(_ context.Context, name, _ string) (github.Repo, error) {
	if f.createErr != nil {
		return github.Repo{}, f.createErr
	}
	repo := github.Repo{Name: name, HTMLURL: "https://github.com/octo/" + name}
	repo.Owner.Login = "octo"
	return repo, nil
}

func (f *fakeRepoWriter) FileSHA(_ context.Context, _, _, path string) (string, bool, error) {
	f.lookups = append(f.lookups, path)
	sha, ok := f.existing[path]
	return sha, ok, nil
}

func (f *fakeRepoWriter) PutFile(_ context.Context, _, _, path, _, _, sha string) error {
	if f.failAt != "" && path == f.failAt {
		return errors.New("boom")
	}
	f.writes = append(f.writes, write{path: path, sha: sha})
	return nil
}

func generatedTree() *projecttree.Tree {
	tree := projecttree.New()
	tree.Merge(projecttree.Payload{
		Components: map[string]string{"Nav.jsx": "nav"},
		Styles:     map[string]string{"index.css": "css"},
		Pages:      map[string]string{"main.jsx": "entry"},
	})
	return tree
}

func fastExporter() *Exporter {
	return New(time.Microsecond)
}

func TestExportWritesEveryFilePlusReadmeLast(t *testing.T) {
	writer := &fakeRepoWriter{}
	tree := generatedTree()
	wantFiles := tree.FileCount()

	res, err := fastExporter().Export(context.Background(), writer, Request{
		RepoName: "my-app",
		Tree:     tree,
	})
	if err != nil {
		t.Fatalf("Export() error = %v", err)
	}
	if len(writer.writes) != wantFiles+1 {
		t.Fatalf("writes = %d, want %d content writes plus one README", len(writer.writes), wantFiles+1)
	}
	if last := writer.writes[len(writer.writes)-1]; last.path != "README.md" {
		t.Fatalf("last write = %q, want README.md", last.path)
	}
	for _, w := range writer.writes[:len(writer.writes)-1] {
		if w.path == "README.md" {
			t.Fatalf("README written before the end of the walk")
		}
	}
	if res.FilesWritten != wantFiles+1 {
		t.Fatalf("FilesWritten = %d, want %d", res.FilesWritten, wantFiles+1)
	}
	if res.RepoURL != "https://github.com/octo/my-app" {
		t.Fatalf("RepoURL = %q", res.RepoURL)
	}
}

func TestExportFailureAbortsRemainingWrites(t *testing.T) {
	writer := &fakeRepoWriter{failAt: "index.html"}
	res, err := fastExporter().Export(context.Background(), writer, Request{
		RepoName: "my-app",
		Tree:     generatedTree(),
	})
	if err == nil {
		t.Fatalf("expected failure, got %+v", res)
	}
	var fwErr *FileWriteError
	if !errors.As(err, &fwErr) {
		t.Fatalf("error = %T, want *FileWriteError", err)
	}
	if fwErr.Path != "index.html" {
		t.Fatalf("failing path = %q", fwErr.Path)
	}
	// Skeleton order is package.json, vite.config.js, index.html: the
	// first two succeed, nothing after the failure is attempted.
	if len(writer.writes) != 2 {
		t.Fatalf("writes after failure = %v", writer.writes)
	}
	for _, w := range writer.writes {
		if w.path == "README.md" {
			t.Fatalf("README written despite earlier failure")
		}
	}
}

func TestExportUpsertsExistingFiles(t *testing.T) {
	writer := &fakeRepoWriter{existing: map[string]string{"package.json": "sha-abc"}}
	_, err := fastExporter().Export(context.Background(), writer, Request{
		RepoName: "my-app",
		Tree:     projecttree.New(),
	})
	if err != nil {
		t.Fatalf("Export() error = %v", err)
	}
	found := false
	for _, w := range writer.writes {
		if w.path == "package.json" {
			found = true
			if w.sha != "sha-abc" {
				t.Fatalf("existing file written without its sha: %+v", w)
			}
		} else if w.sha != "" {
			t.Fatalf("fresh file %q carried a sha", w.path)
		}
	}
	if !found {
		t.Fatalf("package.json never written")
	}
}

func TestExportAuthExpired(t *testing.T) {
	writer := &fakeRepoWriter{userErr: github.ErrAuthExpired}
	_, err := fastExporter().Export(context.Background(), writer, Request{
		RepoName: "my-app",
		Tree:     projecttree.New(),
	})
	if !errors.Is(err, github.ErrAuthExpired) {
		t.Fatalf("error = %v, want ErrAuthExpired", err)
	}
	if len(writer.writes) != 0 {
		t.Fatalf("writes attempted with an expired credential")
	}
}

func TestExportNameConflict(t *testing.T) {
	writer := &fakeRepoWriter{createErr: github.ErrNameConflict}
	_, err := fastExporter().Export(context.Background(), writer, Request{
		RepoName: "taken",
		Tree:     projecttree.New(),
	})
	if !errors.Is(err, github.ErrNameConflict) {
		t.Fatalf("error = %v, want ErrNameConflict", err)
	}
}

func TestExportRejectsMalformedTree(t *testing.T) {
	tree := projecttree.New()
	tree.Root.Set("broken", &projecttree.Node{})
	writer := &fakeRepoWriter{}
	_, err := fastExporter().Export(context.Background(), writer, Request{RepoName: "x", Tree: tree})
	if err == nil {
		t.Fatalf("expected validation failure")
	}
	if len(writer.lookups) != 0 || len(writer.writes) != 0 {
		t.Fatalf("remote calls made before validation passed")
	}
}

func TestExportProgressEventsEndWithReadme(t *testing.T) {
	var events []Event
	writer := &fakeRepoWriter{}
	_, err := fastExporter().Export(context.Background(), writer, Request{
		RepoName: "my-app",
		Tree:     generatedTree(),
		ExportID: "exp-1",
		Progress: func(ev Event) { events = append(events, ev) },
	})
	if err != nil {
		t.Fatalf("Export() error = %v", err)
	}
	if len(events) < 3 {
		t.Fatalf("too few events: %v", events)
	}
	if events[len(events)-1].Stage != "done" {
		t.Fatalf("last event = %+v, want done", events[len(events)-1])
	}
	if readme := events[len(events)-2]; readme.Stage != "readme" || readme.Path != "README.md" {
		t.Fatalf("penultimate event = %+v, want readme", readme)
	}
	for _, ev := range events {
		if ev.ExportID != "exp-1" {
			t.Fatalf("event missing export id: %+v", ev)
		}
	}
}
