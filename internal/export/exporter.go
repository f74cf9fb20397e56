// Package export materializes a project tree as file-by-file writes in a
// freshly created remote repository.
package export

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"designify/internal/github"
	"designify/internal/projecttree"
)

// DefaultFileDelay spaces file-creation calls to stay under the hosting
// provider's write-rate limits. Backpressure policy, not an incidental
// wait.
const DefaultFileDelay = 100 * time.Millisecond

// RepoWriter is the slice of the hosting-provider API the walk consumes.
type RepoWriter interface {
	AuthenticatedUser(ctx context.Context) (github.User, error)
	CreateRepo(ctx context.Context, name, description string) (github.Repo, error)
	FileSHA(ctx context.Context, owner, repo, path string) (string, bool, error)
	PutFile(ctx context.Context, owner, repo, path, message, content, sha string) error
}

// FileWriteError identifies the path whose write aborted the walk. The
// remote repository is left partially populated but coherent, and a
// re-export resumes safely through the upsert path.
type FileWriteError struct {
	Path string
	Err  error
}

func (e *FileWriteError) Error() string {
	return fmt.Sprintf("export: write %s: %v", e.Path, e.Err)
}

func (e *FileWriteError) Unwrap() error { return e.Err }

// Event reports walk progress to an optional observer.
type Event struct {
	ExportID string `json:"exportId,omitempty"`
	Stage    string `json:"stage"` // "file", "readme", "done", "failed"
	Path     string `json:"path,omitempty"`
	Index    int    `json:"index,omitempty"`
	Total    int    `json:"total,omitempty"`
	Error    string `json:"error,omitempty"`
}

// Request describes one export.
type Request struct {
	RepoName    string
	Description string
	Tree        *projecttree.Tree
	ExportID    string
	Progress    func(Event) // may be nil
}

// Result describes a completed export.
type Result struct {
	Owner        string
	RepoName     string
	RepoURL      string
	FilesWritten int
}

// Exporter walks trees sequentially. Concurrent writes would defeat the
// pacing and make partial-failure ordering non-deterministic.
type Exporter struct {
	fileDelay time.Duration
}

func New(fileDelay time.Duration) *Exporter {
	if fileDelay <= 0 {
		fileDelay = DefaultFileDelay
	}
	return &Exporter{fileDelay: fileDelay}
}

// Export creates the remote repository and writes every file leaf, then
// one synthetic README describing provenance. A failed file write aborts
// everything after it, README included; a failed README write does not
// undo the already-exported project files.
func (e *Exporter) Export(ctx context.Context, client RepoWriter, req Request) (Result, error) {
	if strings.TrimSpace(req.RepoName) == "" {
		return Result{}, errors.New("export: repo name is required")
	}
	if err := req.Tree.Validate(); err != nil {
		return Result{}, fmt.Errorf("export: invalid project tree: %w", err)
	}

	user, err := client.AuthenticatedUser(ctx)
	if err != nil {
		return Result{}, fmt.Errorf("export: resolve identity: %w", err)
	}

	repo, err := client.CreateRepo(ctx, req.RepoName, req.Description)
	if err != nil {
		return Result{}, fmt.Errorf("export: create repository: %w", err)
	}
	owner := repo.Owner.Login
	if owner == "" {
		owner = user.Login
	}
	repoURL := repo.HTMLURL
	if repoURL == "" {
		repoURL = fmt.Sprintf("https://github.com/%s/%s", owner, req.RepoName)
	}

	total := req.Tree.FileCount()
	limiter := rate.NewLimiter(rate.Every(e.fileDelay), 1)

	written := 0
	walkErr := req.Tree.Walk(func(path string, file *projecttree.File) error {
		if err := limiter.Wait(ctx); err != nil {
			return err
		}
		if err := e.upsert(ctx, client, owner, req.RepoName, path, file.Contents); err != nil {
			return &FileWriteError{Path: path, Err: err}
		}
		written++
		emit(req, Event{ExportID: req.ExportID, Stage: "file", Path: path, Index: written, Total: total})
		return nil
	})
	if walkErr != nil {
		emit(req, Event{ExportID: req.ExportID, Stage: "failed", Error: walkErr.Error()})
		return Result{}, walkErr
	}

	// README last: its failure must not abort an otherwise-successful
	// export of the real project files.
	if err := limiter.Wait(ctx); err != nil {
		return Result{}, err
	}
	readme := readmeContents(req.RepoName, req.Description, written)
	if err := e.upsert(ctx, client, owner, req.RepoName, "README.md", readme); err != nil {
		wrapped := &FileWriteError{Path: "README.md", Err: err}
		emit(req, Event{ExportID: req.ExportID, Stage: "failed", Error: wrapped.Error()})
		return Result{}, wrapped
	}
	emit(req, Event{ExportID: req.ExportID, Stage: "readme", Path: "README.md", Index: written + 1, Total: total + 1})

	emit(req, Event{ExportID: req.ExportID, Stage: "done", Total: total + 1})
	return Result{
		Owner:        owner,
		RepoName:     req.RepoName,
		RepoURL:      repoURL,
		FilesWritten: written + 1,
	}, nil
}

// upsert looks up the current blob SHA so re-exports against a partially
// populated repository update instead of colliding.
func (e *Exporter) upsert(ctx context.Context, client RepoWriter, owner, repo, path, contents string) error {
	sha, exists, err := client.FileSHA(ctx, owner, repo, path)
	if err != nil {
		return err
	}
	message := "Add " + path
	if exists {
		message = "Update " + path
	}
	return client.PutFile(ctx, owner, repo, path, message, contents, sha)
}

func emit(req Request, ev Event) {
	if req.Progress != nil {
		req.Progress(ev)
	}
}

func readmeContents(repoName, description string, files int) string {
	var b strings.Builder
	b.WriteString("# " + repoName + "\n\n")
	if strings.TrimSpace(description) != "" {
		b.WriteString(description + "\n\n")
	}
	b.WriteString("Generated from a visual design and exported by designify.\n\n")
	fmt.Fprintf(&b, "This repository contains %d generated files. Run `npm install && npm run dev` to start the app.\n", files)
	return b.String()
}
