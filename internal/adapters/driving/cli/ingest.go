package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/Muhammadasif1986/ai-diven-book/internal/core/domain"
	"github.com/Muhammadasif1986/ai-diven-book/internal/logger"
)

// watchDebounce collapses the burst of events an editor save produces.
const watchDebounce = 500 * time.Millisecond

var (
	ingestBookID    string
	ingestTitle     string
	ingestAuthor    string
	ingestChunkSize int
	ingestManifest  string
	ingestWatch     bool
	ingestJSON      bool
)

var ingestCmd = &cobra.Command{
	Use:   "ingest [file]",
	Short: "Index a book for question answering",
	Long: `Chunks, embeds and indexes a book file. Markdown files have their
formatting stripped and take their title from the first heading; anything else
is read as plain text. Re-ingesting a book replaces what was indexed before.

A manifest indexes several books at once:

  books:
    - book_id: robotics
      title: Physical AI & Humanoid Robotics
      author: Jane Doe
      file: ./robotics.md

Examples:
  bookrag ingest robotics.md --book-id robotics
  bookrag ingest --manifest books.yaml
  bookrag ingest robotics.md --watch`,
	Args: cobra.MaximumNArgs(1),
	RunE: runIngest,
}

func init() {
	ingestCmd.Flags().StringVar(&ingestBookID, "book-id", "", "book identifier (default: derived from the file name)")
	ingestCmd.Flags().StringVar(&ingestTitle, "title", "", "book title (default: first heading or file name)")
	ingestCmd.Flags().StringVar(&ingestAuthor, "author", "", "book author")
	ingestCmd.Flags().IntVar(&ingestChunkSize, "chunk-size", 0, "target chunk size in tokens (0 = default)")
	ingestCmd.Flags().StringVarP(&ingestManifest, "manifest", "m", "", "YAML manifest listing books to ingest")
	ingestCmd.Flags().BoolVarP(&ingestWatch, "watch", "w", false, "re-ingest when the file changes")
	ingestCmd.Flags().BoolVar(&ingestJSON, "json", false, "output results as JSON")
	rootCmd.AddCommand(ingestCmd)
}

// ingestJob is one book to ingest from a file.
type ingestJob struct {
	BookID    string `yaml:"book_id"`
	Title     string `yaml:"title"`
	Author    string `yaml:"author"`
	File      string `yaml:"file"`
	ChunkSize int    `yaml:"chunk_size"`
}

// manifest is the YAML file accepted by --manifest.
type manifest struct {
	Books []ingestJob `yaml:"books"`
}

func runIngest(cmd *cobra.Command, args []string) error {
	if ingestionService == nil {
		return errIngestionNotConfigured
	}

	jobs, err := ingestJobs(args)
	if err != nil {
		return err
	}

	ctx := cmd.Context()
	for _, job := range jobs {
		if err := ingestFile(ctx, cmd, job); err != nil {
			return err
		}
	}

	if ingestWatch {
		return watchBooks(ctx, cmd, jobs)
	}
	return nil
}

// ingestJobs builds the job list from the manifest or the single file argument.
func ingestJobs(args []string) ([]ingestJob, error) {
	switch {
	case ingestManifest != "" && len(args) > 0:
		return nil, errors.New("give either a file or --manifest, not both")
	case ingestManifest != "":
		return loadManifest(ingestManifest)
	case len(args) == 0:
		return nil, errors.New("a book file or --manifest is required")
	}
	return []ingestJob{{
		BookID:    ingestBookID,
		Title:     ingestTitle,
		Author:    ingestAuthor,
		File:      args[0],
		ChunkSize: ingestChunkSize,
	}}, nil
}

// loadManifest reads a manifest. Relative file paths resolve against its directory.
func loadManifest(path string) ([]ingestJob, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading manifest: %w", err)
	}

	var m manifest
	if err := yaml.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("parsing manifest: %w", err)
	}
	if len(m.Books) == 0 {
		return nil, fmt.Errorf("manifest %s lists no books", path)
	}

	dir := filepath.Dir(path)
	for i := range m.Books {
		if m.Books[i].File == "" {
			return nil, fmt.Errorf("manifest entry %d has no file", i+1)
		}
		if !filepath.IsAbs(m.Books[i].File) {
			m.Books[i].File = filepath.Join(dir, m.Books[i].File)
		}
	}
	return m.Books, nil
}

// ingestFile reads, normalises and ingests one book file.
func ingestFile(ctx context.Context, cmd *cobra.Command, job ingestJob) error {
	req, err := buildIngestRequest(ctx, job)
	if err != nil {
		return err
	}

	if !ingestJSON {
		cmd.Printf("Ingesting %s as %q...\n", job.File, req.BookID)
	}
	result, err := ingestionService.Ingest(ctx, req)
	if err != nil {
		return fmt.Errorf("ingesting %s: %w", job.File, err)
	}

	if ingestJSON {
		return printJSON(cmd, result)
	}
	cmd.Printf("  %s: %d chunks in %dms\n", result.Message, result.TotalChunks, result.ProcessingTimeMS)
	return nil
}

func buildIngestRequest(ctx context.Context, job ingestJob) (domain.IngestRequest, error) {
	content, err := os.ReadFile(job.File)
	if err != nil {
		return domain.IngestRequest{}, fmt.Errorf("reading book: %w", err)
	}

	title, text := "", string(content)
	if normalisers != nil {
		book, err := normalisers.Normalise(ctx, &domain.RawBook{URI: job.File, Content: content})
		if err != nil {
			return domain.IngestRequest{}, fmt.Errorf("normalising %s: %w", job.File, err)
		}
		title, text = book.Title, book.Content
	}

	req := domain.IngestRequest{
		BookID:    job.BookID,
		Title:     job.Title,
		Author:    job.Author,
		Content:   text,
		ChunkSize: job.ChunkSize,
	}
	if req.BookID == "" {
		req.BookID = bookIDFromPath(job.File)
	}
	if req.Title == "" {
		req.Title = title
	}
	if req.Title == "" {
		req.Title = strings.TrimSuffix(filepath.Base(job.File), filepath.Ext(job.File))
	}
	return req, nil
}

var invalidBookIDChars = regexp.MustCompile(`[^A-Za-z0-9_-]+`)

// bookIDFromPath turns "My Book (2nd ed).md" into "my-book-2nd-ed".
// Names too short to be a valid id fall back to the default book.
func bookIDFromPath(path string) string {
	name := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	id := strings.Trim(invalidBookIDChars.ReplaceAllString(strings.ToLower(name), "-"), "-")
	if len(id) > 100 {
		id = strings.TrimRight(id[:100], "-")
	}
	if len(id) < 3 {
		return domain.DefaultBookID
	}
	return id
}

// watchBooks re-ingests a book whenever its file is written. Directories are
// watched rather than files so editors that save by rename are still seen.
func watchBooks(ctx context.Context, cmd *cobra.Command, jobs []ingestJob) error {
	log := logger.With("watch")

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("creating watcher: %w", err)
	}
	defer watcher.Close()

	byPath := make(map[string]ingestJob, len(jobs))
	dirs := make(map[string]bool)
	for _, job := range jobs {
		abs, err := filepath.Abs(job.File)
		if err != nil {
			return fmt.Errorf("resolving %s: %w", job.File, err)
		}
		byPath[abs] = job
		dirs[filepath.Dir(abs)] = true
	}
	for dir := range dirs {
		if err := watcher.Add(dir); err != nil {
			return fmt.Errorf("watching %s: %w", dir, err)
		}
	}

	cmd.Printf("Watching %d book(s) for changes. Press Ctrl+C to stop.\n", len(byPath))

	pending := make(map[string]bool)
	debounce := time.NewTimer(watchDebounce)
	debounce.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) {
				continue
			}
			abs, err := filepath.Abs(event.Name)
			if err != nil {
				continue
			}
			if _, ok := byPath[abs]; !ok {
				continue
			}
			log.Debug("Change detected: %s (%s)", abs, event.Op)
			pending[abs] = true
			debounce.Reset(watchDebounce)

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			log.Warn("Watcher error: %v", err)

		case <-debounce.C:
			for path := range pending {
				delete(pending, path)
				if err := ingestFile(ctx, cmd, byPath[path]); err != nil {
					// keep watching; the next save may fix it
					cmd.PrintErrf("Error: %v\n", err)
				}
			}
		}
	}
}
