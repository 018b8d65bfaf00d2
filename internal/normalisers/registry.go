package normalisers

import (
	"context"
	"mime"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/Muhammadasif1986/ai-diven-book/internal/core/domain"
	"github.com/Muhammadasif1986/ai-diven-book/internal/core/ports/driven"
	"github.com/Muhammadasif1986/ai-diven-book/internal/normalisers/html"
	"github.com/Muhammadasif1986/ai-diven-book/internal/normalisers/markdown"
	"github.com/Muhammadasif1986/ai-diven-book/internal/normalisers/plaintext"
)

// Ensure Registry implements the interface.
var _ driven.NormaliserRegistry = (*Registry)(nil)

// Registry dispatches raw books to the highest priority normaliser
// registered for their MIME type. Unknown types fall back to text/plain.
type Registry struct {
	mu          sync.RWMutex
	normalisers []driven.Normaliser
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{}
}

// NewDefaultRegistry returns a registry with the markdown, HTML and plain text normalisers.
func NewDefaultRegistry() *Registry {
	r := NewRegistry()
	r.Register(markdown.New())
	r.Register(html.New())
	r.Register(plaintext.New())
	return r
}

// Register adds a normaliser to the registry.
func (r *Registry) Register(n driven.Normaliser) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.normalisers = append(r.normalisers, n)
	sort.SliceStable(r.normalisers, func(i, j int) bool {
		return r.normalisers[i].Priority() > r.normalisers[j].Priority()
	})
}

// SupportedMIMETypes returns all MIME types that can be normalised.
func (r *Registry) SupportedMIMETypes() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	seen := make(map[string]bool)
	var types []string
	for _, n := range r.normalisers {
		for _, t := range n.SupportedMIMETypes() {
			if !seen[t] {
				seen[t] = true
				types = append(types, t)
			}
		}
	}
	return types
}

// Normalise transforms a raw book using the best matching normaliser.
// An empty MIME type is detected from the file extension.
func (r *Registry) Normalise(ctx context.Context, raw *domain.RawBook) (*domain.NormalisedBook, error) {
	if raw == nil {
		return nil, domain.NewValidationError("file", "no content")
	}
	mimeType := raw.MIMEType
	if mimeType == "" {
		mimeType = DetectMIMEType(raw.URI)
	}

	if n := r.find(mimeType); n != nil {
		return n.Normalise(ctx, raw)
	}
	if n := r.find("text/plain"); n != nil {
		return n.Normalise(ctx, raw)
	}
	return nil, domain.NewValidationError("file", "unsupported file type %s", mimeType)
}

func (r *Registry) find(mimeType string) driven.Normaliser {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, n := range r.normalisers {
		for _, t := range n.SupportedMIMETypes() {
			if t == mimeType {
				return n
			}
		}
	}
	return nil
}

// DetectMIMEType maps a file name to a MIME type, ignoring any charset parameter.
func DetectMIMEType(path string) string {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".md", ".markdown", ".mdown":
		return "text/markdown"
	case ".txt", ".text", "":
		return "text/plain"
	}
	if t := mime.TypeByExtension(filepath.Ext(path)); t != "" {
		if mt, _, err := mime.ParseMediaType(t); err == nil {
			return mt
		}
	}
	return "application/octet-stream"
}
