package postprocessors

import (
	"github.com/Muhammadasif1986/ai-diven-book/internal/core/ports/driven"
	"github.com/Muhammadasif1986/ai-diven-book/internal/postprocessors/chunker"
)

// DefaultChunker is the chunker used when configuration names none.
const DefaultChunker = "chunker"

// RegisterDefaults registers all built-in chunkers with the registry.
func RegisterDefaults(r *Registry) {
	r.Register(DefaultChunker, buildChunker)
}

// buildChunker creates the boundary-aware chunker from generic config.
// Supported config keys:
//   - target_tokens (int): Window size in tokens (default: 512)
//   - overlap_tokens (int): Overlap between windows in tokens (default: 100)
func buildChunker(cfg map[string]any) (driven.Chunker, error) {
	var opts []chunker.Option

	if size, ok := getIntFromConfig(cfg, "target_tokens"); ok {
		opts = append(opts, chunker.WithTargetTokens(size))
	}
	if overlap, ok := getIntFromConfig(cfg, "overlap_tokens"); ok {
		opts = append(opts, chunker.WithOverlapTokens(overlap))
	}

	return chunker.New(opts...), nil
}

// getIntFromConfig extracts an int from a generic config map.
// Handles int, int64, and float64 types that may come from TOML/JSON parsing.
func getIntFromConfig(cfg map[string]any, key string) (int, bool) {
	val, ok := cfg[key]
	if !ok {
		return 0, false
	}

	switch v := val.(type) {
	case int:
		return v, true
	case int64:
		return int(v), true
	case float64:
		return int(v), true
	default:
		return 0, false
	}
}
