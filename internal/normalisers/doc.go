// Package normalisers turns book files into plain text for ingestion.
// Each normaliser handles a set of MIME types; the Registry picks the
// highest priority one for a file.
package normalisers
