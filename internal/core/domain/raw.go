package domain

// RawBook is an unparsed book file read from disk.
type RawBook struct {
	// URI is the file path the content was read from.
	URI string

	// MIMEType is the detected content type (e.g., "text/markdown").
	MIMEType string

	// Content is the raw bytes.
	Content []byte
}

// NormalisedBook is book text ready for chunking.
type NormalisedBook struct {
	// Title is taken from the document heading or the file name.
	Title string

	// Content is plain text with formatting removed.
	Content string

	// Format names the normaliser that produced it, e.g. "markdown".
	Format string
}
