// Package html provides a Normaliser for books exported as HTML pages.
// Scripts, styles and navigation are dropped; headings and paragraphs
// become lines of plain text.
package html
