// Package plaintext derives the text/plain fallback body from rendered HTML.
package plaintext

import (
	"fmt"

	"github.com/jaytaylor/html2text"
)

// FromHTML converts an HTML body to plain text. Image tags produce no output,
// so the result is safe as a text/plain alternative part.
func FromHTML(html string) (string, error) {
	text, err := html2text.FromString(html)
	if err != nil {
		return "", fmt.Errorf("converting html to text: %w", err)
	}
	return text, nil
}
