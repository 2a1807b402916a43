package relay

import "strings"

// MaxMessageLength is the chat platform's hard per-message character limit.
const MaxMessageLength = 2000

// Split breaks content into chunks of at most maxLength characters,
// preferring to split at a newline, then a sentence end, then a word
// boundary. Only when no boundary exists inside the window does it cut
// mid-word. Each trailing chunk has leading whitespace stripped.
func Split(content string, maxLength int) []string {
	if len(content) <= maxLength {
		return []string{content}
	}

	var chunks []string
	for len(content) > 0 {
		if len(content) <= maxLength {
			chunks = append(chunks, content)
			break
		}

		window := content[:maxLength]
		split := strings.LastIndex(window, "\n")
		if split == -1 {
			split = strings.LastIndex(window, ". ")
		}
		if split == -1 {
			split = strings.LastIndex(window, " ")
		}
		if split <= 0 {
			split = maxLength
		}

		chunks = append(chunks, content[:split])
		content = strings.TrimLeft(content[split:], " \t\r\n")
	}
	return chunks
}
