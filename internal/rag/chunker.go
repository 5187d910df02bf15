package rag

import "strings"

// Chunking defaults mirror the knowledge-ingestion pipeline settings.
const (
	DefaultChunkSize    = 1000
	DefaultChunkOverlap = 200
)

// Chunk splits text into overlapping pieces of at most size bytes, preferring
// to break at sentence boundaries, then whitespace, before cutting mid-word.
func Chunk(text string, size, overlap int) []string {
	if size <= 0 {
		size = DefaultChunkSize
	}
	if overlap < 0 || overlap >= size {
		overlap = DefaultChunkOverlap
		if overlap >= size {
			overlap = size / 4
		}
	}

	text = strings.TrimSpace(text)
	if text == "" {
		return nil
	}
	if len(text) <= size {
		return []string{text}
	}

	var chunks []string
	start := 0
	for start < len(text) {
		end := start + size
		if end >= len(text) {
			chunk := strings.TrimSpace(text[start:])
			if chunk != "" {
				chunks = append(chunks, chunk)
			}
			break
		}

		cut := findBreak(text, start, end)
		chunk := strings.TrimSpace(text[start:cut])
		if chunk != "" {
			chunks = append(chunks, chunk)
		}

		next := cut - overlap
		if next <= start {
			next = cut
		}
		start = next
	}
	return chunks
}

// findBreak picks the best split point in (start, end]: the last sentence
// terminator in the back half of the window, else the last space, else end.
func findBreak(text string, start, end int) int {
	window := text[start:end]
	half := len(window) / 2

	best := -1
	for _, terminator := range []string{". ", "! ", "? ", "\n"} {
		if i := strings.LastIndex(window, terminator); i > half && i+len(terminator) > best {
			best = i + len(terminator)
		}
	}
	if best > 0 {
		return start + best
	}

	if i := strings.LastIndex(window, " "); i > half {
		return start + i + 1
	}
	return end
}
