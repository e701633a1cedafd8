package docs

import "strings"

// chunk separators tried in order, coarsest first.
var chunkSeparators = []string{"\n\n", "\n", " "}

// Chunk splits text into chunks of at most size bytes with the given
// overlap between consecutive chunks. Splitting prefers paragraph
// boundaries, then line boundaries, then word boundaries; only text
// with no usable boundary is cut mid-token.
//
// Deterministic: identical input always yields identical chunks.
func Chunk(text string, size, overlap int) []string {
	if size < 1 {
		return nil
	}
	if overlap < 0 || overlap >= size {
		overlap = 0
	}

	text = strings.TrimSpace(text)
	if text == "" {
		return nil
	}
	if len(text) <= size {
		return []string{text}
	}

	var chunks []string
	for len(text) > size {
		cut := splitPoint(text, size)
		chunk := strings.TrimSpace(text[:cut])
		if chunk != "" {
			chunks = append(chunks, chunk)
		}

		next := cut - overlap
		if next < 1 {
			next = cut
		}
		text = strings.TrimLeft(text[next:], " \n")
	}
	if rest := strings.TrimSpace(text); rest != "" {
		chunks = append(chunks, rest)
	}
	return chunks
}

// splitPoint finds the rightmost separator boundary within limit bytes,
// falling back to a hard cut when no separator exists.
func splitPoint(text string, limit int) int {
	for _, sep := range chunkSeparators {
		if idx := strings.LastIndex(text[:limit], sep); idx > 0 {
			return idx + len(sep)
		}
	}
	return limit
}
