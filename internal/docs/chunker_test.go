package docs

import (
	"strings"
	"testing"
)

func TestChunk(t *testing.T) {
	t.Run("short text is one chunk", func(t *testing.T) {
		got := Chunk("hello world", 100, 10)
		if len(got) != 1 || got[0] != "hello world" {
			t.Errorf("Chunk() = %v", got)
		}
	})

	t.Run("empty text yields no chunks", func(t *testing.T) {
		if got := Chunk("   \n ", 100, 10); got != nil {
			t.Errorf("Chunk() = %v, want nil", got)
		}
	})

	t.Run("prefers paragraph boundaries", func(t *testing.T) {
		text := strings.Repeat("a", 40) + "\n\n" + strings.Repeat("b", 40)
		got := Chunk(text, 50, 0)
		if len(got) != 2 {
			t.Fatalf("Chunk() = %d chunks, want 2: %v", len(got), got)
		}
		if strings.Contains(got[0], "b") || strings.Contains(got[1], "a") {
			t.Errorf("split did not respect the paragraph boundary: %v", got)
		}
	})

	t.Run("respects max size", func(t *testing.T) {
		text := strings.Repeat("word ", 200)
		for _, c := range Chunk(text, 64, 8) {
			if len(c) > 64 {
				t.Errorf("chunk exceeds size: %d bytes", len(c))
			}
		}
	})

	t.Run("hard cut without separators", func(t *testing.T) {
		text := strings.Repeat("x", 100)
		got := Chunk(text, 40, 0)
		if len(got) != 3 {
			t.Fatalf("Chunk() = %d chunks, want 3", len(got))
		}
	})

	t.Run("deterministic", func(t *testing.T) {
		text := strings.Repeat("alpha beta gamma delta. ", 50)
		a := Chunk(text, 80, 10)
		b := Chunk(text, 80, 10)
		if len(a) != len(b) {
			t.Fatalf("chunk counts differ: %d vs %d", len(a), len(b))
		}
		for i := range a {
			if a[i] != b[i] {
				t.Errorf("chunk %d differs", i)
			}
		}
	})

	t.Run("invalid size yields nil", func(t *testing.T) {
		if got := Chunk("text", 0, 0); got != nil {
			t.Errorf("Chunk() = %v, want nil", got)
		}
	})
}
