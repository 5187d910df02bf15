package rag

import (
	"strings"
	"testing"
)

func TestChunkShortTextIsSingleChunk(t *testing.T) {
	chunks := Chunk("short text", 100, 20)
	if len(chunks) != 1 || chunks[0] != "short text" {
		t.Fatalf("Chunk() = %v, want single chunk", chunks)
	}
}

func TestChunkEmptyText(t *testing.T) {
	if chunks := Chunk("   ", 100, 20); chunks != nil {
		t.Fatalf("Chunk(blank) = %v, want nil", chunks)
	}
}

func TestChunkRespectsSize(t *testing.T) {
	text := strings.Repeat("word ", 500)
	chunks := Chunk(text, 100, 20)
	if len(chunks) < 2 {
		t.Fatalf("expected multiple chunks, got %d", len(chunks))
	}
	for i, chunk := range chunks {
		if len(chunk) > 100 {
			t.Errorf("chunk %d is %d bytes, exceeds size 100", i, len(chunk))
		}
	}
}

func TestChunkPrefersSentenceBoundaries(t *testing.T) {
	text := strings.Repeat("This is a sentence about the clinic. ", 20)
	chunks := Chunk(text, 120, 20)
	for i, chunk := range chunks[:len(chunks)-1] {
		if !strings.HasSuffix(chunk, ".") {
			t.Errorf("chunk %d does not end at a sentence boundary: %q", i, chunk)
		}
	}
}

func TestChunkOverlapCarriesContext(t *testing.T) {
	text := strings.Repeat("alpha beta gamma delta epsilon. ", 30)
	chunks := Chunk(text, 100, 40)
	if len(chunks) < 2 {
		t.Fatalf("expected multiple chunks, got %d", len(chunks))
	}
	// The tail of each chunk should reappear at the head of the next.
	for i := 0; i < len(chunks)-1; i++ {
		tail := chunks[i][len(chunks[i])-10:]
		if !strings.Contains(chunks[i+1], strings.TrimSpace(tail)) {
			t.Errorf("chunk %d tail %q not carried into chunk %d", i, tail, i+1)
		}
	}
}

func TestChunkCoversAllContent(t *testing.T) {
	text := strings.Repeat("coverage check sentence number one. ", 25)
	chunks := Chunk(text, 150, 30)
	joined := strings.Join(chunks, " ")
	for _, word := range []string{"coverage", "check", "sentence"} {
		if !strings.Contains(joined, word) {
			t.Errorf("word %q missing from chunks", word)
		}
	}
}
