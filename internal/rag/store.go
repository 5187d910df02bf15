package rag

import (
	"context"
	"errors"
	"math"
	"sort"
	"strings"
	"sync"

	"github.com/medbookai/medbook/pkg/logging"
)

// Document is one knowledge source to ingest.
type Document struct {
	Source  string
	Content string
}

// Embedder converts texts to vectors. Implementations wrap a provider API.
type Embedder interface {
	Embed(ctx context.Context, texts []string) ([][]float32, error)
}

// Options tunes retrieval.
type Options struct {
	ChunkSize    int
	ChunkOverlap int
	TopK         int
	MinRelevance float64
}

func (o Options) withDefaults() Options {
	if o.ChunkSize <= 0 {
		o.ChunkSize = DefaultChunkSize
	}
	if o.ChunkOverlap <= 0 {
		o.ChunkOverlap = DefaultChunkOverlap
	}
	if o.TopK <= 0 {
		o.TopK = 8
	}
	if o.MinRelevance <= 0 {
		o.MinRelevance = 0.25
	}
	return o
}

type storedChunk struct {
	source    string
	content   string
	embedding []float32
}

// MemoryStore keeps chunk embeddings in memory and answers queries by cosine
// similarity. It implements the chat service's Retriever interface.
type MemoryStore struct {
	embedder Embedder
	logger   *logging.Logger
	opts     Options

	mu     sync.RWMutex
	chunks []storedChunk
}

// NewMemoryStore creates an in-memory retrieval store.
func NewMemoryStore(embedder Embedder, logger *logging.Logger, opts Options) *MemoryStore {
	if embedder == nil {
		panic("rag: embedder cannot be nil")
	}
	if logger == nil {
		logger = logging.Default()
	}
	return &MemoryStore{
		embedder: embedder,
		logger:   logger,
		opts:     opts.withDefaults(),
	}
}

// AddDocuments chunks, embeds, and stores the given documents.
func (s *MemoryStore) AddDocuments(ctx context.Context, docs []Document) error {
	var texts []string
	var sources []string
	for _, doc := range docs {
		for _, chunk := range Chunk(doc.Content, s.opts.ChunkSize, s.opts.ChunkOverlap) {
			texts = append(texts, chunk)
			sources = append(sources, doc.Source)
		}
	}
	if len(texts) == 0 {
		return nil
	}

	embeddings, err := s.embedder.Embed(ctx, texts)
	if err != nil {
		return err
	}
	if len(embeddings) != len(texts) {
		return errors.New("rag: embedding response size mismatch")
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	for i, text := range texts {
		s.chunks = append(s.chunks, storedChunk{
			source:    sources[i],
			content:   text,
			embedding: embeddings[i],
		})
	}
	s.logger.Info("knowledge ingested", "chunks", len(texts), "documents", len(docs))
	return nil
}

// Query embeds the question and returns the joined top-k chunks above the
// relevance gate, with their deduplicated source names. An empty context
// with nil error means nothing relevant was found.
func (s *MemoryStore) Query(ctx context.Context, question string) (string, []string, error) {
	embeddings, err := s.embedder.Embed(ctx, []string{question})
	if err != nil {
		return "", nil, err
	}
	if len(embeddings) == 0 {
		return "", nil, nil
	}
	queryVec := embeddings[0]

	s.mu.RLock()
	defer s.mu.RUnlock()
	if len(s.chunks) == 0 {
		return "", nil, nil
	}

	type scored struct {
		score float64
		chunk storedChunk
	}
	results := make([]scored, 0, len(s.chunks))
	for _, chunk := range s.chunks {
		score := cosineSimilarity(queryVec, chunk.embedding)
		if score < s.opts.MinRelevance {
			continue
		}
		results = append(results, scored{score: score, chunk: chunk})
	}
	if len(results) == 0 {
		return "", nil, nil
	}

	sort.Slice(results, func(i, j int) bool {
		return results[i].score > results[j].score
	})
	if len(results) > s.opts.TopK {
		results = results[:s.opts.TopK]
	}

	var parts []string
	var sources []string
	seen := make(map[string]bool)
	for _, r := range results {
		parts = append(parts, r.chunk.content)
		if r.chunk.source != "" && !seen[r.chunk.source] {
			seen[r.chunk.source] = true
			sources = append(sources, r.chunk.source)
		}
	}
	return strings.Join(parts, "\n\n---\n\n"), sources, nil
}

// Len reports how many chunks are stored.
func (s *MemoryStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.chunks)
}

func cosineSimilarity(a, b []float32) float64 {
	if len(a) == 0 || len(a) != len(b) {
		return 0
	}
	var dot float64
	var normA float64
	var normB float64
	for i := range a {
		dot += float64(a[i] * b[i])
		normA += float64(a[i] * a[i])
		normB += float64(b[i] * b[i])
	}
	if normA == 0 || normB == 0 {
		return 0
	}
	return dot / (math.Sqrt(normA) * math.Sqrt(normB))
}
