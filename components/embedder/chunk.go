package embedder

import (
	"bytes"
	"sort"
	"strings"

	"github.com/clipperhouse/uax29/sentences"
	"github.com/google/uuid"
)

// Embedding is an information dense vector representation of a piece of text.
// The distance between two embeddings is correlated with the semantic similarity of their texts.
type Embedding struct {
	Object    string            `json:"object"`
	Embedding []float64         `json:"embedding"`
	Index     int               `json:"index"`
	Meta      map[string]string `json:"meta,omitempty"`
}

// UUID returns a deterministic id derived from the text and metadata, so re-indexing
// the same chunk overwrites instead of duplicating.
func (e Embedding) UUID() string {
	sb := new(bytes.Buffer)
	sb.WriteString(e.Object)
	keys := make([]string, 0, len(e.Meta))
	for k := range e.Meta {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		sb.WriteString(k + ":" + e.Meta[k])
		sb.WriteByte('\n')
	}
	return uuid.NewSHA1(uuid.NameSpaceOID, sb.Bytes()).String()
}

// EmbeddedChunk represents a chunk of text along with its vector embedding
type EmbeddedChunk struct {
	Embedding
	// Chunk is the original chunk content that was embedded
	Chunk *Chunk `json:"text"`
}

// Chunk represents a piece of text with associated metadata for tracking its position
// and size within the original document.
type Chunk struct {
	// Text contains the actual content of the chunk
	Text string
	// TokenSize represents the number of tokens in this chunk
	TokenSize int
	// StartSentence is the index of the first sentence in this chunk
	StartSentence int
	// EndSentence is the index of the last sentence in this chunk (exclusive)
	EndSentence int
}

// Chunker defines the interface for text chunking implementations.
type Chunker interface {
	// Chunk splits the input text into a slice of Chunks according to the
	// implementation's strategy.
	Chunk(text string) []Chunk
}

// SentenceSplitter splits text into sentences on Unicode sentence boundaries (UAX #29).
// Empty sentences are dropped and surrounding whitespace trimmed.
func SentenceSplitter(text string) []string {
	segments := sentences.SegmentAll([]byte(text))
	ret := make([]string, 0, len(segments))
	for _, seg := range segments {
		if s := strings.TrimSpace(string(seg)); s != "" {
			ret = append(ret, s)
		}
	}
	return ret
}

// TextChunker packs whole sentences into chunks of at most ChunkSize tokens, starting each
// new chunk with enough trailing sentences of the previous one to cover ChunkOverlap tokens.
// A single sentence longer than ChunkSize becomes its own chunk.
type TextChunker struct {
	// ChunkSize is the target size of each chunk in tokens
	ChunkSize int
	// ChunkOverlap is the number of tokens that should overlap between adjacent chunks
	ChunkOverlap int
	// TokenCounter is used to count tokens in text segments
	TokenCounter TokenCounter
	// SentenceSplitter is a function that splits text into sentences
	SentenceSplitter func(string) []string
}

var _ Chunker = (*TextChunker)(nil)

// TextChunkerOption is a function type for configuring TextChunker instances.
type TextChunkerOption func(*TextChunker)

func WithChunkSize(size int) TextChunkerOption {
	return func(tc *TextChunker) {
		tc.ChunkSize = size
	}
}

func WithChunkOverlap(overlap int) TextChunkerOption {
	return func(tc *TextChunker) {
		tc.ChunkOverlap = overlap
	}
}

func WithTokenCounter(counter TokenCounter) TextChunkerOption {
	return func(tc *TextChunker) {
		tc.TokenCounter = counter
	}
}

func WithSentenceSplitter(fn func(string) []string) TextChunkerOption {
	return func(tc *TextChunker) {
		tc.SentenceSplitter = fn
	}
}

// NewTextChunker creates a new TextChunker with the given options.
// Defaults: 500 tokens per chunk, 20 tokens overlap, word counting, UAX #29 sentences.
func NewTextChunker(options ...TextChunkerOption) *TextChunker {
	tc := &TextChunker{
		ChunkSize:        500,
		ChunkOverlap:     20,
		TokenCounter:     WordCounter{},
		SentenceSplitter: SentenceSplitter,
	}
	for _, option := range options {
		option(tc)
	}
	return tc
}

// Chunk splits the input text into chunks while preserving sentence boundaries
// and maintaining the specified overlap between chunks.
func (tc *TextChunker) Chunk(text string) []Chunk {
	sents := tc.SentenceSplitter(text)
	counts := make([]int, len(sents))
	for i, s := range sents {
		counts[i] = tc.TokenCounter.Count(s)
	}
	var (
		chunks []Chunk
		start  int
		tokens int
	)
	flush := func(end int) {
		chunks = append(chunks, Chunk{
			Text:          strings.Join(sents[start:end], " "),
			TokenSize:     tokens,
			StartSentence: start,
			EndSentence:   end,
		})
	}
	for i := range sents {
		if tokens > 0 && tokens+counts[i] > tc.ChunkSize {
			flush(i)
			// walk back from the end of the flushed chunk until the overlap is covered,
			// never reusing the whole chunk so the window always advances
			next := i
			overlap := 0
			for next > start+1 && overlap < tc.ChunkOverlap {
				if overlap+counts[next-1]+counts[i] > tc.ChunkSize {
					break
				}
				next--
				overlap += counts[next]
			}
			start = next
			tokens = overlap
		}
		tokens += counts[i]
	}
	if tokens > 0 {
		flush(len(sents))
	}
	return chunks
}
