// Package chunker splits document text into bounded, optionally overlapping
// pieces suitable for retrieval indexing.
package chunker

import (
	"fmt"
	"iter"
	"strings"
	"unicode"

	"github.com/google/uuid"

	"github.com/custodia-labs/ragline/internal/core/domain"
)

// DefaultMaxChunkSize is the default chunk length in runes.
const DefaultMaxChunkSize = 1000

// DefaultOverlap is the default number of overlapping runes.
const DefaultOverlap = 200

// Splitter cuts text into pieces of at most maxSize runes, preferring
// paragraph and sentence boundaries over hard cuts. Each piece after the
// first begins with the trailing overlap runes of its predecessor, so
// context survives cut points. Removing that duplicated head from every
// non-initial piece and concatenating reconstructs the input exactly.
type Splitter struct {
	maxSize int
	overlap int
}

// New creates a splitter. overlap must be non-negative and smaller than
// maxSize.
func New(maxSize, overlap int) (*Splitter, error) {
	if maxSize <= 0 {
		return nil, fmt.Errorf("%w: max chunk size must be positive, got %d", domain.ErrInvalidConfiguration, maxSize)
	}
	if overlap < 0 || overlap >= maxSize {
		return nil, fmt.Errorf("%w: overlap %d must be in [0, %d)", domain.ErrInvalidConfiguration, overlap, maxSize)
	}
	return &Splitter{maxSize: maxSize, overlap: overlap}, nil
}

// MaxSize returns the configured maximum piece length in runes.
func (s *Splitter) MaxSize() int { return s.maxSize }

// Overlap returns the configured overlap in runes.
func (s *Splitter) Overlap() int { return s.overlap }

// Pieces returns a lazy, restartable sequence over the pieces of text.
// Whitespace-only input yields an empty sequence.
func (s *Splitter) Pieces(text string) iter.Seq[string] {
	return func(yield func(string) bool) {
		if strings.TrimSpace(text) == "" {
			return
		}

		runes := []rune(text)
		n := len(runes)
		boundary := 0 // end of the previous piece

		for boundary < n {
			start := boundary - s.overlap
			if start < 0 {
				start = 0
			}

			if n-start <= s.maxSize {
				yield(string(runes[start:n]))
				return
			}

			// Every interior boundary must sit past the overlap so the
			// next piece can duplicate exactly overlap runes.
			minEnd := boundary + 1
			if minEnd <= s.overlap {
				minEnd = s.overlap + 1
			}
			end := cutPoint(runes, minEnd, start+s.maxSize)
			if !yield(string(runes[start:end])) {
				return
			}
			boundary = end
		}
	}
}

// ChunkDocument materialises the pieces of text as chunks owned by the given
// project and document, with sequential ordinals.
func (s *Splitter) ChunkDocument(projectID, documentID, text string) []domain.Chunk {
	var chunks []domain.Chunk
	ordinal := 0
	for piece := range s.Pieces(text) {
		chunks = append(chunks, domain.Chunk{
			ID:         uuid.New().String(),
			ProjectID:  projectID,
			DocumentID: documentID,
			Ordinal:    ordinal,
			Text:       piece,
		})
		ordinal++
	}
	return chunks
}

// cutPoint picks the best cut in (minEnd-1, limit]: after the last paragraph
// break if one exists, else after the last sentence end, else after the last
// whitespace, else the hard limit.
func cutPoint(runes []rune, minEnd, limit int) int {
	// Paragraph break: a newline followed by another newline.
	for i := limit; i > minEnd; i-- {
		if runes[i-1] == '\n' && i >= 2 && runes[i-2] == '\n' {
			return i
		}
	}

	// Sentence end: terminal punctuation followed by whitespace; cut after
	// the punctuation so the whitespace opens the next piece.
	for i := limit; i > minEnd; i-- {
		if isSentenceEnd(runes[i-1]) && i < len(runes) && unicode.IsSpace(runes[i]) {
			return i
		}
	}

	// Word boundary.
	for i := limit; i > minEnd; i-- {
		if unicode.IsSpace(runes[i-1]) {
			return i
		}
	}

	return limit
}

func isSentenceEnd(r rune) bool {
	switch r {
	case '.', '!', '?', '\n', '؟', '。':
		return true
	default:
		return false
	}
}
