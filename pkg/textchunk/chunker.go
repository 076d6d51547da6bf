package textchunk

import (
	"regexp"
	"strings"
)

const (
	DefaultChunkSize    = 1000
	DefaultChunkOverlap = 200
)

var (
	whitespaceRe = regexp.MustCompile(`\s+`)
	// Everything outside word characters, whitespace and common punctuation
	// is noise from PDF extraction (ligatures, control bytes, bullets).
	specialCharsRe = regexp.MustCompile(`[^\w\s.,!?;:()\-'"]+`)
)

// Chunk is a bounded substring of a document's cleaned text, the unit of
// retrieval. StartChar/EndChar are offsets into the cleaned text.
type Chunk struct {
	Text      string
	Index     int
	StartChar int
	EndChar   int
}

// Chunker splits cleaned text into overlapping, sentence-aware chunks.
type Chunker struct {
	chunkSize    int
	chunkOverlap int
}

func NewChunker(chunkSize, chunkOverlap int) *Chunker {
	if chunkSize <= 0 {
		chunkSize = DefaultChunkSize
	}
	if chunkOverlap < 0 || chunkOverlap >= chunkSize {
		chunkOverlap = DefaultChunkOverlap
		if chunkOverlap >= chunkSize {
			chunkOverlap = chunkSize / 2
		}
	}
	return &Chunker{
		chunkSize:    chunkSize,
		chunkOverlap: chunkOverlap,
	}
}

// Clean collapses whitespace runs to single spaces and strips characters
// outside the whitelist. Run this before Chunk so offsets stay stable.
func (c *Chunker) Clean(text string) string {
	text = whitespaceRe.ReplaceAllString(text, " ")
	text = specialCharsRe.ReplaceAllString(text, "")
	return strings.TrimSpace(text)
}

// Chunk splits cleaned text into chunks of at most chunkSize characters,
// preferring to end each chunk just past the rightmost sentence terminator
// inside the window. Consecutive chunks overlap by chunkOverlap characters.
// The sequence is deterministic and always terminates: when the overlap
// step would move the window backwards to or before zero, the next chunk
// starts where the previous one ended.
func (c *Chunker) Chunk(text string) []Chunk {
	var chunks []Chunk
	textLength := len(text)
	start := 0
	index := 0

	for start < textLength {
		end := start + c.chunkSize

		if end < textLength {
			if sentenceEnd := lastSentenceEnd(text, start, end); sentenceEnd > start {
				end = sentenceEnd + 1
			}
		} else {
			end = textLength
		}

		if trimmed := strings.TrimSpace(text[start:end]); trimmed != "" {
			chunks = append(chunks, Chunk{
				Text:      trimmed,
				Index:     index,
				StartChar: start,
				EndChar:   end,
			})
			index++
		}

		// Overlap step. A window that would not move forward (sentence
		// alignment can shrink end below start+overlap) skips the overlap
		// entirely, guaranteeing termination.
		next := end - c.chunkOverlap
		if next <= start {
			next = end
		}
		start = next
	}

	return chunks
}

// lastSentenceEnd returns the offset of the rightmost '.', '!' or '?'
// in text[start:end), or -1 if none exists.
func lastSentenceEnd(text string, start, end int) int {
	for i := end - 1; i >= start; i-- {
		switch text[i] {
		case '.', '!', '?':
			return i
		}
	}
	return -1
}
