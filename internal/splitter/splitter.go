package splitter

import (
	"strings"

	"github.com/soalgen/soalgen/internal/model"
)

// Splitter cuts text into fixed-size character windows with overlap so
// sentences spanning a boundary still appear whole in one of the chunks.
type Splitter struct {
	chunkSize    int
	chunkOverlap int
}

func New(chunkSize, chunkOverlap int) *Splitter {
	if chunkSize <= 0 {
		chunkSize = 800
	}
	if chunkOverlap < 0 || chunkOverlap >= chunkSize {
		chunkOverlap = 80
	}
	return &Splitter{chunkSize: chunkSize, chunkOverlap: chunkOverlap}
}

// Split returns the overlapping windows of text, skipping whitespace-only
// windows. Offsets are in runes so multi-byte scripts do not get cut
// mid-character.
func (s *Splitter) Split(text string) []string {
	runes := []rune(text)
	if len(strings.TrimSpace(text)) == 0 {
		return nil
	}
	step := s.chunkSize - s.chunkOverlap
	var chunks []string
	for start := 0; start < len(runes); start += step {
		end := start + s.chunkSize
		if end > len(runes) {
			end = len(runes)
		}
		piece := strings.TrimSpace(string(runes[start:end]))
		if piece != "" {
			chunks = append(chunks, piece)
		}
		if end == len(runes) {
			break
		}
	}
	return chunks
}

// Page is one unit of source text with an optional page number, as
// produced by document extraction.
type Page struct {
	Number *int
	Text   string
}

// SplitPages splits every page and tags the resulting chunks with the
// source name and page number. Ids and sequence numbers are left for the
// caller to assign.
func (s *Splitter) SplitPages(source string, pages []Page) []model.DocumentChunk {
	var chunks []model.DocumentChunk
	for _, page := range pages {
		for _, piece := range s.Split(page.Text) {
			chunks = append(chunks, model.DocumentChunk{
				Text:   piece,
				Source: source,
				Page:   page.Number,
			})
		}
	}
	return chunks
}
