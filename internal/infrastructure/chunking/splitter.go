package chunking

import "github.com/clipsense/retrieval/internal/core/domain"

// Trailing windows at or below this many runes are dropped.
const minChunkRunes = 100

type Splitter struct {
	WindowSize int
	Overlap    int
}

func NewSplitter(windowSize, overlap int) *Splitter {
	if windowSize <= 0 {
		windowSize = 1000
	}
	if overlap < 0 {
		overlap = 0
	}
	if overlap >= windowSize {
		overlap = windowSize / 10
	}
	return &Splitter{
		WindowSize: windowSize,
		Overlap:    overlap,
	}
}

// Chunk advances a fixed-size window over the text, keeping offsets in
// runes. A pure function of its inputs: the same text and parameters
// always produce the same chunks.
func (s *Splitter) Chunk(text string) []domain.Chunk {
	runes := []rune(text)
	if len(runes) == 0 {
		return nil
	}

	step := s.WindowSize - s.Overlap
	if step <= 0 {
		step = s.WindowSize
	}

	out := make([]domain.Chunk, 0, len(runes)/step+1)
	for start := 0; start < len(runes); start += step {
		end := start + s.WindowSize
		if end > len(runes) {
			end = len(runes)
		}
		if end-start > minChunkRunes {
			out = append(out, domain.Chunk{
				Text:        string(runes[start:end]),
				StartOffset: start,
				EndOffset:   end,
			})
		}
	}
	return out
}
