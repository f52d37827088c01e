package lexical

import (
	"errors"
	"math"

	"github.com/clipsense/retrieval/internal/core/domain"
	"github.com/clipsense/retrieval/internal/index/rank"
)

// Okapi BM25 parameters. Document frequency is computed across the
// chunks of one transcript only, never across documents.
const (
	bm25K1      = 1.5
	bm25B       = 0.75
	bm25Epsilon = 0.25
)

// Index is an in-memory BM25 ranking structure over one chunk set.
type Index struct {
	termFreqs []map[string]float64
	docLens   []float64
	avgDocLen float64
	idf       map[string]float64
}

// Build tokenizes every chunk and precomputes term statistics.
func Build(chunks []domain.Chunk) *Index {
	ix := &Index{
		termFreqs: make([]map[string]float64, len(chunks)),
		docLens:   make([]float64, len(chunks)),
		idf:       make(map[string]float64),
	}

	docFreq := make(map[string]int)
	var totalLen float64
	for i, chunk := range chunks {
		tokens := Tokenize(chunk.Text)
		tf := make(map[string]float64, len(tokens))
		for _, token := range tokens {
			tf[token]++
		}
		for token := range tf {
			docFreq[token]++
		}
		ix.termFreqs[i] = tf
		ix.docLens[i] = float64(len(tokens))
		totalLen += float64(len(tokens))
	}
	if len(chunks) > 0 {
		ix.avgDocLen = totalLen / float64(len(chunks))
	}

	// Terms appearing in more than half the chunks get a negative raw
	// idf; those are floored to a fraction of the average idf so they
	// still contribute a small positive weight.
	n := float64(len(chunks))
	var idfSum float64
	var negative []string
	for token, df := range docFreq {
		idf := math.Log((n - float64(df) + 0.5) / (float64(df) + 0.5))
		ix.idf[token] = idf
		idfSum += idf
		if idf < 0 {
			negative = append(negative, token)
		}
	}
	if len(docFreq) > 0 {
		floor := bm25Epsilon * idfSum / float64(len(docFreq))
		if floor < 0 {
			floor = 0
		}
		for _, token := range negative {
			ix.idf[token] = floor
		}
	}

	return ix
}

// Scores returns one BM25 score per chunk, in chunk order.
func (ix *Index) Scores(query string) []float64 {
	queryTokens := Tokenize(query)
	scores := make([]float64, len(ix.termFreqs))
	for i, tf := range ix.termFreqs {
		norm := bm25K1 * (1 - bm25B + bm25B*ix.docLens[i]/ix.safeAvgDocLen())
		var score float64
		for _, token := range queryTokens {
			freq := tf[token]
			if freq == 0 {
				continue
			}
			score += ix.idf[token] * freq * (bm25K1 + 1) / (freq + norm)
		}
		scores[i] = score
	}
	return scores
}

func (ix *Index) safeAvgDocLen() float64 {
	if ix.avgDocLen == 0 {
		return 1
	}
	return ix.avgDocLen
}

// Ranker adapts the BM25 index to the retrieval controller: build,
// score, select top-k, concatenate.
type Ranker struct{}

func NewRanker() *Ranker {
	return &Ranker{}
}

func (r *Ranker) Rank(set domain.ChunkSet, question string, topK int) (string, error) {
	if set.Empty() {
		return "", domain.WrapError(domain.ErrBackendUnavailable, "lexical rank", errors.New("empty chunk set"))
	}
	ix := Build(set.Chunks)
	scores := ix.Scores(question)
	return rank.TopKContext(set.Chunks, scores, topK), nil
}
