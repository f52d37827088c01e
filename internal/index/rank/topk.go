package rank

import (
	"sort"
	"strings"

	"github.com/clipsense/retrieval/internal/core/domain"
)

// TopKContext selects the k highest-scoring chunks and joins their
// texts with a blank line, highest score first. Ties keep the original
// chunk order so retrieval stays reproducible for identical inputs;
// the sort is explicitly stable for that reason.
func TopKContext(chunks []domain.Chunk, scores []float64, k int) string {
	if len(chunks) == 0 || len(scores) != len(chunks) {
		return ""
	}
	if k <= 0 {
		k = 3
	}
	if k > len(chunks) {
		k = len(chunks)
	}

	order := make([]int, len(chunks))
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(i, j int) bool {
		if scores[order[i]] != scores[order[j]] {
			return scores[order[i]] > scores[order[j]]
		}
		return order[i] < order[j]
	})

	var b strings.Builder
	for i := 0; i < k; i++ {
		if i > 0 {
			b.WriteString("\n\n")
		}
		b.WriteString(chunks[order[i]].Text)
	}
	return b.String()
}
