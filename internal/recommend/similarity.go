package recommend

import (
	"fmt"
	"math"
	"sort"
)

// Index is an immutable all-pairs cosine-similarity matrix over hotel
// documents, addressable by row or by hotel name.
type Index struct {
	docs   []HotelDocument
	scores [][]float64
	byName map[string]int
}

// Neighbor is one ranked entry returned by Index.Neighbors.
type Neighbor struct {
	Row      int
	Document HotelDocument
	Score    float64
}

// BuildIndex computes the cosine similarity of every pair of rows in m. Row i
// of m must belong to docs[i].
func BuildIndex(m *DocumentTermMatrix, docs []HotelDocument) (*Index, error) {
	if len(m.Rows) != len(docs) {
		return nil, fmt.Errorf("matrix has %d rows for %d documents", len(m.Rows), len(docs))
	}

	n := len(docs)
	byName := make(map[string]int, n)
	for i, doc := range docs {
		if prev, dup := byName[doc.HotelName]; dup {
			return nil, fmt.Errorf("hotel %q appears at rows %d and %d", doc.HotelName, prev, i)
		}
		byName[doc.HotelName] = i
	}

	norms := make([]float64, n)
	for i, row := range m.Rows {
		norms[i] = math.Sqrt(dot(row, row))
	}

	scores := make([][]float64, n)
	for i := range scores {
		scores[i] = make([]float64, n)
	}
	for i := 0; i < n; i++ {
		if norms[i] > 0 {
			scores[i][i] = 1
		}
		for j := i + 1; j < n; j++ {
			s := cosine(m.Rows[i], m.Rows[j], norms[i], norms[j])
			scores[i][j] = s
			scores[j][i] = s
		}
	}

	return &Index{docs: docs, scores: scores, byName: byName}, nil
}

func emptyIndex() *Index {
	return &Index{byName: map[string]int{}}
}

func cosine(a, b SparseVector, normA, normB float64) float64 {
	if normA == 0 || normB == 0 {
		return 0
	}
	s := dot(a, b) / (normA * normB)
	// rounding can push normalised products slightly outside [0,1]
	return math.Max(0, math.Min(1, s))
}

// dot merges two column-sorted rows.
func dot(a, b SparseVector) float64 {
	var sum float64
	i, j := 0, 0
	for i < len(a) && j < len(b) {
		switch {
		case a[i].Col < b[j].Col:
			i++
		case a[i].Col > b[j].Col:
			j++
		default:
			sum += a[i].Weight * b[j].Weight
			i++
			j++
		}
	}
	return sum
}

func (ix *Index) Len() int {
	return len(ix.docs)
}

func (ix *Index) Lookup(hotelName string) (int, bool) {
	i, ok := ix.byName[hotelName]
	return i, ok
}

func (ix *Index) Document(row int) HotelDocument {
	return ix.docs[row]
}

// Score returns the similarity between rows i and j.
func (ix *Index) Score(i, j int) float64 {
	return ix.scores[i][j]
}

// Neighbors ranks every other hotel by descending similarity to hotelName and
// returns at most topN of them. Equal scores keep row order. The queried hotel
// is excluded by row, so a tie with its own score never hides another hotel.
func (ix *Index) Neighbors(hotelName string, topN int) []Neighbor {
	self, ok := ix.byName[hotelName]
	if !ok || topN <= 0 {
		return nil
	}

	candidates := make([]Neighbor, 0, len(ix.docs)-1)
	for j, doc := range ix.docs {
		if j == self {
			continue
		}
		candidates = append(candidates, Neighbor{Row: j, Document: doc, Score: ix.scores[self][j]})
	}
	sort.SliceStable(candidates, func(a, b int) bool {
		return candidates[a].Score > candidates[b].Score
	})

	if len(candidates) > topN {
		candidates = candidates[:topN]
	}
	return candidates
}
