// Package recommend builds a TF-IDF similarity index over per-hotel review
// text and answers nearest-neighbour queries against it.
package recommend

import (
	"sort"
	"strings"

	"hotel-recommender/internal/dataset"
)

// HotelDocument is the concatenated review text of one hotel.
type HotelDocument struct {
	HotelName string
	Text      string
	Rating    *float64
}

// Aggregate groups reviews into one document per hotel. Rows without a hotel
// name or review text are dropped before grouping, and the rating mean is taken
// over the same surviving rows. Documents are returned sorted by hotel name.
func Aggregate(reviews []dataset.Review) []HotelDocument {
	type group struct {
		texts []string
		sum   float64
		rated int
	}

	groups := make(map[string]*group)
	for _, r := range reviews {
		if r.HotelName == "" || r.Text == "" {
			continue
		}
		g, ok := groups[r.HotelName]
		if !ok {
			g = &group{}
			groups[r.HotelName] = g
		}
		g.texts = append(g.texts, r.Text)
		if r.Rating != nil {
			g.sum += *r.Rating
			g.rated++
		}
	}

	docs := make([]HotelDocument, 0, len(groups))
	for name, g := range groups {
		doc := HotelDocument{
			HotelName: name,
			Text:      strings.Join(g.texts, " "),
		}
		if g.rated > 0 {
			mean := g.sum / float64(g.rated)
			doc.Rating = &mean
		}
		docs = append(docs, doc)
	}
	sort.Slice(docs, func(i, j int) bool { return docs[i].HotelName < docs[j].HotelName })
	return docs
}
