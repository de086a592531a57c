package dataset

import (
	"errors"
	"fmt"
	"io"
)

// FaceScore is one row of the hotel face-score file. ImageURL and Price are
// optional overrides; empty values mean "resolve at request time".
type FaceScore struct {
	HotelName string
	FaceScore float64
	FaceEmoji string
	ImageURL  string
	Price     *float64
}

// AspectPivot maps hotel name to aspect name to positive-review ratio.
type AspectPivot struct {
	Aspects []string
	Ratios  map[string]map[string]float64
}

// Row returns every known aspect for hotel, filling absent pairs with 0.
// Hotels that never appear in the summary get an empty map.
func (p *AspectPivot) Row(hotel string) map[string]float64 {
	ratios, ok := p.Ratios[hotel]
	if !ok {
		return map[string]float64{}
	}
	row := make(map[string]float64, len(p.Aspects))
	for _, aspect := range p.Aspects {
		row[aspect] = ratios[aspect]
	}
	return row
}

// Source names the dataset files the service reads.
type Source struct {
	ReviewsFile    string
	FaceScoresFile string
	AspectFile     string
	SubAspectFile  string
}

func LoadFaceScores(path string) ([]FaceScore, error) {
	var rows []FaceScore
	err := openFile(path, func(r io.Reader) error {
		var err error
		rows, err = ReadFaceScores(r)
		return err
	})
	return rows, err
}

func ReadFaceScores(r io.Reader) ([]FaceScore, error) {
	cr := newCSVReader(r)
	h, err := readHeader(cr, ColHotelName)
	if err != nil {
		return nil, err
	}

	var rows []FaceScore
	for {
		record, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read face score row: %w", err)
		}

		name := h.get(record, ColHotelName)
		if name == "" {
			continue
		}

		row := FaceScore{
			HotelName: name,
			FaceEmoji: h.get(record, "face_emoji"),
			ImageURL:  h.get(record, "image_url"),
		}
		if h.has("face_score") {
			score, err := parseOptionalFloat(h.get(record, "face_score"))
			if err != nil {
				return nil, fmt.Errorf("hotel %q: invalid face_score: %w", name, err)
			}
			if score != nil {
				row.FaceScore = *score
			}
		}
		if h.has("price") {
			price, err := parseOptionalFloat(h.get(record, "price"))
			if err != nil {
				return nil, fmt.Errorf("hotel %q: invalid price: %w", name, err)
			}
			if price != nil && *price != 0 {
				row.Price = price
			}
		}
		rows = append(rows, row)
	}
	return rows, nil
}

func LoadAspectSummary(path string) (*AspectPivot, error) {
	var pivot *AspectPivot
	err := openFile(path, func(r io.Reader) error {
		var err error
		pivot, err = ReadAspectSummary(r)
		return err
	})
	return pivot, err
}

// ReadAspectSummary pivots long-format (hotel_name, aspect, pos_ratio) rows.
// A repeated (hotel, aspect) pair is an error, as a pivot cannot hold both.
func ReadAspectSummary(r io.Reader) (*AspectPivot, error) {
	cr := newCSVReader(r)
	h, err := readHeader(cr, ColHotelName, "aspect", "pos_ratio")
	if err != nil {
		return nil, err
	}

	pivot := &AspectPivot{Ratios: make(map[string]map[string]float64)}
	seen := make(map[string]bool)
	for {
		record, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read aspect row: %w", err)
		}

		name, aspect := h.get(record, ColHotelName), h.get(record, "aspect")
		if name == "" || aspect == "" {
			continue
		}
		ratio, err := parseOptionalFloat(h.get(record, "pos_ratio"))
		if err != nil {
			return nil, fmt.Errorf("hotel %q aspect %q: invalid pos_ratio: %w", name, aspect, err)
		}

		if !seen[aspect] {
			seen[aspect] = true
			pivot.Aspects = append(pivot.Aspects, aspect)
		}
		row, ok := pivot.Ratios[name]
		if !ok {
			row = make(map[string]float64)
			pivot.Ratios[name] = row
		}
		if _, dup := row[aspect]; dup {
			return nil, fmt.Errorf("duplicate entry for hotel %q aspect %q", name, aspect)
		}
		if ratio != nil {
			row[aspect] = *ratio
		} else {
			row[aspect] = 0
		}
	}
	return pivot, nil
}
