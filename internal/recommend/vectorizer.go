package recommend

import (
	"errors"
	"fmt"
	"math"
	"sort"
	"strings"
	"unicode"
	"unicode/utf8"
)

// ErrInsufficientData means the corpus is too small or too uniform to produce
// a vocabulary. Callers treat it as "no recommendations", not a failure.
var ErrInsufficientData = errors.New("insufficient data to build similarity index")

type VectorizerOptions struct {
	// MinDF is the minimum number of documents a term must appear in.
	MinDF int
	// MaxDFRatio drops terms that appear in more than this share of documents.
	MaxDFRatio float64
	NGramMin   int
	NGramMax   int
}

func DefaultVectorizerOptions() VectorizerOptions {
	return VectorizerOptions{
		MinDF:      2,
		MaxDFRatio: 0.8,
		NGramMin:   1,
		NGramMax:   2,
	}
}

// Entry is one non-zero cell of a document row.
type Entry struct {
	Col    int
	Weight float64
}

// SparseVector holds the non-zero cells of a row in ascending column order, so
// every sum over it runs in the same order and builds are reproducible.
type SparseVector []Entry

// DocumentTermMatrix holds one L2-normalised TF-IDF row per document, in the
// order the documents were given to Fit.
type DocumentTermMatrix struct {
	Terms []string
	IDF   []float64
	Rows  []SparseVector
}

// Fit builds the vocabulary and the weighted document-term matrix.
func Fit(docs []HotelDocument, opts VectorizerOptions) (*DocumentTermMatrix, error) {
	n := len(docs)
	if n < 2 {
		return nil, fmt.Errorf("%w: %d document(s), need at least 2", ErrInsufficientData, n)
	}

	maxDocCount := opts.MaxDFRatio * float64(n)
	if maxDocCount < float64(opts.MinDF) {
		return nil, fmt.Errorf("%w: max_df allows %.1f documents, fewer than min_df %d", ErrInsufficientData, maxDocCount, opts.MinDF)
	}

	counts := make([]map[string]int, n)
	df := make(map[string]int)
	for i, doc := range docs {
		counts[i] = make(map[string]int)
		for _, term := range NGrams(Tokenize(doc.Text), opts.NGramMin, opts.NGramMax) {
			if counts[i][term] == 0 {
				df[term]++
			}
			counts[i][term]++
		}
	}

	terms := make([]string, 0, len(df))
	for term, d := range df {
		if d >= opts.MinDF && float64(d) <= maxDocCount {
			terms = append(terms, term)
		}
	}
	if len(terms) == 0 {
		return nil, fmt.Errorf("%w: no terms remain after document-frequency pruning", ErrInsufficientData)
	}
	sort.Strings(terms)

	column := make(map[string]int, len(terms))
	idf := make([]float64, len(terms))
	for j, term := range terms {
		column[term] = j
		// smoothed idf: one extra document containing every term
		idf[j] = math.Log(float64(1+n)/float64(1+df[term])) + 1
	}

	rows := make([]SparseVector, n)
	for i := range docs {
		var row SparseVector
		for term, c := range counts[i] {
			if j, ok := column[term]; ok {
				row = append(row, Entry{Col: j, Weight: float64(c) * idf[j]})
			}
		}
		sort.Slice(row, func(a, b int) bool { return row[a].Col < row[b].Col })

		if norm := math.Sqrt(dot(row, row)); norm > 0 {
			for k := range row {
				row[k].Weight /= norm
			}
		}
		rows[i] = row
	}

	return &DocumentTermMatrix{Terms: terms, IDF: idf, Rows: rows}, nil
}

// Tokenize lowercases text and returns every run of two or more word
// characters (letters, numbers, underscore).
func Tokenize(text string) []string {
	text = strings.ToLower(text)

	var tokens []string
	start := -1
	flush := func(end int) {
		if start >= 0 && utf8.RuneCountInString(text[start:end]) >= 2 {
			tokens = append(tokens, text[start:end])
		}
		start = -1
	}

	for i, r := range text {
		if isWordRune(r) {
			if start < 0 {
				start = i
			}
			continue
		}
		flush(i)
	}
	flush(len(text))
	return tokens
}

// isWordRune mirrors \w on str patterns: alphanumerics in the letter and
// number categories plus underscore. Combining marks are not word characters.
func isWordRune(r rune) bool {
	return r == '_' || unicode.IsLetter(r) || unicode.IsNumber(r)
}

// NGrams returns all n-grams of tokens for n in [min, max], unigrams first,
// with the words of each n-gram joined by a single space.
func NGrams(tokens []string, min, max int) []string {
	if min < 1 {
		min = 1
	}
	var grams []string
	for n := min; n <= max; n++ {
		if n == 1 {
			grams = append(grams, tokens...)
			continue
		}
		for i := 0; i+n <= len(tokens); i++ {
			grams = append(grams, strings.Join(tokens[i:i+n], " "))
		}
	}
	return grams
}
