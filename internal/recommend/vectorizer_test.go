package recommend

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// exampleDocs are three hotels where the first two share most of their vocabulary.
func exampleDocs() []HotelDocument {
	return []HotelDocument{
		{HotelName: "H1", Text: "clean room quiet staff"},
		{HotelName: "H2", Text: "clean room noisy staff"},
		{HotelName: "H3", Text: "dirty room far location"},
	}
}

func TestTokenize(t *testing.T) {
	assert.Equal(t,
		[]string{"clean", "room", "b_c", "42", "très", "bien"},
		Tokenize("Clean-room, A b_c 42! Très bien"),
	)
	assert.Empty(t, Tokenize("a b c ! ?"))
}

func TestTokenize_CombiningMarksSplitWords(t *testing.T) {
	// "e" + U+0301 is a decomposed "é"; the mark ends the word.
	assert.Equal(t, []string{"cafe", "ole"}, Tokenize("cafe\u0301 ole\u0301"))
	assert.Equal(t, []string{"²nd", "floor"}, Tokenize("²nd floor"))
}

func TestNGrams(t *testing.T) {
	grams := NGrams([]string{"clean", "room", "staff"}, 1, 2)
	assert.Equal(t, []string{"clean", "room", "staff", "clean room", "room staff"}, grams)
	assert.Empty(t, NGrams(nil, 1, 2))
}

func TestFit_VocabularyBand(t *testing.T) {
	m, err := Fit(exampleDocs(), DefaultVectorizerOptions())
	require.NoError(t, err)

	// "room" is in all three documents, above the 80% ceiling; everything
	// else except these appears in only one document.
	assert.Equal(t, []string{"clean", "clean room", "staff"}, m.Terms)

	wantIDF := math.Log(4.0/3.0) + 1
	for _, idf := range m.IDF {
		assert.InDelta(t, wantIDF, idf, 1e-12)
	}
}

func TestFit_RowsAreNormalised(t *testing.T) {
	m, err := Fit(exampleDocs(), DefaultVectorizerOptions())
	require.NoError(t, err)
	require.Len(t, m.Rows, 3)

	for i, row := range m.Rows[:2] {
		assert.InDelta(t, 1.0, math.Sqrt(dot(row, row)), 1e-12, "row %d", i)
	}
	assert.Empty(t, m.Rows[2], "a document with no vocabulary terms has a zero row")
}

func TestFit_TermCountsWeighted(t *testing.T) {
	docs := []HotelDocument{
		{HotelName: "A", Text: "pool pool pool view"},
		{HotelName: "B", Text: "pool view"},
		{HotelName: "C", Text: "garden"},
	}
	m, err := Fit(docs, DefaultVectorizerOptions())
	require.NoError(t, err)
	require.Equal(t, []string{"pool", "pool view", "view"}, m.Terms)

	// equal idf, so the row is proportional to raw counts 3:1:1
	row := m.Rows[0]
	require.Len(t, row, 3)
	assert.InDelta(t, 3.0, row[0].Weight/row[2].Weight, 1e-12)
	assert.InDelta(t, 1.0, row[1].Weight/row[2].Weight, 1e-12)
}

func TestFit_InsufficientData(t *testing.T) {
	tests := []struct {
		name string
		docs []HotelDocument
	}{
		{name: "no documents"},
		{name: "single document", docs: []HotelDocument{{HotelName: "A", Text: "clean room"}}},
		{name: "two documents cannot satisfy both bounds", docs: []HotelDocument{
			{HotelName: "A", Text: "clean room"},
			{HotelName: "B", Text: "clean room"},
		}},
		{name: "no shared terms", docs: []HotelDocument{
			{HotelName: "A", Text: "alpha"},
			{HotelName: "B", Text: "beta"},
			{HotelName: "C", Text: "gamma"},
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Fit(tt.docs, DefaultVectorizerOptions())
			assert.ErrorIs(t, err, ErrInsufficientData)
		})
	}
}

func TestFit_Deterministic(t *testing.T) {
	a, err := Fit(exampleDocs(), DefaultVectorizerOptions())
	require.NoError(t, err)
	b, err := Fit(exampleDocs(), DefaultVectorizerOptions())
	require.NoError(t, err)
	assert.Equal(t, a, b)
}
