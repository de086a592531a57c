package recommend

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func corpus() []HotelDocument {
	return []HotelDocument{
		{HotelName: "Alpine Lodge", Text: "clean room friendly staff great breakfast"},
		{HotelName: "Bay Hotel", Text: "clean room friendly staff noisy street"},
		{HotelName: "City Stay", Text: "noisy street small room dirty bathroom"},
		{HotelName: "Dune Resort", Text: "great breakfast pool view friendly staff"},
		{HotelName: "East Inn", Text: "dirty bathroom small room noisy street"},
		{HotelName: "Fjord Cabin", Text: "northern lights"},
	}
}

func buildIndex(t *testing.T, docs []HotelDocument) *Index {
	t.Helper()
	m, err := Fit(docs, DefaultVectorizerOptions())
	require.NoError(t, err)
	ix, err := BuildIndex(m, docs)
	require.NoError(t, err)
	return ix
}

func TestBuildIndex_MatrixProperties(t *testing.T) {
	docs := corpus()
	ix := buildIndex(t, docs)
	require.Equal(t, len(docs), ix.Len())

	for i := 0; i < ix.Len(); i++ {
		for j := 0; j < ix.Len(); j++ {
			s := ix.Score(i, j)
			assert.GreaterOrEqual(t, s, 0.0)
			assert.LessOrEqual(t, s, 1.0)
			assert.Equal(t, s, ix.Score(j, i), "scores must be symmetric at (%d,%d)", i, j)
		}
	}

	for i := 0; i < 5; i++ {
		assert.Equal(t, 1.0, ix.Score(i, i))
	}
	assert.Equal(t, 0.0, ix.Score(5, 5), "a zero vector is not similar to itself")
}

func TestBuildIndex_NameLookup(t *testing.T) {
	ix := buildIndex(t, corpus())

	i, ok := ix.Lookup("City Stay")
	require.True(t, ok)
	assert.Equal(t, "City Stay", ix.Document(i).HotelName)

	_, ok = ix.Lookup("city stay")
	assert.False(t, ok)
}

func TestBuildIndex_RejectsMismatchAndDuplicates(t *testing.T) {
	docs := exampleDocs()
	m, err := Fit(docs, DefaultVectorizerOptions())
	require.NoError(t, err)

	_, err = BuildIndex(m, docs[:2])
	assert.Error(t, err)

	dup := append([]HotelDocument(nil), docs...)
	dup[2].HotelName = "H1"
	_, err = BuildIndex(m, dup)
	assert.Error(t, err)
}

func TestBuildIndex_Idempotent(t *testing.T) {
	a := buildIndex(t, corpus())
	b := buildIndex(t, corpus())
	assert.Equal(t, a.scores, b.scores)
}

func TestNeighbors_ExampleRanking(t *testing.T) {
	ix := buildIndex(t, exampleDocs())

	got := ix.Neighbors("H1", 5)
	require.Len(t, got, 2, "top_n above hotel count minus one is capped")
	assert.Equal(t, "H2", got[0].Document.HotelName)
	assert.Equal(t, "H3", got[1].Document.HotelName)
	assert.Greater(t, got[0].Score, got[1].Score)

	got = ix.Neighbors("H2", 1)
	require.Len(t, got, 1)
	assert.Equal(t, "H1", got[0].Document.HotelName)
}

func TestNeighbors_SortedAndExcludesSelf(t *testing.T) {
	ix := buildIndex(t, corpus())

	got := ix.Neighbors("Bay Hotel", 3)
	require.Len(t, got, 3)
	for i, nb := range got {
		assert.NotEqual(t, "Bay Hotel", nb.Document.HotelName)
		if i > 0 {
			assert.GreaterOrEqual(t, got[i-1].Score, nb.Score)
		}
	}
}

func TestNeighbors_TiesKeepRowOrder(t *testing.T) {
	ix := buildIndex(t, corpus())

	// every score against the zero-vector hotel is 0, so row order decides
	got := ix.Neighbors("Fjord Cabin", 10)
	require.Len(t, got, 5)
	for i, nb := range got {
		assert.Equal(t, i, nb.Row)
		assert.Equal(t, 0.0, nb.Score)
	}
}

func TestNeighbors_IdenticalDocumentsBothReturned(t *testing.T) {
	docs := []HotelDocument{
		{HotelName: "A", Text: "clean room"},
		{HotelName: "B", Text: "clean room"},
		{HotelName: "C", Text: "clean room"},
		{HotelName: "D", Text: "far away"},
		{HotelName: "E", Text: "far away"},
	}
	ix := buildIndex(t, docs)

	// B and C tie with A's own score of 1.0; neither may be dropped
	got := ix.Neighbors("A", 2)
	require.Len(t, got, 2)
	assert.Equal(t, "B", got[0].Document.HotelName)
	assert.Equal(t, "C", got[1].Document.HotelName)
}

func TestNeighbors_UnknownOrEmpty(t *testing.T) {
	ix := buildIndex(t, corpus())
	assert.Empty(t, ix.Neighbors("UnknownHotelXYZ", 5))
	assert.Empty(t, ix.Neighbors("Bay Hotel", 0))
	assert.Empty(t, emptyIndex().Neighbors("Bay Hotel", 5))
}
