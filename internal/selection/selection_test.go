package selection

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// wrongAnswers fabricates n mislabeled answers for a category by taking the
// first n pool words and assigning a label that cannot match.
func wrongAnswers(cat Category, n int) []Answer {
	words := Pool(cat)
	answers := make([]Answer, 0, n)
	for _, w := range words[:n] {
		answers = append(answers, Answer{Word: w, Label: "wrong"})
	}
	return answers
}

func countByCategory(items []Item) map[Category]int {
	counts := map[Category]int{}
	for _, it := range items {
		counts[it.Category]++
	}
	return counts
}

func TestCountErrors(t *testing.T) {
	answers := []Answer{
		{Word: "tierra", Label: "hiatus"},     // wrong, truth diphthong
		{Word: "puerta", Label: "diphthong"},  // correct
		{Word: "país", Label: "general"},      // wrong, truth hiatus
		{Word: "mesa", Label: "general"},      // correct
		{Word: "inventado", Label: "general"}, // not pooled, ignored
	}

	errs := CountErrors(answers)
	assert.Equal(t, 1, errs[CategoryDiphthong])
	assert.Equal(t, 1, errs[CategoryHiatus])
	assert.Equal(t, 0, errs[CategoryGeneral])
}

func TestNextBatchNoAnswers(t *testing.T) {
	rng := rand.New(rand.NewSource(1))

	batch := NextBatch(nil, rng)
	require.Len(t, batch, BatchSize)
	for _, it := range batch {
		truth, ok := TruthFor(it.Word)
		require.True(t, ok, "batch item %q must come from a pool", it.Word)
		assert.Equal(t, truth, it.Category)
	}
}

func TestNextBatchDeterministicForSeed(t *testing.T) {
	answers := wrongAnswers(CategoryHiatus, 3)

	a := NextBatch(answers, rand.New(rand.NewSource(42)))
	b := NextBatch(answers, rand.New(rand.NewSource(42)))
	assert.Equal(t, a, b)
}

func TestNextBatchStrictOrdering(t *testing.T) {
	// diphthong 3 > hiatus 2 > general 1 → 5/3/2
	answers := wrongAnswers(CategoryDiphthong, 3)
	answers = append(answers, wrongAnswers(CategoryHiatus, 2)...)
	answers = append(answers, wrongAnswers(CategoryGeneral, 1)...)

	batch := NextBatch(answers, rand.New(rand.NewSource(7)))
	require.Len(t, batch, BatchSize)

	counts := countByCategory(batch)
	assert.Equal(t, 5, counts[CategoryDiphthong])
	assert.Equal(t, 3, counts[CategoryHiatus])
	assert.Equal(t, 2, counts[CategoryGeneral])
}

func TestNextBatchTopTwoTied(t *testing.T) {
	// diphthong 2 == hiatus 2 > general 0 → 4/4/2
	answers := wrongAnswers(CategoryDiphthong, 2)
	answers = append(answers, wrongAnswers(CategoryHiatus, 2)...)

	batch := NextBatch(answers, rand.New(rand.NewSource(7)))
	require.Len(t, batch, BatchSize)

	counts := countByCategory(batch)
	assert.Equal(t, 4, counts[CategoryDiphthong])
	assert.Equal(t, 4, counts[CategoryHiatus])
	assert.Equal(t, 2, counts[CategoryGeneral])
}

func TestNextBatchBottomTwoTied(t *testing.T) {
	// general 3 > diphthong 1 == hiatus 1 → 4/3/3
	answers := wrongAnswers(CategoryGeneral, 3)
	answers = append(answers, wrongAnswers(CategoryDiphthong, 1)...)
	answers = append(answers, wrongAnswers(CategoryHiatus, 1)...)

	batch := NextBatch(answers, rand.New(rand.NewSource(7)))
	require.Len(t, batch, BatchSize)

	counts := countByCategory(batch)
	assert.Equal(t, 4, counts[CategoryGeneral])
	assert.Equal(t, 3, counts[CategoryDiphthong])
	assert.Equal(t, 3, counts[CategoryHiatus])
}

func TestNextBatchThreeWayTieFallsBackToUnion(t *testing.T) {
	answers := wrongAnswers(CategoryDiphthong, 1)
	answers = append(answers, wrongAnswers(CategoryHiatus, 1)...)
	answers = append(answers, wrongAnswers(CategoryGeneral, 1)...)

	batch := NextBatch(answers, rand.New(rand.NewSource(7)))
	require.Len(t, batch, BatchSize)
	for _, it := range batch {
		_, ok := TruthFor(it.Word)
		assert.True(t, ok)
	}
}

func TestNextBatchAllCorrectFallsBackToUnion(t *testing.T) {
	// Every answer correct: 0/0/0 is a three-way tie.
	var answers []Answer
	for _, w := range Pool(CategoryDiphthong)[:3] {
		answers = append(answers, Answer{Word: w, Label: string(CategoryDiphthong)})
	}

	batch := NextBatch(answers, rand.New(rand.NewSource(7)))
	require.Len(t, batch, BatchSize)
}

func TestNextBatchHasNoDuplicates(t *testing.T) {
	answers := wrongAnswers(CategoryDiphthong, 3)
	answers = append(answers, wrongAnswers(CategoryHiatus, 2)...)
	answers = append(answers, wrongAnswers(CategoryGeneral, 1)...)

	batch := NextBatch(answers, rand.New(rand.NewSource(99)))
	seen := map[string]bool{}
	for _, it := range batch {
		assert.False(t, seen[it.Word], "word %q drawn twice", it.Word)
		seen[it.Word] = true
	}
}

func TestPoolReturnsCopy(t *testing.T) {
	p := Pool(CategoryGeneral)
	require.NotEmpty(t, p)
	original := p[0]
	p[0] = "mutated"

	again := Pool(CategoryGeneral)
	assert.Equal(t, original, again[0])
}
