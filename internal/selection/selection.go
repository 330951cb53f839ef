// Package selection picks the next batch of practice items, weighting
// categories by how often the student got them wrong in the previous batch.
package selection

import (
	"math/rand"
	"sort"
)

// Category is one of the three practice-item classes.
type Category string

const (
	CategoryDiphthong Category = "diphthong"
	CategoryHiatus    Category = "hiatus"
	CategoryGeneral   Category = "general"
)

// categories in a fixed order, used to keep ranking deterministic under ties.
var categories = []Category{CategoryDiphthong, CategoryHiatus, CategoryGeneral}

// BatchSize is the fixed size of every practice batch.
const BatchSize = 10

// Item is one practice word together with its truth category.
type Item struct {
	Word     string   `json:"word"`
	Category Category `json:"category"`
}

// Answer is one answered item: the word and the label the student assigned.
type Answer struct {
	Word  string `json:"word"`
	Label string `json:"label"`
}

// CountErrors tallies mistakes per category: an answer counts against the
// word's truth category when the submitted label differs from it. Words not
// in any pool are ignored.
func CountErrors(answers []Answer) map[Category]int {
	errs := map[Category]int{
		CategoryDiphthong: 0,
		CategoryHiatus:    0,
		CategoryGeneral:   0,
	}
	for _, a := range answers {
		cat, ok := TruthFor(a.Word)
		if !ok {
			continue
		}
		if Category(a.Label) != cat {
			errs[cat]++
		}
	}
	return errs
}

// NextBatch produces the next 10-item batch. With no prior answers the batch
// is a uniform draw over the pooled union of all categories; otherwise the
// per-category allocation follows the error ranking:
//
//	strict ordering        → 5 / 3 / 2
//	top two tied           → 4 / 4 / 2
//	bottom two tied        → 4 / 3 / 3
//	any other tie pattern  → uniform draw over the union
func NextBatch(answers []Answer, rng *rand.Rand) []Item {
	if len(answers) == 0 {
		return drawUnion(rng)
	}

	errs := CountErrors(answers)
	ranked := rankByErrors(errs)
	first, second, third := errs[ranked[0]], errs[ranked[1]], errs[ranked[2]]

	var alloc [3]int
	switch {
	case first > second && second > third:
		alloc = [3]int{5, 3, 2}
	case first == second && second > third:
		alloc = [3]int{4, 4, 2}
	case first > second && second == third:
		alloc = [3]int{4, 3, 3}
	default:
		return drawUnion(rng)
	}

	batch := make([]Item, 0, BatchSize)
	for i, cat := range ranked {
		batch = append(batch, draw(cat, alloc[i], rng)...)
	}
	shuffle(batch, rng)
	return batch
}

// rankByErrors orders categories by error count descending. Ties keep the
// fixed category order, which never changes the allocation a tied category
// receives.
func rankByErrors(errs map[Category]int) [3]Category {
	ranked := [3]Category{}
	copy(ranked[:], categories)
	sort.SliceStable(ranked[:], func(i, j int) bool {
		return errs[ranked[i]] > errs[ranked[j]]
	})
	return ranked
}

// draw shuffles a copy of the category pool and takes the first n items.
func draw(cat Category, n int, rng *rand.Rand) []Item {
	words := Pool(cat)
	shuffleWords(words, rng)
	if n > len(words) {
		n = len(words)
	}
	items := make([]Item, 0, n)
	for _, w := range words[:n] {
		items = append(items, Item{Word: w, Category: cat})
	}
	return items
}

// drawUnion shuffles the pooled union of all categories and truncates to one
// batch.
func drawUnion(rng *rand.Rand) []Item {
	var union []Item
	for _, cat := range categories {
		for _, w := range pools[cat] {
			union = append(union, Item{Word: w, Category: cat})
		}
	}
	shuffle(union, rng)
	if len(union) > BatchSize {
		union = union[:BatchSize]
	}
	return union
}

// shuffle is a Fisher–Yates shuffle over items.
func shuffle(items []Item, rng *rand.Rand) {
	for i := len(items) - 1; i > 0; i-- {
		j := rng.Intn(i + 1)
		items[i], items[j] = items[j], items[i]
	}
}

// shuffleWords is a Fisher–Yates shuffle over words.
func shuffleWords(words []string, rng *rand.Rand) {
	for i := len(words) - 1; i > 0; i-- {
		j := rng.Intn(i + 1)
		words[i], words[j] = words[j], words[i]
	}
}
