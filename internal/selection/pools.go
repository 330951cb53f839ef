package selection

// Fixed practice pools per category. The truth label of a word is the pool it
// lives in; pools are disjoint.
var pools = map[Category][]string{
	CategoryDiphthong: {
		"tierra", "puerta", "ciudad", "aire", "causa",
		"peine", "fuego", "agua", "cuadro", "viaje",
		"siete", "nueve", "bueno", "cielo", "labio",
		"deuda", "reina", "auto", "euro", "miedo",
	},
	CategoryHiatus: {
		"país", "día", "río", "maíz", "leer",
		"caer", "poesía", "búho", "baúl", "oído",
		"frío", "tío", "creer", "raíz", "ahora",
		"teatro", "maría", "reír", "caída", "peor",
	},
	CategoryGeneral: {
		"mesa", "libro", "casa", "perro", "gato",
		"ventana", "camino", "montaña", "árbol", "flor",
		"papel", "reloj", "silla", "plato", "verde",
		"azul", "grande", "pequeño", "feliz", "triste",
	},
}

// truth maps every pooled word to its category.
var truth = func() map[string]Category {
	m := make(map[string]Category)
	for cat, words := range pools {
		for _, w := range words {
			m[w] = cat
		}
	}
	return m
}()

// Pool returns a copy of one category's pool.
func Pool(cat Category) []string {
	src := pools[cat]
	out := make([]string, len(src))
	copy(out, src)
	return out
}

// TruthFor returns the category a pooled word belongs to.
func TruthFor(word string) (Category, bool) {
	cat, ok := truth[word]
	return cat, ok
}
