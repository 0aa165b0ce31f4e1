package store

import (
	"hash/fnv"
	"math"
	"strings"
	"unicode"

	pgvector "github.com/pgvector/pgvector-go"
)

// EmbeddingDimensions matches the vector column width of the recipes table
const EmbeddingDimensions = 32

// GenerateEmbedding returns a deterministic bag-of-words embedding for a
// recipe. Each lower-cased word of the name and ingredients is hashed into
// one of EmbeddingDimensions buckets and the result is L2-normalised.
func GenerateEmbedding(name string, ingredients []string) pgvector.Vector {
	vec := make([]float32, EmbeddingDimensions)

	add := func(text string) {
		words := strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
			return !unicode.IsLetter(r) && !unicode.IsDigit(r)
		})
		for _, w := range words {
			h := fnv.New32a()
			_, _ = h.Write([]byte(w))
			vec[h.Sum32()%EmbeddingDimensions]++
		}
	}

	add(name)
	for _, ing := range ingredients {
		add(ing)
	}

	var norm float64
	for _, v := range vec {
		norm += float64(v) * float64(v)
	}
	if norm > 0 {
		n := float32(math.Sqrt(norm))
		for i := range vec {
			vec[i] /= n
		}
	}
	return pgvector.NewVector(vec)
}
