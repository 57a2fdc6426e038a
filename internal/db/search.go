package db

import (
	"encoding/binary"
	"math"

	"github.com/kailas-cloud/stylist/internal/domain/search/filter"
)

// VectorField is the hash field holding the FLOAT32 embedding.
const VectorField = "vector"

// VectorBytes encodes v as the little-endian FLOAT32 blob stored in VectorField
// and passed as the KNN query parameter.
func VectorBytes(v []float32) string {
	buf := make([]byte, len(v)*4)
	for i, f := range v {
		binary.LittleEndian.PutUint32(buf[i*4:], math.Float32bits(f))
	}
	return string(buf)
}

// KNNQuery is the input for vector similarity search.
type KNNQuery struct {
	IndexName    string
	Filter       *filter.Predicate // nil = unrestricted
	Vector       []float32
	K            int
	ReturnFields []string
}

// SearchResult is the output of a search operation.
type SearchResult struct {
	Total   int
	Entries []SearchEntry
}

// SearchEntry is a single hash hit. Score is cosine similarity in [0,1].
type SearchEntry struct {
	Key    string
	Score  float64
	Fields map[string]string
}
