package product

import (
	"github.com/kailas-cloud/stylist/internal/db"
)

const contentField = "__content"

// Schema describes how catalog records are laid out in Redis.
type Schema struct {
	IndexName string
	KeyPrefix string   // e.g. "stylist:product:"
	Tags      []string // exact-match attributes (gender, category, color, name)
	Numerics  []string // range attributes (price_regular)
	Dim       int
	Algorithm db.VectorAlgorithm
	HNSWM     int
	HNSWEF    int
}

// IndexDefinition returns the FT.CREATE definition for s.
func (s *Schema) IndexDefinition() (*db.IndexDefinition, error) {
	b := db.NewIndex(s.IndexName).Prefix(s.KeyPrefix)
	for _, t := range s.Tags {
		b = b.Tag(t)
	}
	for _, n := range s.Numerics {
		b = b.Numeric(n)
	}
	algo := s.Algorithm
	if algo == "" {
		algo = db.VectorHNSW
	}
	def, err := b.Vector(db.VectorField, s.Dim, algo, db.DistanceCosine, s.HNSWM, s.HNSWEF).Build()
	if err != nil {
		return nil, err //nolint:wrapcheck // validation message is self-describing
	}
	return def, nil
}

func (s *Schema) key(id string) string { return s.KeyPrefix + id }

func (s *Schema) returnFields() []string {
	out := make([]string, 0, 1+len(s.Tags)+len(s.Numerics))
	out = append(out, contentField)
	out = append(out, s.Tags...)
	return append(out, s.Numerics...)
}

func (s *Schema) isNumeric(field string) bool {
	for _, n := range s.Numerics {
		if n == field {
			return true
		}
	}
	return false
}
