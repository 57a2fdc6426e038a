package extract

import (
	"encoding/json"
	"fmt"

	"github.com/invopop/jsonschema"

	"github.com/kailas-cloud/stylist/internal/domain"
	"github.com/kailas-cloud/stylist/internal/domain/catalog"
	"github.com/kailas-cloud/stylist/internal/domain/search/filter"
)

const (
	operatorField = "operator"
	categoryField = "category"
)

// enumObject builds {"<field>": enum | null} with no other properties.
func enumObject(field string, values []any, nullable bool) *jsonschema.Schema {
	prop := &jsonschema.Schema{Type: "string", Enum: values}
	if nullable {
		prop = &jsonschema.Schema{AnyOf: []*jsonschema.Schema{prop, {Type: "null"}}}
	}
	props := jsonschema.NewProperties()
	props.Set(field, prop)
	return &jsonschema.Schema{
		Type:                 "object",
		Properties:           props,
		Required:             []string{field},
		AdditionalProperties: jsonschema.FalseSchema,
	}
}

func responseFormat(name string, s *jsonschema.Schema) *domain.ResponseFormat {
	raw, err := json.Marshal(s)
	if err != nil {
		// Schemas are built from constants; a marshal failure is a programming error.
		panic(fmt.Sprintf("marshal %s schema: %v", name, err))
	}
	return &domain.ResponseFormat{Name: name, Schema: raw}
}

var (
	operatorFormat = func() *domain.ResponseFormat {
		ops := filter.Ops()
		values := make([]any, len(ops))
		for i, op := range ops {
			values[i] = string(op)
		}
		return responseFormat("comparison_operator", enumObject(operatorField, values, true))
	}()

	categoryFormat = func() *domain.ResponseFormat {
		labels := catalog.Labels()
		values := make([]any, len(labels))
		for i, l := range labels {
			values[i] = l
		}
		return responseFormat("product_category", enumObject(categoryField, values, false))
	}()
)
