// Package flowyaml is a reference implementation of the flow.IntoFlow
// conversion contract: it parses a YAML decision-flow dialect into the
// compiler's canonical flow.Definition, the same role the teacher's
// gopkg.in/yaml.v3-tagged SigmaRule plays for SIGMA rule YAML. The dialect
// itself — field names, document shape — is peripheral glue, exactly as
// recipe dialects are flagged out of the core's scope; only the conversion
// contract it implements is core.
package flowyaml

import (
	"gopkg.in/yaml.v3"

	"github.com/hantei-go/hantei/internal/flow"
	flowerr "github.com/hantei-go/hantei/pkg/errors"
)

// DataField mirrors flow.DataFieldDefinition in the YAML dialect.
type DataField struct {
	ID       uint32 `yaml:"id"`
	Name     string `yaml:"name"`
	DataType string `yaml:"dataType,omitempty"`
}

// Node mirrors flow.NodeDefinition in the YAML dialect. Literals is taken
// in port order, exactly like flow.NodeDefinition.LiteralValues.
type Node struct {
	ID         string      `yaml:"id"`
	Type       string      `yaml:"type"`
	InputType  string      `yaml:"inputType,omitempty"`
	Literals   []any       `yaml:"literals,omitempty"`
	DataFields []DataField `yaml:"dataFields,omitempty"`
}

// Edge mirrors flow.EdgeDefinition in the YAML dialect.
type Edge struct {
	Source       string `yaml:"source"`
	SourceHandle string `yaml:"sourceHandle"`
	Target       string `yaml:"target"`
	TargetHandle string `yaml:"targetHandle"`
}

// Quality mirrors flow.Quality in the YAML dialect.
type Quality struct {
	Name     string `yaml:"name"`
	Priority int    `yaml:"priority"`
}

// Recipe is the top-level YAML document: a flow plus the quality list the
// compiler needs alongside it. It implements flow.IntoFlow directly, so a
// parsed Recipe can be handed straight to builder.Builder; QualityList()
// supplies the second argument Builder needs.
type Recipe struct {
	Nodes     []Node    `yaml:"nodes"`
	Edges     []Edge    `yaml:"edges"`
	Qualities []Quality `yaml:"qualities"`
}

// Parse decodes a YAML document into a Recipe. A malformed document is
// reported as a JsonParseError — the taxonomy's single bucket for "an
// external loader's own syntax is invalid", used here for YAML the same way
// it is for any other recipe dialect.
func Parse(document []byte) (*Recipe, error) {
	var r Recipe
	if err := yaml.Unmarshal(document, &r); err != nil {
		return nil, flowerr.NewJSONParseError(err.Error())
	}
	return &r, nil
}

// IntoFlow implements flow.IntoFlow, converting the parsed dialect into the
// compiler's canonical Definition.
func (r *Recipe) IntoFlow() (flow.Definition, error) {
	def := flow.Definition{
		Nodes: make([]flow.NodeDefinition, 0, len(r.Nodes)),
		Edges: make([]flow.EdgeDefinition, 0, len(r.Edges)),
	}
	for _, n := range r.Nodes {
		fields := make([]flow.DataFieldDefinition, 0, len(n.DataFields))
		for _, f := range n.DataFields {
			fields = append(fields, flow.DataFieldDefinition{ID: f.ID, Name: f.Name, DataType: f.DataType})
		}
		def.Nodes = append(def.Nodes, flow.NodeDefinition{
			ID:            n.ID,
			OperationType: n.Type,
			InputType:     n.InputType,
			LiteralValues: n.Literals,
			DataFields:    fields,
		})
	}
	for _, e := range r.Edges {
		def.Edges = append(def.Edges, flow.EdgeDefinition{
			Source:       e.Source,
			SourceHandle: e.SourceHandle,
			Target:       e.Target,
			TargetHandle: e.TargetHandle,
		})
	}
	return def, nil
}

// QualityList returns the recipe's quality list in flow.Quality form, ready
// to pass alongside the Recipe itself to builder.Builder.
func (r *Recipe) QualityList() []flow.Quality {
	qs := make([]flow.Quality, len(r.Qualities))
	for i, q := range r.Qualities {
		qs[i] = flow.Quality{Name: q.Name, Priority: q.Priority}
	}
	return qs
}
