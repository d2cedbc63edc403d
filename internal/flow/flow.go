// Package flow defines the canonical decision-flow graph model: the target
// structure every external recipe dialect must convert into before the
// compiler can touch it.
package flow

// DataFieldDefinition names one field a data-source node exposes, keyed by
// the port index a consumer's edge handle references.
type DataFieldDefinition struct {
	ID       uint32
	Name     string
	DataType string // optional; "" means unspecified
}

// NodeDefinition describes one operator or data-source node in the flow.
type NodeDefinition struct {
	ID            string
	OperationType string

	// InputType marks a dynamicNode as reading from an event stream named
	// InputType; empty means the node reads static measurements instead.
	InputType string

	// LiteralValues supplies a constant per input port, taken in port
	// order, used when a port has no incoming edge.
	LiteralValues []any

	// DataFields describes the named outputs of a data-source node,
	// indexed by the port index a consuming edge's source handle names.
	DataFields []DataFieldDefinition
}

// EdgeDefinition connects one node's output to another node's input port.
// Handle names end in "-<digits>"; the digits are the port index.
type EdgeDefinition struct {
	Source       string
	SourceHandle string
	Target       string
	TargetHandle string
}

// Definition is the complete, canonical decision flow: the structure any
// custom recipe dialect's conversion contract must produce.
type Definition struct {
	Nodes []NodeDefinition
	Edges []EdgeDefinition
}

// Quality is a named, priority-ranked outcome tied to one input port of the
// flow's setQualityNode. Smaller-or-equal priority values fire first.
type Quality struct {
	Name     string
	Priority int
}

// IntoFlow is the conversion contract external recipe dialects implement to
// feed the compiler a canonical Definition. Formats feeding the core (JSON
// dialects, YAML, etc.) are peripheral glue; only this contract is core.
type IntoFlow interface {
	IntoFlow() (Definition, error)
}

// IntoFlow lets a Definition stand in directly as a recipe source, so a
// caller that already has a canonical Definition never needs an adapter.
func (d Definition) IntoFlow() (Definition, error) { return d, nil }

const SetQualityNodeType = "setQualityNode"

// DefaultOperationAliases is the built-in node-type tag vocabulary, each tag
// mapped to itself. The graph builder does not read this map: its AliasMap
// holds only user-supplied aliases and passes every other tag through as is.
var DefaultOperationAliases = map[string]string{
	"sumNode":         "sumNode",
	"subNode":         "subNode",
	"multNode":        "multNode",
	"divideNode":      "divideNode",
	"absNode":         "absNode",
	"notNode":         "notNode",
	"andNode":         "andNode",
	"orNode":          "orNode",
	"xorNode":         "xorNode",
	"eqNode":          "eqNode",
	"neqNode":         "neqNode",
	"gtNode":          "gtNode",
	"gteqNode":        "gteqNode",
	"stNode":          "stNode",
	"steqNode":        "steqNode",
	"dynamicNode":     "dynamicNode",
	SetQualityNodeType: SetQualityNodeType,
}
