package builder

import (
	"testing"

	"github.com/hantei-go/hantei/internal/ast"
	"github.com/hantei-go/hantei/internal/flow"
)

func simpleFlow() flow.Definition {
	return flow.Definition{
		Nodes: []flow.NodeDefinition{
			{
				ID:            "src",
				OperationType: "dynamicNode",
				InputType:     "",
				DataFields:    []flow.DataFieldDefinition{{ID: 0, Name: "Temperature"}},
			},
			{
				ID:            "gt",
				OperationType: "gtNode",
				LiteralValues: []any{nil, 30.0},
			},
			{
				ID:            "quality",
				OperationType: flow.SetQualityNodeType,
			},
		},
		Edges: []flow.EdgeDefinition{
			{Source: "src", SourceHandle: "output-0", Target: "gt", TargetHandle: "input-0"},
			{Source: "gt", SourceHandle: "output-0", Target: "quality", TargetHandle: "input-0"},
		},
	}
}

func TestBuildQualityPathsLowersSimpleFlow(t *testing.T) {
	def := simpleFlow()
	gb := NewGraphBuilder(def, NewAliasMap(), DefaultParserRegistry(), nil)

	paths, err := gb.BuildQualityPaths([]flow.Quality{{Name: "Hot", Priority: 1}})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(paths) != 1 {
		t.Fatalf("expected one quality path, got %d", len(paths))
	}
	if paths[0].Expr.Kind != ast.GreaterThan {
		t.Errorf("expected a GreaterThan root, got kind %v", paths[0].Expr.Kind)
	}
}

func TestBuildQualityPathsSkipsPortWithNoEdgeOrLiteral(t *testing.T) {
	def := simpleFlow()
	gb := NewGraphBuilder(def, NewAliasMap(), DefaultParserRegistry(), nil)

	paths, err := gb.BuildQualityPaths([]flow.Quality{{Name: "Hot", Priority: 0}, {Name: "Unreachable", Priority: 1}})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(paths) != 1 {
		t.Errorf("expected the unreachable quality port (index 1, no edge/literal) to be skipped, got %d paths", len(paths))
	}
	if paths[0].Name != "Hot" {
		t.Errorf("expected the surviving path to be Hot, got %q", paths[0].Name)
	}
}

func TestBuildQualityPathsFanInMergesIntoOr(t *testing.T) {
	def := flow.Definition{
		Nodes: []flow.NodeDefinition{
			{ID: "a", OperationType: "dynamicNode", DataFields: []flow.DataFieldDefinition{{ID: 0, Name: "A"}}},
			{ID: "b", OperationType: "dynamicNode", DataFields: []flow.DataFieldDefinition{{ID: 0, Name: "B"}}},
			{ID: "quality", OperationType: flow.SetQualityNodeType},
		},
		Edges: []flow.EdgeDefinition{
			{Source: "a", SourceHandle: "output-0", Target: "quality", TargetHandle: "input-0"},
			{Source: "b", SourceHandle: "output-0", Target: "quality", TargetHandle: "input-0"},
		},
	}
	gb := NewGraphBuilder(def, NewAliasMap(), DefaultParserRegistry(), nil)
	paths, err := gb.BuildQualityPaths([]flow.Quality{{Name: "Either", Priority: 0}})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if paths[0].Expr.Kind != ast.Or {
		t.Errorf("expected fan-in to fold into Or, got kind %v", paths[0].Expr.Kind)
	}
}

func TestBuildQualityPathsUndefinedDataFieldIsConnectionError(t *testing.T) {
	def := flow.Definition{
		Nodes: []flow.NodeDefinition{
			{ID: "src", OperationType: "dynamicNode", DataFields: nil},
			{ID: "quality", OperationType: flow.SetQualityNodeType},
		},
		Edges: []flow.EdgeDefinition{
			{Source: "src", SourceHandle: "output-0", Target: "quality", TargetHandle: "input-0"},
		},
	}
	gb := NewGraphBuilder(def, NewAliasMap(), DefaultParserRegistry(), nil)
	_, err := gb.BuildQualityPaths([]flow.Quality{{Name: "X", Priority: 0}})
	if err == nil {
		t.Fatal("expected a ConnectionError for a data field not declared on the source node")
	}
}

func TestBuildQualityPathsMemoizesSharedNode(t *testing.T) {
	def := flow.Definition{
		Nodes: []flow.NodeDefinition{
			{ID: "src", OperationType: "dynamicNode", DataFields: []flow.DataFieldDefinition{{ID: 0, Name: "A"}}},
			{ID: "abs", OperationType: "absNode"},
			{ID: "quality", OperationType: flow.SetQualityNodeType},
		},
		Edges: []flow.EdgeDefinition{
			{Source: "src", SourceHandle: "output-0", Target: "abs", TargetHandle: "input-0"},
			{Source: "abs", SourceHandle: "output-0", Target: "quality", TargetHandle: "input-0"},
			{Source: "abs", SourceHandle: "output-0", Target: "quality", TargetHandle: "input-1"},
		},
	}
	gb := NewGraphBuilder(def, NewAliasMap(), DefaultParserRegistry(), nil)
	paths, err := gb.BuildQualityPaths([]flow.Quality{{Name: "P0", Priority: 0}, {Name: "P1", Priority: 1}})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if paths[0].Expr != paths[1].Expr {
		t.Error("expected the shared abs node to be lowered once and reused by both consumers")
	}
}

func TestAliasMapResolvesAndFallsBackToCanonical(t *testing.T) {
	m := NewAliasMap()
	m.Add("greater_than", "gtNode")
	if got := m.Resolve("greater_than"); got != "gtNode" {
		t.Errorf("Resolve() = %q, want gtNode", got)
	}
	if got := m.Resolve("gtNode"); got != "gtNode" {
		t.Errorf("Resolve() of an unaliased canonical name should return itself, got %q", got)
	}
}
