package flowyaml

import "testing"

const sampleDoc = `
nodes:
  - id: src
    type: dynamicNode
    dataFields:
      - id: 0
        name: Temperature
  - id: gt
    type: gtNode
    literals: [null, 30]
  - id: quality
    type: setQualityNode
edges:
  - source: src
    sourceHandle: output-0
    target: gt
    targetHandle: input-0
  - source: gt
    sourceHandle: output-0
    target: quality
    targetHandle: input-0
qualities:
  - name: Hot
    priority: 1
`

func TestParseValidDocument(t *testing.T) {
	recipe, err := Parse([]byte(sampleDoc))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(recipe.Nodes) != 3 {
		t.Errorf("expected 3 nodes, got %d", len(recipe.Nodes))
	}
	if len(recipe.Qualities) != 1 || recipe.Qualities[0].Name != "Hot" {
		t.Errorf("expected one quality named Hot, got %+v", recipe.Qualities)
	}
}

func TestParseMalformedDocumentErrors(t *testing.T) {
	_, err := Parse([]byte("nodes: [this is not valid: yaml: :::"))
	if err == nil {
		t.Fatal("expected an error for malformed YAML")
	}
}

func TestIntoFlowConvertsFieldsVerbatim(t *testing.T) {
	recipe, err := Parse([]byte(sampleDoc))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	def, err := recipe.IntoFlow()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(def.Nodes) != 3 || len(def.Edges) != 2 {
		t.Fatalf("expected the canonical Definition to mirror node/edge counts, got %d nodes, %d edges", len(def.Nodes), len(def.Edges))
	}
	if def.Nodes[0].DataFields[0].Name != "Temperature" {
		t.Errorf("expected the data field name to carry over, got %q", def.Nodes[0].DataFields[0].Name)
	}
}

func TestQualityListConvertsPriorities(t *testing.T) {
	recipe, err := Parse([]byte(sampleDoc))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	qs := recipe.QualityList()
	if len(qs) != 1 || qs[0].Priority != 1 {
		t.Errorf("expected one quality with priority 1, got %+v", qs)
	}
}
