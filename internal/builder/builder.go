package builder

import (
	"strconv"

	"github.com/sirupsen/logrus"

	"github.com/hantei-go/hantei/internal/ast"
	"github.com/hantei-go/hantei/internal/flow"
	flowerr "github.com/hantei-go/hantei/pkg/errors"
)

type sourceRef struct {
	NodeID string
	Port   int
}

// GraphBuilder lowers a flow.Definition into one naive expression tree per
// quality. It memoizes the expression each node computes so that a node
// feeding several consumers is only lowered once, and resolves fan-in
// (multiple edges into one port) into a left-folded Or.
type GraphBuilder struct {
	def       flow.Definition
	aliases   *AliasMap
	registry  *ParserRegistry
	symbols   *ast.SymbolTable
	log       *logrus.Logger

	nodesByID   map[string]*flow.NodeDefinition
	connections map[string]map[int][]sourceRef
	cache       map[string]*ast.Expression
}

func NewGraphBuilder(def flow.Definition, aliases *AliasMap, registry *ParserRegistry, log *logrus.Logger) *GraphBuilder {
	if log == nil {
		log = logrus.StandardLogger()
	}
	b := &GraphBuilder{
		def:         def,
		aliases:     aliases,
		registry:    registry,
		symbols:     ast.NewSymbolTable(),
		log:         log,
		nodesByID:   make(map[string]*flow.NodeDefinition),
		connections: make(map[string]map[int][]sourceRef),
		cache:       make(map[string]*ast.Expression),
	}
	for i := range def.Nodes {
		n := &def.Nodes[i]
		b.nodesByID[n.ID] = n
	}
	for _, e := range def.Edges {
		port := parseHandleIndex(e.TargetHandle)
		sourcePort := parseHandleIndex(e.SourceHandle)
		if b.connections[e.Target] == nil {
			b.connections[e.Target] = make(map[int][]sourceRef)
		}
		b.connections[e.Target][port] = append(b.connections[e.Target][port], sourceRef{NodeID: e.Source, Port: sourcePort})
	}
	return b
}

// Symbols returns the static/dynamic name tables interned while lowering.
// Only meaningful after BuildQualityPaths has run.
func (b *GraphBuilder) Symbols() *ast.SymbolTable { return b.symbols }

// FindQualityNode locates the single setQualityNode in the flow.
func (b *GraphBuilder) FindQualityNode() (*flow.NodeDefinition, error) {
	var found *flow.NodeDefinition
	for i := range b.def.Nodes {
		n := &b.def.Nodes[i]
		if b.aliases.Resolve(n.OperationType) == flow.SetQualityNodeType {
			if found != nil {
				return nil, flowerr.NewInvalidNodeType(n.ID, "duplicate setQualityNode")
			}
			found = n
		}
	}
	if found == nil {
		return nil, flowerr.NewQualityTriggerNodeNotFound()
	}
	return found, nil
}

// BuildQualityPaths lowers every quality's input port into a naive
// expression tree. Ports with neither an edge nor a literal are omitted
// from the result (they never trigger).
func (b *GraphBuilder) BuildQualityPaths(qualities []flow.Quality) ([]QualityPath, error) {
	qualityNode, err := b.FindQualityNode()
	if err != nil {
		return nil, err
	}

	var paths []QualityPath
	for i, q := range qualities {
		expr, ok, err := b.gatherPort(qualityNode, i)
		if err != nil {
			return nil, err
		}
		if !ok {
			b.log.WithFields(logrus.Fields{"quality": q.Name, "port": i}).
				Debug("quality port has no edge or literal, skipping")
			continue
		}
		paths = append(paths, QualityPath{Priority: q.Priority, Name: q.Name, Expr: expr})
	}
	return paths, nil
}

// QualityPath is one quality's naive (pre-optimization) expression tree.
type QualityPath struct {
	Priority int
	Name     string
	Expr     *ast.Expression
}

// gatherPort resolves the inputs feeding one port of node: fan-in edges
// fold left into Or, and an absent edge falls back to the node's literal
// for that port index if one is declared. ok is false only when neither an
// edge nor a literal exists for the port.
func (b *GraphBuilder) gatherPort(node *flow.NodeDefinition, port int) (*ast.Expression, bool, error) {
	if refs, exists := b.connections[node.ID][port]; exists && len(refs) > 0 {
		var acc *ast.Expression
		for _, ref := range refs {
			e, err := b.resolveSource(ref.NodeID, ref.Port)
			if err != nil {
				return nil, false, err
			}
			if acc == nil {
				acc = e
			} else {
				acc = ast.NewOr(acc, e)
			}
		}
		return acc, true, nil
	}
	if node.LiteralValues != nil && port < len(node.LiteralValues) {
		return ast.NewLiteral(literalToValue(node.LiteralValues[port])), true, nil
	}
	return nil, false, nil
}

// resolveSource produces the Expression that a (sourceNode, sourcePort)
// pair denotes: a leaf Input for a data-source node's named output field,
// or the memoized whole-node expression for an ordinary operator node.
func (b *GraphBuilder) resolveSource(nodeID string, port int) (*ast.Expression, error) {
	node, ok := b.nodesByID[nodeID]
	if !ok {
		return nil, flowerr.NewNodeNotFound(nodeID, "")
	}
	canonical := b.aliases.Resolve(node.OperationType)
	if canonical == "dynamicNode" {
		return b.resolveDataField(node, port)
	}
	return b.buildNodeExpression(node)
}

func (b *GraphBuilder) resolveDataField(node *flow.NodeDefinition, port int) (*ast.Expression, error) {
	for _, field := range node.DataFields {
		if int(field.ID) == port {
			if node.InputType != "" {
				id := b.symbols.InternDynamic(node.InputType, field.Name)
				return ast.NewInput(ast.DynamicInput(id)), nil
			}
			id := b.symbols.InternStatic(field.Name)
			return ast.NewInput(ast.StaticInput(id)), nil
		}
	}
	return nil, flowerr.NewConnectionError(node.ID, handleFor(port), "data field not defined for this handle")
}

func handleFor(port int) string {
	return "output-" + strconv.Itoa(port)
}

// buildNodeExpression lowers an ordinary operator node into its
// Expression, memoized by node id so a node feeding several consumers is
// only lowered once.
func (b *GraphBuilder) buildNodeExpression(node *flow.NodeDefinition) (*ast.Expression, error) {
	if cached, ok := b.cache[node.ID]; ok {
		return cached, nil
	}

	canonical := b.aliases.Resolve(node.OperationType)
	parser, ok := b.registry.Lookup(canonical)
	if !ok {
		return nil, flowerr.NewInvalidNodeType(node.ID, node.OperationType)
	}

	arity := len(node.LiteralValues)
	if byPort, exists := b.connections[node.ID]; exists {
		for port := range byPort {
			if port+1 > arity {
				arity = port + 1
			}
		}
	}

	inputs := make([]*ast.Expression, arity)
	for port := 0; port < arity; port++ {
		expr, ok, err := b.gatherPort(node, port)
		if err != nil {
			return nil, err
		}
		if !ok {
			expr = ast.NewLiteral(ast.Null())
		}
		inputs[port] = expr
	}

	expr, err := parser.Parse(node.ID, inputs)
	if err != nil {
		return nil, err
	}
	b.cache[node.ID] = expr
	return expr, nil
}

// literalToValue maps a JSON/YAML-decoded literal into a Value: numbers and
// booleans map directly, anything else (strings, nested structures, nil)
// becomes Null.
func literalToValue(v any) ast.Value {
	switch n := v.(type) {
	case float64:
		return ast.Number(n)
	case float32:
		return ast.Number(float64(n))
	case int:
		return ast.Number(float64(n))
	case int64:
		return ast.Number(float64(n))
	case bool:
		return ast.Bool(n)
	default:
		return ast.Null()
	}
}
