package builder

import (
	"fmt"

	"github.com/hantei-go/hantei/internal/ast"
	flowerr "github.com/hantei-go/hantei/pkg/errors"
)

// NodeParser turns a node's resolved, port-ordered inputs into an
// Expression. Implementations validate arity themselves (via
// requireInputs) and return a ConnectionError on mismatch.
type NodeParser interface {
	Parse(nodeID string, inputs []*ast.Expression) (*ast.Expression, error)
}

// ParserFunc adapts a plain function to the NodeParser interface.
type ParserFunc func(nodeID string, inputs []*ast.Expression) (*ast.Expression, error)

func (f ParserFunc) Parse(nodeID string, inputs []*ast.Expression) (*ast.Expression, error) {
	return f(nodeID, inputs)
}

// ParserRegistry maps canonical operation-type tags to the parser that
// builds their Expression. The default registry covers every operator
// named in the data model; callers may register custom parsers for
// additional node types via WithCustomParser.
type ParserRegistry struct {
	parsers map[string]NodeParser
}

func NewParserRegistry() *ParserRegistry {
	return &ParserRegistry{parsers: make(map[string]NodeParser)}
}

func (r *ParserRegistry) Register(operationType string, parser NodeParser) {
	r.parsers[operationType] = parser
}

func (r *ParserRegistry) Lookup(operationType string) (NodeParser, bool) {
	p, ok := r.parsers[operationType]
	return p, ok
}

func requireInputs(nodeID, handle string, inputs []*ast.Expression, n int) error {
	if len(inputs) != n {
		return flowerr.NewConnectionError(nodeID, handle,
			fmt.Sprintf("expected %d input(s), got %d", n, len(inputs)))
	}
	return nil
}

func binaryParser(build func(l, r *ast.Expression) *ast.Expression) NodeParser {
	return ParserFunc(func(nodeID string, inputs []*ast.Expression) (*ast.Expression, error) {
		if err := requireInputs(nodeID, "input-0", inputs, 2); err != nil {
			return nil, err
		}
		return build(inputs[0], inputs[1]), nil
	})
}

func unaryParser(build func(v *ast.Expression) *ast.Expression) NodeParser {
	return ParserFunc(func(nodeID string, inputs []*ast.Expression) (*ast.Expression, error) {
		if err := requireInputs(nodeID, "input-0", inputs, 1); err != nil {
			return nil, err
		}
		return build(inputs[0]), nil
	})
}

// DefaultParserRegistry builds the registry covering the default node-type
// tags named in the external interfaces: sumNode, subNode, multNode,
// divideNode, absNode, notNode, andNode, orNode, xorNode, eqNode, neqNode,
// gtNode, gteqNode, stNode, steqNode. dynamicNode and setQualityNode are
// handled directly by the graph builder, not through this registry, since
// they are not ordinary expression-producing operators.
func DefaultParserRegistry() *ParserRegistry {
	r := NewParserRegistry()
	r.Register("sumNode", binaryParser(ast.NewSum))
	r.Register("subNode", binaryParser(ast.NewSubtract))
	r.Register("multNode", binaryParser(ast.NewMultiply))
	r.Register("divideNode", binaryParser(ast.NewDivide))
	r.Register("absNode", unaryParser(ast.NewAbs))
	r.Register("notNode", unaryParser(ast.NewNot))
	r.Register("andNode", binaryParser(ast.NewAnd))
	r.Register("orNode", binaryParser(ast.NewOr))
	r.Register("xorNode", binaryParser(ast.NewXor))
	r.Register("eqNode", binaryParser(ast.NewEqual))
	r.Register("neqNode", binaryParser(ast.NewNotEqual))
	r.Register("gtNode", binaryParser(ast.NewGreaterThan))
	r.Register("gteqNode", binaryParser(ast.NewGreaterThanOrEqual))
	r.Register("stNode", binaryParser(ast.NewSmallerThan))
	r.Register("steqNode", binaryParser(ast.NewSmallerThanOrEqual))
	return r
}
