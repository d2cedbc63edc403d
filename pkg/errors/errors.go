// Package errors defines the error taxonomy shared by every stage of the
// decision-flow pipeline: graph lowering, optimization, backend compilation,
// and evaluation. It follows one hand-rolled error type carrying a typed
// discriminant rather than a grab-bag of ad-hoc sentinel values, so callers
// can branch on Type or use errors.Is/errors.As against a known FlowError.
package errors

import "fmt"

// Result is a generic Ok/Err container mirroring Rust's Result<T, E>, for a
// caller that benefits from deciding success/failure before unwrapping rather
// than juggling a (T, error) pair through several intermediate steps. No
// package in this module returns one; Compiler.Compile, like every other
// entry point, returns a plain (value, error) pair. Unlike
// the teacher's two-struct-behind-an-interface split (one type for Ok, one
// for Err, dispatched dynamically), this is a single concrete struct that
// branches on whether err is nil — one fewer allocation per Result and no
// interface indirection for what is, underneath, a tagged union of exactly
// two states.
type Result[T any] struct {
	value T
	err   error
}

func Ok[T any](value T) Result[T] {
	return Result[T]{value: value}
}

func Err[T any](err error) Result[T] {
	return Result[T]{err: err}
}

func Try[T any](value T, err error) Result[T] {
	return Result[T]{value: value, err: err}
}

func (r Result[T]) IsOk() bool  { return r.err == nil }
func (r Result[T]) IsErr() bool { return r.err != nil }

func (r Result[T]) Unwrap() T {
	if r.err != nil {
		panic("called Unwrap on Err result")
	}
	return r.value
}

func (r Result[T]) UnwrapErr() error {
	if r.err == nil {
		panic("called UnwrapErr on Ok result")
	}
	return r.err
}

func (r Result[T]) UnwrapOr(defaultValue T) T {
	if r.err != nil {
		return defaultValue
	}
	return r.value
}

func (r Result[T]) Map(fn func(T) T) Result[T] {
	if r.err != nil {
		return r
	}
	return Ok(fn(r.value))
}

func (r Result[T]) MapErr(fn func(error) error) Result[T] {
	if r.err == nil {
		return r
	}
	return Err[T](fn(r.err))
}

func ToGoTuple[T any](result Result[T]) (T, error) {
	return result.value, result.err
}

// ErrorType discriminates the taxonomy laid out across the compile,
// backend, evaluation, and conversion stages.
type ErrorType int

const (
	// Compile (graph -> AST lowering)
	ErrorTypeNodeNotFound ErrorType = iota
	ErrorTypeInvalidNodeType
	ErrorTypeConnectionError
	ErrorTypeQualityTriggerNodeNotFound
	ErrorTypeJSONParseError

	// Backend (optimizer linking / bytecode compilation)
	ErrorTypeInvalidLogic
	ErrorTypeUnsupportedAstNode
	ErrorTypeResourceLimitExceeded

	// Evaluation (interpreter / VM runtime)
	ErrorTypeTypeMismatch
	ErrorTypeInputNotFound
	ErrorTypeBackendError
	ErrorTypeInvalidIP
	ErrorTypeStackUnderflow
	ErrorTypeUnhandledOpCode

	// Conversion (external recipe loaders)
	ErrorTypeRecipeConversionError
)

func (et ErrorType) String() string {
	switch et {
	case ErrorTypeNodeNotFound:
		return "NODE_NOT_FOUND"
	case ErrorTypeInvalidNodeType:
		return "INVALID_NODE_TYPE"
	case ErrorTypeConnectionError:
		return "CONNECTION_ERROR"
	case ErrorTypeQualityTriggerNodeNotFound:
		return "QUALITY_TRIGGER_NODE_NOT_FOUND"
	case ErrorTypeJSONParseError:
		return "JSON_PARSE_ERROR"
	case ErrorTypeInvalidLogic:
		return "INVALID_LOGIC"
	case ErrorTypeUnsupportedAstNode:
		return "UNSUPPORTED_AST_NODE"
	case ErrorTypeResourceLimitExceeded:
		return "RESOURCE_LIMIT_EXCEEDED"
	case ErrorTypeTypeMismatch:
		return "TYPE_MISMATCH"
	case ErrorTypeInputNotFound:
		return "INPUT_NOT_FOUND"
	case ErrorTypeBackendError:
		return "BACKEND_ERROR"
	case ErrorTypeInvalidIP:
		return "INVALID_IP"
	case ErrorTypeStackUnderflow:
		return "STACK_UNDERFLOW"
	case ErrorTypeUnhandledOpCode:
		return "UNHANDLED_OPCODE"
	case ErrorTypeRecipeConversionError:
		return "RECIPE_CONVERSION_ERROR"
	default:
		return "UNKNOWN"
	}
}

// FlowError is the single error type produced anywhere in the pipeline. Only
// the fields relevant to Type are populated; the rest stay at zero value.
type FlowError struct {
	Type ErrorType `json:"type"`

	Message string `json:"message,omitempty"`
	Details string `json:"details,omitempty"`

	// Compile-stage detail
	NodeID       string `json:"node_id,omitempty"`
	SourceID     string `json:"source_id,omitempty"`
	TargetNode   string `json:"target_node,omitempty"`
	TargetHandle string `json:"target_handle,omitempty"`
	TypeName     string `json:"type_name,omitempty"`

	// Evaluation-stage detail
	Operation string `json:"operation,omitempty"`
	Expected  string `json:"expected,omitempty"`
	Found     string `json:"found,omitempty"`

	// VM-stage detail
	InstructionPointer *int `json:"ip,omitempty"`

	Cause error `json:"-"`
}

func (e *FlowError) Error() string {
	switch e.Type {
	case ErrorTypeNodeNotFound:
		return fmt.Sprintf("node not found: %q referenced from %q", e.NodeID, e.SourceID)
	case ErrorTypeInvalidNodeType:
		return fmt.Sprintf("node %q has unknown operation type %q", e.NodeID, e.TypeName)
	case ErrorTypeConnectionError:
		return fmt.Sprintf("connection error at %s.%s: %s", e.TargetNode, e.TargetHandle, e.Message)
	case ErrorTypeQualityTriggerNodeNotFound:
		return "flow has no setQualityNode"
	case ErrorTypeJSONParseError:
		return fmt.Sprintf("json parse error: %s", e.Message)
	case ErrorTypeInvalidLogic:
		return fmt.Sprintf("invalid logic: %s", e.Message)
	case ErrorTypeUnsupportedAstNode:
		return fmt.Sprintf("unsupported AST node: %s", e.Message)
	case ErrorTypeResourceLimitExceeded:
		return fmt.Sprintf("resource limit exceeded: %s", e.Message)
	case ErrorTypeTypeMismatch:
		return fmt.Sprintf("type mismatch in %q: expected %s, found %s", e.Operation, e.Expected, e.Found)
	case ErrorTypeInputNotFound:
		return fmt.Sprintf("input not found: %s", e.Message)
	case ErrorTypeBackendError:
		return fmt.Sprintf("backend error: %s", e.Message)
	case ErrorTypeInvalidIP:
		if e.InstructionPointer != nil {
			return fmt.Sprintf("invalid instruction pointer: %d", *e.InstructionPointer)
		}
		return "invalid instruction pointer"
	case ErrorTypeStackUnderflow:
		return "stack underflow during VM execution"
	case ErrorTypeUnhandledOpCode:
		return fmt.Sprintf("unhandled opcode: %s", e.Message)
	case ErrorTypeRecipeConversionError:
		return fmt.Sprintf("recipe conversion error: %s", e.Message)
	default:
		return fmt.Sprintf("unknown error: %s", e.Message)
	}
}

func (e *FlowError) Unwrap() error {
	return e.Cause
}

func (e *FlowError) Is(target error) bool {
	other, ok := target.(*FlowError)
	if !ok {
		return false
	}
	return e.Type == other.Type
}

func New(errType ErrorType, message string) *FlowError {
	return &FlowError{Type: errType, Message: message}
}

func Wrap(errType ErrorType, message string, cause error) *FlowError {
	return &FlowError{Type: errType, Message: message, Cause: cause}
}

func NewNodeNotFound(missingID, sourceID string) *FlowError {
	return &FlowError{Type: ErrorTypeNodeNotFound, NodeID: missingID, SourceID: sourceID}
}

func NewInvalidNodeType(nodeID, typeName string) *FlowError {
	return &FlowError{Type: ErrorTypeInvalidNodeType, NodeID: nodeID, TypeName: typeName}
}

func NewConnectionError(targetNode, targetHandle, message string) *FlowError {
	return &FlowError{
		Type:         ErrorTypeConnectionError,
		TargetNode:   targetNode,
		TargetHandle: targetHandle,
		Message:      message,
	}
}

func NewQualityTriggerNodeNotFound() *FlowError {
	return New(ErrorTypeQualityTriggerNodeNotFound, "")
}

func NewJSONParseError(message string) *FlowError {
	return New(ErrorTypeJSONParseError, message)
}

func NewInvalidLogic(message string) *FlowError {
	return New(ErrorTypeInvalidLogic, message)
}

func NewUnsupportedAstNode(message string) *FlowError {
	return New(ErrorTypeUnsupportedAstNode, message)
}

func NewResourceLimitExceeded(message string) *FlowError {
	return New(ErrorTypeResourceLimitExceeded, message)
}

func NewTypeMismatch(operation, expected, found string) *FlowError {
	return &FlowError{
		Type:      ErrorTypeTypeMismatch,
		Operation: operation,
		Expected:  expected,
		Found:     found,
	}
}

func NewInputNotFound(nameOrEventDotField string) *FlowError {
	return New(ErrorTypeInputNotFound, nameOrEventDotField)
}

func NewBackendError(message string) *FlowError {
	return New(ErrorTypeBackendError, message)
}

func NewInvalidIP(ip int) *FlowError {
	return &FlowError{Type: ErrorTypeInvalidIP, InstructionPointer: &ip}
}

func NewStackUnderflow() *FlowError {
	return New(ErrorTypeStackUnderflow, "")
}

func NewUnhandledOpCode(message string) *FlowError {
	return New(ErrorTypeUnhandledOpCode, message)
}

func NewRecipeConversionError(message string) *FlowError {
	return New(ErrorTypeRecipeConversionError, message)
}

func WrapRecipeConversionError(err error) *FlowError {
	if err == nil {
		return nil
	}
	return Wrap(ErrorTypeRecipeConversionError, err.Error(), err)
}
