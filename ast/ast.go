// Copyright © 2024 The ELPS authors

// Package ast defines the arena-allocated JavaScript syntax tree shared by the
// parser, the semantic analyzer, the linter, the formatter and the language
// server.
//
// Every node lives in a single append-only Arena and is addressed by a NodeID.
// Nodes are a flat tagged struct: Kind selects the meaning of the generic
// child slots A, B, C, D and List. The table below documents the slot layout
// for each kind; consumers switch on Kind exhaustively rather than relying on
// per-kind Go types.
//
//	Program                  List=body
//	ExpressionStatement      A=expression (FlagDirective for prologue strings)
//	BlockStatement           List=body
//	VariableDeclaration      Op=var|let|const, List=declarators
//	VariableDeclarator       A=pattern, B=init
//	FunctionDeclaration      A=id, B=body, List=params
//	FunctionExpression       A=id, B=body, List=params
//	ArrowFunctionExpression  B=body (block or expression), List=params
//	ClassDeclaration         A=id, B=superclass, List=members
//	ClassExpression          A=id, B=superclass, List=members
//	MethodDefinition         A=key, B=function, Op=method|get|set|constructor
//	PropertyDefinition       A=key, B=value
//	StaticBlock              List=body
//	IfStatement              A=test, B=consequent, C=alternate
//	ForStatement             A=init, B=test, C=update, D=body
//	ForInStatement           A=left, B=right, D=body
//	ForOfStatement           A=left, B=right, D=body
//	WhileStatement           A=test, D=body
//	DoWhileStatement         A=test, D=body
//	SwitchStatement          A=discriminant, List=cases
//	SwitchCase               A=test, List=consequent
//	TryStatement             A=block, B=handler, C=finalizer
//	CatchClause              A=param, B=body
//	WithStatement            A=object, D=body
//	LabeledStatement         A=label, D=body
//	BreakStatement           A=label
//	ContinueStatement        A=label
//	ReturnStatement          A=argument
//	ThrowStatement           A=argument
//	ImportDeclaration        A=source, List=specifiers
//	ImportSpecifier          A=imported, B=local
//	ImportDefaultSpecifier   B=local
//	ImportNamespaceSpecifier B=local
//	ExportNamedDeclaration   A=declaration, B=source, List=specifiers
//	ExportSpecifier          A=local, B=exported
//	ExportDefaultDeclaration A=declaration or expression
//	ExportAllDeclaration     A=exported, B=source
//	AssignmentExpression     Op, A=target, B=value
//	BinaryExpression         Op, A=left, B=right
//	LogicalExpression        Op, A=left, B=right
//	UnaryExpression          Op, A=argument
//	UpdateExpression         Op, A=argument (FlagPrefix)
//	ConditionalExpression    A=test, B=consequent, C=alternate
//	CallExpression           A=callee, List=arguments
//	NewExpression            A=callee, List=arguments
//	MemberExpression         A=object, B=property (FlagComputed, FlagOptional)
//	PrivateInExpression      A=private name, B=object
//	SequenceExpression       List=expressions
//	ArrayExpression          List=elements (NoNode marks a hole)
//	ObjectExpression         List=properties
//	Property                 A=key, B=value, C=shorthand default, Op=init|get|set
//	SpreadElement            A=argument
//	TemplateLiteral          List=expressions
//	TaggedTemplateExpression A=tag, B=quasi
//	YieldExpression          A=argument
//	AwaitExpression          A=argument
//	ImportExpression         A=source
//	ObjectPattern            List=properties (Property or RestElement)
//	ArrayPattern             List=elements
//	AssignmentPattern        A=target, B=default
//	RestElement              A=argument
//	JSXElement               A=name, List=attributes, B=children holder
//	JSXFragment              List=children
//	JSXAttribute             A=name, B=value
//	JSXSpreadAttribute       A=argument
//	JSXExpressionContainer   A=expression
//	JSXMemberExpression      A=object, B=property
//	JSXChildren              List=children
//
// Leaves (Identifier, BindingIdentifier, IdentifierName, LabelIdentifier,
// PrivateIdentifier, JSXIdentifier and all literals) carry their text in Name.
package ast

import "fmt"

// Kind is the tag of a Node.
type Kind uint8

const (
	Invalid Kind = iota

	ProgramNode

	// Statements
	ExpressionStatement
	BlockStatement
	EmptyStatement
	DebuggerStatement
	VariableDeclaration
	VariableDeclarator
	FunctionDeclaration
	ClassDeclaration
	IfStatement
	ForStatement
	ForInStatement
	ForOfStatement
	WhileStatement
	DoWhileStatement
	SwitchStatement
	SwitchCase
	TryStatement
	CatchClause
	WithStatement
	LabeledStatement
	BreakStatement
	ContinueStatement
	ReturnStatement
	ThrowStatement

	// Modules
	ImportDeclaration
	ImportSpecifier
	ImportDefaultSpecifier
	ImportNamespaceSpecifier
	ExportNamedDeclaration
	ExportSpecifier
	ExportDefaultDeclaration
	ExportAllDeclaration

	// Expressions
	Identifier
	ThisExpression
	Super
	StringLiteral
	NumericLiteral
	BigIntLiteral
	BooleanLiteral
	NullLiteral
	RegExpLiteral
	TemplateLiteral
	TaggedTemplateExpression
	ArrayExpression
	ObjectExpression
	Property
	SpreadElement
	FunctionExpression
	ArrowFunctionExpression
	ClassExpression
	UnaryExpression
	UpdateExpression
	BinaryExpression
	LogicalExpression
	AssignmentExpression
	ConditionalExpression
	CallExpression
	NewExpression
	MemberExpression
	PrivateInExpression
	SequenceExpression
	YieldExpression
	AwaitExpression
	MetaProperty
	ImportExpression

	// Classes
	MethodDefinition
	PropertyDefinition
	StaticBlock

	// Names that never resolve
	IdentifierName
	LabelIdentifier
	PrivateIdentifier

	// Patterns
	BindingIdentifier
	ObjectPattern
	ArrayPattern
	AssignmentPattern
	RestElement

	// JSX
	JSXElement
	JSXFragment
	JSXAttribute
	JSXSpreadAttribute
	JSXExpressionContainer
	JSXIdentifier
	JSXMemberExpression
	JSXText
	JSXChildren

	numKinds
)

var kindNames = [numKinds]string{
	Invalid:                  "Invalid",
	ProgramNode:              "Program",
	ExpressionStatement:      "ExpressionStatement",
	BlockStatement:           "BlockStatement",
	EmptyStatement:           "EmptyStatement",
	DebuggerStatement:        "DebuggerStatement",
	VariableDeclaration:      "VariableDeclaration",
	VariableDeclarator:       "VariableDeclarator",
	FunctionDeclaration:      "FunctionDeclaration",
	ClassDeclaration:         "ClassDeclaration",
	IfStatement:              "IfStatement",
	ForStatement:             "ForStatement",
	ForInStatement:           "ForInStatement",
	ForOfStatement:           "ForOfStatement",
	WhileStatement:           "WhileStatement",
	DoWhileStatement:         "DoWhileStatement",
	SwitchStatement:          "SwitchStatement",
	SwitchCase:               "SwitchCase",
	TryStatement:             "TryStatement",
	CatchClause:              "CatchClause",
	WithStatement:            "WithStatement",
	LabeledStatement:         "LabeledStatement",
	BreakStatement:           "BreakStatement",
	ContinueStatement:        "ContinueStatement",
	ReturnStatement:          "ReturnStatement",
	ThrowStatement:           "ThrowStatement",
	ImportDeclaration:        "ImportDeclaration",
	ImportSpecifier:          "ImportSpecifier",
	ImportDefaultSpecifier:   "ImportDefaultSpecifier",
	ImportNamespaceSpecifier: "ImportNamespaceSpecifier",
	ExportNamedDeclaration:   "ExportNamedDeclaration",
	ExportSpecifier:          "ExportSpecifier",
	ExportDefaultDeclaration: "ExportDefaultDeclaration",
	ExportAllDeclaration:     "ExportAllDeclaration",
	Identifier:               "Identifier",
	ThisExpression:           "ThisExpression",
	Super:                    "Super",
	StringLiteral:            "StringLiteral",
	NumericLiteral:           "NumericLiteral",
	BigIntLiteral:            "BigIntLiteral",
	BooleanLiteral:           "BooleanLiteral",
	NullLiteral:              "NullLiteral",
	RegExpLiteral:            "RegExpLiteral",
	TemplateLiteral:          "TemplateLiteral",
	TaggedTemplateExpression: "TaggedTemplateExpression",
	ArrayExpression:          "ArrayExpression",
	ObjectExpression:         "ObjectExpression",
	Property:                 "Property",
	SpreadElement:            "SpreadElement",
	FunctionExpression:       "FunctionExpression",
	ArrowFunctionExpression:  "ArrowFunctionExpression",
	ClassExpression:          "ClassExpression",
	UnaryExpression:          "UnaryExpression",
	UpdateExpression:         "UpdateExpression",
	BinaryExpression:         "BinaryExpression",
	LogicalExpression:        "LogicalExpression",
	AssignmentExpression:     "AssignmentExpression",
	ConditionalExpression:    "ConditionalExpression",
	CallExpression:           "CallExpression",
	NewExpression:            "NewExpression",
	MemberExpression:         "MemberExpression",
	PrivateInExpression:      "PrivateInExpression",
	SequenceExpression:       "SequenceExpression",
	YieldExpression:          "YieldExpression",
	AwaitExpression:          "AwaitExpression",
	MetaProperty:             "MetaProperty",
	ImportExpression:         "ImportExpression",
	MethodDefinition:         "MethodDefinition",
	PropertyDefinition:       "PropertyDefinition",
	StaticBlock:              "StaticBlock",
	IdentifierName:           "IdentifierName",
	LabelIdentifier:          "LabelIdentifier",
	PrivateIdentifier:        "PrivateIdentifier",
	BindingIdentifier:        "BindingIdentifier",
	ObjectPattern:            "ObjectPattern",
	ArrayPattern:             "ArrayPattern",
	AssignmentPattern:        "AssignmentPattern",
	RestElement:              "RestElement",
	JSXElement:               "JSXElement",
	JSXFragment:              "JSXFragment",
	JSXAttribute:             "JSXAttribute",
	JSXSpreadAttribute:       "JSXSpreadAttribute",
	JSXExpressionContainer:   "JSXExpressionContainer",
	JSXIdentifier:            "JSXIdentifier",
	JSXMemberExpression:      "JSXMemberExpression",
	JSXText:                  "JSXText",
	JSXChildren:              "JSXChildren",
}

func (k Kind) String() string {
	if k >= numKinds {
		return fmt.Sprintf("Kind(%d)", uint8(k))
	}
	return kindNames[k]
}

// IsFunction reports whether k is one of the three function forms.
func (k Kind) IsFunction() bool {
	return k == FunctionDeclaration || k == FunctionExpression || k == ArrowFunctionExpression
}

// IsClass reports whether k is a class declaration or expression.
func (k Kind) IsClass() bool {
	return k == ClassDeclaration || k == ClassExpression
}

// IsLoop reports whether k is an iteration statement.
func (k Kind) IsLoop() bool {
	switch k {
	case ForStatement, ForInStatement, ForOfStatement, WhileStatement, DoWhileStatement:
		return true
	}
	return false
}

// Flags carry boolean node attributes.
type Flags uint16

const (
	FlagAsync Flags = 1 << iota
	FlagGenerator
	FlagStatic
	FlagComputed
	FlagShorthand
	FlagOptional
	FlagPrefix
	FlagExpressionBody
	FlagMethod
	FlagDirective
	FlagUseStrict
	FlagTypeOnly
	FlagDelegate
	FlagAwait
	FlagParenthesized
)

// Has reports whether all bits of mask are set.
func (f Flags) Has(mask Flags) bool {
	return f&mask == mask
}

// Span is a half-open byte range [Start, End) into the source text.
type Span struct {
	Start int
	End   int
}

// Contains reports whether offset falls inside the span.
func (s Span) Contains(offset int) bool {
	return s.Start <= offset && offset < s.End
}

// Len returns the number of bytes covered.
func (s Span) Len() int {
	return s.End - s.Start
}

func (s Span) String() string {
	return fmt.Sprintf("[%d,%d)", s.Start, s.End)
}

// Node is a single syntax tree node. See the package documentation for the
// meaning of the child slots per Kind.
type Node struct {
	Kind  Kind
	Flags Flags
	Span  Span
	Op    string
	Name  string
	A     NodeID
	B     NodeID
	C     NodeID
	D     NodeID
	List  []NodeID
}
