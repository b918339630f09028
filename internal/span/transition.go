package span

import (
	"strconv"
	"strings"

	"spanres/internal/syntax"
)

// TransitionKind selects the syntax primitive a Transition uses.
type TransitionKind uint8

const (
	// NamedField fetches a syntactically named child node.
	NamedField TransitionKind = iota + 1
	// IndexedChild fetches the i-th element of an ordered child list.
	IndexedChild
	// NamedToken fetches a leaf token by role. Nothing can follow it.
	NamedToken
)

func (k TransitionKind) String() string {
	switch k {
	case NamedField:
		return "field"
	case IndexedChild:
		return "index"
	case NamedToken:
		return "token"
	default:
		return "unknown"
	}
}

// Transition is one declarative narrowing step. It carries the shape it is
// statically expected to reach; resolution checks the concrete node against it.
type Transition struct {
	Kind   TransitionKind
	Name   string // NamedField, NamedToken
	Index  int    // IndexedChild
	Yields syntax.Kind
}

func FieldStep(name string, yields syntax.Kind) Transition {
	return Transition{Kind: NamedField, Name: name, Yields: yields}
}

func ChildStep(index int, yields syntax.Kind) Transition {
	return Transition{Kind: IndexedChild, Index: index, Yields: yields}
}

func TokenStep(name string) Transition {
	return Transition{Kind: NamedToken, Name: name}
}

func (t Transition) String() string {
	switch t.Kind {
	case NamedField:
		return "." + t.Name
	case IndexedChild:
		return "[" + strconv.Itoa(t.Index) + "]"
	case NamedToken:
		return "$" + t.Name
	default:
		return "?"
	}
}

// Chain is a root plus an ordered list of transitions. Values are immutable:
// Append returns a new chain and never writes into the receiver's steps, so
// chains sharing a prefix may be extended independently.
type Chain struct {
	root  ChainInitiator
	steps []Transition
}

// NewChain starts a chain at root.
func NewChain(root ChainInitiator) Chain {
	return Chain{root: root}
}

func (c Chain) Root() ChainInitiator { return c.root }

// Len returns the number of transitions.
func (c Chain) Len() int { return len(c.steps) }

// Step returns the i-th transition, or false when i is out of range.
func (c Chain) Step(i int) (Transition, bool) {
	if i < 0 || i >= len(c.steps) {
		return Transition{}, false
	}
	return c.steps[i], true
}

// Steps returns a copy of the transitions.
func (c Chain) Steps() []Transition {
	out := make([]Transition, len(c.steps))
	copy(out, c.steps)
	return out
}

// Append returns c extended by t.
func (c Chain) Append(t Transition) Chain {
	steps := make([]Transition, len(c.steps)+1)
	copy(steps, c.steps)
	steps[len(c.steps)] = t
	return Chain{root: c.root, steps: steps}
}

// Shape is the node kind the chain statically ends at; KindInvalid after a token.
func (c Chain) Shape() syntax.Kind {
	if n := len(c.steps); n > 0 {
		return c.steps[n-1].Yields
	}
	if c.root == nil {
		return syntax.KindInvalid
	}
	return c.root.Shape()
}

// Equal reports whether two chains have equal roots and identical steps.
func (c Chain) Equal(other Chain) bool {
	if c.root != other.root || len(c.steps) != len(other.steps) {
		return false
	}
	for i := range c.steps {
		if c.steps[i] != other.steps[i] {
			return false
		}
	}
	return true
}

func (c Chain) String() string {
	var sb strings.Builder
	if c.root == nil {
		sb.WriteString("<nil>")
	} else {
		sb.WriteString(c.root.String())
	}
	for _, st := range c.steps {
		sb.WriteByte(' ')
		sb.WriteString(st.String())
	}
	return sb.String()
}
