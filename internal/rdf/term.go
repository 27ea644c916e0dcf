package rdf

import (
	"fmt"
	"strings"
)

// Term is a single RDF term in object position: a URI reference, a typed
// literal, or a SPARQL variable.
type Term interface {
	// N3 renders the term in N-Triples/SPARQL syntax.
	N3() string
}

// URIRef is a fully resolved URI term.
type URIRef string

func (u URIRef) N3() string {
	return "<" + string(u) + ">"
}

// String returns the raw URI without angle brackets.
func (u URIRef) String() string {
	return string(u)
}

// Literal is a string value with an optional datatype URI.
type Literal struct {
	Value    string
	Datatype URIRef
}

// NewLiteral creates a plain literal without a datatype.
func NewLiteral(value string) Literal {
	return Literal{Value: value}
}

// NewTypedLiteral creates a literal tagged with a datatype URI.
func NewTypedLiteral(value string, datatype URIRef) Literal {
	return Literal{Value: value, Datatype: datatype}
}

func (l Literal) N3() string {
	s := `"` + escapeLiteral(l.Value) + `"`
	if l.Datatype != "" {
		s += "^^" + l.Datatype.N3()
	}
	return s
}

// Variable is an unbound SPARQL variable, used in DELETE/WHERE patterns to
// match any value of a property.
type Variable string

func (v Variable) N3() string {
	return "?" + string(v)
}

// Tuple is one (predicate, object) statement about an implicit subject node.
type Tuple struct {
	Predicate URIRef
	Object    Term
}

func (t Tuple) String() string {
	return fmt.Sprintf("%s %s", t.Predicate.N3(), t.Object.N3())
}

// SPARQLUpdate renders delete, insert and where tuples as an
// application/sparql-update body, suitable for a PATCH against a Fedora node.
// Where patterns are joined with UNION so each wildcard delete matches
// independently.
func SPARQLUpdate(deletes, inserts, wheres []Tuple) string {
	var b strings.Builder

	b.WriteString("DELETE {")
	for _, t := range deletes {
		fmt.Fprintf(&b, "\n\t<> %s %s .", t.Predicate.N3(), t.Object.N3())
	}
	b.WriteString("\n} INSERT {")
	for _, t := range inserts {
		fmt.Fprintf(&b, "\n\t<> %s %s .", t.Predicate.N3(), t.Object.N3())
	}
	b.WriteString("\n} WHERE {")
	for i, t := range wheres {
		if i > 0 {
			b.WriteString("\n\tUNION")
		}
		fmt.Fprintf(&b, "\n\t{<> %s %s}", t.Predicate.N3(), t.Object.N3())
	}
	b.WriteString("\n}")

	return b.String()
}

// Turtle renders tuples as a text/turtle document about the empty-URI subject,
// used as the body when creating a node with initial properties.
func Turtle(tuples []Tuple) string {
	var b strings.Builder
	for _, t := range tuples {
		fmt.Fprintf(&b, "<> %s %s .\n", t.Predicate.N3(), t.Object.N3())
	}
	return b.String()
}

func escapeLiteral(s string) string {
	r := strings.NewReplacer(
		`\`, `\\`,
		`"`, `\"`,
		"\n", `\n`,
		"\r", `\r`,
		"\t", `\t`,
	)
	return r.Replace(s)
}
