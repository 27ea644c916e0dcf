// Package schema declares, per asset type, the request properties SSPAD
// recognizes and how each one maps to a LAKE predicate and RDF term.
package schema

import (
	"fmt"

	"github.com/aic-collections/sspad/internal/rdf"
	"github.com/aic-collections/sspad/internal/rdf/ns"
)

// TermKind selects how a request value is converted into an RDF term.
type TermKind string

const (
	KindLiteral  TermKind = "literal"
	KindURI      TermKind = "uri"
	KindVariable TermKind = "variable"
)

// ToTerm converts a request-supplied value into an RDF term. For KindURI the
// value must already be a fully resolved URI; relationship lookup happens
// upstream in the tuple builder. An unknown kind is a misconfigured
// descriptor and panics.
func ToTerm(value string, kind TermKind, datatype rdf.URIRef) rdf.Term {
	switch kind {
	case KindURI:
		return rdf.URIRef(value)
	case KindVariable:
		return rdf.Variable(value)
	case KindLiteral:
		return rdf.Literal{Value: value, Datatype: datatype}
	default:
		panic(fmt.Sprintf("schema: unknown term kind %q", kind))
	}
}

// Descriptor maps one request property name to its LAKE predicate.
type Descriptor struct {
	Name      string
	Predicate rdf.URIRef
	Kind      TermKind
	Datatype  rdf.URIRef
}

// Relationship marks a request property whose value is an external primary
// key that must be resolved to a node URI through the triplestore before
// being stored.
type Relationship struct {
	NodeType rdf.URIRef
	Prefix   string
}

// Names of the child-node collection properties. Their values are not stored
// as plain tuples: the referenced nodes are created or deleted first and the
// relationship tuples backfilled.
const (
	PropTag     = "tag"
	PropComment = "comment"
)

// DatastreamMeta is what a validator learns about an uploaded datastream.
type DatastreamMeta struct {
	Format   string
	MimeType string
	Width    int
	Height   int
}

// ValidatorFunc checks a datastream against type-specific rules.
type ValidatorFunc func(name string, data []byte) (DatastreamMeta, error)

// Type describes one asset type. The effective descriptor set is the union
// of the ancestors' sets plus the type's own, flattened at construction.
type Type struct {
	Name     string
	Prefix   string
	NodeType rdf.URIRef

	// Validate checks each uploaded datastream before ingestion.
	Validate ValidatorFunc

	// MasterMIME is the MIME type of generated master datastreams.
	MasterMIME string

	// ResizeMaster selects whether a missing master is synthesized through
	// the resize service (true) or by copying the source (false).
	ResizeMaster bool

	descriptors []Descriptor
	byName      map[string]Descriptor
	rels        map[string]Relationship
}

func newType(parent *Type, t Type, own []Descriptor, rels map[string]Relationship) *Type {
	if parent != nil {
		t.descriptors = append(t.descriptors, parent.descriptors...)
		for k, v := range parent.rels {
			if t.rels == nil {
				t.rels = map[string]Relationship{}
			}
			t.rels[k] = v
		}
	}
	t.descriptors = append(t.descriptors, own...)
	t.byName = make(map[string]Descriptor, len(t.descriptors))
	for _, d := range t.descriptors {
		t.byName[d.Name] = d
	}
	if t.rels == nil {
		t.rels = map[string]Relationship{}
	}
	for k, v := range rels {
		t.rels[k] = v
	}
	return &t
}

// Descriptors returns the flattened descriptor set, ancestors first.
func (t *Type) Descriptors() []Descriptor {
	return t.descriptors
}

// Descriptor looks up a descriptor by request property name.
func (t *Type) Descriptor(name string) (Descriptor, bool) {
	d, ok := t.byName[name]
	return d, ok
}

// Relationship looks up the special-relationship mapping for a property.
func (t *Type) Relationship(name string) (Relationship, bool) {
	r, ok := t.rels[name]
	return r, ok
}

// Path is the repository path between root and nodes of this type.
func (t *Type) Path() string {
	if t.Prefix == "" {
		return "resources/assets/"
	}
	return "resources/assets/" + t.Prefix + "/"
}

// BaseTuples are the initial properties set on every new node of this type.
func (t *Type) BaseTuples() []rdf.Tuple {
	return []rdf.Tuple{
		{Predicate: ns.RDFType, Object: t.NodeType},
	}
}

// Resource is the base type for all LAKE nodes with metadata.
var Resource = newType(nil, Type{
	Name:     "resource",
	NodeType: ns.TypeResource,
}, []Descriptor{
	{Name: "type", Predicate: ns.RDFType, Kind: KindURI},
	{Name: "label", Predicate: ns.Label, Kind: KindLiteral, Datatype: ns.XSDString},
	{Name: "title", Predicate: ns.DCTitle, Kind: KindLiteral, Datatype: ns.XSDString},
	{Name: "pref_label", Predicate: ns.PrefLabel, Kind: KindLiteral, Datatype: ns.XSDString},
}, nil)

// Asset is the base type for ingestable digital objects.
var Asset = newType(Resource, Type{
	Name:     "asset",
	NodeType: ns.AICAsset,
}, []Descriptor{
	{Name: "legacy_uid", Predicate: ns.LegacyUID, Kind: KindLiteral, Datatype: ns.XSDString},
	{Name: "batch_uid", Predicate: ns.BatchUID, Kind: KindLiteral, Datatype: ns.XSDString},
	{Name: PropTag, Predicate: ns.HasTag, Kind: KindURI},
	{Name: PropComment, Predicate: ns.HasComment, Kind: KindURI},
	{Name: "citi_obj_pkey", Predicate: ns.Represents, Kind: KindURI},
	{Name: "citi_agent_pkey", Predicate: ns.Represents, Kind: KindURI},
	{Name: "citi_place_pkey", Predicate: ns.Represents, Kind: KindURI},
	{Name: "citi_exhib_pkey", Predicate: ns.Represents, Kind: KindURI},
	{Name: "pref_obj_pkey", Predicate: ns.IsPrimaryRepresentationOf, Kind: KindURI},
	{Name: "pref_agent_pkey", Predicate: ns.IsPrimaryRepresentationOf, Kind: KindURI},
	{Name: "pref_place_pkey", Predicate: ns.IsPrimaryRepresentationOf, Kind: KindURI},
	{Name: "pref_exhib_pkey", Predicate: ns.IsPrimaryRepresentationOf, Kind: KindURI},
	{Name: "has_source", Predicate: ns.HasSource, Kind: KindURI},
	{Name: "has_master", Predicate: ns.HasMaster, Kind: KindURI},
	{Name: "has_instance", Predicate: ns.HasInstance, Kind: KindURI},
}, map[string]Relationship{
	"citi_obj_pkey":   {NodeType: ns.AICObject, Prefix: "OB"},
	"pref_obj_pkey":   {NodeType: ns.AICObject, Prefix: "OB"},
	"citi_agent_pkey": {NodeType: ns.AICActor, Prefix: "AC"},
	"pref_agent_pkey": {NodeType: ns.AICActor, Prefix: "AC"},
	"citi_place_pkey": {NodeType: ns.AICPlace, Prefix: "PL"},
	"pref_place_pkey": {NodeType: ns.AICPlace, Prefix: "PL"},
	"citi_exhib_pkey": {NodeType: ns.AICEvent, Prefix: "EV"},
	"pref_exhib_pkey": {NodeType: ns.AICEvent, Prefix: "EV"},
})

// StaticImage is the still-image asset type.
var StaticImage = newType(Asset, Type{
	Name:         "static_image",
	Prefix:       "SI",
	NodeType:     ns.TypeStillImage,
	Validate:     validateImage,
	MasterMIME:   "image/jpeg",
	ResizeMaster: true,
}, []Descriptor{
	{Name: "citi_imgdbank_pkey", Predicate: ns.CitiImgDBankUID, Kind: KindLiteral, Datatype: ns.XSDString},
}, nil)

// Text is the text asset type. Validation is permissive and the master is a
// plain copy of the source.
var Text = newType(Asset, Type{
	Name:       "text",
	Prefix:     "TX",
	NodeType:   ns.TypeText,
	Validate:   validateText,
	MasterMIME: "text/plain",
}, nil, nil)

var registry = map[string]*Type{
	StaticImage.Name: StaticImage,
	Text.Name:        Text,
}

// ByName resolves an asset type from its request name.
func ByName(name string) (*Type, bool) {
	t, ok := registry[name]
	return t, ok
}
