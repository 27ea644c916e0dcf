package services

import (
	"context"

	"github.com/aic-collections/sspad/internal/apperror"
	"github.com/aic-collections/sspad/internal/rdf"
	"github.com/aic-collections/sspad/internal/rdf/ns"
	"github.com/aic-collections/sspad/internal/schema"
)

// BuildResult is the outcome of translating request properties into RDF
// statements. Tag and comment values are carried out of band: the referenced
// nodes are created or deleted first and the relationship tuples backfilled
// before the SPARQL update is applied.
type BuildResult struct {
	Inserts []rdf.Tuple
	Deletes []rdf.Tuple
	Wheres  []rdf.Tuple

	InsertTags     []string
	DeleteTags     []string
	InsertComments []CommentSpec
	DeleteComments []string
}

// Empty reports whether the result carries no statements or node work at all.
func (r *BuildResult) Empty() bool {
	return len(r.Inserts) == 0 && len(r.Deletes) == 0 &&
		len(r.InsertTags) == 0 && len(r.DeleteTags) == 0 &&
		len(r.InsertComments) == 0 && len(r.DeleteComments) == 0
}

// TupleBuilder translates request property maps into insert, delete and where
// tuples for a node, resolving special relationships through the triplestore.
type TupleBuilder struct {
	tstore Triplestore
}

func NewTupleBuilder(tstore Triplestore) *TupleBuilder {
	return &TupleBuilder{tstore: tstore}
}

// Build walks the type's descriptors in declaration order and converts the
// matching insert and delete properties into tuples. initInserts seeds the
// insert list with statements the caller wants regardless of request input.
//
// A delete value of All produces a wildcard variable paired with an identical
// where pattern, removing every value of the property. Relationship values
// are resolved to node URIs via the triplestore; a missing referent is
// skipped when ignoreBrokenRels is set and rejected otherwise. Request
// properties that match no descriptor are ignored.
func (b *TupleBuilder) Build(ctx context.Context, typ *schema.Type, insertProps, deleteProps Props, initInserts []rdf.Tuple, ignoreBrokenRels bool) (*BuildResult, error) {
	res := &BuildResult{
		Inserts: append([]rdf.Tuple{}, initInserts...),
	}

	for _, d := range typ.Descriptors() {
		if dv, ok := deleteProps[d.Name]; ok {
			b.buildDeletes(res, d, dv)
		}
		if iv, ok := insertProps[d.Name]; ok {
			if err := b.buildInserts(ctx, res, typ, d, iv, ignoreBrokenRels); err != nil {
				return nil, err
			}
		}
	}

	return res, nil
}

func (b *TupleBuilder) buildDeletes(res *BuildResult, d schema.Descriptor, dv PropValue) {
	if dv.All {
		t := rdf.Tuple{Predicate: d.Predicate, Object: rdf.Variable(d.Name)}
		res.Deletes = append(res.Deletes, t)
		res.Wheres = append(res.Wheres, t)
		return
	}
	for _, value := range dv.Values {
		switch d.Name {
		case schema.PropComment:
			res.DeleteComments = append(res.DeleteComments, value)
		case schema.PropTag:
			res.DeleteTags = append(res.DeleteTags, value)
		}
		res.Deletes = append(res.Deletes, rdf.Tuple{
			Predicate: d.Predicate,
			Object:    schema.ToTerm(value, d.Kind, d.Datatype),
		})
	}
}

func (b *TupleBuilder) buildInserts(ctx context.Context, res *BuildResult, typ *schema.Type, d schema.Descriptor, iv PropValue, ignoreBrokenRels bool) error {
	if rel, ok := typ.Relationship(d.Name); ok {
		for _, value := range iv.Values {
			uri, err := b.tstore.NodeURIByProperties(ctx, []rdf.Tuple{
				{Predicate: ns.RDFType, Object: rel.NodeType},
				{Predicate: ns.CitiPkey, Object: rdf.NewLiteral(value)},
			})
			if err != nil {
				return apperror.External(err, "resolving %s %s", d.Name, value)
			}
			if uri == "" {
				if ignoreBrokenRels {
					continue
				}
				return apperror.NotFound("no node found for %s %s", d.Name, value)
			}
			res.Inserts = append(res.Inserts, rdf.Tuple{Predicate: d.Predicate, Object: rdf.URIRef(uri)})
		}
		return nil
	}

	switch d.Name {
	case schema.PropTag:
		res.InsertTags = append(res.InsertTags, iv.Values...)
	case schema.PropComment:
		res.InsertComments = append(res.InsertComments, iv.Comments...)
	default:
		for _, value := range iv.Values {
			res.Inserts = append(res.Inserts, rdf.Tuple{
				Predicate: d.Predicate,
				Object:    schema.ToTerm(value, d.Kind, d.Datatype),
			})
		}
	}
	return nil
}
