package services

import (
	"context"
	"testing"

	"github.com/aic-collections/sspad/internal/apperror"
	"github.com/aic-collections/sspad/internal/rdf"
	"github.com/aic-collections/sspad/internal/rdf/ns"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func catKey(label string) string {
	return tuplesKey([]rdf.Tuple{
		{Predicate: ns.RDFType, Object: ns.TypeTagCat},
		{Predicate: ns.Label, Object: rdf.NewLiteral(label)},
	})
}

func tagKey(catURI, label string) string {
	return tuplesKey([]rdf.Tuple{
		{Predicate: ns.RDFType, Object: ns.TypeTag},
		{Predicate: ns.Label, Object: rdf.NewLiteral(label)},
		{Predicate: ns.Category, Object: rdf.URIRef(catURI)},
	})
}

func TestCreateCategory(t *testing.T) {
	repo := newFakeRepo()
	svc := NewTagService(repo, newFakeTstore())

	uri, err := svc.CreateCategory(context.Background(), "places")
	require.NoError(t, err)
	assert.Equal(t, "http://lake/rest/support/tags/node1", uri)

	require.Len(t, repo.nodes, 1)
	assert.Contains(t, repo.nodes[0].Props, rdf.Tuple{Predicate: ns.RDFType, Object: ns.TypeTagCat})
}

func TestCreateCategoryDuplicate(t *testing.T) {
	ts := newFakeTstore()
	ts.uriByProps[catKey("places")] = "http://lake/rest/support/tags/places"
	svc := NewTagService(newFakeRepo(), ts)

	_, err := svc.CreateCategory(context.Background(), "places")
	require.Error(t, err)
	assert.Equal(t, apperror.KindConflict, apperror.KindOf(err))
	assert.Equal(t, "http://lake/rest/support/tags/places", apperror.LinkOf(err))
}

func TestCreateTagMissingCategory(t *testing.T) {
	svc := NewTagService(newFakeRepo(), newFakeTstore())

	_, err := svc.Create(context.Background(), "nowhere", "x")
	require.Error(t, err)
	assert.Equal(t, apperror.KindNotFound, apperror.KindOf(err))
}

func TestCreateTagDuplicate(t *testing.T) {
	ts := newFakeTstore()
	catURI := "http://lake/rest/support/tags/places"
	ts.uriByProps[catKey("places")] = catURI
	ts.uriByProps[tagKey(catURI, "chicago")] = catURI + "/chicago"
	svc := NewTagService(newFakeRepo(), ts)

	_, err := svc.Create(context.Background(), "places", "chicago")
	require.Error(t, err)
	assert.Equal(t, apperror.KindConflict, apperror.KindOf(err))
}

func TestCreateTag(t *testing.T) {
	ts := newFakeTstore()
	catURI := "http://lake/rest/support/tags/places"
	ts.uriByProps[catKey("places")] = catURI
	repo := newFakeRepo()
	svc := NewTagService(repo, ts)

	uri, err := svc.Create(context.Background(), "places", "chicago")
	require.NoError(t, err)
	assert.Equal(t, catURI+"/node1", uri)
	assert.Equal(t, catURI, repo.nodes[0].Parent)
	assert.Contains(t, repo.nodes[0].Props, rdf.Tuple{Predicate: ns.Category, Object: rdf.URIRef(catURI)})
}

func TestResolveExistingTag(t *testing.T) {
	ts := newFakeTstore()
	catURI := "http://lake/rest/support/tags/places"
	ts.uriByProps[catKey("places")] = catURI
	ts.uriByProps[tagKey(catURI, "chicago")] = catURI + "/chicago"
	svc := NewTagService(newFakeRepo(), ts)

	uri, err := svc.Resolve(context.Background(), "places/chicago")
	require.NoError(t, err)
	assert.Equal(t, catURI+"/chicago", uri)
}

func TestResolveCreatesMissingTag(t *testing.T) {
	ts := newFakeTstore()
	catURI := "http://lake/rest/support/tags/places"
	ts.uriByProps[catKey("places")] = catURI
	repo := newFakeRepo()
	svc := NewTagService(repo, ts)

	uri, err := svc.Resolve(context.Background(), "places/evanston")
	require.NoError(t, err)
	assert.Equal(t, catURI+"/node1", uri)
}

func TestResolvePassesThroughURIs(t *testing.T) {
	svc := NewTagService(newFakeRepo(), newFakeTstore())

	uri, err := svc.Resolve(context.Background(), "http://lake/rest/support/tags/places/chicago")
	require.NoError(t, err)
	assert.Equal(t, "http://lake/rest/support/tags/places/chicago", uri)
}

func TestResolveRejectsBareLabel(t *testing.T) {
	svc := NewTagService(newFakeRepo(), newFakeTstore())

	_, err := svc.Resolve(context.Background(), "chicago")
	require.Error(t, err)
	assert.Equal(t, apperror.KindBadRequest, apperror.KindOf(err))
}
