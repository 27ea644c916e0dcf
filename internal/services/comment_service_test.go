package services

import (
	"context"
	"strings"
	"testing"

	"github.com/aic-collections/sspad/internal/apperror"
	"github.com/aic-collections/sspad/internal/rdf"
	"github.com/aic-collections/sspad/internal/rdf/ns"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCommentCreate(t *testing.T) {
	repo := newFakeRepo()
	svc := NewCommentService(repo)

	subject := "http://lake/rest/resources/assets/TX/node1"
	uri, err := svc.Create(context.Background(), subject, CommentSpec{Category: "Conservation", Content: "verso damaged"})
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(uri, subject+"/aic:annotations/"))
	require.Len(t, repo.nodes, 1)
	assert.Contains(t, repo.nodes[0].Props, rdf.Tuple{Predicate: ns.RDFType, Object: ns.AICComment})
	assert.Contains(t, repo.nodes[0].Props, rdf.Tuple{
		Predicate: ns.Content,
		Object:    rdf.NewTypedLiteral("verso damaged", ns.XSDString),
	})
	assert.Contains(t, repo.nodes[0].Props, rdf.Tuple{
		Predicate: ns.Category,
		Object:    rdf.NewTypedLiteral("Conservation", ns.XSDString),
	})
}

func TestCommentCreateDefaultsCategory(t *testing.T) {
	repo := newFakeRepo()
	svc := NewCommentService(repo)

	_, err := svc.Create(context.Background(), "http://lake/rest/a", CommentSpec{Content: "hi"})
	require.NoError(t, err)
	assert.Contains(t, repo.nodes[0].Props, rdf.Tuple{
		Predicate: ns.Category,
		Object:    rdf.NewTypedLiteral(DefaultCommentCategory, ns.XSDString),
	})
}

func TestCommentCreateRequiresContent(t *testing.T) {
	svc := NewCommentService(newFakeRepo())

	_, err := svc.Create(context.Background(), "http://lake/rest/a", CommentSpec{})
	require.Error(t, err)
	assert.Equal(t, apperror.KindBadRequest, apperror.KindOf(err))
}

func TestCommentDelete(t *testing.T) {
	repo := newFakeRepo()
	svc := NewCommentService(repo)

	uri := "http://lake/rest/a/aic:annotations/c1"
	require.NoError(t, svc.Delete(context.Background(), uri))
	assert.Equal(t, []string{uri}, repo.deleted)
}
