package services

import (
	"context"
	"strings"

	"github.com/aic-collections/sspad/internal/apperror"
	"github.com/aic-collections/sspad/internal/rdf"
	"github.com/aic-collections/sspad/internal/rdf/ns"
	"github.com/google/uuid"
)

const (
	annotationsSegment = "/aic:annotations/"

	// DefaultCommentCategory applies when a comment arrives without one.
	DefaultCommentCategory = "General"
)

// CommentService creates and removes the comment nodes attached to assets.
// Comments are owned by their asset: each one lives under the asset's
// annotations container and is deleted outright when detached.
type CommentService struct {
	repo Repository
}

func NewCommentService(repo Repository) *CommentService {
	return &CommentService{repo: repo}
}

// Create stores a comment node under the subject's annotations container and
// returns its URI. The caller is responsible for inserting the hasComment
// relationship on the subject.
func (s *CommentService) Create(ctx context.Context, subjectURI string, spec CommentSpec) (string, error) {
	if spec.Content == "" {
		return "", apperror.BadRequest("comment content is required")
	}
	if spec.Category == "" {
		spec.Category = DefaultCommentCategory
	}

	uri := strings.TrimSuffix(subjectURI, "/") + annotationsSegment + uuid.NewString()
	props := []rdf.Tuple{
		{Predicate: ns.RDFType, Object: ns.AICComment},
		{Predicate: ns.Content, Object: rdf.NewTypedLiteral(spec.Content, ns.XSDString)},
		{Predicate: ns.Category, Object: rdf.NewTypedLiteral(spec.Category, ns.XSDString)},
	}
	created, err := s.repo.CreateOrUpdateNode(ctx, uri, "", props)
	if err != nil {
		return "", apperror.External(err, "creating comment node")
	}
	return created, nil
}

// Delete removes a comment node.
func (s *CommentService) Delete(ctx context.Context, uri string) error {
	if err := s.repo.DeleteNode(ctx, uri); err != nil {
		return apperror.External(err, "deleting comment node %s", uri)
	}
	return nil
}
