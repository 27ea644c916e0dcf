package services

import (
	"context"
	"strings"

	"github.com/aic-collections/sspad/internal/apperror"
	"github.com/aic-collections/sspad/internal/rdf"
	"github.com/aic-collections/sspad/internal/rdf/ns"
)

// Tags live under a fixed support tree, one container node per category.
const tagsPath = "support/tags/"

// Tag is one tag row returned by listings.
type Tag struct {
	URI      string `json:"uri"`
	Label    string `json:"label"`
	Category string `json:"category,omitempty"`
}

// TagService manages tag categories and tags. Tags are shared nodes: assets
// reference them, so deleting a tag from an asset only removes the
// relationship.
type TagService struct {
	repo   Repository
	tstore Triplestore
}

func NewTagService(repo Repository, tstore Triplestore) *TagService {
	return &TagService{repo: repo, tstore: tstore}
}

// ListCategories returns every tag category.
func (s *TagService) ListCategories(ctx context.Context) ([]Tag, error) {
	q := "SELECT ?uri ?label WHERE { ?uri a " + ns.TypeTagCat.N3() +
		" ; " + ns.Label.N3() + " ?label . }"
	rows, err := s.tstore.Select(ctx, q)
	if err != nil {
		return nil, apperror.External(err, "listing tag categories")
	}
	cats := make([]Tag, 0, len(rows))
	for _, row := range rows {
		cats = append(cats, Tag{URI: row["uri"], Label: row["label"]})
	}
	return cats, nil
}

// CategoryURI resolves a category label to its node URI, or "" if absent.
func (s *TagService) CategoryURI(ctx context.Context, label string) (string, error) {
	uri, err := s.tstore.NodeURIByProperties(ctx, []rdf.Tuple{
		{Predicate: ns.RDFType, Object: ns.TypeTagCat},
		{Predicate: ns.Label, Object: rdf.NewLiteral(label)},
	})
	if err != nil {
		return "", apperror.External(err, "resolving tag category %s", label)
	}
	return uri, nil
}

// CreateCategory creates a tag category node. Duplicates conflict.
func (s *TagService) CreateCategory(ctx context.Context, label string) (string, error) {
	if label == "" {
		return "", apperror.BadRequest("tag category label is required")
	}
	existing, err := s.CategoryURI(ctx, label)
	if err != nil {
		return "", err
	}
	if existing != "" {
		return "", apperror.Conflict(existing, "tag category %s already exists", label)
	}
	parent := s.repo.BaseURL() + tagsPath
	uri, err := s.repo.CreateOrUpdateNode(ctx, "", parent, []rdf.Tuple{
		{Predicate: ns.RDFType, Object: ns.TypeTagCat},
		{Predicate: ns.Label, Object: rdf.NewTypedLiteral(label, ns.XSDString)},
	})
	if err != nil {
		return "", apperror.External(err, "creating tag category %s", label)
	}
	return uri, nil
}

// List returns the tags of one category, or all tags when catLabel is empty.
func (s *TagService) List(ctx context.Context, catLabel string) ([]Tag, error) {
	var b strings.Builder
	b.WriteString("SELECT ?uri ?label ?cat WHERE { ?uri a " + ns.TypeTag.N3() +
		" ; " + ns.Label.N3() + " ?label ; " + ns.Category.N3() + " ?caturi . ?caturi " +
		ns.Label.N3() + " ?cat . ")
	if catLabel != "" {
		b.WriteString("?caturi " + ns.Label.N3() + " " + rdf.NewLiteral(catLabel).N3() + " . ")
	}
	b.WriteString("}")

	rows, err := s.tstore.Select(ctx, b.String())
	if err != nil {
		return nil, apperror.External(err, "listing tags")
	}
	tags := make([]Tag, 0, len(rows))
	for _, row := range rows {
		tags = append(tags, Tag{URI: row["uri"], Label: row["label"], Category: row["cat"]})
	}
	return tags, nil
}

// TagURI resolves a tag by label within a category, or "" if absent.
func (s *TagService) TagURI(ctx context.Context, catURI, label string) (string, error) {
	uri, err := s.tstore.NodeURIByProperties(ctx, []rdf.Tuple{
		{Predicate: ns.RDFType, Object: ns.TypeTag},
		{Predicate: ns.Label, Object: rdf.NewLiteral(label)},
		{Predicate: ns.Category, Object: rdf.URIRef(catURI)},
	})
	if err != nil {
		return "", apperror.External(err, "resolving tag %s", label)
	}
	return uri, nil
}

// Create adds a tag to an existing category. The category must exist;
// duplicate tags conflict.
func (s *TagService) Create(ctx context.Context, catLabel, label string) (string, error) {
	if catLabel == "" || label == "" {
		return "", apperror.BadRequest("tag category and label are required")
	}
	catURI, err := s.CategoryURI(ctx, catLabel)
	if err != nil {
		return "", err
	}
	if catURI == "" {
		return "", apperror.NotFound("tag category %s does not exist", catLabel)
	}
	existing, err := s.TagURI(ctx, catURI, label)
	if err != nil {
		return "", err
	}
	if existing != "" {
		return "", apperror.Conflict(existing, "tag %s/%s already exists", catLabel, label)
	}
	uri, err := s.repo.CreateOrUpdateNode(ctx, "", catURI, []rdf.Tuple{
		{Predicate: ns.RDFType, Object: ns.TypeTag},
		{Predicate: ns.Label, Object: rdf.NewTypedLiteral(label, ns.XSDString)},
		{Predicate: ns.Category, Object: rdf.URIRef(catURI)},
	})
	if err != nil {
		return "", apperror.External(err, "creating tag %s/%s", catLabel, label)
	}
	return uri, nil
}

// Resolve maps a "category/label" request value to the tag's node URI,
// creating the tag on the fly when only the category exists. Values that are
// already URIs pass through untouched.
func (s *TagService) Resolve(ctx context.Context, value string) (string, error) {
	if strings.Contains(value, "://") {
		return value, nil
	}
	catLabel, label, found := strings.Cut(value, "/")
	if !found || catLabel == "" || label == "" {
		return "", apperror.BadRequest("tag value %q must be category/label or a tag URI", value)
	}
	catURI, err := s.CategoryURI(ctx, catLabel)
	if err != nil {
		return "", err
	}
	if catURI == "" {
		return "", apperror.NotFound("tag category %s does not exist", catLabel)
	}
	uri, err := s.TagURI(ctx, catURI, label)
	if err != nil {
		return "", err
	}
	if uri != "" {
		return uri, nil
	}
	return s.Create(ctx, catLabel, label)
}
