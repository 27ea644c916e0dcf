// Package services implements the SSPAD core: property-tuple building, the
// repository transaction coordinator, and the transactional asset ingestion
// workflow.
package services

import (
	"context"
	"io"

	"github.com/aic-collections/sspad/internal/rdf"
)

// Repository is the LAKE connector surface consumed by the workflow.
type Repository interface {
	OpenTransaction(ctx context.Context) (string, error)
	CommitTransaction(ctx context.Context, txURI string) error
	RollbackTransaction(ctx context.Context, txURI string) error
	CreateOrUpdateNode(ctx context.Context, uri, parent string, props []rdf.Tuple) (string, error)
	CreateOrUpdateDatastream(ctx context.Context, uri, fileName string, data io.Reader, mimeType string) (string, error)
	CreateOrUpdateRefDatastream(ctx context.Context, uri, ref string) (string, error)
	UpdateNodeProperties(ctx context.Context, uri string, deletes, inserts, wheres []rdf.Tuple) error
	NodeExists(ctx context.Context, uri string) (bool, error)
	DeleteNode(ctx context.Context, uri string) error
	GetBinary(ctx context.Context, uri string) ([]byte, error)
	BaseURL() string
}

// Triplestore is the SPARQL index surface consumed by lookups.
type Triplestore interface {
	Ask(ctx context.Context, q string) (bool, error)
	Select(ctx context.Context, q string) ([]map[string]string, error)
	NodeExistsByProperty(ctx context.Context, predicate rdf.URIRef, value rdf.Term) (bool, error)
	NodeURIByProperty(ctx context.Context, predicate rdf.URIRef, value rdf.Term) (string, error)
	NodeURIByProperties(ctx context.Context, tuples []rdf.Tuple) (string, error)
}

// UIDMinter generates persistent UIDs.
type UIDMinter interface {
	Mint(ctx context.Context, pfx, mid string) (string, error)
}

// Resizer generates master derivatives from source images.
type Resizer interface {
	ResizeFromData(ctx context.Context, data []byte, fileName string, maxWidth, maxHeight int) ([]byte, error)
	ResizeFromURL(ctx context.Context, url string, maxWidth, maxHeight int) ([]byte, error)
}
