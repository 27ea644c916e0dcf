package connectors

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/aic-collections/sspad/internal/config"
	"github.com/aic-collections/sspad/internal/rdf"
)

// Tstore talks to the SPARQL endpoint of the triplestore that indexes LAKE.
type Tstore struct {
	baseURL string
	client  *http.Client
}

func NewTstore(cfg *config.Config) *Tstore {
	return &Tstore{
		baseURL: cfg.TstoreBaseURL,
		client:  &http.Client{},
	}
}

func (t *Tstore) query(ctx context.Context, q, accept string) ([]byte, error) {
	u := t.baseURL + "?query=" + url.QueryEscape(q)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, err
	}
	if auth := authorization(ctx); auth != "" {
		req.Header.Set("Authorization", auth)
	}
	req.Header.Set("Accept", accept)

	res, err := t.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("tstore query: %w", err)
	}
	defer res.Body.Close()

	body, err := io.ReadAll(res.Body)
	if err != nil {
		return nil, err
	}
	if res.StatusCode > 399 {
		return nil, fmt.Errorf("tstore query: status %d: %s", res.StatusCode, strings.TrimSpace(string(body)))
	}
	return body, nil
}

// Ask runs a SPARQL ASK query.
func (t *Tstore) Ask(ctx context.Context, q string) (bool, error) {
	body, err := t.query(ctx, q, "text/boolean, */*;q=0.5")
	if err != nil {
		return false, err
	}
	return strings.TrimSpace(string(body)) == "true", nil
}

// sparqlResults is the application/sparql-results+json envelope.
type sparqlResults struct {
	Results struct {
		Bindings []map[string]struct {
			Value string `json:"value"`
		} `json:"bindings"`
	} `json:"results"`
}

// Select runs a SPARQL SELECT query and returns one map per result row,
// keyed by variable name.
func (t *Tstore) Select(ctx context.Context, q string) ([]map[string]string, error) {
	body, err := t.query(ctx, q, "application/sparql-results+json")
	if err != nil {
		return nil, err
	}

	var parsed sparqlResults
	if err := json.Unmarshal(body, &parsed); err != nil {
		return nil, fmt.Errorf("tstore select: malformed results: %w", err)
	}

	rows := make([]map[string]string, 0, len(parsed.Results.Bindings))
	for _, binding := range parsed.Results.Bindings {
		row := make(map[string]string, len(binding))
		for name, v := range binding {
			row[name] = v.Value
		}
		rows = append(rows, row)
	}
	return rows, nil
}

// NodeExistsByProperty checks whether any node carries the given property
// value.
func (t *Tstore) NodeExistsByProperty(ctx context.Context, predicate rdf.URIRef, value rdf.Term) (bool, error) {
	q := fmt.Sprintf("ASK { ?r %s %s . }", predicate.N3(), value.N3())
	return t.Ask(ctx, q)
}

// NodeURIByProperty resolves the URI of the node carrying the given property
// value. Returns the empty string when no node matches.
func (t *Tstore) NodeURIByProperty(ctx context.Context, predicate rdf.URIRef, value rdf.Term) (string, error) {
	q := fmt.Sprintf("SELECT ?uri WHERE { ?uri %s %s . } LIMIT 1", predicate.N3(), value.N3())
	rows, err := t.Select(ctx, q)
	if err != nil {
		return "", err
	}
	if len(rows) == 0 {
		return "", nil
	}
	return rows[0]["uri"], nil
}

// NodeURIByProperties resolves the URI of the node matching all given
// property tuples. Returns the empty string when no node matches.
func (t *Tstore) NodeURIByProperties(ctx context.Context, tuples []rdf.Tuple) (string, error) {
	var b strings.Builder
	b.WriteString("SELECT ?uri WHERE {")
	for _, tu := range tuples {
		fmt.Fprintf(&b, " ?uri %s %s .", tu.Predicate.N3(), tu.Object.N3())
	}
	b.WriteString(" } LIMIT 1")

	rows, err := t.Select(ctx, b.String())
	if err != nil {
		return "", err
	}
	if len(rows) == 0 {
		return "", nil
	}
	return rows[0]["uri"], nil
}
