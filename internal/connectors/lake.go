// Package connectors holds the HTTP and SQL clients for the external systems
// SSPAD coordinates: the LAKE repository, the triplestore index, the UID
// minter database and the Datagrinder resize service.
package connectors

import (
	"context"
	"fmt"
	"io"
	"log"
	"net/http"
	"strings"

	"github.com/aic-collections/sspad/internal/config"
	"github.com/aic-collections/sspad/internal/rdf"
)

// Lake talks to the LAKE (Fedora) REST API.
type Lake struct {
	baseURL string
	client  *http.Client
}

func NewLake(cfg *config.Config) *Lake {
	return &Lake{
		baseURL: strings.TrimSuffix(cfg.LakeBaseURL, "/") + "/",
		client:  &http.Client{},
	}
}

// BaseURL returns the repository root, with a trailing slash.
func (l *Lake) BaseURL() string {
	return l.baseURL
}

func (l *Lake) do(ctx context.Context, method, url string, body io.Reader, headers map[string]string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, method, url, body)
	if err != nil {
		return nil, err
	}
	if auth := authorization(ctx); auth != "" {
		req.Header.Set("Authorization", auth)
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	res, err := l.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("lake request %s %s: %w", method, url, err)
	}
	return res, nil
}

func drainClose(res *http.Response) {
	io.Copy(io.Discard, res.Body)
	res.Body.Close()
}

func checkStatus(res *http.Response, op string) error {
	if res.StatusCode > 399 {
		body, _ := io.ReadAll(io.LimitReader(res.Body, 4096))
		return fmt.Errorf("lake %s: status %d: %s", op, res.StatusCode, strings.TrimSpace(string(body)))
	}
	return nil
}

// OpenTransaction opens a repository transaction and returns its URI.
func (l *Lake) OpenTransaction(ctx context.Context) (string, error) {
	res, err := l.do(ctx, http.MethodPost, l.baseURL+"fcr:tx", nil, nil)
	if err != nil {
		return "", err
	}
	defer drainClose(res)

	log.Printf("Open transaction response: %d", res.StatusCode)
	if err := checkStatus(res, "open transaction"); err != nil {
		return "", err
	}
	return res.Header.Get("Location"), nil
}

// CommitTransaction commits an open transaction.
func (l *Lake) CommitTransaction(ctx context.Context, txURI string) error {
	res, err := l.do(ctx, http.MethodPost, txURI+"/fcr:tx/fcr:commit", nil, nil)
	if err != nil {
		return err
	}
	defer drainClose(res)

	log.Printf("Commit transaction response: %d", res.StatusCode)
	return checkStatus(res, "commit transaction")
}

// RollbackTransaction rolls back an open transaction.
func (l *Lake) RollbackTransaction(ctx context.Context, txURI string) error {
	res, err := l.do(ctx, http.MethodPost, txURI+"/fcr:tx/fcr:rollback", nil, nil)
	if err != nil {
		return err
	}
	defer drainClose(res)

	log.Printf("Rollback transaction response: %d", res.StatusCode)
	return checkStatus(res, "rollback transaction")
}

// CreateOrUpdateNode creates a container node, or updates it if it exists.
// With uri set, the node is PUT in place; otherwise it is POSTed under
// parent and the repository assigns the final URI. Initial properties are
// sent as a turtle document.
func (l *Lake) CreateOrUpdateNode(ctx context.Context, uri, parent string, props []rdf.Tuple) (string, error) {
	var body io.Reader
	if len(props) > 0 {
		body = strings.NewReader(rdf.Turtle(props))
	}
	headers := map[string]string{"Content-Type": "text/turtle"}

	var res *http.Response
	var err error
	if uri != "" {
		res, err = l.do(ctx, http.MethodPut, uri, body, headers)
	} else {
		res, err = l.do(ctx, http.MethodPost, parent, body, headers)
	}
	if err != nil {
		return "", err
	}
	defer drainClose(res)

	log.Printf("Create/update node response: %d", res.StatusCode)
	if err := checkStatus(res, "create or update node"); err != nil {
		return "", err
	}
	if loc := res.Header.Get("Location"); loc != "" {
		return loc, nil
	}
	return uri, nil
}

// CreateOrUpdateDatastream uploads binary content to a datastream node.
func (l *Lake) CreateOrUpdateDatastream(ctx context.Context, uri, fileName string, data io.Reader, mimeType string) (string, error) {
	res, err := l.do(ctx, http.MethodPut, uri, data, map[string]string{
		"Content-Disposition": fmt.Sprintf("inline; filename=%q", fileName),
		"Content-Type":        mimeType,
	})
	if err != nil {
		return "", err
	}
	defer drainClose(res)

	log.Printf("Create/update datastream response: %d", res.StatusCode)
	if err := checkStatus(res, "create or update datastream"); err != nil {
		return "", err
	}
	if loc := res.Header.Get("Location"); loc != "" {
		return loc, nil
	}
	return uri, nil
}

// CreateOrUpdateRefDatastream registers an externally hosted datastream. The
// referenced resource must be reachable; no bytes are copied into LAKE.
func (l *Lake) CreateOrUpdateRefDatastream(ctx context.Context, uri, ref string) (string, error) {
	check, err := l.do(ctx, http.MethodHead, ref, nil, nil)
	if err != nil {
		return "", err
	}
	drainClose(check)
	if check.StatusCode > 399 {
		return "", fmt.Errorf("lake reference check: %s returned status %d", ref, check.StatusCode)
	}

	res, err := l.do(ctx, http.MethodPut, uri, nil, map[string]string{
		"Content-Type": fmt.Sprintf(`message/external-body; access-type=URL; URL=%q`, ref),
	})
	if err != nil {
		return "", err
	}
	defer drainClose(res)

	if err := checkStatus(res, "create or update reference datastream"); err != nil {
		return "", err
	}
	if loc := res.Header.Get("Location"); loc != "" {
		return loc, nil
	}
	return uri, nil
}

// UpdateNodeProperties applies delete, insert and where tuples to a node as
// a SPARQL update. Returns without a repository call when there is nothing
// to change.
func (l *Lake) UpdateNodeProperties(ctx context.Context, uri string, deletes, inserts, wheres []rdf.Tuple) error {
	if len(deletes) == 0 && len(inserts) == 0 {
		log.Print("No properties to update.")
		return nil
	}

	body := rdf.SPARQLUpdate(deletes, inserts, wheres)
	res, err := l.do(ctx, http.MethodPatch, uri, strings.NewReader(body), map[string]string{
		"Content-Type": "application/sparql-update",
	})
	if err != nil {
		return err
	}
	defer drainClose(res)

	log.Printf("Update node properties response: %d", res.StatusCode)
	return checkStatus(res, "update node properties")
}

// NodeExists checks whether a node is present in the repository.
func (l *Lake) NodeExists(ctx context.Context, uri string) (bool, error) {
	res, err := l.do(ctx, http.MethodHead, uri, nil, nil)
	if err != nil {
		return false, err
	}
	defer drainClose(res)

	if res.StatusCode == http.StatusNotFound {
		return false, nil
	}
	if res.StatusCode < 400 {
		return true, nil
	}
	return false, fmt.Errorf("lake node check: status %d for %s", res.StatusCode, uri)
}

// DeleteNode removes a node and its tombstone.
func (l *Lake) DeleteNode(ctx context.Context, uri string) error {
	res, err := l.do(ctx, http.MethodDelete, uri, nil, nil)
	if err != nil {
		return err
	}
	defer drainClose(res)
	return checkStatus(res, "delete node")
}

// GetBinary fetches the raw content of a datastream or external URL.
func (l *Lake) GetBinary(ctx context.Context, uri string) ([]byte, error) {
	res, err := l.do(ctx, http.MethodGet, uri, nil, nil)
	if err != nil {
		return nil, err
	}
	defer res.Body.Close()

	if err := checkStatus(res, "get binary"); err != nil {
		return nil, err
	}
	return io.ReadAll(res.Body)
}
