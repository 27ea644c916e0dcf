package services

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/aic-collections/sspad/internal/rdf"
)

type nodeWrite struct {
	URI    string
	Parent string
	Props  []rdf.Tuple
}

type propUpdate struct {
	URI     string
	Deletes []rdf.Tuple
	Inserts []rdf.Tuple
	Wheres  []rdf.Tuple
}

type fakeRepo struct {
	baseURL string

	txOpened     int
	txCommitted  int
	txRolledBack int
	failOpen     bool
	failCommit   bool
	failRollback bool
	failUpdate   bool

	nodeSeq     int
	existing    map[string]bool
	nodes       []nodeWrite
	updates     []propUpdate
	datastreams map[string][]byte
	refs        map[string]string
	deleted     []string
	binaries    map[string][]byte
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{
		baseURL:     "http://lake/rest/",
		existing:    map[string]bool{},
		datastreams: map[string][]byte{},
		refs:        map[string]string{},
		binaries:    map[string][]byte{},
	}
}

func (f *fakeRepo) BaseURL() string { return f.baseURL }

func (f *fakeRepo) OpenTransaction(context.Context) (string, error) {
	if f.failOpen {
		return "", errors.New("tx open refused")
	}
	f.txOpened++
	return f.baseURL + "tx:abc123", nil
}

func (f *fakeRepo) CommitTransaction(_ context.Context, txURI string) error {
	if f.failCommit {
		return errors.New("commit refused")
	}
	f.txCommitted++
	return nil
}

func (f *fakeRepo) RollbackTransaction(_ context.Context, txURI string) error {
	if f.failRollback {
		return errors.New("rollback refused")
	}
	f.txRolledBack++
	return nil
}

func (f *fakeRepo) CreateOrUpdateNode(_ context.Context, uri, parent string, props []rdf.Tuple) (string, error) {
	if uri == "" {
		f.nodeSeq++
		uri = strings.TrimSuffix(parent, "/") + fmt.Sprintf("/node%d", f.nodeSeq)
	}
	f.nodes = append(f.nodes, nodeWrite{URI: uri, Parent: parent, Props: props})
	f.existing[uri] = true
	return uri, nil
}

func (f *fakeRepo) CreateOrUpdateDatastream(_ context.Context, uri, fileName string, data io.Reader, mimeType string) (string, error) {
	b, err := io.ReadAll(data)
	if err != nil {
		return "", err
	}
	f.datastreams[uri] = b
	return uri, nil
}

func (f *fakeRepo) CreateOrUpdateRefDatastream(_ context.Context, uri, ref string) (string, error) {
	f.refs[uri] = ref
	return uri, nil
}

func (f *fakeRepo) UpdateNodeProperties(_ context.Context, uri string, deletes, inserts, wheres []rdf.Tuple) error {
	if f.failUpdate {
		return errors.New("sparql update refused")
	}
	if len(deletes) == 0 && len(inserts) == 0 {
		return nil
	}
	f.updates = append(f.updates, propUpdate{URI: uri, Deletes: deletes, Inserts: inserts, Wheres: wheres})
	return nil
}

func (f *fakeRepo) NodeExists(_ context.Context, uri string) (bool, error) {
	return f.existing[uri], nil
}

func (f *fakeRepo) DeleteNode(_ context.Context, uri string) error {
	f.deleted = append(f.deleted, uri)
	delete(f.existing, uri)
	return nil
}

func (f *fakeRepo) GetBinary(_ context.Context, uri string) ([]byte, error) {
	b, ok := f.binaries[uri]
	if !ok {
		return nil, fmt.Errorf("no binary at %s", uri)
	}
	return b, nil
}

// inserted reports whether any recorded property update carries the tuple.
func (f *fakeRepo) inserted(t rdf.Tuple) bool {
	for _, u := range f.updates {
		for _, in := range u.Inserts {
			if in == t {
				return true
			}
		}
	}
	return false
}

func tuplesKey(tuples []rdf.Tuple) string {
	parts := make([]string, len(tuples))
	for i, t := range tuples {
		parts[i] = t.String()
	}
	return strings.Join(parts, "; ")
}

type fakeTstore struct {
	asks       map[string]bool
	selects    map[string][]map[string]string
	uriByProp  map[string]string
	uriByProps map[string]string
	err        error
}

func newFakeTstore() *fakeTstore {
	return &fakeTstore{
		asks:       map[string]bool{},
		selects:    map[string][]map[string]string{},
		uriByProp:  map[string]string{},
		uriByProps: map[string]string{},
	}
}

func propKey(predicate rdf.URIRef, value rdf.Term) string {
	return rdf.Tuple{Predicate: predicate, Object: value}.String()
}

func (f *fakeTstore) Ask(_ context.Context, q string) (bool, error) {
	return f.asks[q], f.err
}

func (f *fakeTstore) Select(_ context.Context, q string) ([]map[string]string, error) {
	return f.selects[q], f.err
}

func (f *fakeTstore) NodeExistsByProperty(_ context.Context, predicate rdf.URIRef, value rdf.Term) (bool, error) {
	return f.uriByProp[propKey(predicate, value)] != "", f.err
}

func (f *fakeTstore) NodeURIByProperty(_ context.Context, predicate rdf.URIRef, value rdf.Term) (string, error) {
	return f.uriByProp[propKey(predicate, value)], f.err
}

func (f *fakeTstore) NodeURIByProperties(_ context.Context, tuples []rdf.Tuple) (string, error) {
	return f.uriByProps[tuplesKey(tuples)], f.err
}

type fakeMinter struct {
	uid    string
	err    error
	minted int
	pfx    string
	mid    string
}

func (f *fakeMinter) Mint(_ context.Context, pfx, mid string) (string, error) {
	if f.err != nil {
		return "", f.err
	}
	f.minted++
	f.pfx, f.mid = pfx, mid
	return f.uid, nil
}

type fakeResizer struct {
	out      []byte
	err      error
	dataRuns int
	urlRuns  int
	lastURL  string
}

func (f *fakeResizer) ResizeFromData(_ context.Context, data []byte, fileName string, w, h int) ([]byte, error) {
	f.dataRuns++
	if f.err != nil {
		return nil, f.err
	}
	if f.out != nil {
		return f.out, nil
	}
	return data, nil
}

func (f *fakeResizer) ResizeFromURL(_ context.Context, url string, w, h int) ([]byte, error) {
	f.urlRuns++
	f.lastURL = url
	if f.err != nil {
		return nil, f.err
	}
	return f.out, nil
}
