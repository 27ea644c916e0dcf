package services

import (
	"context"
	"regexp"
	"strings"

	"github.com/aic-collections/sspad/internal/apperror"
	"github.com/aic-collections/sspad/internal/rdf"
)

// TxState is the lifecycle state of a repository transaction.
type TxState int

const (
	TxClosed TxState = iota
	TxOpen
	TxCommitted
	TxRolledBack
)

func (s TxState) String() string {
	switch s {
	case TxClosed:
		return "closed"
	case TxOpen:
		return "open"
	case TxCommitted:
		return "committed"
	case TxRolledBack:
		return "rolled back"
	default:
		return "unknown"
	}
}

var txSegment = regexp.MustCompile(`/tx:[^/]+/`)

// StripTxSegment removes the transaction path segment from a tx-scoped URI,
// yielding the permanent URI the node will have after commit.
func StripTxSegment(uri string) string {
	return txSegment.ReplaceAllString(uri, "/")
}

// Transaction coordinates one repository transaction. All mutations of an
// ingestion run inside it so a failure at any step leaves no partial node.
type Transaction struct {
	repo  Repository
	state TxState
	txURI string
}

func NewTransaction(repo Repository) *Transaction {
	return &Transaction{repo: repo}
}

// State returns the current lifecycle state.
func (t *Transaction) State() TxState {
	return t.state
}

// URI returns the transaction base URI, empty until Open succeeds.
func (t *Transaction) URI() string {
	return t.txURI
}

// Open starts a repository transaction. Opening twice is a coding error and
// is rejected.
func (t *Transaction) Open(ctx context.Context) error {
	if t.state != TxClosed {
		return apperror.TxState(nil, "transaction already %s", t.state)
	}
	txURI, err := t.repo.OpenTransaction(ctx)
	if err != nil {
		return apperror.External(err, "opening repository transaction")
	}
	t.txURI = txURI
	t.state = TxOpen
	return nil
}

// CreateNode creates a node under path inside the transaction and returns
// both its tx-scoped URI, used for further writes in this transaction, and
// the permanent URI it will have after commit.
func (t *Transaction) CreateNode(ctx context.Context, path string, props []rdf.Tuple) (inTx, permanent string, err error) {
	if t.state != TxOpen {
		return "", "", apperror.TxState(nil, "cannot create node in %s transaction", t.state)
	}
	parent := strings.TrimSuffix(t.txURI, "/") + "/" + strings.TrimPrefix(path, "/")
	inTx, err = t.repo.CreateOrUpdateNode(ctx, "", parent, props)
	if err != nil {
		return "", "", apperror.External(err, "creating node under %s", path)
	}
	return inTx, StripTxSegment(inTx), nil
}

// ScopeURI rebases a permanent node URI into this transaction.
func (t *Transaction) ScopeURI(uri string) string {
	if t.txURI == "" {
		return uri
	}
	base := strings.TrimSuffix(t.repo.BaseURL(), "/")
	if !strings.HasPrefix(uri, base) {
		return uri
	}
	return strings.TrimSuffix(t.txURI, "/") + strings.TrimPrefix(uri, base)
}

// Commit makes the transaction's writes permanent. Committing a transaction
// that is not open is a no-op so cleanup paths can call it unconditionally.
func (t *Transaction) Commit(ctx context.Context) error {
	if t.state != TxOpen {
		return nil
	}
	if err := t.repo.CommitTransaction(ctx, t.txURI); err != nil {
		return apperror.TxState(err, "committing transaction %s", t.txURI)
	}
	t.state = TxCommitted
	return nil
}

// Rollback discards the transaction's writes. Rolling back a transaction that
// is not open is a no-op.
func (t *Transaction) Rollback(ctx context.Context) error {
	if t.state != TxOpen {
		return nil
	}
	if err := t.repo.RollbackTransaction(ctx, t.txURI); err != nil {
		return apperror.TxState(err, "rolling back transaction %s", t.txURI)
	}
	t.state = TxRolledBack
	return nil
}
