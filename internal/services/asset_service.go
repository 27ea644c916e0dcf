package services

import (
	"context"
	"errors"

	"github.com/aic-collections/sspad/internal/apperror"
	"github.com/aic-collections/sspad/internal/config"
	"github.com/aic-collections/sspad/internal/models"
	"github.com/aic-collections/sspad/internal/rdf"
	"github.com/aic-collections/sspad/internal/rdf/ns"
	"github.com/aic-collections/sspad/internal/schema"
	"gorm.io/gorm"
)

// Result is the outcome of a successful asset operation.
type Result struct {
	Status   int    `json:"-"`
	Message  string `json:"message"`
	Location string `json:"location,omitempty"`
	UID      string `json:"uid,omitempty"`
}

// AssetService runs the asset ingestion workflow: UID minting, master
// synthesis, datastream validation, and the transactional node and instance
// writes against LAKE.
type AssetService struct {
	cfg       *config.Config
	repo      Repository
	tstore    Triplestore
	minter    UIDMinter
	resizer   Resizer
	builder   *TupleBuilder
	instances *InstanceService
	comments  *CommentService
	tags      *TagService
	db        *gorm.DB
}

// NewAssetService wires the workflow. db may be nil; the legacy UID guard is
// only active when both db is present and the guard is enabled in config.
func NewAssetService(cfg *config.Config, repo Repository, tstore Triplestore, minter UIDMinter, resizer Resizer, tags *TagService, db *gorm.DB) *AssetService {
	return &AssetService{
		cfg:       cfg,
		repo:      repo,
		tstore:    tstore,
		minter:    minter,
		resizer:   resizer,
		builder:   NewTupleBuilder(tstore),
		instances: NewInstanceService(repo),
		comments:  NewCommentService(repo),
		tags:      tags,
		db:        db,
	}
}

// Create ingests a new asset: it pre-checks legacy UID duplicates, mints a
// UID, synthesizes the master when absent, validates every inline
// datastream, then creates the node, applies the property tuples and ingests
// the instances inside a single repository transaction. Any failure after
// the transaction opens rolls everything back.
func (s *AssetService) Create(ctx context.Context, typ *schema.Type, mid string, props Props, dstreams Datastreams) (*Result, error) {
	if !dstreams.HasSource() {
		return nil, apperror.BadRequest("a source datastream or source reference is required")
	}

	legacyUIDs := props["legacy_uid"].Values
	if err := s.checkLegacyUIDDupes(ctx, "", legacyUIDs); err != nil {
		return nil, err
	}

	uid, err := s.minter.Mint(ctx, typ.Prefix, mid)
	if err != nil {
		return nil, apperror.External(err, "minting UID")
	}

	release, err := s.reserveLegacyUIDs(ctx, legacyUIDs)
	if err != nil {
		return nil, err
	}

	permanent, err := s.ingest(ctx, typ, uid, props, dstreams)
	if err != nil {
		release(ctx)
		return nil, err
	}

	s.confirmLegacyUIDs(ctx, legacyUIDs, permanent)
	return &Result{Status: 201, Message: "Created", Location: permanent, UID: uid}, nil
}

func (s *AssetService) ingest(ctx context.Context, typ *schema.Type, uid string, props Props, dstreams Datastreams) (string, error) {
	if err := s.ensureMaster(ctx, typ, uid, dstreams); err != nil {
		return "", err
	}
	meta, err := s.validateStreams(typ, dstreams)
	if err != nil {
		return "", err
	}

	var permanent string
	err = s.runInTx(ctx, func(tx *Transaction) error {
		inTx, perm, err := tx.CreateNode(ctx, typ.Path(), nil)
		if err != nil {
			return err
		}
		permanent = perm

		init := append(typ.BaseTuples(),
			rdf.Tuple{Predicate: ns.DCTitle, Object: rdf.NewTypedLiteral(uid, ns.XSDString)},
			rdf.Tuple{Predicate: ns.UID, Object: rdf.NewTypedLiteral(uid, ns.XSDString)},
		)
		build, err := s.builder.Build(ctx, typ, props, nil, init, s.cfg.IgnoreBrokenRels)
		if err != nil {
			return err
		}
		if err := s.applyBuild(ctx, inTx, build); err != nil {
			return err
		}

		return s.ingestStreams(ctx, typ, inTx, uid, dstreams, meta)
	})
	if err != nil {
		return "", err
	}
	return permanent, nil
}

// Update replaces or appends properties and content streams of an existing
// asset, resolved by URI, UID or legacy UID. When nothing resolves the
// request falls through to a plain create. Replacing the source without
// supplying a master regenerates the master from the new source.
func (s *AssetService) Update(ctx context.Context, typ *schema.Type, uri, uid string, props Props, dstreams Datastreams) (*Result, error) {
	target, err := s.resolve(ctx, typ, uri, uid, props)
	if err != nil && apperror.KindOf(err) != apperror.KindNotFound {
		return nil, err
	}
	if err != nil || target == "" {
		return s.Create(ctx, typ, "", props, dstreams)
	}

	if err := s.checkLegacyUIDDupes(ctx, target, props["legacy_uid"].Values); err != nil {
		return nil, err
	}

	if uid == "" {
		if uid, err = s.uidOf(ctx, target); err != nil {
			return nil, err
		}
	}

	if dstreams.HasSource() {
		if err := s.ensureMaster(ctx, typ, uid, dstreams); err != nil {
			return nil, err
		}
	}
	meta, err := s.validateStreams(typ, dstreams)
	if err != nil {
		return nil, err
	}

	err = s.runInTx(ctx, func(tx *Transaction) error {
		inTx := tx.ScopeURI(target)

		build, err := s.builder.Build(ctx, typ, props, nil, nil, s.cfg.IgnoreBrokenRels)
		if err != nil {
			return err
		}
		if err := s.applyBuild(ctx, inTx, build); err != nil {
			return err
		}

		return s.ingestStreams(ctx, typ, inTx, uid, dstreams, meta)
	})
	if err != nil {
		return nil, err
	}
	return &Result{Status: 204, Message: "Updated", Location: target, UID: uid}, nil
}

// Patch applies an insert/delete property delta to an existing asset.
func (s *AssetService) Patch(ctx context.Context, typ *schema.Type, uri, uid string, insertProps, deleteProps Props) (*Result, error) {
	target, err := s.resolve(ctx, typ, uri, uid, nil)
	if err != nil {
		return nil, err
	}
	if target == "" {
		return nil, apperror.NotFound("no %s asset found for the given identifiers", typ.Name)
	}

	err = s.runInTx(ctx, func(tx *Transaction) error {
		inTx := tx.ScopeURI(target)

		build, err := s.builder.Build(ctx, typ, insertProps, deleteProps, nil, s.cfg.IgnoreBrokenRels)
		if err != nil {
			return err
		}
		return s.applyBuild(ctx, inTx, build)
	})
	if err != nil {
		return nil, err
	}
	return &Result{Status: 204, Message: "Updated", Location: target}, nil
}

// Find resolves an asset of the given type by UID or legacy UID.
func (s *AssetService) Find(ctx context.Context, typ *schema.Type, uid, legacyUID string) (*Result, error) {
	tuples := []rdf.Tuple{
		{Predicate: ns.RDFType, Object: typ.NodeType},
	}
	switch {
	case uid != "":
		tuples = append(tuples, rdf.Tuple{Predicate: ns.UID, Object: rdf.NewTypedLiteral(uid, ns.XSDString)})
	case legacyUID != "":
		tuples = append(tuples, rdf.Tuple{Predicate: ns.LegacyUID, Object: rdf.NewTypedLiteral(legacyUID, ns.XSDString)})
	default:
		return nil, apperror.BadRequest("uid or legacy_uid is required")
	}
	uri, err := s.tstore.NodeURIByProperties(ctx, tuples)
	if err != nil {
		return nil, apperror.External(err, "looking up asset")
	}
	if uri == "" {
		return nil, apperror.NotFound("no %s asset found", typ.Name)
	}
	return &Result{Status: 200, Message: "OK", Location: uri, UID: uid}, nil
}

// Search returns the URIs of assets matching every given property value.
func (s *AssetService) Search(ctx context.Context, typ *schema.Type, props Props) ([]string, error) {
	q := "SELECT ?uri WHERE { ?uri a " + typ.NodeType.N3() + " . "
	for _, d := range typ.Descriptors() {
		pv, ok := props[d.Name]
		if !ok {
			continue
		}
		for _, value := range pv.Values {
			q += "?uri " + d.Predicate.N3() + " " + schema.ToTerm(value, d.Kind, d.Datatype).N3() + " . "
		}
	}
	q += "}"

	rows, err := s.tstore.Select(ctx, q)
	if err != nil {
		return nil, apperror.External(err, "searching assets")
	}
	uris := make([]string, 0, len(rows))
	for _, row := range rows {
		uris = append(uris, row["uri"])
	}
	return uris, nil
}

// AddComment attaches a standalone comment to an existing asset, resolved by
// URI or UID, and returns the comment node URI.
func (s *AssetService) AddComment(ctx context.Context, uri, uid string, spec CommentSpec) (string, error) {
	target, err := s.resolve(ctx, schema.Asset, uri, uid, nil)
	if err != nil {
		return "", err
	}
	if target == "" {
		return "", apperror.NotFound("no asset found for the given identifiers")
	}
	commentURI, err := s.comments.Create(ctx, target, spec)
	if err != nil {
		return "", err
	}
	rel := []rdf.Tuple{{Predicate: ns.HasComment, Object: rdf.URIRef(commentURI)}}
	if err := s.repo.UpdateNodeProperties(ctx, target, nil, rel, nil); err != nil {
		return "", apperror.External(err, "linking comment")
	}
	return commentURI, nil
}

// runInTx opens a repository transaction, runs fn, and commits. fn failures
// trigger a rollback; a failed rollback or commit surfaces as a transaction
// state error instead of the original failure.
func (s *AssetService) runInTx(ctx context.Context, fn func(tx *Transaction) error) error {
	tx := NewTransaction(s.repo)
	if err := tx.Open(ctx); err != nil {
		return err
	}
	if err := fn(tx); err != nil {
		if rbErr := tx.Rollback(ctx); rbErr != nil {
			return rbErr
		}
		return err
	}
	return tx.Commit(ctx)
}

// applyBuild materializes a build result on the subject node: comment and tag
// nodes first, their relationship tuples backfilled into the insert set, then
// one SPARQL update carrying all deletes, inserts and where patterns.
func (s *AssetService) applyBuild(ctx context.Context, subjectURI string, build *BuildResult) error {
	for _, uri := range build.DeleteComments {
		if err := s.comments.Delete(ctx, uri); err != nil {
			return err
		}
	}
	for _, value := range build.InsertTags {
		uri, err := s.tags.Resolve(ctx, value)
		if err != nil {
			return err
		}
		build.Inserts = append(build.Inserts, rdf.Tuple{Predicate: ns.HasTag, Object: rdf.URIRef(uri)})
	}
	for _, spec := range build.InsertComments {
		uri, err := s.comments.Create(ctx, subjectURI, spec)
		if err != nil {
			return err
		}
		build.Inserts = append(build.Inserts, rdf.Tuple{Predicate: ns.HasComment, Object: rdf.URIRef(uri)})
	}

	if err := s.repo.UpdateNodeProperties(ctx, subjectURI, build.Deletes, build.Inserts, build.Wheres); err != nil {
		return apperror.External(err, "updating node properties")
	}
	return nil
}

func (s *AssetService) ingestStreams(ctx context.Context, typ *schema.Type, assetURI, uid string, dstreams Datastreams, meta map[string]schema.DatastreamMeta) error {
	for _, name := range dstreams.Names() {
		mimeType := ""
		if m, ok := meta[name]; ok {
			mimeType = m.MimeType
		}
		if _, err := s.instances.CreateOrUpdate(ctx, typ, assetURI, uid, dstreams[name], mimeType); err != nil {
			return err
		}
	}
	return nil
}

// ensureMaster synthesizes the master stream when the request did not carry
// one: through the resize service for image types, as a plain copy of the
// source otherwise.
func (s *AssetService) ensureMaster(ctx context.Context, typ *schema.Type, uid string, dstreams Datastreams) error {
	if _, ok := dstreams[MasterName]; ok {
		return nil
	}

	var data []byte
	var err error
	src := dstreams[SourceName]

	if typ.ResizeMaster {
		switch content := src.(type) {
		case ExternalRef:
			data, err = s.resizer.ResizeFromURL(ctx, content.URL, s.cfg.MasterMaxWidth, s.cfg.MasterMaxHeight)
		case RawBytes:
			data, err = s.resizer.ResizeFromData(ctx, content.Data, uid+"_source", s.cfg.MasterMaxWidth, s.cfg.MasterMaxHeight)
		}
		if err != nil {
			return apperror.External(err, "generating master derivative")
		}
	} else {
		switch content := src.(type) {
		case ExternalRef:
			data, err = s.repo.GetBinary(ctx, content.URL)
			if err != nil {
				return apperror.External(err, "fetching source for master copy")
			}
		case RawBytes:
			data = content.Data
		}
	}

	dstreams[MasterName] = RawBytes{Name: MasterName, Data: data}
	return nil
}

func (s *AssetService) validateStreams(typ *schema.Type, dstreams Datastreams) (map[string]schema.DatastreamMeta, error) {
	meta := make(map[string]schema.DatastreamMeta, len(dstreams))
	if typ.Validate == nil {
		return meta, nil
	}
	for _, name := range dstreams.Names() {
		content, ok := dstreams[name].(RawBytes)
		if !ok {
			continue
		}
		m, err := typ.Validate(name, content.Data)
		if err != nil {
			return nil, apperror.UnsupportedMedia("%v", err)
		}
		meta[name] = m
	}
	return meta, nil
}

// resolve locates an asset by, in order of precedence, URI, UID, then the
// legacy UIDs in props. An explicitly given URI or UID that matches nothing
// is an error; an empty return means nothing was specified or found.
func (s *AssetService) resolve(ctx context.Context, typ *schema.Type, uri, uid string, props Props) (string, error) {
	if uri != "" {
		exists, err := s.repo.NodeExists(ctx, uri)
		if err != nil {
			return "", apperror.External(err, "checking node %s", uri)
		}
		if !exists {
			return "", apperror.NotFound("no node at %s", uri)
		}
		return uri, nil
	}
	if uid != "" {
		found, err := s.tstore.NodeURIByProperty(ctx, ns.UID, rdf.NewTypedLiteral(uid, ns.XSDString))
		if err != nil {
			return "", apperror.External(err, "looking up UID %s", uid)
		}
		if found == "" {
			return "", apperror.NotFound("no %s asset with UID %s", typ.Name, uid)
		}
		return found, nil
	}
	for _, legacyUID := range props["legacy_uid"].Values {
		found, err := s.tstore.NodeURIByProperty(ctx, ns.LegacyUID, rdf.NewTypedLiteral(legacyUID, ns.XSDString))
		if err != nil {
			return "", apperror.External(err, "looking up legacy UID %s", legacyUID)
		}
		if found != "" {
			return found, nil
		}
	}
	return "", nil
}

func (s *AssetService) uidOf(ctx context.Context, uri string) (string, error) {
	q := "SELECT ?uid WHERE { <" + uri + "> " + ns.UID.N3() + " ?uid . } LIMIT 1"
	rows, err := s.tstore.Select(ctx, q)
	if err != nil {
		return "", apperror.External(err, "reading UID of %s", uri)
	}
	if len(rows) == 0 {
		return "", nil
	}
	return rows[0]["uid"], nil
}

// checkLegacyUIDDupes rejects legacy UIDs already claimed by a different
// node. selfURI exempts the node being updated.
func (s *AssetService) checkLegacyUIDDupes(ctx context.Context, selfURI string, legacyUIDs []string) error {
	for _, legacyUID := range legacyUIDs {
		found, err := s.tstore.NodeURIByProperty(ctx, ns.LegacyUID, rdf.NewTypedLiteral(legacyUID, ns.XSDString))
		if err != nil {
			return apperror.External(err, "checking legacy UID %s", legacyUID)
		}
		if found != "" && found != selfURI {
			return apperror.Conflict(found, "a node with legacy UID %s already exists", legacyUID)
		}
	}
	return nil
}

func (s *AssetService) guardActive() bool {
	return s.db != nil && s.cfg.LegacyUIDGuardEnabled
}

// reserveLegacyUIDs claims the legacy UIDs in Postgres before any repository
// write, closing the race the triplestore pre-check leaves open. The returned
// release drops the reservations if the ingestion later fails.
func (s *AssetService) reserveLegacyUIDs(ctx context.Context, legacyUIDs []string) (release func(context.Context), err error) {
	if !s.guardActive() || len(legacyUIDs) == 0 {
		return func(context.Context) {}, nil
	}
	for i, legacyUID := range legacyUIDs {
		res := models.LegacyUIDReservation{LegacyUID: legacyUID}
		if err := s.db.WithContext(ctx).Create(&res).Error; err != nil {
			s.db.WithContext(ctx).Where("legacy_uid IN ? AND asset_uri = ''", legacyUIDs[:i]).
				Delete(&models.LegacyUIDReservation{})
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return nil, apperror.Conflict("", "legacy UID %s is already reserved", legacyUID)
			}
			return nil, apperror.External(err, "reserving legacy UID %s", legacyUID)
		}
	}
	return func(ctx context.Context) {
		s.db.WithContext(ctx).Where("legacy_uid IN ? AND asset_uri = ''", legacyUIDs).
			Delete(&models.LegacyUIDReservation{})
	}, nil
}

func (s *AssetService) confirmLegacyUIDs(ctx context.Context, legacyUIDs []string, assetURI string) {
	if !s.guardActive() || len(legacyUIDs) == 0 {
		return
	}
	s.db.WithContext(ctx).Model(&models.LegacyUIDReservation{}).
		Where("legacy_uid IN ?", legacyUIDs).
		Update("asset_uri", assetURI)
}
