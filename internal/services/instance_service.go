package services

import (
	"bytes"
	"context"
	"mime"
	"strings"

	"github.com/aic-collections/sspad/internal/apperror"
	"github.com/aic-collections/sspad/internal/rdf"
	"github.com/aic-collections/sspad/internal/rdf/ns"
	"github.com/aic-collections/sspad/internal/schema"
)

// Instance container nodes live under the asset at aic:ds_<name>, with the
// content itself one level deeper.
const (
	instanceSegment = "/aic:ds_"
	contentSegment  = "/aic:content"
)

// InstanceService creates and updates the instance nodes holding an asset's
// content streams and links them back to the asset.
type InstanceService struct {
	repo Repository
}

func NewInstanceService(repo Repository) *InstanceService {
	return &InstanceService{repo: repo}
}

// InstanceURI is the container node URI for a named stream of an asset.
func InstanceURI(assetURI, name string) string {
	return strings.TrimSuffix(assetURI, "/") + instanceSegment + name
}

func instanceType(name string) (nodeType rdf.URIRef, relProp string) {
	switch name {
	case SourceName:
		return ns.TypeOriginalInstance, "has_source"
	case MasterName:
		return ns.TypeMasterInstance, "has_master"
	default:
		return ns.TypeInstance, "has_instance"
	}
}

// CreateOrUpdate ingests one content stream: it creates or refreshes the
// instance container node, stores the content (bytes or external reference)
// under it, and links the instance from the asset with the relationship
// matching the stream name. Re-running with the same name overwrites the
// content in place and leaves a single instance node and relationship.
func (s *InstanceService) CreateOrUpdate(ctx context.Context, typ *schema.Type, assetURI, uid string, ds Datastream, mimeType string) (string, error) {
	name := ds.StreamName()
	instURI := InstanceURI(assetURI, name)
	nodeType, relProp := instanceType(name)

	exists, err := s.repo.NodeExists(ctx, instURI)
	if err != nil {
		return "", apperror.External(err, "checking instance node %s", name)
	}
	if !exists {
		props := []rdf.Tuple{
			{Predicate: ns.RDFType, Object: nodeType},
			{Predicate: ns.PrefLabel, Object: rdf.NewTypedLiteral(uid+"_"+name, ns.XSDString)},
		}
		if _, err := s.repo.CreateOrUpdateNode(ctx, instURI, "", props); err != nil {
			return "", apperror.External(err, "creating instance node %s", name)
		}
	}

	contentURI := instURI + contentSegment
	switch content := ds.(type) {
	case ExternalRef:
		if _, err := s.repo.CreateOrUpdateRefDatastream(ctx, contentURI, content.URL); err != nil {
			return "", apperror.External(err, "storing reference datastream %s", name)
		}
	case RawBytes:
		if mimeType == "" {
			mimeType = "application/octet-stream"
		}
		fileName := uid + "_" + name + extForMIME(mimeType)
		if _, err := s.repo.CreateOrUpdateDatastream(ctx, contentURI, fileName, bytes.NewReader(content.Data), mimeType); err != nil {
			return "", apperror.External(err, "storing datastream %s", name)
		}
	default:
		return "", apperror.BadRequest("datastream %s has no content", name)
	}

	d, ok := typ.Descriptor(relProp)
	if !ok {
		return "", apperror.BadRequest("type %s does not accept instances", typ.Name)
	}
	rel := []rdf.Tuple{{Predicate: d.Predicate, Object: rdf.URIRef(instURI)}}
	if err := s.repo.UpdateNodeProperties(ctx, assetURI, nil, rel, nil); err != nil {
		return "", apperror.External(err, "linking instance %s", name)
	}

	return instURI, nil
}

func extForMIME(mimeType string) string {
	switch mimeType {
	case "image/jpeg":
		return ".jpg"
	case "image/png":
		return ".png"
	case "image/gif":
		return ".gif"
	case "text/plain":
		return ".txt"
	}
	if exts, err := mime.ExtensionsByType(mimeType); err == nil && len(exts) > 0 {
		return exts[0]
	}
	return ".bin"
}
