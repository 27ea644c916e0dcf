// Package ns declares the namespace IRIs and vocabulary terms used by SSPAD
// when talking to LAKE and the triplestore.
package ns

import "github.com/aic-collections/sspad/internal/rdf"

// Namespace base IRIs.
const (
	AIC      = "http://definitions.artic.edu/ontology/1.0/"
	AICDb    = "http://definitions.artic.edu/ontology/1.0/dbconn/"
	AICList  = "http://definitions.artic.edu/ontology/1.0/auth_list/"
	LakeType = "http://definitions.artic.edu/lake/1.0/node_type/"
	Fcrepo   = "http://fedora.info/definitions/v4/repository#"
	RDF      = "http://www.w3.org/1999/02/22-rdf-syntax-ns#"
	DC       = "http://purl.org/dc/elements/1.1/"
	SKOS     = "http://www.w3.org/2004/02/skos/core#"
	XSD      = "http://www.w3.org/2001/XMLSchema#"
)

// Core predicates.
const (
	RDFType      rdf.URIRef = RDF + "type"
	DCTitle      rdf.URIRef = DC + "title"
	SKOSNotation rdf.URIRef = SKOS + "notation"
	PrefLabel    rdf.URIRef = SKOS + "prefLabel"
)

// AIC ontology predicates.
const (
	UID       rdf.URIRef = AIC + "uid"
	LegacyUID rdf.URIRef = AIC + "legacyUid"
	BatchUID  rdf.URIRef = AIC + "batchUid"
	Label     rdf.URIRef = AIC + "label"
	Category  rdf.URIRef = AIC + "category"
	Content   rdf.URIRef = AIC + "content"

	HasTag     rdf.URIRef = AIC + "hasTag"
	HasComment rdf.URIRef = AIC + "hasComment"
	HasSource  rdf.URIRef = AIC + "hasSource"
	HasMaster  rdf.URIRef = AIC + "hasMaster"
	HasInstance rdf.URIRef = AIC + "hasInstance"

	Represents                rdf.URIRef = AIC + "represents"
	IsPrimaryRepresentationOf rdf.URIRef = AIC + "isPrimaryRepresentationOf"

	CitiImgDBankUID rdf.URIRef = AIC + "citiImgDBankUid"
)

// AIC node types referenced by relationships.
const (
	AICAsset   rdf.URIRef = AIC + "Asset"
	AICObject  rdf.URIRef = AIC + "Object"
	AICActor   rdf.URIRef = AIC + "Actor"
	AICPlace   rdf.URIRef = AIC + "Place"
	AICEvent   rdf.URIRef = AIC + "Event"
	AICComment rdf.URIRef = AIC + "Comment"
)

// LAKE node types.
const (
	TypeResource         rdf.URIRef = LakeType + "Resource"
	TypeAsset            rdf.URIRef = LakeType + "Asset"
	TypeStillImage       rdf.URIRef = LakeType + "StillImage"
	TypeText             rdf.URIRef = LakeType + "Text"
	TypeInstance         rdf.URIRef = LakeType + "Instance"
	TypeMasterInstance   rdf.URIRef = LakeType + "MasterInstance"
	TypeOriginalInstance rdf.URIRef = LakeType + "OriginalInstance"
	TypeTag              rdf.URIRef = LakeType + "Tag"
	TypeTagCat           rdf.URIRef = LakeType + "TagCat"
)

// Database-backed lookup predicates.
const (
	CitiPkey rdf.URIRef = AICDb + "citi_pkey"
)

// XMLSchema datatypes.
const (
	XSDString rdf.URIRef = XSD + "string"
	XSDInt    rdf.URIRef = XSD + "integer"
)
