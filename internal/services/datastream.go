package services

import (
	"sort"
	"strings"
)

// Datastream is one content stream submitted with an ingestion request:
// either inline bytes or a reference to externally hosted content.
type Datastream interface {
	// StreamName is the logical name: "source", "master" or a derivative name.
	StreamName() string
}

// RawBytes is an inline binary datastream.
type RawBytes struct {
	Name string
	Data []byte
}

func (r RawBytes) StreamName() string { return r.Name }

// ExternalRef points at content hosted outside the repository. It is stored
// as a reference; no bytes are transferred into LAKE.
type ExternalRef struct {
	Name string
	URL  string
}

func (e ExternalRef) StreamName() string { return e.Name }

// RefPrefix marks request parameters carrying external references: a
// "ref_source" parameter ingests a reference datastream named "source".
const RefPrefix = "ref_"

// SourceName is the principal content stream every ingestion must carry.
const SourceName = "source"

// MasterName is the derivative stream synthesized when absent.
const MasterName = "master"

// Datastreams maps logical stream names to their submitted content.
type Datastreams map[string]Datastream

// Names returns the stream names in deterministic order.
func (d Datastreams) Names() []string {
	names := make([]string, 0, len(d))
	for name := range d {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// HasSource reports whether a principal content stream was supplied.
func (d Datastreams) HasSource() bool {
	_, ok := d[SourceName]
	return ok
}

// LogicalName strips the reference prefix from a request parameter name.
func LogicalName(param string) (name string, isRef bool) {
	if strings.HasPrefix(param, RefPrefix) {
		return strings.TrimPrefix(param, RefPrefix), true
	}
	return param, false
}
