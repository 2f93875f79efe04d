package document

import "fmt"

// MaxIDSize is the engine's document ID limit in bytes.
const MaxIDSize = 512

// UnsetSeq marks absent concurrency metadata.
const UnsetSeq = int64(-1)

// Document is the document aggregate (immutable value object): an identifier,
// the source fields, and the engine's optimistic concurrency metadata.
type Document struct {
	id          string
	source      map[string]any
	seqNo       int64
	primaryTerm int64
	version     int64
}

// New validates and creates a Document without concurrency metadata.
func New(id string, source map[string]any) (Document, error) {
	if id == "" {
		return Document{}, fmt.Errorf("document ID is required")
	}
	if len(id) > MaxIDSize {
		return Document{}, fmt.Errorf("document ID too long (max %d bytes)", MaxIDSize)
	}
	if len(source) == 0 {
		return Document{}, fmt.Errorf("document source is required")
	}
	return Document{
		id:          id,
		source:      cloneSource(source),
		seqNo:       UnsetSeq,
		primaryTerm: UnsetSeq,
	}, nil
}

// Reconstruct creates a Document without validation (engine hydration).
func Reconstruct(id string, source map[string]any, seqNo, primaryTerm, version int64) Document {
	return Document{id: id, source: source, seqNo: seqNo, primaryTerm: primaryTerm, version: version}
}

// ID returns the document identifier.
func (d Document) ID() string { return d.id }

// Source returns the document source fields.
func (d Document) Source() map[string]any { return d.source }

// SeqNo returns the sequence number the engine assigned, or UnsetSeq.
func (d Document) SeqNo() int64 { return d.seqNo }

// PrimaryTerm returns the primary term the engine assigned, or UnsetSeq.
func (d Document) PrimaryTerm() int64 { return d.primaryTerm }

// Version returns the document version.
func (d Document) Version() int64 { return d.version }

// HasConcurrency reports whether the document carries seq_no/primary_term
// metadata for an optimistic concurrency check.
func (d Document) HasConcurrency() bool {
	return d.seqNo != UnsetSeq && d.primaryTerm != UnsetSeq
}

// WithConcurrency returns a copy carrying the given seq_no and primary_term.
func (d Document) WithConcurrency(seqNo, primaryTerm int64) Document {
	return Document{id: d.id, source: d.source, seqNo: seqNo, primaryTerm: primaryTerm, version: d.version}
}

// WithField returns a copy with a single source field set.
func (d Document) WithField(name string, value any) Document {
	src := cloneSource(d.source)
	src[name] = value
	return Document{id: d.id, source: src, seqNo: d.seqNo, primaryTerm: d.primaryTerm, version: d.version}
}

func cloneSource(m map[string]any) map[string]any {
	if m == nil {
		return nil
	}
	c := make(map[string]any, len(m))
	for k, v := range m {
		c[k] = v
	}
	return c
}
