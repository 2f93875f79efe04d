package document

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/esbind-io/esbind/internal/domain/document"
	"github.com/esbind-io/esbind/internal/domain/document/patch"
	"github.com/esbind-io/esbind/internal/es"
)

// sourceBytes marshals the document source for the engine.
func sourceBytes(doc document.Document) ([]byte, error) {
	data, err := json.Marshal(doc.Source())
	if err != nil {
		return nil, fmt.Errorf("marshal document %s: %w", doc.ID(), err)
	}
	return data, nil
}

// documentFromGet hydrates a domain document from an engine get result.
func documentFromGet(res *es.GetResult) (document.Document, error) {
	var source map[string]any
	if len(res.Source) > 0 {
		if err := json.Unmarshal(res.Source, &source); err != nil {
			return document.Document{}, fmt.Errorf("unmarshal document %s: %w", res.ID, err)
		}
	}
	return document.Reconstruct(res.ID, source, res.SeqNo, res.PrimaryTerm, res.Version), nil
}

// updateBody builds the engine update body for a patch. Pure field merges
// use the doc form; removals need a script.
func updateBody(p patch.Patch) ([]byte, error) {
	if !p.HasRemovals() {
		return json.Marshal(map[string]any{"doc": p.Set()})
	}

	var src strings.Builder
	params := map[string]any{}
	if len(p.Set()) > 0 {
		src.WriteString("ctx._source.putAll(params.set); ")
		params["set"] = p.Set()
	}
	src.WriteString("for (f in params.remove) { ctx._source.remove(f) }")
	params["remove"] = p.Remove()

	return json.Marshal(map[string]any{
		"script": map[string]any{
			"lang":   "painless",
			"source": src.String(),
			"params": params,
		},
	})
}

// bulkBody builds the newline-delimited index body for a batch of documents.
func bulkBody(index string, docs []document.Document) ([]byte, error) {
	var buf strings.Builder
	for _, doc := range docs {
		action, err := json.Marshal(map[string]any{
			"index": map[string]any{"_index": index, "_id": doc.ID()},
		})
		if err != nil {
			return nil, fmt.Errorf("marshal bulk action: %w", err)
		}
		source, err := sourceBytes(doc)
		if err != nil {
			return nil, err
		}
		buf.Write(action)
		buf.WriteByte('\n')
		buf.Write(source)
		buf.WriteByte('\n')
	}
	return []byte(buf.String()), nil
}
