package search

import (
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/lodestone-ai/lodestone-go/internal/domain"
)

// Result field names the service has used across versions.
var knownResultFields = map[string]bool{
	"id":       true,
	"score":    true,
	"text":     true,
	"content":  true,
	"metadata": true,
	"vector":   true,
	"vectors":  true,
}

// normalizeResults converts raw result entries into the canonical
// SearchResult shape and orders them by descending score, keeping the
// response order for ties.
func normalizeResults(raw []json.RawMessage) ([]domain.SearchResult, error) {
	results := make([]domain.SearchResult, 0, len(raw))
	for i, entry := range raw {
		r, err := normalizeResult(entry)
		if err != nil {
			return nil, fmt.Errorf("result %d: %w", i, err)
		}
		results = append(results, r)
	}
	domain.SortByScore(results)
	return results, nil
}

// normalizeResult tolerates flat and nested shapes. Unknown fields are
// folded into metadata rather than dropped, so service additions pass
// through to callers.
func normalizeResult(raw json.RawMessage) (domain.SearchResult, error) {
	var fields map[string]any
	if err := json.Unmarshal(raw, &fields); err != nil {
		return domain.SearchResult{}, fmt.Errorf("%w: malformed result entry: %v", domain.ErrTransport, err)
	}

	out := domain.SearchResult{
		ID:    anyToID(fields["id"]),
		Score: anyToFloat(fields["score"]),
	}

	if text, ok := fields["text"].(string); ok {
		out.Text = text
	} else if content, ok := fields["content"].(string); ok {
		out.Text = content
	}

	out.Metadata = normalizeMetadata(fields["metadata"])

	for k, v := range fields {
		if knownResultFields[k] {
			continue
		}
		if out.Metadata == nil {
			out.Metadata = map[string]any{}
		}
		out.Metadata[k] = v
	}
	return out, nil
}

// normalizeMetadata accepts a mapping, a JSON-encoded string (older
// deployments double-encode metadata), or nothing.
func normalizeMetadata(v any) map[string]any {
	switch m := v.(type) {
	case map[string]any:
		return m
	case string:
		var decoded map[string]any
		if err := json.Unmarshal([]byte(m), &decoded); err == nil {
			return decoded
		}
		return map[string]any{"metadata": m}
	default:
		return nil
	}
}

// fetchMapping is the current fetch response shape.
type fetchMapping struct {
	Records map[string]json.RawMessage `json:"records"`
}

// fetchAligned is the legacy fetch response shape: arrays aligned with
// the requested id order, null entries marking missing ids.
type fetchAligned struct {
	Vectors  []json.RawMessage `json:"vectors"`
	Metadata []json.RawMessage `json:"metadata"`
}

// normalizeFetch maps every requested id to a record or an explicit
// not-found entry; a partially present id set is the normal case.
func normalizeFetch(raw json.RawMessage, ids []string) (map[string]domain.FetchedRecord, error) {
	out := make(map[string]domain.FetchedRecord, len(ids))
	for _, id := range ids {
		out[id] = domain.FetchedRecord{ID: id}
	}

	var mapped fetchMapping
	if err := json.Unmarshal(raw, &mapped); err == nil && mapped.Records != nil {
		for id, entry := range mapped.Records {
			rec, err := decodeFetchedRecord(id, entry)
			if err != nil {
				return nil, err
			}
			out[id] = rec
		}
		return out, nil
	}

	var aligned fetchAligned
	if err := json.Unmarshal(raw, &aligned); err == nil && (aligned.Vectors != nil || aligned.Metadata != nil) {
		for i, id := range ids {
			rec := domain.FetchedRecord{ID: id}
			if i < len(aligned.Vectors) && !isJSONNull(aligned.Vectors[i]) {
				if err := json.Unmarshal(aligned.Vectors[i], &rec.Vector); err != nil {
					return nil, fmt.Errorf("%w: fetch vector %d: %v", domain.ErrTransport, i, err)
				}
				rec.Found = true
			}
			if i < len(aligned.Metadata) && !isJSONNull(aligned.Metadata[i]) {
				var v any
				if err := json.Unmarshal(aligned.Metadata[i], &v); err != nil {
					return nil, fmt.Errorf("%w: fetch metadata %d: %v", domain.ErrTransport, i, err)
				}
				rec.Metadata = normalizeMetadata(v)
				rec.Found = true
			}
			out[id] = rec
		}
		return out, nil
	}

	return nil, fmt.Errorf("%w: unrecognized fetch response shape", domain.ErrTransport)
}

func decodeFetchedRecord(id string, raw json.RawMessage) (domain.FetchedRecord, error) {
	var fields map[string]any
	if err := json.Unmarshal(raw, &fields); err != nil {
		return domain.FetchedRecord{}, fmt.Errorf("%w: malformed fetch entry %q: %v", domain.ErrTransport, id, err)
	}

	rec := domain.FetchedRecord{ID: id, Found: true}
	if text, ok := fields["text"].(string); ok {
		rec.Text = text
	}
	if vec, ok := fields["vector"].([]any); ok {
		rec.Vector = make([]float32, len(vec))
		for i, v := range vec {
			rec.Vector[i] = float32(anyToFloat(v))
		}
	}
	rec.Metadata = normalizeMetadata(fields["metadata"])
	return rec, nil
}

func isJSONNull(raw json.RawMessage) bool {
	return len(raw) == 0 || string(raw) == "null"
}

func anyToID(v any) string {
	switch id := v.(type) {
	case string:
		return id
	case float64:
		if id == float64(int64(id)) {
			return strconv.FormatInt(int64(id), 10)
		}
		return strconv.FormatFloat(id, 'f', -1, 64)
	default:
		return ""
	}
}

func anyToFloat(v any) float64 {
	switch f := v.(type) {
	case float64:
		return f
	case string:
		parsed, err := strconv.ParseFloat(f, 64)
		if err != nil {
			return 0
		}
		return parsed
	default:
		return 0
	}
}
