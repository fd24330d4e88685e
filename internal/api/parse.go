package api

import (
	"encoding/json"

	"github.com/cockroachdb/errors"
)

// Projects are positional arrays:
//
//	[title, [source...], id, emoji, ...]
//
// and sources are:
//
//	[[id], title, metadata, [_, status], ...]
const (
	projectTitle   = 0
	projectSources = 1
	projectID      = 2
	projectEmoji   = 3
)

func decodeArray(raw json.RawMessage) ([]interface{}, error) {
	if len(raw) == 0 || string(raw) == "null" {
		return nil, nil
	}
	var data []interface{}
	if err := json.Unmarshal(raw, &data); err != nil {
		return nil, errors.Wrap(err, "parse response JSON")
	}
	return data, nil
}

// parseProjectResponse accepts either a bare project array or the
// single-element wrapper GetProject returns.
func parseProjectResponse(raw json.RawMessage) (*Notebook, error) {
	data, err := decodeArray(raw)
	if err != nil {
		return nil, err
	}
	if len(data) == 0 {
		return nil, nil
	}
	if inner, ok := data[0].([]interface{}); ok {
		data = inner
	}
	nb := parseProject(data)
	if nb == nil {
		return nil, errors.Newf("unexpected project structure: %.200s", raw)
	}
	return nb, nil
}

// parseProjectList decodes the ListRecentlyViewedProjects result, whose
// first element holds the project arrays.
func parseProjectList(raw json.RawMessage) ([]*Notebook, error) {
	data, err := decodeArray(raw)
	if err != nil {
		return nil, err
	}
	if len(data) == 0 || data[0] == nil {
		return nil, nil
	}
	items, ok := data[0].([]interface{})
	if !ok {
		return nil, errors.Newf("unexpected project list structure: %.200s", raw)
	}
	var out []*Notebook
	for _, item := range items {
		arr, ok := item.([]interface{})
		if !ok {
			continue
		}
		if nb := parseProject(arr); nb != nil {
			out = append(out, nb)
		}
	}
	return out, nil
}

func parseProject(arr []interface{}) *Notebook {
	if len(arr) <= projectID {
		return nil
	}
	id, _ := arr[projectID].(string)
	if id == "" {
		return nil
	}
	nb := &Notebook{ID: id}
	nb.Title, _ = arr[projectTitle].(string)
	if len(arr) > projectEmoji {
		nb.Emoji, _ = arr[projectEmoji].(string)
	}
	if srcs, ok := arr[projectSources].([]interface{}); ok {
		for _, s := range srcs {
			if src, ok := parseSource(s); ok {
				nb.Sources = append(nb.Sources, src)
			}
		}
	}
	return nb
}

func parseSource(v interface{}) (Source, bool) {
	arr, ok := v.([]interface{})
	if !ok || len(arr) == 0 {
		return Source{}, false
	}
	var src Source
	switch id := arr[0].(type) {
	case string:
		src.ID = id
	case []interface{}:
		if len(id) > 0 {
			src.ID, _ = id[0].(string)
		}
	}
	if src.ID == "" {
		return Source{}, false
	}
	if len(arr) > 1 {
		src.Title, _ = arr[1].(string)
	}
	if len(arr) > 3 {
		if st, ok := arr[3].([]interface{}); ok && len(st) > 1 {
			if code, ok := st[1].(float64); ok {
				src.Status = SourceStatus(code)
			}
		}
	}
	return src, true
}

// extractSourceID finds the new source id in an AddSources response, which
// nests it at varying depth depending on the source type.
func extractSourceID(resp json.RawMessage) (string, error) {
	data, err := decodeArray(resp)
	if err != nil {
		return "", err
	}
	if len(data) == 0 {
		return "", errors.New("empty response")
	}
	if id, ok := firstString(data, 4); ok {
		return id, nil
	}
	return "", errors.Newf("could not find source ID in response structure: %.200s", resp)
}

// firstString descends through first elements up to depth levels.
func firstString(v interface{}, depth int) (string, bool) {
	for i := 0; i <= depth; i++ {
		switch t := v.(type) {
		case string:
			return t, t != ""
		case []interface{}:
			if len(t) == 0 {
				return "", false
			}
			v = t[0]
		default:
			return "", false
		}
	}
	return "", false
}
