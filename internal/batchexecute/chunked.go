package batchexecute

import (
	"bufio"
	"encoding/json"
	"strconv"
	"strings"

	"github.com/cockroachdb/errors"
)

// ErrNoResponses is returned when a body holds no "wrb.fr" envelope.
var ErrNoResponses = errors.New("no valid responses found")

const maxChunkLine = 10 * 1024 * 1024

// decodeResponse decodes a batchexecute body. The body is either one JSON
// array or a sequence of length-prefixed chunks:
//
//	)]}'
//	<length>
//	<json>
//	<length>
//	<json>
//
// Chunk lengths count UTF-16 units on the server side, so they are only used
// as separators here; each chunk ends where the accumulated lines form valid JSON.
func decodeResponse(raw string) ([]Response, error) {
	raw = strings.TrimSpace(strings.TrimPrefix(strings.TrimSpace(raw), ")]}'"))
	if raw == "" {
		return nil, ErrNoResponses
	}

	chunks, numeric := splitChunks(raw)
	if len(chunks) == 0 {
		if numeric != "" {
			// A bare number in place of a payload is an error code.
			return []Response{{ID: "numeric", Data: json.RawMessage(numeric)}}, nil
		}
		return nil, ErrNoResponses
	}

	var out []Response
	for _, chunk := range chunks {
		var v interface{}
		if err := json.Unmarshal([]byte(chunk), &v); err != nil {
			continue
		}
		if f, ok := v.(float64); ok {
			out = append(out, Response{ID: "numeric", Data: json.RawMessage(strconv.Itoa(int(f)))})
			continue
		}
		for _, env := range findEnvelopes(v) {
			out = append(out, envelopeResponse(env))
		}
	}
	if len(out) == 0 {
		return nil, ErrNoResponses
	}
	return out, nil
}

// splitChunks returns the JSON chunks of raw and, when the body carried no
// JSON at all, the last bare number seen.
func splitChunks(raw string) (chunks []string, numeric string) {
	sc := bufio.NewScanner(strings.NewReader(raw))
	sc.Buffer(make([]byte, 64*1024), maxChunkLine)

	var buf strings.Builder
	for sc.Scan() {
		line := sc.Text()
		trimmed := strings.TrimSpace(line)
		if buf.Len() == 0 {
			if trimmed == "" {
				continue
			}
			if isNumeric(trimmed) {
				numeric = trimmed
				continue
			}
		} else {
			buf.WriteByte('\n')
		}
		buf.WriteString(line)
		if json.Valid([]byte(buf.String())) {
			chunks = append(chunks, buf.String())
			buf.Reset()
		}
	}
	if len(chunks) > 0 {
		numeric = ""
	}
	return chunks, numeric
}

// findEnvelopes walks nested arrays looking for ["wrb.fr", id, ...] entries.
func findEnvelopes(v interface{}) [][]interface{} {
	arr, ok := v.([]interface{})
	if !ok {
		return nil
	}
	if len(arr) >= 2 {
		if tag, ok := arr[0].(string); ok && tag == "wrb.fr" {
			return [][]interface{}{arr}
		}
	}
	var out [][]interface{}
	for _, el := range arr {
		out = append(out, findEnvelopes(el)...)
	}
	return out
}

// envelopeResponse converts ["wrb.fr", id, data, null, null, [code], index].
func envelopeResponse(env []interface{}) Response {
	id, _ := env[1].(string)
	resp := Response{ID: id}

	if len(env) > 2 && env[2] != nil {
		switch d := env[2].(type) {
		case string:
			resp.Data = json.RawMessage(d)
		default:
			if b, err := json.Marshal(d); err == nil {
				resp.Data = b
			}
		}
	}
	if resp.Data == nil && len(env) > 5 {
		if codes, ok := env[5].([]interface{}); ok && len(codes) > 0 {
			if code, ok := codes[0].(float64); ok {
				resp.Code = int(code)
			}
		}
	}
	if len(env) > 6 {
		if idx, ok := env[6].(string); ok && idx != "generic" {
			resp.Index, _ = strconv.Atoi(idx)
		}
	}

	if resp.ID == "error" && resp.Data != nil {
		var e struct {
			Error string `json:"error"`
		}
		if err := json.Unmarshal(resp.Data, &e); err == nil {
			resp.Error = e.Error
		} else {
			var list []struct {
				Error string `json:"error"`
			}
			if err := json.Unmarshal(resp.Data, &list); err == nil && len(list) > 0 {
				resp.Error = list[0].Error
			}
		}
	}
	return resp
}

func isNumeric(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
