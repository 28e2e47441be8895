package filter

import (
	"encoding/json"
	"fmt"
)

// defaultCacheSize bounds the package-level compiler cache
const defaultCacheSize = 100

var defaultCompiler = NewExprCompiler(WithCache(defaultCacheSize))

// Compile compiles an expression with the shared caching compiler
func Compile(expression string) (CompiledFilter, error) {
	return defaultCompiler.Compile(expression)
}

// Apply keeps the records of raw that match f and returns the result as JSON.
//
// With an empty key raw must be a JSON array, and the matching elements are
// returned as an array. Otherwise raw must be an object holding an array
// under key; that array is filtered in place and the whole object is
// returned. Matching elements are copied through byte for byte.
func Apply(f CompiledFilter, raw json.RawMessage, key string) (json.RawMessage, error) {
	if key == "" {
		rows, err := filterRows(f, raw)
		if err != nil {
			return nil, &EvaluationError{Expression: f.Expression(), Reason: "top-level value is not an array", Err: err}
		}
		return marshalRows(rows)
	}

	var obj map[string]json.RawMessage
	if err := json.Unmarshal(raw, &obj); err != nil {
		return nil, &EvaluationError{
			Expression: f.Expression(),
			Key:        key,
			Reason:     "top-level value is not an object",
			Err:        ErrNotFilterable,
		}
	}

	list, ok := obj[key]
	if !ok {
		return nil, &EvaluationError{
			Expression: f.Expression(),
			Key:        key,
			Reason:     "key not present in response",
			Err:        ErrNotFilterable,
		}
	}

	rows, err := filterRows(f, list)
	if err != nil {
		return nil, &EvaluationError{Expression: f.Expression(), Key: key, Reason: "value is not an array", Err: err}
	}

	filtered, err := marshalRows(rows)
	if err != nil {
		return nil, err
	}
	obj[key] = filtered

	out, err := json.Marshal(obj)
	if err != nil {
		return nil, fmt.Errorf("failed to encode filtered response: %w", err)
	}
	return out, nil
}

// filterRows decodes raw as an array and keeps the elements that match f
func filterRows(f Filter, raw json.RawMessage) ([]json.RawMessage, error) {
	var rows []json.RawMessage
	if err := json.Unmarshal(raw, &rows); err != nil || rows == nil {
		return nil, ErrNotFilterable
	}

	matches := make([]json.RawMessage, 0, len(rows))
	for _, row := range rows {
		var record any
		if err := json.Unmarshal(row, &record); err != nil {
			continue
		}
		if f.Match(record) {
			matches = append(matches, row)
		}
	}
	return matches, nil
}

func marshalRows(rows []json.RawMessage) (json.RawMessage, error) {
	out, err := json.Marshal(rows)
	if err != nil {
		return nil, fmt.Errorf("failed to encode filtered rows: %w", err)
	}
	return out, nil
}
