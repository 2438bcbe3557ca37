package projector

import (
	"encoding/json"
	"fmt"
	"sync"

	"github.com/jmespath/go-jmespath"
)

// extractor locates result lists in a decoded GraphQL data object.
type extractor struct {
	cache map[string]*jmespath.JMESPath
	mu    sync.RWMutex
}

func newExtractor() *extractor {
	return &extractor{cache: make(map[string]*jmespath.JMESPath)}
}

// extract evaluates path against data and decodes the match into out. A path
// that matches nothing leaves out untouched.
func (e *extractor) extract(path string, data json.RawMessage, out any) error {
	compiled, err := e.getOrCompile(path)
	if err != nil {
		return fmt.Errorf("invalid result path %q: %w", path, err)
	}

	var doc any
	if err := json.Unmarshal(data, &doc); err != nil {
		return fmt.Errorf("decode data: %w", err)
	}

	result, err := compiled.Search(doc)
	if err != nil {
		return fmt.Errorf("evaluate result path %q: %w", path, err)
	}
	if result == nil {
		return nil
	}

	raw, err := json.Marshal(result)
	if err != nil {
		return fmt.Errorf("re-encode %q: %w", path, err)
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("decode %q: %w", path, err)
	}
	return nil
}

// decodeEach decodes every element of list into a T. An element that does
// not decode is passed to skip and left out.
func decodeEach[T any](list []json.RawMessage, skip func(raw json.RawMessage, err error)) []T {
	out := make([]T, 0, len(list))
	for _, raw := range list {
		var v T
		if err := json.Unmarshal(raw, &v); err != nil {
			skip(raw, err)
			continue
		}
		out = append(out, v)
	}
	return out
}

// rawField returns the text of key in a JSON object: string values
// unquoted, anything else as its JSON literal.
func rawField(raw json.RawMessage, key string) string {
	var obj map[string]json.RawMessage
	if err := json.Unmarshal(raw, &obj); err != nil {
		return ""
	}
	value, ok := obj[key]
	if !ok {
		return ""
	}
	var s string
	if err := json.Unmarshal(value, &s); err == nil {
		return s
	}
	return string(value)
}

func (e *extractor) getOrCompile(path string) (*jmespath.JMESPath, error) {
	e.mu.RLock()
	compiled, ok := e.cache[path]
	e.mu.RUnlock()
	if ok {
		return compiled, nil
	}

	compiled, err := jmespath.Compile(path)
	if err != nil {
		return nil, err
	}

	e.mu.Lock()
	e.cache[path] = compiled
	e.mu.Unlock()
	return compiled, nil
}
