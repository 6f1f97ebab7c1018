// Package models holds the Ratapay invoice entities and the field rules they
// are built with. Entities are constructed once from an Input and never
// change afterwards, except that an Invoice accepts appended items and
// beneficiaries.
package models

// Input is the loosely typed bag of named values an entity is built from.
// Values may be strings, integers, floats, json.Number or booleans, as they
// arrive from JSON, YAML or form decoding. A nil value counts as absent.
type Input map[string]any

func (in Input) lookup(key string) (any, bool) {
	v, ok := in[key]
	if !ok || v == nil {
		return nil, false
	}
	return v, true
}

// Has reports whether key is present with a non-nil value.
func (in Input) Has(key string) bool {
	_, ok := in.lookup(key)
	return ok
}
