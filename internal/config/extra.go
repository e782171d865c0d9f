// SPDX-License-Identifier: BSD-3-Clause

package config

import "encoding/json"

// extraFields returns every top-level key in raw not present in known, for
// a document's UnmarshalJSON to stash into its Extra field so a later
// MarshalJSON can write it back unchanged. It returns a nil map (not an
// empty one) when nothing is unrecognized, so a document round-tripped
// through an unmodified core never grows an empty "Extra" artifact.
func extraFields(raw []byte, known map[string]bool) (map[string]json.RawMessage, error) {
	var all map[string]json.RawMessage
	if err := json.Unmarshal(raw, &all); err != nil {
		return nil, err
	}
	extra := make(map[string]json.RawMessage)
	for k, v := range all {
		if !known[k] {
			extra[k] = v
		}
	}
	if len(extra) == 0 {
		return nil, nil
	}
	return extra, nil
}

// mergeExtra re-adds extra's keys into marshaled document bytes b. A key
// the struct itself wrote always wins, so a field that outgrew its
// "unknown" status on a newer core is never shadowed by stale extra data.
func mergeExtra(b []byte, extra map[string]json.RawMessage) ([]byte, error) {
	if len(extra) == 0 {
		return b, nil
	}
	var merged map[string]json.RawMessage
	if err := json.Unmarshal(b, &merged); err != nil {
		return nil, err
	}
	for k, v := range extra {
		if _, exists := merged[k]; !exists {
			merged[k] = v
		}
	}
	return json.Marshal(merged)
}
