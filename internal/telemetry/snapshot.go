package telemetry

import "sort"

// Snapshot is the aggregated system facts collected for one diagnostic run.
// It maps a category name ("system", "performance", ...) to field/value pairs.
// A snapshot is built once by the Collector and treated as read-only by the
// rest of the pipeline.
type Snapshot map[string]map[string]any

// Categories returns the category names present in the snapshot, sorted.
func (s Snapshot) Categories() []string {
	names := make([]string, 0, len(s))
	for name := range s {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Filter returns a copy of the snapshot containing only the named categories.
// Absent categories are skipped, not an error; they simply reduce prompt
// content downstream.
func (s Snapshot) Filter(categories []string) Snapshot {
	out := make(Snapshot, len(categories))
	for _, name := range categories {
		fields, ok := s[name]
		if !ok {
			continue
		}
		copied := make(map[string]any, len(fields))
		for k, v := range fields {
			copied[k] = v
		}
		out[name] = copied
	}
	return out
}
