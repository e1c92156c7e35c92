package skills

import (
	"context"
	"sort"
)

// Layer is one entry in the precedence order handed to Merge. Later layers
// shadow earlier ones by skill id.
type Layer struct {
	Source  Source
	Dir     string
	Enabled bool
}

// Merge discovers every enabled layer in order and folds the results into a
// single map keyed by skill id, last writer wins. This encodes the override
// policy: agent-scoped installs shadow global ones, and externally
// configured directories shadow both.
func (r *Repository) Merge(ctx context.Context, layers []Layer) map[string]Record {
	merged := make(map[string]Record)
	for _, layer := range layers {
		if !layer.Enabled {
			continue
		}
		records, _ := r.Discover(ctx, layer.Dir, layer.Source)
		for _, record := range records {
			merged[record.ID] = record
		}
	}
	return merged
}

// SortByID flattens a merged map into a slice ordered alphabetically by id,
// the order imposed on all public listings.
func SortByID(merged map[string]Record) []Record {
	records := make([]Record, 0, len(merged))
	for _, record := range merged {
		records = append(records, record)
	}
	sort.Slice(records, func(i, j int) bool {
		return records[i].ID < records[j].ID
	})
	return records
}
