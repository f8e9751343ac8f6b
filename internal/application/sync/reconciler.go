package sync

import "github.com/brickdesk/backend/internal/domain/platform"

// dedupeByNaturalKey collapses a batch to one record per natural key,
// last-wins, preserving first-seen order. Platforms occasionally repeat
// a record across page boundaries or within a page after an update.
func dedupeByNaturalKey(records []platform.CanonicalRecord) []platform.CanonicalRecord {
	index := make(map[string]int, len(records))
	deduped := make([]platform.CanonicalRecord, 0, len(records))
	for _, rec := range records {
		key := rec.NaturalKey()
		if i, seen := index[key]; seen {
			deduped[i] = rec
			continue
		}
		index[key] = len(deduped)
		deduped = append(deduped, rec)
	}
	return deduped
}

// naturalKeys extracts the keys of a deduplicated batch
func naturalKeys(records []platform.CanonicalRecord) []string {
	keys := make([]string, len(records))
	for i, rec := range records {
		keys[i] = rec.NaturalKey()
	}
	return keys
}
