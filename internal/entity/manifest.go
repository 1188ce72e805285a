package entity

// ManifestEntry is one published photo in a trip's gallery manifest.
// Name is the remote file name and the stable join key used to
// preserve human-edited titles and descriptions across runs.
type ManifestEntry struct {
	Src         string `json:"src"`
	Title       string `json:"title"`
	Description string `json:"description,omitempty"`
	Name        string `json:"name"`
}

// MetadataByName indexes prior manifest rows by source file name so a re-run
// can carry curated titles and descriptions forward.
func MetadataByName(entries []ManifestEntry) map[string]ManifestEntry {
	index := make(map[string]ManifestEntry, len(entries))
	for _, entry := range entries {
		if entry.Name == "" {
			continue
		}
		index[entry.Name] = entry
	}

	return index
}
