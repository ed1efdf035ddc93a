package corpus

import (
	"crypto/sha256"
	"encoding/json"
	"fmt"
	"sort"
	"time"
)

// Notice is one procurement announcement in its canonical form. Records
// are stored whole and never mutated in place; a re-fetch either matches
// the stored content or replaces it according to the conflict policy.
type Notice struct {
	ID          string
	PublishedAt time.Time
	Title       string
	BodyText    string
	// Metadata holds auxiliary provider fields (buyer, CPV code,
	// contract value, ...) keyed by canonical names.
	Metadata  map[string]string
	FetchedAt time.Time
}

// ContentHash returns a stable digest of everything the provider
// controls. FetchedAt is excluded so a byte-identical re-fetch hashes
// the same.
func (n *Notice) ContentHash() string {
	h := sha256.New()
	fmt.Fprintf(h, "%s\x00%s\x00%s\x00%s\x00", n.ID, n.PublishedAt.UTC().Format(time.RFC3339), n.Title, n.BodyText)

	keys := make([]string, 0, len(n.Metadata))
	for k := range n.Metadata {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		fmt.Fprintf(h, "%s=%s\x00", k, n.Metadata[k])
	}

	return fmt.Sprintf("%x", h.Sum(nil))
}

func (n *Notice) metadataJSON() (string, error) {
	if len(n.Metadata) == 0 {
		return "{}", nil
	}
	raw, err := json.Marshal(n.Metadata)
	if err != nil {
		return "", fmt.Errorf("marshal metadata: %w", err)
	}
	return string(raw), nil
}
