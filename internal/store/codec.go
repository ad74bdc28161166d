package store

import (
	"encoding/json"
	"fmt"

	"riffbox/internal/encryption"
	"riffbox/internal/riffbox"
)

// fileTimeLayout is the timestamp embedded in new collection file and
// object names.
const fileTimeLayout = "2006-01-02_15-04-05"

// baseName returns the name for a new collection file created at ts,
// without the ".json" suffix or codec extension. attempt > 1 adds a counter
// for collisions within the same second; it sorts after the unsuffixed name.
func baseName(ts string, attempt int) string {
	if attempt <= 1 {
		return "collection-" + ts
	}
	return fmt.Sprintf("collection-%s_%02d", ts, attempt)
}

// encodeCollection serializes c and passes it through codec.
func encodeCollection(c riffbox.Collection, codec riffbox.Codec) ([]byte, error) {
	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("encoding collection %s: %w", c.ID, err)
	}
	sealed, err := codec.Seal(data)
	if err != nil {
		return nil, fmt.Errorf("sealing collection %s: %w", c.ID, err)
	}
	return sealed, nil
}

// decodeCollection reverses encodeCollection.
func decodeCollection(data []byte, codec riffbox.Codec) (riffbox.Collection, error) {
	plain, err := codec.Open(data)
	if err != nil {
		return riffbox.Collection{}, fmt.Errorf("opening collection: %w", err)
	}
	var c riffbox.Collection
	if err := json.Unmarshal(plain, &c); err != nil {
		return riffbox.Collection{}, fmt.Errorf("decoding collection: %w", err)
	}
	if c.ID == "" {
		return riffbox.Collection{}, fmt.Errorf("decoding collection: missing id")
	}
	if c.Videos == nil {
		c.Videos = []riffbox.Video{}
	}
	return c, nil
}

func codecOrPlain(c riffbox.Codec) riffbox.Codec {
	if c == nil {
		return encryption.PlainCodec{}
	}
	return c
}
