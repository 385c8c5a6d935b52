package storage

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"

	"github.com/roach88/questlog/internal/progress"
)

// CurrentSchemaVersion is the envelope schema this build writes.
//
// Version history:
//
//	(none) - legacy: the raw progress payload stored directly, no wrapper
//	1      - envelope {version, data, timestamp} with optional checksum
const CurrentSchemaVersion = 1

// Envelope is the versioned wrapper persisted under the primary key.
//
// Checksum is a SHA-256 over the canonical JSON of Data. It detects silent
// corruption that still parses; absence (older writers) is fine, and a
// mismatch is logged but does not by itself reject the payload - the
// structural validator has the final word.
type Envelope struct {
	Version   int                               `json:"version"`
	Data      progress.SerializableUserProgress `json:"data"`
	Timestamp string                            `json:"timestamp"`
	Checksum  string                            `json:"checksum,omitempty"`
}

// dataChecksum computes the canonical-JSON SHA-256 of a decoded data
// payload. The input is the json.Unmarshal-into-any form so that the
// checksum is independent of struct field ordering and encoder quirks.
func dataChecksum(data any) (string, error) {
	canonical, err := marshalCanonical(data)
	if err != nil {
		return "", fmt.Errorf("canonicalize data: %w", err)
	}
	sum := sha256.Sum256(canonical)
	return hex.EncodeToString(sum[:]), nil
}

// serializableChecksum computes the checksum for a typed payload by
// round-tripping it through JSON into the decoded form dataChecksum wants.
func serializableChecksum(data progress.SerializableUserProgress) (string, error) {
	raw, err := json.Marshal(data)
	if err != nil {
		return "", fmt.Errorf("marshal data: %w", err)
	}
	var decoded any
	if err := json.Unmarshal(raw, &decoded); err != nil {
		return "", fmt.Errorf("decode data: %w", err)
	}
	return dataChecksum(decoded)
}
