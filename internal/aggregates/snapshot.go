package aggregates

import (
    "encoding/json"
    "fmt"
)

// SnapshotHeader is embedded in every snapshot DTO so stored aggregates
// carry the version of the schema they were written with.
type SnapshotHeader struct {
    SchemaVersion int `json:"schema_version"`
}

// UnmarshalSnapshot decodes data into dto after checking that its schema
// version is one the caller understands. Snapshots written before versioning
// are read as version 1.
func UnmarshalSnapshot(data []byte, dto any, supportedVersion int) error {
    var header SnapshotHeader
    if err := json.Unmarshal(data, &header); err != nil {
        return fmt.Errorf("snapshot is not a json object: %w", err)
    }
    if header.SchemaVersion > supportedVersion {
        return fmt.Errorf("unsupported snapshot schema version %d (max %d)", header.SchemaVersion, supportedVersion)
    }
    return json.Unmarshal(data, dto)
}
