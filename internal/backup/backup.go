package backup

import (
	"bytes"
	"context"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/santhosh-tekuri/jsonschema/v5"

	"realmlog/internal/store"
)

// Version is the snapshot format written by Export.
const Version = 1

var ErrInvalidSnapshot = errors.New("invalid snapshot")

//go:embed schema.json
var schemaJSON string

var snapshotSchema = jsonschema.MustCompileString("realmlog-snapshot.json", schemaJSON)

type Meta struct {
	ExportedAt time.Time `json:"exportedAt"`
	Version    int       `json:"version"`
}

type Snapshot struct {
	Meta   Meta                        `json:"meta"`
	Tables map[string][]map[string]any `json:"tables"`
}

func Export(ctx context.Context, db store.Store, now time.Time) (Snapshot, error) {
	tables, err := db.ExportTables(ctx)
	if err != nil {
		return Snapshot{}, err
	}
	return Snapshot{
		Meta:   Meta{ExportedAt: now.UTC(), Version: Version},
		Tables: tables,
	}, nil
}

// Import replaces every table named in snap. The caller re-runs game
// initialization afterwards so in-memory state matches the new rows.
func Import(ctx context.Context, db store.Store, snap Snapshot) error {
	if snap.Meta.Version > Version {
		return fmt.Errorf("%w: version %d is newer than %d", ErrInvalidSnapshot, snap.Meta.Version, Version)
	}
	if err := store.ValidateImport(snap.Tables); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidSnapshot, err)
	}
	if err := db.ImportTables(ctx, snap.Tables); err != nil {
		return fmt.Errorf("importing snapshot: %w", err)
	}
	return nil
}

func Encode(snap Snapshot) ([]byte, error) {
	return json.MarshalIndent(snap, "", "  ")
}

// Decode validates data against the snapshot schema. Numbers come back as
// int64 when they are integral and float64 otherwise.
func Decode(data []byte) (Snapshot, error) {
	var doc any
	if err := json.Unmarshal(data, &doc); err != nil {
		return Snapshot{}, fmt.Errorf("%w: %w", ErrInvalidSnapshot, err)
	}
	if err := snapshotSchema.Validate(doc); err != nil {
		return Snapshot{}, fmt.Errorf("%w: %w", ErrInvalidSnapshot, err)
	}

	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	var snap Snapshot
	if err := dec.Decode(&snap); err != nil {
		return Snapshot{}, fmt.Errorf("%w: %w", ErrInvalidSnapshot, err)
	}
	for _, rows := range snap.Tables {
		for _, row := range rows {
			for k, v := range row {
				row[k] = convertNumber(v)
			}
		}
	}
	return snap, nil
}

func convertNumber(v any) any {
	n, ok := v.(json.Number)
	if !ok {
		return v
	}
	if i, err := n.Int64(); err == nil {
		return i
	}
	if f, err := n.Float64(); err == nil {
		return f
	}
	return n.String()
}
