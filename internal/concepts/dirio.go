package concepts

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"time"

	"archetypon/internal/model"
)

const (
	rootMetadataFile    = "metadata.json"
	conceptMetadataFile = "metadata.json"
	prototypesDir       = "prototypes"
)

// DirMetadata is the root metadata.json of a concept directory tree.
type DirMetadata struct {
	model.VersionedRecord
	NumConcepts  int    `json:"num_concepts"`
	CreatedAtUTC string `json:"created_at_utc"`
}

// Writer persists a concept set as a directory tree: a root metadata.json
// plus one numbered directory per concept holding its metadata.json and a
// prototypes/ subdirectory with one JSON file per prototype.
type Writer struct {
	Path string
}

func (w Writer) Write(conceptList []model.Concept) error {
	if w.Path == "" {
		return fmt.Errorf("writer path is required")
	}
	if err := os.MkdirAll(w.Path, 0o755); err != nil {
		return err
	}

	meta := DirMetadata{
		VersionedRecord: Stamp(),
		NumConcepts:     len(conceptList),
		CreatedAtUTC:    time.Now().UTC().Format(time.RFC3339Nano),
	}
	if err := writeJSON(filepath.Join(w.Path, rootMetadataFile), meta); err != nil {
		return err
	}

	for _, concept := range conceptList {
		conceptDir := filepath.Join(w.Path, strconv.Itoa(concept.Index))
		if err := os.MkdirAll(conceptDir, 0o755); err != nil {
			return err
		}
		concept.VersionedRecord = Stamp()
		if err := writeJSON(filepath.Join(conceptDir, conceptMetadataFile), concept); err != nil {
			return fmt.Errorf("write concept %d: %w", concept.Index, err)
		}
		if len(concept.Prototypes) == 0 {
			continue
		}
		protoDir := filepath.Join(conceptDir, prototypesDir)
		if err := os.MkdirAll(protoDir, 0o755); err != nil {
			return err
		}
		for i, prototype := range concept.Prototypes {
			name := fmt.Sprintf("prototype_%d.json", i)
			if err := writeJSON(filepath.Join(protoDir, name), prototype); err != nil {
				return fmt.Errorf("write prototype %d of concept %d: %w", i, concept.Index, err)
			}
		}
	}
	return nil
}

// Reader loads a concept set previously persisted by Writer.
type Reader struct {
	Path string
}

func (r Reader) Read() ([]model.Concept, error) {
	if r.Path == "" {
		return nil, fmt.Errorf("reader path is required")
	}

	metaPayload, err := os.ReadFile(filepath.Join(r.Path, rootMetadataFile))
	if err != nil {
		return nil, fmt.Errorf("read root metadata: %w", err)
	}
	var meta DirMetadata
	if err := json.Unmarshal(metaPayload, &meta); err != nil {
		return nil, fmt.Errorf("decode root metadata: %w", err)
	}
	if err := checkVersion(meta.VersionedRecord); err != nil {
		return nil, err
	}

	entries, err := os.ReadDir(r.Path)
	if err != nil {
		return nil, err
	}

	var out []model.Concept
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		if _, err := strconv.Atoi(entry.Name()); err != nil {
			continue
		}
		payload, err := os.ReadFile(filepath.Join(r.Path, entry.Name(), conceptMetadataFile))
		if err != nil {
			return nil, fmt.Errorf("read concept %s: %w", entry.Name(), err)
		}
		concept, err := DecodeConcept(payload)
		if err != nil {
			return nil, fmt.Errorf("decode concept %s: %w", entry.Name(), err)
		}
		out = append(out, concept)
	}
	if len(out) != meta.NumConcepts {
		return nil, fmt.Errorf("concept count mismatch: found=%d metadata=%d", len(out), meta.NumConcepts)
	}

	sort.Slice(out, func(i, j int) bool { return out[i].Index < out[j].Index })
	return out, nil
}

func writeJSON(path string, value any) error {
	payload, err := json.MarshalIndent(value, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, payload, 0o644)
}
