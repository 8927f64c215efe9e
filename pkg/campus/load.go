package campus

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/pkg/errors"
)

// ErrEmptyDataset is returned when a document has no graph nodes at all.
var ErrEmptyDataset = errors.New("dataset has no nodes")

// Load decodes and validates a dataset document.
func Load(r io.Reader) (*Dataset, error) {
	var ds Dataset
	if err := json.NewDecoder(r).Decode(&ds); err != nil {
		return nil, errors.Wrap(err, "decode dataset")
	}
	if err := ds.Validate(); err != nil {
		return nil, err
	}
	return &ds, nil
}

// LoadFile reads a dataset document from disk.
func LoadFile(path string) (*Dataset, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrap(err, "open dataset")
	}
	defer f.Close()

	ds, err := Load(f)
	if err != nil {
		return nil, errors.Wrapf(err, "load %s", path)
	}
	return ds, nil
}

// Validate checks the structural invariants the routing engine relies on:
// node ids are unique across the combined indoor and outdoor sets and no
// edge has a negative weight.
func (d *Dataset) Validate() error {
	if len(d.Indoor.Nodes) == 0 && len(d.Outdoor.Nodes) == 0 {
		return ErrEmptyDataset
	}

	seen := make(map[string]string, len(d.Indoor.Nodes)+len(d.Outdoor.Nodes))
	for i := range d.Indoor.Nodes {
		id := d.Indoor.Nodes[i].ID
		if id == "" {
			return errors.Errorf("indoor node %d has an empty id", i)
		}
		if _, dup := seen[id]; dup {
			return errors.Errorf("duplicate node id %q", id)
		}
		seen[id] = "indoor"
	}
	for i := range d.Outdoor.Nodes {
		id := d.Outdoor.Nodes[i].ID
		if id == "" {
			return errors.Errorf("outdoor node %d has an empty id", i)
		}
		if domain, dup := seen[id]; dup {
			return errors.Errorf("duplicate node id %q (already used by an %s node)", id, domain)
		}
		seen[id] = "outdoor"
	}

	for _, edges := range [][]Edge{d.Indoor.Edges, d.Outdoor.Edges} {
		for _, e := range edges {
			if e.Weight < 0 {
				return errors.Errorf("edge %s -> %s has negative weight %f", e.From, e.To, e.Weight)
			}
		}
	}
	return nil
}

// WriteFile serializes the dataset to path atomically via a temp file.
func WriteFile(path string, d *Dataset) error {
	tmpPath := path + ".tmp"
	f, err := os.Create(tmpPath)
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	defer func() {
		f.Close()
		os.Remove(tmpPath) // clean up on error
	}()

	enc := json.NewEncoder(f)
	if err := enc.Encode(d); err != nil {
		return fmt.Errorf("encode dataset: %w", err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("close temp file: %w", err)
	}

	if err := os.Rename(tmpPath, path); err != nil {
		return fmt.Errorf("rename: %w", err)
	}
	return nil
}
