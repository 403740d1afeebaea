package memory

import (
	"encoding/json"
	"fmt"
)

// Snapshot captures a point-in-time clone of the store state. Each field is
// one persistence bucket.
type Snapshot struct {
	Buildings map[string]Building `json:"buildings"`
	Units     map[string]Unit     `json:"units"`
	Tenants   map[string]Tenant   `json:"tenants"`
	Invoices  map[string]Invoice  `json:"invoices"`
	Staff     map[string]Staff    `json:"staff"`
}

// Buckets lists the snapshot bucket names in persistence order.
var Buckets = []string{"buildings", "units", "tenants", "invoices", "staff"}

func (s *Snapshot) target(bucket string) (any, bool) {
	switch bucket {
	case "buildings":
		return &s.Buildings, true
	case "units":
		return &s.Units, true
	case "tenants":
		return &s.Tenants, true
	case "invoices":
		return &s.Invoices, true
	case "staff":
		return &s.Staff, true
	}
	return nil, false
}

// EncodeBuckets marshals every bucket to JSON keyed by bucket name.
func (s Snapshot) EncodeBuckets() (map[string][]byte, error) {
	out := make(map[string][]byte, len(Buckets))
	for _, bucket := range Buckets {
		target, _ := s.target(bucket)
		data, err := json.Marshal(target)
		if err != nil {
			return nil, fmt.Errorf("encode %s: %w", bucket, err)
		}
		out[bucket] = data
	}
	return out, nil
}

// DecodeBucket unmarshals one bucket payload into the snapshot. Unknown
// buckets and empty payloads are ignored.
func (s *Snapshot) DecodeBucket(bucket string, payload []byte) error {
	if len(payload) == 0 {
		return nil
	}
	target, ok := s.target(bucket)
	if !ok {
		return nil
	}
	if err := json.Unmarshal(payload, target); err != nil {
		return fmt.Errorf("decode %s: %w", bucket, err)
	}
	return nil
}

// IsEmpty reports whether the snapshot holds no records.
func (s Snapshot) IsEmpty() bool {
	return len(s.Buildings) == 0 && len(s.Units) == 0 && len(s.Tenants) == 0 &&
		len(s.Invoices) == 0 && len(s.Staff) == 0
}

func snapshotFromMemoryState(state memoryState) Snapshot {
	c := state.clone()
	return Snapshot{
		Buildings: c.buildings,
		Units:     c.units,
		Tenants:   c.tenants,
		Invoices:  c.invoices,
		Staff:     c.staff,
	}
}

func memoryStateFromSnapshot(s Snapshot) memoryState {
	state := newMemoryState()
	for k, v := range s.Buildings {
		state.buildings[k] = cloneBuilding(v)
	}
	for k, v := range s.Units {
		state.units[k] = v
	}
	for k, v := range s.Tenants {
		state.tenants[k] = cloneTenant(v)
	}
	for k, v := range s.Invoices {
		state.invoices[k] = cloneInvoice(v)
	}
	for k, v := range s.Staff {
		state.staff[k] = v
	}
	return state
}

// ExportState clones the current store state for external persistence.
func (s *Store) ExportState() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return snapshotFromMemoryState(s.state)
}

// ImportState replaces the store state with the provided snapshot.
func (s *Store) ImportState(snapshot Snapshot) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state = memoryStateFromSnapshot(snapshot)
}
