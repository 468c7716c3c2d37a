package state

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"sort"
	"sync"

	"github.com/doridoridoriand/pvecfg/internal/usage"
)

// StoreImpl is a thread-safe in-memory resource index keyed by resource id.
type StoreImpl struct {
	mu        sync.RWMutex
	resources map[string]usage.Resource
}

// NewStore creates a store initialized with the provided resources.
func NewStore(resources []usage.Resource) *StoreImpl {
	store := &StoreImpl{resources: make(map[string]usage.Resource)}
	store.UpdateResources(resources)
	return store
}

// UpdateResources replaces the indexed resources. A later entry with the
// same id wins.
func (s *StoreImpl) UpdateResources(resources []usage.Resource) {
	updated := make(map[string]usage.Resource, len(resources))
	for _, r := range resources {
		updated[r.ID] = r
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.resources = updated
}

// GetResource returns a single resource by id.
func (s *StoreImpl) GetResource(id string) (usage.Resource, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	r, ok := s.resources[id]
	return r, ok
}

// Host returns the host record of node, looked up by its "node/<name>" id.
func (s *StoreImpl) Host(node string) (usage.Resource, bool) {
	return s.GetResource(usage.HostID(node))
}

// GetSnapshot returns every resource with its derived usage, ordered by id.
func (s *StoreImpl) GetSnapshot() []ResourceStatus {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make([]ResourceStatus, 0, len(s.resources))
	for _, r := range s.resources {
		result = append(result, s.derive(r))
	}
	sort.Slice(result, func(i, j int) bool { return result[i].ID < result[j].ID })
	return result
}

// derive expects s.mu to be held.
func (s *StoreImpl) derive(r usage.Resource) ResourceStatus {
	hosts := lockedLookup{s}
	return ResourceStatus{
		Resource:     r,
		State:        StatusOf(r),
		MemUsage:     usage.MemUsage(r),
		HostMemUsage: usage.HostMemUsage(r, hosts),
		DiskUsage:    usage.DiskUsage(r),
		HostCPU:      usage.HostCPU(r, hosts),
	}
}

// lockedLookup resolves hosts while the store lock is already held.
type lockedLookup struct{ s *StoreImpl }

func (l lockedLookup) Host(node string) (usage.Resource, bool) {
	r, ok := l.s.resources[usage.HostID(node)]
	return r, ok
}

// DecodeResources reads a resource list, either bare or wrapped in the
// API's {"data": [...]} envelope.
func DecodeResources(r io.Reader) ([]usage.Resource, error) {
	raw, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}

	var envelope struct {
		Data []usage.Resource `json:"data"`
	}
	if err := json.Unmarshal(raw, &envelope); err == nil && envelope.Data != nil {
		return envelope.Data, nil
	}

	var list []usage.Resource
	if err := json.Unmarshal(raw, &list); err != nil {
		return nil, fmt.Errorf("decode resources: %w", err)
	}
	return list, nil
}

// LoadResources reads a resource list from path.
func LoadResources(path string) ([]usage.Resource, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()
	return DecodeResources(file)
}
