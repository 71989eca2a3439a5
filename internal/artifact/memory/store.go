// Package memory implements an in-memory artifact store for tests.
package memory

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"sort"
	"strings"
	"sync"
	"time"

	"genomecorrupt/internal/artifact"
)

type entry struct {
	info artifact.Info
	data []byte
}

// Store keeps objects in process memory.
type Store struct {
	mu   sync.RWMutex
	objs map[string]entry
}

// New returns an empty store.
func New() *Store { return &Store{objs: make(map[string]entry)} }

func (s *Store) Driver() artifact.Driver { return artifact.DriverMemory }

func (s *Store) Put(_ context.Context, key string, r io.Reader, opts artifact.PutOptions) (artifact.Info, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.objs[key]; ok {
		return artifact.Info{}, fmt.Errorf("%w: %s", artifact.ErrExists, key)
	}
	b, err := io.ReadAll(r)
	if err != nil {
		return artifact.Info{}, err
	}
	info := artifact.Info{Key: key, Size: int64(len(b)), ContentType: opts.ContentType, Metadata: artifact.CloneMetadata(opts.Metadata), LastModified: time.Now().UTC()}
	s.objs[key] = entry{info: info, data: b}
	return info, nil
}

func (s *Store) Get(_ context.Context, key string) (artifact.Info, io.ReadCloser, error) {
	s.mu.RLock()
	obj, ok := s.objs[key]
	s.mu.RUnlock()
	if !ok {
		return artifact.Info{}, nil, fmt.Errorf("%w: %s", artifact.ErrNotFound, key)
	}
	data := make([]byte, len(obj.data))
	copy(data, obj.data)
	info := obj.info
	info.Metadata = artifact.CloneMetadata(info.Metadata)
	return info, io.NopCloser(bytes.NewReader(data)), nil
}

// Delete removes the object returning true if it existed.
func (s *Store) Delete(_ context.Context, key string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.objs[key]
	delete(s.objs, key)
	return ok, nil
}

func (s *Store) List(_ context.Context, prefix string) ([]artifact.Info, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []artifact.Info
	for k, obj := range s.objs {
		if strings.HasPrefix(k, prefix) {
			out = append(out, obj.info)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Key < out[j].Key })
	return out, nil
}
