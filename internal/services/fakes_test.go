package services

import (
	"context"
	"errors"
	"sync"
	"time"

	"medsosmon-backend-go/internal/models"
)

func strPtr(s string) *string {
	return &s
}

// fixedNow is a deterministic Jakarta reference instant used across the
// engine tests: Friday 2025-07-18 10:30 WIB.
var fixedNow = time.Date(2025, 7, 18, 10, 30, 0, 0, JakartaLocation())

type fakeUnitDirectory struct {
	mu    sync.Mutex
	units map[string]models.Unit
	err   error
	calls int
}

func (f *fakeUnitDirectory) FindUnitByID(ctx context.Context, id string) (models.Unit, error) {
	f.mu.Lock()
	f.calls++
	f.mu.Unlock()
	if f.err != nil {
		return models.Unit{}, f.err
	}
	unit, ok := f.units[id]
	if !ok {
		return models.Unit{}, ErrNotFound("satker tidak ditemukan: " + id)
	}
	return unit, nil
}

type fakePersonDirectory struct {
	persons []models.Person
	err     error
}

func (f *fakePersonDirectory) ListActivePersons(ctx context.Context, spec QuerySpec) ([]models.Person, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.persons, nil
}

type fakePostStore struct {
	mu    sync.Mutex
	posts map[QueryKind][]models.Post
	err   error
	specs []QuerySpec
}

func (f *fakePostStore) ListPostsInWindow(ctx context.Context, platform string, spec QuerySpec, window TimeRange) ([]models.Post, error) {
	f.mu.Lock()
	f.specs = append(f.specs, spec)
	f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	matched := []models.Post{}
	for _, p := range f.posts[spec.Kind] {
		if p.Platform == platform {
			matched = append(matched, p)
		}
	}
	return matched, nil
}

type fakeEngagementStore struct {
	mu      sync.Mutex
	sets    map[string][]interface{}
	failing map[string]bool
	calls   int
}

func (f *fakeEngagementStore) GetEngagementSet(ctx context.Context, platform, postID string) ([]interface{}, error) {
	f.mu.Lock()
	f.calls++
	f.mu.Unlock()
	if f.failing[postID] {
		return nil, errors.New("engagement backend down")
	}
	return f.sets[postID], nil
}

type failingCacheStore struct{}

func (failingCacheStore) Get(ctx context.Context, key string) (string, error) {
	return "", errors.New("cache unreachable")
}

func (failingCacheStore) Set(ctx context.Context, key, value string, ttl time.Duration) error {
	return errors.New("cache unreachable")
}
