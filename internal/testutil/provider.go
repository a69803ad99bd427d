package testutil

import (
	"context"
	"os"
	"sync"
	"time"

	"omnisort/internal/sorter"
)

// StubProvider is a sorter.MetadataProvider with canned results keyed by
// file name. Image files without a canned hash get a content hash read
// from disk, matching the built-in provider.
type StubProvider struct {
	mu     sync.Mutex
	tags   map[string]sorter.TagSet
	errs   map[string]error
	delays map[string]time.Duration
	panics map[string]bool
	calls  int
}

// NewStubProvider creates a StubProvider with nothing canned.
func NewStubProvider() *StubProvider {
	return &StubProvider{
		tags:   make(map[string]sorter.TagSet),
		errs:   make(map[string]error),
		delays: make(map[string]time.Duration),
		panics: make(map[string]bool),
	}
}

// SetTags cans the tags returned for files named name.
func (p *StubProvider) SetTags(name string, tags sorter.TagSet) *StubProvider {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.tags[name] = tags
	return p
}

// SetError makes extraction for files named name report degraded extraction.
func (p *StubProvider) SetError(name string, err error) *StubProvider {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.errs[name] = err
	return p
}

// SetDelay makes extraction for files named name block for d or until cancelled.
func (p *StubProvider) SetDelay(name string, d time.Duration) *StubProvider {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.delays[name] = d
	return p
}

// SetPanic makes extraction for files named name panic.
func (p *StubProvider) SetPanic(name string) *StubProvider {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.panics[name] = true
	return p
}

// Calls returns how many times Extract has been invoked.
func (p *StubProvider) Calls() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.calls
}

func (p *StubProvider) Extract(ctx context.Context, rec *sorter.FileRecord) (sorter.TagSet, error) {
	p.mu.Lock()
	p.calls++
	tags, canned := p.tags[rec.Name]
	err := p.errs[rec.Name]
	delay := p.delays[rec.Name]
	shouldPanic := p.panics[rec.Name]
	p.mu.Unlock()

	if shouldPanic {
		panic("stub provider panic for " + rec.Name)
	}
	if delay > 0 {
		select {
		case <-time.After(delay):
		case <-ctx.Done():
			return sorter.TagSet{}, ctx.Err()
		}
	}
	if (!canned || tags.Hash == "") && sorter.TypeForExt(rec.Ext) == sorter.TypeImage {
		if data, readErr := os.ReadFile(rec.Path); readErr == nil {
			tags.Hash = ContentHash(data)
		}
	}
	return tags, err
}

var _ sorter.MetadataProvider = (*StubProvider)(nil)
