package rank

import (
	"context"
	"fmt"
	"log"
	"sync"
)

// VocabSource supplies the graph-known vocabularies.
type VocabSource interface {
	AllSkills(ctx context.Context) ([]string, error)
	AllCompanies(ctx context.Context) ([]string, error)
}

// Vocab lazily caches the skills and companies vocabularies for the
// process lifetime. Invalidate drops the cache after a recompute.
type Vocab struct {
	source VocabSource

	mu        sync.Mutex
	loaded    bool
	skills    []string
	companies []string
}

func NewVocab(source VocabSource) *Vocab {
	return &Vocab{source: source}
}

// Get returns the cached vocabularies, loading them on first use.
func (v *Vocab) Get(ctx context.Context) (skills, companies []string, err error) {
	v.mu.Lock()
	defer v.mu.Unlock()
	if !v.loaded {
		skills, err := v.source.AllSkills(ctx)
		if err != nil {
			return nil, nil, fmt.Errorf("load skills vocabulary: %w", err)
		}
		companies, err := v.source.AllCompanies(ctx)
		if err != nil {
			return nil, nil, fmt.Errorf("load companies vocabulary: %w", err)
		}
		v.skills = skills
		v.companies = companies
		v.loaded = true
		log.Printf("[Rank] Loaded vocabularies: %d skills, %d companies", len(skills), len(companies))
	}
	return v.skills, v.companies, nil
}

// Invalidate forces a reload on the next Get.
func (v *Vocab) Invalidate() {
	v.mu.Lock()
	v.loaded = false
	v.skills = nil
	v.companies = nil
	v.mu.Unlock()
}
