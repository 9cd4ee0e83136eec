package memory

import (
	"context"
	"sort"

	"github.com/edicionpersuasiva/crm/internal/entity"
)

type AdLinkRepository struct {
	s *Store
}

func (r *AdLinkRepository) Create(ctx context.Context, l *entity.AdLink) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.adLinks[l.Slug]; ok {
		return entity.ErrAdLinkSlugTaken
	}
	cp := *l
	r.s.adLinks[l.Slug] = &cp
	return nil
}

func (r *AdLinkRepository) List(ctx context.Context) ([]*entity.AdLink, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	out := make([]*entity.AdLink, 0, len(r.s.adLinks))
	for _, l := range r.s.adLinks {
		cp := *l
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (r *AdLinkRepository) RegisterClick(ctx context.Context, slug string) (*entity.AdLink, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	l, ok := r.s.adLinks[slug]
	if !ok {
		return nil, entity.ErrAdLinkNotFound
	}
	l.Clicks++
	cp := *l
	return &cp, nil
}
