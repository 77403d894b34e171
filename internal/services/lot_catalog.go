package services

import (
	"context"
	"errors"
	"fmt"
	"lot-dispatch-service/internal/domain"
	"lot-dispatch-service/internal/ports"
	"slices"
	"strings"
	"sync"

	"github.com/rs/zerolog/log"
)

// LotCatalog is a read-only, lazily loaded view of the lot reference table.
//
// The table is fetched from the repository on first use and kept until Invalidate
// is called. The catalog is safe for concurrent use.
type LotCatalog struct {
	repo ports.LotRepository

	mu   sync.RWMutex
	lots map[string]domain.Lot
}

func NewLotCatalog(repo ports.LotRepository) *LotCatalog {
	return &LotCatalog{repo: repo}
}

// Invalidate drops the loaded table; the next lookup reloads it.
func (c *LotCatalog) Invalidate() {
	c.mu.Lock()
	c.lots = nil
	c.mu.Unlock()
}

func (c *LotCatalog) load(ctx context.Context) (map[string]domain.Lot, error) {
	c.mu.RLock()
	lots := c.lots
	c.mu.RUnlock()
	if lots != nil {
		return lots, nil
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	// Another caller may have loaded while we waited for the write lock.
	if c.lots != nil {
		return c.lots, nil
	}

	if c.repo == nil {
		return nil, errors.New("lot catalog: repository is nil")
	}

	list, err := c.repo.ListLots(ctx)
	if err != nil {
		return nil, fmt.Errorf("lot catalog: list lots: %w", err)
	}

	loaded := make(map[string]domain.Lot, len(list))
	for _, l := range list {
		id := strings.TrimSpace(l.ID)
		if id == "" {
			return nil, errors.New("lot catalog: lot with empty id")
		}
		if _, dup := loaded[id]; dup {
			return nil, fmt.Errorf("lot catalog: duplicate lot id %q", id)
		}
		loaded[id] = domain.Lot{ID: id, Coords: l.Coords}
	}

	log.Info().Int("lots", len(loaded)).Msg("lot catalog loaded")
	c.lots = loaded
	return loaded, nil
}

// Lookup returns the lot with the given id.
func (c *LotCatalog) Lookup(ctx context.Context, id string) (domain.Lot, bool, error) {
	lots, err := c.load(ctx)
	if err != nil {
		return domain.Lot{}, false, err
	}
	l, ok := lots[id]
	return l, ok, nil
}

// Resolve maps ids to lots in order, returning the ids it does not know.
func (c *LotCatalog) Resolve(ctx context.Context, ids []string) ([]domain.Lot, []string, error) {
	lots, err := c.load(ctx)
	if err != nil {
		return nil, nil, err
	}

	out := make([]domain.Lot, 0, len(ids))
	unknown := []string{}
	for _, id := range ids {
		l, ok := lots[id]
		if !ok {
			unknown = append(unknown, id)
			continue
		}
		out = append(out, l)
	}

	return out, unknown, nil
}

// All returns every lot sorted by id.
func (c *LotCatalog) All(ctx context.Context) ([]domain.Lot, error) {
	lots, err := c.load(ctx)
	if err != nil {
		return nil, err
	}

	out := make([]domain.Lot, 0, len(lots))
	for _, l := range lots {
		out = append(out, l)
	}
	slices.SortFunc(out, func(a, b domain.Lot) int { return strings.Compare(a.ID, b.ID) })

	return out, nil
}
