package period

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"dealdesk/internal/errors"
	"dealdesk/pkg/contracts/domain"
)

// Store is an in-memory registry of reporting periods implementing the
// persistence boundary contract: the (opportunity, period type, year,
// quarter) uniqueness constraint surfaces as a distinct conflict error, a
// period exclusively owns its line items and add-backs, locked periods
// reject every mutation before any state is touched, and every accepted
// mutation triggers a full summary recompute and yields an audit entry for
// the caller to record.
//
// The engine assumes single-writer access per period; the store's mutex
// only guards the registry itself.
type Store struct {
	mu         sync.RWMutex
	logger     *slog.Logger
	summarizer *Summarizer
	periods    map[domain.PeriodKey]*domain.ReportingPeriod
}

// NewStore creates an empty period store.
func NewStore(logger *slog.Logger) *Store {
	if logger == nil {
		logger = slog.Default()
	}
	return &Store{
		logger:     logger,
		summarizer: NewSummarizer(logger),
		periods:    make(map[domain.PeriodKey]*domain.ReportingPeriod),
	}
}

// Create registers a new period. Duplicate keys are rejected with a
// conflict error the caller can tell apart from other failures. The stored
// period's summary is recomputed so it can never be stale.
func (s *Store) Create(ctx context.Context, p domain.ReportingPeriod) (*domain.ReportingPeriod, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	key := p.Key()
	if _, exists := s.periods[key]; exists {
		return nil, errors.NewDuplicatePeriodError(key)
	}

	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	if p.CreatedAt.IsZero() {
		p.CreatedAt = now
	}
	p.UpdatedAt = now
	p.Computed = s.summarizer.Summarize(p.LineItems, p.AddBacks, &p.Overrides)

	stored := clonePeriod(&p)
	s.periods[key] = stored

	s.logger.InfoContext(ctx, "period created",
		slog.String("period", key.String()),
		slog.Int("line_items", len(p.LineItems)),
		slog.Int("add_backs", len(p.AddBacks)))

	out := clonePeriod(stored)
	return out, nil
}

// Get returns a copy of the period for the given key.
func (s *Store) Get(key domain.PeriodKey) (*domain.ReportingPeriod, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	p, ok := s.periods[key]
	if !ok {
		return nil, errors.NewNotFoundError("period " + key.String())
	}
	return clonePeriod(p), nil
}

// List returns copies of all periods belonging to an opportunity.
func (s *Store) List(opportunityID string) []domain.ReportingPeriod {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []domain.ReportingPeriod
	for _, p := range s.periods {
		if p.OpportunityID == opportunityID {
			out = append(out, *clonePeriod(p))
		}
	}
	return out
}

// Delete removes a period and, through exclusive ownership, its line items
// and add-backs. Locked periods cannot be deleted.
func (s *Store) Delete(ctx context.Context, key domain.PeriodKey) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.periods[key]
	if !ok {
		return errors.NewNotFoundError("period " + key.String())
	}
	if p.IsLocked {
		return errors.NewLockedPeriodError(key)
	}
	delete(s.periods, key)
	s.logger.InfoContext(ctx, "period deleted", slog.String("period", key.String()))
	return nil
}

// SetLocked toggles the period's lock flag. Locking is always permitted;
// every other mutation path checks the flag first.
func (s *Store) SetLocked(ctx context.Context, key domain.PeriodKey, locked bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.periods[key]
	if !ok {
		return errors.NewNotFoundError("period " + key.String())
	}
	p.IsLocked = locked
	p.UpdatedAt = time.Now().UTC()
	s.logger.InfoContext(ctx, "period lock changed",
		slog.String("period", key.String()),
		slog.Bool("locked", locked))
	return nil
}

// AddLineItem appends a line item and recomputes the summary.
func (s *Store) AddLineItem(ctx context.Context, key domain.PeriodKey, item domain.LineItem) (*domain.ReportingPeriod, *domain.AuditEntry, error) {
	return s.mutate(ctx, key, func(p *domain.ReportingPeriod) (*domain.AuditEntry, error) {
		if item.ID == "" {
			item.ID = uuid.NewString()
		}
		p.LineItems = append(p.LineItems, item)
		return s.audit(key, domain.AuditActionCreated, "line item", string(item.Category), item.RawLabel, item.SignedAmount()), nil
	})
}

// UpdateLineItem replaces the line item with the same ID.
func (s *Store) UpdateLineItem(ctx context.Context, key domain.PeriodKey, item domain.LineItem) (*domain.ReportingPeriod, *domain.AuditEntry, error) {
	return s.mutate(ctx, key, func(p *domain.ReportingPeriod) (*domain.AuditEntry, error) {
		for i := range p.LineItems {
			if p.LineItems[i].ID == item.ID {
				p.LineItems[i] = item
				return s.audit(key, domain.AuditActionUpdated, "line item", string(item.Category), item.RawLabel, item.SignedAmount()), nil
			}
		}
		return nil, errors.NewNotFoundError("line item " + item.ID)
	})
}

// RemoveLineItem deletes the line item with the given ID.
func (s *Store) RemoveLineItem(ctx context.Context, key domain.PeriodKey, itemID string) (*domain.ReportingPeriod, *domain.AuditEntry, error) {
	return s.mutate(ctx, key, func(p *domain.ReportingPeriod) (*domain.AuditEntry, error) {
		for i := range p.LineItems {
			if p.LineItems[i].ID == itemID {
				removed := p.LineItems[i]
				p.LineItems = append(p.LineItems[:i], p.LineItems[i+1:]...)
				return s.audit(key, domain.AuditActionDeleted, "line item", string(removed.Category), removed.RawLabel, removed.SignedAmount()), nil
			}
		}
		return nil, errors.NewNotFoundError("line item " + itemID)
	})
}

// AddAddBack appends an add-back and recomputes the summary.
func (s *Store) AddAddBack(ctx context.Context, key domain.PeriodKey, ab domain.AddBack) (*domain.ReportingPeriod, *domain.AuditEntry, error) {
	return s.mutate(ctx, key, func(p *domain.ReportingPeriod) (*domain.AuditEntry, error) {
		if ab.ID == "" {
			ab.ID = uuid.NewString()
		}
		p.AddBacks = append(p.AddBacks, ab)
		return s.audit(key, domain.AuditActionCreated, "add-back", string(ab.Category), ab.Description, ab.Amount), nil
	})
}

// RemoveAddBack deletes the add-back with the given ID.
func (s *Store) RemoveAddBack(ctx context.Context, key domain.PeriodKey, addBackID string) (*domain.ReportingPeriod, *domain.AuditEntry, error) {
	return s.mutate(ctx, key, func(p *domain.ReportingPeriod) (*domain.AuditEntry, error) {
		for i := range p.AddBacks {
			if p.AddBacks[i].ID == addBackID {
				removed := p.AddBacks[i]
				p.AddBacks = append(p.AddBacks[:i], p.AddBacks[i+1:]...)
				return s.audit(key, domain.AuditActionDeleted, "add-back", string(removed.Category), removed.Description, removed.Amount), nil
			}
		}
		return nil, errors.NewNotFoundError("add-back " + addBackID)
	})
}

// SetOverrides replaces the period's overrides wholesale.
func (s *Store) SetOverrides(ctx context.Context, key domain.PeriodKey, ov domain.PeriodOverrides) (*domain.ReportingPeriod, *domain.AuditEntry, error) {
	return s.mutate(ctx, key, func(p *domain.ReportingPeriod) (*domain.AuditEntry, error) {
		p.Overrides = ov
		return s.audit(key, domain.AuditActionUpdated, "overrides", "", "manual overrides", decimal.Zero), nil
	})
}

// SetAddBackTotal reconciles the period's add-backs to the desired total by
// upserting the synthetic reconciliation entry.
func (s *Store) SetAddBackTotal(ctx context.Context, key domain.PeriodKey, desired decimal.Decimal) (*domain.ReportingPeriod, *domain.AuditEntry, error) {
	return s.mutate(ctx, key, func(p *domain.ReportingPeriod) (*domain.AuditEntry, error) {
		p.AddBacks = ReconcileAddBacks(p.AddBacks, desired)
		return s.audit(key, domain.AuditActionUpdated, "add-back", string(domain.AddBackReconciliation), ReconciliationDescription, desired), nil
	})
}

// mutate runs fn against the stored period under the lock discipline: the
// locked-period check happens before fn touches anything, and an accepted
// mutation is always followed by a full summary recompute within the same
// logical transaction.
func (s *Store) mutate(ctx context.Context, key domain.PeriodKey, fn func(*domain.ReportingPeriod) (*domain.AuditEntry, error)) (*domain.ReportingPeriod, *domain.AuditEntry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	stored, ok := s.periods[key]
	if !ok {
		return nil, nil, errors.NewNotFoundError("period " + key.String())
	}
	if stored.IsLocked {
		return nil, nil, errors.NewLockedPeriodError(key)
	}

	// Work on a copy so a failed mutation leaves the stored period intact.
	working := clonePeriod(stored)
	entry, err := fn(working)
	if err != nil {
		return nil, nil, err
	}

	working.Computed = s.summarizer.Summarize(working.LineItems, working.AddBacks, &working.Overrides)
	working.UpdatedAt = time.Now().UTC()
	s.periods[key] = working

	if entry != nil {
		s.logger.InfoContext(ctx, "period mutated", slog.String("audit", entry.Message()))
	}

	return clonePeriod(working), entry, nil
}

func (s *Store) audit(key domain.PeriodKey, action domain.AuditAction, entity, category, description string, amount decimal.Decimal) *domain.AuditEntry {
	return &domain.AuditEntry{
		PeriodKey:   key,
		Action:      action,
		Entity:      entity,
		Category:    category,
		Description: description,
		Amount:      amount,
		OccurredAt:  time.Now().UTC(),
	}
}

// clonePeriod copies a period along with its owned slices so callers and
// the registry never alias each other's data.
func clonePeriod(p *domain.ReportingPeriod) *domain.ReportingPeriod {
	cp := *p
	cp.LineItems = append([]domain.LineItem(nil), p.LineItems...)
	cp.AddBacks = append([]domain.AddBack(nil), p.AddBacks...)
	return &cp
}
