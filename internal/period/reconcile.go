package period

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"dealdesk/pkg/contracts/domain"
)

// ReconciliationDescription is the fixed description of the synthetic
// add-back that reconciles itemized add-backs to a caller-supplied total.
const ReconciliationDescription = "Reconciliation adjustment"

// oneCent is the tolerance under which a reconciliation delta is treated as
// zero and the synthetic entry is removed instead of stored.
var oneCent = decimal.New(1, -2)

// ReconcileAddBacks forces the add-backs to sum to desiredTotal without
// discarding the itemized entries: it upserts a single synthetic entry
// whose amount is the difference between the desired total and the sum of
// all other add-backs. When the difference is within one cent of zero any
// existing synthetic entry is deleted rather than kept as a zero row.
func ReconcileAddBacks(addBacks []domain.AddBack, desiredTotal decimal.Decimal) []domain.AddBack {
	others := decimal.Zero
	out := make([]domain.AddBack, 0, len(addBacks)+1)
	existingID := ""
	for _, ab := range addBacks {
		if ab.Category == domain.AddBackReconciliation {
			existingID = ab.ID
			continue
		}
		others = others.Add(ab.Amount)
		out = append(out, ab)
	}

	delta := desiredTotal.Sub(others)
	if delta.Abs().LessThan(oneCent) {
		return out
	}

	if existingID == "" {
		existingID = uuid.NewString()
	}
	out = append(out, domain.AddBack{
		ID:              existingID,
		Category:        domain.AddBackReconciliation,
		Description:     ReconciliationDescription,
		Amount:          delta,
		IncludeInEbitda: true,
		IncludeInSDE:    true,
	})
	return out
}
