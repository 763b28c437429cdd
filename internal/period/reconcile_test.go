package period

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"dealdesk/pkg/contracts/domain"
)

func TestReconcileAddBacks_InsertsDelta(t *testing.T) {
	addBacks := []domain.AddBack{
		{ID: "ab-1", Category: domain.AddBackDepreciation, Amount: dec("3000"), IncludeInEbitda: true, IncludeInSDE: true},
		{ID: "ab-2", Category: domain.AddBackInterest, Amount: dec("2000"), IncludeInEbitda: true, IncludeInSDE: true},
	}

	got := ReconcileAddBacks(addBacks, dec("8000"))

	require.Len(t, got, 3)
	synthetic := got[2]
	assert.Equal(t, domain.AddBackReconciliation, synthetic.Category)
	assert.Equal(t, ReconciliationDescription, synthetic.Description)
	assert.True(t, synthetic.Amount.Equal(dec("3000")), "delta: %s", synthetic.Amount)
	assert.True(t, synthetic.IncludeInEbitda)
	assert.True(t, synthetic.IncludeInSDE)
	assert.NotEmpty(t, synthetic.ID)
}

func TestReconcileAddBacks_NegativeDelta(t *testing.T) {
	addBacks := []domain.AddBack{
		{ID: "ab-1", Category: domain.AddBackOwnerCompensation, Amount: dec("50000"), IncludeInEbitda: true, IncludeInSDE: true},
	}

	got := ReconcileAddBacks(addBacks, dec("45000"))

	require.Len(t, got, 2)
	assert.True(t, got[1].Amount.Equal(dec("-5000")), "delta: %s", got[1].Amount)
}

func TestReconcileAddBacks_RemovesSyntheticWhenBalanced(t *testing.T) {
	addBacks := []domain.AddBack{
		{ID: "ab-1", Category: domain.AddBackDepreciation, Amount: dec("3000"), IncludeInEbitda: true, IncludeInSDE: true},
		{ID: "rec-1", Category: domain.AddBackReconciliation, Description: ReconciliationDescription, Amount: dec("500"), IncludeInEbitda: true, IncludeInSDE: true},
	}

	got := ReconcileAddBacks(addBacks, dec("3000"))

	require.Len(t, got, 1)
	assert.Equal(t, "ab-1", got[0].ID)
}

func TestReconcileAddBacks_SubCentDeltaTreatedAsZero(t *testing.T) {
	addBacks := []domain.AddBack{
		{ID: "ab-1", Category: domain.AddBackDepreciation, Amount: dec("3000"), IncludeInEbitda: true, IncludeInSDE: true},
	}

	got := ReconcileAddBacks(addBacks, dec("3000.005"))

	require.Len(t, got, 1)
	assert.Equal(t, "ab-1", got[0].ID)
}

func TestReconcileAddBacks_PreservesSyntheticID(t *testing.T) {
	addBacks := []domain.AddBack{
		{ID: "ab-1", Category: domain.AddBackDepreciation, Amount: dec("3000"), IncludeInEbitda: true, IncludeInSDE: true},
		{ID: "rec-1", Category: domain.AddBackReconciliation, Description: ReconciliationDescription, Amount: dec("500"), IncludeInEbitda: true, IncludeInSDE: true},
	}

	got := ReconcileAddBacks(addBacks, dec("4000"))

	require.Len(t, got, 2)
	assert.Equal(t, "rec-1", got[1].ID)
	assert.True(t, got[1].Amount.Equal(dec("1000")), "delta: %s", got[1].Amount)
}

func TestReconcileAddBacks_EmptyItemization(t *testing.T) {
	got := ReconcileAddBacks(nil, dec("1500"))

	require.Len(t, got, 1)
	assert.Equal(t, domain.AddBackReconciliation, got[0].Category)
	assert.True(t, got[0].Amount.Equal(dec("1500")))
}
