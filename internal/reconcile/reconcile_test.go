package reconcile

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/alanyoungcy/poswatch/internal/domain"
)

func pos(conditionID, outcome string, size float64) domain.Position {
	return domain.Position{
		ConditionID: conditionID,
		Outcome:     outcome,
		Title:       "Will it happen?",
		Size:        size,
		AvgPrice:    0.42,
		CurPrice:    0.55,
		PercentPnL:  30.95,
	}
}

const threshold = 0.01

func TestDiffOpened(t *testing.T) {
	t.Parallel()

	alerts, next, err := Diff(domain.Snapshot{}, []domain.Position{pos("0xabc", "Yes", 5)}, threshold)
	require.NoError(t, err)

	require.Len(t, alerts, 1)
	assert.Equal(t, domain.AlertOpened, alerts[0].Kind)
	assert.Equal(t, "0xabc:Yes", alerts[0].Key)
	assert.Contains(t, alerts[0].Body, "Will it happen? - Yes")
	assert.Contains(t, alerts[0].Body, "Size: 5.0000")

	require.Len(t, next, 1)
	assert.Equal(t, 5.0, next["0xabc:Yes"].Size)
}

func TestDiffOpenedIgnoresSignificanceFilter(t *testing.T) {
	t.Parallel()

	// Opens alert on any size > 0, even below the change threshold.
	alerts, next, err := Diff(domain.Snapshot{}, []domain.Position{pos("0xabc", "Yes", 0.005)}, threshold)
	require.NoError(t, err)

	require.Len(t, alerts, 1)
	assert.Equal(t, domain.AlertOpened, alerts[0].Kind)
	assert.Len(t, next, 1)
}

func TestDiffNegativeSizeNeverOpens(t *testing.T) {
	t.Parallel()

	// A negative-size row is treated like a zero-size one: it is neither
	// stored nor alerted on, so the snapshot never carries size <= 0.
	alerts, next, err := Diff(domain.Snapshot{}, []domain.Position{pos("0xabc", "Yes", -1)}, threshold)
	require.NoError(t, err)

	assert.Empty(t, alerts)
	assert.Empty(t, next)
}

func TestDiffNegativeSizeClosesExistingPosition(t *testing.T) {
	t.Parallel()

	// When a tracked position comes back with a negative size, the row is
	// dropped and the close is inferred by absence like any other straggler.
	old := domain.Snapshot{"0xabc:Yes": {Size: 5, AvgPrice: 0.42, Title: "Will it happen?", Outcome: "Yes"}}
	alerts, next, err := Diff(old, []domain.Position{pos("0xabc", "Yes", -2)}, threshold)
	require.NoError(t, err)

	require.Len(t, alerts, 1)
	assert.Equal(t, domain.AlertClosed, alerts[0].Kind)
	assert.Equal(t, "0xabc:Yes", alerts[0].Key)
	assert.Empty(t, next)
}

func TestDiffIncreased(t *testing.T) {
	t.Parallel()

	old := domain.Snapshot{"0xabc:Yes": {Size: 5, AvgPrice: 0.42, Title: "Will it happen?", Outcome: "Yes"}}
	alerts, next, err := Diff(old, []domain.Position{pos("0xabc", "Yes", 7)}, threshold)
	require.NoError(t, err)

	require.Len(t, alerts, 1)
	assert.Equal(t, domain.AlertIncreased, alerts[0].Kind)
	assert.Contains(t, alerts[0].Body, "5.0000 → 7.0000 (+2.0000)")
	assert.Equal(t, 7.0, next["0xabc:Yes"].Size)
}

func TestDiffDecreased(t *testing.T) {
	t.Parallel()

	old := domain.Snapshot{"0xabc:Yes": {Size: 7, AvgPrice: 0.42, Title: "Will it happen?", Outcome: "Yes"}}
	alerts, next, err := Diff(old, []domain.Position{pos("0xabc", "Yes", 5)}, threshold)
	require.NoError(t, err)

	require.Len(t, alerts, 1)
	assert.Equal(t, domain.AlertDecreased, alerts[0].Kind)
	// Delta reported as positive magnitude.
	assert.Contains(t, alerts[0].Body, "7.0000 → 5.0000 (-2.0000)")
	assert.Equal(t, 5.0, next["0xabc:Yes"].Size)
}

func TestDiffSuppressesNoise(t *testing.T) {
	t.Parallel()

	old := domain.Snapshot{"0xabc:Yes": {Size: 5.000, AvgPrice: 0.42, Title: "Will it happen?", Outcome: "Yes"}}
	alerts, next, err := Diff(old, []domain.Position{pos("0xabc", "Yes", 5.005)}, threshold)
	require.NoError(t, err)

	// No alert, but the stored size still advances.
	assert.Empty(t, alerts)
	assert.Equal(t, 5.005, next["0xabc:Yes"].Size)
}

func TestDiffClosedByDisappearance(t *testing.T) {
	t.Parallel()

	old := domain.Snapshot{"0xabc:Yes": {Size: 3, AvgPrice: 0.42, Title: "Will it happen?", Outcome: "Yes"}}
	alerts, next, err := Diff(old, nil, threshold)
	require.NoError(t, err)

	require.Len(t, alerts, 1)
	assert.Equal(t, domain.AlertClosed, alerts[0].Kind)
	assert.Equal(t, "0xabc:Yes", alerts[0].Key)
	assert.Contains(t, alerts[0].Body, "3.0000 → 0")
	assert.Empty(t, next)
}

func TestDiffClosedByExplicitZero(t *testing.T) {
	t.Parallel()

	// A zero-size row is skipped in the fetch pass, then the key's absence
	// from the new snapshot triggers exactly one close in the straggler
	// pass — not two.
	old := domain.Snapshot{"0xabc:Yes": {Size: 3, AvgPrice: 0.42, Title: "Will it happen?", Outcome: "Yes"}}
	alerts, next, err := Diff(old, []domain.Position{pos("0xabc", "Yes", 0)}, threshold)
	require.NoError(t, err)

	require.Len(t, alerts, 1)
	assert.Equal(t, domain.AlertClosed, alerts[0].Kind)
	assert.Empty(t, next)
}

func TestDiffZeroSizeNeverStored(t *testing.T) {
	t.Parallel()

	alerts, next, err := Diff(domain.Snapshot{}, []domain.Position{pos("0xabc", "Yes", 0)}, threshold)
	require.NoError(t, err)

	assert.Empty(t, alerts)
	assert.Empty(t, next)
}

func TestDiffIdempotentWhenUnchanged(t *testing.T) {
	t.Parallel()

	fetched := []domain.Position{
		pos("0xabc", "Yes", 5),
		pos("0xdef", "No", 2),
	}

	_, first, err := Diff(domain.Snapshot{}, fetched, threshold)
	require.NoError(t, err)

	alerts, second, err := Diff(first, fetched, threshold)
	require.NoError(t, err)

	assert.Empty(t, alerts)
	assert.Equal(t, first, second)
}

func TestDiffDisambiguatesOutcomes(t *testing.T) {
	t.Parallel()

	// Two outcomes of the same market must be tracked independently.
	old := domain.Snapshot{
		"0xabc:Yes": {Size: 5, AvgPrice: 0.42, Title: "Will it happen?", Outcome: "Yes"},
		"0xabc:No":  {Size: 4, AvgPrice: 0.58, Title: "Will it happen?", Outcome: "No"},
	}
	fetched := []domain.Position{
		pos("0xabc", "Yes", 7), // increased
		pos("0xabc", "No", 4),  // unchanged
	}

	alerts, next, err := Diff(old, fetched, threshold)
	require.NoError(t, err)

	require.Len(t, next, 2)
	require.Len(t, alerts, 1)
	assert.Equal(t, domain.AlertIncreased, alerts[0].Kind)
	assert.Equal(t, "0xabc:Yes", alerts[0].Key)
}

func TestDiffOrdering(t *testing.T) {
	t.Parallel()

	// Fetch-pass alerts in input order first, then straggler closes.
	old := domain.Snapshot{
		"0xgone2:Yes": {Size: 1, Title: "Gone two", Outcome: "Yes"},
		"0xgone1:Yes": {Size: 2, Title: "Gone one", Outcome: "Yes"},
		"0xabc:Yes":   {Size: 5, Title: "Will it happen?", Outcome: "Yes"},
	}
	fetched := []domain.Position{
		pos("0xnew", "Yes", 1),
		pos("0xabc", "Yes", 9),
	}

	alerts, _, err := Diff(old, fetched, threshold)
	require.NoError(t, err)

	require.Len(t, alerts, 4)
	assert.Equal(t, domain.AlertOpened, alerts[0].Kind)
	assert.Equal(t, "0xnew:Yes", alerts[0].Key)
	assert.Equal(t, domain.AlertIncreased, alerts[1].Kind)
	assert.Equal(t, "0xabc:Yes", alerts[1].Key)
	assert.Equal(t, domain.AlertClosed, alerts[2].Kind)
	assert.Equal(t, "0xgone1:Yes", alerts[2].Key)
	assert.Equal(t, domain.AlertClosed, alerts[3].Kind)
	assert.Equal(t, "0xgone2:Yes", alerts[3].Key)
}

func TestDiffStaleZeroRecordNotClosed(t *testing.T) {
	t.Parallel()

	// The straggler pass closes only entries with old size > 0; a
	// zero-size record left in the old snapshot stays silent.
	old := domain.Snapshot{"0xabc:Yes": {Size: 0, Title: "Will it happen?", Outcome: "Yes"}}
	alerts, next, err := Diff(old, nil, threshold)
	require.NoError(t, err)

	assert.Empty(t, alerts)
	assert.Empty(t, next)
}

func TestDiffMalformedPosition(t *testing.T) {
	t.Parallel()

	bad := pos("", "Yes", 5)
	alerts, next, err := Diff(domain.Snapshot{}, []domain.Position{pos("0xabc", "Yes", 5), bad}, threshold)

	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrMissingField)
	// Nothing partial escapes a failed diff.
	assert.Nil(t, alerts)
	assert.Nil(t, next)
}
