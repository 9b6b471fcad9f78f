package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"airbnb-harvester/models"
	"airbnb-harvester/snapshot"
)

// countingStrategy wraps another strategy and records attempts, so tests
// can verify cascade ordering.
type countingStrategy struct {
	inner    Strategy
	attempts int
}

func (c *countingStrategy) Name() string { return c.inner.Name() }

func (c *countingStrategy) Locate(snap *snapshot.Snapshot) (string, bool) {
	c.attempts++
	return c.inner.Locate(snap)
}

func mustSnap(t *testing.T, html string) *snapshot.Snapshot {
	t.Helper()
	snap, err := snapshot.FromHTML(html)
	require.NoError(t, err)
	return snap
}

func TestExtractFirstMatchingStrategyWins(t *testing.T) {
	snap := mustSnap(t, `<div><span class="a">3 bedrooms</span><span class="b">5 bedrooms</span></div>`)

	first := &countingStrategy{inner: ByCSS("span.a")}
	second := &countingStrategy{inner: ByCSS("span.b")}

	spec := FieldSpec{
		Field:      models.FieldBedrooms,
		Strategies: []Strategy{first, second},
		Normalize:  ToCount,
	}

	o := Extract(snap, spec)
	assert.Equal(t, int64(3), o.Value.Int())
	assert.Equal(t, 0, o.StrategyIndex)
	assert.Equal(t, 1, first.attempts)
	assert.Equal(t, 0, second.attempts, "later strategy must never be attempted after a success")
}

func TestExtractFallsThroughFailedStrategies(t *testing.T) {
	snap := mustSnap(t, `<div><p>The flat sleeps up to 4 guests comfortably.</p></div>`)

	spec := FieldSpec{
		Field: models.FieldGuestLimit,
		Strategies: []Strategy{
			ByCSS("span.precise-guest-count"),     // absent
			ByAttr("div.guests", "data-count"),    // absent
			ByRegex(`(\d+)\s*guests?`),            // tolerant fallback
		},
		Normalize: ToCount,
	}

	o := Extract(snap, spec)
	assert.True(t, o.Value.Known())
	assert.Equal(t, int64(4), o.Value.Int())
	assert.Equal(t, 2, o.StrategyIndex)
}

func TestExtractLocatedButUnparseableContinues(t *testing.T) {
	snap := mustSnap(t, `<div><span class="count">studio</span><p>2 bedrooms</p></div>`)

	spec := FieldSpec{
		Field: models.FieldBedrooms,
		Strategies: []Strategy{
			ByCSS("span.count"), // locates "studio", normalizes to sentinel
			ByRegex(`(\d+)\s*bedrooms?`),
		},
		Normalize: ToCount,
	}

	o := Extract(snap, spec)
	assert.Equal(t, int64(2), o.Value.Int())
	assert.Equal(t, 1, o.StrategyIndex)
}

func TestExtractAllFailSentinelWithoutStrategy(t *testing.T) {
	snap := mustSnap(t, `<div><p>nothing useful here</p></div>`)

	spec := FieldSpec{
		Field:      models.FieldStars,
		Strategies: []Strategy{ByCSS("span.rating"), ByRegex(`([0-5]\.\d+)`)},
		Normalize:  ToDecimal,
	}

	o := Extract(snap, spec)
	assert.False(t, o.Value.Known())
	assert.Equal(t, models.NoStrategy, o.StrategyIndex)
}

func TestKnownOutcomeAlwaysCarriesStrategy(t *testing.T) {
	snap := mustSnap(t, `<div><span class="r">4.5</span></div>`)

	for _, spec := range append(GridSchema(), DetailSchema()...) {
		o := Extract(snap, spec)
		if o.Value.Known() {
			assert.GreaterOrEqual(t, o.StrategyIndex, 0,
				"field %s: known value without a strategy index", spec.Field)
		} else {
			assert.Equal(t, models.NoStrategy, o.StrategyIndex,
				"field %s: sentinel with a strategy index", spec.Field)
		}
	}
}
