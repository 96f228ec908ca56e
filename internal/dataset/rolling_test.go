package dataset

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func floatPtr(v float64) *float64 { return &v }

func TestRollingCenteredMean(t *testing.T) {
	got, err := Rolling([]float64{10, 20, 30, 40, 50}, 3, true, AggregatorMean)
	require.NoError(t, err)
	assert.Equal(t, []*float64{nil, floatPtr(20), floatPtr(30), floatPtr(40), nil}, got)
}

func TestRollingWindowLargerThanSeries(t *testing.T) {
	got, err := Rolling([]float64{1, 2, 3}, 5, true, AggregatorMean)
	require.NoError(t, err)
	assert.Equal(t, []*float64{nil, nil, nil}, got)

	got, err = Rolling([]float64{1, 2, 3}, 5, false, AggregatorMedian)
	require.NoError(t, err)
	assert.Equal(t, []*float64{nil, nil, nil}, got)
}

func TestRollingCenteredMedian(t *testing.T) {
	values := []float64{5, 1, 9, 3, 7, 2, 8, 4, 6}

	got, err := Rolling(values, 7, true, AggregatorMedian)
	require.NoError(t, err)

	// Only indices 3..5 have a full window of 7.
	require.Len(t, got, len(values))
	for i, v := range got {
		if i < 3 || i > 5 {
			assert.Nil(t, v, "index %d should be absent", i)
		} else {
			require.NotNil(t, v, "index %d should be present", i)
		}
	}
	// Window at 3 is [5 1 9 3 7 2 8], median 5.
	assert.Equal(t, 5.0, *got[3])
	// Window at 4 is [1 9 3 7 2 8 4], median 4.
	assert.Equal(t, 4.0, *got[4])
	// Window at 5 is [9 3 7 2 8 4 6], median 6.
	assert.Equal(t, 6.0, *got[5])
}

func TestRollingEvenWindowExtendsLeft(t *testing.T) {
	// Centered even windows cover [i-1, i] for w=2, matching the dataframe
	// convention the original charts were built on.
	got, err := Rolling([]float64{1, 2, 3, 4}, 2, true, AggregatorMean)
	require.NoError(t, err)
	assert.Equal(t, []*float64{nil, floatPtr(1.5), floatPtr(2.5), floatPtr(3.5)}, got)
}

func TestRollingTrailingWindow(t *testing.T) {
	got, err := Rolling([]float64{10, 20, 30, 40}, 2, false, AggregatorMean)
	require.NoError(t, err)
	assert.Equal(t, []*float64{nil, floatPtr(15), floatPtr(25), floatPtr(35)}, got)
}

func TestRollingEvenWindowMedianAverages(t *testing.T) {
	got, err := Rolling([]float64{4, 1, 3, 2}, 4, true, AggregatorMedian)
	require.NoError(t, err)
	// Only index 2 fits a centered window of 4: [4 1 3 2], median (2+3)/2.
	assert.Equal(t, []*float64{nil, nil, floatPtr(2.5), nil}, got)
}

func TestRollingRejectsBadArguments(t *testing.T) {
	_, err := Rolling([]float64{1, 2}, 0, true, AggregatorMean)
	assert.Error(t, err)

	_, err = Rolling([]float64{1, 2}, 2, true, Aggregator("mode"))
	assert.Error(t, err)
}

func TestRollingEmptySeries(t *testing.T) {
	got, err := Rolling(nil, 3, true, AggregatorMean)
	require.NoError(t, err)
	assert.Empty(t, got)
}
