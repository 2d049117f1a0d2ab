package report

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestPercentChange(t *testing.T) {
	assert.Equal(t, 100, PercentChange(3, 0))
	assert.Equal(t, 0, PercentChange(0, 0))
	assert.Equal(t, 50, PercentChange(3, 2))
	assert.Equal(t, -50, PercentChange(1, 2))
	assert.Equal(t, 33, PercentChange(4, 3))
}

func TestRate(t *testing.T) {
	assert.Equal(t, 0, Rate(5, 0))
	assert.Equal(t, 67, Rate(2, 3))
	assert.Equal(t, 100, Rate(4, 4))
}

func TestBucketByMonth(t *testing.T) {
	now := time.Date(2025, 3, 12, 9, 0, 0, 0, time.UTC)
	dates := []time.Time{
		time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC),
		time.Date(2025, 3, 31, 0, 0, 0, 0, time.UTC),
		time.Date(2025, 1, 15, 0, 0, 0, 0, time.UTC),
		time.Date(2023, 1, 15, 0, 0, 0, 0, time.UTC),
	}

	buckets := BucketByMonth(dates, now, 12)

	assert.Len(t, buckets, 12)
	assert.Equal(t, "2024-04", buckets[0].Month)
	assert.Equal(t, "2025-03", buckets[11].Month)
	assert.Equal(t, int64(2), buckets[11].Total)
	assert.Equal(t, int64(0), buckets[10].Total)
	assert.Equal(t, int64(1), buckets[9].Total)
}
