package storage

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

func TestHoursExportKey(t *testing.T) {
	id := uuid.MustParse("6f1c2f4e-8f39-4a0e-9b7c-2b1d3c4e5f60")
	at := time.Date(2026, 3, 4, 5, 6, 7, 0, time.FixedZone("X", 3600))
	assert.Equal(t, "exports/hours/6f1c2f4e-8f39-4a0e-9b7c-2b1d3c4e5f60/20260304T040607Z.csv", HoursExportKey(id, at))
}

func TestPresignExpire(t *testing.T) {
	assert.Equal(t, 15*time.Minute, (&S3{}).PresignExpire())
	assert.Equal(t, 5*time.Minute, (&S3{cfg: S3Config{PresignExpireMinutes: 5}}).PresignExpire())
}
