package service

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestArchiveCode(t *testing.T) {
	at := time.Date(2026, 8, 28, 10, 30, 45, 0, time.UTC)
	assert.Equal(t, "ABC123_deleted_20260828103045", ArchiveCode("ABC123", at))
}

func TestArchiveCodeNormalizesToUTC(t *testing.T) {
	loc := time.FixedZone("UTC+2", 2*3600)
	at := time.Date(2026, 8, 28, 12, 30, 45, 0, loc)
	assert.Equal(t, "ABC123_deleted_20260828103045", ArchiveCode("ABC123", at))
}

func TestArchiveCodeDistinguishesRepeatedRestarts(t *testing.T) {
	first := ArchiveCode("ABC123", time.Date(2026, 8, 28, 10, 0, 0, 0, time.UTC))
	second := ArchiveCode("ABC123", time.Date(2026, 8, 28, 10, 0, 1, 0, time.UTC))
	assert.NotEqual(t, first, second)
}
