package middlewares

import (
	"testing"

	"github.com/i4rcu/magazam-inventory-system/models"

	"github.com/stretchr/testify/assert"
	"gorm.io/datatypes"
)

func TestClassifyReplayStoredResponseShortCircuits(t *testing.T) {
	rec := models.IdempotencyKey{
		RequestHash:    "hash-1",
		ResponseStatus: 201,
		ResponseBody:   datatypes.JSON(`{"invoice":{}}`),
	}

	// A completed record must replay the stored response, never fall
	// through to running the handler a second time.
	assert.Equal(t, replayStored, classifyReplay(rec, "hash-1"))
}

func TestClassifyReplayPendingRecordProceeds(t *testing.T) {
	rec := models.IdempotencyKey{
		RequestHash:    "hash-1",
		ResponseStatus: 0,
	}
	assert.Equal(t, replayProceed, classifyReplay(rec, "hash-1"))

	// Status set but body missing: incomplete, still proceed.
	rec.ResponseStatus = 200
	rec.ResponseBody = nil
	assert.Equal(t, replayProceed, classifyReplay(rec, "hash-1"))
}

func TestClassifyReplayDifferentRequestConflicts(t *testing.T) {
	rec := models.IdempotencyKey{
		RequestHash:    "hash-1",
		ResponseStatus: 201,
		ResponseBody:   datatypes.JSON(`{}`),
	}
	assert.Equal(t, replayMismatch, classifyReplay(rec, "hash-2"))
}
