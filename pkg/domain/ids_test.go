package domain

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	dErrors "healthcred/pkg/domain-errors"
)

// TestParseUUID_Invariants validates the parsing invariant:
// IDs must be valid, non-empty, non-nil UUIDs.
func TestParseUUID_Invariants(t *testing.T) {
	t.Run("rejects empty string", func(t *testing.T) {
		_, err := ParseWorkflowID("")
		require.Error(t, err)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeInvalidInput))
	})

	t.Run("rejects invalid format", func(t *testing.T) {
		_, err := ParseWorkflowID("not-a-uuid")
		require.Error(t, err)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeInvalidInput))
	})

	t.Run("rejects nil UUID", func(t *testing.T) {
		_, err := ParseUserID(uuid.Nil.String())
		require.Error(t, err)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeInvalidInput))
	})

	t.Run("accepts valid UUID", func(t *testing.T) {
		validUUID := uuid.New()
		id, err := ParseUserID(validUUID.String())
		require.NoError(t, err)
		assert.Equal(t, UserID(validUUID), id)
	})
}

func TestParseOfferID(t *testing.T) {
	t.Run("rejects empty slug", func(t *testing.T) {
		_, err := ParseOfferID("  ")
		require.Error(t, err)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeInvalidInput))
	})

	t.Run("rejects uppercase and whitespace", func(t *testing.T) {
		for _, raw := range []string{"MediFund", "medi fund"} {
			_, err := ParseOfferID(raw)
			require.Error(t, err, raw)
		}
	})

	t.Run("accepts lowercase slug", func(t *testing.T) {
		id, err := ParseOfferID("medifund-micro")
		require.NoError(t, err)
		assert.Equal(t, OfferID("medifund-micro"), id)
	})
}

// TestTypeDistinction documents the compile-time invariant: distinct ID types
// are not interchangeable. If this compiles, the invariant holds.
func TestTypeDistinction(t *testing.T) {
	userID := NewUserID()
	workflowID := NewWorkflowID()

	// These would fail to compile if types were interchangeable:
	// var _ UserID = workflowID   // compile error
	// var _ WorkflowID = userID   // compile error

	assert.NotEqual(t, uuid.UUID(userID), uuid.UUID(workflowID))
}
