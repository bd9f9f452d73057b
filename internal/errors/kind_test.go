package errors

import (
	stderrors "errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestKindPredicates(t *testing.T) {
	tests := []struct {
		name string
		err  error
		kind Kind
	}{
		{"validation", Validation("op", "bad due day %d", 0), KindValidation},
		{"not found", NotFound("op", "debt account", "d1"), KindNotFound},
		{"database", Database("op", stderrors.New("locked")), KindDatabase},
		{"internal", Internal("op", "impossible"), KindInternal},
		{"foreign", stderrors.New("plain"), KindInternal},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.kind, KindOf(tt.err))
			assert.Equal(t, tt.kind == KindValidation, IsValidation(tt.err))
			assert.Equal(t, tt.kind == KindNotFound, IsNotFound(tt.err))
			assert.Equal(t, tt.kind == KindDatabase, IsDatabase(tt.err))
			assert.Equal(t, tt.kind == KindInternal, IsInternal(tt.err))
		})
	}
}

func TestKindSurvivesWrapping(t *testing.T) {
	base := NotFound("reminders.Get", "reminder", "r1")
	wrapped := fmt.Errorf("snooze: %w", base)

	assert.True(t, IsNotFound(wrapped))
	assert.Equal(t, "snooze: reminders.Get: reminder r1 not found", wrapped.Error())
}

func TestDatabaseKeepsClassifiedErrors(t *testing.T) {
	assert.Nil(t, Database("op", nil))

	nf := NotFound("storage.GetSchedule", "schedule", "s1")
	assert.Same(t, nf, Database("planning.Confirm", nf))

	cause := stderrors.New("connection refused")
	err := Database("storage.AddReminder", cause)
	require.True(t, IsDatabase(err))
	assert.ErrorIs(t, err, cause)
	assert.Equal(t, "storage.AddReminder: connection refused", err.Error())
}

func TestKindString(t *testing.T) {
	assert.Equal(t, "validation", KindValidation.String())
	assert.Equal(t, "not_found", KindNotFound.String())
	assert.Equal(t, "database", KindDatabase.String())
	assert.Equal(t, "internal", KindInternal.String())
}
