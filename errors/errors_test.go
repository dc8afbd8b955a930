package errors

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew(t *testing.T) {
	err := New("test error")
	require.NotNil(t, err)
	assert.Equal(t, "test error", err.Error())
}

func TestWrap(t *testing.T) {
	original := New("original")
	wrapped := Wrap(original, "wrapped")

	assert.Contains(t, wrapped.Error(), "wrapped")
	assert.Contains(t, wrapped.Error(), "original")
	assert.True(t, Is(wrapped, original))
}

func TestMissingSourceError(t *testing.T) {
	err := NewMissingSource("contacts", "/data/contact_extract.csv")
	require.Error(t, err)

	assert.True(t, IsMissingSource(err))
	assert.False(t, IsSchemaError(err))
	assert.Contains(t, err.Error(), "contacts")
	assert.Contains(t, err.Error(), "/data/contact_extract.csv")

	// Hint survives wrapping
	wrapped := Wrap(err, "loading sources")
	assert.True(t, IsMissingSource(wrapped))
	assert.NotEmpty(t, GetAllHints(wrapped))
}

func TestSchemaError(t *testing.T) {
	err := NewSchemaError("accounts", "Id")
	require.Error(t, err)

	assert.True(t, IsSchemaError(err))
	assert.False(t, IsMissingSource(err))

	var se *SchemaError
	require.True(t, As(err, &se))
	assert.Equal(t, "accounts", se.Relation)
	assert.Equal(t, "Id", se.Column)
}

func TestIsFatal(t *testing.T) {
	tests := []struct {
		name  string
		err   error
		fatal bool
	}{
		{"nil", nil, false},
		{"missing source", NewMissingSource("accounts", "a.csv"), true},
		{"schema", NewSchemaError("accounts", "Id"), true},
		{"wrapped schema", Wrap(NewSchemaError("accounts", "Id"), "load"), true},
		{"unnormalizable", ErrUnnormalizable, false},
		{"plain", New("boom"), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.fatal, IsFatal(tt.err))
		})
	}
}

func TestHintsFlatten(t *testing.T) {
	err := NewMissingSource("opportunities", "/in/d4g_opportunity.csv")
	flat := FlattenHints(err)
	assert.Contains(t, flat, "input directory")

	// %+v carries the stack for debugging
	detailed := fmt.Sprintf("%+v", err)
	assert.Contains(t, detailed, "missing")
}
