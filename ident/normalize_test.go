package ident

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/data4good/donorscope/errors"
)

func TestNormalizeNumericTextUnification(t *testing.T) {
	ns := Namespace{Name: "account-id"}

	// The production failure: 123 in one export, "123.0" in another.
	a, err := ns.Normalize("123")
	require.NoError(t, err)
	b, err := ns.Normalize("123.0")
	require.NoError(t, err)
	c, err := ns.Normalize(" 123 ")
	require.NoError(t, err)

	assert.Equal(t, a, b)
	assert.Equal(t, a, c)
	assert.Equal(t, "123", a)
}

func TestNormalizeLongNumericIDsStayDistinct(t *testing.T) {
	// Account numbers longer than float64's exact integer range must not be
	// rounded into each other.
	ns := Namespace{Name: "account-id"}

	a, err := ns.Normalize("9007199254740993")
	require.NoError(t, err)
	b, err := ns.Normalize("9007199254740992")
	require.NoError(t, err)

	assert.Equal(t, "9007199254740993", a)
	assert.Equal(t, "9007199254740992", b)
	assert.NotEqual(t, a, b)

	// The float-dtype export form of the same ID still unifies.
	c, err := ns.Normalize("9007199254740993.0")
	require.NoError(t, err)
	assert.Equal(t, a, c)
}

func TestNormalizeNonIntegerNumeric(t *testing.T) {
	ns := Namespace{Name: "amount"}
	got, err := ns.Normalize("123.450")
	require.NoError(t, err)
	assert.Equal(t, "123.45", got)
}

func TestNormalizeAlphanumericPassesThrough(t *testing.T) {
	ns := Namespace{Name: "contact-id"}
	got, err := ns.Normalize("  XJ29Q ")
	require.NoError(t, err)
	assert.Equal(t, "XJ29Q", got)
}

func TestNormalizeCaseSensitiveByDefault(t *testing.T) {
	ns := Namespace{Name: "short-code"}

	a, err := ns.Normalize("A001")
	require.NoError(t, err)
	b, err := ns.Normalize("a001")
	require.NoError(t, err)
	assert.NotEqual(t, a, b)
}

func TestNormalizeFoldCase(t *testing.T) {
	ns := Namespace{Name: "email", FoldCase: true}

	a, err := ns.Normalize("Donor@Example.org")
	require.NoError(t, err)
	b, err := ns.Normalize("donor@example.org")
	require.NoError(t, err)
	assert.Equal(t, a, b)
}

func TestNormalizeEmptyIsUnnormalizable(t *testing.T) {
	ns := Namespace{Name: "contact-id"}

	for _, raw := range []string{"", "   ", "\t"} {
		_, err := ns.Normalize(raw)
		require.Error(t, err, "raw=%q", raw)
		assert.True(t, errors.Is(err, errors.ErrUnnormalizable))
	}
}

func TestNormalizeRejectsNaNAndInf(t *testing.T) {
	// "NaN" and "Inf" parse as floats but are not identifiers with a
	// canonical numeric form; they pass through as text.
	ns := Namespace{Name: "odd"}

	got, err := ns.Normalize("NaN")
	require.NoError(t, err)
	assert.Equal(t, "NaN", got)

	got, err = ns.Normalize("Inf")
	require.NoError(t, err)
	assert.Equal(t, "Inf", got)
}
