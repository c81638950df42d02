package parser

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCleanPerson(t *testing.T) {
	name, err := CleanPerson("  Ali   Rezaei ")
	require.NoError(t, err)
	assert.Equal(t, "Ali Rezaei", name)

	name, err = CleanPerson("ممد")
	require.NoError(t, err)
	assert.Equal(t, "ممد", name)

	tests := []struct {
		in  string
		err error
	}{
		{"   ", ErrEmptyName},
		{"Ali\nReza", ErrNameMultiline},
		{strings.Repeat("x", MaxPersonLength+1), ErrNameTooLong},
		{"Ali2", ErrNameHasDigits},
		{"علی۲", ErrNameHasDigits},
	}
	for _, tt := range tests {
		_, err := CleanPerson(tt.in)
		assert.ErrorIs(t, err, tt.err, tt.in)
	}

	_, err = CleanPerson(strings.Repeat("ب", MaxPersonLength))
	assert.NoError(t, err)
}

func TestParseAmountOnly(t *testing.T) {
	valid := map[string]int64{
		"400":        400,
		"150,000":    150000,
		"150 000":    150000,
		"1.500.000":  1500000,
		"1_000":      1000,
		"۱۵۰۰":       1500,
		"  ٤٠٠  ":    400,
		"000123":     123,
	}
	for in, want := range valid {
		got, err := ParseAmountOnly(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got, in)
	}

	for _, in := range []string{"", "abc", "12a", "-5", ",100", "100 تومن", "99999999999999999999999"} {
		_, err := ParseAmountOnly(in)
		assert.ErrorIs(t, err, ErrAmountFormat, in)
	}

	_, err := ParseAmountOnly("0")
	assert.ErrorIs(t, err, ErrAmountNotPositive)
}

func TestCleanDescription(t *testing.T) {
	assert.Equal(t, "pizza with friends", CleanDescription("  pizza   with  friends "))
	assert.Equal(t, "", CleanDescription("   "))

	long := strings.Repeat("a", 199) + " " + "bbbb"
	assert.Equal(t, strings.Repeat("a", 199), CleanDescription(long))
}
