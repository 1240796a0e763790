package money

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestFormatBRL(t *testing.T) {
	require.Equal(t, "R$ 1.234,56", FormatBRL(FromCents(123456)))
	require.Equal(t, "R$ 0,05", FormatBRL(FromCents(5)))
	require.Equal(t, "R$ 1.200,00", FormatBRL(FromCents(120000)))
	require.Equal(t, "-R$ 10,50", FormatBRL(FromCents(-1050)))
}

func TestParseBRL(t *testing.T) {
	a, err := ParseBRL("R$ 1.234,56")
	require.NoError(t, err)
	require.Equal(t, int64(123456), a.Cents())

	a, err = ParseBRL("1234,56")
	require.NoError(t, err)
	require.Equal(t, int64(123456), a.Cents())

	a, err = ParseBRL("-R$ 10,50")
	require.NoError(t, err)
	require.Equal(t, int64(-1050), a.Cents())

	_, err = ParseBRL("")
	require.ErrorIs(t, err, ErrMalformedAmount)

	_, err = ParseBRL("R$ abc")
	require.ErrorIs(t, err, ErrMalformedAmount)
}

func TestFormatParseRoundTrip(t *testing.T) {
	for _, cents := range []int64{0, 1, 99, 100, 123456, 99999999, -123456} {
		parsed, err := ParseBRL(FormatBRL(FromCents(cents)))
		require.NoError(t, err)
		require.Equal(t, cents, parsed.Cents())
	}
}

func TestSplitEven(t *testing.T) {
	parts := Split(FromCents(120000), 12)
	require.Len(t, parts, 12)
	for _, p := range parts {
		require.Equal(t, int64(10000), p.Cents())
	}
	require.True(t, Sum(parts).Equal(FromCents(120000)))
}

func TestSplitRemainder(t *testing.T) {
	parts := Split(FromCents(100), 3)
	require.Len(t, parts, 3)
	require.Equal(t, int64(34), parts[0].Cents())
	require.Equal(t, int64(33), parts[1].Cents())
	require.Equal(t, int64(33), parts[2].Cents())
	require.True(t, Sum(parts).Equal(FromCents(100)))
}

func TestSplitNegative(t *testing.T) {
	parts := Split(FromCents(-100), 3)
	require.True(t, Sum(parts).Equal(FromCents(-100)))
	for _, p := range parts {
		require.True(t, p.IsNegative())
	}
}

func TestSplitInvalidCount(t *testing.T) {
	require.Nil(t, Split(FromCents(100), 0))
}
