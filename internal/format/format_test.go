package format

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestUSD(t *testing.T) {
	t.Parallel()

	require.Equal(t, "$1,299", USD(1299, "en"))
	require.Equal(t, "$499", USD(499, "en"))
	require.Equal(t, "-$1,000", USD(-1000, "en"))
	require.Equal(t, "$12,500", USD(12500, "not a tag"))
}

func TestFromPriceAndRange(t *testing.T) {
	t.Parallel()

	require.Equal(t, "From $899", FromPrice(899, "en"))
	require.Equal(t, "", FromPrice(0, "en"))
	require.Contains(t, FromPrice(899, "es"), "Desde")
	require.Equal(t, "$75 - $350 per trip", PriceRange(75, 350, "per trip", "en"))
	require.Equal(t, "$75", PriceRange(75, 0, "", "en"))
}

func TestDate(t *testing.T) {
	t.Parallel()

	d := time.Date(2027, 2, 13, 0, 0, 0, 0, time.UTC)
	require.Equal(t, "Feb 13, 2027", Date(d, "en"))
	require.Equal(t, "13 feb 2027", Date(d, "es"))
	require.Equal(t, "", Date(time.Time{}, "en"))
}

func TestDuration(t *testing.T) {
	t.Parallel()

	require.Equal(t, "7 nights", Duration(7))
	require.Equal(t, "1 night", Duration(1))
	require.Equal(t, "", Duration(0))
}

func TestPhone(t *testing.T) {
	t.Parallel()

	require.Equal(t, "+18338741019", Tel("+1-833-874-1019"))
	require.Equal(t, "(833) 874-1019", Phone("+1-833-874-1019"))
	require.Equal(t, "(973) 874-1019", Phone("9738741019"))
	require.Equal(t, "12345", Phone("12345"))
}
