package pricing

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func d(v string) decimal.Decimal {
	return decimal.RequireFromString(v)
}

func TestEffectivePriceNone(t *testing.T) {
	t.Parallel()

	for _, base := range []string{"0", "1", "559", "1299.99"} {
		for _, value := range []string{"0", "10", "-5", "1000"} {
			got := EffectivePrice(d(base), DiscountNone, d(value))
			assert.True(t, got.Equal(d(base)), "base=%s value=%s got=%s", base, value, got)
		}
	}
}

func TestEffectivePricePercentage(t *testing.T) {
	t.Parallel()

	cases := []struct {
		base, pct, want string
	}{
		{"100", "0", "100"},
		{"100", "25", "75"},
		{"899", "10", "809.1"},
		{"459", "100", "0"},
		{"0", "50", "0"},
	}
	for _, tc := range cases {
		got := EffectivePrice(d(tc.base), DiscountPercentage, d(tc.pct))
		assert.True(t, got.Equal(d(tc.want)), "%s at %s%%: got %s want %s", tc.base, tc.pct, got, tc.want)
		assert.True(t, got.LessThanOrEqual(d(tc.base)))
		assert.False(t, got.IsNegative())
	}
}

func TestEffectivePricePercentageIsClamped(t *testing.T) {
	t.Parallel()

	assert.True(t, EffectivePrice(d("200"), DiscountPercentage, d("150")).Equal(decimal.Zero))
	assert.True(t, EffectivePrice(d("200"), DiscountPercentage, d("-20")).Equal(d("200")))
}

func TestEffectivePriceFixedNeverNegative(t *testing.T) {
	t.Parallel()

	assert.True(t, EffectivePrice(d("100"), DiscountFixed, d("30")).Equal(d("70")))
	assert.True(t, EffectivePrice(d("100"), DiscountFixed, d("130")).Equal(decimal.Zero))
	assert.True(t, EffectivePrice(d("100"), DiscountFixed, d("-30")).Equal(d("100")))
}

func TestEffectivePriceIsIdempotent(t *testing.T) {
	t.Parallel()

	first := EffectivePrice(d("1299.99"), DiscountPercentage, d("15"))
	second := EffectivePrice(d("1299.99"), DiscountPercentage, d("15"))
	assert.True(t, first.Equal(second))
}

func TestParseDiscountType(t *testing.T) {
	t.Parallel()

	got, err := ParseDiscountType("")
	require.NoError(t, err)
	assert.Equal(t, DiscountNone, got)

	got, err = ParseDiscountType("Percent")
	require.NoError(t, err)
	assert.Equal(t, DiscountPercentage, got)

	got, err = ParseDiscountType("amount")
	require.NoError(t, err)
	assert.Equal(t, DiscountFixed, got)

	_, err = ParseDiscountType("bogo")
	require.Error(t, err)
}

func TestDiscountApply(t *testing.T) {
	t.Parallel()

	discount := Discount{Type: DiscountFixed, Value: d("50")}
	assert.False(t, discount.IsZero())
	assert.True(t, discount.Apply(d("1358")).Equal(d("1308")))
	assert.True(t, NoDiscount.IsZero())
	assert.Equal(t, "none", NoDiscount.String())
}
