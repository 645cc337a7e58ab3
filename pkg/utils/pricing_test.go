package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const scale = uint64(1_000_000_000)

func TestCalculateBoost(t *testing.T) {
	t.Run("Zero Expected Sales", func(t *testing.T) {
		assert.Equal(t, uint64(0), CalculateBoost(500, 0, 1, 1, 3))
	})

	t.Run("Sales Ahead Of Target", func(t *testing.T) {
		// (200 * 1 / 100) * 1 = 2
		assert.Equal(t, uint64(2), CalculateBoost(200, 100, 1, 1, 3))
	})

	t.Run("Capped At Time Shift Max", func(t *testing.T) {
		assert.Equal(t, uint64(3), CalculateBoost(1000, 100, 1, 1, 3))
	})

	t.Run("Below Target Floors To Zero", func(t *testing.T) {
		// 50/100 floors to zero in integer division
		assert.Equal(t, uint64(0), CalculateBoost(50, 100, 1, 1, 3))
	})
}

func TestCalculatePriceLinear(t *testing.T) {
	p0 := 100 * scale
	ptmax := 10 * scale
	tmax := uint16(10)

	t.Run("First Round Is Initial Price", func(t *testing.T) {
		price := CalculatePrice(p0, ptmax, tmax, 1, nil, DecayModelLinear, 3)
		assert.Equal(t, p0, price)
	})

	t.Run("Each Unboosted Round Steps Down", func(t *testing.T) {
		// k0 = (100 - 10) / 9 = 10 per round
		price := CalculatePrice(p0, ptmax, tmax, 3, []int64{0, 0}, DecayModelLinear, 3)
		assert.Equal(t, 80*scale, price)
	})

	t.Run("Boosted Round Skips Its Decay Step", func(t *testing.T) {
		price := CalculatePrice(p0, ptmax, tmax, 3, []int64{1, 0}, DecayModelLinear, 3)
		assert.Equal(t, 90*scale, price)
	})

	t.Run("Unset Boost Counts As Zero", func(t *testing.T) {
		price := CalculatePrice(p0, ptmax, tmax, 3, []int64{BoostUnset, 0}, DecayModelLinear, 3)
		assert.Equal(t, 80*scale, price)
	})

	t.Run("Boost Above Cap Is Clamped", func(t *testing.T) {
		capped := CalculatePrice(p0, ptmax, tmax, 2, []int64{3}, DecayModelLinear, 3)
		over := CalculatePrice(p0, ptmax, tmax, 2, []int64{50}, DecayModelLinear, 3)
		assert.Equal(t, capped, over)
	})

	t.Run("Price Never Falls Below Floor", func(t *testing.T) {
		history := make([]int64, 20)
		price := CalculatePrice(p0, ptmax, tmax, 20, history, DecayModelLinear, 3)
		assert.Equal(t, ptmax, price)
	})
}

func TestCalculatePriceExponential(t *testing.T) {
	p0 := 100 * scale
	ptmax := 10 * scale
	tmax := uint16(10)

	t.Run("First Round Is Initial Price", func(t *testing.T) {
		price := CalculatePrice(p0, ptmax, tmax, 1, nil, DecayModelExponential, 3)
		assert.Equal(t, p0, price)
	})

	t.Run("Decay Is Monotonic", func(t *testing.T) {
		history := []int64{}
		prev := CalculatePrice(p0, ptmax, tmax, 1, history, DecayModelExponential, 3)
		for round := uint16(2); round <= tmax; round++ {
			history = append(history, 0)
			price := CalculatePrice(p0, ptmax, tmax, round, history, DecayModelExponential, 3)
			assert.Less(t, price, prev)
			assert.GreaterOrEqual(t, price, ptmax)
			prev = price
		}
	})

	t.Run("Price Never Falls Below Floor", func(t *testing.T) {
		history := make([]int64, 30)
		price := CalculatePrice(p0, ptmax, tmax, 30, history, DecayModelExponential, 3)
		assert.Equal(t, ptmax, price)
	})

	t.Run("Degenerate Curve Returns Floor", func(t *testing.T) {
		price := CalculatePrice(ptmax, ptmax, tmax, 5, []int64{0, 0}, DecayModelExponential, 3)
		assert.Equal(t, ptmax, price)
	})
}

func TestAdjustAmount(t *testing.T) {
	t.Run("Scale Up", func(t *testing.T) {
		got, err := AdjustAmount(75, 0, 9)
		require.NoError(t, err)
		assert.Equal(t, 75*scale, got)
	})

	t.Run("Scale Down Floors", func(t *testing.T) {
		got, err := AdjustAmount(1_999_999_999, 9, 0)
		require.NoError(t, err)
		assert.Equal(t, uint64(1), got)
	})

	t.Run("Same Scale Unchanged", func(t *testing.T) {
		got, err := AdjustAmount(42*scale, 9, 9)
		require.NoError(t, err)
		assert.Equal(t, 42*scale, got)
	})

	t.Run("Overflow", func(t *testing.T) {
		_, err := AdjustAmount(1<<63, 0, 9)
		assert.ErrorIs(t, err, ErrAmountOverflow)
	})
}

func TestCalculateTotalPrice(t *testing.T) {
	t.Run("Amount Times Unit Price", func(t *testing.T) {
		got, err := CalculateTotalPrice(75*scale, 4*scale, DefaultDecimals, DefaultDecimals, DefaultDecimals)
		require.NoError(t, err)
		assert.Equal(t, 300*scale, got)
	})

	t.Run("Fractional Amount", func(t *testing.T) {
		// 2.5 * 4 = 10
		got, err := CalculateTotalPrice(2*scale+scale/2, 4*scale, DefaultDecimals, DefaultDecimals, DefaultDecimals)
		require.NoError(t, err)
		assert.Equal(t, 10*scale, got)
	})

	t.Run("Overflow", func(t *testing.T) {
		_, err := CalculateTotalPrice(1<<63, 1<<63, DefaultDecimals, DefaultDecimals, DefaultDecimals)
		assert.ErrorIs(t, err, ErrAmountOverflow)
	})
}
