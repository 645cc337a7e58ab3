package utils

import (
	"errors"
	"math"
	"math/big"
)

// BasePoint is the denominator for all basis-point splits (fees, lock/distribution).
const BasePoint uint64 = 10000

// DefaultDecimals is the internal fixed-point scale; every stored amount and
// price is an integer scaled by 10^9 regardless of the mint's own decimals.
const DefaultDecimals uint8 = 9

// Decay model identifiers, stored as-is on the auction row.
const (
	DecayModelLinear      = "linear"
	DecayModelExponential = "exponential"
)

// BoostUnset marks a round that closed without a recorded boost.
const BoostUnset int64 = -1

var ErrAmountOverflow = errors.New("amount overflow")

func pow10(n uint8) *big.Int {
	return new(big.Int).Exp(big.NewInt(10), big.NewInt(int64(n)), nil)
}

// CalculateBoost rewards a round that sold faster than the pacing target and
// caps the reward at timeShiftMax. A zero target yields no boost rather than an
// error: a pad with no expectation cannot be ahead of it.
func CalculateBoost(actualSales, expectedSales, omega, alpha, timeShiftMax uint64) uint64 {
	if expectedSales == 0 {
		return 0
	}

	ratio := new(big.Int).Mul(new(big.Int).SetUint64(actualSales), new(big.Int).SetUint64(omega))
	ratio.Div(ratio, new(big.Int).SetUint64(expectedSales))

	boost := ratio.Mul(ratio, new(big.Int).SetUint64(alpha))
	if boost.Cmp(new(big.Int).SetUint64(timeShiftMax)) > 0 {
		return timeShiftMax
	}
	return boost.Uint64()
}

// CalculatePrice returns the current price for a round given the accumulated
// boost history. Boost reduces the time-decay contribution of a completed
// round: a round that sold at full boost contributes nothing to the decay,
// a round with no boost contributes a full step.
//
// The caller guarantees tmax > 1; pad creation rejects anything smaller.
func CalculatePrice(p0, ptmax uint64, tmax uint16, currentRound uint16, boostHistory []int64, decayModel string, timeShiftMax uint64) uint64 {
	var totalBoost float64

	rounds := int(currentRound)
	if rounds > len(boostHistory) {
		rounds = len(boostHistory)
	}

	for _, boost := range boostHistory[:rounds] {
		if boost < 0 {
			// Unset sentinel counts as no boost, a full decay step.
			boost = 0
		}
		b := uint64(boost)
		if b > timeShiftMax {
			b = timeShiftMax
		}
		totalBoost += 1 - float64(b)
	}

	if decayModel == DecayModelLinear {
		k0 := (float64(p0) - float64(ptmax)) / float64(tmax-1)
		price := float64(p0) - k0*totalBoost
		if price < float64(ptmax) {
			return ptmax
		}
		return uint64(price)
	}

	// Exponential decay is undefined for p0 <= ptmax (non-positive logarithm).
	if p0 <= ptmax {
		return ptmax
	}

	lambda0 := (math.Log(float64(p0)) - math.Log(float64(ptmax))) / float64(tmax-1)
	price := float64(p0) * math.Exp(-lambda0*totalBoost)
	if price < float64(ptmax) {
		return ptmax
	}
	return uint64(price)
}

// AdjustAmount rescales a fixed-point amount between decimal scales. Scaling
// down floors, so the conversion never manufactures value.
func AdjustAmount(amount uint64, fromDecimals, toDecimals uint8) (uint64, error) {
	if toDecimals > fromDecimals {
		scaled := new(big.Int).Mul(new(big.Int).SetUint64(amount), pow10(toDecimals-fromDecimals))
		if !scaled.IsUint64() {
			return 0, ErrAmountOverflow
		}
		return scaled.Uint64(), nil
	}
	return amount / pow10(fromDecimals-toDecimals).Uint64(), nil
}

// CalculateTotalPrice multiplies amount by unit price with a 128-bit-wide
// intermediate, then divides back down by the output scale.
func CalculateTotalPrice(amount, price uint64, fromDecimals, toDecimals, outputDecimals uint8) (uint64, error) {
	adjustedAmount, err := AdjustAmount(amount, fromDecimals, toDecimals)
	if err != nil {
		return 0, err
	}
	adjustedPrice, err := AdjustAmount(price, fromDecimals, outputDecimals)
	if err != nil {
		return 0, err
	}

	total := new(big.Int).Mul(new(big.Int).SetUint64(adjustedAmount), new(big.Int).SetUint64(adjustedPrice))
	total.Div(total, pow10(outputDecimals))
	if !total.IsUint64() {
		return 0, ErrAmountOverflow
	}
	return total.Uint64(), nil
}
