// Package zscore implements the WHO Growth Reference 2007 LMS transform
// for school-age children and adolescents (61-228 months).
//
// Reference: de Onis M, et al. Development of a WHO growth reference for
// school-aged children and adolescents. Bull World Health Organ.
// 2007;85:660-667.
package zscore

import (
	"math"

	"github.com/pkg/errors"

	"github.com/anthrogo/growthz/pkg/reference"
)

var (
	// ErrInvalidMeasurement is returned for non-positive or non-finite
	// measurements.
	ErrInvalidMeasurement = errors.New("invalid measurement")

	// ErrDegenerateCorrection is returned when the extreme-value
	// correction would divide by a zero-width SD band.
	ErrDegenerateCorrection = errors.New("degenerate correction band")
)

// Compute applies the LMS transform to a measurement against a resolved
// reference row:
//
//	z = ((X/M)^L - 1) / (L*S)   when L != 0
//	z = ln(X/M) / S             when L = 0
//
// For BMI-for-age only, the WHO restricted correction replaces z beyond
// +/-3 SD with a linear extrapolation along the row's SD boundary curves.
// The boundary is strict: a raw z of exactly 3 is returned as-is.
// Deterministic, no side effects; full precision (see Round2 for display
// rounding).
func Compute(row reference.Row, ind reference.Indicator, measurement float64) (float64, error) {
	if math.IsNaN(measurement) || math.IsInf(measurement, 0) || measurement <= 0 {
		return 0, errors.Wrapf(ErrInvalidMeasurement, "measurement must be positive, got %v", measurement)
	}

	var z float64
	if row.L != 0 {
		z = (math.Pow(measurement/row.M, row.L) - 1) / (row.L * row.S)
	} else {
		z = math.Log(measurement/row.M) / row.S
	}

	if ind == reference.BMIForAge {
		switch {
		case z > 3:
			band := row.SD3Pos - row.SD2Pos
			if band == 0 {
				return 0, errors.Wrapf(ErrDegenerateCorrection, "SD3pos equals SD2pos at %d months", row.AgeMonths)
			}
			z = 3 + (measurement-row.SD3Pos)/band
		case z < -3:
			band := row.SD2Neg - row.SD3Neg
			if band == 0 {
				return 0, errors.Wrapf(ErrDegenerateCorrection, "SD2neg equals SD3neg at %d months", row.AgeMonths)
			}
			z = -3 + (measurement-row.SD3Neg)/band
		}
	}

	if math.IsNaN(z) || math.IsInf(z, 0) {
		return 0, errors.Wrapf(ErrInvalidMeasurement, "non-finite z-score for measurement %v", measurement)
	}
	return z, nil
}

// Calculator binds the engine to a loaded reference table. The table is
// injected rather than held as package state so tests can substitute
// fixtures.
type Calculator struct {
	table *reference.Table
}

func New(table *reference.Table) *Calculator {
	return &Calculator{table: table}
}

// Score is the single-value entry point: resolve the LMS row, apply the
// transform. Fail-fast; any lookup or computation error aborts the call.
func (c *Calculator) Score(ind reference.Indicator, sex reference.Sex, ageMonths, measurement float64) (float64, error) {
	row, err := c.table.Lookup(ind, sex, ageMonths)
	if err != nil {
		return 0, err
	}
	return Compute(row, ind, measurement)
}

// Round2 rounds a z-score to two decimals for display, halves to even,
// matching the reference implementation. Internal computation keeps full
// precision.
func Round2(z float64) float64 {
	return math.RoundToEven(z*100) / 100
}
