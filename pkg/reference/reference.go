package reference

import (
	"fmt"
	"math"
	"strings"

	"github.com/pkg/errors"
)

// Lookup domain of the WHO Growth Reference 2007 (5-19 years). The source
// tables carry months 60-229, but 61-228 is the serving contract: month 60
// belongs to the 0-60 child growth standards.
const (
	MinAgeMonths = 61
	MaxAgeMonths = 228
)

// ErrNotFound is returned when no reference row matches the requested
// indicator, sex, and age after rounding.
var ErrNotFound = errors.New("reference row not found")

// Sex follows the WHO table encoding: 1 = male, 2 = female.
type Sex int

const (
	Male   Sex = 1
	Female Sex = 2
)

func (s Sex) String() string {
	switch s {
	case Male:
		return "male"
	case Female:
		return "female"
	}
	return fmt.Sprintf("sex(%d)", int(s))
}

// ParseSex accepts the table encoding (1/2) and common spellings.
func ParseSex(v string) (Sex, error) {
	switch strings.ToLower(strings.TrimSpace(v)) {
	case "1", "m", "male", "boy":
		return Male, nil
	case "2", "f", "female", "girl":
		return Female, nil
	}
	return 0, errors.Wrapf(ErrNotFound, "unknown sex %q", v)
}

// Indicator selects the reference table and whether the restricted
// extreme-value correction applies. It is a closed set: the correction
// branch keys off these two values only.
type Indicator int

const (
	// BMIForAge scores body-mass-index (kg/m2) against the reference.
	BMIForAge Indicator = iota
	// HeightForAge scores height (cm) against the reference. No
	// correction rule applies to this indicator.
	HeightForAge
)

func (i Indicator) String() string {
	switch i {
	case BMIForAge:
		return "bfa"
	case HeightForAge:
		return "hfa"
	}
	return fmt.Sprintf("indicator(%d)", int(i))
}

// ParseIndicator accepts the short codes used by the reference tables.
func ParseIndicator(v string) (Indicator, error) {
	switch strings.ToLower(strings.TrimSpace(v)) {
	case "bfa", "bmi", "bmi-for-age":
		return BMIForAge, nil
	case "hfa", "height", "height-for-age":
		return HeightForAge, nil
	}
	return 0, errors.Wrapf(ErrNotFound, "unknown indicator %q", v)
}

// Row is one LMS record: the Box-Cox power (L), median (M), and
// coefficient of variation (S) for a given sex and age in months, plus the
// measurement values on the +/-2 and +/-3 SD curves. The SD boundaries are
// consulted only by the restricted BMI-for-age correction.
type Row struct {
	Sex       Sex
	AgeMonths int
	L         float64
	M         float64
	S         float64
	SD3Neg    float64
	SD2Neg    float64
	SD2Pos    float64
	SD3Pos    float64
}

type rowKey struct {
	ind Indicator
	sex Sex
	age int
}

// Table is the in-memory reference store. It is immutable after Load and
// therefore safe to share across concurrent readers without locking.
type Table struct {
	rows map[rowKey]Row
}

// ResolveAge rounds a fractional age in months to the integer table key.
// Halves round to even, matching the reference implementation, and ages
// outside [MinAgeMonths, MaxAgeMonths] are rejected rather than clamped.
func ResolveAge(ageMonths float64) (int, error) {
	if math.IsNaN(ageMonths) || math.IsInf(ageMonths, 0) {
		return 0, errors.Wrapf(ErrNotFound, "invalid age %v", ageMonths)
	}
	age := int(math.RoundToEven(ageMonths))
	if age < MinAgeMonths || age > MaxAgeMonths {
		return 0, errors.Wrapf(ErrNotFound, "age %d months outside %d-%d", age, MinAgeMonths, MaxAgeMonths)
	}
	return age, nil
}

// Lookup resolves the LMS row for the given indicator, sex, and age in
// months. Pure read, no side effects.
func (t *Table) Lookup(ind Indicator, sex Sex, ageMonths float64) (Row, error) {
	if ind != BMIForAge && ind != HeightForAge {
		return Row{}, errors.Wrapf(ErrNotFound, "unknown indicator %d", int(ind))
	}
	if sex != Male && sex != Female {
		return Row{}, errors.Wrapf(ErrNotFound, "unknown sex %d", int(sex))
	}
	age, err := ResolveAge(ageMonths)
	if err != nil {
		return Row{}, err
	}
	row, ok := t.rows[rowKey{ind: ind, sex: sex, age: age}]
	if !ok {
		return Row{}, errors.Wrapf(ErrNotFound, "%s %s at %d months", ind, sex, age)
	}
	return row, nil
}
