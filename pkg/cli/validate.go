package cli

import (
	"math"

	"github.com/urfave/cli/v2"

	"github.com/anthrogo/growthz/pkg/reference"
	"github.com/anthrogo/growthz/pkg/zscore"
)

var validateCmd = &cli.Command{
	Name:   "validate",
	Usage:  "Run the built-in fixtures validated against the WHO anthroplus R package",
	Action: cmdValidate,
}

type validationFixture struct {
	Name        string
	Indicator   reference.Indicator
	Sex         reference.Sex
	AgeMonths   float64
	Measurement float64
	Want        float64
}

// Fixtures from the reference implementation's self-test, validated
// against the R anthroplus package.
var validationFixtures = []validationFixture{
	{"boy 100mo bmi 30 (bfa, corrected)", reference.BMIForAge, reference.Male, 100, 30, 5.03},
	{"boy 100mo bmi 18.5 (bfa)", reference.BMIForAge, reference.Male, 100, 18.5, -0.22},
	{"boy 100mo height 100 (hfa)", reference.HeightForAge, reference.Male, 100, 100, -5.04},
	{"girl 110mo height 90 (hfa)", reference.HeightForAge, reference.Female, 110, 90, -7.06},
}

// ValidationResult is one fixture outcome.
type ValidationResult struct {
	Name string  `json:"name" yaml:"name"`
	Want float64 `json:"want" yaml:"want"`
	Got  float64 `json:"got" yaml:"got"`
	Pass bool    `json:"pass" yaml:"pass"`
}

func runValidation(calc *zscore.Calculator) ([]ValidationResult, bool) {
	results := make([]ValidationResult, 0, len(validationFixtures))
	allPass := true
	for _, fx := range validationFixtures {
		r := ValidationResult{Name: fx.Name, Want: fx.Want}
		z, err := calc.Score(fx.Indicator, fx.Sex, fx.AgeMonths, fx.Measurement)
		if err == nil {
			r.Got = zscore.Round2(z)
			r.Pass = math.Abs(r.Got-fx.Want) < 0.02
		}
		allPass = allPass && r.Pass
		results = append(results, r)
	}
	return results, allPass
}

func cmdValidate(c *cli.Context) error {
	results, ok := runValidation(getConfig(c).Calc)
	if err := encode(results); err != nil {
		return err
	}
	if !ok {
		return cli.Exit("validation failed", 1)
	}
	return nil
}
