package cli

import (
	"github.com/urfave/cli/v2"

	"github.com/anthrogo/growthz/pkg/reference"
)

var referenceCmd = &cli.Command{
	Name:    "reference",
	Aliases: []string{"ref"},
	Usage:   "Print the resolved LMS reference row for an indicator, sex, and age",
	Action:  cmdReference,
	Flags: []cli.Flag{
		indicatorFlag,
		sexFlag,
		ageFlag,
	},
}

// ReferenceRow is the LMS row view rendered by the reference command.
type ReferenceRow struct {
	Indicator string  `json:"indicator" yaml:"indicator"`
	Sex       string  `json:"sex" yaml:"sex"`
	AgeMonths int     `json:"age_months" yaml:"age_months"`
	L         float64 `json:"l" yaml:"l"`
	M         float64 `json:"m" yaml:"m"`
	S         float64 `json:"s" yaml:"s"`
	SD3Neg    float64 `json:"sd3neg" yaml:"sd3neg"`
	SD2Neg    float64 `json:"sd2neg" yaml:"sd2neg"`
	SD2Pos    float64 `json:"sd2pos" yaml:"sd2pos"`
	SD3Pos    float64 `json:"sd3pos" yaml:"sd3pos"`
}

func cmdReference(c *cli.Context) error {
	ind, err := reference.ParseIndicator(c.String(indicatorFlag.Name))
	if err != nil {
		return err
	}
	sex, err := reference.ParseSex(c.String(sexFlag.Name))
	if err != nil {
		return err
	}

	cfg := getConfig(c)
	row, err := cfg.Table.Lookup(ind, sex, c.Float64(ageFlag.Name))
	if err != nil {
		return err
	}

	return encode(&ReferenceRow{
		Indicator: ind.String(),
		Sex:       row.Sex.String(),
		AgeMonths: row.AgeMonths,
		L:         row.L,
		M:         row.M,
		S:         row.S,
		SD3Neg:    row.SD3Neg,
		SD2Neg:    row.SD2Neg,
		SD2Pos:    row.SD2Pos,
		SD3Pos:    row.SD3Pos,
	})
}
