package reference

import (
	"embed"
	"encoding/csv"
	"io"
	"io/fs"
	"strconv"

	"github.com/pkg/errors"
)

const (
	bmiSourceFile    = "who_bmi_for_age_lms.csv"
	heightSourceFile = "who_height_for_age_lms.csv"
)

// ErrDataLoad is returned when a source table is missing, malformed, or
// fails the completeness invariant. Fatal: a partially loaded table is
// never returned.
var ErrDataLoad = errors.New("reference data load failed")

//go:embed data/*.csv
var dataFS embed.FS

var sourceColumns = []string{"sex", "age", "l", "m", "s", "sd3neg", "sd2neg", "sd2pos", "sd3pos"}

// Load builds the table from the embedded WHO 2007 sources.
func Load() (*Table, error) {
	sub, err := fs.Sub(dataFS, "data")
	if err != nil {
		return nil, errors.Wrapf(ErrDataLoad, "embedded data: %v", err)
	}
	return LoadFS(sub)
}

// LoadFS builds the table from a filesystem holding the two source files
// at its root. Exposed so tests can substitute fixture tables for the
// embedded data.
func LoadFS(fsys fs.FS) (*Table, error) {
	t := &Table{rows: make(map[rowKey]Row)}
	sources := []struct {
		ind  Indicator
		name string
	}{
		{BMIForAge, bmiSourceFile},
		{HeightForAge, heightSourceFile},
	}
	for _, src := range sources {
		f, err := fsys.Open(src.name)
		if err != nil {
			return nil, errors.Wrapf(ErrDataLoad, "opening %s: %v", src.name, err)
		}
		err = t.readSource(src.ind, f)
		f.Close()
		if err != nil {
			return nil, errors.Wrapf(err, "source %s", src.name)
		}
	}
	if err := t.validate(); err != nil {
		return nil, err
	}
	return t, nil
}

func (t *Table) readSource(ind Indicator, r io.Reader) error {
	cr := csv.NewReader(r)
	header, err := cr.Read()
	if err != nil {
		return errors.Wrapf(ErrDataLoad, "reading header: %v", err)
	}

	idx := make(map[string]int, len(header))
	for i, name := range header {
		idx[name] = i
	}
	for _, name := range sourceColumns {
		if _, ok := idx[name]; !ok {
			return errors.Wrapf(ErrDataLoad, "missing column %q", name)
		}
	}

	line := 1
	for {
		rec, err := cr.Read()
		if err == io.EOF {
			return nil
		}
		line++
		if err != nil {
			return errors.Wrapf(ErrDataLoad, "line %d: %v", line, err)
		}
		if err := t.addRow(ind, rec, idx, line); err != nil {
			return err
		}
	}
}

func (t *Table) addRow(ind Indicator, rec []string, idx map[string]int, line int) error {
	sexVal, err := strconv.Atoi(rec[idx["sex"]])
	if err != nil {
		return errors.Wrapf(ErrDataLoad, "line %d: bad sex: %v", line, err)
	}
	sex := Sex(sexVal)
	if sex != Male && sex != Female {
		return errors.Wrapf(ErrDataLoad, "line %d: unknown sex %d", line, sexVal)
	}

	age, err := strconv.Atoi(rec[idx["age"]])
	if err != nil {
		return errors.Wrapf(ErrDataLoad, "line %d: bad age: %v", line, err)
	}

	row := Row{Sex: sex, AgeMonths: age}
	fields := []struct {
		name string
		dst  *float64
	}{
		{"l", &row.L},
		{"m", &row.M},
		{"s", &row.S},
		{"sd3neg", &row.SD3Neg},
		{"sd2neg", &row.SD2Neg},
		{"sd2pos", &row.SD2Pos},
		{"sd3pos", &row.SD3Pos},
	}
	for _, f := range fields {
		v, err := strconv.ParseFloat(rec[idx[f.name]], 64)
		if err != nil {
			return errors.Wrapf(ErrDataLoad, "line %d: bad %s: %v", line, f.name, err)
		}
		*f.dst = v
	}

	if row.M <= 0 || row.S <= 0 {
		return errors.Wrapf(ErrDataLoad, "line %d: M and S must be positive", line)
	}
	if !(row.SD3Neg < row.SD2Neg && row.SD2Neg < row.M && row.M < row.SD2Pos && row.SD2Pos < row.SD3Pos) {
		return errors.Wrapf(ErrDataLoad, "line %d: SD boundaries out of order", line)
	}

	key := rowKey{ind: ind, sex: sex, age: age}
	if _, exists := t.rows[key]; exists {
		return errors.Wrapf(ErrDataLoad, "line %d: duplicate row for %s %s at %d months", line, ind, sex, age)
	}
	t.rows[key] = row
	return nil
}

// validate enforces the completeness invariant: exactly one row per
// (indicator, sex) for every integer age in the serving range. Months
// outside the range (the sources carry 60 and 229) are loaded but never
// served.
func (t *Table) validate() error {
	for _, ind := range []Indicator{BMIForAge, HeightForAge} {
		for _, sex := range []Sex{Male, Female} {
			for age := MinAgeMonths; age <= MaxAgeMonths; age++ {
				if _, ok := t.rows[rowKey{ind: ind, sex: sex, age: age}]; !ok {
					return errors.Wrapf(ErrDataLoad, "missing row for %s %s at %d months", ind, sex, age)
				}
			}
		}
	}
	return nil
}
