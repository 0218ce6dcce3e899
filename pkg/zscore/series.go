package zscore

import (
	"runtime"
	"sort"
	"strconv"
	"strings"

	"github.com/pkg/errors"
	"golang.org/x/sync/errgroup"
	"gonum.org/v1/gonum/stat"

	"github.com/anthrogo/growthz/pkg/reference"
)

// Result column names appended by ComputeSeries.
const (
	ZBMIColumn = "zbmi"
	ZHFAColumn = "zhfa"
)

// Frame is a minimal in-memory record table, shaped like a parsed CSV:
// a header plus string cells.
type Frame struct {
	Columns []string
	Rows    [][]string
}

func (f *Frame) columnIndex(name string) int {
	for i, c := range f.Columns {
		if c == name {
			return i
		}
	}
	return -1
}

// Columns maps frame column names to the engine inputs. Age and Sex are
// required; at least one of BMI and Height must be set. An unset
// measurement column skips the corresponding result column.
type Columns struct {
	BMI    string `json:"bmi,omitempty" yaml:"bmi,omitempty"`
	Height string `json:"height,omitempty" yaml:"height,omitempty"`
	Age    string `json:"age" yaml:"age"`
	Sex    string `json:"sex" yaml:"sex"`
}

// RowFailure records one row that could not be scored. The batch itself
// does not fail for these.
type RowFailure struct {
	Row    int    `json:"row" yaml:"row"`
	Column string `json:"column,omitempty" yaml:"column,omitempty"`
	Error  string `json:"error" yaml:"error"`
}

// ColumnStats summarizes the successfully computed values of one result
// column.
type ColumnStats struct {
	N      int     `json:"n" yaml:"n"`
	Mean   float64 `json:"mean" yaml:"mean"`
	StdDev float64 `json:"stddev" yaml:"stddev"`
	Median float64 `json:"median" yaml:"median"`
}

// SeriesResult is the outcome of a batch computation: the input frame
// with result columns appended, per-row diagnostics for failed rows, and
// summary statistics per result column.
type SeriesResult struct {
	Frame    *Frame       `json:"-" yaml:"-"`
	Rows     int          `json:"rows" yaml:"rows"`
	Failed   int          `json:"failed" yaml:"failed"`
	Failures []RowFailure `json:"failures,omitempty" yaml:"failures,omitempty"`
	ZBMI     *ColumnStats `json:"zbmi,omitempty" yaml:"zbmi,omitempty"`
	ZHFA     *ColumnStats `json:"zhfa,omitempty" yaml:"zhfa,omitempty"`
}

type seriesOutput struct {
	ind    reference.Indicator
	srcIdx int
	srcCol string
	name   string
}

// ComputeSeries scores every row of the frame against the reference
// table, appending a zbmi and/or zhfa column depending on which
// measurement columns are mapped. Fail-soft per row: a row that cannot be
// parsed or scored yields empty result cells and a RowFailure, and the
// rest of the batch proceeds. Only systemic problems (unmapped or missing
// columns) fail the call. Rows are independent, so they are scored with
// bounded parallelism; output order is preserved.
func ComputeSeries(table *reference.Table, f *Frame, cols Columns) (*SeriesResult, error) {
	if table == nil {
		return nil, errors.New("reference table required")
	}
	if f == nil {
		return nil, errors.New("frame required")
	}
	if cols.Age == "" || cols.Sex == "" {
		return nil, errors.New("age and sex columns required")
	}

	ageIdx := f.columnIndex(cols.Age)
	if ageIdx < 0 {
		return nil, errors.Errorf("age column %q not in frame", cols.Age)
	}
	sexIdx := f.columnIndex(cols.Sex)
	if sexIdx < 0 {
		return nil, errors.Errorf("sex column %q not in frame", cols.Sex)
	}

	var outputs []seriesOutput
	if cols.BMI != "" {
		i := f.columnIndex(cols.BMI)
		if i < 0 {
			return nil, errors.Errorf("bmi column %q not in frame", cols.BMI)
		}
		outputs = append(outputs, seriesOutput{ind: reference.BMIForAge, srcIdx: i, srcCol: cols.BMI, name: ZBMIColumn})
	}
	if cols.Height != "" {
		i := f.columnIndex(cols.Height)
		if i < 0 {
			return nil, errors.Errorf("height column %q not in frame", cols.Height)
		}
		outputs = append(outputs, seriesOutput{ind: reference.HeightForAge, srcIdx: i, srcCol: cols.Height, name: ZHFAColumn})
	}
	if len(outputs) == 0 {
		return nil, errors.New("at least one measurement column (bmi, height) required")
	}

	n := len(f.Rows)
	vals := make([][]*float64, len(outputs))
	for i := range vals {
		vals[i] = make([]*float64, n)
	}
	rowFailures := make([][]RowFailure, n)

	var g errgroup.Group
	g.SetLimit(runtime.GOMAXPROCS(0))
	for i := range f.Rows {
		i := i
		g.Go(func() error {
			scoreRow(table, f.Rows[i], i, ageIdx, sexIdx, cols, outputs, vals, rowFailures)
			return nil
		})
	}
	_ = g.Wait()

	res := &SeriesResult{Rows: n}
	failedRows := map[int]bool{}
	for i, fs := range rowFailures {
		if len(fs) > 0 {
			failedRows[i] = true
			res.Failures = append(res.Failures, fs...)
		}
	}
	res.Failed = len(failedRows)

	res.Frame = appendColumns(f, outputs, vals)
	for oi, out := range outputs {
		s := summarize(vals[oi])
		switch out.ind {
		case reference.BMIForAge:
			res.ZBMI = s
		case reference.HeightForAge:
			res.ZHFA = s
		}
	}
	return res, nil
}

func scoreRow(table *reference.Table, row []string, i, ageIdx, sexIdx int, cols Columns, outputs []seriesOutput, vals [][]*float64, rowFailures [][]RowFailure) {
	sex, err := reference.ParseSex(row[sexIdx])
	if err != nil {
		rowFailures[i] = append(rowFailures[i], RowFailure{Row: i, Column: cols.Sex, Error: err.Error()})
		return
	}
	age, err := strconv.ParseFloat(strings.TrimSpace(row[ageIdx]), 64)
	if err != nil {
		rowFailures[i] = append(rowFailures[i], RowFailure{Row: i, Column: cols.Age, Error: "not a number"})
		return
	}

	for oi, out := range outputs {
		cell := strings.TrimSpace(row[out.srcIdx])
		if cell == "" {
			// Missing measurement, not an error: the result stays null.
			continue
		}
		x, err := strconv.ParseFloat(cell, 64)
		if err != nil {
			rowFailures[i] = append(rowFailures[i], RowFailure{Row: i, Column: out.srcCol, Error: "not a number"})
			continue
		}
		ref, err := table.Lookup(out.ind, sex, age)
		if err != nil {
			rowFailures[i] = append(rowFailures[i], RowFailure{Row: i, Column: out.name, Error: err.Error()})
			continue
		}
		z, err := Compute(ref, out.ind, x)
		if err != nil {
			rowFailures[i] = append(rowFailures[i], RowFailure{Row: i, Column: out.name, Error: err.Error()})
			continue
		}
		vals[oi][i] = &z
	}
}

func appendColumns(f *Frame, outputs []seriesOutput, vals [][]*float64) *Frame {
	out := &Frame{
		Columns: make([]string, 0, len(f.Columns)+len(outputs)),
		Rows:    make([][]string, len(f.Rows)),
	}
	out.Columns = append(out.Columns, f.Columns...)
	for _, o := range outputs {
		out.Columns = append(out.Columns, o.name)
	}
	for i, row := range f.Rows {
		cells := make([]string, 0, len(row)+len(outputs))
		cells = append(cells, row...)
		for oi := range outputs {
			if v := vals[oi][i]; v != nil {
				cells = append(cells, strconv.FormatFloat(Round2(*v), 'f', 2, 64))
			} else {
				cells = append(cells, "")
			}
		}
		out.Rows[i] = cells
	}
	return out
}

func summarize(vals []*float64) *ColumnStats {
	xs := make([]float64, 0, len(vals))
	for _, v := range vals {
		if v != nil {
			xs = append(xs, *v)
		}
	}
	s := &ColumnStats{N: len(xs)}
	if len(xs) == 0 {
		return s
	}
	s.Mean = stat.Mean(xs, nil)
	if len(xs) > 1 {
		s.StdDev = stat.StdDev(xs, nil)
	}
	sort.Float64s(xs)
	s.Median = stat.Quantile(0.5, stat.Empirical, xs, nil)
	return s
}
