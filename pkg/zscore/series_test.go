package zscore

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/anthrogo/growthz/pkg/reference"
)

func cohortFrame() *Frame {
	return &Frame{
		Columns: []string{"id", "bmi", "height", "age", "sex"},
		Rows: [][]string{
			{"1", "18.5", "100", "100", "1"},
			{"2", "30", "", "100", "1"},
			{"3", "20", "135", "300", "1"}, // age out of range
			{"4", "17", "120", "110", "x"}, // unparseable sex
			{"5", "", "90", "110", "2"},
		},
	}
}

func cohortColumns() Columns {
	return Columns{BMI: "bmi", Height: "height", Age: "age", Sex: "sex"}
}

func TestComputeSeries(t *testing.T) {
	table := mustLoad(t)

	frame := cohortFrame()
	res, err := ComputeSeries(table, frame, cohortColumns())
	require.NoError(t, err)

	require.NotNil(t, res.Frame)
	assert.Equal(t, []string{"id", "bmi", "height", "age", "sex", ZBMIColumn, ZHFAColumn}, res.Frame.Columns)
	assert.Equal(t, 5, res.Rows)
	assert.Equal(t, 2, res.Failed)

	rows := res.Frame.Rows
	require.Len(t, rows, 5)

	assert.Equal(t, "-0.22", rows[0][5])
	assert.Equal(t, "-5.04", rows[0][6])

	assert.Equal(t, "5.03", rows[1][5])
	assert.Equal(t, "", rows[1][6]) // missing height, not a failure

	// Failing rows yield empty cells instead of aborting the batch.
	assert.Equal(t, "", rows[2][5])
	assert.Equal(t, "", rows[2][6])
	assert.Equal(t, "", rows[3][5])
	assert.Equal(t, "", rows[3][6])

	assert.Equal(t, "", rows[4][5])
	assert.Equal(t, "-7.06", rows[4][6])

	// Diagnostics point at the failed rows.
	failed := map[int]bool{}
	for _, f := range res.Failures {
		failed[f.Row] = true
	}
	assert.Equal(t, map[int]bool{2: true, 3: true}, failed)

	// The input frame is not mutated.
	assert.Len(t, frame.Columns, 5)
	assert.Len(t, frame.Rows[0], 5)
}

func TestComputeSeriesStats(t *testing.T) {
	table := mustLoad(t)

	res, err := ComputeSeries(table, cohortFrame(), cohortColumns())
	require.NoError(t, err)

	require.NotNil(t, res.ZBMI)
	assert.Equal(t, 2, res.ZBMI.N)
	assert.InDelta(t, (5.03-0.22)/2, res.ZBMI.Mean, 0.01)

	require.NotNil(t, res.ZHFA)
	assert.Equal(t, 2, res.ZHFA.N)
	assert.InDelta(t, (-5.04-7.06)/2, res.ZHFA.Mean, 0.01)
}

func TestComputeSeriesSingleColumn(t *testing.T) {
	table := mustLoad(t)

	cols := cohortColumns()
	cols.Height = ""
	res, err := ComputeSeries(table, cohortFrame(), cols)
	require.NoError(t, err)

	assert.Contains(t, res.Frame.Columns, ZBMIColumn)
	assert.NotContains(t, res.Frame.Columns, ZHFAColumn)
	assert.Nil(t, res.ZHFA)
}

func TestComputeSeriesSystemicErrors(t *testing.T) {
	table := mustLoad(t)
	frame := cohortFrame()

	_, err := ComputeSeries(nil, frame, cohortColumns())
	assert.Error(t, err)

	_, err = ComputeSeries(table, nil, cohortColumns())
	assert.Error(t, err)

	cols := cohortColumns()
	cols.BMI, cols.Height = "", ""
	_, err = ComputeSeries(table, frame, cols)
	assert.Error(t, err)

	cols = cohortColumns()
	cols.Age = "months"
	_, err = ComputeSeries(table, frame, cols)
	assert.Error(t, err)

	cols = cohortColumns()
	cols.BMI = "bmi_kgm2"
	_, err = ComputeSeries(table, frame, cols)
	assert.Error(t, err)
}

func TestComputeSeriesEmptyFrame(t *testing.T) {
	table := mustLoad(t)

	res, err := ComputeSeries(table, &Frame{Columns: []string{"bmi", "height", "age", "sex"}}, cohortColumns())
	require.NoError(t, err)
	assert.Equal(t, 0, res.Rows)
	assert.Equal(t, 0, res.Failed)
	assert.Equal(t, 0, res.ZBMI.N)
}

func TestComputeSeriesConsistentWithScalar(t *testing.T) {
	table := mustLoad(t)
	calc := New(table)

	res, err := ComputeSeries(table, cohortFrame(), cohortColumns())
	require.NoError(t, err)

	z, err := calc.Score(reference.BMIForAge, reference.Male, 100, 18.5)
	require.NoError(t, err)
	assert.Equal(t, "-0.22", res.Frame.Rows[0][5])
	assert.InDelta(t, -0.22, Round2(z), 0.005)
}
