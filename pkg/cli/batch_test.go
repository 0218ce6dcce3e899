package cli

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/anthrogo/growthz/pkg/zscore"
)

func TestFrameRoundTrip(t *testing.T) {
	dir := t.TempDir()
	in := filepath.Join(dir, "cohort.csv")

	content := "id,bmi,height,age,sex\n1,18.5,100,100,1\n2,30,,100,1\n"
	require.NoError(t, os.WriteFile(in, []byte(content), 0600))

	frame, err := readFrame(in)
	require.NoError(t, err)
	assert.Equal(t, []string{"id", "bmi", "height", "age", "sex"}, frame.Columns)
	require.Len(t, frame.Rows, 2)
	assert.Equal(t, "18.5", frame.Rows[0][1])

	out := filepath.Join(dir, "out.csv")
	require.NoError(t, writeFrame(out, frame))

	back, err := readFrame(out)
	require.NoError(t, err)
	assert.Equal(t, frame.Columns, back.Columns)
	assert.Equal(t, frame.Rows, back.Rows)
}

func TestReadFrameErrors(t *testing.T) {
	_, err := readFrame(filepath.Join(t.TempDir(), "missing.csv"))
	assert.Error(t, err)

	empty := filepath.Join(t.TempDir(), "empty.csv")
	require.NoError(t, os.WriteFile(empty, nil, 0600))
	_, err = readFrame(empty)
	assert.Error(t, err)
}

func TestFrameHas(t *testing.T) {
	f := &zscore.Frame{Columns: []string{"bmi", "age"}}
	assert.True(t, frameHas(f, "bmi"))
	assert.False(t, frameHas(f, "height"))
}
