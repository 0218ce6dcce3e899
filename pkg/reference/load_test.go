package reference

import (
	"errors"
	"fmt"
	"strings"
	"testing"
	"testing/fstest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fixtureSource builds a complete synthetic source covering 61-228 for
// both sexes, with a hook to rewrite rows before assembly.
func fixtureSource(mutate func(sex Sex, age int, row string) string) string {
	var b strings.Builder
	b.WriteString("sex,age,l,m,s,sd3neg,sd2neg,sd2pos,sd3pos\n")
	for _, sex := range []Sex{Male, Female} {
		for age := MinAgeMonths; age <= MaxAgeMonths; age++ {
			row := fmt.Sprintf("%d,%d,-1.50000,16.00000,0.09000,11.00000,13.00000,20.00000,23.00000", sex, age)
			if mutate != nil {
				row = mutate(sex, age, row)
			}
			if row != "" {
				b.WriteString(row + "\n")
			}
		}
	}
	return b.String()
}

func fixtureFS(bmi, height string) fstest.MapFS {
	fsys := fstest.MapFS{}
	if bmi != "" {
		fsys["who_bmi_for_age_lms.csv"] = &fstest.MapFile{Data: []byte(bmi)}
	}
	if height != "" {
		fsys["who_height_for_age_lms.csv"] = &fstest.MapFile{Data: []byte(height)}
	}
	return fsys
}

func TestLoadFS(t *testing.T) {
	src := fixtureSource(nil)
	table, err := LoadFS(fixtureFS(src, src))
	require.NoError(t, err)

	row, err := table.Lookup(BMIForAge, Female, 150)
	require.NoError(t, err)
	assert.Equal(t, 16.0, row.M)
	assert.Equal(t, 0.09, row.S)
}

func TestLoadFSMissingSource(t *testing.T) {
	src := fixtureSource(nil)
	_, err := LoadFS(fixtureFS(src, ""))
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrDataLoad))
}

func TestLoadFSMissingAge(t *testing.T) {
	gap := fixtureSource(func(sex Sex, age int, row string) string {
		if sex == Male && age == 100 {
			return ""
		}
		return row
	})
	full := fixtureSource(nil)
	_, err := LoadFS(fixtureFS(gap, full))
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrDataLoad))
	assert.Contains(t, err.Error(), "missing row")
}

func TestLoadFSDuplicateRow(t *testing.T) {
	dup := fixtureSource(func(sex Sex, age int, row string) string {
		if sex == Male && age == 61 {
			return row + "\n" + row
		}
		return row
	})
	full := fixtureSource(nil)
	_, err := LoadFS(fixtureFS(dup, full))
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrDataLoad))
	assert.Contains(t, err.Error(), "duplicate")
}

func TestLoadFSBadHeader(t *testing.T) {
	src := fixtureSource(nil)
	bad := strings.Replace(src, "sd3neg", "sd3minus", 1)
	_, err := LoadFS(fixtureFS(bad, src))
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrDataLoad))
}

func TestLoadFSMalformedValue(t *testing.T) {
	bad := fixtureSource(func(sex Sex, age int, row string) string {
		if sex == Female && age == 200 {
			return strings.Replace(row, "16.00000", "not-a-number", 1)
		}
		return row
	})
	full := fixtureSource(nil)
	_, err := LoadFS(fixtureFS(full, bad))
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrDataLoad))
}

func TestLoadFSUnorderedBoundaries(t *testing.T) {
	bad := fixtureSource(func(sex Sex, age int, row string) string {
		if sex == Male && age == 70 {
			// sd2pos above sd3pos
			return strings.Replace(row, "20.00000,23.00000", "23.00000,20.00000", 1)
		}
		return row
	})
	full := fixtureSource(nil)
	_, err := LoadFS(fixtureFS(bad, full))
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrDataLoad))
	assert.Contains(t, err.Error(), "out of order")
}

func TestLoadFSNonPositiveScale(t *testing.T) {
	bad := fixtureSource(func(sex Sex, age int, row string) string {
		if sex == Male && age == 90 {
			return strings.Replace(row, "0.09000", "0.00000", 1)
		}
		return row
	})
	full := fixtureSource(nil)
	_, err := LoadFS(fixtureFS(bad, full))
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrDataLoad))
}
