package zscore

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestClassify(t *testing.T) {
	tests := []struct {
		z    float64
		want Classification
	}{
		{-3.5, SevereThinness},
		{-3.0001, SevereThinness},
		{-3, Thinness}, // -3 is included in thinness
		{-2.5, Thinness},
		{-2, Eutrophic}, // -2 is included in eutrophic
		{-1, Eutrophic},
		{0, Eutrophic},
		{1, Eutrophic}, // +1 is included in eutrophic
		{1.0001, Overweight},
		{1.5, Overweight},
		{2, Overweight}, // +2 is included in overweight
		{2.0001, Obesity},
		{2.5, Obesity},
		{100, Obesity},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, Classify(tt.z), "z=%v", tt.z)
	}
}

func TestClassificationString(t *testing.T) {
	assert.Equal(t, "severe thinness", SevereThinness.String())
	assert.Equal(t, "thinness", Thinness.String())
	assert.Equal(t, "eutrophic", Eutrophic.String())
	assert.Equal(t, "overweight", Overweight.String())
	assert.Equal(t, "obesity", Obesity.String())
	assert.Equal(t, "unknown", Classification(99).String())
}
