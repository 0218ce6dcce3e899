package zscore

// Classification is the nutritional status bucket derived from a
// BMI-for-age z-score. The five intervals partition the real line.
type Classification int

const (
	SevereThinness Classification = iota // z < -3
	Thinness                             // -3 <= z < -2
	Eutrophic                            // -2 <= z <= 1
	Overweight                           // 1 < z <= 2
	Obesity                              // z > 2
)

func (c Classification) String() string {
	switch c {
	case SevereThinness:
		return "severe thinness"
	case Thinness:
		return "thinness"
	case Eutrophic:
		return "eutrophic"
	case Overweight:
		return "overweight"
	case Obesity:
		return "obesity"
	}
	return "unknown"
}

// Classify maps a BMI-for-age z-score to its classification.
func Classify(z float64) Classification {
	switch {
	case z < -3:
		return SevereThinness
	case z < -2:
		return Thinness
	case z <= 1:
		return Eutrophic
	case z <= 2:
		return Overweight
	default:
		return Obesity
	}
}
