package constants

import "slices"

// Frequency is how often a habit is expected to be done
type Frequency string

const (
	FrequencyDaily    Frequency = "daily"
	FrequencyWeekdays Frequency = "weekdays"
	FrequencyCustom   Frequency = "custom"
)

// Known habit categories. Category is free-form on the wire but the UI only offers these.
const (
	CategoryFitness      = "fitness"
	CategoryLearning     = "learning"
	CategoryMindfulness  = "mindfulness"
	CategoryHealth       = "health"
	CategoryCreativity   = "creativity"
	CategoryProductivity = "productivity"
)

// Categories lists the known categories in display order
var Categories = []string{
	CategoryFitness,
	CategoryLearning,
	CategoryMindfulness,
	CategoryHealth,
	CategoryCreativity,
	CategoryProductivity,
}

// Frequencies lists the supported frequencies in display order
var Frequencies = []Frequency{
	FrequencyDaily,
	FrequencyWeekdays,
	FrequencyCustom,
}

// ValidFrequency reports whether f is a supported frequency
func ValidFrequency(f Frequency) bool {
	return slices.Contains(Frequencies, f)
}

// ValidCategory reports whether c is a known category
func ValidCategory(c string) bool {
	return slices.Contains(Categories, c)
}
