package compatibility

// Grade is a letter grade for a 0..100 score.
type Grade string

type gradeStep struct {
	min   int
	grade Grade
}

// gradeSteps are inclusive lower bounds, highest first.
var gradeSteps = []gradeStep{
	{90, "A+"},
	{85, "A"},
	{80, "B+"},
	{75, "B"},
	{70, "C+"},
	{65, "C"},
	{60, "D"},
}

// GradeF is returned for anything below the lowest step.
const GradeF Grade = "F"

// GradeFor maps a score onto the fixed grade ladder.
func GradeFor(score int) Grade {
	for _, s := range gradeSteps {
		if score >= s.min {
			return s.grade
		}
	}
	return GradeF
}
