package workflow

import "fmt"

// Stage is one entry of the fixed onboarding template. Label doubles as the
// team specialization that owns the stage.
type Stage struct {
	Label string
	Order int
}

var stageTemplate = []Stage{
	{Label: "Content", Order: 1},
	{Label: "UI/UX", Order: 2},
	{Label: "Dev", Order: 3},
	{Label: "SEO", Order: 4},
}

// Stages returns a copy of the onboarding template in order.
func Stages() []Stage {
	out := make([]Stage, len(stageTemplate))
	copy(out, stageTemplate)
	return out
}

func (s Stage) TaskTitle() string {
	return fmt.Sprintf("%s Implementation", s.Label)
}

// IsStageLabel reports whether label names a template stage.
func IsStageLabel(label string) bool {
	for _, s := range stageTemplate {
		if s.Label == label {
			return true
		}
	}
	return false
}
