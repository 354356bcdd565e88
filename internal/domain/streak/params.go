package streak

// Params defines all configurable parameters for the streak state machine
type Params struct {
	// GraceWindowDays is the number of whole days that may elapse between
	// completions without resetting the streak. Completing exactly on the
	// last day of the window still continues the streak.
	GraceWindowDays int

	// Milestones are the streak lengths that earn a badge, in ascending order.
	Milestones []int
}

// ParamsConfig allows overriding the default parameters when creating a new Params instance
type ParamsConfig struct {
	GraceWindowDays int
	Milestones      []int
}

// NewDefaultParams creates a new Params instance with default values
func NewDefaultParams() *Params {
	return &Params{
		GraceWindowDays: 7,
		Milestones:      []int{1, 5, 10, 25, 50, 100},
	}
}

// NewParams creates a new Params instance with custom configuration.
// Zero values in config keep the defaults.
func NewParams(config ParamsConfig) *Params {
	params := NewDefaultParams()

	if config.GraceWindowDays > 0 {
		params.GraceWindowDays = config.GraceWindowDays
	}
	if len(config.Milestones) > 0 {
		params.Milestones = append([]int(nil), config.Milestones...)
	}

	return params
}
