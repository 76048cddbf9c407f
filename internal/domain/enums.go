package domain

// Gender as collected in step 1.
type Gender string

const (
	GenderMale   Gender = "male"
	GenderFemale Gender = "female"
)

// GoalType is the training goal picked in step 2.
type GoalType string

const (
	GoalBench100kg GoalType = "bench_100kg"
	GoalLose7kg    GoalType = "lose_7kg"
	GoalPullups12  GoalType = "pullups_12"
	GoalGain4kg    GoalType = "gain_4kg"
	GoalCustom     GoalType = "custom" // described by CustomGoal
)

// TrainingExperience is how long ago the user last trained (step 3).
type TrainingExperience string

const (
	ExperienceCurrently       TrainingExperience = "currently"
	ExperienceLessThan3Months TrainingExperience = "lt_3_months"
	Experience3To6Months      TrainingExperience = "3_6_months"
	Experience6To12Months     TrainingExperience = "6_12_months"
	ExperienceMoreThanYear    TrainingExperience = "gt_year"
)

// TrainingStyle is the preferred kind of training (step 4).
type TrainingStyle string

const (
	StyleBalanced    TrainingStyle = "balanced"
	StyleStrength    TrainingStyle = "strength"
	StyleHypertrophy TrainingStyle = "hypertrophy"
)
