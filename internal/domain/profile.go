package domain

import (
	"time"
)

// Profile accumulates one user's questionnaire answers.
// Step fields are pointers: nil means "never answered", which is not the
// same as an answered empty string.
type Profile struct {
	ID      string  `bson:"_id" json:"id"`
	OwnerID *string `bson:"ownerId,omitempty" json:"ownerId,omitempty"` // e.g. Telegram user id; nil for web-only sessions

	// Step 1
	Gender *Gender `bson:"gender" json:"gender,omitempty"`
	Age    *int    `bson:"age" json:"age,omitempty"`
	Height *int    `bson:"height" json:"height,omitempty"` // cm
	Weight *int    `bson:"weight" json:"weight,omitempty"` // kg

	// Step 2
	Goal       *GoalType `bson:"goal" json:"goal,omitempty"`
	CustomGoal *string   `bson:"customGoal" json:"customGoal,omitempty"`
	Months     *int      `bson:"months" json:"months,omitempty"`

	// Step 3
	CurrentResults *string             `bson:"currentResults" json:"currentResults,omitempty"`
	LastTrained    *TrainingExperience `bson:"lastTrained" json:"lastTrained,omitempty"`

	// Step 4
	WorkoutsPerWeek *int           `bson:"workoutsPerWeek" json:"workoutsPerWeek,omitempty"`
	WorkoutDuration *int           `bson:"workoutDuration" json:"workoutDuration,omitempty"` // minutes
	TrainingStyle   *TrainingStyle `bson:"trainingStyle" json:"trainingStyle,omitempty"`

	// Step 5
	HealthRestrictions *string `bson:"healthRestrictions" json:"healthRestrictions,omitempty"`
	Preferences        *string `bson:"preferences" json:"preferences,omitempty"`

	// Text of the latest generated program. The program store is authoritative.
	GeneratedProgram *string `bson:"generatedProgram,omitempty" json:"generatedProgram,omitempty"`

	CreatedAt time.Time `bson:"createdAt" json:"createdAt"`
	UpdatedAt time.Time `bson:"updatedAt" json:"updatedAt"`
}

// NewProfile returns an empty profile with both timestamps set to now.
func NewProfile(id string, ownerID *string, now time.Time) *Profile {
	return &Profile{
		ID:        id,
		OwnerID:   ownerID,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// IsComplete reports whether every required answer is present.
// custom_goal is not required, even for the custom goal.
func (p *Profile) IsComplete() bool {
	return len(p.MissingFields()) == 0
}

// MissingFields lists the unanswered required fields in questionnaire order.
func (p *Profile) MissingFields() []string {
	required := []struct {
		name string
		set  bool
	}{
		{"gender", p.Gender != nil},
		{"age", p.Age != nil},
		{"height", p.Height != nil},
		{"weight", p.Weight != nil},
		{"goal", p.Goal != nil},
		{"months", p.Months != nil},
		{"current_results", p.CurrentResults != nil},
		{"last_trained", p.LastTrained != nil},
		{"workouts_per_week", p.WorkoutsPerWeek != nil},
		{"workout_duration", p.WorkoutDuration != nil},
		{"training_style", p.TrainingStyle != nil},
		{"health_restrictions", p.HealthRestrictions != nil},
		{"preferences", p.Preferences != nil},
	}

	var missing []string
	for _, f := range required {
		if !f.set {
			missing = append(missing, f.name)
		}
	}
	return missing
}

// ApplyStep overwrites the fields of the update's step group and refreshes
// UpdatedAt. Fields of other steps are left alone.
func (p *Profile) ApplyStep(update StepUpdate, now time.Time) {
	update.applyTo(p)
	p.UpdatedAt = now
}

// SetGeneratedProgram records the latest generated program text.
func (p *Profile) SetGeneratedProgram(content string, now time.Time) {
	p.GeneratedProgram = &content
	p.UpdatedAt = now
}

// Payload flattens the profile into the generation request payload.
// Enums are reduced to their stored string values; unanswered optional
// fields are nil.
func (p *Profile) Payload() map[string]any {
	return map[string]any{
		"gender":              enumValue(p.Gender),
		"age":                 intValue(p.Age),
		"height":              intValue(p.Height),
		"weight":              intValue(p.Weight),
		"goal":                enumValue(p.Goal),
		"custom_goal":         stringValue(p.CustomGoal),
		"months":              intValue(p.Months),
		"current_results":     stringValue(p.CurrentResults),
		"last_trained":        enumValue(p.LastTrained),
		"workouts_per_week":   intValue(p.WorkoutsPerWeek),
		"workout_duration":    intValue(p.WorkoutDuration),
		"training_style":      enumValue(p.TrainingStyle),
		"health_restrictions": stringValue(p.HealthRestrictions),
		"preferences":         stringValue(p.Preferences),
	}
}

func enumValue[T ~string](v *T) any {
	if v == nil {
		return nil
	}
	return string(*v)
}

func intValue(v *int) any {
	if v == nil {
		return nil
	}
	return *v
}

func stringValue(v *string) any {
	if v == nil {
		return nil
	}
	return *v
}
