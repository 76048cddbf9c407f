package domain

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
)

// ErrValidation is matched by every *ValidationError.
var ErrValidation = errors.New("validation failed")

// ValidationError names the offending field and the constraint it broke.
type ValidationError struct {
	Field      string
	Constraint string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation failed: field %q violates %q", e.Field, e.Constraint)
}

func (e *ValidationError) Is(target error) bool {
	return target == ErrValidation
}

// StepUpdate is the typed answer set of one questionnaire step.
// Only Step1..Step5 implement it.
type StepUpdate interface {
	Number() int
	Validate() error
	applyTo(p *Profile)
}

// Step1 holds body metrics.
type Step1 struct {
	Gender *Gender `json:"gender" validate:"required,oneof=male female"`
	Age    *int    `json:"age" validate:"required,min=10,max=100"`
	Height *int    `json:"height" validate:"required,min=100,max=250"`
	Weight *int    `json:"weight" validate:"required,min=30,max=200"`
}

// Step2 holds the goal and its horizon.
type Step2 struct {
	Goal       *GoalType `json:"goal" validate:"required,oneof=bench_100kg lose_7kg pullups_12 gain_4kg custom"`
	CustomGoal *string   `json:"custom_goal" validate:"omitempty,max=1000"`
	Months     *int      `json:"months" validate:"required,min=1,max=24"`
}

// Step3 holds training history.
type Step3 struct {
	CurrentResults *string             `json:"current_results" validate:"required,min=1,max=1000"`
	LastTrained    *TrainingExperience `json:"last_trained" validate:"required,oneof=currently lt_3_months 3_6_months 6_12_months gt_year"`
}

// Step4 holds the schedule.
type Step4 struct {
	WorkoutsPerWeek *int           `json:"workouts_per_week" validate:"required,min=1,max=7"`
	WorkoutDuration *int           `json:"workout_duration" validate:"required,min=15,max=180"`
	TrainingStyle   *TrainingStyle `json:"training_style" validate:"required,oneof=balanced strength hypertrophy"`
}

// Step5 holds constraints. Empty strings are valid answers.
type Step5 struct {
	HealthRestrictions *string `json:"health_restrictions" validate:"required,max=1000"`
	Preferences        *string `json:"preferences" validate:"required,max=1000"`
}

func (Step1) Number() int { return 1 }
func (Step2) Number() int { return 2 }
func (Step3) Number() int { return 3 }
func (Step4) Number() int { return 4 }
func (Step5) Number() int { return 5 }

func (s Step1) Validate() error { return validateStruct(s) }
func (s Step2) Validate() error { return validateStruct(s) }
func (s Step3) Validate() error { return validateStruct(s) }
func (s Step4) Validate() error { return validateStruct(s) }
func (s Step5) Validate() error { return validateStruct(s) }

func (s Step1) applyTo(p *Profile) {
	p.Gender = s.Gender
	p.Age = s.Age
	p.Height = s.Height
	p.Weight = s.Weight
}

func (s Step2) applyTo(p *Profile) {
	p.Goal = s.Goal
	p.CustomGoal = s.CustomGoal
	p.Months = s.Months
}

func (s Step3) applyTo(p *Profile) {
	p.CurrentResults = s.CurrentResults
	p.LastTrained = s.LastTrained
}

func (s Step4) applyTo(p *Profile) {
	p.WorkoutsPerWeek = s.WorkoutsPerWeek
	p.WorkoutDuration = s.WorkoutDuration
	p.TrainingStyle = s.TrainingStyle
}

func (s Step5) applyTo(p *Profile) {
	p.HealthRestrictions = s.HealthRestrictions
	p.Preferences = s.Preferences
}

// StepCount is the number of questionnaire steps.
const StepCount = 5

// ParseStep decodes a JSON step payload. Unknown fields, wrong types and
// out-of-range values are reported as *ValidationError.
func ParseStep(step int, raw []byte) (StepUpdate, error) {
	switch step {
	case 1:
		return decodeStep[Step1](raw)
	case 2:
		return decodeStep[Step2](raw)
	case 3:
		return decodeStep[Step3](raw)
	case 4:
		return decodeStep[Step4](raw)
	case 5:
		return decodeStep[Step5](raw)
	default:
		return nil, &ValidationError{Field: "step", Constraint: "oneof=1 2 3 4 5"}
	}
}

func decodeStep[T StepUpdate](raw []byte) (StepUpdate, error) {
	var s T
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&s); err != nil {
		return nil, decodeError(err)
	}
	// The body must hold exactly one JSON value.
	if _, err := dec.Token(); !errors.Is(err, io.EOF) {
		return nil, &ValidationError{Field: "body", Constraint: "json"}
	}
	if err := s.Validate(); err != nil {
		return nil, err
	}
	return s, nil
}

func decodeError(err error) error {
	var typeErr *json.UnmarshalTypeError
	switch {
	case errors.Is(err, io.EOF):
		return &ValidationError{Field: "body", Constraint: "required"}
	case errors.As(err, &typeErr):
		return &ValidationError{Field: typeErr.Field, Constraint: "type=" + typeErr.Type.String()}
	case strings.HasPrefix(err.Error(), "json: unknown field "):
		field := strings.Trim(strings.TrimPrefix(err.Error(), "json: unknown field "), `"`)
		return &ValidationError{Field: field, Constraint: "unknown"}
	default:
		return &ValidationError{Field: "body", Constraint: "json"}
	}
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	// Report JSON names so callers can map errors back to their input.
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

func validateStruct(s any) error {
	err := validate.Struct(s)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if errors.As(err, &fieldErrs) && len(fieldErrs) > 0 {
		fe := fieldErrs[0]
		constraint := fe.Tag()
		if fe.Param() != "" {
			constraint += "=" + fe.Param()
		}
		return &ValidationError{Field: fe.Field(), Constraint: constraint}
	}
	return err
}
