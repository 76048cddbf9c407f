package llm

import (
	"fmt"
	"strings"
)

const systemPrompt = `You are a professional strength coach and sports nutritionist.
Build detailed, personalized training programs from the data you are given.
Answer in a structured plain-text format. Do not use tables.`

// BuildPrompt renders the user message for a generation payload.
// Missing values are printed as "-"; empty restrictions and preferences get
// neutral wording.
func BuildPrompt(payload map[string]any) string {
	var b strings.Builder
	b.WriteString("Create a training program for:\n")
	fmt.Fprintf(&b, "Gender: %s, Age: %s, Height: %s cm, Weight: %s kg\n",
		value(payload, "gender"), value(payload, "age"), value(payload, "height"), value(payload, "weight"))
	fmt.Fprintf(&b, "Goal: %s in %s months\n", value(payload, "goal"), value(payload, "months"))
	if custom := value(payload, "custom_goal"); custom != "-" && custom != "" {
		fmt.Fprintf(&b, "Goal details: %s\n", custom)
	}
	fmt.Fprintf(&b, "Current results: %s\n", value(payload, "current_results"))
	fmt.Fprintf(&b, "Experience: %s\n", value(payload, "last_trained"))
	fmt.Fprintf(&b, "Workouts per week: %s, %s min each\n",
		value(payload, "workouts_per_week"), value(payload, "workout_duration"))
	fmt.Fprintf(&b, "Style: %s\n", value(payload, "training_style"))
	fmt.Fprintf(&b, "Restrictions: %s\n", orDefault(value(payload, "health_restrictions"), "none"))
	fmt.Fprintf(&b, "Preferences: %s\n", orDefault(value(payload, "preferences"), "standard"))
	b.WriteString(`
Structure the program with:
1. A weekly plan
2. Exercises with sets and reps
3. Load progression
4. Recommendations
`)
	return b.String()
}

func value(payload map[string]any, key string) string {
	v, ok := payload[key]
	if !ok || v == nil {
		return "-"
	}
	return fmt.Sprint(v)
}

func orDefault(s, def string) string {
	if s == "" || s == "-" {
		return def
	}
	return s
}
