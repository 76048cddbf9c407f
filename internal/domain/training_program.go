package domain

import "time"

// TrainingProgram is one generated program. Records are append-only.
type TrainingProgram struct {
	ID        string    `bson:"_id" json:"id"`
	ProfileID string    `bson:"profileId" json:"profileId"` // Owning profile
	Content   string    `bson:"content" json:"content"`     // Provider output, stored as-is
	CreatedAt time.Time `bson:"createdAt" json:"createdAt"`
}

// LatestProgram returns the program with the greatest CreatedAt, or nil for
// an empty slice. Ties keep the later element.
func LatestProgram(programs []TrainingProgram) *TrainingProgram {
	var latest *TrainingProgram
	for i := range programs {
		if latest == nil || !programs[i].CreatedAt.Before(latest.CreatedAt) {
			latest = &programs[i]
		}
	}
	return latest
}
