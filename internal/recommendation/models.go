package recommendation

import "time"

// Care plan labels produced by the rules. The set is fixed; new labels require
// a rules change, not configuration.
const (
	LabelPostOpRehab      = "Post-Op Rehabilitation Plan"
	LabelPhysicalTherapy  = "Physical Therapy"
	LabelWeightManagement = "Weight Management Program"
	LabelGeneralCheckup   = "General Health Checkup"
)

// Recommendation is one persisted care recommendation. Records are immutable
// once created and only disappear when their patient is deleted (FK cascade).
type Recommendation struct {
	ID        string    `json:"id"`
	PatientID int64     `json:"patient_id"`
	Label     string    `json:"recommendation"`
	CreatedAt time.Time `json:"timestamp"`
}
