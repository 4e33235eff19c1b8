package recommendation

import "carepath/internal/patient"

// GenerateLabels maps patient attributes to an ordered list of care plan
// labels. This is pure domain logic - no I/O, no side effects.
//
// Clauses are evaluated in fixed priority order and are independent: every
// matching clause appends its label, so a patient can receive several
// recommendations from one evaluation. The checkup fallback guarantees the
// result is never empty.
func GenerateLabels(attrs patient.Attributes) []string {
	var labels []string

	// Rule 1: post-surgical recovery takes precedence over everything else.
	if attrs.RecentSurgery {
		labels = append(labels, LabelPostOpRehab)
	}

	// Rule 2: elderly patients with chronic pain.
	if attrs.Age > 65 && attrs.ChronicPain {
		labels = append(labels, LabelPhysicalTherapy)
	}

	// Rule 3: obesity threshold.
	if attrs.BMI > 30 {
		labels = append(labels, LabelWeightManagement)
	}

	// Fallback: nothing matched.
	if len(labels) == 0 {
		labels = append(labels, LabelGeneralCheckup)
	}

	return labels
}
