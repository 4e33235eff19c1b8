package patient

// Attributes holds the health characteristics a patient is evaluated on.
type Attributes struct {
	Age           int     `json:"age"`
	BMI           float64 `json:"bmi"`
	ChronicPain   bool    `json:"chronic_pain"`
	RecentSurgery bool    `json:"recent_surgery"`
}

// Equal reports whether two attribute sets are identical. Attribute equality
// drives cache invalidation: any difference forces the patient record to be
// rewritten and the cached recommendation set to be dropped.
func (a Attributes) Equal(other Attributes) bool {
	return a == other
}

// Patient is the durable record for one evaluated person. Identity is the
// (FirstName, LastName) pair, case-sensitive; at most one record exists per
// identity.
type Patient struct {
	ID        int64  `json:"id"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Attributes
}
