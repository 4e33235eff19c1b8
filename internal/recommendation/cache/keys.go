// Package cache holds the result cache for computed recommendation payloads.
package cache

import "fmt"

// Cache keys live in one place so they do not drift across the codebase.
//
// The set key is derived from the patient's numeric id plus the identity pair;
// it is deleted whenever the patient's attributes change. The single
// recommendation key is derived from the recommendation id alone and is never
// invalidated - records are immutable once written.
func SetKey(patientID int64, firstName, lastName string) string {
	return fmt.Sprintf("recommendations:%d:%s:%s", patientID, firstName, lastName)
}

func RecordKey(recommendationID string) string {
	return "recommendation:" + recommendationID
}
