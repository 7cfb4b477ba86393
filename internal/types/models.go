package types

import "time"

// Column names as they appear in the source table.
const (
	ColYear            = "YEAR"
	ColJurisdiction    = "JURISDICTION"
	ColMetric          = "METRIC"
	ColAgeGroup        = "AGE_GROUP"
	ColDetectionMethod = "DETECTION_METHOD"
	ColFines           = "FINES"
	ColArrests         = "ARRESTS"
	ColCharges         = "CHARGES"
	ColStartDate       = "START_DATE"
)

// UnknownAgeGroup is used when AGE_GROUP is blank or absent.
const UnknownAgeGroup = "Unknown"

// EnforcementRecord is one row of the enforcement table. Counts are never negative.
type EnforcementRecord struct {
	Year            int       `json:"year"`
	Jurisdiction    string    `json:"jurisdiction"`
	Metric          string    `json:"metric"`
	AgeGroup        string    `json:"age_group"`
	DetectionMethod string    `json:"detection_method,omitempty"`
	StartDate       time.Time `json:"start_date,omitempty"`
	Fines           int64     `json:"fines"`
	Arrests         int64     `json:"arrests"`
	Charges         int64     `json:"charges"`
}

// Severe is arrests plus charges.
func (r EnforcementRecord) Severe() int64 {
	return r.Arrests + r.Charges
}

func (r EnforcementRecord) Total() int64 {
	return r.Fines + r.Arrests + r.Charges
}

func (r EnforcementRecord) HasStartDate() bool {
	return !r.StartDate.IsZero()
}

// LoadStats counts what happened to the source rows at load time.
type LoadStats struct {
	Rows        int `json:"rows"`
	Loaded      int `json:"loaded"`
	DroppedYear int `json:"dropped_invalid_year"`
}
