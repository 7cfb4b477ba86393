package aggregator

import (
	"fmt"
	"strconv"
	"strings"

	"enforcement-insights-go/internal/types"
)

// Key is a one- or two-part grouping key compared by value.
type Key struct {
	First  string `json:"first"`
	Second string `json:"second,omitempty"`
}

func K(first string) Key {
	return Key{First: first}
}

func K2(first, second string) Key {
	return Key{First: first, Second: second}
}

func (k Key) String() string {
	if k.Second == "" {
		return k.First
	}
	return k.First + "|" + k.Second
}

// KeyFunc extracts the grouping key. ok=false leaves the record out of every bucket.
type KeyFunc func(r types.EnforcementRecord) (k Key, ok bool)

func ByMetric(r types.EnforcementRecord) (Key, bool) {
	return K(r.Metric), true
}

func ByYear(r types.EnforcementRecord) (Key, bool) {
	return K(strconv.Itoa(r.Year)), true
}

func ByJurisdiction(r types.EnforcementRecord) (Key, bool) {
	return K(r.Jurisdiction), true
}

func ByAgeGroup(r types.EnforcementRecord) (Key, bool) {
	return K(r.AgeGroup), true
}

func ByYearMetric(r types.EnforcementRecord) (Key, bool) {
	return K2(strconv.Itoa(r.Year), r.Metric), true
}

func ByJurisdictionAgeGroup(r types.EnforcementRecord) (Key, bool) {
	return K2(r.Jurisdiction, r.AgeGroup), true
}

// ByMonth keys on START_DATE as YYYY-MM; records without a date are skipped.
func ByMonth(r types.EnforcementRecord) (Key, bool) {
	if !r.HasStartDate() {
		return Key{}, false
	}
	return K(fmt.Sprintf("%04d-%02d", r.StartDate.Year(), int(r.StartDate.Month()))), true
}

// Detection method buckets.
const (
	CameraBased  = "Camera-based"
	PoliceIssued = "Police-issued"
)

// DetectionBucket folds the free-text detection method into a bucket.
// A "Police" mention wins over "camera".
func DetectionBucket(method string) (string, bool) {
	switch {
	case strings.Contains(method, "Police"):
		return PoliceIssued, true
	case strings.Contains(strings.ToLower(method), "camera"):
		return CameraBased, true
	}
	return "", false
}

func ByDetectionMethod(r types.EnforcementRecord) (Key, bool) {
	b, ok := DetectionBucket(r.DetectionMethod)
	if !ok {
		return Key{}, false
	}
	return K(b), true
}
