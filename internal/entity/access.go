package entity

import "time"

// AccessPeriodDays is the fixed course entitlement length.
const AccessPeriodDays = 120

// CalculateAccessEndDate returns start plus the entitlement period in calendar days.
func CalculateAccessEndDate(start time.Time) time.Time {
	return start.AddDate(0, 0, AccessPeriodDays)
}

type AccessStatus string

const (
	AccessPending       AccessStatus = "pending"
	AccessActive        AccessStatus = "active"
	AccessExpired       AccessStatus = "expired"
	AccessGrantedNoDate AccessStatus = "granted_no_date"
)
