// Package batch derives batch numbers and the family key that ties the
// records of one physical cherry lot together.
package batch

import (
	"fmt"
	"strings"
	"time"

	"wetmill-backend/internal/timeutil"
)

// FamilyLength is the length of the family key at the head of every batch number.
const FamilyLength = 9

// Number builds the batch number for a station's grade on a purchase day:
// two-digit year, station code, two-digit day, two-digit month, grade.
// The date is read in station time.
func Number(stationCode, grade string, purchaseDate time.Time) string {
	d := timeutil.ToStation(purchaseDate)
	return fmt.Sprintf("%02d%s%02d%02d%s", d.Year()%100, stationCode, d.Day(), int(d.Month()), grade)
}

// Family returns the family key of a batch number, which is shared by every
// suffixed variant of the lot ("25MUS1303A", "25MUS1303A-2", "25MUS1303B").
// Short batch numbers are their own family.
func Family(batchNo string) string {
	if len(batchNo) <= FamilyLength {
		return batchNo
	}
	return batchNo[:FamilyLength]
}

// IsSecondary reports whether a batch number marks a secondary split,
// either a "-2" suffix or a trailing "B".
func IsSecondary(batchNo string) bool {
	return strings.HasSuffix(batchNo, "-2") || strings.HasSuffix(batchNo, "B")
}
