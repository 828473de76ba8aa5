// Package services implements the profile and record stores. Every
// operation takes the current core.State and returns the next one; on error
// the caller keeps the State it passed in and storage is left untouched.
package services

import (
	"time"

	"expensebook/internal/core"
)

// Impact describes what a confirmed destructive operation would do. It is
// returned by the Prepare* calls so the caller can ask for confirmation.
type Impact struct {
	ProfileID   string
	ProfileName string
	// Records is the number of records removed or imported.
	Records int
	Total   core.Money
	// Record is set when a single record is targeted.
	Record *core.Record
}

// Empty reports whether the operation would change nothing.
func (i Impact) Empty() bool { return i.Records == 0 }

func sumRecords(records []core.Record) core.Money {
	total := core.Zero
	for _, r := range records {
		total = total.Add(r.Amount)
	}
	return total
}

type clock func() time.Time

func (c clock) now() time.Time {
	if c == nil {
		return time.Now()
	}
	return c()
}
