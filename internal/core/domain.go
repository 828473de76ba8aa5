package core

import (
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/google/uuid"
)

// MaxProfileNameLength is the longest accepted profile name, in characters.
const MaxProfileNameLength = 10

const profileIDPrefix = "user_"

type (
	// Profile is a named local identity owning an isolated record set.
	Profile struct {
		ID        string    `json:"id"`
		Name      string    `json:"name"`
		CreatedAt time.Time `json:"createdAt"`
	}

	// Record is a single expense. Records are never mutated in place.
	Record struct {
		ID        int64     `json:"id"`
		Amount    Money     `json:"amount"`
		Category  Category  `json:"category"`
		Note      string    `json:"note"`
		Date      Date      `json:"date"`
		Timestamp int64     `json:"timestamp"` // date at 00:00 UTC, ms
		CreatedAt time.Time `json:"createdAt,omitzero"`
	}

	// RecordInput is raw user input for a new record.
	RecordInput struct {
		Amount   string
		Category string
		Note     string
		Date     string
	}

	// State is the whole application state. Operations take a State and
	// return the next one; a failed operation leaves the caller's State as
	// it was.
	State struct {
		Profiles []Profile
		Active   *Profile
		Records  []Record
	}
)

// NewProfile builds a profile with a fresh time-ordered id. Uniqueness of
// the name is checked against existing.
func NewProfile(name string, existing []Profile, now time.Time) (Profile, error) {
	name = strings.TrimSpace(name)
	if err := ValidateProfileName(name); err != nil {
		return Profile{}, err
	}
	for _, p := range existing {
		if p.Name == name {
			return Profile{}, ErrDuplicateName
		}
	}
	id, err := uuid.NewV7()
	if err != nil {
		return Profile{}, fmt.Errorf("generate profile id: %w", err)
	}
	return Profile{
		ID:        profileIDPrefix + id.String(),
		Name:      name,
		CreatedAt: now.UTC(),
	}, nil
}

// Validate checks the input and returns the parsed amount, category and date.
func (in RecordInput) Validate() (Money, Category, Date, error) {
	amount, err := ParseMoney(in.Amount)
	if err != nil {
		return Zero, "", Date{}, err
	}
	category := Other
	if strings.TrimSpace(in.Category) != "" {
		if category, err = ParseCategory(in.Category); err != nil {
			return Zero, "", Date{}, err
		}
	}
	date, err := ParseDate(in.Date)
	if err != nil {
		return Zero, "", Date{}, err
	}
	return amount, category, date, nil
}

// NewRecord validates in and builds a record whose id is time-derived and
// greater than every id in existing.
func NewRecord(in RecordInput, existing []Record, now time.Time) (Record, error) {
	amount, category, date, err := in.Validate()
	if err != nil {
		return Record{}, err
	}
	id := now.UnixMilli()
	if next := MaxRecordID(existing) + 1; next > id {
		id = next
	}
	return Record{
		ID:        id,
		Amount:    amount,
		Category:  category,
		Note:      strings.TrimSpace(in.Note),
		Date:      date,
		Timestamp: date.UnixMilli(),
		CreatedAt: now.UTC(),
	}, nil
}

// MaxRecordID returns the largest id in records, or 0.
func MaxRecordID(records []Record) int64 {
	var top int64
	for _, r := range records {
		if r.ID > top {
			top = r.ID
		}
	}
	return top
}

// FindProfile looks a profile up by id.
func (s State) FindProfile(id string) (Profile, bool) {
	i := slices.IndexFunc(s.Profiles, func(p Profile) bool { return p.ID == id })
	if i < 0 {
		return Profile{}, false
	}
	return s.Profiles[i], true
}

// ResolveProfile looks a profile up by id, then by exact name.
func (s State) ResolveProfile(ref string) (Profile, bool) {
	if p, ok := s.FindProfile(ref); ok {
		return p, true
	}
	i := slices.IndexFunc(s.Profiles, func(p Profile) bool { return p.Name == ref })
	if i < 0 {
		return Profile{}, false
	}
	return s.Profiles[i], true
}

// ActiveProfile returns the active profile or ErrNoActiveProfile.
func (s State) ActiveProfile() (Profile, error) {
	if s.Active == nil {
		return Profile{}, ErrNoActiveProfile
	}
	return *s.Active, nil
}

// FindRecord looks a record of the active set up by id.
func (s State) FindRecord(id int64) (Record, bool) {
	i := slices.IndexFunc(s.Records, func(r Record) bool { return r.ID == id })
	if i < 0 {
		return Record{}, false
	}
	return s.Records[i], true
}

// WithRecords returns a copy of s holding records as the active set.
func (s State) WithRecords(records []Record) State {
	s.Records = records
	return s
}
