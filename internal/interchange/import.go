package interchange

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"expensebook/internal/core"
)

// Mode says how imported records combine with the existing set.
type Mode string

const (
	// ModeReplace discards the existing records.
	ModeReplace Mode = "replace"
	// ModeAppend keeps the existing records and renumbers the incoming ones.
	ModeAppend Mode = "append"
)

// ParseMode resolves an import mode name.
func ParseMode(s string) (Mode, error) {
	switch Mode(strings.ToLower(strings.TrimSpace(s))) {
	case ModeReplace:
		return ModeReplace, nil
	case ModeAppend:
		return ModeAppend, nil
	default:
		return "", fmt.Errorf("%w: %q", core.ErrInvalidMode, s)
	}
}

// Plan describes a pending import so the caller can confirm it.
type Plan struct {
	Incoming int
	// Source is the profile name recorded in the document, if any.
	Source   string
	Target   core.Profile
	Existing int
}

// Validate parses an imported payload. The payload must carry an expenses
// sequence whose entries decode as records with a positive amount and a
// date; anything else is core.ErrInvalidFormat.
func Validate(payload []byte, f Format) (Document, error) {
	var (
		doc Document
		err error
	)
	switch f {
	case FormatJSON:
		doc, err = decodeJSON(payload)
	case FormatYAML:
		doc, err = decodeYAML(payload)
	default:
		return Document{}, fmt.Errorf("%w: %s cannot be imported", core.ErrInvalidFormat, f)
	}
	if err != nil {
		return Document{}, err
	}
	for i := range doc.Expenses {
		r := &doc.Expenses[i]
		if err := r.Amount.Validate(); err != nil {
			return Document{}, fmt.Errorf("%w: record %d: %v", core.ErrInvalidFormat, i+1, err)
		}
		if r.Date.IsZero() {
			return Document{}, fmt.Errorf("%w: record %d: %v", core.ErrInvalidFormat, i+1, core.ErrMissingDate)
		}
		if r.Timestamp == 0 {
			r.Timestamp = r.Date.UnixMilli()
		}
	}
	return doc, nil
}

func decodeJSON(payload []byte) (Document, error) {
	var head struct {
		Expenses json.RawMessage `json:"expenses"`
	}
	if err := json.Unmarshal(payload, &head); err != nil {
		return Document{}, fmt.Errorf("%w: %v", core.ErrInvalidFormat, err)
	}
	raw := bytes.TrimSpace(head.Expenses)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return Document{}, fmt.Errorf("%w: missing expenses", core.ErrInvalidFormat)
	}
	if raw[0] != '[' {
		return Document{}, fmt.Errorf("%w: expenses is not a list", core.ErrInvalidFormat)
	}
	var doc Document
	if err := json.Unmarshal(payload, &doc); err != nil {
		return Document{}, fmt.Errorf("%w: %v", core.ErrInvalidFormat, err)
	}
	if doc.Expenses == nil {
		doc.Expenses = []core.Record{}
	}
	return doc, nil
}

func decodeYAML(payload []byte) (Document, error) {
	var in documentYAML
	if err := yaml.Unmarshal(payload, &in); err != nil {
		return Document{}, fmt.Errorf("%w: %v", core.ErrInvalidFormat, err)
	}
	if in.Expenses == nil {
		return Document{}, fmt.Errorf("%w: missing expenses", core.ErrInvalidFormat)
	}
	doc := Document{
		Version:      in.Version,
		TotalRecords: in.TotalRecords,
		User:         Owner(in.User),
		Expenses:     make([]core.Record, 0, len(*in.Expenses)),
	}
	if in.ExportTime != "" {
		t, err := time.Parse(time.RFC3339Nano, in.ExportTime)
		if err != nil {
			return Document{}, fmt.Errorf("%w: exportTime: %v", core.ErrInvalidFormat, err)
		}
		doc.ExportTime = t
	}
	for i, row := range *in.Expenses {
		r, err := row.record()
		if err != nil {
			return Document{}, fmt.Errorf("%w: record %d: %v", core.ErrInvalidFormat, i+1, err)
		}
		doc.Expenses = append(doc.Expenses, r)
	}
	return doc, nil
}

func (row recordYAML) record() (core.Record, error) {
	amount, err := core.ParseMoney(row.Amount)
	if err != nil {
		return core.Record{}, err
	}
	date, err := core.ParseDate(row.Date)
	if err != nil {
		return core.Record{}, err
	}
	r := core.Record{
		ID:        row.ID,
		Amount:    amount,
		Category:  core.Category(row.Category),
		Note:      row.Note,
		Date:      date,
		Timestamp: row.Timestamp,
	}
	if row.CreatedAt != "" {
		if r.CreatedAt, err = time.Parse(time.RFC3339Nano, row.CreatedAt); err != nil {
			return core.Record{}, fmt.Errorf("createdAt: %w", err)
		}
	}
	return r, nil
}

// Merge combines existing and incoming records. Replace yields incoming;
// append renumbers incoming records from max(0, largest existing id) + 1 in
// order and appends them.
func Merge(existing, incoming []core.Record, mode Mode) ([]core.Record, error) {
	switch mode {
	case ModeReplace:
		return append([]core.Record{}, incoming...), nil
	case ModeAppend:
		base := core.MaxRecordID(existing)
		out := make([]core.Record, 0, len(existing)+len(incoming))
		out = append(out, existing...)
		for i, r := range incoming {
			r.ID = base + 1 + int64(i)
			out = append(out, r)
		}
		return out, nil
	default:
		return nil, fmt.Errorf("%w: %q", core.ErrInvalidMode, mode)
	}
}

// PrepareImport describes importing doc into the active profile.
func PrepareImport(st core.State, doc Document) (Plan, error) {
	active, err := st.ActiveProfile()
	if err != nil {
		return Plan{}, err
	}
	return Plan{
		Incoming: len(doc.Expenses),
		Source:   doc.User.Name,
		Target:   active,
		Existing: len(st.Records),
	}, nil
}
