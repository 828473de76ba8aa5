package interchange

import (
	"encoding/json"
	"fmt"
	"io"
	"time"

	"gopkg.in/yaml.v3"

	"expensebook/internal/core"
)

// Version is written into every exported document.
const Version = "1.1.0"

// Owner identifies the profile a document was exported from.
type Owner struct {
	Name string `json:"name"`
	ID   string `json:"id"`
}

// Document is the backup interchange format.
type Document struct {
	Version      string        `json:"version"`
	ExportTime   time.Time     `json:"exportTime"`
	TotalRecords int           `json:"totalRecords"`
	User         Owner         `json:"user"`
	Expenses     []core.Record `json:"expenses"`
}

// ToInterchange builds the backup document of the active profile.
func ToInterchange(st core.State, now time.Time) (Document, error) {
	active, err := st.ActiveProfile()
	if err != nil {
		return Document{}, err
	}
	if len(st.Records) == 0 {
		return Document{}, core.ErrEmptyData
	}
	return Document{
		Version:      Version,
		ExportTime:   now.UTC(),
		TotalRecords: len(st.Records),
		User:         Owner{Name: active.Name, ID: active.ID},
		Expenses:     append([]core.Record(nil), st.Records...),
	}, nil
}

// Encoder writes a document in one format.
type Encoder interface {
	Encode(w io.Writer, doc Document) error
}

// EncoderFor returns the encoder of a document format.
func EncoderFor(f Format) (Encoder, error) {
	switch f {
	case FormatJSON:
		return JSONEncoder{}, nil
	case FormatYAML:
		return YAMLEncoder{}, nil
	default:
		return nil, fmt.Errorf("%w: %s is not a document format", core.ErrInvalidFormat, f)
	}
}

// Encode writes the document to w in format f.
func (d Document) Encode(w io.Writer, f Format) error {
	enc, err := EncoderFor(f)
	if err != nil {
		return err
	}
	return enc.Encode(w, d)
}

// JSONEncoder writes documents as indented JSON.
type JSONEncoder struct{}

func (JSONEncoder) Encode(w io.Writer, doc Document) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	return enc.Encode(doc)
}

// YAMLEncoder writes documents as YAML. Amounts are written as strings so
// no precision is lost.
type YAMLEncoder struct{}

func (YAMLEncoder) Encode(w io.Writer, doc Document) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(toYAML(doc)); err != nil {
		return err
	}
	return enc.Close()
}

type ownerYAML struct {
	Name string `yaml:"name"`
	ID   string `yaml:"id"`
}

type recordYAML struct {
	ID        int64  `yaml:"id"`
	Amount    string `yaml:"amount"`
	Category  string `yaml:"category"`
	Note      string `yaml:"note,omitempty"`
	Date      string `yaml:"date"`
	Timestamp int64  `yaml:"timestamp,omitempty"`
	CreatedAt string `yaml:"createdAt,omitempty"`
}

type documentYAML struct {
	Version      string        `yaml:"version"`
	ExportTime   string        `yaml:"exportTime"`
	TotalRecords int           `yaml:"totalRecords"`
	User         ownerYAML     `yaml:"user"`
	Expenses     *[]recordYAML `yaml:"expenses"`
}

func toYAML(doc Document) documentYAML {
	rows := make([]recordYAML, 0, len(doc.Expenses))
	for _, r := range doc.Expenses {
		row := recordYAML{
			ID:        r.ID,
			Amount:    r.Amount.String(),
			Category:  string(r.Category),
			Note:      r.Note,
			Date:      r.Date.String(),
			Timestamp: r.Timestamp,
		}
		if !r.CreatedAt.IsZero() {
			row.CreatedAt = r.CreatedAt.UTC().Format(time.RFC3339Nano)
		}
		rows = append(rows, row)
	}
	return documentYAML{
		Version:      doc.Version,
		ExportTime:   doc.ExportTime.UTC().Format(time.RFC3339Nano),
		TotalRecords: doc.TotalRecords,
		User:         ownerYAML(doc.User),
		Expenses:     &rows,
	}
}
