package journal

import (
	"net/url"

	"github.com/JaimeStill/binsort/internal/bins"
	"github.com/JaimeStill/binsort/pkg/query"
	"github.com/JaimeStill/binsort/pkg/repository"
)

var outcomeProjection = query.
	NewProjectionMap("outcomes", "o").
	Project("id", "ID").
	Project("filename", "Filename").
	Project("status", "Status").
	Project("target_bin", "TargetBin").
	Project("category", "Category").
	Project("label", "Label").
	Project("bin", "Bin").
	Project("correct_bin", "CorrectBin").
	Project("confidence", "Confidence").
	Project("message", "Message").
	Project("stored_name", "StoredName").
	Project("recorded_at", "RecordedAt")

var outcomeDefaultSort = query.SortField{Field: "RecordedAt", Descending: true}

var alertProjection = query.
	NewProjectionMap("alerts", "a").
	Project("id", "ID").
	Project("bin", "Bin").
	Project("count", "Count").
	Project("capacity", "Capacity").
	Project("raised_at", "RaisedAt")

var alertDefaultSort = query.SortField{Field: "RaisedAt", Descending: true}

// OutcomeFilters narrows outcome listings. Nil fields are ignored.
type OutcomeFilters struct {
	Bin      *string `json:"bin,omitempty"`
	Status   *string `json:"status,omitempty"`
	Filename *string `json:"filename,omitempty"`
}

// Apply adds filter conditions to a query builder.
func (f OutcomeFilters) Apply(b *query.Builder) *query.Builder {
	return b.
		WhereEquals("TargetBin", f.Bin).
		WhereEquals("Status", f.Status).
		WhereContains("Filename", f.Filename)
}

// OutcomeFiltersFromQuery extracts filter values from URL query parameters.
// Bin names are canonicalized so "red" matches rows stored as "Red".
func OutcomeFiltersFromQuery(values url.Values) OutcomeFilters {
	var f OutcomeFilters
	f.Bin = binParam(values)
	if s := values.Get("status"); s != "" {
		f.Status = &s
	}
	if fn := values.Get("filename"); fn != "" {
		f.Filename = &fn
	}
	return f
}

// AlertFilters narrows alert listings. Nil fields are ignored.
type AlertFilters struct {
	Bin *string `json:"bin,omitempty"`
}

// Apply adds filter conditions to a query builder.
func (f AlertFilters) Apply(b *query.Builder) *query.Builder {
	return b.WhereEquals("Bin", f.Bin)
}

// AlertFiltersFromQuery extracts filter values from URL query parameters.
func AlertFiltersFromQuery(values url.Values) AlertFilters {
	return AlertFilters{Bin: binParam(values)}
}

func binParam(values url.Values) *string {
	raw := values.Get("bin")
	if raw == "" {
		return nil
	}
	if id, err := bins.Parse(raw); err == nil {
		s := string(id)
		return &s
	}
	return &raw
}

func scanOutcome(s repository.Scanner) (OutcomeEntry, error) {
	var e OutcomeEntry
	err := s.Scan(
		&e.ID,
		&e.Filename,
		&e.Status,
		&e.TargetBin,
		&e.Category,
		&e.Label,
		&e.Bin,
		&e.CorrectBin,
		&e.Confidence,
		&e.Message,
		&e.StoredName,
		&e.RecordedAt,
	)
	return e, err
}

func scanAlert(s repository.Scanner) (AlertEntry, error) {
	var e AlertEntry
	err := s.Scan(
		&e.ID,
		&e.Bin,
		&e.Count,
		&e.Capacity,
		&e.RaisedAt,
	)
	return e, err
}
