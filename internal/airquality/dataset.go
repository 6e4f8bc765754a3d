package airquality

import (
	"time"

	"github.com/google/uuid"
)

// DatasetInfo describes a loaded snapshot of the source table.
type DatasetInfo struct {
	ID       string    `json:"id"`
	Source   string    `json:"source"`
	LoadedAt time.Time `json:"loadedAt"`
	Rows     int       `json:"rows"`
	MinDate  Date      `json:"minDate"`
	MaxDate  Date      `json:"maxDate"`
	Stations []string  `json:"stations"`
}

// Dataset is an immutable loaded table together with its metadata.
type Dataset struct {
	DatasetInfo
	Table *Table `json:"-"`
}

// NewDataset wraps t as a new snapshot loaded from source.
func NewDataset(source string, t *Table) *Dataset {
	minDate, maxDate := t.DateBounds()
	return &Dataset{
		DatasetInfo: DatasetInfo{
			ID:       uuid.NewString(),
			Source:   source,
			LoadedAt: time.Now().UTC(),
			Rows:     t.Len(),
			MinDate:  minDate,
			MaxDate:  maxDate,
			Stations: t.Stations(),
		},
		Table: t,
	}
}
