package scaling

import "context"

// TableRecord is a built table as persisted: identity and provenance around
// the immutable table itself.
type TableRecord struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Subject   string `json:"subject"`
	CreatedAt int64  `json:"created_at"`
	Table     *Table `json:"table"`
}

// TableSummary is the listing view of a record, without the rows.
type TableSummary struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Subject   string `json:"subject"`
	CreatedAt int64  `json:"created_at"`
	MinRaw    int    `json:"min_raw"`
	MaxRaw    int    `json:"max_raw"`
	Examinees int    `json:"examinees"`
}

type ListOpts struct {
	Q      string // substring match on name/subject
	Limit  int
	Offset int
}

type Store interface {
	PutTable(ctx context.Context, rec TableRecord) error
	GetTable(ctx context.Context, id string) (TableRecord, error)
	ListTables(ctx context.Context, opts ListOpts) ([]TableSummary, error)
	DeleteTable(ctx context.Context, id string) error
}
