package sdk

// Review statuses, in workflow order.
const (
	StatusDetected  = "detected"
	StatusReviewing = "reviewing"
	StatusVerified  = "verified"
	StatusApproved  = "approved"
)

// Totals are the detection counts summed over every roof plan.
type Totals struct {
	Sheets       int `json:"sheets"`
	Drains       int `json:"drains"`
	Scuppers     int `json:"scuppers"`
	RTUs         int `json:"rtus"`
	Penetrations int `json:"penetrations"`
}

// Summary is the drafty_summary result.
type Summary struct {
	Files           int            `json:"files"`
	Sheets          int            `json:"sheets"`
	Elements        int            `json:"elements"`
	AveragePerSheet float64        `json:"average_per_sheet"`
	Totals          Totals         `json:"totals"`
	Statuses        map[string]int `json:"statuses"`
	Approved        int            `json:"approved"`
}

// Progress returns the approved share of sheets as a percentage.
func (s Summary) Progress() float64 {
	if s.Sheets == 0 {
		return 0
	}
	return float64(s.Approved) / float64(s.Sheets) * 100
}

// Sheet is one entry of the drafty_sheets result. Counts holds the
// displayed count per category, "-" when nothing was detected.
type Sheet struct {
	ID     string            `json:"id"`
	File   string            `json:"file"`
	Detail string            `json:"detail"`
	Type   string            `json:"type"`
	Scale  string            `json:"scale"`
	Status string            `json:"status"`
	Counts map[string]string `json:"counts"`
}

// SheetsRequest filters Sheets. Empty fields match everything.
type SheetsRequest struct {
	Query  string
	Status string
}

// SchemaInfo is the drafty://schema resource.
type SchemaInfo struct {
	SchemaVersion string            `json:"schema_version"`
	ServerVersion string            `json:"server_version"`
	Tools         []string          `json:"tools"`
	Deprecated    []DeprecatedField `json:"deprecated"`
}

// DeprecatedField records a deprecated tool or field.
type DeprecatedField struct {
	Tool      string `json:"tool"`
	Field     string `json:"field"`
	Since     string `json:"since"`
	RemovedIn string `json:"removed_in"`
	Migration string `json:"migration"`
}
