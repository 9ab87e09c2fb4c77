// Package api contains the HTTP request contracts of the data API.
package api

// DataQueryRequest is the filter shared by every data view.
// Keywords is comma separated; an empty value selects every keyword.
type DataQueryRequest struct {
	Keywords []string `json:"keywords,omitempty" query:"keywords" validate:"omitempty,dive,keyword,max=100"`
	Start    string   `json:"start,omitempty" query:"start" validate:"omitempty,datetime=2006-01-02"`
	End      string   `json:"end,omitempty" query:"end" validate:"omitempty,datetime=2006-01-02"`
	Raw      bool     `json:"raw,omitempty" query:"raw"`
}

// TableRequest selects one category table.
type TableRequest struct {
	DataQueryRequest
	Category string `json:"category" param:"category"`
}

// ExportRequest selects a category table and an output format.
type ExportRequest struct {
	TableRequest
	Format string `json:"format" query:"format" validate:"omitempty,oneof=csv xlsx"`
}
