package httpapi

import (
	"github.com/xniw/pricelist"
	"github.com/xniw/pricelist/analyzer"
)

// ImportResponse is the JSON body describing one analyzed file.
type ImportResponse struct {
	ID                 string                `json:"id"`
	Source             string                `json:"source"`
	Format             string                `json:"format"`
	Sheet              string                `json:"sheet,omitempty"`
	Metadata           map[string]string     `json:"metadata,omitempty"`
	HasHeader          bool                  `json:"hasHeader"`
	DataStart          int                   `json:"dataStart"`
	Header             []string              `json:"header"`
	OriginalHeader     []string              `json:"originalHeader"`
	Roles              map[analyzer.Role]int `json:"roles"`
	InsertedRoles      []analyzer.Role       `json:"insertedRoles"`
	SummaryRowsDropped int                   `json:"summaryRowsDropped"`
	Rows               [][]string            `json:"rows,omitempty"`
	Metrics            analyzer.Metrics      `json:"metrics"`
}

// NewImportResponse builds the response for imp under a fresh ID.
func NewImportResponse(imp *pricelist.Import) ImportResponse {
	inserted := imp.InsertedRoles
	if inserted == nil {
		inserted = []analyzer.Role{}
	}
	return ImportResponse{
		ID:                 newID(),
		Source:             imp.Source,
		Format:             imp.Format.String(),
		Sheet:              imp.Sheet,
		Metadata:           imp.Metadata,
		HasHeader:          imp.HasHeader,
		DataStart:          imp.DataStart,
		Header:             imp.Table.Header,
		OriginalHeader:     imp.Table.OriginalHeader,
		Roles:              imp.Table.Roles.Map(),
		InsertedRoles:      inserted,
		SummaryRowsDropped: imp.SummaryRowsDropped,
		Rows:               imp.Table.Rows,
		Metrics:            imp.Metrics,
	}
}

// SourceResponse summarizes one merged file.
type SourceResponse struct {
	pricelist.SourceSummary
	Format string `json:"format"`
}

// MergeResponse is the JSON body describing a merge.
type MergeResponse struct {
	ID             string                `json:"id"`
	Header         []string              `json:"header"`
	OriginalHeader []string              `json:"originalHeader"`
	Roles          map[analyzer.Role]int `json:"roles"`
	Rows           [][]string            `json:"rows,omitempty"`
	Sources        []SourceResponse      `json:"sources"`
	Metrics        analyzer.Metrics      `json:"metrics"`
}

// NewMergeResponse builds the response for res under a fresh ID.
func NewMergeResponse(res *pricelist.MergeResult) MergeResponse {
	sources := make([]SourceResponse, len(res.Sources))
	for i, src := range res.Sources {
		sources[i] = SourceResponse{SourceSummary: src, Format: src.Format.String()}
	}
	return MergeResponse{
		ID:             newID(),
		Header:         res.Header,
		OriginalHeader: res.OriginalHeader,
		Roles:          res.Table().Roles.Map(),
		Rows:           res.Rows,
		Sources:        sources,
		Metrics:        res.Metrics(),
	}
}
