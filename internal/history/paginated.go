package history

import "github.com/bryanwahyu/ai-detector/internal/domain/detection"

// DefaultPageSize is used when a caller asks for a non-positive page size.
const DefaultPageSize = 20

// PaginatedResult represents a paginated response with data and metadata
type PaginatedResult struct {
	Data       []detection.ScanRecord `json:"data"`
	Page       int                    `json:"page"`
	PageSize   int                    `json:"pageSize"`
	Total      int                    `json:"totalItems"`
	TotalPages int                    `json:"totalPages"`
}

// Paginate slices records (newest first) into 1-based pages. A page past the
// end yields empty Data with the totals still filled in.
func Paginate(records []detection.ScanRecord, page, pageSize int) PaginatedResult {
	if page < 1 {
		page = 1
	}
	if pageSize <= 0 {
		pageSize = DefaultPageSize
	}
	total := len(records)
	res := PaginatedResult{
		Data:       []detection.ScanRecord{},
		Page:       page,
		PageSize:   pageSize,
		Total:      total,
		TotalPages: (total + pageSize - 1) / pageSize,
	}
	start := (page - 1) * pageSize
	if start >= total {
		return res
	}
	end := min(start+pageSize, total)
	res.Data = records[start:end]
	return res
}
