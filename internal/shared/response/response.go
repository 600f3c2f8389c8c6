package response

import (
	"github.com/gin-gonic/gin"
)

type PaginationMeta struct {
	Total      int64 `json:"total,omitempty"`
	TotalPages int   `json:"totalPages,omitempty"`
	Page       int   `json:"page,omitempty"`
	PageSize   int   `json:"pageSize,omitempty"`
}

func NewPaginationMeta(total int64, page, limit int) PaginationMeta {
	totalPages := 0
	if limit > 0 {
		totalPages = int((total + int64(limit) - 1) / int64(limit))
	}

	return PaginationMeta{
		Total:      total,
		TotalPages: totalPages,
		Page:       page,
		PageSize:   limit,
	}
}

const MaxPageSize = 100

// Paginate slices an already loaded list and returns the page with its meta.
// pageSize is capped at MaxPageSize; pages past the end are empty.
func Paginate[T any](items []T, page, pageSize int) ([]T, PaginationMeta) {
	if page < 1 {
		page = 1
	}
	if pageSize < 1 {
		pageSize = 10
	}
	if pageSize > MaxPageSize {
		pageSize = MaxPageSize
	}
	meta := NewPaginationMeta(int64(len(items)), page, pageSize)

	// checked before multiplying so a huge page cannot overflow
	if page-1 > len(items)/pageSize {
		return items[len(items):], meta
	}
	start := (page - 1) * pageSize
	end := min(start+pageSize, len(items))
	start = min(start, len(items))
	return items[start:end], meta
}

type ApiEnvelope struct {
	Ok       bool            `json:"ok"`
	Data     any             `json:"data,omitempty"`
	Meta     *PaginationMeta `json:"meta,omitempty"`
	Warnings []string        `json:"warnings,omitempty"`
	Error    any             `json:"error,omitempty"`
}

func Success(c *gin.Context, status int, data interface{}, meta *PaginationMeta) {
	c.JSON(status, ApiEnvelope{
		Ok:    true,
		Data:  data,
		Meta:  meta,
		Error: nil,
	})
}

// SuccessWithWarnings is used when the operation committed but the caller
// should be told about an advisory condition.
func SuccessWithWarnings(c *gin.Context, status int, data interface{}, warnings []string) {
	c.JSON(status, ApiEnvelope{
		Ok:       true,
		Data:     data,
		Warnings: warnings,
	})
}

func Error(c *gin.Context, status int, errorCode string, message string, details interface{}) {
	c.JSON(status, ApiEnvelope{
		Ok:   false,
		Data: nil,
		Meta: nil,
		Error: map[string]interface{}{
			"code":    errorCode,
			"message": message,
			"details": details,
		},
	})
}
