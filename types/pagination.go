package types

import (
	"strconv"

	"github.com/gin-gonic/gin"
)

// AllowedPageSizes defines allowed page sizes
var AllowedPageSizes = []int{10, 20, 50, 100}

// PaginatedResponse contains data with pagination metadata
type PaginatedResponse struct {
	Data       any `json:"data"`
	Pagination struct {
		Page       int `json:"page"`
		PageSize   int `json:"pageSize"`
		Total      int `json:"total"`
		TotalPages int `json:"totalPages"`
	} `json:"pagination"`
}

// PaginationHelper provides utilities for working with pagination
type PaginationHelper struct {
	Page     int
	PageSize int
	Offset   int
}

// NewPaginationHelper clamps page and pageSize to valid values. A size that
// is not in AllowedPageSizes snaps to the nearest smaller allowed size.
func NewPaginationHelper(page, pageSize int) *PaginationHelper {
	if page < 1 {
		page = 1
	}
	if pageSize == 0 {
		pageSize = 20
	}

	validSize := false
	for _, size := range AllowedPageSizes {
		if pageSize == size {
			validSize = true
			break
		}
	}
	if !validSize {
		snapped := 0
		for i := len(AllowedPageSizes) - 1; i >= 0; i-- {
			if AllowedPageSizes[i] <= pageSize {
				snapped = AllowedPageSizes[i]
				break
			}
		}
		if snapped == 0 {
			snapped = AllowedPageSizes[0]
		}
		pageSize = snapped
	}

	return &PaginationHelper{
		Page:     page,
		PageSize: pageSize,
		Offset:   (page - 1) * pageSize,
	}
}

// BuildResponse creates a standardized response with pagination
func (p *PaginationHelper) BuildResponse(data any, total int) PaginatedResponse {
	totalPages := (total + p.PageSize - 1) / p.PageSize

	return PaginatedResponse{
		Data: data,
		Pagination: struct {
			Page       int `json:"page"`
			PageSize   int `json:"pageSize"`
			Total      int `json:"total"`
			TotalPages int `json:"totalPages"`
		}{
			Page:       p.Page,
			PageSize:   p.PageSize,
			Total:      total,
			TotalPages: totalPages,
		},
	}
}

// ParsePaginationParams extracts pagination parameters from gin.Context
func ParsePaginationParams(c *gin.Context) *PaginationHelper {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("pageSize", "20"))

	return NewPaginationHelper(page, pageSize)
}
