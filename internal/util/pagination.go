package util

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/Skotchmaster/storefront/internal/apperr"
)

const (
	DefaultPageSize = 10
	MaxPageSize     = 100
	// MaxResultWindow matches Elasticsearch's default index.max_result_window.
	MaxResultWindow = 10000
)

// Page is a normalized 1-based page request.
type Page struct {
	Number int `json:"page"`
	Size   int `json:"size"`
}

// ParsePage reads raw query values. Anything unparsable, non-positive or
// above MaxPageSize falls back to the defaults. A page reaching past
// MaxResultWindow is a validation error.
func ParsePage(rawPage, rawSize string) (Page, error) {
	p := Page{Number: atoiOr(rawPage, 1), Size: atoiOr(rawSize, DefaultPageSize)}
	if p.Number < 1 {
		p.Number = 1
	}
	if p.Size < 1 || p.Size > MaxPageSize {
		p.Size = DefaultPageSize
	}
	if p.Number > MaxResultWindow/p.Size {
		return Page{}, apperr.Validation(fmt.Sprintf("page must be at most %d for size %d", MaxResultWindow/p.Size, p.Size))
	}
	return p, nil
}

func (p Page) Offset() int { return (p.Number - 1) * p.Size }

func atoiOr(s string, def int) int {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		return def
	}
	return n
}
