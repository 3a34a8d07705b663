// Package pagination разбирает параметры page/limit и нарезает отсортированные наборы.
package pagination

import (
	"errors"
	"fmt"
	"math"
	"net/url"
	"strconv"
	"strings"
)

const (
	// DefaultLimit используется, когда клиент не передал limit.
	DefaultLimit = 12
	// MaxLimit ограничивает размер страницы сверху.
	MaxLimit = 100
	// MaxPage ограничивает номер страницы так, чтобы смещение помещалось в int.
	MaxPage = math.MaxInt / MaxLimit
)

var (
	ErrInvalidPage  = errors.New("pagination: invalid page")
	ErrInvalidLimit = errors.New("pagination: invalid limit")
)

// Page описывает запрошенную страницу: номер с единицы и размер.
type Page struct {
	Number int
	Limit  int
}

// Default возвращает первую страницу размера DefaultLimit.
func Default() Page {
	return Page{Number: 1, Limit: DefaultLimit}
}

// Parse читает page и limit из query-параметров.
func Parse(values url.Values) (Page, error) {
	page := Default()

	if raw := strings.TrimSpace(values.Get("page")); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil {
			return Page{}, fmt.Errorf("%w: must be an integer", ErrInvalidPage)
		}
		if n < 1 {
			return Page{}, fmt.Errorf("%w: must be greater than zero", ErrInvalidPage)
		}
		if n > MaxPage {
			return Page{}, fmt.Errorf("%w: must not exceed %d", ErrInvalidPage, MaxPage)
		}
		page.Number = n
	}

	if raw := strings.TrimSpace(values.Get("limit")); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil {
			return Page{}, fmt.Errorf("%w: must be an integer", ErrInvalidLimit)
		}
		if n < 1 {
			return Page{}, fmt.Errorf("%w: must be greater than zero", ErrInvalidLimit)
		}
		page.Limit = n
	}

	return page.Normalize(), nil
}

// Normalize подставляет значения по умолчанию и обрезает limit до MaxLimit, а номер до MaxPage.
func (p Page) Normalize() Page {
	if p.Number < 1 {
		p.Number = 1
	}
	if p.Number > MaxPage {
		p.Number = MaxPage
	}
	if p.Limit < 1 {
		p.Limit = DefaultLimit
	}
	if p.Limit > MaxLimit {
		p.Limit = MaxLimit
	}
	return p
}

// Offset возвращает число пропускаемых элементов.
func (p Page) Offset() int {
	p = p.Normalize()
	return (p.Number - 1) * p.Limit
}

// HasMore сообщает, есть ли элементы после этой страницы при общем количестве total.
func (p Page) HasMore(total int) bool {
	p = p.Normalize()
	return p.Offset()+p.Limit < total
}

// Slice возвращает элементы items, попадающие на страницу p.
func Slice[T any](items []T, p Page) []T {
	p = p.Normalize()

	start := p.Offset()
	if start >= len(items) {
		return []T{}
	}
	end := min(start+p.Limit, len(items))

	out := make([]T, end-start)
	copy(out, items[start:end])
	return out
}
