package echoapi

import (
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/trezcool/shule/core"
)

var orderingParam = "ordering"

type Ordering struct {
	Orderings []core.DBOrdering
}

func (ord *Ordering) Bind(ctx echo.Context) {
	data := ctx.QueryParams()
	if len(data) == 0 {
		return
	}
	val, ok := data[orderingParam]
	if !ok || len(val) == 0 || val[0] == "" {
		return
	}

	for _, field := range strings.Split(val[0], ",") {
		field = strings.TrimSpace(field)
		descending := strings.HasPrefix(field, "-")
		if descending {
			field = field[1:] // drop "-"
		}
		ord.Orderings = append(ord.Orderings, core.DBOrdering{Field: field, Ascending: !descending})
	}
}

// bindDateParam parses a required "2006-01-02" query param.
func bindDateParam(ctx echo.Context, name string) (time.Time, error) {
	val := ctx.QueryParam(name)
	if val == "" {
		return time.Time{}, core.NewValidationError(nil, core.FieldError{Field: name, Error: "this field is required"})
	}
	date, err := core.ParseDate(val)
	if err != nil {
		return time.Time{}, core.NewValidationError(err, core.FieldError{Field: name, Error: err.Error()})
	}
	return date, nil
}

// bindOptionalDateParam parses a "2006-01-02" query param; zero time when absent.
func bindOptionalDateParam(ctx echo.Context, name string) (time.Time, error) {
	if ctx.QueryParam(name) == "" {
		return time.Time{}, nil
	}
	return bindDateParam(ctx, name)
}
