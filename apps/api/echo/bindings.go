package echoapi

import (
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/trezcool/adrap/core"
)

var orderingParam = "ordering"

type Ordering struct {
	Orderings []core.DBOrdering
}

// Bind reads `?ordering=name,-created_at`. Fields missing from allowed are ignored;
// the others are mapped to their column name.
func (ord *Ordering) Bind(ctx echo.Context, allowed map[string]string) {
	val := ctx.QueryParam(orderingParam)
	if val == "" {
		return
	}

	for _, field := range strings.Split(val, ",") {
		field = strings.TrimSpace(field)
		descending := strings.HasPrefix(field, "-")
		if descending {
			field = field[1:] // drop "-"
		}
		column, ok := allowed[field]
		if !ok {
			continue
		}
		ord.Orderings = append(ord.Orderings, core.DBOrdering{Field: column, Ascending: !descending})
	}
}

type SuccessResponse struct {
	Success string `json:"success"`
}
