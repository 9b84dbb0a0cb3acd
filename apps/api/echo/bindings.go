package echoapi

import (
	"time"

	"github.com/labstack/echo/v4"

	"github.com/trezcool/masomo-records/core"
)

var dateParam = "date"

// DateFilter is the optional ?date= query filter.
type DateFilter struct {
	Date *time.Time
}

func (df *DateFilter) Bind(ctx echo.Context) error {
	val := core.CleanString(ctx.QueryParam(dateParam))
	if val == "" {
		return nil
	}
	date, err := core.ParseDate(val)
	if err != nil {
		return core.NewValidationError(nil, core.FieldError{Field: dateParam, Error: err.Error()})
	}
	df.Date = &date
	return nil
}

// MessageResponse is sent instead of a document when there is nothing else to say.
type MessageResponse struct {
	Message string `json:"message"`
}
