package echoapi

import (
	"context"
	"net/http"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/shule/core"
	"github.com/trezcool/shule/core/attendance"
)

type attendanceApi struct {
	svc      *attendance.Service
	validate *validator.Validate
}

func registerAttendanceAPI(g *echo.Group, jwt echo.MiddlewareFunc, svc *attendance.Service, validate *validator.Validate) {
	api := attendanceApi{svc: svc, validate: validate}

	ag := g.Group("/attendance", jwt)
	ag.GET("/roster", api.roster, staffMiddleware())
	ag.POST("", api.take, staffMiddleware())
	ag.GET("/stats", api.occurrenceStats)

	og := ag.Group("/occurrences", staffMiddleware())
	og.POST("/start", api.start)
	og.POST("/complete", api.complete)
	og.POST("/cancel", api.cancel)

	g.GET("/members/:id/stats", api.memberStats, jwt)
}

// Handlers

func (api *attendanceApi) roster(ctx echo.Context) error {
	sessionID, date, err := bindOccurrenceParams(ctx)
	if err != nil {
		return err
	}

	roster, err := api.svc.Roster(ctx.Request().Context(), sessionID, date)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, roster)
}

func (api *attendanceApi) take(ctx echo.Context) error {
	var data attendance.BulkAttendance
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to BulkAttendance")
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}

	takenBy, err := contextOperator(ctx)
	if err != nil {
		return err
	}

	res, err := api.svc.Take(ctx.Request().Context(), data, takenBy)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, res)
}

func (api *attendanceApi) occurrenceStats(ctx echo.Context) error {
	sessionID, date, err := bindOccurrenceParams(ctx)
	if err != nil {
		return err
	}

	stats, err := api.svc.OccurrenceStats(ctx.Request().Context(), sessionID, date)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, stats)
}

func (api *attendanceApi) memberStats(ctx echo.Context) error {
	from, err := bindOptionalDateParam(ctx, "from")
	if err != nil {
		return err
	}
	to, err := bindOptionalDateParam(ctx, "to")
	if err != nil {
		return err
	}

	stats, err := api.svc.MemberStats(ctx.Request().Context(), ctx.Param("id"), from, to)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, stats)
}

func (api *attendanceApi) start(ctx echo.Context) error {
	return api.transition(ctx, api.svc.Start)
}

func (api *attendanceApi) complete(ctx echo.Context) error {
	return api.transition(ctx, api.svc.Complete)
}

func (api *attendanceApi) cancel(ctx echo.Context) error {
	return api.transition(ctx, api.svc.Cancel)
}

func (api *attendanceApi) transition(ctx echo.Context, op transitionFunc) error {
	var data OccurrenceRequest
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to OccurrenceRequest")
	}
	if err := api.validate.Struct(&data); err != nil {
		return err
	}
	date, _ := core.ParseDate(data.Date)

	by, err := contextOperator(ctx)
	if err != nil {
		return err
	}

	occ, err := op(ctx.Request().Context(), data.SessionID, date, by)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, occ)
}

func bindOccurrenceParams(ctx echo.Context) (sessionID string, date time.Time, err error) {
	sessionID = ctx.QueryParam("session_id")
	if sessionID == "" {
		return "", time.Time{}, core.NewValidationError(nil,
			core.FieldError{Field: "session_id", Error: "this field is required"})
	}
	date, err = bindDateParam(ctx, "date")
	return sessionID, date, err
}

type (
	transitionFunc func(ctx context.Context, sessionID string, date time.Time, by string) (attendance.Session, error)

	// OccurrenceRequest identifies one occurrence for a lifecycle operation.
	OccurrenceRequest struct {
		SessionID string `json:"session_id" validate:"required"`
		Date      string `json:"date" validate:"required,date"`
	}
)
