package echoapi

import (
	"net/http"
	"sort"
	"strconv"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/shule/core"
	"github.com/trezcool/shule/core/attendance"
	"github.com/trezcool/shule/core/session"
)

type sessionApi struct {
	svc        *session.Service
	attendance *attendance.Service
	validate   *validator.Validate
}

func registerSessionAPI(g *echo.Group, jwt echo.MiddlewareFunc, svc *session.Service, attendanceSvc *attendance.Service, validate *validator.Validate) {
	api := sessionApi{svc: svc, attendance: attendanceSvc, validate: validate}

	sg := g.Group("/sessions", jwt)
	sg.POST("", api.create, staffMiddleware())
	sg.GET("", api.query)
	sg.GET("/occurrences", api.occurrences)

	dg := sg.Group("/:id")
	dg.GET("", api.retrieve)
	dg.PUT("", api.update, staffMiddleware())
	dg.DELETE("", api.destroy, adminMiddleware())

	g.GET("/calendar/:year/:month", api.monthGrid, jwt)
}

// Handlers

func (api *sessionApi) create(ctx echo.Context) error {
	var data session.NewSession
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewSession")
	}

	def, err := api.svc.Create(ctx.Request().Context(), data)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusCreated, def)
}

func (api *sessionApi) query(ctx echo.Context) error {
	filter := new(session.QueryFilter)
	if err := ctx.Bind(filter); err != nil {
		return ctx.JSON(http.StatusOK, []session.Definition{})
	}
	filter.Search = core.CleanString(filter.Search)
	ordering := new(Ordering)
	ordering.Bind(ctx)

	defs, err := api.svc.Query(ctx.Request().Context(), *filter)
	if err != nil {
		return errors.Wrap(err, "querying sessions")
	}
	if defs == nil {
		defs = []session.Definition{}
	}
	applyOrdering(defs, ordering.Orderings)
	return ctx.JSON(http.StatusOK, defs)
}

func (api *sessionApi) retrieve(ctx echo.Context) error {
	def, err := api.svc.GetByID(ctx.Request().Context(), ctx.Param("id"))
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, def)
}

func (api *sessionApi) update(ctx echo.Context) error {
	var data session.UpdateSession
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to UpdateSession")
	}

	def, err := api.svc.Update(ctx.Request().Context(), ctx.Param("id"), data)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, def)
}

func (api *sessionApi) destroy(ctx echo.Context) error {
	deactivated, err := api.svc.Delete(ctx.Request().Context(), ctx.Param("id"))
	if err != nil {
		return err
	}
	if deactivated {
		return ctx.JSON(http.StatusOK, echo.Map{"deactivated": true})
	}
	return ctx.NoContent(http.StatusNoContent)
}

// occurrenceResponse is an expanded occurrence overlaid with its persisted
// attendance state, when any exists.
type occurrenceResponse struct {
	session.Occurrence
	Attendance *attendance.Session `json:"attendance,omitempty"`
}

func (api *sessionApi) occurrences(ctx echo.Context) error {
	from, err := bindDateParam(ctx, "from")
	if err != nil {
		return err
	}
	to, err := bindDateParam(ctx, "to")
	if err != nil {
		return err
	}
	reqCtx := ctx.Request().Context()

	occurrences, err := api.svc.Occurrences(reqCtx, from, to)
	if err != nil {
		return errors.Wrap(err, "expanding occurrences")
	}
	recorded, err := api.attendance.Occurrences(reqCtx, from, to)
	if err != nil {
		return errors.Wrap(err, "querying recorded occurrences")
	}

	byKey := make(map[string]attendance.Session, len(recorded))
	for _, occ := range recorded {
		byKey[occ.SessionID+"|"+core.FormatDate(occ.Date)] = occ
	}
	resp := make([]occurrenceResponse, len(occurrences))
	for i, occ := range occurrences {
		resp[i] = occurrenceResponse{Occurrence: occ}
		if rec, ok := byKey[occ.SessionID+"|"+core.FormatDate(occ.Date)]; ok {
			resp[i].Attendance = &rec
		}
	}
	return ctx.JSON(http.StatusOK, resp)
}

func (api *sessionApi) monthGrid(ctx echo.Context) error {
	year, err := strconv.Atoi(ctx.Param("year"))
	if err != nil {
		return core.NewValidationError(err, core.FieldError{Field: "year", Error: "must be a number"})
	}
	month, err := strconv.Atoi(ctx.Param("month"))
	if err != nil || month < 1 || month > 12 {
		return core.NewValidationError(err, core.FieldError{Field: "month", Error: "must be a number between 1 and 12"})
	}

	cells, err := api.svc.MonthGrid(ctx.Request().Context(), year, time.Month(month))
	if err != nil {
		return errors.Wrap(err, "building month grid")
	}
	return ctx.JSON(http.StatusOK, cells)
}

// applyOrdering sorts the query result in place on the requested fields;
// unknown fields are ignored, ties fall back to the repo order.
func applyOrdering(defs []session.Definition, orderings []core.DBOrdering) {
	if len(orderings) == 0 {
		return
	}
	sort.SliceStable(defs, func(i, j int) bool {
		for _, ord := range orderings {
			var less, more bool
			switch ord.Field {
			case "name":
				less, more = defs[i].Name < defs[j].Name, defs[i].Name > defs[j].Name
			case "category":
				less, more = defs[i].Category < defs[j].Category, defs[i].Category > defs[j].Category
			case "date":
				less, more = defs[i].AnchorDate.Before(defs[j].AnchorDate), defs[i].AnchorDate.After(defs[j].AnchorDate)
			case "created_at":
				less, more = defs[i].CreatedAt.Before(defs[j].CreatedAt), defs[i].CreatedAt.After(defs[j].CreatedAt)
			}
			if less || more {
				if ord.Ascending {
					return less
				}
				return more
			}
		}
		return false
	})
}
