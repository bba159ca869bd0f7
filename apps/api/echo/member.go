package echoapi

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/shule/core/member"
)

type memberApi struct {
	svc *member.Service
}

func registerMemberAPI(g *echo.Group, jwt echo.MiddlewareFunc, svc *member.Service) {
	api := memberApi{svc: svc}

	mg := g.Group("/members", jwt)
	mg.GET("", api.query)
	mg.GET("/:id", api.retrieve)

	g.GET("/levels", api.queryLevels, jwt)
}

// Handlers

func (api *memberApi) query(ctx echo.Context) error {
	members, err := api.svc.QueryActive(ctx.Request().Context())
	if err != nil {
		return errors.Wrap(err, "querying members")
	}
	if members == nil {
		members = []member.Member{}
	}
	return ctx.JSON(http.StatusOK, members)
}

func (api *memberApi) retrieve(ctx echo.Context) error {
	mbr, err := api.svc.GetByID(ctx.Request().Context(), ctx.Param("id"))
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, mbr)
}

func (api *memberApi) queryLevels(ctx echo.Context) error {
	levels, err := api.svc.QueryLevels(ctx.Request().Context())
	if err != nil {
		return errors.Wrap(err, "querying levels")
	}
	if levels == nil {
		levels = []member.Level{}
	}
	return ctx.JSON(http.StatusOK, levels)
}
