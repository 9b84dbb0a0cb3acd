package echoapi

import (
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/masomo-records/core/subject"
)

const (
	msgNoSubjects = "No subjects found"
	msgNoSubject  = "No subject found"
)

type subjectApi struct {
	svc      subject.Service
	validate *validator.Validate
}

func registerSubjectAPI(g *echo.Group, svc subject.Service, validate *validator.Validate) {
	api := subjectApi{svc: svc, validate: validate}

	g.POST("/schools/:schoolId/classes/:classId/subjects", api.create)
	g.GET("/schools/:schoolId/subjects", api.queryBySchool)
	g.DELETE("/schools/:schoolId/subjects", api.destroyBySchool)

	g.GET("/classes/:classId/subjects", api.queryByClass)
	g.GET("/classes/:classId/subjects/unassigned", api.queryUnassigned)
	g.DELETE("/classes/:classId/subjects", api.destroyByClass)

	g.GET("/subjects/:id", api.retrieve)
	g.DELETE("/subjects/:id", api.destroy)
}

// Handlers

func (api *subjectApi) create(ctx echo.Context) error {
	var data subject.NewSubjects
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewSubjects")
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}

	subjects, err := api.svc.Create(ctx.Request().Context(), ctx.Param("schoolId"), ctx.Param("classId"), data.Subjects)
	if err != nil {
		if errors.Cause(err) == subject.ErrCodeExists {
			return ctx.JSON(http.StatusOK, MessageResponse{Message: subject.ErrCodeExists.Error()})
		}
		return errors.Wrap(err, "creating subjects")
	}
	return ctx.JSON(http.StatusCreated, subjects)
}

func (api *subjectApi) queryBySchool(ctx echo.Context) error {
	subjects, err := api.svc.QueryBySchool(ctx.Request().Context(), ctx.Param("schoolId"))
	if err != nil {
		return errors.Wrap(err, "querying school subjects")
	}
	return listOrMessage(ctx, subjects)
}

func (api *subjectApi) queryByClass(ctx echo.Context) error {
	subjects, err := api.svc.QueryByClass(ctx.Request().Context(), ctx.Param("classId"))
	if err != nil {
		return errors.Wrap(err, "querying class subjects")
	}
	return listOrMessage(ctx, subjects)
}

func (api *subjectApi) queryUnassigned(ctx echo.Context) error {
	subjects, err := api.svc.QueryUnassigned(ctx.Request().Context(), ctx.Param("classId"))
	if err != nil {
		return errors.Wrap(err, "querying unassigned subjects")
	}
	return listOrMessage(ctx, subjects)
}

func listOrMessage(ctx echo.Context, subjects []subject.Detail) error {
	if len(subjects) == 0 {
		return ctx.JSON(http.StatusOK, MessageResponse{Message: msgNoSubjects})
	}
	return ctx.JSON(http.StatusOK, subjects)
}

func (api *subjectApi) retrieve(ctx echo.Context) error {
	sub, err := api.svc.Get(ctx.Request().Context(), ctx.Param("id"))
	if err != nil {
		if errors.Cause(err) == subject.ErrNotFound {
			return ctx.JSON(http.StatusOK, MessageResponse{Message: msgNoSubject})
		}
		return errors.Wrap(err, "retrieving subject")
	}
	return ctx.JSON(http.StatusOK, sub)
}

func (api *subjectApi) destroy(ctx echo.Context) error {
	sub, _, err := api.svc.Delete(ctx.Request().Context(), ctx.Param("id"))
	if err != nil {
		return errors.Wrap(err, "deleting subject")
	}
	return ctx.JSON(http.StatusOK, sub)
}

func (api *subjectApi) destroyBySchool(ctx echo.Context) error {
	subjects, _, err := api.svc.DeleteBySchool(ctx.Request().Context(), ctx.Param("schoolId"))
	if err != nil {
		return errors.Wrap(err, "deleting school subjects")
	}
	return ctx.JSON(http.StatusOK, subjects)
}

func (api *subjectApi) destroyByClass(ctx echo.Context) error {
	subjects, _, err := api.svc.DeleteByClass(ctx.Request().Context(), ctx.Param("classId"))
	if err != nil {
		return errors.Wrap(err, "deleting class subjects")
	}
	return ctx.JSON(http.StatusOK, subjects)
}
