package echoapi

import (
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/masomo-records/core/complaint"
)

const (
	msgNoComplaints         = "No complains found"
	msgNoComplaintsToDelete = "No complains found to delete"
)

type complaintApi struct {
	svc      complaint.Service
	validate *validator.Validate
}

func registerComplaintAPI(g *echo.Group, svc complaint.Service, validate *validator.Validate) {
	api := complaintApi{svc: svc, validate: validate}

	sg := g.Group("/schools/:schoolId/complaints")
	sg.POST("", api.create)
	sg.GET("", api.query)
	sg.DELETE("", api.destroyAll)

	cg := g.Group("/complaints")
	cg.PATCH("/status", api.updateManyStatus)
	cg.PATCH("/:id/status", api.updateStatus)
	cg.DELETE("/:id", api.destroy)
}

// Handlers

func (api *complaintApi) create(ctx echo.Context) error {
	var data complaint.NewComplaint
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewComplaint")
	}
	data.SchoolID = ctx.Param("schoolId")
	if err := data.Validate(api.validate); err != nil {
		return err
	}

	c, err := api.svc.Create(ctx.Request().Context(), data)
	if err != nil {
		return errors.Wrap(err, "creating complaint")
	}
	return ctx.JSON(http.StatusCreated, c)
}

func (api *complaintApi) query(ctx echo.Context) error {
	complaints, err := api.svc.QueryBySchool(ctx.Request().Context(), ctx.Param("schoolId"))
	if err != nil {
		return errors.Wrap(err, "querying complaints")
	}
	if len(complaints) == 0 {
		return ctx.JSON(http.StatusOK, MessageResponse{Message: msgNoComplaints})
	}
	return ctx.JSON(http.StatusOK, complaints)
}

func (api *complaintApi) updateStatus(ctx echo.Context) error {
	var data complaint.UpdateStatus
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to UpdateStatus")
	}
	status, err := data.Validate(api.validate)
	if err != nil {
		return err
	}

	c, err := api.svc.UpdateStatus(ctx.Request().Context(), ctx.Param("id"), status)
	if err != nil {
		return errors.Wrap(err, "updating complaint status")
	}
	return ctx.JSON(http.StatusOK, c)
}

func (api *complaintApi) updateManyStatus(ctx echo.Context) error {
	var data complaint.UpdateManyStatus
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to UpdateManyStatus")
	}
	status, err := data.Validate(api.validate)
	if err != nil {
		return err
	}

	res, err := api.svc.UpdateManyStatus(ctx.Request().Context(), data.IDs, status)
	if err != nil {
		return errors.Wrap(err, "updating complaints status")
	}
	return ctx.JSON(http.StatusOK, res)
}

func (api *complaintApi) destroy(ctx echo.Context) error {
	c, err := api.svc.Delete(ctx.Request().Context(), ctx.Param("id"))
	if err != nil {
		return errors.Wrap(err, "deleting complaint")
	}
	return ctx.JSON(http.StatusOK, c)
}

func (api *complaintApi) destroyAll(ctx echo.Context) error {
	res, err := api.svc.DeleteBySchool(ctx.Request().Context(), ctx.Param("schoolId"))
	if err != nil {
		return errors.Wrap(err, "deleting school complaints")
	}
	if res.DeletedCount == 0 {
		return ctx.JSON(http.StatusOK, MessageResponse{Message: msgNoComplaintsToDelete})
	}
	return ctx.JSON(http.StatusOK, res)
}
