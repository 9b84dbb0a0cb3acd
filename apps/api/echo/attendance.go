package echoapi

import (
	"fmt"
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/masomo-records/core/attendance"
	exportsvc "github.com/trezcool/masomo-records/services/export"
)

const msgAttendanceSaved = "Attendance saved successfully"

type attendanceApi struct {
	svc      attendance.Service
	validate *validator.Validate
}

func registerAttendanceAPI(g *echo.Group, svc attendance.Service, validate *validator.Validate) {
	api := attendanceApi{svc: svc, validate: validate}

	g.POST("/attendance", api.mark)
	g.GET("/classes/:classId/attendance", api.queryClass)
	g.GET("/classes/:classId/attendance/export", api.exportClass)
	g.GET("/students/:studentId/attendance", api.queryStudent)
}

// Handlers

func (api *attendanceApi) mark(ctx echo.Context) error {
	var data attendance.NewAttendance
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewAttendance")
	}
	ma, err := data.Validate(api.validate)
	if err != nil {
		return err
	}

	if _, err = api.svc.MarkClassAttendance(ctx.Request().Context(), ma); err != nil {
		return errors.Wrap(err, "marking attendance")
	}
	return ctx.JSON(http.StatusOK, MessageResponse{Message: msgAttendanceSaved})
}

func (api *attendanceApi) queryClass(ctx echo.Context) error {
	filter := new(DateFilter)
	if err := filter.Bind(ctx); err != nil {
		return err
	}

	records, err := api.svc.QueryClassAttendance(ctx.Request().Context(), ctx.Param("classId"), filter.Date)
	if err != nil {
		return errors.Wrap(err, "querying class attendance")
	}
	return ctx.JSON(http.StatusOK, records)
}

func (api *attendanceApi) exportClass(ctx echo.Context) error {
	filter := new(DateFilter)
	if err := filter.Bind(ctx); err != nil {
		return err
	}
	classID := ctx.Param("classId")

	records, err := api.svc.QueryClassAttendance(ctx.Request().Context(), classID, filter.Date)
	if err != nil {
		return errors.Wrap(err, "querying class attendance")
	}
	f, err := exportsvc.AttendanceWorkbook(records)
	if err != nil {
		return errors.Wrap(err, "building attendance workbook")
	}
	defer func() { _ = f.Close() }()

	buf, err := f.WriteToBuffer()
	if err != nil {
		return errors.Wrap(err, "writing attendance workbook")
	}
	filename := "attendance-" + classID
	if filter.Date != nil {
		filename += "-" + filter.Date.Format("2006-01-02")
	}
	ctx.Response().Header().Set(echo.HeaderContentDisposition, fmt.Sprintf("attachment; filename=%q", filename+".xlsx"))
	return ctx.Blob(http.StatusOK, exportsvc.XLSXContentType, buf.Bytes())
}

func (api *attendanceApi) queryStudent(ctx echo.Context) error {
	records, err := api.svc.QueryStudentAttendance(ctx.Request().Context(), ctx.Param("studentId"))
	if err != nil {
		return errors.Wrap(err, "querying student attendance")
	}
	return ctx.JSON(http.StatusOK, records)
}
