package echoapi

import (
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/compliedu/backend/core/institution"
	"github.com/compliedu/backend/core/sar"
)

type institutionApi struct {
	svc      *institution.Service
	sarSvc   *sar.Service
	validate *validator.Validate
}

func registerInstitutionAPI(g *echo.Group, jwt echo.MiddlewareFunc, deps ServerDeps) {
	api := institutionApi{
		svc:      deps.InstitutionSvc,
		sarSvc:   deps.SARSvc,
		validate: deps.Validate,
	}

	ig := g.Group("/institutions", jwt)
	ig.POST("", api.onboard, adminMiddleware())
	ig.GET("", api.query, adminMiddleware())
	ig.GET("/categories/:category/departments", api.queryCatalog)

	dg := ig.Group("/:id")
	dg.GET("", api.retrieve)
	dg.GET("/available-departments", api.availableDepartments)
	dg.PUT("/pre-qualifiers", api.setPreQualifiers)
	dg.PUT("/accreditation-status", api.setAccreditationStatus, adminMiddleware())
}

// Handlers

func (api *institutionApi) onboard(ctx echo.Context) error {
	var data institution.NewInstitution
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewInstitution")
	}
	if err := data.Validate(api.validate, api.svc); err != nil {
		return err
	}

	inst, err := api.svc.Onboard(data)
	if err != nil {
		return errors.Wrap(err, "onboarding institution")
	}
	return ctx.JSON(http.StatusCreated, inst)
}

func (api *institutionApi) query(ctx echo.Context) error {
	insts, err := api.svc.QueryAll()
	if err != nil {
		return errors.Wrap(err, "querying institutions")
	}
	if insts == nil {
		insts = []institution.Institution{}
	}
	return ctx.JSON(http.StatusOK, insts)
}

func (api *institutionApi) retrieve(ctx echo.Context) error {
	id := ctx.Param("id")
	if !canAccessInstitution(ctx, id) {
		return errHttpForbidden
	}
	inst, err := api.svc.GetByID(id)
	if err != nil {
		return errors.Wrap(err, "finding institution by ID")
	}
	return ctx.JSON(http.StatusOK, inst)
}

func (api *institutionApi) queryCatalog(ctx echo.Context) error {
	depts := institution.ListDepartmentsByCategory(ctx.Param("category"))
	return ctx.JSON(http.StatusOK, depts)
}

func (api *institutionApi) availableDepartments(ctx echo.Context) error {
	id := ctx.Param("id")
	if !canAccessInstitution(ctx, id) {
		return errHttpForbidden
	}
	depts, err := api.sarSvc.AvailableDepartments(id)
	if err != nil {
		return errors.Wrap(err, "querying available departments")
	}
	if depts == nil {
		depts = []institution.Department{}
	}
	return ctx.JSON(http.StatusOK, depts)
}

func (api *institutionApi) setPreQualifiers(ctx echo.Context) error {
	id := ctx.Param("id")
	if !canAccessInstitution(ctx, id) {
		return errHttpForbidden
	}

	var data PreQualifiersRequest
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to PreQualifiersRequest")
	}

	inst, err := api.svc.SetPreQualifiersCompleted(id, data.Completed)
	if err != nil {
		return errors.Wrap(err, "setting pre-qualifiers")
	}
	return ctx.JSON(http.StatusOK, inst)
}

func (api *institutionApi) setAccreditationStatus(ctx echo.Context) error {
	var data AccreditationStatusRequest
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to AccreditationStatusRequest")
	}
	if err := api.validate.Struct(&data); err != nil {
		return err
	}

	inst, err := api.svc.SetAccreditationStatus(ctx.Param("id"), data.Status)
	if err != nil {
		return errors.Wrap(err, "setting accreditation status")
	}
	return ctx.JSON(http.StatusOK, inst)
}

type (
	PreQualifiersRequest struct {
		Completed bool `json:"completed"`
	}

	AccreditationStatusRequest struct {
		Status string `json:"status" validate:"required"`
	}
)
