package echoapi

import (
	"encoding/json"
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/compliedu/backend/core/sar"
	"github.com/compliedu/backend/core/user"
)

type sarApi struct {
	svc      *sar.Service
	userSvc  *user.Service
	validate *validator.Validate
}

func registerSARAPI(g *echo.Group, jwt echo.MiddlewareFunc, deps ServerDeps) {
	api := sarApi{
		svc:      deps.SARSvc,
		userSvc:  deps.UserSvc,
		validate: deps.Validate,
	}

	sg := g.Group("/sar", jwt)
	sg.GET("/applications", api.query)
	sg.POST("/applications", api.create)
	sg.GET("/stats", api.stats, adminMiddleware())

	dg := sg.Group("/applications/:id", api.applicationAccessMiddleware())
	dg.GET("", api.retrieve)
	dg.PUT("/criteria/:criteriaID/sections/:sectionID", api.updateSection)
	dg.POST("/submit", api.submit)
	dg.GET("/institute-form", api.getInstituteForm)
	dg.PUT("/institute-form", api.saveInstituteForm)

	// review workflow is admin-only
	dg.POST("/review", api.startReview, adminMiddleware())
	dg.POST("/approve", api.approve, adminMiddleware())
	dg.POST("/reject", api.reject, adminMiddleware())
}

// applicationAccessMiddleware resolves the application and ensures the
// authenticated user may act on its institution. The resolved application is
// stashed in the context for the handler.
func (api *sarApi) applicationAccessMiddleware() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(ctx echo.Context) error {
			app, err := api.svc.GetByID(ctx.Param("id"))
			if err != nil {
				return errors.Wrap(err, "finding application by ID")
			}
			if !canAccessInstitution(ctx, app.InstitutionID) {
				return errHttpNotFound // do not leak other institutions' applications
			}
			ctx.Set("application", app)
			return next(ctx)
		}
	}
}

func contextApplication(ctx echo.Context) (sar.Application, error) {
	if app, ok := ctx.Get("application").(sar.Application); ok {
		return app, nil
	}
	return sar.Application{}, errors.New("application object not found in echo.Context")
}

// Handlers

func (api *sarApi) query(ctx echo.Context) error {
	claims, err := getContextClaims(ctx)
	if err != nil {
		return errors.Wrap(err, "getting context claims")
	}

	filter := new(ApplicationFilter)
	filter.Bind(ctx)
	if !claims.IsAdmin {
		// institute users only ever see their own applications
		filter.InstitutionID = claims.InstitutionID
	}

	var apps []sar.Application
	if filter.InstitutionID != "" {
		apps, err = api.svc.QueryByInstitution(filter.InstitutionID)
	} else {
		apps, err = api.svc.QueryAll()
	}
	if err != nil {
		return errors.Wrap(err, "querying applications")
	}

	apps = filter.Apply(apps)
	if apps == nil {
		apps = []sar.Application{}
	}
	return ctx.JSON(http.StatusOK, apps)
}

func (api *sarApi) create(ctx echo.Context) error {
	var data NewApplicationsRequest
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewApplicationsRequest")
	}
	if err := api.validate.Struct(&data); err != nil {
		return err
	}
	if !canAccessInstitution(ctx, data.InstitutionID) {
		return errHttpForbidden
	}

	usr, err := getContextUser(ctx, api.userSvc)
	if err != nil {
		return errors.Wrap(err, "getting context user")
	}

	apps, err := api.svc.CreateApplications(data.InstitutionID, data.Departments, usr.Email)
	if err != nil {
		return errors.Wrap(err, "creating applications")
	}
	return ctx.JSON(http.StatusCreated, apps)
}

func (api *sarApi) retrieve(ctx echo.Context) error {
	app, err := contextApplication(ctx)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, app)
}

func (api *sarApi) updateSection(ctx echo.Context) error {
	app, err := contextApplication(ctx)
	if err != nil {
		return err
	}

	var data sar.SectionUpdate
	if err = ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to SectionUpdate")
	}
	if err = data.Validate(api.validate); err != nil {
		return err
	}

	app, err = api.svc.UpdateSection(app.ID, ctx.Param("criteriaID"), ctx.Param("sectionID"), data)
	if err != nil {
		return errors.Wrap(err, "updating section")
	}
	return ctx.JSON(http.StatusOK, app)
}

func (api *sarApi) submit(ctx echo.Context) error {
	app, err := contextApplication(ctx)
	if err != nil {
		return err
	}
	app, err = api.svc.Submit(app.ID)
	if err != nil {
		return errors.Wrap(err, "submitting application")
	}
	return ctx.JSON(http.StatusOK, app)
}

func (api *sarApi) startReview(ctx echo.Context) error {
	app, err := contextApplication(ctx)
	if err != nil {
		return err
	}
	app, err = api.svc.StartReview(app.ID)
	if err != nil {
		return errors.Wrap(err, "starting review")
	}
	return ctx.JSON(http.StatusOK, app)
}

func (api *sarApi) approve(ctx echo.Context) error {
	app, err := contextApplication(ctx)
	if err != nil {
		return err
	}
	app, err = api.svc.Approve(app.ID)
	if err != nil {
		return errors.Wrap(err, "approving application")
	}
	return ctx.JSON(http.StatusOK, app)
}

func (api *sarApi) reject(ctx echo.Context) error {
	app, err := contextApplication(ctx)
	if err != nil {
		return err
	}
	app, err = api.svc.Reject(app.ID)
	if err != nil {
		return errors.Wrap(err, "rejecting application")
	}
	return ctx.JSON(http.StatusOK, app)
}

func (api *sarApi) getInstituteForm(ctx echo.Context) error {
	app, err := contextApplication(ctx)
	if err != nil {
		return err
	}
	form, err := api.svc.GetInstituteForm(app.ID)
	if err != nil {
		return errors.Wrap(err, "finding institute form")
	}
	return ctx.JSON(http.StatusOK, form)
}

func (api *sarApi) saveInstituteForm(ctx echo.Context) error {
	app, err := contextApplication(ctx)
	if err != nil {
		return err
	}

	var data InstituteFormRequest
	if err = ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to InstituteFormRequest")
	}
	if err = api.validate.Struct(&data); err != nil {
		return err
	}

	app, err = api.svc.SaveInstituteForm(app.ID, data.Payload, data.Progress)
	if err != nil {
		return errors.Wrap(err, "saving institute form")
	}
	return ctx.JSON(http.StatusOK, app)
}

func (api *sarApi) stats(ctx echo.Context) error {
	stats, err := api.svc.DashboardStats()
	if err != nil {
		return errors.Wrap(err, "aggregating stats")
	}
	return ctx.JSON(http.StatusOK, stats)
}

type (
	NewApplicationsRequest struct {
		InstitutionID string   `json:"institutionId" validate:"required"`
		Departments   []string `json:"departments" validate:"required,min=1"`
	}

	InstituteFormRequest struct {
		Payload  json.RawMessage `json:"payload" validate:"required"`
		Progress int             `json:"progress" validate:"min=0,max=100"`
	}
)
