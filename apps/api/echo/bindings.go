package echoapi

import (
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/compliedu/backend/core/sar"
)

var (
	institutionParam = "institutionId"
	statusParam      = "status"
)

// ApplicationFilter narrows an application listing via query parameters.
type ApplicationFilter struct {
	InstitutionID string
	Statuses      []string
}

func (f *ApplicationFilter) Bind(ctx echo.Context) {
	data := ctx.QueryParams()
	if len(data) == 0 {
		return
	}
	if val, ok := data[institutionParam]; ok && len(val) > 0 {
		f.InstitutionID = strings.TrimSpace(val[0])
	}
	if val, ok := data[statusParam]; ok && len(val) > 0 && val[0] != "" {
		for _, status := range strings.Split(val[0], ",") {
			f.Statuses = append(f.Statuses, strings.TrimSpace(status))
		}
	}
}

// Apply filters apps by the bound statuses. Institution scoping happens at
// query time; this only narrows what is already loaded.
func (f *ApplicationFilter) Apply(apps []sar.Application) []sar.Application {
	if len(f.Statuses) == 0 {
		return apps
	}
	var out []sar.Application
	for _, app := range apps {
		for _, status := range f.Statuses {
			if app.Status == status {
				out = append(out, app)
				break
			}
		}
	}
	return out
}
