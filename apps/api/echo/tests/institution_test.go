package tests

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	echoapi "github.com/compliedu/backend/apps/api/echo"
	"github.com/compliedu/backend/core/institution"
)

func Test_institutionApi_query(t *testing.T) {
	app := setup(t)
	admin := getUser(t, "admin@compliedu.com")
	coordinator := getUser(t, "rgukt@example.com")

	insts, err := instSvc.QueryAll()
	require.NoError(t, err)
	require.Len(t, insts, 3) // seed dataset

	tests := []httpTest{
		{name: "Auth required", wantCode: http.StatusUnauthorized, wantData: marchallObj(t, errMissingToken)},
		{
			name: "Admin required", token: getToken(t, coordinator),
			wantCode: http.StatusForbidden, wantData: marchallObj(t, errPermissionDenied),
		},
		{name: "Get all", token: getToken(t, admin), wantCode: http.StatusOK, wantData: marchallObj(t, insts)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req, rec := newAuthRequest(http.MethodGet, "/v1/institutions", tt.token)
			app.ServeHTTP(rec, req)
			checkCodeAndData(t, tt, rec)
		})
	}
}

func Test_institutionApi_retrieve(t *testing.T) {
	app := setup(t)
	admin := getUser(t, "admin@compliedu.com")
	coordinator := getUser(t, "rgukt@example.com") // institution "1"

	inst1, err := instSvc.GetByID("1")
	require.NoError(t, err)
	inst2, err := instSvc.GetByID("2")
	require.NoError(t, err)

	tests := []httpTest{
		{name: "Auth required", path: "/v1/institutions/1", wantCode: http.StatusUnauthorized, wantData: marchallObj(t, errMissingToken)},
		{
			name: "Own institution", path: "/v1/institutions/1", token: getToken(t, coordinator),
			wantCode: http.StatusOK, wantData: marchallObj(t, inst1),
		},
		{
			name: "Other institution is off limits", path: "/v1/institutions/2", token: getToken(t, coordinator),
			wantCode: http.StatusForbidden, wantData: marchallObj(t, errPermissionDenied),
		},
		{
			name: "Admin can access any", path: "/v1/institutions/2", token: getToken(t, admin),
			wantCode: http.StatusOK, wantData: marchallObj(t, inst2),
		},
		{
			name: "Unknown institution", path: "/v1/institutions/nope", token: getToken(t, admin),
			wantCode: http.StatusNotFound, wantData: marchallObj(t, errNotFound),
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req, rec := newAuthRequest(http.MethodGet, tt.path, tt.token)
			app.ServeHTTP(rec, req)
			checkCodeAndData(t, tt, rec)
		})
	}
}

func Test_institutionApi_departmentCatalog(t *testing.T) {
	app := setup(t)
	coordinator := getUser(t, "rgukt@example.com")
	token := getToken(t, coordinator)

	t.Run("Engineering", func(t *testing.T) {
		req, rec := newAuthRequest(http.MethodGet, "/v1/institutions/categories/Engineering/departments", token)
		app.ServeHTTP(rec, req)
		checkCodeAndData(t, httpTest{
			wantCode: http.StatusOK,
			wantData: marchallObj(t, institution.ListDepartmentsByCategory("Engineering")),
		}, rec)
	})

	t.Run("unknown category", func(t *testing.T) {
		req, rec := newAuthRequest(http.MethodGet, "/v1/institutions/categories/Gastronomy/departments", token)
		app.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusOK, rec.Code)
	})
}

func Test_institutionApi_availableDepartments(t *testing.T) {
	app := setup(t)
	coordinator := getUser(t, "rgukt@example.com")

	// seed dataset: institution "1" already has CSE and ECE applications
	avail, err := sarSvc.AvailableDepartments("1")
	require.NoError(t, err)
	require.Len(t, avail, len(institution.ListDepartmentsByCategory("Engineering"))-2)

	req, rec := newAuthRequest(http.MethodGet, "/v1/institutions/1/available-departments", getToken(t, coordinator))
	app.ServeHTTP(rec, req)
	checkCodeAndData(t, httpTest{wantCode: http.StatusOK, wantData: marchallObj(t, avail)}, rec)
}

func Test_institutionApi_onboard(t *testing.T) {
	app := setup(t)
	admin := getUser(t, "admin@compliedu.com")
	coordinator := getUser(t, "rgukt@example.com")
	adminToken := getToken(t, admin)

	newInst := func(code string) []byte {
		return marchallObj(t, institution.NewInstitution{
			Name:                "NIT Warangal",
			InstitutionCode:     code,
			InstitutionCategory: "Engineering",
			TierCategory:        "Tier-I",
			Address:             "Warangal, Telangana",
			ContactEmail:        "admin@nitw.ac.in",
			ContactPhone:        "+91-870-246-2021",
			EstablishedYear:     1959,
			CoordinatorName:     "Dr. Ravi Teja",
			CoordinatorEmail:    "coordinator@nitw.ac.in",
		})
	}

	tests := []httpTest{
		{name: "Auth required", wantCode: http.StatusUnauthorized, wantData: marchallObj(t, errMissingToken)},
		{
			name: "Admin required", token: getToken(t, coordinator), body: newInst("NITW"),
			wantCode: http.StatusForbidden, wantData: marchallObj(t, errPermissionDenied),
		},
		{name: "lowercase code rejected", token: adminToken, body: newInst("nitw"), wantCode: http.StatusBadRequest},
		{name: "existing code rejected", token: adminToken, body: newInst("RGUKT"), wantCode: http.StatusBadRequest},
		{name: "ok", token: adminToken, body: newInst("NITW"), wantCode: http.StatusCreated, extra: "created"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req, rec := newAuthRequest(http.MethodPost, "/v1/institutions", tt.token, tt.body)
			app.ServeHTTP(rec, req)

			if tt.extra == "created" {
				require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
				var inst institution.Institution
				unmarchallObj(t, rec, &inst)
				assert.NotEmpty(t, inst.ID)
				assert.Equal(t, "NITW", inst.InstitutionCode)
				assert.Equal(t, institution.StatusPending, inst.AccreditationStatus)
				assert.False(t, inst.PreQualifiersCompleted)
				return
			}
			checkCodeAndData(t, tt, rec)
		})
	}
}

func Test_institutionApi_preQualifiers(t *testing.T) {
	app := setup(t)
	coordinator := getUser(t, "rgukt@example.com")
	token := getToken(t, coordinator)

	t.Run("Other institution is off limits", func(t *testing.T) {
		req, rec := newAuthRequest(http.MethodPut, "/v1/institutions/2/pre-qualifiers", token,
			marchallObj(t, echoapi.PreQualifiersRequest{Completed: true}))
		app.ServeHTTP(rec, req)
		checkCodeAndData(t, httpTest{wantCode: http.StatusForbidden, wantData: marchallObj(t, errPermissionDenied)}, rec)
	})

	t.Run("ok", func(t *testing.T) {
		req, rec := newAuthRequest(http.MethodPut, "/v1/institutions/1/pre-qualifiers", token,
			marchallObj(t, echoapi.PreQualifiersRequest{Completed: true}))
		app.ServeHTTP(rec, req)
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
		var inst institution.Institution
		unmarchallObj(t, rec, &inst)
		assert.True(t, inst.PreQualifiersCompleted)

		// persisted
		inst, err := instSvc.GetByID("1")
		require.NoError(t, err)
		assert.True(t, inst.PreQualifiersCompleted)
	})
}

func Test_institutionApi_accreditationStatus(t *testing.T) {
	app := setup(t)
	admin := getUser(t, "admin@compliedu.com")
	coordinator := getUser(t, "rgukt@example.com")
	adminToken := getToken(t, admin)

	statusBody := func(status string) []byte {
		return marchallObj(t, echoapi.AccreditationStatusRequest{Status: status})
	}

	tests := []httpTest{
		{
			name: "Admin required", token: getToken(t, coordinator), body: statusBody(institution.StatusAccredited),
			wantCode: http.StatusForbidden, wantData: marchallObj(t, errPermissionDenied),
		},
		{name: "missing status", token: adminToken, body: []byte(`{}`), wantCode: http.StatusBadRequest},
		{name: "unknown status", token: adminToken, body: statusBody("galactic"), wantCode: http.StatusBadRequest},
		{name: "ok", token: adminToken, body: statusBody(institution.StatusAccredited), wantCode: http.StatusOK, extra: "updated"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req, rec := newAuthRequest(http.MethodPut, "/v1/institutions/1/accreditation-status", tt.token, tt.body)
			app.ServeHTTP(rec, req)

			if tt.extra == "updated" {
				require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
				var inst institution.Institution
				unmarchallObj(t, rec, &inst)
				assert.Equal(t, institution.StatusAccredited, inst.AccreditationStatus)
				return
			}
			checkCodeAndData(t, tt, rec)
		})
	}
}
