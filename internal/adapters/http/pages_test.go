package http

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/claimbridge/claimbridge/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	superAdminCookie = &http.Cookie{Name: roleCookieName, Value: string(domain.RoleSuperAdmin)}
	adminCookie      = &http.Cookie{Name: roleCookieName, Value: string(domain.RoleAdmin)}
)

func TestHomeRedirectsToDashboard(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(t, http.MethodGet, "/", "")
	assert.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "/dashboard", rec.Header().Get("Location"))
}

func TestSwitchRoleSetsCookie(t *testing.T) {
	env := newTestEnv(t)

	req := httptest.NewRequest(http.MethodPost, "/role", strings.NewReader(url.Values{"role": {"super-admin"}}.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	rec := httptest.NewRecorder()
	env.handler.ServeHTTP(rec, req)

	require.Equal(t, http.StatusSeeOther, rec.Code)
	cookies := rec.Result().Cookies()
	require.Len(t, cookies, 1)
	assert.Equal(t, roleCookieName, cookies[0].Name)
	assert.Equal(t, "super-admin", cookies[0].Value)
}

func TestDashboardFilter(t *testing.T) {
	env := newTestEnv(t)
	first := env.createClaim(t)
	second := env.createClaim(t)
	require.Equal(t, http.StatusOK, env.do(t, http.MethodPatch, fmt.Sprintf("/api/claims/%d", second.ID), `{"status":"Closed"}`).Code)

	rec := env.do(t, http.MethodGet, "/dashboard", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), fmt.Sprintf(`href="/dashboard/claims/%d"`, first.ID))
	assert.Contains(t, rec.Body.String(), fmt.Sprintf(`href="/dashboard/claims/%d"`, second.ID))

	rec = env.do(t, http.MethodPost, "/dashboard/claims/filter", `{"statusFilter":"Closed"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `id="claims-table"`)
	assert.NotContains(t, rec.Body.String(), fmt.Sprintf(`href="/dashboard/claims/%d"`, first.ID))
	assert.Contains(t, rec.Body.String(), fmt.Sprintf(`href="/dashboard/claims/%d"`, second.ID))

	rec = env.do(t, http.MethodGet, "/dashboard?status=New", "")
	assert.Contains(t, rec.Body.String(), fmt.Sprintf(`href="/dashboard/claims/%d"`, first.ID))
	assert.NotContains(t, rec.Body.String(), fmt.Sprintf(`href="/dashboard/claims/%d"`, second.ID))
}

func TestDashboardCreateClaim(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(t, http.MethodPost, "/dashboard/claims", `{"claimantName":"Lee Chen","claimDate":"2024-04-02","claimSummary":"Fender bender","claimDetails":"Rear bumper dented."}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Contains(t, rec.Body.String(), "Lee Chen")
	assert.Contains(t, rec.Body.String(), `class="flash-info"`)
	assert.EqualValues(t, 1, env.countClaims(t))

	rec = env.do(t, http.MethodPost, "/dashboard/claims", `{"claimantName":"Lee Chen"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "Missing required fields")
	assert.EqualValues(t, 1, env.countClaims(t))
}

func TestDashboardGenerateClaim(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(t, http.MethodPost, "/dashboard/claims/generate", `{"statusFilter":"All"}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Contains(t, rec.Body.String(), "Generated claim #1")
	assert.EqualValues(t, 1, env.countClaims(t))
}

func TestClaimDetailAndNotes(t *testing.T) {
	env := newTestEnv(t)
	claim := env.createClaim(t)
	base := fmt.Sprintf("/dashboard/claims/%d", claim.ID)

	rec := env.do(t, http.MethodGet, base, "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "Maria Lopez")
	assert.Contains(t, rec.Body.String(), "Add note as John Doe")

	rec = env.do(t, http.MethodPost, base+"/notes", `{"noteText":"Checked the photos."}`, superAdminCookie)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Contains(t, rec.Body.String(), `id="notes-thread"`)
	assert.Contains(t, rec.Body.String(), "Jane Smith")
	assert.Contains(t, rec.Body.String(), "Checked the photos.")

	rec = env.do(t, http.MethodPost, base+"/status", `{"newStatus":"Closed"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `id="claim-status"`)

	rec = env.do(t, http.MethodPost, base+"/status", `{"newStatus":"Gone"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "Invalid status")

	rec = env.do(t, http.MethodGet, "/dashboard/claims/9999", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestAdminManagementRequiresSuperAdmin(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(t, http.MethodGet, "/dashboard/admin-management", "")
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = env.do(t, http.MethodGet, "/dashboard/admin-management", "", adminCookie)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = env.do(t, http.MethodPost, "/dashboard/admin-management/admins", `{"adminName":"X","adminEmail":"x@claimbridge.com","adminRole":"admin"}`, adminCookie)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = env.do(t, http.MethodGet, "/dashboard/admin-management", "", superAdminCookie)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "jane@claimbridge.com")

	rec = env.do(t, http.MethodPost, "/dashboard/admin-management/admins", `{"adminName":"Ana Silva","adminEmail":"Ana@ClaimBridge.com","adminRole":"super-admin"}`, superAdminCookie)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Contains(t, rec.Body.String(), "ana@claimbridge.com")

	rec = env.do(t, http.MethodPost, "/dashboard/admin-management/admins", `{"adminName":"Ana Again","adminEmail":"ana@claimbridge.com","adminRole":"admin"}`, superAdminCookie)
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Contains(t, rec.Body.String(), "email may already exist")
}
