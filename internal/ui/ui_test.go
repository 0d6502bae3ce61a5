package ui

import (
	"bytes"
	"context"
	"testing"
	"time"

	"github.com/a-h/templ"
	"github.com/claimbridge/claimbridge/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func render(t *testing.T, c templ.Component) string {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, c.Render(context.Background(), &buf))
	return buf.String()
}

var (
	jane = domain.Identity{UserID: 1, Name: "Jane Smith", Role: domain.RoleSuperAdmin}
	john = domain.Identity{UserID: 2, Name: "John Doe", Role: domain.RoleAdmin}
)

func TestClaimsTableEscapesContent(t *testing.T) {
	out := render(t, ClaimsTable([]domain.Claim{{
		ID:           7,
		ClaimantName: `<script>alert("x")</script>`,
		Date:         "2024-05-01",
		Status:       domain.StatusInReview,
		Summary:      "Broken window & door",
	}}))

	assert.Contains(t, out, `id="claims-table"`)
	assert.Contains(t, out, `href="/dashboard/claims/7"`)
	assert.NotContains(t, out, "<script>")
	assert.Contains(t, out, "&lt;script&gt;")
	assert.Contains(t, out, "Broken window &amp; door")
	assert.Contains(t, out, "badge-in-review")
}

func TestClaimsTableEmpty(t *testing.T) {
	out := render(t, ClaimsTable(nil))
	assert.Contains(t, out, "No claims found.")
}

func TestDashboardManageAdminsLink(t *testing.T) {
	assert.Contains(t, render(t, DashboardPage(jane, nil, FilterAll)), `href="/dashboard/admin-management"`)
	assert.NotContains(t, render(t, DashboardPage(john, nil, FilterAll)), `href="/dashboard/admin-management"`)
}

func TestDashboardSelectsFilter(t *testing.T) {
	out := render(t, DashboardPage(john, nil, "Closed"))
	assert.Contains(t, out, `<option value="Closed" selected>`)
	assert.Contains(t, out, `data-signals=`)
}

func TestNotesThreadUnknownAuthor(t *testing.T) {
	name := "Jane Smith"
	ts := time.Date(2024, 5, 1, 9, 30, 0, 0, time.UTC)
	out := render(t, NotesThread([]domain.ClaimNote{
		{ID: 1, AuthorID: "1", AuthorName: &name, Note: "First call", Timestamp: ts},
		{ID: 2, AuthorID: "42", Note: "Ghost note", Timestamp: ts},
	}))

	assert.Contains(t, out, `id="notes-thread"`)
	assert.Contains(t, out, "Jane Smith")
	assert.Contains(t, out, "Unknown author")
	assert.Contains(t, out, "2024-05-01 09:30")
}

func TestFlash(t *testing.T) {
	assert.Equal(t, `<div id="flash"></div>`, render(t, Flash("", "")))
	assert.Contains(t, render(t, Flash("Saved", "info")), `class="flash-info"`)
	assert.Contains(t, render(t, Flash("Nope", "error")), `class="flash-error"`)
	assert.Contains(t, render(t, Flash("x", "weird")), `class="flash-info"`)
}

func TestRoleSwitcherOffersOtherRole(t *testing.T) {
	out := render(t, LoginPage(john))
	assert.Contains(t, out, `value="super-admin"`)
	assert.Contains(t, out, "Switch to Super Admin")
}

func TestAdminsTable(t *testing.T) {
	out := render(t, AdminsTable([]domain.AdminUser{{ID: 3, Name: "Priya", Email: "priya@claimbridge.com", Role: domain.RoleAdmin}}))
	assert.Contains(t, out, `id="admins-table"`)
	assert.Contains(t, out, "priya@claimbridge.com")
}
