package ui

import (
	"context"

	"github.com/a-h/templ"
	"github.com/claimbridge/claimbridge/internal/domain"
)

func AdminManagementPage(identity domain.Identity, admins []domain.AdminUser) templ.Component {
	body := component(func(ctx context.Context, h *htmlWriter) {
		h.print(`<p><a href="/dashboard">&larr; Back</a></p><h1>Admin management</h1>`)
		h.printf(`<div class="card"%s><h3>New admin</h3>`, signalsAttr(map[string]any{
			"adminName":  "",
			"adminEmail": "",
			"adminRole":  string(domain.RoleAdmin),
		}))
		h.print(`<p><input placeholder="Full name" data-bind-admin-name> <input type="email" placeholder="Email" data-bind-admin-email> `)
		h.print(`<select data-bind-admin-role>`)
		for _, r := range domain.AdminRoles {
			h.printf(`<option value="%s">%s</option>`, esc(string(r)), esc(string(r)))
		}
		h.print(`</select> <button data-on-click="@post('/dashboard/admin-management/admins')">Create admin</button></p></div>`)

		h.print(`<div class="card">`)
		h.render(ctx, AdminsTable(admins))
		h.print(`</div>`)
	})
	return page("Admin management", identity, body)
}

func AdminsTable(admins []domain.AdminUser) templ.Component {
	return component(func(_ context.Context, h *htmlWriter) {
		h.printf(`<div id="%s">`, AdminsTableID)
		if len(admins) == 0 {
			h.print(`<p class="muted">No administrators.</p></div>`)
			return
		}
		h.print(`<table><thead><tr><th>Name</th><th>Email</th><th>Role</th><th>Created</th></tr></thead><tbody>`)
		for _, a := range admins {
			h.printf(`<tr><td>%s</td><td>%s</td><td>%s</td><td>%s</td></tr>`,
				esc(a.Name), esc(a.Email), esc(string(a.Role)), esc(a.CreatedAt.Format("2006-01-02")))
		}
		h.print(`</tbody></table></div>`)
	})
}
