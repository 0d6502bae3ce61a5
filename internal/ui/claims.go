package ui

import (
	"context"
	"fmt"
	"strings"

	"github.com/a-h/templ"
	"github.com/claimbridge/claimbridge/internal/domain"
)

// FilterAll shows claims of every status.
const FilterAll = "All"

func statusClass(s domain.ClaimStatus) string {
	return "badge badge-" + strings.ReplaceAll(strings.ToLower(string(s)), " ", "-")
}

func statusBadge(s domain.ClaimStatus) string {
	return `<span class="` + statusClass(s) + `">` + esc(string(s)) + `</span>`
}

func DashboardPage(identity domain.Identity, claims []domain.Claim, filter string) templ.Component {
	body := component(func(ctx context.Context, h *htmlWriter) {
		h.print(`<div style="display:flex;justify-content:space-between;align-items:center"><h1>Claims</h1><div>`)
		if identity.IsSuperAdmin() {
			h.print(`<a href="/dashboard/admin-management">Manage admins</a> `)
		}
		h.print(`<button data-on-click="@post('/dashboard/claims/generate')">Generate fake claim</button></div></div>`)

		h.printf(`<div class="card"%s>`, signalsAttr(map[string]any{
			"statusFilter": filter,
			"claimantName": "",
			"claimDate":    "",
			"claimSummary": "",
			"claimDetails": "",
		}))
		h.print(`<h3>New claim</h3>`)
		h.print(`<p><input placeholder="Claimant name" data-bind-claimant-name> <input type="date" data-bind-claim-date></p>`)
		h.print(`<p><input placeholder="Summary" style="width:100%" data-bind-claim-summary></p>`)
		h.print(`<p><textarea placeholder="Details" rows="4" style="width:100%" data-bind-claim-details></textarea></p>`)
		h.print(`<button data-on-click="@post('/dashboard/claims')">Create claim</button>`)

		h.print(`<p style="margin-top:1.5rem"><label>Status <select data-bind-status-filter data-on-change="@post('/dashboard/claims/filter')">`)
		for _, opt := range append([]string{FilterAll}, statusStrings()...) {
			selected := ""
			if opt == filter {
				selected = " selected"
			}
			h.printf(`<option value="%s"%s>%s</option>`, esc(opt), selected, esc(opt))
		}
		h.print(`</select></label></p>`)
		h.render(ctx, ClaimsTable(claims))
		h.print(`</div>`)
	})
	return page("Claims", identity, body)
}

func statusStrings() []string {
	out := make([]string, 0, len(domain.ClaimStatuses))
	for _, s := range domain.ClaimStatuses {
		out = append(out, string(s))
	}
	return out
}

// ClaimsTable renders already filtered claims.
func ClaimsTable(claims []domain.Claim) templ.Component {
	return component(func(_ context.Context, h *htmlWriter) {
		h.printf(`<div id="%s">`, ClaimsTableID)
		if len(claims) == 0 {
			h.print(`<p class="muted">No claims found.</p></div>`)
			return
		}
		h.print(`<table><thead><tr><th>#</th><th>Claimant</th><th>Date</th><th>Status</th><th>Summary</th></tr></thead><tbody>`)
		for _, c := range claims {
			h.printf(
				`<tr><td><a href="/dashboard/claims/%d">%d</a></td><td>%s</td><td>%s</td><td>%s</td><td>%s</td></tr>`,
				c.ID, c.ID, esc(c.ClaimantName), esc(c.Date), statusBadge(c.Status), esc(c.Summary),
			)
		}
		h.print(`</tbody></table></div>`)
	})
}

func ClaimDetailPage(identity domain.Identity, claim domain.Claim, notes []domain.ClaimNote) templ.Component {
	body := component(func(ctx context.Context, h *htmlWriter) {
		h.printf(`<p><a href="/dashboard">&larr; Back</a></p><div class="card"%s>`, signalsAttr(map[string]any{
			"newStatus": string(claim.Status),
			"noteText":  "",
		}))
		h.printf(`<h2>%s</h2><p class="muted">Claim #%d · %s · created %s</p>`,
			esc(claim.ClaimantName), claim.ID, esc(claim.Date), esc(claim.CreatedAt.Format("2006-01-02 15:04")))

		h.printf(`<p><label>Status <select data-bind-new-status data-on-change="@post('/dashboard/claims/%d/status')">`, claim.ID)
		for _, s := range domain.ClaimStatuses {
			selected := ""
			if s == claim.Status {
				selected = " selected"
			}
			h.printf(`<option value="%s"%s>%s</option>`, esc(string(s)), selected, esc(string(s)))
		}
		h.print(`</select></label> `)
		h.render(ctx, ClaimStatus(claim.Status))
		h.print(`</p>`)

		h.printf(`<h3>Summary</h3><p>%s</p><h3>Details</h3><div style="white-space:pre-wrap">%s</div></div>`,
			esc(claim.Summary), esc(claim.Details))

		h.print(`<div class="card"><h3>Notes</h3>`)
		h.print(`<textarea rows="3" style="width:100%" placeholder="Add a note" data-bind-note-text></textarea>`)
		h.printf(`<p><button data-on-click="@post('/dashboard/claims/%d/notes')">Add note as %s</button></p>`, claim.ID, esc(identity.Name))
		h.render(ctx, NotesThread(notes))
		h.print(`</div>`)
	})
	return page(fmt.Sprintf("Claim #%d", claim.ID), identity, body)
}

func ClaimStatus(s domain.ClaimStatus) templ.Component {
	return component(func(_ context.Context, h *htmlWriter) {
		h.printf(`<span id="%s">%s</span>`, ClaimStatusID, statusBadge(s))
	})
}

func NotesThread(notes []domain.ClaimNote) templ.Component {
	return component(func(_ context.Context, h *htmlWriter) {
		h.printf(`<div id="%s">`, NotesThreadID)
		if len(notes) == 0 {
			h.print(`<p class="muted">No notes yet.</p></div>`)
			return
		}
		for _, n := range notes {
			author := "Unknown author"
			if n.AuthorName != nil {
				author = *n.AuthorName
			}
			h.printf(`<div class="note"><strong>%s</strong> <span class="muted">%s</span><div style="white-space:pre-wrap">%s</div></div>`,
				esc(author), esc(n.Timestamp.Format("2006-01-02 15:04")), esc(n.Note))
		}
		h.print(`</div>`)
	})
}
