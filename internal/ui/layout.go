// Package ui renders the ClaimBridge admin pages and the HTML fragments
// datastar swaps into them by element id.
package ui

import (
	"context"
	"encoding/json"
	"fmt"
	"io"

	"github.com/a-h/templ"
	"github.com/claimbridge/claimbridge/internal/domain"
)

const datastarScript = "https://cdn.jsdelivr.net/gh/starfederation/datastar@1.0.0-RC.6/bundles/datastar.js"

// Element ids targeted by fragment responses.
const (
	FlashID       = "flash"
	ClaimsTableID = "claims-table"
	ClaimStatusID = "claim-status"
	NotesThreadID = "notes-thread"
	AdminsTableID = "admins-table"
)

var esc = templ.EscapeString[string]

// htmlWriter keeps the first write error so components can emit markup
// without checking every call.
type htmlWriter struct {
	w   io.Writer
	err error
}

func (h *htmlWriter) print(s string) {
	if h.err != nil {
		return
	}
	_, h.err = io.WriteString(h.w, s)
}

func (h *htmlWriter) printf(format string, args ...any) {
	if h.err != nil {
		return
	}
	_, h.err = fmt.Fprintf(h.w, format, args...)
}

func (h *htmlWriter) render(ctx context.Context, c templ.Component) {
	if h.err != nil || c == nil {
		return
	}
	h.err = c.Render(ctx, h.w)
}

func component(fn func(ctx context.Context, h *htmlWriter)) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		h := &htmlWriter{w: w}
		fn(ctx, h)
		return h.err
	})
}

// signalsAttr renders a data-signals attribute holding the initial values.
func signalsAttr(signals map[string]any) string {
	raw, err := json.Marshal(signals)
	if err != nil {
		return ""
	}
	return fmt.Sprintf(` data-signals="%s"`, esc(string(raw)))
}

func page(title string, identity domain.Identity, body templ.Component) templ.Component {
	return component(func(ctx context.Context, h *htmlWriter) {
		h.print("<!doctype html>\n<html lang=\"en\"><head><meta charset=\"utf-8\">")
		h.print(`<meta name="viewport" content="width=device-width, initial-scale=1">`)
		h.printf("<title>%s · ClaimBridge</title>", esc(title))
		h.printf(`<script type="module" src="%s"></script>`, datastarScript)
		h.print(`<style>
body{font-family:system-ui,sans-serif;margin:0;background:#f9fafb;color:#111827}
header{background:#fff;box-shadow:0 1px 2px rgba(0,0,0,.08);padding:1rem 2rem;display:flex;justify-content:space-between;align-items:center}
main{max-width:72rem;margin:0 auto;padding:1.5rem 2rem}
table{width:100%;border-collapse:collapse;background:#fff}
th,td{text-align:left;padding:.5rem .75rem;border-bottom:1px solid #e5e7eb}
.card{background:#fff;border-radius:.5rem;box-shadow:0 1px 2px rgba(0,0,0,.08);padding:1.25rem;margin-bottom:1.25rem}
.badge{padding:.1rem .5rem;border-radius:999px;font-size:.75rem}
.badge-new{background:#dbeafe}.badge-in-review{background:#fef3c7}.badge-closed{background:#e5e7eb}
.flash-info{background:#ecfdf5;padding:.5rem 1rem}.flash-error{background:#fef2f2;padding:.5rem 1rem}
.note{border-left:4px solid #6366f1;padding:.25rem .75rem;margin-bottom:.75rem}
.muted{color:#6b7280;font-size:.85rem}
</style></head><body>`)
		h.printf(`<header><a href="/dashboard"><strong>ClaimBridge Admin Portal</strong></a><div>%s</div></header>`, roleSwitcher(identity))
		h.print("<main>")
		h.render(ctx, Flash("", ""))
		h.render(ctx, body)
		h.print("</main></body></html>")
	})
}

// roleSwitcher posts a plain form so it works without javascript.
func roleSwitcher(identity domain.Identity) string {
	other, label := domain.RoleSuperAdmin, "Switch to Super Admin"
	if identity.IsSuperAdmin() {
		other, label = domain.RoleAdmin, "Switch to Admin"
	}
	return fmt.Sprintf(
		`<span class="muted">%s (%s)</span> <form method="post" action="/role" style="display:inline"><input type="hidden" name="role" value="%s"><button type="submit">%s</button></form>`,
		esc(identity.Name), esc(string(identity.Role)), esc(string(other)), esc(label),
	)
}

// Flash is the status line above page content. An empty message renders an
// empty placeholder that later responses replace.
func Flash(message, kind string) templ.Component {
	return component(func(_ context.Context, h *htmlWriter) {
		if message == "" {
			h.printf(`<div id="%s"></div>`, FlashID)
			return
		}
		if kind != "error" {
			kind = "info"
		}
		h.printf(`<div id="%s" class="flash-%s" role="status">%s</div>`, FlashID, kind, esc(message))
	})
}

func LoginPage(identity domain.Identity) templ.Component {
	body := component(func(_ context.Context, h *htmlWriter) {
		h.print(`<div class="card"><h2>Demo login</h2><p class="muted">Choose who to act as. This is not authentication.</p>`)
		for _, u := range domain.DemoUsers {
			h.printf(
				`<form method="post" action="/role"><input type="hidden" name="role" value="%s"><button type="submit">Continue as %s (%s)</button></form>`,
				esc(string(u.Role)), esc(u.Name), esc(string(u.Role)),
			)
		}
		h.print(`</div>`)
	})
	return page("Login", identity, body)
}

func ForbiddenPage(identity domain.Identity) templ.Component {
	body := component(func(_ context.Context, h *htmlWriter) {
		h.print(`<div class="card"><h2>Access denied</h2><p>Only super-admins can manage administrators.</p><a href="/dashboard">Back to dashboard</a></div>`)
	})
	return page("Access denied", identity, body)
}

func NotFoundPage(identity domain.Identity, message string) templ.Component {
	body := component(func(_ context.Context, h *htmlWriter) {
		h.printf(`<div class="card"><h2>%s</h2><a href="/dashboard">Back to dashboard</a></div>`, esc(message))
	})
	return page("Not found", identity, body)
}
