// Package templates renders the dashboard's HTML. Components are built on
// templ so handlers can compose and render them with a request context.
package templates

import (
	"context"
	"fmt"
	"html"
	"io"

	"github.com/a-h/templ"

	"github.com/openqms/qmsboard/internal/store"
)

// DashboardParams carries everything the dashboard page needs.
type DashboardParams struct {
	Stats    store.Stats
	DemoMode bool
}

// Dashboard renders the full dashboard page.
func Dashboard(p DashboardParams) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		if err := writePageHead(w, "Training & QMS Dashboard"); err != nil {
			return err
		}
		if p.DemoMode {
			if _, err := io.WriteString(w,
				`<div class="banner warn">Demo mode: no database configured, imported data is held in memory only.</div>`); err != nil {
				return err
			}
		}
		if err := StatsCards(p.Stats).Render(ctx, w); err != nil {
			return err
		}
		if err := ImportPanel().Render(ctx, w); err != nil {
			return err
		}
		_, err := io.WriteString(w, `</main></body></html>`)
		return err
	})
}

// StatsCards renders the headline numbers grid.
func StatsCards(st store.Stats) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		cards := []struct {
			label string
			value int
		}{
			{"Employees", st.TotalEmployees},
			{"Training Assignments", st.TotalTrainingAssignments},
			{"Completed Training", st.CompletedTraining},
			{"Overdue Training", st.OverdueTraining},
			{"QMS Plans", st.TotalQMSUpdates},
			{"Completed QMS", st.CompletedQMS},
			{"QMS In Progress", st.InProgressQMS},
		}

		if _, err := io.WriteString(w, `<section class="stats">`); err != nil {
			return err
		}
		for _, c := range cards {
			if _, err := fmt.Fprintf(w,
				`<div class="card"><div class="value">%d</div><div class="label">%s</div></div>`,
				c.value, html.EscapeString(c.label)); err != nil {
				return err
			}
		}
		_, err := io.WriteString(w, `</section>`)
		return err
	})
}

// ImportPanel renders the upload form and template download links.
func ImportPanel() templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		_, err := io.WriteString(w, `<section class="import">
<h2>Import Spreadsheets</h2>
<p>Upload employee, training assignment, or QMS plan sheets. The file type is detected from the column headers.</p>
<form method="post" action="/api/import" enctype="multipart/form-data">
<input type="file" name="files" multiple accept=".xlsx,.csv">
<button type="submit">Import</button>
</form>
<h3>Templates</h3>
<ul>
<li><a href="/api/template/employees">Employee template</a></li>
<li><a href="/api/template/training">Training template</a></li>
<li><a href="/api/template/qms">QMS template</a></li>
</ul>
</section>`)
		return err
	})
}

// ErrorAlert renders an inline error fragment.
func ErrorAlert(message string) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		_, err := fmt.Fprintf(w, `<div class="banner error">%s</div>`, html.EscapeString(message))
		return err
	})
}

func writePageHead(w io.Writer, title string) error {
	_, err := fmt.Fprintf(w, `<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<meta name="viewport" content="width=device-width, initial-scale=1">
<title>%s</title>
<style>
body{font-family:system-ui,sans-serif;margin:0;background:#f8f9fa;color:#212529}
main{max-width:960px;margin:0 auto;padding:2rem 1rem}
.stats{display:grid;grid-template-columns:repeat(auto-fit,minmax(160px,1fr));gap:1rem;margin:1.5rem 0}
.card{background:#fff;border-radius:8px;padding:1rem;box-shadow:0 1px 3px rgba(0,0,0,.1)}
.card .value{font-size:2rem;font-weight:600}
.card .label{color:#6c757d;font-size:.85rem}
.banner{padding:.75rem 1rem;border-radius:6px;margin:1rem 0}
.banner.warn{background:#fff3cd;color:#664d03}
.banner.error{background:#f8d7da;color:#58151c}
.import{background:#fff;border-radius:8px;padding:1.5rem;box-shadow:0 1px 3px rgba(0,0,0,.1)}
</style>
</head>
<body><main><h1>%s</h1>`, html.EscapeString(title), html.EscapeString(title))
	return err
}
