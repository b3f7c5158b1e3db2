// pkg/ui/table.go
package ui

import (
	"fmt"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/penkit-sh/penkit/pkg/engine"
	"github.com/penkit-sh/penkit/pkg/session"
	"github.com/penkit-sh/penkit/pkg/stringutil"
	"github.com/penkit-sh/penkit/pkg/toolexec"
)

const timestampLayout = "2006-01-02 15:04:05"

// Column caps keep list views on one line per row; full text is available
// from the detail commands.
const (
	descriptionMax = 60
	commandMax     = 48
)

// Table writes headers and rows as an aligned two-space table.
func (p *Printer) Table(headers []string, rows [][]string) {
	w := tabwriter.NewWriter(p.out, 0, 0, 2, ' ', 0)

	headerLine := make([]string, len(headers))
	for i, h := range headers {
		h = strings.ToUpper(h)
		if p.color {
			h = headerStyle.Render(h)
		}
		headerLine[i] = h
	}
	fmt.Fprintln(w, strings.Join(headerLine, "\t"))

	for _, row := range rows {
		fmt.Fprintln(w, strings.Join(row, "\t"))
	}

	w.Flush()
}

func (p *Printer) sectionTitle(title string) {
	if p.color {
		title = headerStyle.Render(title)
	}
	fmt.Fprintf(p.out, "%s\n\n", title)
}

// ModulesTable lists registered modules with their version and summary.
func (p *Printer) ModulesTable(mods []engine.Metadata) {
	p.sectionTitle("Available modules")
	rows := make([][]string, 0, len(mods))
	for _, m := range mods {
		rows = append(rows, []string{m.Name, m.Version, stringutil.Ellipsis(m.Description, descriptionMax)})
	}
	p.Table([]string{"name", "version", "description"}, rows)
	p.Println()
}

// OptionsTable lists the declared options of a module with their current
// values, declaration order preserved.
func (p *Printer) OptionsTable(module string, specs []engine.OptionSpec, values map[string]any) {
	p.sectionTitle(fmt.Sprintf("Module options (%s)", module))
	rows := make([][]string, 0, len(specs))
	for _, spec := range specs {
		value := ""
		if v, ok := values[spec.Name]; ok && v != nil {
			value = fmt.Sprintf("%v", v)
		}
		required := "no"
		if spec.Required {
			required = "yes"
		}
		rows = append(rows, []string{spec.Name, value, required, spec.Description})
	}
	p.Table([]string{"name", "current setting", "required", "description"}, rows)
	p.Println()
}

// SessionsTable lists sessions, marking the current one.
func (p *Printer) SessionsTable(sessions []*session.Session, currentID string) {
	p.sectionTitle("Sessions")
	rows := make([][]string, 0, len(sessions))
	for _, s := range sessions {
		marker := ""
		if s.ID == currentID {
			marker = "*"
		}
		module := "-"
		if mc := s.Active(); mc != nil {
			module = mc.Name()
		}
		rows = append(rows, []string{
			marker,
			s.ID,
			module,
			fmt.Sprintf("%d", len(s.History())),
			s.CreatedAt.Format(timestampLayout),
		})
	}
	p.Table([]string{"", "id", "module", "runs", "created"}, rows)
	p.Println()
}

// HistoryTable lists the execution history of a session, oldest first.
func (p *Printer) HistoryTable(entries []*toolexec.ExecutionResult) {
	p.sectionTitle("Execution history")
	rows := make([][]string, 0, len(entries))
	for i, e := range entries {
		status := "ok"
		if !e.Success {
			status = "failed"
		}
		rows = append(rows, []string{
			fmt.Sprintf("%d", i+1),
			e.Tool,
			stringutil.Ellipsis(strings.Join(e.Command, " "), commandMax),
			fmt.Sprintf("%d", e.ExitCode),
			e.Duration.Round(time.Millisecond).String(),
			e.StartedAt.Format(timestampLayout),
			status,
		})
	}
	p.Table([]string{"#", "tool", "command", "exit", "duration", "started", "status"}, rows)
	p.Println()
}
