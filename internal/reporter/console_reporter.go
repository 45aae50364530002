package reporter

import (
	"encoding/json"
	"fmt"
	"io"
	"text/template"
	"time"

	"github.com/aleister1102/changewatch/internal/datastore"
	"github.com/aleister1102/changewatch/internal/models"
	"github.com/aleister1102/changewatch/internal/pipeline"
)

// Format selects the console output encoding.
type Format string

const (
	FormatText Format = "text"
	FormatJSON Format = "json"
)

// ConsumerView is a discovered consumer together with the state of its cached profile.
type ConsumerView struct {
	Consumer models.Consumer `json:"consumer"`
	Cached   bool            `json:"cached"`
	CachedAt time.Time       `json:"cached_at,omitempty"`
	Fresh    bool            `json:"fresh"`
	Fallback bool            `json:"fallback"`
}

// ConsoleReporter writes cycle reports, consumer listings and history to a writer.
type ConsoleReporter struct {
	out    io.Writer
	format Format
	tmpl   *template.Template
}

// NewConsoleReporter parses the embedded templates.
func NewConsoleReporter(out io.Writer, format Format) (*ConsoleReporter, error) {
	switch format {
	case "", FormatText:
		format = FormatText
	case FormatJSON:
	default:
		return nil, fmt.Errorf("unknown output format %q", format)
	}

	tmpl, err := template.New("console").Funcs(templateFunctions()).ParseFS(templatesFS, "templates/*.tmpl")
	if err != nil {
		return nil, fmt.Errorf("failed to parse report templates: %w", err)
	}
	return &ConsoleReporter{out: out, format: format, tmpl: tmpl}, nil
}

// RenderCycle prints a cycle report.
func (r *ConsoleReporter) RenderCycle(report *pipeline.Report) error {
	if r.format == FormatJSON {
		return r.writeJSON(cycleJSON(report))
	}
	return r.tmpl.ExecuteTemplate(r.out, "cycle", report)
}

// RenderConsumers prints the discovered consumers.
func (r *ConsoleReporter) RenderConsumers(views []ConsumerView) error {
	if r.format == FormatJSON {
		return r.writeJSON(views)
	}
	return r.tmpl.ExecuteTemplate(r.out, "consumers", views)
}

// RenderHistory prints recent cycles, newest first.
func (r *ConsoleReporter) RenderHistory(entries []datastore.CycleHistoryEntry) error {
	if r.format == FormatJSON {
		return r.writeJSON(entries)
	}
	return r.tmpl.ExecuteTemplate(r.out, "history", entries)
}

// RenderDecision prints a single decision, used by the test alert.
func (r *ConsoleReporter) RenderDecision(decision models.Decision) error {
	if r.format == FormatJSON {
		return r.writeJSON(decision)
	}
	return r.tmpl.ExecuteTemplate(r.out, "cycle", &pipeline.Report{
		CycleID:  "test-alert",
		Mode:     pipeline.ModeFull,
		Decision: &decision,
	})
}

func (r *ConsoleReporter) writeJSON(v interface{}) error {
	enc := json.NewEncoder(r.out)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

type cycleReportJSON struct {
	CycleID         string                     `json:"cycle_id"`
	Mode            pipeline.Mode              `json:"mode"`
	StartedAt       time.Time                  `json:"started_at"`
	FinishedAt      time.Time                  `json:"finished_at"`
	States          []pipeline.CycleState      `json:"states"`
	Changes         []models.ChangeRecord      `json:"changes"`
	Unavailable     []models.ChangeRecord      `json:"unavailable"`
	ChangeSets      []models.ProviderChangeSet `json:"change_sets"`
	Profiles        []models.DependencyProfile `json:"profiles,omitempty"`
	Decision        *models.Decision           `json:"decision,omitempty"`
	DiscoveryError  string                     `json:"discovery_error,omitempty"`
	NotifyError     string                     `json:"notification_error,omitempty"`
	PersistenceErrs []string                   `json:"persistence_errors,omitempty"`
}

func cycleJSON(report *pipeline.Report) cycleReportJSON {
	out := cycleReportJSON{
		CycleID:     report.CycleID,
		Mode:        report.Mode,
		StartedAt:   report.StartedAt,
		FinishedAt:  report.FinishedAt,
		States:      report.States,
		Changes:     make([]models.ChangeRecord, 0, len(report.Changes)),
		Unavailable: report.Unavailable,
		ChangeSets:  report.ChangeSets,
		Decision:    report.Decision,
	}
	// Page text is for the classifier only.
	for _, c := range report.Changes {
		c.Content = ""
		out.Changes = append(out.Changes, c)
	}
	for _, p := range report.Profiles {
		out.Profiles = append(out.Profiles, p.Profile)
	}
	if report.DiscoveryErr != nil {
		out.DiscoveryError = report.DiscoveryErr.Error()
	}
	if report.NotificationErr != nil {
		out.NotifyError = report.NotificationErr.Error()
	}
	for _, err := range report.PersistenceErrs() {
		out.PersistenceErrs = append(out.PersistenceErrs, err.Error())
	}
	return out
}
