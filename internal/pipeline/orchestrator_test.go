package pipeline

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/aleister1102/changewatch/internal/analysis"
	"github.com/aleister1102/changewatch/internal/config"
	"github.com/aleister1102/changewatch/internal/datastore"
	"github.com/aleister1102/changewatch/internal/models"
	"github.com/aleister1102/changewatch/internal/monitor"
	"github.com/aleister1102/changewatch/internal/normalizer"
	"github.com/aleister1102/changewatch/internal/notifier"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stageKind string

const (
	stageClassify stageKind = "classify"
	stageResolve  stageKind = "resolve"
	stageDecide   stageKind = "decide"
)

type stageReply struct {
	text string
	err  error
}

// routingClient answers each stage from its own reply and counts calls per stage.
type routingClient struct {
	mu      sync.Mutex
	replies map[stageKind]stageReply
	calls   map[stageKind][]string
}

func newRoutingClient(replies map[stageKind]stageReply) *routingClient {
	return &routingClient{replies: replies, calls: make(map[stageKind][]string)}
}

func stageOf(instructions string) stageKind {
	switch {
	case strings.Contains(instructions, "documentation pages"):
		return stageClassify
	case strings.Contains(instructions, "uses external APIs"):
		return stageResolve
	default:
		return stageDecide
	}
}

func (c *routingClient) Complete(_ context.Context, instructions, payload string) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	stage := stageOf(instructions)
	c.calls[stage] = append(c.calls[stage], payload)
	r := c.replies[stage]
	return r.text, r.err
}

func (c *routingClient) count(stage stageKind) int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.calls[stage])
}

type staticConsumers []models.Consumer

func (s staticConsumers) Consumers(context.Context) ([]models.Consumer, error) {
	return s, nil
}

type recordingNotifier struct {
	alerts []notifier.Alert
	err    error
}

func (n *recordingNotifier) Notify(_ context.Context, alert notifier.Alert) error {
	n.alerts = append(n.alerts, alert)
	return n.err
}

type failingStore struct {
	*datastore.StateStore
	saves int
}

func (s *failingStore) Save(context.Context, *models.CheckState) error {
	s.saves++
	return errors.New("disk full")
}

const (
	pageA = "<html><body><h1>Changelog</h1><p>Nothing new here.</p></body></html>"
	pageB = "<html><body><h1>Changelog</h1><p>Assistants v1 is deprecated.</p></body></html>"
)

type fixture struct {
	server    *httptest.Server
	registry  *config.Registry
	store     *datastore.StateStore
	client    *routingClient
	notifier  *recordingNotifier
	consumers staticConsumers
	now       time.Time
}

func newFixture(t *testing.T, replies map[stageKind]stageReply) *fixture {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("/a", func(w http.ResponseWriter, r *http.Request) { _, _ = w.Write([]byte(pageA)) })
	mux.HandleFunc("/b", func(w http.ResponseWriter, r *http.Request) { _, _ = w.Write([]byte(pageB)) })
	server := httptest.NewServer(mux)
	t.Cleanup(server.Close)

	return &fixture{
		server: server,
		registry: &config.Registry{Providers: map[string]config.Provider{
			"openai": {Name: "OpenAI", Sources: []config.Source{
				{URL: server.URL + "/a", Description: "page A"},
				{URL: server.URL + "/b", Description: "page B"},
			}},
		}},
		store:    datastore.NewStateStore(filepath.Join(t.TempDir(), "state.json"), zerolog.Nop()),
		client:   newRoutingClient(replies),
		notifier: &recordingNotifier{},
		consumers: staticConsumers{
			{Name: "billing", Purpose: "charges customers", Dependencies: []string{"openai"}},
		},
		now: time.Date(2024, 6, 2, 9, 0, 0, 0, time.UTC),
	}
}

// seed stores page A with its real fingerprint and page B with a stale one.
func (f *fixture) seed(t *testing.T) {
	t.Helper()
	cfg := config.NewDefaultMonitorConfig()
	state := models.NewCheckState()
	state.PutResource("openai", f.server.URL+"/a", models.Resource{
		Fingerprint: normalizer.Fingerprint([]byte(pageA), cfg.FingerprintWidth),
		StatusCode:  200,
	})
	state.PutResource("openai", f.server.URL+"/b", models.Resource{Fingerprint: "abc", StatusCode: 200})
	require.NoError(t, f.store.Save(context.Background(), state))
}

func (f *fixture) orchestrator(t *testing.T, store StateStore) *Orchestrator {
	t.Helper()
	cfg := config.NewDefaultGlobalConfig()
	fetcher, err := monitor.NewFetcher(cfg.MonitorConfig, zerolog.Nop())
	require.NoError(t, err)

	now := func() time.Time { return f.now }
	o, err := NewOrchestrator(Components{
		Detector:   monitor.NewDetector(fetcher, cfg.MonitorConfig, now, zerolog.Nop()),
		Classifier: analysis.NewClassifier(f.client, zerolog.Nop()),
		NewResolver: func(state *models.CheckState) DependencyResolver {
			return analysis.NewResolver(f.client, datastore.NewProfileCache(state, cfg.AnalysisConfig.FreshnessWindow(), false), zerolog.Nop())
		},
		Decider:   analysis.NewDecider(f.client, zerolog.Nop()),
		Consumers: f.consumers,
		Store:     store,
		Notifier:  f.notifier,
		Now:       now,
	}, zerolog.Nop())
	require.NoError(t, err)
	return o
}

const (
	classifyOneChange = `{"changes":[{"title":"Assistants v1 deprecated","summary":"v1 goes away","type":"deprecation","relevance":"high"}],"no_changes_detected":false}`
	resolveBilling    = `{"purpose":"charges customers","dependencies":[{"api":"openai","endpoints":["assistants"],"critical":true}]}`
	decideUrgent      = `{"action":"urgent","summary":"billing uses Assistants v1","affected_consumers":["billing"],"recommended_action":"migrate","details":[{"consumer":"billing","changes":["Assistants v1 deprecated"],"impact":"high"}]}`
)

func TestOrchestrator_EndToEnd(t *testing.T) {
	f := newFixture(t, map[stageKind]stageReply{
		stageClassify: {text: classifyOneChange},
		stageResolve:  {text: resolveBilling},
		stageDecide:   {text: decideUrgent},
	})
	f.seed(t)

	report := f.orchestrator(t, f.store).Run(context.Background(), ModeFull, f.registry)

	require.NoError(t, report.Err())
	assert.Equal(t, 1, f.client.count(stageClassify), "only page B is classified")
	assert.Contains(t, f.client.calls[stageClassify][0], "Assistants v1 is deprecated")

	require.Len(t, report.Changes, 1)
	assert.Equal(t, models.ChangeKindModified, report.Changes[0].Kind)
	assert.Equal(t, "abc", report.Changes[0].PreviousHash)

	require.Len(t, report.ChangeSets, 1)
	assert.False(t, report.ChangeSets[0].NoChangesDetected)

	require.Len(t, report.Profiles, 1)
	assert.Equal(t, analysis.ProfileComputed, report.Profiles[0].Source)

	require.NotNil(t, report.Decision)
	assert.Equal(t, models.ActionUrgent, report.Decision.Action)
	require.Len(t, f.notifier.alerts, 1)
	assert.Equal(t, report.CycleID, f.notifier.alerts[0].CycleID)

	assert.Equal(t, []CycleState{StateIdle, StateDetecting, StateClassifying, StateResolving, StateDeciding, StateReporting, StateDone}, report.States)

	persisted := f.store.Load(context.Background())
	res, ok := persisted.Resource("openai", f.server.URL+"/b")
	require.True(t, ok)
	assert.Equal(t, report.Changes[0].CurrentHash, res.Fingerprint)
	_, cached := persisted.CacheEntry("billing")
	assert.True(t, cached)
	assert.Equal(t, f.now, persisted.LastRun())
}

func TestOrchestrator_ClassifierReportsNothing(t *testing.T) {
	f := newFixture(t, map[stageKind]stageReply{
		stageClassify: {text: `{"changes":[],"no_changes_detected":true}`},
		stageResolve:  {text: resolveBilling},
		stageDecide:   {text: decideUrgent},
	})
	f.seed(t)

	report := f.orchestrator(t, f.store).Run(context.Background(), ModeFull, f.registry)

	require.Len(t, report.ChangeSets, 1)
	assert.True(t, report.ChangeSets[0].NoChangesDetected)
	assert.Equal(t, models.ActionNone, report.Decision.Action)
	assert.Equal(t, 0, f.client.count(stageDecide))
	assert.Empty(t, f.notifier.alerts)
}

func TestOrchestrator_Stage1FailureContinues(t *testing.T) {
	f := newFixture(t, map[stageKind]stageReply{
		stageClassify: {text: "The model is overloaded, please try again."},
		stageResolve:  {text: resolveBilling},
		stageDecide:   {text: decideUrgent},
	})
	f.seed(t)

	report := f.orchestrator(t, f.store).Run(context.Background(), ModeFull, f.registry)

	require.Len(t, report.ChangeSets, 1)
	set := report.ChangeSets[0]
	assert.Empty(t, set.Changes)
	assert.True(t, set.NoChangesDetected)
	assert.Equal(t, []string{"openai"}, report.FailedProviders())
	assert.Equal(t, models.ActionNone, report.Decision.Action)
	assert.Equal(t, StateDone, report.State())
	assert.NoError(t, report.Err())
}

func TestOrchestrator_Stage3FailureNotifies(t *testing.T) {
	f := newFixture(t, map[stageKind]stageReply{
		stageClassify: {text: classifyOneChange},
		stageResolve:  {err: errors.New("connection refused")},
		stageDecide:   {err: errors.New("connection refused")},
	})
	f.seed(t)

	report := f.orchestrator(t, f.store).Run(context.Background(), ModeFull, f.registry)

	require.NotNil(t, report.Decision)
	assert.Equal(t, models.ActionNotify, report.Decision.Action)
	assert.True(t, report.Decision.Fallback)
	assert.Equal(t, []string{"billing"}, report.Decision.AffectedConsumers)
	assert.Equal(t, analysis.ProfileFallback, report.Profiles[0].Source)
	require.Len(t, f.notifier.alerts, 1)
}

func TestOrchestrator_NoChangesShortCircuits(t *testing.T) {
	f := newFixture(t, map[stageKind]stageReply{
		stageClassify: {text: classifyOneChange},
		stageResolve:  {text: resolveBilling},
		stageDecide:   {text: decideUrgent},
	})
	o := f.orchestrator(t, f.store)

	// First cycle establishes the baseline, the second sees nothing new.
	first := o.Run(context.Background(), ModeFull, f.registry)
	require.Len(t, first.Changes, 2)
	classifyCalls := f.client.count(stageClassify)

	second := o.Run(context.Background(), ModeFull, f.registry)
	assert.Empty(t, second.Changes)
	assert.Equal(t, classifyCalls, f.client.count(stageClassify))
	assert.False(t, second.Visited(StateClassifying))
	assert.False(t, second.Visited(StateResolving))
	assert.True(t, second.Visited(StateDeciding))
	assert.Equal(t, models.ActionNone, second.Decision.Action)
	assert.Empty(t, second.Decision.AffectedConsumers)
}

func TestOrchestrator_SourcesOnly(t *testing.T) {
	f := newFixture(t, map[stageKind]stageReply{
		stageClassify: {text: classifyOneChange},
		stageResolve:  {text: resolveBilling},
		stageDecide:   {text: decideUrgent},
	})
	f.seed(t)

	report := f.orchestrator(t, f.store).Run(context.Background(), ModeSourcesOnly, f.registry)

	assert.Equal(t, 1, f.client.count(stageClassify))
	assert.Equal(t, 0, f.client.count(stageResolve))
	assert.Equal(t, 0, f.client.count(stageDecide))
	assert.Nil(t, report.Decision)
	assert.Empty(t, f.notifier.alerts)
	assert.Equal(t, []CycleState{StateIdle, StateDetecting, StateClassifying, StateReporting, StateDone}, report.States)

	persisted := f.store.Load(context.Background())
	res, _ := persisted.Resource("openai", f.server.URL+"/b")
	assert.NotEqual(t, "abc", res.Fingerprint)
}

func TestOrchestrator_PersistenceFailureIsReported(t *testing.T) {
	f := newFixture(t, map[stageKind]stageReply{
		stageClassify: {text: classifyOneChange},
		stageResolve:  {text: resolveBilling},
		stageDecide:   {text: decideUrgent},
	})
	store := &failingStore{StateStore: f.store}

	report := f.orchestrator(t, store).Run(context.Background(), ModeFull, f.registry)

	assert.Equal(t, 2, store.saves, "saved after resolving and after reporting")
	errs := report.PersistenceErrs()
	require.Len(t, errs, 2)
	assert.Contains(t, errs[0].Error(), "checkpoint resolving")
	assert.Contains(t, errs[1].Error(), "checkpoint reporting")
	require.Error(t, report.Err())
	assert.Contains(t, report.Err().Error(), "multiple errors occurred")
	assert.NotNil(t, report.Decision)
}

func TestOrchestrator_NotificationFailureIsNotFatal(t *testing.T) {
	f := newFixture(t, map[stageKind]stageReply{
		stageClassify: {text: classifyOneChange},
		stageResolve:  {text: resolveBilling},
		stageDecide:   {text: decideUrgent},
	})
	f.seed(t)
	f.notifier.err = errors.New("webhook down")

	report := f.orchestrator(t, f.store).Run(context.Background(), ModeFull, f.registry)

	assert.Error(t, report.NotificationErr)
	assert.NoError(t, report.Err())
	assert.Equal(t, StateDone, report.State())
}

func TestParseMode(t *testing.T) {
	m, err := ParseMode("full")
	require.NoError(t, err)
	assert.Equal(t, ModeFull, m)
	_, err = ParseMode("partial")
	assert.Error(t, err)
}

func TestNewOrchestrator_RequiresCoreComponents(t *testing.T) {
	_, err := NewOrchestrator(Components{}, zerolog.Nop())
	assert.Error(t, err)
}
