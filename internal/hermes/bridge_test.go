package hermes

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"math"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MikeSquared-Agency/Alloy/internal/dataset"
	"github.com/MikeSquared-Agency/Alloy/internal/selection"
)

type published struct {
	subject string
	data    interface{}
}

type recordingClient struct {
	published []published
	handlers  map[string]func(string, []byte)
}

func newRecordingClient() *recordingClient {
	return &recordingClient{handlers: make(map[string]func(string, []byte))}
}

func (c *recordingClient) Publish(subject string, data interface{}) error {
	c.published = append(c.published, published{subject, data})
	return nil
}

func (c *recordingClient) Subscribe(subject string, handler func(string, []byte)) error {
	c.handlers[subject] = handler
	return nil
}

func (c *recordingClient) Close() {}

type staticSource []selection.Record

func (s staticSource) Load(context.Context) ([]selection.Record, error) { return s, nil }

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func testRegistry() *dataset.Registry {
	return dataset.NewRegistry(staticSource{
		{ID: 0, YieldStrength: 250, UTS: 400, Density: selection.DefaultDensity},
		{ID: 1, YieldStrength: 500, UTS: 600, Density: selection.DefaultDensity},
	}, "test.xlsx", discardLogger())
}

func TestSubjectsCoveredByStream(t *testing.T) {
	for _, subject := range []string{SubjectDatasetLoaded, SubjectDatasetReload, SubjectSelectionEvaluated} {
		covered := false
		for _, pattern := range StreamSubjects {
			if strings.HasPrefix(subject, strings.TrimSuffix(pattern, ">")) {
				covered = true
			}
		}
		assert.True(t, covered, "subject %s not captured by stream", subject)
	}
}

func TestAnnounceLoads(t *testing.T) {
	c := newRecordingClient()
	reg := testRegistry()
	AnnounceLoads(c, reg, discardLogger())

	require.NoError(t, reg.Reload(context.Background()))
	require.Len(t, c.published, 1)
	assert.Equal(t, SubjectDatasetLoaded, c.published[0].subject)

	ev, ok := c.published[0].data.(DatasetLoadedEvent)
	require.True(t, ok)
	assert.Equal(t, int64(1), ev.Version)
	assert.Equal(t, 2, ev.Records)
	assert.Equal(t, 250.0, ev.MinYield)
	assert.Equal(t, 600.0, ev.MaxUTS)
}

func TestHandleReloadRequests(t *testing.T) {
	c := newRecordingClient()
	reg := testRegistry()
	require.NoError(t, HandleReloadRequests(context.Background(), c, reg, discardLogger()))

	handler, ok := c.handlers[SubjectDatasetReload]
	require.True(t, ok)

	payload, _ := json.Marshal(DatasetReloadRequest{RequestedBy: "ops"})
	handler(SubjectDatasetReload, payload)
	require.NotNil(t, reg.Current())
	assert.Equal(t, int64(1), reg.Current().Version)

	handler(SubjectDatasetReload, nil)
	assert.Equal(t, int64(2), reg.Current().Version)

	handler(SubjectDatasetReload, []byte("{not json"))
	assert.Equal(t, int64(2), reg.Current().Version, "malformed request must not reload")
}

func TestNewSelectionEvaluatedEvent(t *testing.T) {
	records := []selection.Record{
		{ID: 0, YieldStrength: 250, UTS: 400, Density: selection.DefaultDensity},
		{ID: 1, YieldStrength: 500, UTS: 600, Density: selection.DefaultDensity},
	}
	at := time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC)

	res, err := selection.Evaluate(records, selection.Requirement{RequiredYield: 200, RequiredUTS: 300, FactorOfSafety: 1.5})
	require.NoError(t, err)
	ev := NewSelectionEvaluatedEvent("eval-1", 3, res, at)
	assert.Equal(t, "eval-1", ev.EvaluationID)
	assert.Equal(t, int64(3), ev.DatasetVersion)
	assert.Equal(t, 2, ev.AdmittedCount)
	assert.Equal(t, 2, ev.Total)
	require.NotNil(t, ev.TopGradeID)
	assert.Equal(t, 1, *ev.TopGradeID)
	require.NotNil(t, ev.AllowableStress)
	assert.InDelta(t, 133.333, *ev.AllowableStress, 1e-3)

	res, err = selection.Evaluate(records, selection.Requirement{RequiredYield: 600, RequiredUTS: 300, FactorOfSafety: 1.5})
	require.NoError(t, err)
	ev = NewSelectionEvaluatedEvent("eval-2", 3, res, at)
	assert.Zero(t, ev.AdmittedCount)
	assert.Nil(t, ev.TopGradeID)
}

func TestSelectionEventWithOverflowingAllowableStress(t *testing.T) {
	records := []selection.Record{{ID: 0, YieldStrength: 250, UTS: 400, Density: selection.DefaultDensity}}
	res, err := selection.Evaluate(records, selection.Requirement{RequiredYield: 1e308, RequiredUTS: 0, FactorOfSafety: 1e-10})
	require.NoError(t, err)
	require.True(t, math.IsInf(res.AllowableStress, 1))

	ev := NewSelectionEvaluatedEvent("eval-3", 1, res, time.Now())
	assert.Nil(t, ev.AllowableStress)

	data, err := json.Marshal(ev)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"allowable_stress":null`)
}
