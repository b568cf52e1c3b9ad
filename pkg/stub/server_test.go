package stub

import (
	"context"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tableflip.dev/vidmark/pkg/api"
	"tableflip.dev/vidmark/pkg/summary"
)

func newTestServer(t *testing.T, cfg Config) (*httptest.Server, *Store) {
	t.Helper()
	st := NewStore()
	require.NoError(t, st.Open())
	t.Cleanup(func() { _ = st.Close() })

	srv := New(cfg, st)
	ts := httptest.NewServer(srv.Handler())
	t.Cleanup(ts.Close)
	return ts, st
}

func testClient(ts *httptest.Server) *api.Client {
	return api.NewClient(api.Config{BaseURL: ts.URL})
}

func validUpdate() summary.VideoSummary {
	return summary.VideoSummary{
		BulletPoints: []summary.BulletPoint{
			{Timestamp: "00:10", Text: "One", Duration: 30, Confidence: 0.9},
			{Timestamp: "00:40", Text: "Two", Duration: 30, Confidence: 0.8},
			{Timestamp: "01:10", Text: "Three", Duration: 30, Confidence: 0.7},
		},
		MainThemes: []string{"demo"},
	}
}

func TestSummaryFixtureServed(t *testing.T) {
	ts, _ := newTestServer(t, Config{})
	sum, err := testClient(ts).Summary(context.Background(), "demo")
	require.NoError(t, err)
	assert.GreaterOrEqual(t, len(sum.BulletPoints), 3)
	assert.NotEmpty(t, sum.MainThemes)
}

func TestUnknownVideoIs404(t *testing.T) {
	ts, _ := newTestServer(t, Config{})
	_, err := testClient(ts).Summary(context.Background(), "nope")
	require.Error(t, err)

	var serr *api.StatusError
	require.ErrorAs(t, err, &serr)
	assert.Equal(t, 404, serr.StatusCode)
}

func TestMetaProbeCompletesAfterDelay(t *testing.T) {
	ts, st := newTestServer(t, Config{ProbeDelay: 50 * time.Millisecond})
	require.NoError(t, st.Register("fresh", validUpdate(), 200))

	client := testClient(ts)
	meta, err := client.Meta(context.Background(), "fresh")
	require.NoError(t, err)
	assert.False(t, meta.Probed, "probe must still be running right after registration")

	time.Sleep(60 * time.Millisecond)

	meta, err = client.Meta(context.Background(), "fresh")
	require.NoError(t, err)
	assert.True(t, meta.Probed)
	assert.Equal(t, 200.0, meta.DurationSeconds)
}

func TestUpdateBelowMinimumRejected(t *testing.T) {
	ts, _ := newTestServer(t, Config{})
	short := summary.VideoSummary{
		BulletPoints: validUpdate().BulletPoints[:2],
	}
	_, err := testClient(ts).UpdateBulletPoints(context.Background(), "demo", short)
	require.Error(t, err)

	var serr *api.StatusError
	require.ErrorAs(t, err, &serr)
	assert.Equal(t, 422, serr.StatusCode)
	assert.Contains(t, serr.Message, "at least 3 bullet points")
}

func TestUpdateAndJobLifecycle(t *testing.T) {
	ts, _ := newTestServer(t, Config{})
	client := testClient(ts)

	job, err := client.UpdateBulletPoints(context.Background(), "demo", validUpdate())
	require.NoError(t, err)
	assert.Equal(t, api.JobPending, job.Status)

	done, err := client.AwaitJob(context.Background(), job.ID, time.Millisecond, nil)
	require.NoError(t, err)
	assert.Equal(t, api.JobCompleted, done.Status)
	assert.Equal(t, 100, done.Progress)

	// The accepted update replaced the stored summary.
	sum, err := client.Summary(context.Background(), "demo")
	require.NoError(t, err)
	require.Len(t, sum.BulletPoints, 3)
	assert.Equal(t, "One", sum.BulletPoints[0].Text)
}

func TestRateLimitReturns429(t *testing.T) {
	ts, _ := newTestServer(t, Config{Rate: 1})
	client := testClient(ts)

	// Burst past the limiter. The first couple of requests fit the
	// bucket; one of the rest must be rejected.
	var limited bool
	for i := 0; i < 10; i++ {
		_, err := client.Summary(context.Background(), "demo")
		if err != nil {
			var serr *api.StatusError
			if assert.ErrorAs(t, err, &serr) {
				assert.Equal(t, 429, serr.StatusCode)
				limited = true
			}
			break
		}
	}
	assert.True(t, limited, "expected the burst to trip the rate limiter")
}
