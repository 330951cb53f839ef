package modelservice

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tildelab/tildes-backend/internal/config"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	cfg := &config.Config{
		ModelServiceURL:   srv.URL,
		ModelBypassHeader: "Bypass-Tunnel-Reminder",
		ModelBypassValue:  "1",
		ModelCallTimeout:  2 * time.Second,
	}
	return NewClient(cfg, zerolog.Nop())
}

func TestProvisionSendsBypassHeader(t *testing.T) {
	var gotMethod, gotPath, gotHeader string
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotMethod = r.Method
		gotPath = r.URL.Path
		gotHeader = r.Header.Get("Bypass-Tunnel-Reminder")
		w.WriteHeader(http.StatusCreated)
	})

	err := client.Provision(context.Background(), "Ana_ABC123_20260101000000")
	require.NoError(t, err)
	assert.Equal(t, http.MethodPost, gotMethod)
	assert.Equal(t, "/models/Ana_ABC123_20260101000000", gotPath)
	assert.Equal(t, "1", gotHeader)
}

func TestTrainDecodesTriples(t *testing.T) {
	var gotBody map[string]string
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotBody))
		_ = json.NewEncoder(w).Encode([][]string{
			{"id-1", "tierra", "diphthong"},
			{"id-2", "país", "hiatus"},
		})
	})

	triples, err := client.Train(context.Background(), "h", map[string]string{"tierra": "diphthong"})
	require.NoError(t, err)
	assert.Equal(t, map[string]string{"tierra": "diphthong"}, gotBody)
	require.Len(t, triples, 2)
	assert.Equal(t, []string{"id-1", "tierra", "diphthong"}, triples[0])
}

func TestTestModelsSendsNamesAndDecodesMetrics(t *testing.T) {
	var gotBody map[string][]string
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/models/test", r.URL.Path)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotBody))
		_ = json.NewEncoder(w).Encode([]ModelMetrics{
			{Model: "m1", Accuracy: 0.92, Loss: 0.3},
		})
	})

	metrics, err := client.TestModels(context.Background(), []string{"m1", "m2"})
	require.NoError(t, err)
	assert.Equal(t, []string{"m1", "m2"}, gotBody["model_names"])
	require.Len(t, metrics, 1)
	assert.Equal(t, "m1", metrics[0].Model)
	assert.InDelta(t, 0.92, metrics[0].Accuracy, 1e-9)
}

func TestConfusionMatrixDecodes(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/models/h/matrix", r.URL.Path)
		_ = json.NewEncoder(w).Encode([][]float64{{3, 1}, {0, 2}})
	})

	matrix, err := client.ConfusionMatrix(context.Background(), "h")
	require.NoError(t, err)
	assert.Equal(t, [][]float64{{3, 1}, {0, 2}}, matrix)
}

func TestDeleteClassNamespaceUsesPut(t *testing.T) {
	var gotMethod, gotPath string
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotMethod = r.Method
		gotPath = r.URL.Path
	})

	err := client.DeleteClassNamespace(context.Background(), "ABC123")
	require.NoError(t, err)
	assert.Equal(t, http.MethodPut, gotMethod)
	assert.Equal(t, "/class/ABC123/delete", gotPath)
}

func TestNon2xxIsAnError(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	})

	err := client.Provision(context.Background(), "h")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "500")
}

func TestTimeoutIsAnError(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(200 * time.Millisecond)
	})
	client.timeout = 50 * time.Millisecond

	err := client.Provision(context.Background(), "h")
	require.Error(t, err)
}
