package httpapi_test

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	funnel "github.com/prodyssey/vibe-cto-dot-ai-sub000"
	"github.com/prodyssey/vibe-cto-dot-ai-sub000/pkg/adapters/httpapi"
	"github.com/prodyssey/vibe-cto-dot-ai-sub000/pkg/domain"
)

func testContent() *domain.Content {
	return &domain.Content{
		EntryScene: "welcome",
		Paths:      domain.PathSet{"ignition", "launch_control"},
		Scenes: []domain.SceneDefinition{
			{ID: "welcome", Kind: domain.SceneKindIntro, Title: "Welcome", NextScene: "pick"},
			{
				ID: "pick", Kind: domain.SceneKindChoice, Title: "Pick",
				Choices: []domain.ChoiceDefinition{
					{ID: "build", Text: "Build", NextScene: "end", Weights: domain.WeightVector{"ignition": 3}},
					{ID: "scale", Text: "Scale", NextScene: "end", Weights: domain.WeightVector{"launch_control": 3}},
				},
			},
			{ID: "end", Kind: domain.SceneKindResult, Title: "End"},
		},
	}
}

func newTestServer(t *testing.T) (*funnel.Engine, *httptest.Server) {
	t.Helper()
	eng, err := funnel.NewFromContent(testContent())
	require.NoError(t, err)
	t.Cleanup(eng.Close)

	srv := httptest.NewServer(httpapi.NewHandler(eng))
	t.Cleanup(srv.Close)
	return eng, srv
}

func postJSON(t *testing.T, url string, body any) *http.Response {
	t.Helper()
	data, err := json.Marshal(body)
	require.NoError(t, err)
	resp, err := http.Post(url, "application/json", bytes.NewReader(data))
	require.NoError(t, err)
	return resp
}

func decodeBody(t *testing.T, resp *http.Response) map[string]any {
	t.Helper()
	defer resp.Body.Close()
	var out map[string]any
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	return out
}

func TestServer_SessionLifecycle(t *testing.T) {
	_, srv := newTestServer(t)

	resp := postJSON(t, srv.URL+"/v1/sessions", map[string]any{
		"sessionId":  "web-1",
		"playerName": "Ada",
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	created := decodeBody(t, resp)
	assert.Equal(t, "web-1", created["sessionId"])
	assert.Equal(t, "welcome", created["currentSceneId"])

	resp = postJSON(t, srv.URL+"/v1/sessions/web-1/navigate", map[string]any{"sceneId": "pick"})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "pick", decodeBody(t, resp)["currentSceneId"])

	resp = postJSON(t, srv.URL+"/v1/sessions/web-1/choices", map[string]any{
		"sceneId": "pick", "choiceId": "build",
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	body := decodeBody(t, resp)
	scores := body["pathScores"].(map[string]any)
	assert.Equal(t, float64(3), scores["ignition"])

	resp = postJSON(t, srv.URL+"/v1/sessions/web-1/finalize", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "ignition", decodeBody(t, resp)["finalPath"])

	resp = postJSON(t, srv.URL+"/v1/sessions/web-1/complete", map[string]any{"outcome": "qualified"})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	status := decodeBody(t, resp)
	assert.Equal(t, true, status["is_completed"])
	assert.Equal(t, "qualified", status["final_outcome"])
}

func TestServer_UnknownSessionIs404(t *testing.T) {
	_, srv := newTestServer(t)

	resp, err := http.Get(srv.URL + "/v1/sessions/nope/")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	resp = postJSON(t, srv.URL+"/v1/sessions/nope/navigate", map[string]any{"sceneId": "pick"})
	defer resp.Body.Close()
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestServer_UnknownSceneIs404(t *testing.T) {
	_, srv := newTestServer(t)
	postJSON(t, srv.URL+"/v1/sessions", map[string]any{"sessionId": "web-2"}).Body.Close()

	resp := postJSON(t, srv.URL+"/v1/sessions/web-2/navigate", map[string]any{"sceneId": "missing"})
	defer resp.Body.Close()
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	resp2, err := http.Get(srv.URL + "/v1/scenes/missing")
	require.NoError(t, err)
	defer resp2.Body.Close()
	assert.Equal(t, http.StatusNotFound, resp2.StatusCode)
}

func TestServer_InvalidPayloadIs422(t *testing.T) {
	_, srv := newTestServer(t)
	postJSON(t, srv.URL+"/v1/sessions", map[string]any{"sessionId": "web-3"}).Body.Close()

	resp := postJSON(t, srv.URL+"/v1/sessions/web-3/choices", map[string]any{
		"sceneId": "pick", "choiceId": "build",
		"payload": map[string]any{
			"kind": "contact",
			"data": map[string]any{"name": "Ada", "email": "not-an-email"},
		},
	})
	require.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)
	body := decodeBody(t, resp)
	assert.Equal(t, "email", body["field"])
}

func TestServer_Preferences(t *testing.T) {
	_, srv := newTestServer(t)
	postJSON(t, srv.URL+"/v1/sessions", map[string]any{"sessionId": "web-4"}).Body.Close()

	data, _ := json.Marshal(map[string]any{"music_volume": 0.2})
	req, err := http.NewRequest(http.MethodPatch, srv.URL+"/v1/sessions/web-4/preferences", bytes.NewReader(data))
	require.NoError(t, err)
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	prefs := decodeBody(t, resp)
	assert.Equal(t, 0.2, prefs["music_volume"])
	assert.Equal(t, true, prefs["sound_enabled"])
}

func TestServer_GraphAndValidate(t *testing.T) {
	_, srv := newTestServer(t)

	resp, err := http.Get(srv.URL + "/v1/graph")
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	buf := new(bytes.Buffer)
	_, _ = buf.ReadFrom(resp.Body)
	assert.Contains(t, buf.String(), "graph TD")

	resp2, err := http.Get(srv.URL + "/v1/validate")
	require.NoError(t, err)
	report := decodeBody(t, resp2)
	assert.Equal(t, true, report["ok"])
}

func TestServer_CORSPreflight(t *testing.T) {
	_, srv := newTestServer(t)

	req, err := http.NewRequest(http.MethodOptions, srv.URL+"/v1/sessions", nil)
	require.NoError(t, err)
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusNoContent, resp.StatusCode)
	assert.Equal(t, "*", resp.Header.Get("Access-Control-Allow-Origin"))
}
