package web

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"cultivation/internal/game"
	"cultivation/internal/live"
	"cultivation/internal/saves"
	"cultivation/internal/session"
)

type testClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *testClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *testClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.now = c.now.Add(d)
	c.mu.Unlock()
}

type testEnv struct {
	srv    *Server
	ts     *httptest.Server
	client *http.Client
	clock  *testClock
}

func newTestEnv(t *testing.T, opts ...func(*Server)) *testEnv {
	t.Helper()
	clock := &testClock{now: time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)}
	engine := game.NewEngine(game.DefaultContent())
	engine.Now = clock.Now
	manager := saves.NewManager(session.NewMemoryStore[saves.SaveData](), engine)
	manager.Now = clock.Now

	hub := NewHub()
	go hub.Run()
	t.Cleanup(hub.Stop)

	srv := NewServer(engine, manager, live.NewTable(), hub)
	for _, o := range opts {
		o(srv)
	}
	ts := httptest.NewServer(srv.Routes())
	t.Cleanup(ts.Close)

	jar, err := cookiejar.New(nil)
	require.NoError(t, err)
	return &testEnv{srv: srv, ts: ts, client: &http.Client{Jar: jar}, clock: clock}
}

func (e *testEnv) do(t *testing.T, method, path string, body any) *http.Response {
	t.Helper()
	var r io.Reader = http.NoBody
	switch b := body.(type) {
	case nil:
	case []byte:
		r = bytes.NewReader(b)
	default:
		raw, err := json.Marshal(b)
		require.NoError(t, err)
		r = bytes.NewReader(raw)
	}
	req, err := http.NewRequest(method, e.ts.URL+path, r)
	require.NoError(t, err)
	resp, err := e.client.Do(req)
	require.NoError(t, err)
	t.Cleanup(func() { resp.Body.Close() })
	return resp
}

func decodeBody[T any](t *testing.T, resp *http.Response) T {
	t.Helper()
	var v T
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&v))
	return v
}

func (e *testEnv) view(t *testing.T, resp *http.Response) (GameView, game.Character) {
	t.Helper()
	vm := decodeBody[GameView](t, resp)
	var c game.Character
	require.NoError(t, json.Unmarshal(vm.Character, &c))
	return vm, c
}

var newCharacter = map[string]any{
	"name":       "Lin",
	"path":       "qi_cultivation",
	"talent":     "iron_body",
	"attributes": map[string]int{"vitality": 8, "spiritualPower": 9, "comprehension": 8},
}

func (e *testEnv) create(t *testing.T) GameView {
	t.Helper()
	resp := e.do(t, http.MethodPost, "/api/characters", newCharacter)
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	vm, _ := e.view(t, resp)
	return vm
}

func TestHealth(t *testing.T) {
	env := newTestEnv(t)
	resp := env.do(t, http.MethodGet, "/health", nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestCreateCharacter(t *testing.T) {
	env := newTestEnv(t)

	resp := env.do(t, http.MethodPost, "/api/characters", newCharacter)
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	vm, c := env.view(t, resp)

	assert.NotEmpty(t, vm.SaveID)
	assert.Equal(t, "Lin", c.Name)
	assert.Equal(t, game.ActivityMeditation, vm.Activity)
	assert.Equal(t, 1.0, vm.Speed)
	require.Len(t, vm.Ladders, 2)
	assert.Equal(t, "Qi Gathering Early Stage", vm.Ladders[0].Title)

	// the cookie now points at the new slot
	resp = env.do(t, http.MethodGet, "/api/game", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	again, _ := env.view(t, resp)
	assert.Equal(t, vm.SaveID, again.SaveID)
}

func TestCreateCharacter_Invalid(t *testing.T) {
	env := newTestEnv(t)

	bad := map[string]any{"name": "Lin", "path": "qi_cultivation", "talent": "nine_lives",
		"attributes": map[string]int{"vitality": 5, "spiritualPower": 5, "comprehension": 5}}
	resp := env.do(t, http.MethodPost, "/api/characters", bad)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp = env.do(t, http.MethodPost, "/api/characters", []byte("{"))
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestCreateCharacter_SlotsFull(t *testing.T) {
	env := newTestEnv(t, func(s *Server) { s.Saves.MaxSlots = 1 })

	env.create(t)
	resp := env.do(t, http.MethodPost, "/api/characters", newCharacter)
	assert.Equal(t, http.StatusConflict, resp.StatusCode)
}

func TestRollAttributes(t *testing.T) {
	env := newTestEnv(t)
	resp := env.do(t, http.MethodGet, "/api/characters/roll", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	b := decodeBody[game.BaseAttributes](t, resp)
	assert.Equal(t, 3*game.StartingAttribute+game.BonusAttributePoints, b.Vitality+b.SpiritualPower+b.Comprehension)
}

func TestGame_RequiresSession(t *testing.T) {
	env := newTestEnv(t)
	resp := env.do(t, http.MethodGet, "/api/game", nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestGame_ResumesFromSaveStore(t *testing.T) {
	env := newTestEnv(t)
	vm := env.create(t)

	// a restarted server has an empty live table but the same saves
	restarted := NewServer(env.srv.Engine, env.srv.Saves, live.NewTable(), nil)
	ts := httptest.NewServer(restarted.Routes())
	defer ts.Close()

	resp, err := env.client.Get(ts.URL + "/api/game")
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)
	resumed, c := env.view(t, resp)
	assert.Equal(t, vm.SaveID, resumed.SaveID)
	assert.Equal(t, "Lin", c.Name)
	_, ok := restarted.Table.Get(vm.SaveID)
	assert.True(t, ok)
}

func TestActivityAndSpeed(t *testing.T) {
	env := newTestEnv(t)
	env.create(t)

	resp := env.do(t, http.MethodPost, "/api/game/activity", map[string]string{"activity": "body_training"})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	vm, _ := env.view(t, resp)
	assert.Equal(t, game.ActivityBodyTraining, vm.Activity)

	resp = env.do(t, http.MethodPost, "/api/game/activity", map[string]string{"activity": "dancing"})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp = env.do(t, http.MethodPost, "/api/game/speed", map[string]float64{"speed": 10})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, game.MaxSpeed, decodeBody[speedRequest](t, resp).Speed)
}

func TestEquip(t *testing.T) {
	env := newTestEnv(t)
	env.create(t)

	resp := env.do(t, http.MethodPost, "/api/game/equip", map[string]string{"treasure": "bronze_hourglass"})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	_, c := env.view(t, resp)
	assert.Equal(t, game.TreasureBronzeHourglass, c.Equipment.TimeTreasure)

	resp = env.do(t, http.MethodPost, "/api/game/equip", map[string]string{"treasure": "golden_sundial"})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestExplorationFlow(t *testing.T) {
	env := newTestEnv(t)
	env.create(t)

	resp := env.do(t, http.MethodPost, "/api/game/exploration", map[string]string{"area": "netherworld_abyss"})
	assert.Equal(t, http.StatusConflict, resp.StatusCode)

	resp = env.do(t, http.MethodPost, "/api/game/exploration", map[string]string{"area": "misty_forest"})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	vm, _ := env.view(t, resp)
	require.NotNil(t, vm.Exploration)
	assert.False(t, vm.Exploration.Ready)

	resp = env.do(t, http.MethodPost, "/api/game/exploration/complete", nil)
	assert.Equal(t, http.StatusConflict, resp.StatusCode)

	env.clock.Advance(time.Minute)
	resp = env.do(t, http.MethodPost, "/api/game/exploration/complete", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	res := decodeBody[game.ExplorationResult](t, resp)
	assert.Equal(t, "misty_forest", res.AreaID)

	resp = env.do(t, http.MethodGet, "/api/game", nil)
	vm, c := env.view(t, resp)
	assert.Nil(t, vm.Exploration)
	assert.Equal(t, 1, c.Stats.Explorations)
}

func TestCancelExploration(t *testing.T) {
	env := newTestEnv(t)
	env.create(t)

	env.do(t, http.MethodPost, "/api/game/exploration", map[string]string{"area": "misty_forest"})
	resp := env.do(t, http.MethodDelete, "/api/game/exploration", nil)
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)

	resp = env.do(t, http.MethodGet, "/api/game", nil)
	vm, _ := env.view(t, resp)
	assert.Nil(t, vm.Exploration)
}

func TestBreakthrough(t *testing.T) {
	env := newTestEnv(t)
	env.create(t)

	resp := env.do(t, http.MethodGet, "/api/game/breakthrough/qi", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	st := decodeBody[game.BreakthroughStatus](t, resp)
	assert.False(t, st.Eligible)

	resp = env.do(t, http.MethodPost, "/api/game/breakthrough/qi", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	res := decodeBody[game.BreakthroughResult](t, resp)
	assert.Equal(t, game.OutcomeNotEligible, res.Outcome)

	resp = env.do(t, http.MethodGet, "/api/game/breakthrough/spirit", nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestUpgradeAbility_NotOwned(t *testing.T) {
	env := newTestEnv(t)
	env.create(t)

	resp := env.do(t, http.MethodPost, "/api/game/abilities/iron_bone/upgrade", nil)
	assert.Equal(t, http.StatusConflict, resp.StatusCode)
}

func TestModifiers(t *testing.T) {
	env := newTestEnv(t)
	env.create(t)
	_, before := env.view(t, env.do(t, http.MethodGet, "/api/game", nil))

	blessing := game.Modifier{ID: "blessing", Name: "Blessing", Source: game.SourceTemporary,
		Flat: game.AttributeDeltas{Vitality: 5}}
	resp := env.do(t, http.MethodPost, "/api/game/modifiers", blessing)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	_, blessed := env.view(t, resp)
	assert.Equal(t, before.Attributes.Vitality+5, blessed.Attributes.Vitality)

	resp = env.do(t, http.MethodPost, "/api/game/modifiers", game.Modifier{ID: "x", Source: "weather"})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp = env.do(t, http.MethodDelete, "/api/game/modifiers/blessing", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	_, after := env.view(t, resp)
	assert.Equal(t, before.Attributes, after.Attributes)
}

func TestSavesLifecycle(t *testing.T) {
	env := newTestEnv(t)
	vm := env.create(t)
	path := "/api/saves/" + vm.SaveID

	resp := env.do(t, http.MethodPatch, path, map[string]string{"name": "Main"})
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)

	resp = env.do(t, http.MethodGet, "/api/saves", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	list := decodeBody[[]saves.SaveData](t, resp)
	require.Len(t, list, 1)
	assert.Equal(t, "Main", list[0].Name)

	resp = env.do(t, http.MethodGet, path+"/export", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	archive, err := io.ReadAll(resp.Body)
	require.NoError(t, err)

	resp = env.do(t, http.MethodDelete, path, nil)
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)
	resp = env.do(t, http.MethodGet, "/api/game", nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	resp = env.do(t, http.MethodPost, path+"/load", nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	resp = env.do(t, http.MethodPost, "/api/saves/import", archive)
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	imported := decodeBody[saves.SaveData](t, resp)
	assert.NotEqual(t, vm.SaveID, imported.ID)
	assert.Equal(t, "Main", imported.Name)

	resp = env.do(t, http.MethodPost, "/api/saves/"+imported.ID+"/load", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	loaded, c := env.view(t, resp)
	assert.Equal(t, imported.ID, loaded.SaveID)
	assert.Equal(t, "Lin", c.Name)
}

func TestImport_RejectsGarbage(t *testing.T) {
	env := newTestEnv(t)
	resp := env.do(t, http.MethodPost, "/api/saves/import", []byte("not an archive"))
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp = env.do(t, http.MethodGet, "/api/saves", nil)
	assert.Empty(t, decodeBody[[]saves.SaveData](t, resp))
}

func TestReport(t *testing.T) {
	env := newTestEnv(t)
	env.create(t)

	resp := env.do(t, http.MethodGet, "/api/game/report.pdf", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "application/pdf", resp.Header.Get("Content-Type"))
	b, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(b, []byte("%PDF")))
}

func TestOfflineNoticeReachesWebsocket(t *testing.T) {
	env := newTestEnv(t)
	vm := env.create(t)

	header := http.Header{}
	for _, c := range env.client.Jar.Cookies(mustURL(t, env.ts.URL)) {
		header.Add("Cookie", c.String())
	}
	wsURL := "ws" + strings.TrimPrefix(env.ts.URL, "http") + "/ws"
	conn, _, err := websocket.DefaultDialer.Dial(wsURL, header)
	require.NoError(t, err)
	defer conn.Close()

	require.Eventually(t, func() bool { return env.srv.Hub.Watchers(vm.SaveID) == 1 }, 2*time.Second, 10*time.Millisecond)

	resp := env.do(t, http.MethodPost, "/api/game/hidden", nil)
	require.Equal(t, http.StatusNoContent, resp.StatusCode)
	env.clock.Advance(time.Minute)
	resp = env.do(t, http.MethodPost, "/api/game/visible", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	rep := decodeBody[game.OfflineReport](t, resp)
	assert.True(t, rep.Applied)
	assert.Positive(t, rep.SpiritualQi)

	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	_, msg, err := conn.ReadMessage()
	require.NoError(t, err)
	var n Notice
	require.NoError(t, json.Unmarshal(msg, &n))
	assert.Equal(t, "events", n.Type)
	assert.Equal(t, vm.SaveID, n.GameID)
	require.NotEmpty(t, n.Events)
	assert.Equal(t, game.EventOffline, n.Events[0].Kind)
}

func mustURL(t *testing.T, raw string) *url.URL {
	t.Helper()
	u, err := url.Parse(raw)
	require.NoError(t, err)
	return u
}

func TestWebsocket_RequiresGame(t *testing.T) {
	env := newTestEnv(t)
	wsURL := "ws" + strings.TrimPrefix(env.ts.URL, "http") + "/ws"
	_, resp, err := websocket.DefaultDialer.Dial(wsURL, nil)
	require.Error(t, err)
	require.NotNil(t, resp)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}
