package httpserver

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	cfgpkg "github.com/rzbill/httpmq/internal/config"
	"github.com/rzbill/httpmq/internal/runtime"
	logpkg "github.com/rzbill/httpmq/pkg/log"
)

func newTestServer(t *testing.T, mutate func(*cfgpkg.Config)) *Server {
	t.Helper()
	cfg := cfgpkg.Default()
	cfg.Compaction.Enabled = false
	if mutate != nil {
		mutate(&cfg)
	}
	rt, err := runtime.Open(runtime.Options{InMemory: true, Config: cfg})
	require.NoError(t, err)
	t.Cleanup(func() { _ = rt.Close() })
	logger, _ := logpkg.ApplyConfig(&logpkg.Config{Level: "error", Format: "text", Outputs: []logpkg.OutputConfig{{Type: "null"}}})
	return New(rt, logger)
}

func do(t *testing.T, s *Server, method, target string, body string) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, target, nil)
	}
	w := httptest.NewRecorder()
	s.Handler().ServeHTTP(w, req)
	return w
}

func opt(name, op string, extra ...string) string {
	v := url.Values{"name": {name}, "opt": {op}}
	for i := 0; i+1 < len(extra); i += 2 {
		v.Set(extra[i], extra[i+1])
	}
	return "/?" + v.Encode()
}

func TestHealthHandler(t *testing.T) {
	s := newTestServer(t, nil)
	w := do(t, s, http.MethodGet, "/v1/healthz", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"status":"ok"}`, w.Body.String())
}

func TestProtocolScenario(t *testing.T) {
	s := newTestServer(t, nil)

	w := do(t, s, http.MethodGet, opt("q", "put", "data", "hello"), "")
	assert.Equal(t, "HTTPMQ_PUT_OK", w.Body.String())
	assert.Equal(t, "0", w.Header().Get("Pos"))
	w = do(t, s, http.MethodGet, opt("q", "put", "data", "world"), "")
	assert.Equal(t, "1", w.Header().Get("Pos"))

	w = do(t, s, http.MethodGet, opt("q", "status"), "")
	assert.Equal(t, "HTTP Simple Queue Service\n"+
		"------------------------------\n"+
		"Queue Name: q\n"+
		"Maximum number of queues: 100000000\n"+
		"Put position of queue (1st lap): 2\n"+
		"Get position of queue (1st lap): 0\n"+
		"Number of unread queue: 2\n", w.Body.String())

	w = do(t, s, http.MethodGet, opt("q", "get"), "")
	assert.Equal(t, "hello", w.Body.String())
	assert.Equal(t, "0", w.Header().Get("Pos"))

	w = do(t, s, http.MethodGet, opt("q", "view", "pos", "1"), "")
	assert.Equal(t, "world", w.Body.String())
	w = do(t, s, http.MethodGet, opt("q", "view", "pos", "0"), "")
	assert.Equal(t, "HTTPMQ_ERROR", w.Body.String())

	w = do(t, s, http.MethodGet, opt("q", "status_json"), "")
	assert.JSONEq(t, `{"name":"q","maxqueue":100000000,"putpos":2,"putlap":1,"getpos":1,"getlap":1,"unread":1}`, w.Body.String())

	w = do(t, s, http.MethodGet, opt("q", "get"), "")
	assert.Equal(t, "world", w.Body.String())
	w = do(t, s, http.MethodGet, opt("q", "get"), "")
	assert.Equal(t, "HTTPMQ_GET_END", w.Body.String())

	w = do(t, s, http.MethodGet, opt("q", "reset"), "")
	assert.Equal(t, "HTTPMQ_RESET_OK", w.Body.String())
	w = do(t, s, http.MethodGet, opt("q", "status_json"), "")
	assert.JSONEq(t, `{"name":"q","maxqueue":100000000,"putpos":0,"putlap":1,"getpos":0,"getlap":1,"unread":0}`, w.Body.String())
}

func TestProtocolPutFromBody(t *testing.T) {
	s := newTestServer(t, nil)
	req := httptest.NewRequest(http.MethodPost, opt("q", "put"), strings.NewReader("from body"))
	w := httptest.NewRecorder()
	s.Handler().ServeHTTP(w, req)
	assert.Equal(t, "HTTPMQ_PUT_OK", w.Body.String())

	w = do(t, s, http.MethodGet, opt("q", "get"), "")
	assert.Equal(t, "from body", w.Body.String())
}

func TestProtocolEdgeReplies(t *testing.T) {
	s := newTestServer(t, func(c *cfgpkg.Config) { c.MaxQueue = 5 })

	w := do(t, s, http.MethodGet, opt("q", "put"), "")
	assert.Equal(t, "HTTPMQ_PUT_NO_DATA", w.Body.String())

	w = do(t, s, http.MethodGet, opt("q", "bogus"), "")
	assert.Equal(t, "invalid opt", w.Body.String())

	w = do(t, s, http.MethodGet, "/?opt=get", "")
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "HTTPMQ_ERROR", w.Body.String())

	w = do(t, s, http.MethodGet, opt("q", "maxqueue", "num", "6"), "")
	assert.Equal(t, "HTTPMQ_MAXQUEUE_CANCLE", w.Body.String())
	w = do(t, s, http.MethodGet, opt("q", "maxqueue", "num", "x"), "")
	assert.Equal(t, "HTTPMQ_MAXQUEUE_CANCLE", w.Body.String())
	w = do(t, s, http.MethodGet, opt("q", "maxqueue", "num", "1"), "")
	assert.Equal(t, "HTTPMQ_MAXQUEUE_OK", w.Body.String())

	w = do(t, s, http.MethodGet, opt("q", "put", "data", "a"), "")
	assert.Equal(t, "HTTPMQ_PUT_OK", w.Body.String())
	w = do(t, s, http.MethodGet, opt("q", "put", "data", "b"), "")
	assert.Equal(t, "HTTPMQ_PUT_END", w.Body.String())

	w = do(t, s, http.MethodGet, "/elsewhere", "")
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestJSONAPI(t *testing.T) {
	s := newTestServer(t, nil)

	w := do(t, s, http.MethodPost, "/v1/queues/put", `{"name":"orders","payload":"aGVsbG8="}`)
	require.Equal(t, http.StatusCreated, w.Code)
	assert.JSONEq(t, `{"seq":0}`, w.Body.String())
	do(t, s, http.MethodPost, "/v1/queues/put", `{"name":"orders","payload":"d29ybGQ="}`)

	w = do(t, s, http.MethodGet, "/v1/queues/status?name=orders", "")
	assert.JSONEq(t, `{"name":"orders","write":2,"read":0,"depth":2,"max_queue":100000000}`, w.Body.String())

	w = do(t, s, http.MethodGet, "/v1/queues/items?name=orders&filter="+url.QueryEscape(`text == "world"`), "")
	var items struct {
		Items []struct {
			Seq     uint64 `json:"seq"`
			Payload []byte `json:"payload"`
		} `json:"items"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &items))
	require.Len(t, items.Items, 1)
	assert.Equal(t, uint64(1), items.Items[0].Seq)

	w = do(t, s, http.MethodPost, "/v1/queues/get", `{"name":"orders"}`)
	var got struct {
		Found bool `json:"found"`
		Item  struct {
			Seq     uint64 `json:"seq"`
			Payload []byte `json:"payload"`
		} `json:"item"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &got))
	assert.True(t, got.Found)
	assert.Equal(t, "hello", string(got.Item.Payload))

	w = do(t, s, http.MethodGet, "/v1/queues", "")
	assert.Contains(t, w.Body.String(), `"name":"orders"`)

	w = do(t, s, http.MethodPost, "/v1/queues/maxqueue", `{"name":"orders","max":0}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = do(t, s, http.MethodPost, "/v1/queues/reset", `{"name":"orders"}`)
	assert.Equal(t, http.StatusNoContent, w.Code)
	w = do(t, s, http.MethodPost, "/v1/queues/get", `{"name":"orders"}`)
	assert.JSONEq(t, `{"found":false}`, w.Body.String())

	w = do(t, s, http.MethodGet, "/v1/queues/put", "")
	assert.Equal(t, http.StatusMethodNotAllowed, w.Code)
	w = do(t, s, http.MethodGet, "/v1/queues/status?name=", "")
	assert.Equal(t, http.StatusBadRequest, w.Code)
	w = do(t, s, http.MethodGet, "/v1/queues/items?name=orders&filter=size+%3E", "")
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestJSONAPINonUTF8Name(t *testing.T) {
	s := newTestServer(t, nil)

	// "q\xff" as base64.
	w := do(t, s, http.MethodPost, "/v1/queues/put", `{"name_b64":"cf8=","payload":"eA=="}`)
	require.Equal(t, http.StatusCreated, w.Code)

	w = do(t, s, http.MethodGet, "/v1/queues", "")
	var list struct {
		Queues []struct {
			Name    string `json:"name"`
			NameB64 []byte `json:"name_b64"`
			Depth   uint64 `json:"depth"`
		} `json:"queues"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &list))
	require.Len(t, list.Queues, 1)
	assert.Equal(t, "q\xff", string(list.Queues[0].NameB64))
	assert.Equal(t, uint64(1), list.Queues[0].Depth)

	// The raw bytes also work as a query parameter.
	w = do(t, s, http.MethodGet, "/v1/queues/status?name=q%FF", "")
	assert.Contains(t, w.Body.String(), `"name_b64":"cf8="`)
	assert.Contains(t, w.Body.String(), `"write":1`)

	w = do(t, s, http.MethodPost, "/v1/queues/get", `{"name_b64":"cf8="}`)
	assert.Contains(t, w.Body.String(), `"found":true`)

	w = do(t, s, http.MethodGet, "/metrics", "")
	assert.Contains(t, w.Body.String(), `httpmq_queue_depth{queue="hex:71ff"} 0`)
}

func TestPayloadLimit(t *testing.T) {
	s := newTestServer(t, func(c *cfgpkg.Config) { c.PayloadMaxBytes = 3 })
	w := do(t, s, http.MethodPost, "/v1/queues/put", `{"name":"q","payload":"aGVsbG8="}`)
	assert.Equal(t, http.StatusRequestEntityTooLarge, w.Code)
}

func TestMetricsEndpoint(t *testing.T) {
	s := newTestServer(t, nil)
	do(t, s, http.MethodGet, opt("q", "put", "data", "x"), "")
	w := do(t, s, http.MethodGet, "/metrics", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `httpmq_queue_operations_total{op="put",result="ok"} 1`)
	assert.Contains(t, w.Body.String(), `httpmq_queue_depth{queue="q"} 1`)
}

func TestRequestIDAndCORS(t *testing.T) {
	s := newTestServer(t, nil)
	req := httptest.NewRequest(http.MethodGet, "/v1/healthz", nil)
	req.Header.Set(RequestIDHeader, "abc-123")
	w := httptest.NewRecorder()
	s.Handler().ServeHTTP(w, req)
	assert.Equal(t, "abc-123", w.Header().Get(RequestIDHeader))
	assert.Equal(t, "*", w.Header().Get("Access-Control-Allow-Origin"))

	w = do(t, s, http.MethodGet, "/v1/healthz", "")
	assert.Len(t, w.Header().Get(RequestIDHeader), 32)

	w = do(t, s, http.MethodOptions, "/", "")
	assert.Equal(t, http.StatusNoContent, w.Code)
}

func TestCORSAllowList(t *testing.T) {
	h := cors(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}), []string{"https://ok.example"})
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Origin", "https://ok.example")
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	assert.Equal(t, "https://ok.example", w.Header().Get("Access-Control-Allow-Origin"))

	req.Header.Set("Origin", "https://evil.example")
	w = httptest.NewRecorder()
	h.ServeHTTP(w, req)
	assert.Empty(t, w.Header().Get("Access-Control-Allow-Origin"))
}

func TestConcurrencyLimitSheds(t *testing.T) {
	release := make(chan struct{})
	entered := make(chan struct{})
	h := limitConcurrency(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		entered <- struct{}{}
		<-release
	}), 1)

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))
	}()
	<-entered

	w := httptest.NewRecorder()
	h.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)

	close(release)
	wg.Wait()
}

func TestTimeoutSetsDeadline(t *testing.T) {
	var deadline time.Time
	h := timeout(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		deadline, _ = r.Context().Deadline()
	}), time.Second)
	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))
	assert.WithinDuration(t, time.Now().Add(time.Second), deadline, 500*time.Millisecond)
}

func TestExpiredDeadlineIs408(t *testing.T) {
	s := newTestServer(t, nil)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	req := httptest.NewRequest(http.MethodGet, opt("q", "put", "data", "x"), nil).WithContext(ctx)
	w := httptest.NewRecorder()
	s.Handler().ServeHTTP(w, req)
	assert.Equal(t, http.StatusRequestTimeout, w.Code)
}

func TestServeAndShutdown(t *testing.T) {
	s := newTestServer(t, nil)
	ctx, cancel := context.WithCancel(context.Background())
	errCh := make(chan error, 1)
	go func() { errCh <- s.ListenAndServe(ctx, "127.0.0.1:0") }()

	require.Eventually(t, func() bool { return s.Addr() != nil }, 2*time.Second, 10*time.Millisecond)
	resp, err := http.Get("http://" + s.Addr().String() + "/v1/healthz")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	cancel()
	select {
	case err := <-errCh:
		require.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("server did not stop")
	}
}
