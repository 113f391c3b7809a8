package builder

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/Shopify/go-lua"
	"github.com/Shopify/goluago/util"
	"github.com/gabriel-vasile/mimetype"
)

// hookInstructionCount is how many VM instructions run between deadline checks.
const hookInstructionCount = 1000

var errDeadline = errors.New("script call exceeded its deadline")

// App is a built tenant application. It implements http.Handler.
//
// An App owns a single Lua state, so script calls are serialized.
type App struct {
	def    *Definition
	server ServerConfig
	config Config
	logger *slog.Logger

	mu       sync.Mutex
	state    *lua.State
	hasServe bool
}

// response is the decoded result of a serve call.
type response struct {
	status  int
	headers http.Header
	body    []byte
}

func newApp(ctx context.Context, def *Definition, server ServerConfig, config Config, logger *slog.Logger) (*App, error) {
	a := &App{
		def:    def,
		server: server,
		config: config,
		logger: logger,
	}
	if strings.TrimSpace(def.Script) == "" {
		return a, nil
	}

	l := lua.NewState()
	openSandbox(l)
	a.registerGlobals(l)

	if err := lua.LoadBuffer(l, def.Script, "="+server.TenantID, "t"); err != nil {
		return nil, fmt.Errorf("%w: compiling script: %v", ErrInvalidDefinition, err)
	}
	if err := a.call(ctx, l, 0, 0); err != nil {
		return nil, fmt.Errorf("%w: running script: %v", ErrInvalidDefinition, err)
	}

	l.Global("serve")
	a.hasServe = l.IsFunction(-1)
	l.Pop(1)

	a.state = l
	return a, nil
}

// Title returns the application title.
func (a *App) Title() string {
	return a.def.Title
}

// Layout returns the application layout.
func (a *App) Layout() string {
	return a.def.Layout
}

// Prefix returns the public URL prefix the application is mounted under.
func (a *App) Prefix() string {
	return a.server.PathPrefix
}

// ServeHTTP serves a request whose path no longer carries the tenant segment.
func (a *App) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if !a.hasServe {
		a.serveLayout(w, r)
		return
	}

	var body []byte
	if r.Body != nil {
		var err error
		body, err = io.ReadAll(http.MaxBytesReader(w, r.Body, a.config.MaxBodyBytes))
		if err != nil {
			var maxErr *http.MaxBytesError
			if errors.As(err, &maxErr) {
				http.Error(w, http.StatusText(http.StatusRequestEntityTooLarge), http.StatusRequestEntityTooLarge)
				return
			}
			http.Error(w, http.StatusText(http.StatusBadRequest), http.StatusBadRequest)
			return
		}
	}

	resp, err := a.invoke(r.Context(), a.requestTable(r, body))
	if err != nil {
		a.logger.Error("script serve failed",
			"path", r.URL.Path,
			"error", err,
		)
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	for k, vs := range resp.headers {
		for _, v := range vs {
			w.Header().Add(k, v)
		}
	}
	if w.Header().Get("Content-Type") == "" {
		w.Header().Set("Content-Type", mimetype.Detect(resp.body).String())
	}
	w.WriteHeader(resp.status)
	if r.Method != http.MethodHead {
		w.Write(resp.body)
	}
}

func (a *App) serveLayout(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" && r.URL.Path != "" {
		http.NotFound(w, r)
		return
	}
	if r.Method != http.MethodGet && r.Method != http.MethodHead {
		w.Header().Set("Allow", "GET, HEAD")
		http.Error(w, http.StatusText(http.StatusMethodNotAllowed), http.StatusMethodNotAllowed)
		return
	}

	body := []byte(a.def.Layout)
	w.Header().Set("Content-Type", mimetype.Detect(body).String())
	w.Header().Set("Content-Length", strconv.Itoa(len(body)))
	w.WriteHeader(http.StatusOK)
	if r.Method != http.MethodHead {
		w.Write(body)
	}
}

func (a *App) requestTable(r *http.Request, body []byte) map[string]interface{} {
	headers := make(map[string]interface{}, len(r.Header))
	for k := range r.Header {
		headers[strings.ToLower(k)] = r.Header.Get(k)
	}
	query := make(map[string]interface{})
	for k, vs := range r.URL.Query() {
		if len(vs) > 0 {
			query[k] = vs[0]
		}
	}

	path := r.URL.Path
	if path == "" {
		path = "/"
	}

	return map[string]interface{}{
		"method":  r.Method,
		"path":    path,
		"query":   query,
		"headers": headers,
		"body":    string(body),
		"prefix":  a.server.PathPrefix,
		"tenant":  a.server.TenantID,
	}
}

// invoke calls serve(req) and decodes its result.
func (a *App) invoke(ctx context.Context, req map[string]interface{}) (*response, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	l := a.state
	top := l.Top()
	defer l.SetTop(top)

	l.Global("serve")
	util.DeepPush(l, req)
	if err := a.call(ctx, l, 1, 1); err != nil {
		return nil, err
	}
	return decodeResponse(l, l.Top())
}

// call runs a protected call bounded by the request context and CallTimeout.
func (a *App) call(ctx context.Context, l *lua.State, args, results int) error {
	deadline := time.Now().Add(a.config.CallTimeout)
	if d, ok := ctx.Deadline(); ok && d.Before(deadline) {
		deadline = d
	}

	lua.SetDebugHook(l, func(l *lua.State, _ lua.Debug) {
		if ctx.Err() != nil || time.Now().After(deadline) {
			lua.Errorf(l, errDeadline.Error())
		}
	}, lua.MaskCount, hookInstructionCount)
	defer lua.SetDebugHook(l, nil, 0, 0)

	return l.ProtectedCall(args, results, 0)
}

func decodeResponse(l *lua.State, idx int) (*response, error) {
	resp := &response{status: http.StatusOK, headers: make(http.Header)}

	switch l.TypeOf(idx) {
	case lua.TypeNil:
		resp.status = http.StatusNoContent
		return resp, nil
	case lua.TypeString, lua.TypeNumber:
		s, _ := l.ToString(idx)
		resp.body = []byte(s)
		return resp, nil
	case lua.TypeTable:
	default:
		return nil, fmt.Errorf("serve returned %s, want string or table", lua.TypeNameOf(l, idx))
	}

	value, err := util.PullTable(l, idx)
	if err != nil {
		return nil, fmt.Errorf("decoding serve result: %w", err)
	}
	fields, ok := value.(map[string]interface{})
	if !ok {
		// An empty table pulls as a list.
		return resp, nil
	}

	if status, ok := fields["status"].(float64); ok {
		resp.status = int(status)
		if resp.status < 100 || resp.status > 999 {
			return nil, fmt.Errorf("serve returned invalid status %d", resp.status)
		}
	}
	if headers, ok := fields["headers"].(map[string]interface{}); ok {
		for k, v := range headers {
			resp.headers.Set(k, fmt.Sprint(v))
		}
	}
	switch body := fields["body"].(type) {
	case string:
		resp.body = []byte(body)
	case nil:
	default:
		resp.body = []byte(fmt.Sprint(body))
	}
	return resp, nil
}
