package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"slices"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/matzehuels/modhouse/pkg/catalog"
	"github.com/matzehuels/modhouse/pkg/catalog/catalogtest"
	"github.com/matzehuels/modhouse/pkg/cut"
	"github.com/matzehuels/modhouse/pkg/errors"
	"github.com/matzehuels/modhouse/pkg/geometry"
	mhio "github.com/matzehuels/modhouse/pkg/io"
	"github.com/matzehuels/modhouse/pkg/observability"
)

type client struct {
	t   *testing.T
	srv *httptest.Server
}

func newClient(t *testing.T, cfg Config) *client {
	t.Helper()
	cfg.Catalog = catalogtest.Index()
	cfg.Provider = geometry.Synthetic{}
	s, err := NewServer(cfg)
	if err != nil {
		t.Fatal(err)
	}
	srv := httptest.NewServer(s.Handler())
	t.Cleanup(func() {
		srv.Close()
		s.Close()
	})
	return &client{t: t, srv: srv}
}

// do sends a JSON request and decodes the response into out when non-nil.
func (c *client) do(method, path string, body any, out any) int {
	c.t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			c.t.Fatal(err)
		}
	}
	req, err := http.NewRequest(method, c.srv.URL+path, &buf)
	if err != nil {
		c.t.Fatal(err)
	}
	resp, err := c.srv.Client().Do(req)
	if err != nil {
		c.t.Fatal(err)
	}
	defer resp.Body.Close()
	if out != nil && resp.StatusCode != http.StatusNoContent {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			c.t.Fatalf("%s %s: decode: %v", method, path, err)
		}
	}
	return resp.StatusCode
}

func (c *client) create(width int) HouseResponse {
	c.t.Helper()
	var hr HouseResponse
	status := c.do(http.MethodPost, "/houses", map[string]any{
		"system": catalogtest.SystemID,
		"name":   "two storey",
		"dnas":   catalogtest.TwoStorey(width),
	}, &hr)
	if status != http.StatusCreated {
		c.t.Fatalf("create status = %d", status)
	}
	return hr
}

func TestNewServerRequiresCollaborators(t *testing.T) {
	if _, err := NewServer(Config{}); !errors.Is(err, errors.ErrCodeInvalidConfig) {
		t.Errorf("got %v", err)
	}
}

func TestSetCatalog(t *testing.T) {
	s, err := NewServer(Config{Catalog: catalogtest.Index(), Provider: geometry.Synthetic{}})
	if err != nil {
		t.Fatal(err)
	}
	defer s.Close()
	ctx := context.Background()
	ht := mhio.HouseType{SystemID: catalogtest.SystemID, DNAs: catalogtest.TwoStorey(4)}

	id, err := s.Create(ctx, ht, cut.Settings{})
	if err != nil {
		t.Fatal(err)
	}

	s.SetCatalog(catalog.NewIndex())
	if _, err := s.Create(ctx, ht, cut.Settings{}); !errors.Is(err, errors.ErrCodeCatalog) {
		t.Errorf("create against an empty catalog: got %v, want CATALOG_ERROR", err)
	}
	if ids := s.IDs(); !slices.Equal(ids, []string{id}) {
		t.Errorf("ids = %v, want only %s", ids, id)
	}
}

func TestCreateAndGet(t *testing.T) {
	c := newClient(t, Config{MaxDepth: 10})
	created := c.create(4)

	if created.House.SectionType.Code != "W4" || len(created.House.Columns) != 4 {
		t.Fatalf("created = %+v", created.House)
	}
	id := created.House.HouseID

	var got HouseResponse
	if status := c.do(http.MethodGet, "/houses/"+id, nil, &got); status != http.StatusOK {
		t.Fatalf("get status = %d", status)
	}
	if got.House.HouseID != id {
		t.Errorf("get returned house %s", got.House.HouseID)
	}
	for _, st := range got.House.Stretch {
		if !st.Handles {
			t.Errorf("%s handles should be shown after create", st.Axis)
		}
	}

	var list ListResponse
	c.do(http.MethodGet, "/houses", nil, &list)
	if !slices.Contains(list.Houses, id) {
		t.Errorf("list = %v, missing %s", list.Houses, id)
	}
}

func TestXStretchOverHTTP(t *testing.T) {
	c := newClient(t, Config{})
	id := c.create(4).House.HouseID
	base := "/houses/" + id + "/stretch/x/"

	var hr HouseResponse
	if status := c.do(http.MethodPost, base+"start", StretchRequest{Side: "end"}, &hr); status != http.StatusOK {
		t.Fatalf("start status = %d", status)
	}
	if hr.House.Stretch[0].Phase != "dragging" {
		t.Errorf("x phase = %s", hr.House.Stretch[0].Phase)
	}

	hr = HouseResponse{}
	c.do(http.MethodPost, base+"progress", StretchRequest{Delta: 1.5}, &hr)
	if len(hr.Swaps) != 1 || hr.Swaps[0].From != "W4" || hr.Swaps[0].To != "W5" {
		t.Errorf("swaps = %+v", hr.Swaps)
	}
	if hr.House.Preview != "W5" || hr.House.SectionType.Code != "W4" {
		t.Errorf("preview = %q active = %q", hr.House.Preview, hr.House.SectionType.Code)
	}

	hr = HouseResponse{}
	c.do(http.MethodPost, base+"end", nil, &hr)
	if hr.House.SectionType.Code != "W5" || hr.House.Preview != "" || len(hr.Swaps) != 0 {
		t.Errorf("after end = %+v", hr)
	}
}

func TestZStretchOverHTTP(t *testing.T) {
	c := newClient(t, Config{MaxDepth: 10})
	id := c.create(4).House.HouseID
	base := "/houses/" + id + "/stretch/z/"

	c.do(http.MethodPost, base+"start", StretchRequest{Side: "end"}, nil)
	var hr HouseResponse
	c.do(http.MethodPost, base+"progress", StretchRequest{Delta: 2.4}, &hr)
	if got := hr.House.Columns[len(hr.House.Columns)-1].Offset; got < 8.39 || got > 8.41 {
		t.Errorf("end bookend offset = %v, want 8.4", got)
	}
	if hr.House.Stretch[0].Handles {
		t.Error("x handles should hide while z drags")
	}
	hr = HouseResponse{}
	c.do(http.MethodPost, base+"end", nil, &hr)
	if !hr.House.Stretch[0].Handles {
		t.Error("x handles should return after the z gesture")
	}
}

func TestClipAndHandles(t *testing.T) {
	c := newClient(t, Config{})
	id := c.create(4).House.HouseID

	var hr HouseResponse
	if status := c.do(http.MethodPut, "/houses/"+id+"/clip", ClipRequest{Planes: []string{"y=3"}}, &hr); status != http.StatusOK {
		t.Fatalf("clip status = %d", status)
	}
	if len(hr.House.Clip) != 1 || hr.House.Clip[0] != "y=3" || hr.House.Cut.Recomputes == 0 {
		t.Errorf("clip = %v cut = %+v", hr.House.Clip, hr.House.Cut)
	}

	hr = HouseResponse{}
	c.do(http.MethodPut, "/houses/"+id+"/handles", HandlesRequest{Visible: false}, &hr)
	for _, st := range hr.House.Stretch {
		if st.Handles {
			t.Errorf("%s handles should be hidden", st.Axis)
		}
	}
}

func TestErrors(t *testing.T) {
	c := newClient(t, Config{Strict: true})
	id := c.create(4).House.HouseID

	tests := []struct {
		name   string
		method string
		path   string
		body   any
		status int
		code   errors.Code
	}{
		{"unknown house", http.MethodGet, "/houses/nope", nil, http.StatusNotFound, errors.ErrCodeNotFound},
		{"bad axis", http.MethodPost, "/houses/" + id + "/stretch/y/start", StretchRequest{Side: "end"}, http.StatusBadRequest, errors.ErrCodeInvalidInput},
		{"bad side", http.MethodPost, "/houses/" + id + "/stretch/x/start", StretchRequest{Side: "up"}, http.StatusBadRequest, errors.ErrCodeInvalidInput},
		{"bad action", http.MethodPost, "/houses/" + id + "/stretch/x/fling", nil, http.StatusNotFound, errors.ErrCodeNotFound},
		{"progress before start", http.MethodPost, "/houses/" + id + "/stretch/z/progress", StretchRequest{Delta: 1}, http.StatusConflict, errors.ErrCodePrecondition},
		{"bad plane", http.MethodPut, "/houses/" + id + "/clip", ClipRequest{Planes: []string{"w=1"}}, http.StatusBadRequest, errors.ErrCodeInvalidInput},
		{"unknown field", http.MethodPut, "/houses/" + id + "/clip", map[string]any{"plane": "y=1"}, http.StatusBadRequest, errors.ErrCodeInvalidInput},
		{"bad dna", http.MethodPost, "/houses", map[string]any{"system": catalogtest.SystemID, "dnas": []string{""}}, http.StatusBadRequest, errors.ErrCodeInvalidDNA},
		{"unknown module", http.MethodPost, "/houses", map[string]any{"system": catalogtest.SystemID, "dnas": []string{"W4-END-F-Q9"}}, http.StatusUnprocessableEntity, errors.ErrCodeCatalog},
		{"no route", http.MethodGet, "/garages", nil, http.StatusNotFound, errors.ErrCodeNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var body ErrorBody
			status := c.do(tt.method, tt.path, tt.body, &body)
			if status != tt.status {
				t.Errorf("status = %d, want %d", status, tt.status)
			}
			if body.Error.Code != tt.code {
				t.Errorf("code = %s, want %s (%s)", body.Error.Code, tt.code, body.Error.Message)
			}
		})
	}
}

func TestDelete(t *testing.T) {
	c := newClient(t, Config{})
	id := c.create(4).House.HouseID

	if status := c.do(http.MethodDelete, "/houses/"+id, nil, nil); status != http.StatusNoContent {
		t.Fatalf("delete status = %d", status)
	}
	if status := c.do(http.MethodGet, "/houses/"+id, nil, &ErrorBody{}); status != http.StatusNotFound {
		t.Errorf("get after delete = %d", status)
	}
	if status := c.do(http.MethodDelete, "/houses/"+id, nil, &ErrorBody{}); status != http.StatusNotFound {
		t.Errorf("second delete = %d", status)
	}
}

func TestMaxHouses(t *testing.T) {
	c := newClient(t, Config{MaxHouses: 1})
	c.create(3)
	var body ErrorBody
	status := c.do(http.MethodPost, "/houses", map[string]any{
		"system": catalogtest.SystemID,
		"dnas":   catalogtest.Bungalow(3),
	}, &body)
	if status != http.StatusConflict || body.Error.Code != errors.ErrCodePrecondition {
		t.Errorf("status = %d body = %+v", status, body)
	}
}

func TestMaxHousesConcurrent(t *testing.T) {
	s, err := NewServer(Config{
		Catalog:   catalogtest.Index(),
		Provider:  geometry.Synthetic{},
		MaxHouses: 2,
	})
	if err != nil {
		t.Fatal(err)
	}
	defer s.Close()

	ht := mhio.HouseType{SystemID: catalogtest.SystemID, DNAs: catalogtest.Bungalow(3)}
	var (
		wg      sync.WaitGroup
		mu      sync.Mutex
		created int
	)
	for range 8 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := s.Create(context.Background(), ht, cut.Settings{})
			if err != nil && !errors.Is(err, errors.ErrCodePrecondition) {
				t.Errorf("Create: %v", err)
				return
			}
			if err == nil {
				mu.Lock()
				created++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	if n := len(s.IDs()); n != 2 || created != 2 {
		t.Errorf("live houses = %d, successful creates = %d, want 2", n, created)
	}
}

type recordingHTTPHooks struct {
	mu     sync.Mutex
	routes []string
}

func (h *recordingHTTPHooks) OnRequest(context.Context, string, string) {}

func (h *recordingHTTPHooks) OnResponse(_ context.Context, method, route string, status int, _ time.Duration) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.routes = append(h.routes, fmt.Sprintf("%s %s %d", method, strings.TrimSuffix(route, "/"), status))
}

func TestHTTPHooks(t *testing.T) {
	rec := &recordingHTTPHooks{}
	observability.SetHTTPHooks(rec)
	defer observability.Reset()

	s, err := NewServer(Config{Catalog: catalogtest.Index(), Provider: geometry.Synthetic{}, Strict: true})
	if err != nil {
		t.Fatal(err)
	}
	defer s.Close()
	id, err := s.Create(context.Background(), mhio.HouseType{SystemID: catalogtest.SystemID, DNAs: catalogtest.Bungalow(3)}, cut.Settings{})
	if err != nil {
		t.Fatal(err)
	}

	h := s.Handler()
	for _, path := range []string{"/houses/" + id, "/houses/" + id + "/stretch/x/end"} {
		method := http.MethodGet
		if strings.Contains(path, "stretch") {
			method = http.MethodPost
		}
		h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(method, path, nil))
	}

	rec.mu.Lock()
	defer rec.mu.Unlock()
	want := []string{
		"GET /houses/{id} 200",
		"POST /houses/{id}/stretch/{axis}/{action} 409",
	}
	if !slices.Equal(rec.routes, want) {
		t.Errorf("routes = %v, want %v", rec.routes, want)
	}
}
