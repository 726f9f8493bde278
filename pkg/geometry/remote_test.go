package geometry

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/matzehuels/modhouse/pkg/cache"
	"github.com/matzehuels/modhouse/pkg/errors"
)

func TestRemote(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		n := calls.Add(1)
		if r.URL.Path != "/systems/skylark/modules/W4-MID-T-B1/geometry" {
			http.NotFound(w, r)
			return
		}
		if n == 1 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		d, _ := Synthetic{}.FetchModuleGeometry(r.Context(), testRef("T"))
		_ = json.NewEncoder(w).Encode(d)
	}))
	defer srv.Close()

	remote := NewRemote(srv.URL + "/")

	if _, err := remote.FetchModuleGeometry(context.Background(), testRef("T")); !cache.IsRetryable(err) {
		t.Fatalf("503 should be retryable, got %v", err)
	}

	d, err := Retrying(remote, 3, time.Millisecond).FetchModuleGeometry(context.Background(), testRef("T"))
	if err != nil {
		t.Fatal(err)
	}
	if len(d.Elements) != 4 || d.Elements[3].Name != "roof" {
		t.Errorf("elements = %+v", d.Elements)
	}

	_, err = remote.FetchModuleGeometry(context.Background(), testRef("F"))
	if cache.IsRetryable(err) || !errors.Is(err, errors.ErrCodeGeometryFetch) {
		t.Errorf("404 should be a permanent fetch error, got %v", err)
	}
}
