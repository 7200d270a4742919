package views

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"storefront-admin/upstream"

	"github.com/rs/zerolog"
)

func newListAgainst(t *testing.T, handler http.HandlerFunc) *PromotionList {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return NewPromotionList(upstream.NewClient(srv.URL, zerolog.Nop()), zerolog.Nop())
}

func TestRefreshReplacesSnapshot(t *testing.T) {
	v := newListAgainst(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"data": [{"id": "p1", "code": "SAVE10"}, {"id": "p2", "code": "FREESHIP"}]}`))
	})

	if got := v.Items(); len(got) != 0 {
		t.Fatalf("expected empty snapshot before refresh, got %d", len(got))
	}
	if err := v.Refresh(context.Background()); err != nil {
		t.Fatalf("refresh: %v", err)
	}
	items := v.Items()
	if len(items) != 2 || items[0].Code != "SAVE10" {
		t.Errorf("unexpected snapshot: %+v", items)
	}
}

func TestRefreshFailureKeepsSnapshot(t *testing.T) {
	var fail int32
	v := newListAgainst(t, func(w http.ResponseWriter, r *http.Request) {
		if atomic.LoadInt32(&fail) == 1 {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		w.Write([]byte(`{"data": [{"id": "p1", "code": "SAVE10"}]}`))
	})

	ctx := context.Background()
	if err := v.Refresh(ctx); err != nil {
		t.Fatal(err)
	}

	atomic.StoreInt32(&fail, 1)
	if err := v.Refresh(ctx); err == nil {
		t.Fatal("expected refresh failure")
	}
	if items := v.Items(); len(items) != 1 {
		t.Errorf("failed refresh must keep the previous snapshot, got %d items", len(items))
	}
}

// Archive drops the row before the backend call resolves, and a backend
// failure does not put it back. The row returns on the next refresh instead.
func TestArchiveIsOptimisticWithoutRollback(t *testing.T) {
	var archiveCalls int32
	v := newListAgainst(t, func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodPut {
			atomic.AddInt32(&archiveCalls, 1)
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		w.Write([]byte(`{"data": [{"id": "p1", "code": "SAVE10"}, {"id": "p2", "code": "FREESHIP"}]}`))
	})

	ctx := context.Background()
	if err := v.Refresh(ctx); err != nil {
		t.Fatal(err)
	}

	v.Archive(ctx, "p1")

	if atomic.LoadInt32(&archiveCalls) != 1 {
		t.Errorf("expected 1 archive call, got %d", archiveCalls)
	}
	items := v.Items()
	if len(items) != 1 || items[0].ID != "p2" {
		t.Errorf("row must stay removed despite the failed archive: %+v", items)
	}

	// Next refresh resurfaces whatever the server still has.
	if err := v.Refresh(ctx); err != nil {
		t.Fatal(err)
	}
	if items := v.Items(); len(items) != 2 {
		t.Errorf("expected refresh to restore the server state, got %d items", len(items))
	}
}

func TestArchiveUnknownIDStillCallsBackend(t *testing.T) {
	var archiveCalls int32
	v := newListAgainst(t, func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodPut {
			atomic.AddInt32(&archiveCalls, 1)
		}
		w.Write([]byte(`{"data": []}`))
	})

	v.Archive(context.Background(), "missing")
	if atomic.LoadInt32(&archiveCalls) != 1 {
		t.Errorf("expected archive call even for ids not in the snapshot, got %d", archiveCalls)
	}
}

func TestEditDraftDeserializesServerEncoding(t *testing.T) {
	v := newListAgainst(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/promotions/p1/edit" {
			t.Errorf("unexpected path %q", r.URL.Path)
		}
		w.Write([]byte(`{"data": {
			"id": "p1",
			"code": "SAVE10",
			"usage_count": 4,
			"rules": [{"name": "Order total", "module": "OrderTotal", "preferences": [{"key": "lower_range", "value": 50}]}],
			"actions": [{"name": "Discount", "module": "OrderAction", "action_data": ["FlatRate", [{"key": "amount", "value": 5}]]}]
		}}`))
	})

	d, err := v.EditDraft(context.Background(), "p1")
	if err != nil {
		t.Fatalf("edit draft: %v", err)
	}
	if d.Code != "SAVE10" || d.UsageCount != 4 {
		t.Errorf("unexpected draft: %+v", d)
	}
	if len(d.Rules) != 1 || d.Rules[0].Preferences["lower_range"] != 50.0 {
		t.Errorf("unexpected rules: %+v", d.Rules)
	}
	if len(d.Actions) != 1 || d.Actions[0].Preferences.CalculatorModule != "FlatRate" {
		t.Errorf("unexpected actions: %+v", d.Actions)
	}
}
