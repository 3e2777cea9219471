package gateway

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	pkgerrors "github.com/angelmondragon/cartsync/pkg/errors"
)

const entryJSON = `{"id":"c1","productId":"p1","quantity":1,"product":{"name":"Shoe","price":100000,"imageUrl":"u","seller":{"id":"s1","username":"ShoeShop"}}}`

func newTestClient(t *testing.T, handler http.HandlerFunc) (*Client, *httptest.Server) {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	client, err := NewClient(server.URL)
	if err != nil {
		t.Fatalf("NewClient failed: %v", err)
	}
	return client, server
}

func TestNewClientRequiresBaseURL(t *testing.T) {
	t.Parallel()
	if _, err := NewClient("   "); err == nil {
		t.Fatal("expected error for blank base URL")
	}
}

func TestListSendsQueryAndDecodesWrapped(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/cart" {
			t.Errorf("unexpected path %q", r.URL.Path)
		}
		q := r.URL.Query()
		if q.Get("userId") != "u1" || q.Get("page") != "1" || q.Get("limit") != "25" {
			t.Errorf("unexpected query %q", r.URL.RawQuery)
		}
		w.Write([]byte(`{"data":[` + entryJSON + `]}`))
	})

	entries, err := client.List(context.Background(), "u1", 0)
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if len(entries) != 1 || entries[0].ID != "c1" {
		t.Fatalf("unexpected entries %+v", entries)
	}
}

func TestListDegradesUnknownShapeToEmpty(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"cart":{"weird":true}}`))
	})

	entries, err := client.List(context.Background(), "u1", 1)
	if err != nil {
		t.Fatalf("unrecognized shape should not error: %v", err)
	}
	if len(entries) != 0 {
		t.Fatalf("expected empty collection, got %+v", entries)
	}
}

func TestListValidatesUserID(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		t.Error("no request should be issued")
	})

	_, err := client.List(context.Background(), " ", 1)
	if !pkgerrors.HasCode(err, pkgerrors.CodeValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestCreateCarriesIdempotencyKeyAndReportsUsable(t *testing.T) {
	var keys []string
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		keys = append(keys, r.Header.Get("Idempotency-Key"))
		w.Write([]byte(`[` + entryJSON + `]`))
	})

	entries, usable, err := client.Create(context.Background(), CreateInput{ProductID: "p1", Quantity: 1})
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	if !usable || len(entries) != 1 {
		t.Fatalf("expected usable collection, got usable=%v entries=%+v", usable, entries)
	}

	if _, _, err := client.Create(context.Background(), CreateInput{ProductID: "p1", Quantity: 1}); err != nil {
		t.Fatalf("second Create failed: %v", err)
	}
	if len(keys) != 2 || keys[0] == "" || keys[0] == keys[1] {
		t.Fatalf("expected distinct non-empty idempotency keys, got %v", keys)
	}
}

func TestCreateEmptyBodyMeansNotUsable(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusCreated)
	})

	entries, usable, err := client.Create(context.Background(), CreateInput{ProductID: "p1", Quantity: 2})
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	if usable || entries != nil {
		t.Fatalf("2xx without body should not be usable, got usable=%v entries=%+v", usable, entries)
	}
}

func TestCreateValidatesInput(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		t.Error("no request should be issued")
	})

	if _, _, err := client.Create(context.Background(), CreateInput{Quantity: 1}); !pkgerrors.HasCode(err, pkgerrors.CodeValidation) {
		t.Fatalf("expected validation error for missing product, got %v", err)
	}
	if _, _, err := client.Create(context.Background(), CreateInput{ProductID: "p1"}); !pkgerrors.HasCode(err, pkgerrors.CodeValidation) {
		t.Fatalf("expected validation error for zero quantity, got %v", err)
	}
}

func TestUpdateQuantityDecodesEcho(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPut || r.URL.Path != "/cart/c1" {
			t.Errorf("unexpected request %s %s", r.Method, r.URL.Path)
		}
		w.Write([]byte(`{"data":` + entryJSON + `}`))
	})

	entry, err := client.UpdateQuantity(context.Background(), "c1", 3)
	if err != nil {
		t.Fatalf("UpdateQuantity failed: %v", err)
	}
	if entry == nil || entry.ID != "c1" {
		t.Fatalf("unexpected entry %+v", entry)
	}
}

func TestUpdateQuantityMissingEchoReturnsNil(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	entry, err := client.UpdateQuantity(context.Background(), "c1", 3)
	if err != nil {
		t.Fatalf("UpdateQuantity failed: %v", err)
	}
	if entry != nil {
		t.Fatalf("expected nil entry for empty body, got %+v", entry)
	}
}

func TestDeleteUsesStatusOnly(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodDelete || r.URL.Path != "/cart/c1" {
			t.Errorf("unexpected request %s %s", r.Method, r.URL.Path)
		}
		w.WriteHeader(http.StatusNoContent)
	})

	if err := client.Delete(context.Background(), "c1"); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}
}

func TestServerFailureMapsToServerError(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "entry not found", http.StatusNotFound)
	})

	err := client.Delete(context.Background(), "missing")
	if !pkgerrors.HasCode(err, pkgerrors.CodeServer) {
		t.Fatalf("expected server error, got %v", err)
	}
	details, ok := pkgerrors.As(err).Details().(map[string]any)
	if !ok || details["status"] != http.StatusNotFound {
		t.Fatalf("expected status detail 404, got %v", pkgerrors.As(err).Details())
	}
}

func TestTransportFailureMapsToNetworkError(t *testing.T) {
	server := httptest.NewServer(http.NotFoundHandler())
	server.Close()

	client, err := NewClient(server.URL)
	if err != nil {
		t.Fatalf("NewClient failed: %v", err)
	}

	_, err = client.List(context.Background(), "u1", 1)
	if !pkgerrors.HasCode(err, pkgerrors.CodeNetwork) {
		t.Fatalf("expected network error, got %v", err)
	}
}
