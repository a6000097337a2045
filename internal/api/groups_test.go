package api

import (
	"context"
	"net/http"
	"net/http/httptest"
	"reflect"
	"strings"
	"testing"

	"github.com/nerrad567/homecast/internal/executor"
	"github.com/nerrad567/homecast/internal/groups"
	"github.com/nerrad567/homecast/internal/home"
	"github.com/nerrad567/homecast/internal/infrastructure/database"
	"github.com/nerrad567/homecast/migrations"
)

// groupServer builds a server whose executor resolves groups from a
// SQLite store that the /groups routes mutate.
func groupServer(t *testing.T) (*Server, *testBridge) {
	t.Helper()
	ctx := context.Background()

	db, err := database.Open(ctx, database.Config{Path: database.MemoryPath})
	if err != nil {
		t.Fatalf("database.Open: %v", err)
	}
	t.Cleanup(func() { db.Close() }) //nolint:errcheck // Test cleanup
	if err := db.Migrate(ctx, migrations.FS); err != nil {
		t.Fatalf("Migrate: %v", err)
	}
	store, err := groups.NewStore(ctx, db.DB)
	if err != nil {
		t.Fatalf("NewStore: %v", err)
	}

	bridge := newTestBridge()
	exec := executor.New(bridge, store)
	snap := testSnapshot(t)
	exec.SetSnapshot(snap)

	deps := testConfig()
	deps.Executor = exec
	deps.Groups = store
	srv, err := New(deps)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	srv.RebuildIndex(snap)
	return srv, bridge
}

func send(t *testing.T, h http.Handler, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestGroupRoutes_Lifecycle(t *testing.T) {
	srv, bridge := groupServer(t)
	h := srv.Handler()

	rec := send(t, h, http.MethodPost, "/groups",
		`{"name":"Reading","room_id":"r-office","members":["s-lamp","s-spot"]}`)
	if rec.Code != http.StatusCreated {
		t.Fatalf("create status = %d (body %s)", rec.Code, rec.Body.String())
	}
	created := decode[home.DeviceGroup](t, rec)
	if created.ID == "" || created.Slug != "reading" || created.CreatedAt.IsZero() {
		t.Errorf("created = %+v", created)
	}

	// The new group is immediately addressable by commands.
	if rec := get(t, h, "/on/office/group.reading"); rec.Code != http.StatusOK {
		t.Fatalf("command status = %d (body %s)", rec.Code, rec.Body.String())
	}
	if bridge.value("P") != true || bridge.value("LP") != true {
		t.Errorf("P=%v LP=%v, want both on", bridge.value("P"), bridge.value("LP"))
	}

	rec = send(t, h, http.MethodPut, "/groups/"+created.ID+"/members", `{"members":["s-lamp"]}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("set members status = %d (body %s)", rec.Code, rec.Body.String())
	}
	if got := decode[home.DeviceGroup](t, rec); !reflect.DeepEqual(got.Members, []string{"s-lamp"}) {
		t.Errorf("members = %v, want [s-lamp]", got.Members)
	}

	rec = send(t, h, http.MethodPut, "/groups/"+created.ID, `{"name":"Evening","members":["s-spot"]}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("update status = %d (body %s)", rec.Code, rec.Body.String())
	}
	updated := decode[home.DeviceGroup](t, rec)
	if updated.Slug != "evening" || updated.RoomID != nil || !reflect.DeepEqual(updated.Members, []string{"s-spot"}) {
		t.Errorf("updated = %+v", updated)
	}

	if list := decode[[]GroupInfo](t, get(t, h, "/list/groups")); len(list) != 1 || list[0].Name != "Evening" {
		t.Errorf("list = %+v", list)
	}

	if rec := send(t, h, http.MethodDelete, "/groups/"+created.ID, ""); rec.Code != http.StatusNoContent {
		t.Errorf("delete status = %d", rec.Code)
	}
	if rec := get(t, h, "/groups/"+created.ID); rec.Code != http.StatusNotFound {
		t.Errorf("get after delete status = %d, want 404", rec.Code)
	}
	if rec := get(t, h, "/toggle/group.evening"); rec.Code != http.StatusNotFound {
		t.Errorf("command on deleted group status = %d, want 404", rec.Code)
	}
}

func TestGroupRoutes_Errors(t *testing.T) {
	srv, _ := groupServer(t)
	h := srv.Handler()

	if rec := send(t, h, http.MethodPost, "/groups", `{"name":"Task"}`); rec.Code != http.StatusCreated {
		t.Fatalf("seed create status = %d", rec.Code)
	}

	tests := []struct {
		name     string
		method   string
		path     string
		body     string
		wantCode int
	}{
		{"duplicate name", http.MethodPost, "/groups", `{"name":"task"}`, http.StatusConflict},
		{"blank name", http.MethodPost, "/groups", `{"name":"   "}`, http.StatusBadRequest},
		{"name too long", http.MethodPost, "/groups", `{"name":"` + strings.Repeat("x", 129) + `"}`, http.StatusBadRequest},
		{"invalid json", http.MethodPost, "/groups", `{`, http.StatusBadRequest},
		{"update unknown", http.MethodPut, "/groups/nope", `{"name":"Other"}`, http.StatusNotFound},
		{"members unknown", http.MethodPut, "/groups/nope/members", `{"members":[]}`, http.StatusNotFound},
		{"members invalid json", http.MethodPut, "/groups/nope/members", `[`, http.StatusBadRequest},
		{"delete unknown", http.MethodDelete, "/groups/nope", "", http.StatusNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := send(t, h, tt.method, tt.path, tt.body)
			if rec.Code != tt.wantCode {
				t.Errorf("status = %d, want %d (body %s)", rec.Code, tt.wantCode, rec.Body.String())
			}
			if e := decode[Error](t, rec); e.Status != "error" {
				t.Errorf("body status = %q, want error", e.Status)
			}
		})
	}
}

func TestGroupRoutes_DisabledWithoutStore(t *testing.T) {
	srv, _ := testServer(t)
	if rec := send(t, srv.Handler(), http.MethodPost, "/groups", `{"name":"x"}`); rec.Code != http.StatusMethodNotAllowed {
		t.Errorf("status = %d, want 405", rec.Code)
	}
}
