package cmd

import (
	"bytes"
	"context"
	"encoding/json"
	"net"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strconv"
	"testing"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/s0up4200/umzug/config"
	"github.com/s0up4200/umzug/filter"
	"github.com/s0up4200/umzug/umzug"
)

func setupTest(t *testing.T) *bytes.Buffer {
	t.Helper()

	logger = zerolog.Nop()
	cfg = &config.Config{Filter: config.FilterConfig{Presets: map[string]string{
		"urgent": `urgent("immediate")`,
	}}}
	filters = newFilterCompiler(cfg)

	var buf bytes.Buffer
	prevOut, prevJSON := stdout, jsonOutput
	stdout = &buf
	t.Cleanup(func() {
		stdout, jsonOutput = prevOut, prevJSON
		filterExpr, preset = "", ""
	})
	return &buf
}

type inventory struct {
	boxes    []umzug.Box
	items    []umzug.Item
	packings []umzug.Packing
}

func newInventoryClient(t *testing.T, inv inventory) *umzug.Client {
	t.Helper()

	mux := http.NewServeMux()
	serve := func(v any) http.HandlerFunc {
		return func(w http.ResponseWriter, r *http.Request) {
			_ = json.NewEncoder(w).Encode(v)
		}
	}
	mux.Handle("/api/boxes", serve(inv.boxes))
	mux.Handle("/api/items", serve(inv.items))
	mux.Handle("/api/packings", serve(inv.packings))

	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)

	u, err := url.Parse(srv.URL)
	require.NoError(t, err)
	host, port, err := net.SplitHostPort(u.Host)
	require.NoError(t, err)
	p, err := strconv.Atoi(port)
	require.NoError(t, err)

	client := umzug.NewClient(umzug.Server{Scheme: umzug.SchemeHTTP, Host: host, Port: uint16(p)},
		umzug.Authentication{Username: "alice", Password: "secret"}, zerolog.Nop())
	t.Cleanup(client.Close)
	return client
}

func testInventory() inventory {
	immediate := umzug.PriorityImmediate
	kitchen := umzug.Box{ID: uuid.New(), Title: "Kitchen"}
	garage := umzug.Box{ID: uuid.New(), Title: "Garage"}
	kettle := umzug.Item{ID: uuid.New(), Title: "Kettle", Priority: &immediate}
	drill := umzug.Item{ID: uuid.New(), Title: "Drill"}
	towels := umzug.Item{ID: uuid.New(), Title: "Towels"}

	return inventory{
		boxes: []umzug.Box{kitchen, garage},
		items: []umzug.Item{kettle, drill, towels},
		packings: []umzug.Packing{
			{ID: uuid.New(), Item: kettle, Box: kitchen, Amount: 1},
			{ID: uuid.New(), Item: drill, Box: garage, Amount: 2},
		},
	}
}

func TestResolve(t *testing.T) {
	inv := testInventory()
	id := func(b umzug.Box) uuid.UUID { return b.ID }
	title := func(b umzug.Box) string { return b.Title }
	duplicate := append([]umzug.Box{{ID: uuid.New(), Title: "kitchen"}}, inv.boxes...)

	tests := []struct {
		name    string
		boxes   []umzug.Box
		ref     string
		want    string
		wantErr string
	}{
		{name: "by title", boxes: inv.boxes, ref: "garage", want: "Garage"},
		{name: "by id", boxes: inv.boxes, ref: inv.boxes[0].ID.String(), want: "Kitchen"},
		{name: "unknown title", boxes: inv.boxes, ref: "Attic", wantErr: "not found"},
		{name: "unknown id", boxes: inv.boxes, ref: uuid.NewString(), wantErr: "not found"},
		{name: "ambiguous title", boxes: duplicate, ref: "Kitchen", wantErr: "use the ID"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			box, err := resolve(tt.boxes, tt.ref, "box", id, title)
			if tt.wantErr != "" {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, box.Title)
		})
	}
}

func TestSummarize(t *testing.T) {
	setupTest(t)
	client := newInventoryClient(t, testInventory())

	summary, err := summarize(context.Background(), client)
	require.NoError(t, err)

	assert.Equal(t, 2, summary.Boxes)
	assert.Equal(t, 3, summary.Items)
	assert.Equal(t, 2, summary.Packings)
	assert.Equal(t, 1, summary.Unpacked)
	assert.Equal(t, 1, summary.Urgent)
}

func TestSummarizeFailure(t *testing.T) {
	setupTest(t)

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"error":{"serverError":{}}}`))
	}))
	defer srv.Close()

	u, err := url.Parse(srv.URL)
	require.NoError(t, err)
	host, port, err := net.SplitHostPort(u.Host)
	require.NoError(t, err)
	p, err := strconv.Atoi(port)
	require.NoError(t, err)

	client := umzug.NewClient(umzug.Server{Scheme: umzug.SchemeHTTP, Host: host, Port: uint16(p)},
		umzug.Authentication{Username: "alice"}, zerolog.Nop())
	defer client.Close()

	_, err = summarize(context.Background(), client)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "An internal API error occurred.")
}

func TestResolveAgainstServer(t *testing.T) {
	setupTest(t)
	inv := testInventory()
	client := newInventoryClient(t, inv)

	item, err := resolveItem(context.Background(), client, "KETTLE")
	require.NoError(t, err)
	assert.Equal(t, inv.items[0].ID, item.ID)

	_, err = resolveBox(context.Background(), client, "Attic")
	assert.Error(t, err)
}

func TestApplyFilter(t *testing.T) {
	setupTest(t)
	items := testInventory().items

	got, err := applyFilter(items, filter.ItemRecord)
	require.NoError(t, err)
	assert.Len(t, got, 3, "no filter keeps everything")

	filterExpr = `startsWith(Title, "t")`
	got, err = applyFilter(items, filter.ItemRecord)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "Towels", got[0].Title)

	filterExpr, preset = "", "urgent"
	got, err = applyFilter(items, filter.ItemRecord)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "Kettle", got[0].Title)

	preset = "missing"
	_, err = applyFilter(items, filter.ItemRecord)
	assert.Error(t, err)
}

func TestRenderPackings(t *testing.T) {
	buf := setupTest(t)
	inv := testInventory()

	require.NoError(t, renderPackings(inv.packings))
	out := buf.String()
	assert.Contains(t, out, "Kettle")
	assert.Contains(t, out, "Kitchen")
	assert.Contains(t, out, "Immediate")

	buf.Reset()
	jsonOutput = true
	require.NoError(t, renderPackings(inv.packings))

	var decoded []umzug.Packing
	require.NoError(t, json.Unmarshal(buf.Bytes(), &decoded))
	assert.Equal(t, inv.packings[1].ID, decoded[1].ID)
}

func TestRenderEmpty(t *testing.T) {
	buf := setupTest(t)

	require.NoError(t, renderBoxes(nil))
	assert.Equal(t, "No boxes found.\n", buf.String())
}

func TestCompileFilterReusesCompiledProgram(t *testing.T) {
	setupTest(t)

	filterExpr = `Amount > 1`
	first, err := compileFilter()
	require.NoError(t, err)
	second, err := compileFilter()
	require.NoError(t, err)
	assert.Same(t, first, second)
}

func TestFilteredJSONWithoutMatches(t *testing.T) {
	buf := setupTest(t)
	jsonOutput = true

	filterExpr = `Title == "Piano"`
	items, err := applyFilter(testInventory().items, filter.ItemRecord)
	require.NoError(t, err)
	require.NoError(t, renderItems(items))
	assert.JSONEq(t, `[]`, buf.String())
}
