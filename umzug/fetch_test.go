package umzug

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// boxServer is an in-memory boxes endpoint enforcing unique titles
type boxServer struct {
	mu    sync.Mutex
	boxes []Box
}

func (s *boxServer) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()

	switch r.Method {
	case http.MethodGet:
		_ = json.NewEncoder(w).Encode(s.boxes)
	case http.MethodPost:
		title := r.URL.Query().Get("title")
		for _, b := range s.boxes {
			if b.Title == title {
				_ = json.NewEncoder(w).Encode(map[string]any{
					"error": map[string]any{
						"constraintViolation": map[string]any{
							"constraint": map[string]any{"box_unique": map[string]string{"title": title}},
						},
					},
				})
				return
			}
		}
		box := Box{ID: uuid.New(), Title: title}
		s.boxes = append(s.boxes, box)
		_ = json.NewEncoder(w).Encode(box)
	default:
		w.WriteHeader(http.StatusMethodNotAllowed)
	}
}

func TestFetchBoxesCell(t *testing.T) {
	srv := httptest.NewServer(&boxServer{})
	defer srv.Close()

	client := NewClient(serverFromURL(t, srv.URL), Authentication{Username: "alice", Password: "secret"}, zerolog.Nop())
	ctx := context.Background()
	cell := client.FetchBoxes()

	t.Run("created box is listed", func(t *testing.T) {
		created, err := client.CreateBox(ctx, "Kitchen")
		require.NoError(t, err)
		require.True(t, created.IsSuccess())

		require.NoError(t, cell.Reload(ctx))
		result, ok := cell.Value()
		require.True(t, ok)

		boxes, err := result.Get()
		require.NoError(t, err)
		require.Len(t, boxes, 1)
		assert.Equal(t, "Kitchen", boxes[0].Title)
	})

	t.Run("duplicate title is a domain failure", func(t *testing.T) {
		duplicate := Fetch[Box, BoxesCreateFailure](client, CreateBox("Kitchen"))
		require.NoError(t, duplicate.Reload(ctx))

		result, ok := duplicate.Value()
		require.True(t, ok)
		failure, failed := result.Failure()
		require.True(t, failed)
		require.NotNil(t, failure.Constraint)
		assert.Equal(t, ConstraintBoxUnique, failure.Constraint.Name)
		assert.Equal(t, "A box with this title already exists.", failure.Error())
		assert.NoError(t, duplicate.Err())
	})

	t.Run("unreachable server keeps the stale list", func(t *testing.T) {
		srv.Close()

		err := cell.Reload(ctx)
		require.Error(t, err)
		assert.ErrorIs(t, err, ErrOther)
		assert.ErrorIs(t, cell.Err(), ErrOther)

		result, ok := cell.Value()
		require.True(t, ok)
		boxes, err := result.Get()
		require.NoError(t, err)
		require.Len(t, boxes, 1)
		assert.Equal(t, "Kitchen", boxes[0].Title)
	})
}

func TestClientPercentEncoding(t *testing.T) {
	values := []string{
		"Küche 🍳",
		"a/b",
		"what?",
		"#1",
		"100%",
		"1+1",
		"mixed /?#%+ & = é",
	}

	for _, value := range values {
		t.Run(value, func(t *testing.T) {
			var segments []string
			var query url.Values
			client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
				for _, raw := range strings.Split(strings.TrimPrefix(r.URL.EscapedPath(), "/"), "/") {
					segment, err := url.PathUnescape(raw)
					assert.NoError(t, err)
					segments = append(segments, segment)
				}
				query = r.URL.Query()
				_, _ = w.Write([]byte(`[]`))
			})

			req := Request{
				Method: MethodGet,
				Path:   []string{"boxes", value},
				Query:  map[string]string{"title": value},
			}
			_, err := client.Do(context.Background(), req)
			require.NoError(t, err)

			assert.Equal(t, []string{"api", "boxes", value}, segments)
			assert.Equal(t, value, query.Get("title"))
		})
	}
}
