package umzug

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

func TestRequestFactories(t *testing.T) {
	id, item, box := uuid.New(), uuid.New(), uuid.New()
	title := "Plates"
	priority := PriorityImmediate
	amount := 4

	tests := []struct {
		name       string
		req        Request
		wantMethod Method
		wantPath   []string
		wantQuery  map[string]string
	}{
		{
			name:       "list boxes",
			req:        ListBoxes(),
			wantMethod: MethodGet,
			wantPath:   []string{"boxes"},
			wantQuery:  map[string]string{},
		},
		{
			name:       "update box",
			req:        UpdateBox(id, "Garage"),
			wantMethod: MethodPatch,
			wantPath:   []string{"boxes", id.String()},
			wantQuery:  map[string]string{"title": "Garage"},
		},
		{
			name:       "create item without priority",
			req:        CreateItem("Plates", ""),
			wantMethod: MethodPost,
			wantPath:   []string{"items"},
			wantQuery:  map[string]string{"title": "Plates"},
		},
		{
			name:       "create item with priority",
			req:        CreateItem("Plates", PriorityConvenience),
			wantMethod: MethodPost,
			wantPath:   []string{"items"},
			wantQuery:  map[string]string{"title": "Plates", "priority": "convenience"},
		},
		{
			name:       "update item",
			req:        UpdateItem(id, &title, &priority),
			wantMethod: MethodPatch,
			wantPath:   []string{"items", id.String()},
			wantQuery:  map[string]string{"title": "Plates", "priority": "immediate"},
		},
		{
			name:       "delete item",
			req:        DeleteItem(id),
			wantMethod: MethodDelete,
			wantPath:   []string{"items", id.String()},
			wantQuery:  map[string]string{},
		},
		{
			name:       "list packings by box",
			req:        ListPackings(nil, &box),
			wantMethod: MethodGet,
			wantPath:   []string{"packings"},
			wantQuery:  map[string]string{"boxID": box.String()},
		},
		{
			name:       "create packing",
			req:        CreatePacking(item, box, 2),
			wantMethod: MethodPost,
			wantPath:   []string{"packings"},
			wantQuery:  map[string]string{"itemID": item.String(), "boxID": box.String(), "amount": "2"},
		},
		{
			name:       "update packing amount",
			req:        UpdatePacking(id, nil, nil, &amount),
			wantMethod: MethodPatch,
			wantPath:   []string{"packings", id.String()},
			wantQuery:  map[string]string{"amount": "4"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.wantMethod, tt.req.Method)
			assert.Equal(t, tt.wantPath, tt.req.Path)
			assert.Equal(t, tt.wantQuery, tt.req.Query)
		})
	}
}

func TestRequestClone(t *testing.T) {
	req := CreateBox("Kitchen")
	clone := req.Clone()

	clone.Query["title"] = "Garage"
	clone.Path[0] = "items"

	assert.Equal(t, "Kitchen", req.Query["title"])
	assert.Equal(t, "boxes", req.Path[0])
}

func TestParsePriority(t *testing.T) {
	tests := []struct {
		input   string
		want    Priority
		wantErr bool
	}{
		{input: "immediate", want: PriorityImmediate},
		{input: "Long Term", want: PriorityLongTerm},
		{input: "long-term", want: PriorityLongTerm},
		{input: " Standard ", want: PriorityStandard},
		{input: "someday", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := ParsePriority(tt.input)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			assert.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}
