package umzug

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecodeFailureVariants(t *testing.T) {
	item, box := uuid.New(), uuid.New()

	tests := []struct {
		name           string
		body           string
		wantCode       FailureCode
		wantConstraint *Constraint
		wantDesc       string
	}{
		{
			name:     "bare string variant",
			body:     `{"error":"invalidContent"}`,
			wantCode: CodeInvalidContent,
			wantDesc: "The API responded with invalid content.",
		},
		{
			name:     "tagged empty variant",
			body:     `{"error":{"noContent":{}}}`,
			wantCode: CodeNoContent,
			wantDesc: "The API responded with empty content.",
		},
		{
			name:           "wrapped constraint",
			body:           `{"error":{"constraintViolation":{"constraint":{"packing_unique":{"item":"` + item.String() + `","box":"` + box.String() + `"}}}}}`,
			wantCode:       CodeConstraintViolation,
			wantConstraint: &Constraint{Name: ConstraintPackingUnique, Item: item, Box: box},
			wantDesc:       "This item is already packed.",
		},
		{
			name:           "unwrapped constraint",
			body:           `{"error":{"constraintViolation":{"packing_nonzero":{"amount":-3}}}}`,
			wantCode:       CodeConstraintViolation,
			wantConstraint: &Constraint{Name: ConstraintPackingNonzero, Amount: -3},
			wantDesc:       "Invalid amount.",
		},
		{
			name:     "constraint outside the closed set",
			body:     `{"error":{"constraintViolation":{"box_unique":{"title":"Kitchen"}}}}`,
			wantCode: CodeInvalidContent,
			wantDesc: "The API responded with invalid content.",
		},
		{
			name:     "constraint missing fields",
			body:     `{"error":{"constraintViolation":{"packing_unique":{"item":"` + item.String() + `"}}}}`,
			wantCode: CodeInvalidContent,
			wantDesc: "The API responded with invalid content.",
		},
		{
			name:     "multiple variants",
			body:     `{"error":{"noContent":{},"invalidContent":{}}}`,
			wantCode: CodeInvalidContent,
			wantDesc: "The API responded with invalid content.",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := Decode[Packing, PackingsCreateFailure]([]byte(tt.body))

			failure, failed := result.Failure()
			require.True(t, failed)
			assert.Equal(t, tt.wantCode, failure.Code)
			assert.Equal(t, tt.wantConstraint, failure.Constraint)
			assert.Equal(t, tt.wantDesc, failure.Error())
		})
	}
}

func TestDecodeModelNotFound(t *testing.T) {
	id := uuid.New()

	result := Decode[Item, ItemsUpdateFailure]([]byte(`{"error":{"modelNotFound":{"modelID":"` + id.String() + `"}}}`))
	failure, failed := result.Failure()
	require.True(t, failed)
	assert.Equal(t, CodeModelNotFound, failure.Code)
	assert.Equal(t, id, failure.ModelID)
	assert.Equal(t, "The API responded with an unexpected failure.", failure.Error())

	// Creating cannot fail with modelNotFound
	created := Decode[Item, ItemsCreateFailure]([]byte(`{"error":{"modelNotFound":{"modelID":"` + id.String() + `"}}}`))
	createFailure, failed := created.Failure()
	require.True(t, failed)
	assert.Equal(t, CodeInvalidContent, createFailure.Code)
}

func TestDecodeNullPayload(t *testing.T) {
	list := Decode[[]Box, ListFailure]([]byte("null"))
	assert.False(t, list.IsSuccess())

	single := Decode[Box, BoxesCreateFailure]([]byte("null"))
	failure, failed := single.Failure()
	require.True(t, failed)
	assert.Equal(t, CodeInvalidContent, failure.Code)
}

func TestDecodeSuccess(t *testing.T) {
	itemID, boxID, packingID := uuid.New(), uuid.New(), uuid.New()
	body := `{
		"id": "` + packingID.String() + `",
		"item": {"id": "` + itemID.String() + `", "title": "Mugs", "priority": "long_term"},
		"box": {"id": "` + boxID.String() + `", "title": "Kitchen"},
		"amount": 6
	}`

	result := Decode[Packing, PackingsCreateFailure]([]byte(body))
	packing, err := result.Get()
	require.NoError(t, err)

	assert.Equal(t, packingID, packing.ID)
	assert.Equal(t, 6, packing.Amount)
	assert.Equal(t, "Mugs", packing.Item.Title)
	require.NotNil(t, packing.Item.Priority)
	assert.Equal(t, PriorityLongTerm, *packing.Item.Priority)
	assert.Equal(t, "Long Term", packing.Item.PriorityLabel())
	assert.Equal(t, "Kitchen", packing.Box.Title)
}

func TestDecodeMissingRequiredField(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{name: "box without title", body: `[{"id":"` + uuid.NewString() + `"}]`},
		{name: "box without id", body: `[{"title":"Kitchen"}]`},
		{name: "bad uuid", body: `[{"id":"nope","title":"Kitchen"}]`},
		{name: "null error and no payload", body: `{"error":null}`},
		{name: "null body", body: "null"},
		{name: "null body with whitespace", body: " null\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := Decode[[]Box, ListFailure]([]byte(tt.body))
			failure, failed := result.Failure()
			require.True(t, failed)
			assert.Equal(t, CodeInvalidContent, failure.Code)
		})
	}
}

func TestDecodeOptional(t *testing.T) {
	t.Run("whitespace body", func(t *testing.T) {
		result := DecodeOptional[Box, DeleteFailure]([]byte("  \n"))
		box, err := result.Get()
		require.NoError(t, err)
		assert.Nil(t, box)
	})

	t.Run("payload", func(t *testing.T) {
		id := uuid.New()
		result := DecodeOptional[Box, DeleteFailure]([]byte(`{"id":"` + id.String() + `","title":"Garage"}`))
		box, err := result.Get()
		require.NoError(t, err)
		require.NotNil(t, box)
		assert.Equal(t, id, box.ID)
	})

	t.Run("null body", func(t *testing.T) {
		result := DecodeOptional[Box, DeleteFailure]([]byte("null"))
		failure, failed := result.Failure()
		require.True(t, failed)
		assert.Equal(t, CodeInvalidContent, failure.Code)
	})

	t.Run("invalid payload", func(t *testing.T) {
		result := DecodeOptional[Box, DeleteFailure]([]byte(`[1,2,3]`))
		failure, failed := result.Failure()
		require.True(t, failed)
		assert.Equal(t, CodeInvalidContent, failure.Code)
	})
}
