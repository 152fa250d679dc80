package validator

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type addItem struct {
	Kind      string   `json:"kind" validate:"required,oneof=coffee matcha dessert"`
	ProductID string   `json:"product_id" validate:"required"`
	Quantity  int      `json:"quantity" validate:"gte=1,lte=99"`
	AddOnIDs  []string `json:"add_on_ids" validate:"unique"`
}

func TestValidate_Success(t *testing.T) {
	err := Validate(addItem{Kind: "coffee", ProductID: "c1", Quantity: 2})
	assert.NoError(t, err)
}

func TestValidate_UsesJSONFieldNames(t *testing.T) {
	err := Validate(addItem{Kind: "tea", Quantity: 0})
	require.Error(t, err)

	var valErr *ValidationError
	require.ErrorAs(t, err, &valErr)
	fields := valErr.Fields()
	assert.Equal(t, "must be one of: coffee matcha dessert", fields["kind"])
	assert.Equal(t, "is required", fields["product_id"])
	assert.Equal(t, "must be greater than or equal to 1", fields["quantity"])
}

func TestValidate_UniqueAddOns(t *testing.T) {
	err := Validate(addItem{Kind: "matcha", ProductID: "m1", Quantity: 1, AddOnIDs: []string{"a", "a"}})

	var valErr *ValidationError
	require.ErrorAs(t, err, &valErr)
	assert.Equal(t, "must not contain duplicates", valErr.Fields()["add_on_ids"])
	assert.Contains(t, valErr.Error(), "field 'add_on_ids'")
}

func TestDecodeAndValidate(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"kind":"dessert","product_id":"d1","quantity":3}`))
	var dst addItem
	require.NoError(t, DecodeAndValidate(req, &dst))
	assert.Equal(t, 3, dst.Quantity)
}

func TestDecodeAndValidate_MalformedBody(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"kind":`))
	var dst addItem
	err := DecodeAndValidate(req, &dst)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "decode request body")
}
