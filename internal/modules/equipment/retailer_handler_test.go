package equipment

import (
	"encoding/json"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func decodeLink(t *testing.T, raw json.RawMessage) RetailerLinkResponse {
	t.Helper()
	var data struct {
		Link RetailerLinkResponse `json:"retailer_link"`
	}
	require.NoError(t, json.Unmarshal(raw, &data))
	return data.Link
}

func TestRetailerLinks_StandaloneCreate(t *testing.T) {
	env := setupRouter(t)
	_, token1 := env.user(t, "user1")
	_, token2 := env.user(t, "user2")

	mine := env.createEquipment(t, token1, espresso())
	other := env.createEquipment(t, token2, espresso())

	link := map[string]any{
		"retailer_id": "amazon",
		"price":       "899.99",
		"url":         "https://amazon.com/product",
	}

	w, resp := env.do(t, http.MethodPost, "/api/v1/retailer-links", link, token1)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, []string{"This field is required."}, resp.Error.Details["equipment_id"])

	link["equipment_id"] = other.ID
	w, resp = env.do(t, http.MethodPost, "/api/v1/retailer-links", link, token1)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, []string{equipmentMissingMessage}, resp.Error.Details["equipment_id"])
	assert.Zero(t, env.linkCount(t, other.ID))

	link["equipment_id"] = itoa(mine.ID)
	link["affiliate_code"] = "AFF123"
	w, resp = env.do(t, http.MethodPost, "/api/v1/retailer-links", link, token1)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	created := decodeLink(t, resp.Data)
	assert.Equal(t, mine.ID, created.EquipmentID)
	require.NotNil(t, created.AffiliateCode)
	assert.Equal(t, "AFF123", *created.AffiliateCode)
}

func TestRetailerLinks_ScopedThroughEquipment(t *testing.T) {
	env := setupRouter(t)
	_, token1 := env.user(t, "user1")
	_, token2 := env.user(t, "user2")

	mine := env.createEquipment(t, token1, espresso())
	w, resp := env.do(t, http.MethodPost, "/api/v1/equipment/"+itoa(mine.ID)+"/add_retailer", map[string]any{
		"retailer_id": "amazon",
		"price":       "899.99",
		"url":         "https://amazon.com/product",
	}, token1)
	require.Equal(t, http.StatusCreated, w.Code)
	link := decodeLink(t, resp.Data)
	path := "/api/v1/retailer-links/" + itoa(link.ID)

	w, resp = env.do(t, http.MethodGet, "/api/v1/retailer-links?equipment_id="+itoa(mine.ID), nil, token1)
	require.Equal(t, http.StatusOK, w.Code)
	var list RetailerLinkListResponse
	require.NoError(t, json.Unmarshal(resp.Data, &list))
	require.Len(t, list.RetailerLinks, 1)

	w, resp = env.do(t, http.MethodGet, "/api/v1/retailer-links", nil, token2)
	require.Equal(t, http.StatusOK, w.Code)
	require.NoError(t, json.Unmarshal(resp.Data, &list))
	assert.Empty(t, list.RetailerLinks)

	for _, method := range []string{http.MethodGet, http.MethodPatch, http.MethodDelete} {
		w, _ = env.do(t, method, path, map[string]any{"price": "1.00"}, token2)
		assert.Equal(t, http.StatusNotFound, w.Code, method)
	}

	// PUT needs every required key, PATCH does not
	w, resp = env.do(t, http.MethodPut, path, map[string]any{"price": "850.00"}, token1)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, resp.Error.Details, "retailer_id")
	assert.Contains(t, resp.Error.Details, "url")

	w, resp = env.do(t, http.MethodPatch, path, map[string]any{"price": "850", "equipment_id": 12345}, token1)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	updated := decodeLink(t, resp.Data)
	assert.Equal(t, "850.00", updated.Price)
	assert.Equal(t, mine.ID, updated.EquipmentID)

	w, resp = env.do(t, http.MethodPatch, path, map[string]any{"price": nil}, token1)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, resp.Error.Details, "price")

	w, _ = env.do(t, http.MethodDelete, path, nil, token1)
	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Zero(t, env.linkCount(t, mine.ID))
}
