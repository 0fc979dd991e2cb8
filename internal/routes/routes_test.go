package routes

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stockpile-hq/stockpile/internal/app"
	"github.com/stockpile-hq/stockpile/internal/config"
	"github.com/stockpile-hq/stockpile/internal/db"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type client struct {
	t       *testing.T
	handler http.Handler
	token   string
}

func newClient(t *testing.T) *client {
	t.Helper()
	cfg := &config.Config{
		AppName:       "Stockpile",
		AppEnv:        "development",
		AppURL:        "http://localhost:8080",
		DBDriver:      "sqlite",
		JWTSecret:     "test-secret",
		JWTExpiry:     time.Hour,
		EmailFrom:     "noreply@example.com",
		MaxUploadSize: 1 << 20,
	}
	a, err := app.NewWithDB(context.Background(), cfg, db.SetupTestDB(t))
	require.NoError(t, err)
	return &client{t: t, handler: SetupRoutes(a)}
}

func (c *client) do(method, path string, body any) *httptest.ResponseRecorder {
	c.t.Helper()
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(c.t, err)
		reader = bytes.NewReader(data)
	}
	r := httptest.NewRequest(method, path, reader)
	r.Header.Set("Content-Type", "application/json")
	if c.token != "" {
		r.Header.Set("Authorization", "Bearer "+c.token)
	}
	rec := httptest.NewRecorder()
	c.handler.ServeHTTP(rec, r)
	return rec
}

func (c *client) login(email, org string) {
	c.t.Helper()
	body := map[string]any{"email": email, "password": "correct horse battery"}
	if org != "" {
		body["organizationId"] = org
	}
	rec := c.do(http.MethodPost, "/api/auth/register", body)
	require.Equal(c.t, http.StatusCreated, rec.Code, rec.Body.String())

	var out struct {
		Token string `json:"token"`
	}
	decode(c.t, rec, &out)
	require.NotEmpty(c.t, out.Token)
	c.token = out.Token
}

func decode(t *testing.T, rec *httptest.ResponseRecorder, v any) {
	t.Helper()
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), v), rec.Body.String())
}

type apiError struct {
	Error struct {
		Kind    string `json:"kind"`
		Message string `json:"message"`
		Field   string `json:"field"`
	} `json:"error"`
}

func TestRequiresAuthentication(t *testing.T) {
	c := newClient(t)

	rec := c.do(http.MethodGet, "/api/attributes", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = c.do(http.MethodGet, "/healthz", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())
	assert.Equal(t, "nosniff", rec.Header().Get("X-Content-Type-Options"))
	assert.NotEmpty(t, rec.Header().Get("X-Request-ID"))

	rec = c.do(http.MethodGet, "/metrics", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code, "metrics endpoint disabled")
}

func TestLogin(t *testing.T) {
	c := newClient(t)
	c.login("clerk@example.com", "org-1")

	rec := c.do(http.MethodPost, "/api/auth/login", map[string]string{"email": "clerk@example.com", "password": "correct horse battery"})
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.NotEmpty(t, rec.Result().Cookies())

	rec = c.do(http.MethodPost, "/api/auth/login", map[string]string{"email": "clerk@example.com", "password": "wrong horse battery"})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = c.do(http.MethodPost, "/api/auth/register", map[string]string{"email": "clerk@example.com", "password": "correct horse battery"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	var e apiError
	decode(t, rec, &e)
	assert.Equal(t, "validation", e.Error.Kind)
	assert.Equal(t, "email", e.Error.Field)
}

func TestAttributeValueFlow(t *testing.T) {
	c := newClient(t)
	c.login("clerk@example.com", "org-1")

	rec := c.do(http.MethodGet, "/api/attributes", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `[]`, rec.Body.String())

	rec = c.do(http.MethodPost, "/api/attributes", map[string]any{"name": "Weight", "type": "metric", "unit": "kilogram"})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	var attr struct {
		ID     string `json:"id"`
		Type   string `json:"type"`
		Values []any  `json:"values"`
	}
	decode(t, rec, &attr)
	assert.Equal(t, "metric", attr.Type)
	assert.NotNil(t, attr.Values)

	rec = c.do(http.MethodPost, "/api/attributes/"+attr.ID+"/values", map[string]any{"type": "metric", "value": 12.5})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	var value struct {
		Value      float64 `json:"value"`
		MetricUnit string  `json:"metricUnit"`
		Type       string  `json:"type"`
	}
	decode(t, rec, &value)
	assert.Equal(t, 12.5, value.Value)
	assert.Equal(t, "kilogram", value.MetricUnit)
	assert.Equal(t, "metric", value.Type)

	rec = c.do(http.MethodPost, "/api/attributes/"+attr.ID+"/values", map[string]any{"type": "number", "value": 1})
	assert.Equal(t, http.StatusConflict, rec.Code)

	rec = c.do(http.MethodPost, "/api/attributes/"+attr.ID+"/values", map[string]any{"type": "metric", "value": 1, "unit": "lightyear"})
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	var e apiError
	decode(t, rec, &e)
	assert.Equal(t, "invalid_value", e.Error.Kind)
	assert.Contains(t, e.Error.Message, "Metric unit must be one of")

	rec = c.do(http.MethodPost, "/api/attributes/missing/values", map[string]any{"type": "metric", "value": 1})
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = c.do(http.MethodPost, "/api/attributes", map[string]any{"name": "Color", "type": "color"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = c.do(http.MethodGet, "/api/attributes/"+attr.ID, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	decode(t, rec, &attr)
	assert.Len(t, attr.Values, 1)

	rec = c.do(http.MethodPatch, "/api/attributes/"+attr.ID, map[string]any{"name": "Net weight"})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"name":"Net weight"`)

	rec = c.do(http.MethodGet, "/api/attributes?scope=organization", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var list []map[string]any
	decode(t, rec, &list)
	assert.Len(t, list, 1)

	rec = c.do(http.MethodGet, "/api/attributes?scope=galaxy", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = c.do(http.MethodDelete, "/api/attributes/"+attr.ID, nil)
	assert.Equal(t, http.StatusNoContent, rec.Code)
	rec = c.do(http.MethodGet, "/api/attributes/"+attr.ID, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestAttributeTenantIsolation(t *testing.T) {
	owner := newClient(t)
	owner.login("owner@example.com", "org-a")
	other := newClientSharing(owner)
	other.login("other@example.com", "org-b")

	rec := owner.do(http.MethodPost, "/api/attributes", map[string]any{"name": "Serial", "type": "text"})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	var attr struct {
		ID string `json:"id"`
	}
	decode(t, rec, &attr)

	rec = owner.do(http.MethodPost, "/api/assets", map[string]any{"name": "Drill", "type": "unique"})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	var asset struct {
		ID string `json:"id"`
	}
	decode(t, rec, &asset)
	rec = owner.do(http.MethodPost, "/api/assets/"+asset.ID+"/instances", map[string]string{"label": "Drill #1"})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	var instance struct {
		ID string `json:"id"`
	}
	decode(t, rec, &instance)

	rec = other.do(http.MethodGet, "/api/attributes/"+attr.ID, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = other.do(http.MethodPost, "/api/attributes/"+attr.ID+"/values", map[string]any{"type": "text", "value": "injected"})
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = other.do(http.MethodPost, "/api/attributes", map[string]any{"name": "Notes", "type": "text"})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	var own struct {
		ID string `json:"id"`
	}
	decode(t, rec, &own)
	rec = other.do(http.MethodPost, "/api/attributes/"+own.ID+"/values", map[string]any{"type": "text", "value": "x", "assetInstanceId": instance.ID})
	assert.Equal(t, http.StatusNotFound, rec.Code, "instance belongs to another organization")

	var list []struct {
		ID     string `json:"id"`
		Values []any  `json:"values"`
	}
	rec = other.do(http.MethodGet, "/api/attributes", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	decode(t, rec, &list)
	require.Len(t, list, 1)
	assert.Equal(t, own.ID, list[0].ID)
	assert.Empty(t, list[0].Values)

	var ownerList []struct {
		ID     string `json:"id"`
		Values []any  `json:"values"`
	}
	rec = owner.do(http.MethodGet, "/api/attributes", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	decode(t, rec, &ownerList)
	require.Len(t, ownerList, 1)
	assert.Equal(t, attr.ID, ownerList[0].ID)
	assert.Empty(t, ownerList[0].Values)
}

func TestAttributeTypes(t *testing.T) {
	c := newClient(t)
	c.login("clerk@example.com", "")

	rec := c.do(http.MethodGet, "/api/attribute-types", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var types []struct {
		Type      string   `json:"type"`
		Companion string   `json:"companion"`
		Units     []string `json:"units"`
	}
	decode(t, rec, &types)
	require.Len(t, types, 9)
	assert.Equal(t, "number", types[0].Type)
	assert.Equal(t, "metric", types[2].Type)
	assert.Equal(t, "unit", types[2].Companion)
	assert.Contains(t, types[2].Units, "kilogram")
}

func TestAssetFlow(t *testing.T) {
	c := newClient(t)
	c.login("clerk@example.com", "org-1")

	rec := c.do(http.MethodPost, "/api/assets", map[string]any{"name": "Drill", "type": "consumable", "quantity": 3})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	var asset struct {
		ID string `json:"id"`
	}
	decode(t, rec, &asset)

	rec = c.do(http.MethodPost, "/api/assets/"+asset.ID+"/instances", map[string]string{"label": "Drill #1"})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	var instance struct {
		ID string `json:"id"`
	}
	decode(t, rec, &instance)

	rec = c.do(http.MethodPost, "/api/attributes", map[string]any{"name": "Serviced", "type": "switch"})
	require.Equal(t, http.StatusCreated, rec.Code)
	var attr struct {
		ID string `json:"id"`
	}
	decode(t, rec, &attr)

	rec = c.do(http.MethodPost, "/api/assets/"+asset.ID+"/attributes", map[string]string{"attributeId": attr.ID})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	rec = c.do(http.MethodPost, "/api/attributes/"+attr.ID+"/values", map[string]any{"type": "switch", "value": true, "assetInstanceId": instance.ID})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	rec = c.do(http.MethodGet, "/api/assets/"+asset.ID, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var view struct {
		Name       string `json:"name"`
		Instances  []any  `json:"instances"`
		Attributes []struct {
			Name   string `json:"name"`
			Values []struct {
				Value bool `json:"value"`
			} `json:"values"`
		} `json:"attributes"`
	}
	decode(t, rec, &view)
	assert.Equal(t, "Drill", view.Name)
	assert.Len(t, view.Instances, 1)
	require.Len(t, view.Attributes, 1)
	require.Len(t, view.Attributes[0].Values, 1)
	assert.True(t, view.Attributes[0].Values[0].Value)

	rec = c.do(http.MethodGet, "/api/assets/"+asset.ID+"/report?format=md", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "text/markdown; charset=utf-8", rec.Header().Get("Content-Type"))
	assert.Contains(t, rec.Body.String(), "| Serviced | Switch | Yes |")

	rec = c.do(http.MethodPatch, "/api/assets/"+asset.ID, map[string]any{"quantity": 7})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"quantity":7`)

	rec = c.do(http.MethodGet, "/api/assets", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var assets []any
	decode(t, rec, &assets)
	assert.Len(t, assets, 1)

	outsider := newClientSharing(c)
	outsider.login("outsider@example.com", "org-2")
	rec = outsider.do(http.MethodGet, "/api/assets/"+asset.ID, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = c.do(http.MethodDelete, "/api/assets/"+asset.ID, nil)
	assert.Equal(t, http.StatusNoContent, rec.Code)
	rec = c.do(http.MethodGet, "/api/assets/"+asset.ID, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestUploadWithoutStorage(t *testing.T) {
	c := newClient(t)
	c.login("clerk@example.com", "org-1")

	rec := c.do(http.MethodPost, "/api/attributes", map[string]any{"name": "Manual", "type": "file"})
	require.Equal(t, http.StatusCreated, rec.Code)
	var attr struct {
		ID string `json:"id"`
	}
	decode(t, rec, &attr)

	var body bytes.Buffer
	body.WriteString("--b\r\nContent-Disposition: form-data; name=\"file\"; filename=\"m.pdf\"\r\nContent-Type: application/pdf\r\n\r\n%PDF-1.4\n\r\n--b--\r\n")
	r := httptest.NewRequest(http.MethodPost, "/api/attributes/"+attr.ID+"/files", &body)
	r.Header.Set("Content-Type", "multipart/form-data; boundary=b")
	r.Header.Set("Authorization", "Bearer "+c.token)
	rec = httptest.NewRecorder()
	c.handler.ServeHTTP(rec, r)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	var e apiError
	decode(t, rec, &e)
	assert.Equal(t, "file storage is not configured", e.Error.Message)
}

func TestMalformedBody(t *testing.T) {
	c := newClient(t)
	c.login("clerk@example.com", "org-1")

	r := httptest.NewRequest(http.MethodPost, "/api/attributes", bytes.NewBufferString("{"))
	r.Header.Set("Authorization", "Bearer "+c.token)
	rec := httptest.NewRecorder()
	c.handler.ServeHTTP(rec, r)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	var e apiError
	decode(t, rec, &e)
	assert.Equal(t, "invalid JSON body", e.Error.Message)
}

func newClientSharing(c *client) *client {
	return &client{t: c.t, handler: c.handler}
}
