package http_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gastromatic/sqlstate"
	sqlstatehttp "github.com/gastromatic/sqlstate/http"
)

// staticState serves a fixed namespace without a database.
type staticState struct {
	ns sqlstate.Namespace
}

func (s *staticState) S() sqlstate.Namespace { return s.ns }

func newTestRouter() http.Handler {
	users := &sqlstate.Table{
		Schema:  "public",
		Name:    "users",
		Dialect: sqlstate.DialectPostgres,
		Columns: []sqlstate.Column{
			{Name: "id", DataType: "uuid", Position: 1, IsPrimaryKey: true},
			{Name: "email", DataType: "text", Position: 2},
		},
	}
	view := &sqlstate.Table{
		Schema:  "public",
		Name:    "user_emails",
		IsView:  true,
		Dialect: sqlstate.DialectPostgres,
		Columns: []sqlstate.Column{
			{Name: "id", DataType: "uuid", Position: 1},
			{Name: "email", DataType: "text", Position: 2},
		},
	}

	state := &staticState{ns: sqlstate.Namespace{
		"core": sqlstate.NewSchema("public", []*sqlstate.Table{users, view}),
	}}

	return sqlstatehttp.NewHandler(&sqlstatehttp.HandlerConfig{}, state).Router()
}

func TestHandler_ListSchemas(t *testing.T) {
	router := newTestRouter()

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/schemas", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))

	var schemas []sqlstatehttp.SchemaSummary
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &schemas))
	require.Len(t, schemas, 1)
	assert.Equal(t, "core", schemas[0].Name)
	assert.Equal(t, "public", schemas[0].Schema)
	assert.Equal(t, 2, schemas[0].Tables)
}

func TestHandler_GetSchema(t *testing.T) {
	router := newTestRouter()

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/schemas/core", nil))

	require.Equal(t, http.StatusOK, rec.Code)

	var resp sqlstatehttp.SchemaResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "core", resp.Name)
	assert.Equal(t, "public", resp.Schema)
	require.Len(t, resp.Tables, 2)
	assert.Equal(t, "user_emails", resp.Tables[0].Name)
	assert.True(t, resp.Tables[0].IsView)
	assert.Equal(t, "users", resp.Tables[1].Name)
	assert.Equal(t, 2, resp.Tables[1].Columns)
}

func TestHandler_GetSchema_NotFound(t *testing.T) {
	router := newTestRouter()

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/schemas/billing", nil))

	require.Equal(t, http.StatusNotFound, rec.Code)

	var resp sqlstatehttp.ErrorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "schema_not_found", resp.Error)
}

func TestHandler_GetTable(t *testing.T) {
	router := newTestRouter()

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/schemas/core/tables/users", nil))

	require.Equal(t, http.StatusOK, rec.Code)

	var table sqlstate.Table
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &table))
	assert.Equal(t, "users", table.Name)
	require.Len(t, table.Columns, 2)
	assert.Equal(t, "id", table.Columns[0].Name)
	assert.True(t, table.Columns[0].IsPrimaryKey)
}

func TestHandler_GetTable_NotFound(t *testing.T) {
	router := newTestRouter()

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/schemas/core/tables/orders", nil))

	require.Equal(t, http.StatusNotFound, rec.Code)

	var resp sqlstatehttp.ErrorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "table_not_found", resp.Error)
}

func TestHandler_CORSHeaders(t *testing.T) {
	state := &staticState{ns: sqlstate.Namespace{}}
	handler := sqlstatehttp.NewHandler(&sqlstatehttp.HandlerConfig{
		CORS: sqlstatehttp.CORSConfig{
			Enabled:        true,
			AllowedOrigins: []string{"https://admin.example.com"},
			AllowedMethods: []string{http.MethodGet},
		},
	}, state)

	req := httptest.NewRequest(http.MethodGet, "/schemas", nil)
	req.Header.Set("Origin", "https://admin.example.com")

	rec := httptest.NewRecorder()
	handler.Router().ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "https://admin.example.com", rec.Header().Get("Access-Control-Allow-Origin"))
}
