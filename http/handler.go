package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"

	"github.com/gastromatic/sqlstate"
)

// State is any reflected state whose namespace the handler can serve.
// Both sqlstate.State and the pgx pool variant satisfy it.
type State interface {
	S() sqlstate.Namespace
}

type CORSConfig struct {
	Enabled          bool     `mapstructure:"enabled"`
	AllowedOrigins   []string `mapstructure:"allowed_origins"`
	AllowedMethods   []string `mapstructure:"allowed_methods"`
	AllowedHeaders   []string `mapstructure:"allowed_headers"`
	ExposedHeaders   []string `mapstructure:"exposed_headers"`
	AllowCredentials bool     `mapstructure:"allow_credentials"`
	MaxAge           int      `mapstructure:"max_age"`
}

type HandlerConfig struct {
	CORS CORSConfig
}

// Handler serves the reflected catalog as a read-only JSON API.
type Handler struct {
	config HandlerConfig
	state  State
}

// NewHandler creates a new Handler over a reflected state.
func NewHandler(config *HandlerConfig, state State) *Handler {
	return &Handler{
		config: *config,
		state:  state,
	}
}

// SchemaSummary is one entry of the schema listing.
type SchemaSummary struct {
	Name   string `json:"name"`
	Schema string `json:"schema"`
	Tables int    `json:"tables"`
}

// TableSummary is one entry of a schema's table listing.
type TableSummary struct {
	Name    string `json:"name"`
	IsView  bool   `json:"is_view"`
	Columns int    `json:"columns"`
}

// SchemaResponse is the table listing for one schema.
type SchemaResponse struct {
	Name   string         `json:"name"`
	Schema string         `json:"schema"`
	Tables []TableSummary `json:"tables"`
}

// Router returns an http.Handler with the catalog routes configured.
func (h *Handler) Router() http.Handler {
	r := chi.NewRouter()

	r.Use(RequestLogger)

	if h.config.CORS.Enabled {
		r.Use(cors.Handler(cors.Options{
			AllowedOrigins:   h.config.CORS.AllowedOrigins,
			AllowedMethods:   h.config.CORS.AllowedMethods,
			AllowedHeaders:   h.config.CORS.AllowedHeaders,
			ExposedHeaders:   h.config.CORS.ExposedHeaders,
			AllowCredentials: h.config.CORS.AllowCredentials,
			MaxAge:           h.config.CORS.MaxAge,
		}))
	}

	r.Get("/schemas", h.handleListSchemas)
	r.Get("/schemas/{schema}", h.handleGetSchema)
	r.Get("/schemas/{schema}/tables/{table}", h.handleGetTable)

	return r
}

func (h *Handler) handleListSchemas(w http.ResponseWriter, r *http.Request) {
	ns := h.state.S()

	summaries := make([]SchemaSummary, 0, len(ns))
	for _, name := range ns.SchemaNames() {
		schema, err := ns.Schema(name)
		if err != nil {
			HandleError(w, err)
			return
		}
		summaries = append(summaries, SchemaSummary{
			Name:   name,
			Schema: schema.Name,
			Tables: len(schema.TableNames()),
		})
	}

	if err := WriteJSON(w, http.StatusOK, summaries); err != nil {
		HandleError(w, err)
	}
}

func (h *Handler) handleGetSchema(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "schema")

	schema, err := h.state.S().Schema(name)
	if err != nil {
		HandleError(w, err)
		return
	}

	resp := SchemaResponse{
		Name:   name,
		Schema: schema.Name,
		Tables: make([]TableSummary, 0, len(schema.TableNames())),
	}
	for _, t := range schema.Tables() {
		resp.Tables = append(resp.Tables, TableSummary{
			Name:    t.Name,
			IsView:  t.IsView,
			Columns: len(t.Columns),
		})
	}

	if err := WriteJSON(w, http.StatusOK, resp); err != nil {
		HandleError(w, err)
	}
}

func (h *Handler) handleGetTable(w http.ResponseWriter, r *http.Request) {
	schemaName := chi.URLParam(r, "schema")
	tableName := chi.URLParam(r, "table")

	schema, err := h.state.S().Schema(schemaName)
	if err != nil {
		HandleError(w, err)
		return
	}

	table, err := schema.Table(tableName)
	if err != nil {
		HandleError(w, err)
		return
	}

	if err := WriteJSON(w, http.StatusOK, table); err != nil {
		HandleError(w, err)
	}
}
