/*
handlers.go - HTTP API handlers for the conversion engine

PURPOSE:
  Exposes the unit catalog, converter management and the convert operation
  via REST. Handles HTTP request/response and JSON serialization, and
  delegates all conversion semantics to the scale package.

ENDPOINTS:
  Units:
    GET    /api/units                       List catalog units
    POST   /api/units                       Register a unit
    GET    /api/units/{id}                  Get a unit
    DELETE /api/units/{id}                  Remove a unit

  Converters:
    GET    /api/converters                  List converters
    POST   /api/converters                  Create converter (with lines)
    GET    /api/converters/{name}           Get converter
    PUT    /api/converters/{name}           Replace configuration and lines
    DELETE /api/converters/{name}           Delete (lines cascade)
    POST   /api/converters/{name}/convert   Run a conversion

  Admin:
    POST   /api/seed                        Load demo catalog + converters

ARCHITECTURE:
  Handler holds the SQLite store plus an in-memory snapshot: the unit
  catalog and fully-built converters keyed by name. The snapshot is
  rebuilt after every administrative write, so the convert hot path never
  touches the database.

ERROR HANDLING:
  - 400: Malformed input, unknown units in a definition
  - 404: Unknown converter or unit
  - 409: Duplicate converter name
  - 422: Valid request that the conversion rules reject
         (incompatible unit category, quantity out of scale)
  - 500: Internal errors

SEE ALSO:
  - dto.go: Request/response data structures
  - server.go: Router setup and middleware
*/
package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"

	"github.com/warp/uom-engine/factory"
	"github.com/warp/uom-engine/scale"
	"github.com/warp/uom-engine/store/sqlite"
	"github.com/warp/uom-engine/uom"
)

// =============================================================================
// HANDLER CONTEXT
// =============================================================================

// Handler holds all dependencies for HTTP handlers.
type Handler struct {
	Store *sqlite.Store

	// Snapshot served to the convert hot path. Rebuilt after admin writes.
	mu         sync.RWMutex
	catalog    *uom.Catalog
	converters map[string]*scale.Converter
}

// NewHandler creates a new handler with the given store.
func NewHandler(store *sqlite.Store) *Handler {
	return &Handler{
		Store:      store,
		catalog:    uom.Build(nil),
		converters: make(map[string]*scale.Converter),
	}
}

// Reload rebuilds the in-memory catalog and converter snapshot from the
// store. Converter records that no longer validate against the catalog
// (e.g. their unit was deleted) are skipped rather than taking down the
// rest of the configuration.
func (h *Handler) Reload(ctx context.Context) error {
	unitRecords, err := h.Store.ListUnits(ctx)
	if err != nil {
		return err
	}

	units := make([]uom.Unit, 0, len(unitRecords))
	for _, u := range unitRecords {
		units = append(units, uom.Unit{
			ID:       scale.UnitID(u.ID),
			Name:     u.Name,
			Category: scale.CategoryID(u.Category),
			Factor:   u.Factor,
		})
	}
	catalog := uom.Build(units)

	records, err := h.Store.ListConverters(ctx)
	if err != nil {
		return err
	}

	f := factory.New(catalog)
	converters := make(map[string]*scale.Converter, len(records))
	for _, r := range records {
		conv, err := f.FromJSON(recordToJSON(r))
		if err != nil {
			continue
		}
		converters[conv.Name] = conv
	}

	h.mu.Lock()
	h.catalog = catalog
	h.converters = converters
	h.mu.Unlock()
	return nil
}

func (h *Handler) snapshot() (*uom.Catalog, map[string]*scale.Converter) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.catalog, h.converters
}

// =============================================================================
// UNIT HANDLERS
// =============================================================================

// ListUnits returns all catalog units.
func (h *Handler) ListUnits(w http.ResponseWriter, r *http.Request) {
	units, err := h.Store.ListUnits(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list units", err)
		return
	}

	dtos := make([]UnitDTO, len(units))
	for i, u := range units {
		dtos[i] = unitDTO(u)
	}
	writeJSON(w, http.StatusOK, dtos)
}

// GetUnit returns a single catalog unit.
func (h *Handler) GetUnit(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	u, err := h.Store.GetUnit(r.Context(), id)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to get unit", err)
		return
	}
	if u == nil {
		writeError(w, http.StatusNotFound, "Unit not found", nil)
		return
	}
	writeJSON(w, http.StatusOK, unitDTO(*u))
}

// CreateUnit registers or updates a catalog unit.
func (h *Handler) CreateUnit(w http.ResponseWriter, r *http.Request) {
	var req CreateUnitRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	if req.ID == "" || req.Category == "" {
		writeError(w, http.StatusBadRequest, "id and category are required", nil)
		return
	}
	factor := req.Factor
	if factor.IsZero() {
		factor = decimal.NewFromInt(1)
	}

	rec := sqlite.UnitRecord{
		ID:       req.ID,
		Name:     req.Name,
		Category: req.Category,
		Factor:   scale.Quantize(factor),
	}
	if rec.Name == "" {
		rec.Name = rec.ID
	}

	if err := h.Store.SaveUnit(r.Context(), rec); err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to save unit", err)
		return
	}
	if err := h.Reload(r.Context()); err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to reload configuration", err)
		return
	}
	writeJSON(w, http.StatusCreated, unitDTO(rec))
}

// DeleteUnit removes a catalog unit.
func (h *Handler) DeleteUnit(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	if err := h.Store.DeleteUnit(r.Context(), id); err != nil {
		if scale.IsNotFound(err) {
			writeError(w, http.StatusNotFound, "Unit not found", err)
			return
		}
		writeError(w, http.StatusInternalServerError, "Failed to delete unit", err)
		return
	}
	if err := h.Reload(r.Context()); err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to reload configuration", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// =============================================================================
// CONVERTER HANDLERS
// =============================================================================

// ListConverters returns all converters with their scale lines.
func (h *Handler) ListConverters(w http.ResponseWriter, r *http.Request) {
	records, err := h.Store.ListConverters(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list converters", err)
		return
	}

	dtos := make([]ConverterDTO, len(records))
	for i, rec := range records {
		dtos[i] = converterDTO(rec)
	}
	writeJSON(w, http.StatusOK, dtos)
}

// GetConverter returns a single converter.
func (h *Handler) GetConverter(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")

	rec, err := h.Store.GetConverter(r.Context(), name)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to get converter", err)
		return
	}
	if rec == nil {
		writeError(w, http.StatusNotFound, "Converter not found", nil)
		return
	}
	writeJSON(w, http.StatusOK, converterDTO(*rec))
}

// CreateConverter creates a converter from a JSON definition.
func (h *Handler) CreateConverter(w http.ResponseWriter, r *http.Request) {
	var cj factory.ConverterJSON
	if err := json.NewDecoder(r.Body).Decode(&cj); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	catalog, _ := h.snapshot()
	conv, err := factory.New(catalog).FromJSON(cj)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid converter definition", err)
		return
	}

	if err := h.Store.CreateConverter(r.Context(), jsonToRecord(cj)); err != nil {
		if errors.Is(err, scale.ErrDuplicateName) {
			writeError(w, http.StatusConflict, "Converter name already exists", err)
			return
		}
		writeError(w, http.StatusInternalServerError, "Failed to create converter", err)
		return
	}
	if err := h.Reload(r.Context()); err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to reload configuration", err)
		return
	}
	writeJSON(w, http.StatusCreated, ConverterDTO{ConverterJSON: factory.New(catalog).ToJSON(conv)})
}

// UpdateConverter replaces an existing converter's configuration and lines.
func (h *Handler) UpdateConverter(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")

	var cj factory.ConverterJSON
	if err := json.NewDecoder(r.Body).Decode(&cj); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	cj.Name = name

	catalog, _ := h.snapshot()
	if _, err := factory.New(catalog).FromJSON(cj); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid converter definition", err)
		return
	}

	if err := h.Store.UpdateConverter(r.Context(), jsonToRecord(cj)); err != nil {
		if scale.IsNotFound(err) {
			writeError(w, http.StatusNotFound, "Converter not found", err)
			return
		}
		writeError(w, http.StatusInternalServerError, "Failed to update converter", err)
		return
	}
	if err := h.Reload(r.Context()); err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to reload configuration", err)
		return
	}
	writeJSON(w, http.StatusOK, ConverterDTO{ConverterJSON: cj})
}

// DeleteConverter removes a converter and its scale lines.
func (h *Handler) DeleteConverter(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")

	if err := h.Store.DeleteConverter(r.Context(), name); err != nil {
		if scale.IsNotFound(err) {
			writeError(w, http.StatusNotFound, "Converter not found", err)
			return
		}
		writeError(w, http.StatusInternalServerError, "Failed to delete converter", err)
		return
	}
	if err := h.Reload(r.Context()); err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to reload configuration", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// =============================================================================
// CONVERSION HANDLER
// =============================================================================

// ConvertQuantity runs a conversion against the in-memory snapshot.
func (h *Handler) ConvertQuantity(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")

	var req ConvertRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	catalog, converters := h.snapshot()
	conv, ok := converters[name]
	if !ok {
		writeError(w, http.StatusNotFound, "Converter not found", scale.ErrConverterNotFound)
		return
	}

	result, err := conv.Convert(req.Quantity, scale.UnitID(req.InputUnit), scale.UnitID(req.OutputUnit))
	if err != nil {
		switch {
		case errors.Is(err, scale.ErrIncompatibleUnitCategory),
			errors.Is(err, scale.ErrQuantityOutOfRange):
			writeError(w, http.StatusUnprocessableEntity, "Conversion rejected", err)
		case errors.Is(err, scale.ErrUnknownUnit):
			writeError(w, http.StatusBadRequest, "Unknown unit", err)
		default:
			writeError(w, http.StatusInternalServerError, "Conversion failed", err)
		}
		return
	}

	resultUnit := conv.DestinationUnit
	if req.OutputUnit != "" {
		resultUnit = scale.UnitID(req.OutputUnit)
	}

	writeJSON(w, http.StatusOK, ConvertResponse{
		Converter: conv.Name,
		Result:    result.String(),
		Unit:      catalog.Name(resultUnit),
	})
}

// =============================================================================
// SEED HANDLER
// =============================================================================

// Seed loads the default catalog and demo converters. Idempotent for units;
// existing demo converters are left untouched.
func (h *Handler) Seed(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	for _, u := range uom.DefaultCatalog().Units() {
		rec := sqlite.UnitRecord{
			ID:       string(u.ID),
			Name:     u.Name,
			Category: string(u.Category),
			Factor:   u.Factor,
		}
		if err := h.Store.SaveUnit(ctx, rec); err != nil {
			writeError(w, http.StatusInternalServerError, "Failed to seed units", err)
			return
		}
	}

	for _, def := range []string{factory.FlourToEggsJSON(), factory.PackagingJSON()} {
		var cj factory.ConverterJSON
		if err := json.Unmarshal([]byte(def), &cj); err != nil {
			writeError(w, http.StatusInternalServerError, "Invalid seed definition", err)
			return
		}
		err := h.Store.CreateConverter(ctx, jsonToRecord(cj))
		if err != nil && !errors.Is(err, scale.ErrDuplicateName) {
			writeError(w, http.StatusInternalServerError, "Failed to seed converters", err)
			return
		}
	}

	if err := h.Reload(ctx); err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to reload configuration", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "seeded"})
}

// =============================================================================
// MAPPING HELPERS
// =============================================================================

func unitDTO(u sqlite.UnitRecord) UnitDTO {
	return UnitDTO{
		ID:       u.ID,
		Name:     u.Name,
		Category: u.Category,
		Factor:   u.Factor.String(),
	}
}

func converterDTO(r sqlite.ConverterRecord) ConverterDTO {
	dto := ConverterDTO{ConverterJSON: recordToJSON(r)}
	if !r.CreatedAt.IsZero() {
		dto.CreatedAt = r.CreatedAt.Format(time.RFC3339)
	}
	if !r.UpdatedAt.IsZero() {
		dto.UpdatedAt = r.UpdatedAt.Format(time.RFC3339)
	}
	return dto
}

func recordToJSON(r sqlite.ConverterRecord) factory.ConverterJSON {
	cj := factory.ConverterJSON{
		Name:            r.Name,
		SourceUnit:      r.SourceUnit,
		DestinationUnit: r.DestinationUnit,
		Rounding:        r.Rounding,
		Description:     r.Description,
	}
	for _, l := range r.Lines {
		cj.Lines = append(cj.Lines, factory.LineJSON{
			MaxQuantity: l.MaxQuantity,
			Coefficient: l.Coefficient,
			Constant:    l.Constant,
		})
	}
	return cj
}

func jsonToRecord(cj factory.ConverterJSON) sqlite.ConverterRecord {
	rec := sqlite.ConverterRecord{
		Name:            cj.Name,
		SourceUnit:      cj.SourceUnit,
		DestinationUnit: cj.DestinationUnit,
		Rounding:        string(scale.ParseRoundingPolicy(cj.Rounding)),
		Description:     cj.Description,
	}
	for _, l := range cj.Lines {
		rec.Lines = append(rec.Lines, sqlite.LineRecord{
			MaxQuantity: scale.Quantize(l.MaxQuantity),
			Coefficient: scale.Quantize(l.Coefficient),
			Constant:    scale.Quantize(l.Constant),
		})
	}
	return rec
}

// =============================================================================
// RESPONSE HELPERS
// =============================================================================

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string, err error) {
	resp := ErrorResponse{Error: msg}
	if err != nil {
		resp.Detail = err.Error()
	}
	writeJSON(w, status, resp)
}
