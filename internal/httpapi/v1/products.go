package v1

import (
	"net/http"

	chi "github.com/go-chi/chi/v5"

	"github.com/arnaudGHB/glconfig/internal/service/configure"
)

// postConfigure handles POST /v1/products/{id}/accounting.
// Partial successes still return 200; the body carries the rubriques that
// could not be cleanly applied.
func (s *Server) postConfigure(w http.ResponseWriter, r *http.Request) {
	req, _ := r.Context().Value(ctxKeyConfigure).(configureRequest)
	productID := chi.URLParam(r, "id")

	mappings := make([]configure.Mapping, 0, len(req.Mappings))
	for _, m := range req.Mappings {
		mappings = append(mappings, configure.Mapping{Rubrique: m.Rubrique, PositionID: m.ChartPositionID})
	}
	res, err := s.svc.Configure(r.Context(), configure.ConfigureRequest{
		ProductID:   productID,
		ProductName: req.ProductName,
		ProductType: req.ProductType,
		Mappings:    mappings,
		Branch:      branchFrom(r.Context()),
		Actor:       actorFrom(r),
	})
	if err != nil {
		observeRejected("configure")
		writeServiceError(w, err)
		return
	}
	observeOutcome("configure", res.WasCompletelySuccessful)
	toJSON(w, http.StatusOK, configureResponse{
		PrincipalAccountNumber:  res.PrincipalAccountNumber,
		ChartPositionID:         res.ChartPositionID,
		NotUpdated:              emptyIfNil(res.NotUpdated),
		WasCompletelySuccessful: res.WasCompletelySuccessful,
		Message:                 res.Message,
	})
}

// putUpdate handles PUT /v1/products/{id}/accounting.
func (s *Server) putUpdate(w http.ResponseWriter, r *http.Request) {
	req, _ := r.Context().Value(ctxKeyUpdate).(updateRequest)
	productID := chi.URLParam(r, "id")

	mappings := make([]configure.Mapping, 0, len(req.Mappings))
	for _, m := range req.Mappings {
		mappings = append(mappings, configure.Mapping{Rubrique: m.Rubrique, PositionID: m.ChartPositionID})
	}
	res, err := s.svc.Update(r.Context(), configure.UpdateRequest{
		ProductID:   productID,
		ProductName: req.ProductName,
		ProductType: req.ProductType,
		Mappings:    mappings,
		Branch:      branchFrom(r.Context()),
		Actor:       actorFrom(r),
	})
	if err != nil {
		observeRejected("update")
		writeServiceError(w, err)
		return
	}
	observeOutcome("update", res.WasCompletelySuccessful)
	toJSON(w, http.StatusOK, updateResponse{
		ItemsCreated:            res.ItemsCreated,
		HasNewAccountingBooks:   res.HasNewAccountingBooks,
		NotUpdated:              emptyIfNil(res.NotUpdated),
		WasCompletelySuccessful: res.WasCompletelySuccessful,
	})
}

// emptyIfNil keeps not_updated serialized as [] rather than null.
func emptyIfNil(in []string) []string {
	if in == nil {
		return []string{}
	}
	return in
}
