package v1

import (
	"net/http"

	"github.com/arnaudGHB/glconfig/internal/ledger"
	"github.com/arnaudGHB/glconfig/internal/rubrique"
)

// listRubriques handles GET /v1/rubriques. The optional family query filters
// by account-type family (ORD or OPE).
func (s *Server) listRubriques(w http.ResponseWriter, r *http.Request) {
	var fam *ledger.AccountTypeFamily
	if raw := r.URL.Query().Get("family"); raw != "" {
		f := ledger.AccountTypeFamily(raw)
		if f != ledger.FamilyOrdinary && f != ledger.FamilyOperational {
			badRequest(w, "invalid family; expected ORD or OPE")
			return
		}
		fam = &f
	}
	type rubriqueItem struct {
		rubrique.Def
		Direction ledger.BookingDirection `json:"direction"`
	}
	defs := rubrique.For(fam)
	items := make([]rubriqueItem, 0, len(defs))
	for _, d := range defs {
		items = append(items, rubriqueItem{Def: d, Direction: rubrique.DirectionFor(d.Name)})
	}
	toJSON(w, http.StatusOK, map[string]any{"items": items})
}
