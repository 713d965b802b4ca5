package api

import (
	"net/http"

	"github.com/kudzaim/kiosk-commerce/internal/cart"
)

type cartTotalsPayload struct {
	Lines []cart.Line `json:"lines"`
}

// cartTotalsHandler normalizes a client-held cart and derives its totals.
// Matching lines are merged and invalid carts come back empty rather than
// erroring, so the kiosk can always render something.
func (s *Server) cartTotalsHandler(w http.ResponseWriter, r *http.Request) {
	var payload cartTotalsPayload

	if !s.decodeJSON(w, r, &payload) {
		return
	}

	c := cart.New()
	for _, l := range payload.Lines {
		if l.ProductID == "" || l.Quantity < 1 || l.Price < 0 {
			c = cart.New()
			break
		}
		c.AddItem(l.ProductID, l.Name, l.Price, l.Size, l.Color, l.Quantity)
	}

	s.respondWithJSON(w, http.StatusOK, ApiResponse{
		Success: true,
		Data: map[string]interface{}{
			"lines":  c.Lines,
			"totals": c.Totals(s.config.VATRate),
		},
	})
}
