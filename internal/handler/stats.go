package handler

import (
	"net/http"
	"time"

	"github.com/go-faster/jx"

	"github.com/xenking/joki-boost/internal/domain/order"
)

// Stats reports revenue for an inclusive date range. from and to default to
// the earliest and latest order dates.
func (h *Handler) Stats(w http.ResponseWriter, r *http.Request) {
	m := h.manager(r.Context())
	lo, hi, ok := m.DateBounds()
	if !ok {
		lo, hi = time.Now(), time.Now()
	}

	from, err := queryDate(r, "from", lo)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid from date")
		return
	}
	to, err := queryDate(r, "to", hi)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid to date")
		return
	}
	if to.Before(from) {
		writeError(w, http.StatusBadRequest, "to is before from")
		return
	}

	s := m.Summarize(from, to)
	writeJSON(w, http.StatusOK, func(e *jx.Encoder) {
		e.ObjStart()
		e.FieldStart("from")
		e.Str(s.From.Format(order.DateLayout))
		e.FieldStart("to")
		e.Str(s.To.Format(order.DateLayout))
		e.FieldStart("total_revenue")
		e.Int64(s.Total)
		e.FieldStart("per_game")
		e.ArrStart()
		for _, g := range s.PerGame {
			e.ObjStart()
			e.FieldStart(order.ColumnGame)
			e.Str(g.Game)
			e.FieldStart("count")
			e.Int(g.Count)
			e.FieldStart("revenue")
			e.Int64(g.Revenue)
			e.FieldStart("average")
			e.Str(g.Average.StringFixed(2))
			e.ObjEnd()
		}
		e.ArrEnd()
		e.FieldStart("orders")
		e.ArrStart()
		for _, o := range s.Orders {
			o.Record().Encode(e)
		}
		e.ArrEnd()
		e.ObjEnd()
	})
}

func queryDate(r *http.Request, key string, def time.Time) (time.Time, error) {
	v := r.URL.Query().Get(key)
	if v == "" {
		return def, nil
	}
	return time.ParseInLocation(order.DateLayout, v, time.Local)
}
