package handler

import (
	"net/http"

	"github.com/go-faster/jx"

	"github.com/xenking/joki-boost/internal/domain/order"
	"github.com/xenking/joki-boost/internal/domain/pricing"
)

// GetCatalog lists games with their ladders and the accepted payment methods.
func (h *Handler) GetCatalog(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, func(e *jx.Encoder) {
		e.ObjStart()
		e.FieldStart("games")
		e.ArrStart()
		for _, game := range h.catalog.Games {
			ranks, _ := h.catalog.Ladder(game)
			e.ObjStart()
			e.FieldStart("name")
			e.Str(game)
			e.FieldStart("ranks")
			e.ArrStart()
			for _, r := range ranks {
				e.Str(r)
			}
			e.ArrEnd()
			e.ObjEnd()
		}
		e.ArrEnd()
		e.FieldStart("payment_methods")
		e.ArrStart()
		for _, m := range h.catalog.PaymentMethods {
			e.Str(m)
		}
		e.ArrEnd()
		e.ObjEnd()
	})
}

// Quote prices a boost request and returns the per-step breakdown.
func (h *Handler) Quote(w http.ResponseWriter, r *http.Request) {
	var game, start, end string
	err := decodeObject(w, r, func(d *jx.Decoder, key string) error {
		var err error
		switch key {
		case order.ColumnGame:
			game, err = d.Str()
		case order.ColumnStartRank:
			start, err = d.Str()
		case order.ColumnEndRank:
			end, err = d.Str()
		default:
			err = d.Skip()
		}
		return err
	})
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	q := h.engine.Quote(game, start, end)
	writeJSON(w, http.StatusOK, func(e *jx.Encoder) {
		encodeQuote(e, q)
	})
}

func encodeQuote(e *jx.Encoder, q pricing.Quote) {
	e.ObjStart()
	e.FieldStart(order.ColumnGame)
	e.Str(q.Game)
	e.FieldStart(order.ColumnStartRank)
	e.Str(q.StartRank)
	e.FieldStart(order.ColumnEndRank)
	e.Str(q.EndRank)
	e.FieldStart(order.ColumnTotalPrice)
	e.Int64(q.Total)
	e.FieldStart("complete")
	e.Bool(q.Complete())
	e.FieldStart("steps")
	e.ArrStart()
	for _, s := range q.Steps {
		e.ObjStart()
		e.FieldStart("from")
		e.Str(s.From)
		e.FieldStart("to")
		e.Str(s.To)
		e.FieldStart("price")
		e.Int64(s.Price)
		e.FieldStart("priced")
		e.Bool(s.Priced)
		e.ObjEnd()
	}
	e.ArrEnd()
	e.ObjEnd()
}
