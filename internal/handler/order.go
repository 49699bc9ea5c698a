package handler

import (
	"net/http"

	"github.com/go-faster/errors"
	"github.com/go-faster/jx"

	"github.com/xenking/joki-boost/internal/domain/order"
)

var errMissingFields = errors.New("all order fields are required")

// PlaceOrder validates a customer order, prices it on the server and stores
// it. Any price sent by the client is ignored.
func (h *Handler) PlaceOrder(w http.ResponseWriter, r *http.Request) {
	var (
		f         order.Fields
		orderedAt string
	)
	err := decodeObject(w, r, func(d *jx.Decoder, key string) error {
		var err error
		switch key {
		case order.ColumnCustomerName:
			f.CustomerName, err = d.Str()
		case order.ColumnEmail:
			f.Email, err = d.Str()
		case order.ColumnPassword:
			f.Password, err = d.Str()
		case order.ColumnPhone:
			f.Phone, err = d.Str()
		case order.ColumnGame:
			f.Game, err = d.Str()
		case order.ColumnStartRank:
			f.StartRank, err = d.Str()
		case order.ColumnEndRank:
			f.EndRank, err = d.Str()
		case order.ColumnPaymentMethod:
			f.PaymentMethod, err = d.Str()
		case order.ColumnOrderedAt:
			orderedAt, err = d.Str()
		default:
			err = d.Skip()
		}
		return err
	})
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if f.CustomerName == "" || f.Email == "" || f.Password == "" || f.Phone == "" ||
		f.Game == "" || f.StartRank == "" || f.EndRank == "" || f.PaymentMethod == "" {
		writeError(w, http.StatusBadRequest, errMissingFields.Error())
		return
	}
	if orderedAt != "" {
		f.OrderedAt = orderedAt
	}
	f.TotalPrice = h.engine.Compute(f.Game, f.StartRank, f.EndRank)

	o, err := order.New(f, h.catalog)
	if err != nil {
		var vErr *order.ValidationError
		if errors.As(err, &vErr) {
			writeError(w, http.StatusUnprocessableEntity, vErr.Error())
			return
		}
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	ctx := r.Context()
	if !h.manager(ctx).AddOrder(ctx, o) {
		writeError(w, http.StatusInternalServerError, "order was not stored")
		return
	}

	writeJSON(w, http.StatusCreated, func(e *jx.Encoder) {
		e.ObjStart()
		e.FieldStart(order.ColumnTotalPrice)
		e.Int64(o.TotalPrice())
		e.FieldStart(order.ColumnOrderedAt)
		e.Str(o.OrderedAt().Format(order.TimestampLayout))
		e.FieldStart("warnings")
		e.ArrStart()
		for _, warn := range o.Warnings() {
			e.Str(warn.String())
		}
		e.ArrEnd()
		e.ObjEnd()
	})
}

// ListOrders returns every stored order, most recent first, with the total
// revenue.
func (h *Handler) ListOrders(w http.ResponseWriter, r *http.Request) {
	m := h.manager(r.Context())
	table := m.Table()
	total := m.TotalRevenue()

	writeJSON(w, http.StatusOK, func(e *jx.Encoder) {
		e.ObjStart()
		e.FieldStart("orders")
		encodeRecords(e, table)
		e.FieldStart("total_revenue")
		e.Int64(total)
		e.ObjEnd()
	})
}

// DeleteOrder removes one order.
func (h *Handler) DeleteOrder(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		writeError(w, http.StatusBadRequest, "invalid order id")
		return
	}
	ctx := r.Context()
	if !h.manager(ctx).RemoveOrder(ctx, id) {
		writeError(w, http.StatusNotFound, "order not found")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// UpdateOrder applies a partial update. Only allow-listed columns are
// considered; the identity and order date never change.
func (h *Handler) UpdateOrder(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		writeError(w, http.StatusBadRequest, "invalid order id")
		return
	}

	patch := order.Patch{}
	err := decodeObject(w, r, func(d *jx.Decoder, key string) error {
		v, err := decodeAny(d)
		if err != nil {
			return err
		}
		patch[key] = v
		return nil
	})
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if applicable, _ := patch.Normalize(); len(applicable) == 0 {
		writeError(w, http.StatusBadRequest, "no updatable fields")
		return
	}

	ctx := r.Context()
	m := h.manager(ctx)
	if !m.UpdateOrder(ctx, id, patch) {
		writeError(w, http.StatusNotFound, "order not found")
		return
	}
	o, found := m.Find(id)
	if !found {
		w.WriteHeader(http.StatusNoContent)
		return
	}
	writeJSON(w, http.StatusOK, func(e *jx.Encoder) {
		o.Record().Encode(e)
	})
}

func encodeRecords(e *jx.Encoder, recs []order.Record) {
	e.ArrStart()
	for _, rec := range recs {
		rec.Encode(e)
	}
	e.ArrEnd()
}
