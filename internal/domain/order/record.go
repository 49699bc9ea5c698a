package order

import (
	"fmt"
	"maps"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/go-faster/jx"
)

// Column names of the orders_joki table. Record and Patch keys use them.
const (
	ColumnID            = "id"
	ColumnCustomerName  = "nama_pelanggan"
	ColumnEmail         = "email"
	ColumnPassword      = "password"
	ColumnPhone         = "no_hp"
	ColumnGame          = "game"
	ColumnStartRank     = "rank_awal"
	ColumnEndRank       = "rank_tujuan"
	ColumnTotalPrice    = "harga_total"
	ColumnPaymentMethod = "metode_pembayaran"
	ColumnOrderedAt     = "tanggal_order"
)

// KeyID is the external name of the identity in a flat record.
const KeyID = "id_order"

// Columns lists the table columns in display order.
var Columns = []string{
	ColumnID, ColumnCustomerName, ColumnEmail, ColumnPassword, ColumnPhone,
	ColumnGame, ColumnStartRank, ColumnEndRank, ColumnTotalPrice,
	ColumnPaymentMethod, ColumnOrderedAt,
}

// updatable is the allow-list of columns a Patch may change.
var updatable = map[string]struct{}{
	ColumnCustomerName:  {},
	ColumnEmail:         {},
	ColumnPassword:      {},
	ColumnPhone:         {},
	ColumnGame:          {},
	ColumnStartRank:     {},
	ColumnEndRank:       {},
	ColumnTotalPrice:    {},
	ColumnPaymentMethod: {},
}

// Updatable reports whether column may be changed by an update.
func Updatable(column string) bool {
	_, ok := updatable[column]
	return ok
}

// Record is the flat row view of an order, keyed the way the store keys it.
type Record struct {
	ID            int64
	CustomerName  string
	Email         string
	Password      string
	Phone         string
	Game          string
	StartRank     string
	EndRank       string
	TotalPrice    int64
	PaymentMethod string
	// OrderedAt is zero when the store should assign the current time.
	OrderedAt time.Time
}

// Record returns the flat view of o.
func (o *Order) Record() Record {
	return Record{
		ID:            o.id,
		CustomerName:  o.customerName,
		Email:         o.email,
		Password:      o.password,
		Phone:         o.phone,
		Game:          o.game,
		StartRank:     o.startRank,
		EndRank:       o.endRank,
		TotalPrice:    o.totalPrice,
		PaymentMethod: o.paymentMethod,
		OrderedAt:     o.orderedAt,
	}
}

// FromRecord rebuilds an Order from a stored row. No catalog validation is
// applied: rows are trusted as stored.
func FromRecord(r Record) *Order {
	f := Fields{
		ID:            r.ID,
		CustomerName:  r.CustomerName,
		Email:         r.Email,
		Password:      r.Password,
		Phone:         r.Phone,
		Game:          r.Game,
		StartRank:     r.StartRank,
		EndRank:       r.EndRank,
		TotalPrice:    r.TotalPrice,
		PaymentMethod: r.PaymentMethod,
	}
	if !r.OrderedAt.IsZero() {
		f.OrderedAt = r.OrderedAt
	}
	o, _ := build(f, nil, time.Now())
	return o
}

// Values returns the row's cells in Columns order, formatted for display.
func (r Record) Values() []string {
	return []string{
		strconv.FormatInt(r.ID, 10),
		r.CustomerName,
		r.Email,
		r.Password,
		r.Phone,
		r.Game,
		r.StartRank,
		r.EndRank,
		strconv.FormatInt(r.TotalPrice, 10),
		r.PaymentMethod,
		r.OrderedAt.Format(TimestampLayout),
	}
}

// Set assigns a normalized patch value to the named column. Unknown columns
// are ignored.
func (r *Record) Set(column string, v any) {
	switch column {
	case ColumnCustomerName:
		r.CustomerName, _ = v.(string)
	case ColumnEmail:
		r.Email, _ = v.(string)
	case ColumnPassword:
		r.Password, _ = v.(string)
	case ColumnPhone:
		r.Phone, _ = v.(string)
	case ColumnGame:
		r.Game, _ = v.(string)
	case ColumnStartRank:
		r.StartRank, _ = v.(string)
	case ColumnEndRank:
		r.EndRank, _ = v.(string)
	case ColumnTotalPrice:
		r.TotalPrice, _ = v.(int64)
	case ColumnPaymentMethod:
		r.PaymentMethod, _ = v.(string)
	}
}

// Encode writes the record as a JSON object. The identity is emitted under
// id_order and the date in "2006-01-02 15:04:05" form.
func (r Record) Encode(e *jx.Encoder) {
	e.ObjStart()
	e.FieldStart(KeyID)
	e.Int64(r.ID)
	e.FieldStart(ColumnCustomerName)
	e.Str(r.CustomerName)
	e.FieldStart(ColumnEmail)
	e.Str(r.Email)
	e.FieldStart(ColumnPassword)
	e.Str(r.Password)
	e.FieldStart(ColumnPhone)
	e.Str(r.Phone)
	e.FieldStart(ColumnGame)
	e.Str(r.Game)
	e.FieldStart(ColumnStartRank)
	e.Str(r.StartRank)
	e.FieldStart(ColumnEndRank)
	e.Str(r.EndRank)
	e.FieldStart(ColumnTotalPrice)
	e.Int64(r.TotalPrice)
	e.FieldStart(ColumnPaymentMethod)
	e.Str(r.PaymentMethod)
	e.FieldStart(ColumnOrderedAt)
	e.Str(r.OrderedAt.Format(TimestampLayout))
	e.ObjEnd()
}

// Patch is a partial update keyed by column name.
type Patch map[string]any

// Normalize returns the applicable subset of p: only allow-listed columns,
// strings trimmed, a blank customer name replaced by DefaultCustomerName and
// the price coerced. Nulls, blank strings and non-string values of the other
// text columns are dropped. Every correction or dropped value is reported as
// a Warning. The identity and the order date are never updatable.
func (p Patch) Normalize() (Patch, []Warning) {
	out := make(Patch, len(p))
	var warnings []Warning
	for _, k := range p.Columns() {
		if !Updatable(k) {
			continue
		}
		v := p[k]
		if v == nil {
			warnings = append(warnings, Warning{Field: k, Message: "null value ignored"})
			continue
		}
		if k == ColumnTotalPrice {
			n, err := CoercePrice(v)
			if err != nil {
				warnings = append(warnings, Warning{Field: k, Message: err.Error()})
			}
			out[k] = n
			continue
		}
		s, ok := v.(string)
		if !ok {
			warnings = append(warnings, Warning{Field: k, Message: fmt.Sprintf("unsupported type %T ignored", v)})
			continue
		}
		s = strings.TrimSpace(s)
		switch {
		case s != "":
		case k == ColumnCustomerName:
			warnings = append(warnings, Warning{Field: k, Message: "blank name replaced by " + DefaultCustomerName})
			s = DefaultCustomerName
		default:
			warnings = append(warnings, Warning{Field: k, Message: "blank value ignored"})
			continue
		}
		out[k] = s
	}
	return out, warnings
}

// Columns returns the patch keys in sorted order.
func (p Patch) Columns() []string {
	return slices.Sorted(maps.Keys(p))
}
