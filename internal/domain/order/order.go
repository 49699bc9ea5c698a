package order

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/go-faster/errors"

	"github.com/xenking/joki-boost/internal/domain/ladder"
)

// DefaultCustomerName replaces a blank customer name.
const DefaultCustomerName = "Tanpa Nama"

// Sentinel errors wrapped by ValidationError.
var (
	ErrUnknownGame          = errors.New("unknown game")
	ErrUnknownRank          = errors.New("rank not in game ladder")
	ErrUnknownPaymentMethod = errors.New("payment method not accepted")
)

// ValidationError reports a field that cannot be corrected to a default.
type ValidationError struct {
	Field string
	Value string
	Err   error
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s %q: %s", e.Field, e.Value, e.Err)
}

func (e *ValidationError) Unwrap() error {
	return e.Err
}

// Warning records a field that was corrected during construction.
type Warning struct {
	Field   string
	Message string
}

func (w Warning) String() string {
	return w.Field + ": " + w.Message
}

// Fields is the raw input for constructing an Order.
type Fields struct {
	// ID is the store identity. Zero for orders that were never persisted.
	ID            int64
	CustomerName  string
	Email         string
	Password      string
	Phone         string
	Game          string
	StartRank     string
	EndRank       string
	PaymentMethod string
	// TotalPrice accepts integers, floats, numeric strings and json.Number.
	TotalPrice any
	// OrderedAt accepts time.Time, *time.Time, "2006-01-02 15:04:05" or
	// "2006-01-02". Nil means now.
	OrderedAt any
}

// Order is one rank-boost order. It is immutable once constructed; changes go
// through the store's allow-listed update followed by a reload.
type Order struct {
	id            int64
	customerName  string
	email         string
	password      string
	phone         string
	game          string
	startRank     string
	endRank       string
	totalPrice    int64
	paymentMethod string
	orderedAt     time.Time
	warnings      []Warning
}

// New constructs an Order from raw fields.
//
// Name, price and timestamp problems never fail construction: they are
// replaced by defaults and reported through Warnings. When catalog is not
// nil, the game, both ranks and the payment method must be known to it;
// otherwise a *ValidationError is returned. Rows read back from the store are
// rebuilt with a nil catalog.
func New(f Fields, catalog *ladder.Catalog) (*Order, error) {
	return build(f, catalog, time.Now())
}

func build(f Fields, catalog *ladder.Catalog, now time.Time) (*Order, error) {
	o := &Order{
		id:            f.ID,
		customerName:  strings.TrimSpace(f.CustomerName),
		email:         strings.TrimSpace(f.Email),
		password:      strings.TrimSpace(f.Password),
		phone:         strings.TrimSpace(f.Phone),
		game:          strings.TrimSpace(f.Game),
		startRank:     strings.TrimSpace(f.StartRank),
		endRank:       strings.TrimSpace(f.EndRank),
		paymentMethod: strings.TrimSpace(f.PaymentMethod),
	}
	if o.customerName == "" {
		o.customerName = DefaultCustomerName
	}

	price, err := CoercePrice(f.TotalPrice)
	if err != nil {
		o.warn(ColumnTotalPrice, err.Error())
	}
	o.totalPrice = price

	at, err := parseOrderedAt(f.OrderedAt, now)
	if err != nil {
		o.warn(ColumnOrderedAt, err.Error())
	}
	o.orderedAt = at

	if catalog != nil {
		if err := o.validate(catalog); err != nil {
			return nil, err
		}
	}
	return o, nil
}

func (o *Order) validate(c *ladder.Catalog) error {
	if !c.HasGame(o.game) {
		return &ValidationError{Field: ColumnGame, Value: o.game, Err: ErrUnknownGame}
	}
	if c.RankIndex(o.game, o.startRank) < 0 {
		return &ValidationError{Field: ColumnStartRank, Value: o.startRank, Err: ErrUnknownRank}
	}
	if c.RankIndex(o.game, o.endRank) < 0 {
		return &ValidationError{Field: ColumnEndRank, Value: o.endRank, Err: ErrUnknownRank}
	}
	if !c.AcceptsPayment(o.paymentMethod) {
		return &ValidationError{Field: ColumnPaymentMethod, Value: o.paymentMethod, Err: ErrUnknownPaymentMethod}
	}
	return nil
}

func (o *Order) warn(field, msg string) {
	o.warnings = append(o.warnings, Warning{Field: field, Message: msg})
}

func (o *Order) ID() int64             { return o.id }
func (o *Order) CustomerName() string  { return o.customerName }
func (o *Order) Email() string         { return o.email }
func (o *Order) Phone() string         { return o.phone }
func (o *Order) Game() string          { return o.game }
func (o *Order) StartRank() string     { return o.startRank }
func (o *Order) EndRank() string       { return o.endRank }
func (o *Order) TotalPrice() int64     { return o.totalPrice }
func (o *Order) PaymentMethod() string { return o.paymentMethod }
func (o *Order) OrderedAt() time.Time  { return o.orderedAt }

// Password returns the account password exactly as submitted.
//
// Passwords are stored in plain text. This is a known security defect.
func (o *Order) Password() string { return o.password }

// Persisted reports whether the store has assigned an identity.
func (o *Order) Persisted() bool { return o.id > 0 }

// Warnings returns the corrections applied during construction.
func (o *Order) Warnings() []Warning {
	return append([]Warning(nil), o.warnings...)
}

// SameEntity reports whether o and other are the same persisted order.
// Orders that were never persisted have no identity and never match.
func (o *Order) SameEntity(other *Order) bool {
	if o == nil || other == nil || !o.Persisted() || !other.Persisted() {
		return false
	}
	return o.id == other.id
}

func (o *Order) String() string {
	return fmt.Sprintf("Order(id=%d, customer=%q, game=%q, %s -> %s, total=%d, payment=%s, at=%s)",
		o.id, o.customerName, o.game, o.startRank, o.endRank,
		o.totalPrice, o.paymentMethod, o.orderedAt.Format(TimestampLayout))
}

// Repository persists order records. Every call is independent: no
// connection or transaction spans two calls.
type Repository interface {
	// Insert stores a new record and returns the assigned identity.
	Insert(ctx context.Context, rec Record) (int64, error)
	// ListAll returns every record, most recent order first.
	ListAll(ctx context.Context) ([]Record, error)
	// DeleteByID reports whether a row with id was removed.
	DeleteByID(ctx context.Context, id int64) (bool, error)
	// Update applies the allow-listed columns of patch to row id. It reports
	// false when nothing was applicable or no row matched.
	Update(ctx context.Context, id int64, patch Patch) (bool, error)
}
