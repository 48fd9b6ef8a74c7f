package ledger

import (
	"database/sql"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/progmawarid-dot/association-najah-ass/pkg/db"
	"github.com/progmawarid-dot/association-najah-ass/pkg/seed"
)

const dateLayout = "2006-01-02"

// Options configures a Ledger.
type Options struct {
	// Logger receives posting and numbering events. Defaults to slog.Default().
	Logger *slog.Logger

	// MirrorBank posts bank-paid income and paid bank expenses into the bank
	// register, the same way cash-paid ones are posted into the cash register.
	MirrorBank bool

	// Seed holds the defaults of new associations. Defaults to seed.Builtin().
	Seed *seed.Defaults

	// Now returns the current time. Defaults to time.Now.
	Now func() time.Time
}

// DefaultOptions returns the options used by the CLI and the HTTP server.
func DefaultOptions() Options {
	return Options{MirrorBank: true}
}

// Ledger exposes the bookkeeping operations over one store handle.
// It assumes a single writer.
type Ledger struct {
	conn       *db.Connection
	logger     *slog.Logger
	mirrorBank bool
	seed       *seed.Defaults
	now        func() time.Time
}

// New creates a Ledger bound to conn.
func New(conn *db.Connection, opts Options) *Ledger {
	l := &Ledger{
		conn:       conn,
		logger:     opts.Logger,
		mirrorBank: opts.MirrorBank,
		seed:       opts.Seed,
		now:        opts.Now,
	}
	if l.logger == nil {
		l.logger = slog.Default()
	}
	if l.seed == nil {
		l.seed = seed.Builtin()
	}
	if l.now == nil {
		l.now = time.Now
	}
	return l
}

// mutate runs fn in one transaction and persists the store once it commits.
func (l *Ledger) mutate(op string, fn func(tx *sql.Tx) error) error {
	if err := l.conn.Transaction(fn); err != nil {
		return err
	}
	if err := l.conn.Persist(); err != nil {
		return fmt.Errorf("%w: %w", ErrStorage, err)
	}
	l.logger.Debug("ledger mutation committed", "op", op)
	return nil
}

func (l *Ledger) today() string {
	return l.now().Format(dateLayout)
}

func validateDate(name, value string) error {
	if value == "" {
		return validationError("%s is required", name)
	}
	if _, err := time.Parse(dateLayout, value); err != nil {
		return validationError("%s must be YYYY-MM-DD, got %q", name, value)
	}
	return nil
}

func validateOptionalDate(name, value string) error {
	if value == "" {
		return nil
	}
	return validateDate(name, value)
}

func nullInt64Ptr(n sql.NullInt64) *int64 {
	if !n.Valid {
		return nil
	}
	v := n.Int64
	return &v
}

// isAll reports whether a filter value means "no restriction".
func isAll(v string) bool {
	return v == "" || strings.EqualFold(v, "all")
}

func yearString(year int) string {
	return fmt.Sprintf("%04d", year)
}

// associationExists fails with ErrNotFound for unknown associations.
func associationExists(q db.Querier, id int64) error {
	var count int
	if err := q.QueryRow(`SELECT COUNT(*) FROM associations WHERE id = ?`, id).Scan(&count); err != nil {
		return storageError("look up association", err)
	}
	if count == 0 {
		return notFound("association", id)
	}
	return nil
}
