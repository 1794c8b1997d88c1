// Package reconciliation keeps an audit trail of document totals. Totals are
// always recomputed from the stored lines; the trail shows when a
// recomputation disagrees with what the API persisted.
package reconciliation

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"agency-workers/internal/billing"
	"agency-workers/internal/common/errors"
	"agency-workers/internal/common/logger"
	"agency-workers/internal/common/metrics"
)

const (
	KindInvoice = "invoice"
	KindRemit   = "remit"
)

const (
	StageGenerated = "generated"
	StageRendered  = "rendered"
)

// Entry is one row of document_totals_audit. StoredTotal is nil when there
// is nothing to compare against, e.g. at generation time.
type Entry struct {
	ID          string
	Kind        string
	DocumentID  string
	Reference   string
	Stage       string
	Subtotal    decimal.Decimal
	Deduction   decimal.Decimal
	VATAmount   decimal.Decimal
	Total       decimal.Decimal
	StoredTotal *decimal.Decimal
	Drift       decimal.Decimal
	RecordedBy  string
	RecordedAt  time.Time
}

// InvoiceEntry maps invoice totals onto an audit entry. The discount goes in
// the deduction column.
func InvoiceEntry(documentID, reference, stage string, s billing.InvoiceSummary) Entry {
	return Entry{
		Kind:       KindInvoice,
		DocumentID: documentID,
		Reference:  reference,
		Stage:      stage,
		Subtotal:   s.Subtotal,
		Deduction:  s.DiscountValue,
		VATAmount:  s.VATAmount,
		Total:      s.Total,
	}
}

func RemitEntry(documentID, reference, stage string, s billing.RemitSummary) Entry {
	return Entry{
		Kind:       KindRemit,
		DocumentID: documentID,
		Reference:  reference,
		Stage:      stage,
		Subtotal:   s.Subtotal,
		Deduction:  s.Deduction,
		VATAmount:  decimal.Zero,
		Total:      s.Total,
	}
}

// WithStored sets the persisted total to compare against.
func (e Entry) WithStored(total decimal.Decimal) Entry {
	e.StoredTotal = &total
	return e
}

type Store struct {
	db  *sql.DB
	log logger.Logger
	now func() time.Time
}

func NewStore(db *sql.DB, log logger.Logger) *Store {
	if log == nil {
		log = logger.NewNoOpLogger()
	}
	return &Store{db: db, log: log, now: time.Now}
}

// Record writes e and returns it with ID, Drift and RecordedAt filled in.
// Drift is measured at cent precision.
func (s *Store) Record(ctx context.Context, e Entry) (Entry, error) {
	e.ID = uuid.New().String()
	e.RecordedAt = s.now().UTC()
	e.Drift = decimal.Zero

	var stored interface{}
	if e.StoredTotal != nil {
		e.Drift = billing.Money(e.Total).Sub(billing.Money(*e.StoredTotal))
		stored = money(*e.StoredTotal)
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO document_totals_audit (
			id, document_kind, document_id, reference, stage,
			subtotal, deduction, vat_amount, total, stored_total, drift,
			recorded_by, recorded_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)`,
		e.ID, e.Kind, e.DocumentID, e.Reference, e.Stage,
		money(e.Subtotal), money(e.Deduction), money(e.VATAmount), money(e.Total), stored, money(e.Drift),
		e.RecordedBy, e.RecordedAt,
	)
	if err != nil {
		return e, errors.NewQueryExecutionFailedError("insert document_totals_audit", err)
	}

	if !e.Drift.IsZero() {
		metrics.TotalDrift.WithLabelValues(e.Kind).Inc()
		s.log.Warn("Recomputed total differs from stored total", map[string]interface{}{
			"kind":        e.Kind,
			"documentId":  e.DocumentID,
			"reference":   e.Reference,
			"stage":       e.Stage,
			"total":       money(e.Total),
			"storedTotal": stored,
			"drift":       money(e.Drift),
		})
	}
	return e, nil
}

// History lists the audit entries of one document, oldest first.
func (s *Store) History(ctx context.Context, kind, documentID string) ([]Entry, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, reference, stage, subtotal, deduction, vat_amount, total,
		       stored_total, drift, recorded_by, recorded_at
		FROM document_totals_audit
		WHERE document_kind = $1 AND document_id = $2
		ORDER BY recorded_at ASC`, kind, documentID)
	if err != nil {
		return nil, errors.NewQueryExecutionFailedError("select document_totals_audit", err)
	}
	defer rows.Close()

	var out []Entry
	for rows.Next() {
		e := Entry{Kind: kind, DocumentID: documentID}
		var reference, recordedBy sql.NullString
		var stored decimal.NullDecimal
		if err := rows.Scan(&e.ID, &reference, &e.Stage, &e.Subtotal, &e.Deduction, &e.VATAmount,
			&e.Total, &stored, &e.Drift, &recordedBy, &e.RecordedAt); err != nil {
			return nil, fmt.Errorf("scan audit row: %w", err)
		}
		e.Reference = reference.String
		e.RecordedBy = recordedBy.String
		if stored.Valid {
			e.StoredTotal = &stored.Decimal
		}
		out = append(out, e)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.NewQueryExecutionFailedError("iterate document_totals_audit", err)
	}
	return out, nil
}

func money(d decimal.Decimal) string { return d.StringFixed(2) }
