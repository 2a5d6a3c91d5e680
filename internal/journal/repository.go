package journal

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	"github.com/benbjohnson/clock"
	"github.com/google/uuid"

	"github.com/JaimeStill/binsort/internal/alerts"
	"github.com/JaimeStill/binsort/internal/bins"
	"github.com/JaimeStill/binsort/internal/ingest"
	"github.com/JaimeStill/binsort/pkg/pagination"
	"github.com/JaimeStill/binsort/pkg/query"
	"github.com/JaimeStill/binsort/pkg/repository"
)

type repo struct {
	db         *sql.DB
	clock      clock.Clock
	logger     *slog.Logger
	pagination pagination.Config
}

// New creates a journal repository implementing the System interface.
func New(
	db *sql.DB,
	clk clock.Clock,
	logger *slog.Logger,
	pagination pagination.Config,
) System {
	return &repo{
		db:         db,
		clock:      clk,
		logger:     logger.With("system", "journal"),
		pagination: pagination,
	}
}

func (r *repo) Handler() *Handler {
	return NewHandler(r, r.logger, r.pagination)
}

func (r *repo) RecordOutcome(ctx context.Context, target bins.ID, o ingest.Outcome) error {
	q := `
		INSERT INTO outcomes(id, filename, status, target_bin, category, label, bin, correct_bin, confidence, message, stored_name, recorded_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)`

	err := repository.ExecExpectOne(
		ctx, r.db, q,
		uuid.New(),
		o.Filename,
		string(o.Status),
		string(target),
		nullable(string(o.Category)),
		nullable(o.Label),
		nullable(string(o.Bin)),
		nullable(string(o.CorrectBin)),
		o.Confidence,
		nullable(o.Message),
		nullable(o.StoredName),
		r.clock.Now().UTC(),
	)
	if err != nil {
		return fmt.Errorf("record outcome: %w", repository.MapError(err, ErrNotFound, ErrDuplicate))
	}
	return nil
}

func (r *repo) ListOutcomes(
	ctx context.Context,
	page pagination.PageRequest,
	filters OutcomeFilters,
) (*pagination.PageResult[OutcomeEntry], error) {
	qb := filters.Apply(query.NewBuilder(outcomeProjection, outcomeDefaultSort))
	return list(ctx, r.db, r.pagination, page, qb, scanOutcome, "outcomes")
}

func (r *repo) FindOutcome(ctx context.Context, id uuid.UUID) (*OutcomeEntry, error) {
	q, args := query.NewBuilder(outcomeProjection).BuildSingle("ID", id)

	e, err := repository.QueryOne(ctx, r.db, q, args, scanOutcome)
	if err != nil {
		return nil, repository.MapError(err, ErrNotFound, ErrDuplicate)
	}
	return &e, nil
}

func (r *repo) Name() string {
	return "journal"
}

func (r *repo) Send(ctx context.Context, a alerts.Alert) error {
	raised := a.RaisedAt
	if raised.IsZero() {
		raised = r.clock.Now()
	}

	q := `
		INSERT INTO alerts(id, bin, count, capacity, raised_at)
		VALUES ($1, $2, $3, $4, $5)`

	err := repository.ExecExpectOne(
		ctx, r.db, q,
		uuid.New(),
		string(a.Bin),
		a.Count,
		a.Capacity,
		raised.UTC(),
	)
	if err != nil {
		return fmt.Errorf("record alert: %w", repository.MapError(err, ErrNotFound, ErrDuplicate))
	}
	return nil
}

func (r *repo) ListAlerts(
	ctx context.Context,
	page pagination.PageRequest,
	filters AlertFilters,
) (*pagination.PageResult[AlertEntry], error) {
	qb := filters.Apply(query.NewBuilder(alertProjection, alertDefaultSort))
	return list(ctx, r.db, r.pagination, page, qb, scanAlert, "alerts")
}

func list[T any](
	ctx context.Context,
	db *sql.DB,
	cfg pagination.Config,
	page pagination.PageRequest,
	qb *query.Builder,
	scan repository.ScanFunc[T],
	what string,
) (*pagination.PageResult[T], error) {
	page.Normalize(cfg)

	if len(page.Sort) > 0 {
		qb.OrderByFields(page.Sort)
	}

	countSQL, countArgs := qb.BuildCount()
	pageSQL, pageArgs := qb.BuildPage(page.Page, page.PageSize)

	// Count and page read the same snapshot so total matches the rows returned.
	return repository.WithTx(ctx, db, repository.ReadOnly(), func(tx *sql.Tx) (*pagination.PageResult[T], error) {
		var total int
		if err := tx.QueryRowContext(ctx, countSQL, countArgs...).Scan(&total); err != nil {
			return nil, fmt.Errorf("count %s: %w", what, err)
		}

		items, err := repository.QueryMany(ctx, tx, pageSQL, pageArgs, scan)
		if err != nil {
			return nil, fmt.Errorf("query %s: %w", what, err)
		}

		result := pagination.NewPageResult(items, total, page.Page, page.PageSize)
		return &result, nil
	})
}

func nullable(s string) any {
	if s == "" {
		return nil
	}
	return s
}
