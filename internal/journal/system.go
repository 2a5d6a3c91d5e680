package journal

import (
	"context"

	"github.com/google/uuid"

	"github.com/JaimeStill/binsort/internal/alerts"
	"github.com/JaimeStill/binsort/internal/bins"
	"github.com/JaimeStill/binsort/internal/ingest"
	"github.com/JaimeStill/binsort/pkg/pagination"
)

// System defines the journal contract. It records outcomes as an
// ingest.Recorder and alerts as an alerts.Channel.
type System interface {
	Handler() *Handler

	RecordOutcome(ctx context.Context, target bins.ID, o ingest.Outcome) error

	ListOutcomes(
		ctx context.Context,
		page pagination.PageRequest,
		filters OutcomeFilters,
	) (*pagination.PageResult[OutcomeEntry], error)

	FindOutcome(ctx context.Context, id uuid.UUID) (*OutcomeEntry, error)

	Name() string
	Send(ctx context.Context, a alerts.Alert) error

	ListAlerts(
		ctx context.Context,
		page pagination.PageRequest,
		filters AlertFilters,
	) (*pagination.PageResult[AlertEntry], error)
}
