package store

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/faithbridge/member-insights/internal/models"
)

// Sentinel errors surfaced by Store implementations. Callers must not
// treat ErrDataUnavailable as "no data": a failed read is a hard
// failure for the component that requested it.
var (
	ErrDataUnavailable = errors.New("store: data unavailable")
	ErrMemberNotFound  = errors.New("store: member not found")
)

// Store is the read-only storage port the insights engine depends on.
// The schema and its lifecycle are owned by the upstream membership
// platform; this interface exists so components can be tested against
// fixtures instead of a live database.
type Store interface {
	// ListMembers returns the full member population.
	ListMembers(ctx context.Context) ([]models.Member, error)

	// GetMember returns a single member or ErrMemberNotFound.
	GetMember(ctx context.Context, id uuid.UUID) (*models.Member, error)

	// ListMemberActivity returns a member's activity ordered most
	// recent first, capped at limit.
	ListMemberActivity(ctx context.Context, memberID uuid.UUID, limit int) ([]models.ActivityRecord, error)

	// ListMemberDonations returns a member's donations ordered most
	// recent first, capped at limit.
	ListMemberDonations(ctx context.Context, memberID uuid.UUID, limit int) ([]models.DonationRecord, error)

	// ListDonationsBetween returns all donations with occurred_at in
	// [from, to), for revenue aggregation.
	ListDonationsBetween(ctx context.Context, from, to time.Time) ([]models.DonationRecord, error)

	// ListActiveRecurringDonations returns recurring donations whose
	// pledge is currently active, independent of any date window.
	ListActiveRecurringDonations(ctx context.Context) ([]models.DonationRecord, error)

	// ListSearchLogsBetween returns search logs with occurred_at in
	// [from, to).
	ListSearchLogsBetween(ctx context.Context, from, to time.Time) ([]models.SearchLogRecord, error)

	// ListTopContent returns published content ordered by view count,
	// capped at limit.
	ListTopContent(ctx context.Context, limit int) ([]models.ContentItem, error)
}
