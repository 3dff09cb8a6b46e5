package postgresadapter

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"strings"
	"time"

	"ballot/contexts/governance/ballot-engine/domain/entities"
	domainerrors "ballot/contexts/governance/ballot-engine/domain/errors"
	"ballot/contexts/governance/ballot-engine/ports"

	"github.com/ethereum/go-ethereum/common"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

const (
	outboxStatusPending   = "pending"
	outboxStatusPublished = "published"
)

// Repository stores one ballot across three tables: the ballot header, its
// proposals (one row per index) and its voter registry (one row per identity
// that ever changed from the default record).
type Repository struct {
	db     *gorm.DB
	logger *slog.Logger
}

func NewRepository(db *gorm.DB, logger *slog.Logger) *Repository {
	if logger == nil {
		logger = slog.Default()
	}
	return &Repository{
		db:     db,
		logger: logger,
	}
}

// Migrate creates or updates the ballot tables.
func (r *Repository) Migrate(ctx context.Context) error {
	if err := r.db.WithContext(ctx).AutoMigrate(
		&ballotModel{},
		&proposalModel{},
		&voterModel{},
		&outboxModel{},
		&eventDedupModel{},
	); err != nil {
		return r.logError("ballot_repo_migrate_failed", err)
	}
	return nil
}

// CreateBallot inserts the ballot and its events in one transaction.
func (r *Repository) CreateBallot(ctx context.Context, ballot entities.Ballot, events []ports.EventEnvelope) error {
	header := ballotModelFromEntity(ballot)
	var rejected error
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&header).Error; err != nil {
			return err
		}
		proposals := make([]proposalModel, 0, len(ballot.Proposals))
		for index, proposal := range ballot.Proposals {
			proposals = append(proposals, proposalModelFromEntity(header.BallotID, index, proposal))
		}
		if err := tx.Create(&proposals).Error; err != nil {
			return err
		}
		for identity, voter := range ballot.Voters {
			row := voterModelFromEntity(header.BallotID, identity, voter)
			if err := tx.Create(&row).Error; err != nil {
				return err
			}
		}
		if err := appendOutbox(tx, events); err != nil {
			rejected = err
			return err
		}
		return nil
	})
	if err != nil {
		if errors.Is(rejected, domainerrors.ErrConflict) {
			return rejected
		}
		if isUniqueViolation(err) {
			return domainerrors.ErrConflict
		}
		return r.logError("ballot_repo_create_ballot_failed", err, "ballot_id", header.BallotID)
	}
	return nil
}

func (r *Repository) GetBallot(ctx context.Context, ballotID string) (entities.Ballot, error) {
	var ballot entities.Ballot
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		loaded, err := loadBallot(tx, strings.TrimSpace(ballotID), false)
		if err != nil {
			return err
		}
		ballot = loaded
		return nil
	})
	if err != nil {
		if errors.Is(err, domainerrors.ErrBallotNotFound) {
			return entities.Ballot{}, err
		}
		return entities.Ballot{}, r.logError("ballot_repo_get_ballot_failed", err, "ballot_id", strings.TrimSpace(ballotID))
	}
	return ballot, nil
}

// UpdateBallot locks the ballot header row for the whole transition. Only
// proposal and voter rows that differ from the loaded state are written, in
// the same transaction as the events fn returns.
func (r *Repository) UpdateBallot(
	ctx context.Context,
	ballotID string,
	fn ports.Transition,
) (entities.Ballot, error) {
	ballotID = strings.TrimSpace(ballotID)
	var (
		result   entities.Ballot
		rejected error
	)
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		current, err := loadBallot(tx, ballotID, true)
		if err != nil {
			return err
		}
		working := current.Clone()
		events, err := fn(&working)
		if err != nil {
			rejected = err
			return err
		}

		for index, proposal := range working.Proposals {
			if index < len(current.Proposals) && current.Proposals[index].VoteCount == proposal.VoteCount {
				continue
			}
			if err := tx.Model(&proposalModel{}).
				Where("ballot_id = ? AND proposal_index = ?", ballotID, index).
				Update("vote_count", int64(proposal.VoteCount)).
				Error; err != nil {
				return err
			}
		}
		for identity, voter := range working.Voters {
			if previous, ok := current.Voters[identity]; ok && sameVoter(previous, voter) {
				continue
			}
			row := voterModelFromEntity(ballotID, identity, voter)
			if err := tx.Clauses(clause.OnConflict{
				Columns: []clause.Column{{Name: "ballot_id"}, {Name: "address"}},
				DoUpdates: clause.Assignments(map[string]any{
					"weight":   row.Weight,
					"voted":    row.Voted,
					"vote":     row.Vote,
					"delegate": row.Delegate,
				}),
			}).Create(&row).Error; err != nil {
				return err
			}
		}
		if err := tx.Model(&ballotModel{}).
			Where("ballot_id = ?", ballotID).
			Update("updated_at", working.UpdatedAt.UTC()).
			Error; err != nil {
			return err
		}
		if err := appendOutbox(tx, events); err != nil {
			if errors.Is(err, domainerrors.ErrConflict) {
				rejected = err
			}
			return err
		}
		result = working
		return nil
	})
	if err != nil {
		if rejected != nil || errors.Is(err, domainerrors.ErrBallotNotFound) {
			return entities.Ballot{}, err
		}
		return entities.Ballot{}, r.logError("ballot_repo_update_ballot_failed", err, "ballot_id", ballotID)
	}
	return result, nil
}

func loadBallot(tx *gorm.DB, ballotID string, forUpdate bool) (entities.Ballot, error) {
	query := tx
	if forUpdate {
		query = query.Clauses(clause.Locking{Strength: "UPDATE"})
	}
	var header ballotModel
	if err := query.Where("ballot_id = ?", ballotID).First(&header).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return entities.Ballot{}, domainerrors.ErrBallotNotFound
		}
		return entities.Ballot{}, err
	}

	var proposals []proposalModel
	if err := tx.Where("ballot_id = ?", ballotID).
		Order("proposal_index ASC").
		Find(&proposals).Error; err != nil {
		return entities.Ballot{}, err
	}
	var voters []voterModel
	if err := tx.Where("ballot_id = ?", ballotID).Find(&voters).Error; err != nil {
		return entities.Ballot{}, err
	}

	ballot := header.toEntity()
	ballot.Proposals = make([]entities.Proposal, 0, len(proposals))
	for _, row := range proposals {
		ballot.Proposals = append(ballot.Proposals, row.toEntity())
	}
	ballot.Voters = make(map[entities.Identity]entities.Voter, len(voters))
	for _, row := range voters {
		ballot.Voters[common.HexToAddress(row.Address)] = row.toEntity()
	}
	return ballot, nil
}

// appendOutbox inserts events inside tx. Replaying an identical event is a
// no-op; an event ID reused with another payload is ErrConflict.
func appendOutbox(tx *gorm.DB, events []ports.EventEnvelope) error {
	for _, envelope := range events {
		payload, err := json.Marshal(envelope)
		if err != nil {
			return err
		}
		row := outboxModel{
			OutboxID:     strings.TrimSpace(envelope.EventID),
			EventType:    strings.TrimSpace(envelope.EventType),
			PartitionKey: strings.TrimSpace(envelope.PartitionKey),
			Payload:      payload,
			Status:       outboxStatusPending,
			CreatedAt:    envelope.OccurredAt.UTC(),
		}
		if row.OutboxID == "" {
			row.OutboxID = uuid.NewString()
		}
		if row.CreatedAt.IsZero() {
			row.CreatedAt = time.Now().UTC()
		}
		create := tx.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "outbox_id"}},
			DoNothing: true,
		}).Create(&row)
		if create.Error != nil {
			return create.Error
		}
		if create.RowsAffected > 0 {
			continue
		}

		var existing outboxModel
		if err := tx.Select("payload").
			Where("outbox_id = ?", row.OutboxID).
			First(&existing).Error; err != nil {
			return err
		}
		if !bytes.Equal(existing.Payload, row.Payload) {
			return domainerrors.ErrConflict
		}
	}
	return nil
}

// ListPendingOutbox returns pending rows in insertion order. The serial
// sequence column breaks ties between rows written in the same instant.
func (r *Repository) ListPendingOutbox(ctx context.Context, limit int) ([]ports.OutboxMessage, error) {
	if limit <= 0 {
		limit = 100
	}
	var rows []outboxModel
	if err := r.db.WithContext(ctx).
		Where("status = ?", outboxStatusPending).
		Order("sequence ASC").
		Limit(limit).
		Find(&rows).Error; err != nil {
		return nil, r.logError("ballot_repo_list_pending_outbox_failed", err, "limit", limit)
	}
	items := make([]ports.OutboxMessage, 0, len(rows))
	for _, row := range rows {
		items = append(items, ports.OutboxMessage{
			OutboxID:     row.OutboxID,
			EventType:    row.EventType,
			PartitionKey: row.PartitionKey,
			Payload:      append([]byte(nil), row.Payload...),
			CreatedAt:    row.CreatedAt.UTC(),
		})
	}
	return items, nil
}

func (r *Repository) MarkOutboxPublished(ctx context.Context, outboxID string, publishedAt time.Time) error {
	result := r.db.WithContext(ctx).
		Model(&outboxModel{}).
		Where("outbox_id = ?", strings.TrimSpace(outboxID)).
		Updates(map[string]any{
			"status":       outboxStatusPublished,
			"published_at": publishedAt.UTC(),
		})
	if result.Error != nil {
		return r.logError("ballot_repo_mark_outbox_published_failed", result.Error,
			"outbox_id", strings.TrimSpace(outboxID),
		)
	}
	if result.RowsAffected == 0 {
		return domainerrors.ErrConflict
	}
	return nil
}

func (r *Repository) ReserveEvent(
	ctx context.Context,
	eventID string,
	payloadHash string,
	expiresAt time.Time,
) (bool, error) {
	row := eventDedupModel{
		EventID:     strings.TrimSpace(eventID),
		PayloadHash: strings.TrimSpace(payloadHash),
		ExpiresAt:   expiresAt.UTC(),
		ProcessedAt: time.Now().UTC(),
	}
	create := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "event_id"}},
		DoNothing: true,
	}).Create(&row)
	if create.Error != nil {
		return false, r.logError("ballot_repo_reserve_event_failed", create.Error,
			"event_id", strings.TrimSpace(eventID),
		)
	}
	if create.RowsAffected > 0 {
		return false, nil
	}

	var existing eventDedupModel
	if err := r.db.WithContext(ctx).
		Select("payload_hash").
		Where("event_id = ?", row.EventID).
		First(&existing).Error; err != nil {
		return false, r.logError("ballot_repo_reserve_event_load_existing_failed", err,
			"event_id", strings.TrimSpace(eventID),
		)
	}
	if existing.PayloadHash != row.PayloadHash {
		return false, domainerrors.ErrConflict
	}
	return true, nil
}

func (r *Repository) logError(event string, err error, attrs ...any) error {
	fields := make([]any, 0, len(attrs)+8)
	fields = append(fields,
		"event", event,
		"module", "governance/ballot-engine",
		"layer", "adapter",
		"error", err.Error(),
	)
	fields = append(fields, attrs...)
	r.logger.Error("ballot repository operation failed", fields...)
	return err
}

func sameVoter(a entities.Voter, b entities.Voter) bool {
	if a.Weight != b.Weight || a.Voted != b.Voted || a.Vote != b.Vote {
		return false
	}
	if a.Delegate == nil || b.Delegate == nil {
		return a.Delegate == nil && b.Delegate == nil
	}
	return *a.Delegate == *b.Delegate
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}

var _ ports.BallotRepository = (*Repository)(nil)
var _ ports.OutboxRepository = (*Repository)(nil)
var _ ports.EventDedupStore = (*Repository)(nil)
