package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"slices"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/tendant/contextauth/pkg/domain"
)

const (
	// DefaultHistoryWindow is how many recent history entries Load returns.
	DefaultHistoryWindow = 50
	// MaxHistoryPage caps a single ListLoginHistory page.
	MaxHistoryPage = 200
)

// ContextsConfig holds context store configuration.
type ContextsConfig struct {
	HistoryWindow   int
	DefaultRadiusKm float64
	NearbyKm        float64
}

// ContextsRepository persists user contexts. Known devices and locations live
// in user_contexts; the login history is an append-only login_history table.
type ContextsRepository struct {
	db     *sql.DB
	config ContextsConfig
}

// NewContextsRepository creates a new contexts repository.
func NewContextsRepository(db *sql.DB, config ContextsConfig) *ContextsRepository {
	if config.HistoryWindow <= 0 {
		config.HistoryWindow = DefaultHistoryWindow
	}
	if config.DefaultRadiusKm <= 0 {
		config.DefaultRadiusKm = domain.DefaultRadiusKm
	}
	if config.NearbyKm <= 0 {
		config.NearbyKm = domain.NearbyThresholdKm
	}
	return &ContextsRepository{db: db, config: config}
}

// Load returns the stored context with its most recent history, or an empty
// context if the user has none.
func (r *ContextsRepository) Load(ctx context.Context, userID uuid.UUID) (*domain.UserContext, error) {
	uc, err := r.selectContext(ctx, r.db, userID, false)
	if err != nil {
		return nil, err
	}

	history, err := r.recentHistory(ctx, r.db, userID, r.config.HistoryWindow)
	if err != nil {
		return nil, err
	}
	uc.LoginHistory = history
	return uc, nil
}

// Save writes known devices and locations. It fails with
// domain.ErrVersionConflict if the stored version moved since uc was loaded.
// History entries are not written; they are appended by the Record methods.
func (r *ContextsRepository) Save(ctx context.Context, uc *domain.UserContext) error {
	locations, err := json.Marshal(uc.KnownLocations)
	if err != nil {
		return fmt.Errorf("failed to encode known locations: %w", err)
	}
	now := time.Now()

	result, err := psql.Insert("user_contexts").
		Columns("user_id", "known_devices", "known_locations", "version", "updated_at").
		Values(uc.UserID, pq.Array(uc.KnownDevices), string(locations), uc.Version+1, now).
		Suffix(`ON CONFLICT (user_id) DO UPDATE
			SET known_devices = EXCLUDED.known_devices,
			    known_locations = EXCLUDED.known_locations,
			    version = user_contexts.version + 1,
			    updated_at = EXCLUDED.updated_at
			WHERE user_contexts.version = ?`, uc.Version).
		RunWith(r.db).ExecContext(ctx)
	if err != nil {
		return fmt.Errorf("%w: %w", domain.ErrStorage, err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("%w: %w", domain.ErrStorage, err)
	}
	if rows == 0 {
		return domain.ErrVersionConflict
	}
	uc.Version++
	uc.UpdatedAt = now
	return nil
}

// RecordSuccessfulLogin learns the device and location and appends a success
// entry. The context row is locked for the duration of the update so
// concurrent logins of the same user are applied one after another.
func (r *ContextsRepository) RecordSuccessfulLogin(ctx context.Context, userID uuid.UUID, attempt domain.LoginAttempt, at time.Time) (*domain.LearnedLogin, error) {
	var learned domain.LearnedLogin

	err := Tx(ctx, r.db, func(tx *sql.Tx) error {
		ensure := `
			INSERT INTO user_contexts (user_id, known_devices, known_locations, version, updated_at)
			VALUES ($1, '{}', '[]', 0, $2)
			ON CONFLICT (user_id) DO NOTHING
		`
		if _, err := tx.ExecContext(ctx, ensure, userID, at); err != nil {
			return err
		}

		uc, err := r.selectContext(ctx, tx, userID, true)
		if err != nil {
			return err
		}

		learned = uc.RecordSuccessfulLogin(attempt.DeviceID, attempt.Location, at, r.config.DefaultRadiusKm, r.config.NearbyKm)

		if learned.NewDevice || learned.NewLocation {
			locations, err := json.Marshal(uc.KnownLocations)
			if err != nil {
				return err
			}
			_, err = psql.Update("user_contexts").
				Set("known_devices", pq.Array(uc.KnownDevices)).
				Set("known_locations", string(locations)).
				Set("version", sq.Expr("version + 1")).
				Set("updated_at", at).
				Where("user_id = ?", userID).
				RunWith(tx).ExecContext(ctx)
			if err != nil {
				return err
			}
		}

		return insertHistory(ctx, tx, userID, learned.Event)
	})
	if err != nil {
		return nil, fmt.Errorf("%w: failed to record login: %w", domain.ErrStorage, err)
	}
	return &learned, nil
}

// RecordFailedLogin appends a failed entry. Known devices and locations are
// not touched.
func (r *ContextsRepository) RecordFailedLogin(ctx context.Context, userID uuid.UUID, attempt domain.LoginAttempt, at time.Time) error {
	event := domain.LoginEvent{
		Timestamp: at,
		DeviceID:  attempt.DeviceID,
		Location:  attempt.Location,
		Status:    domain.LoginStatusFailed,
	}
	if err := insertHistory(ctx, r.db, userID, event); err != nil {
		return fmt.Errorf("%w: failed to record failed login: %w", domain.ErrStorage, err)
	}
	return nil
}

// ListLoginHistory returns up to limit entries strictly after cursor in
// newest-first order. A zero cursor starts from the most recent entry.
func (r *ContextsRepository) ListLoginHistory(ctx context.Context, userID uuid.UUID, cursor domain.HistoryCursor, limit int) ([]domain.LoginEvent, error) {
	if limit <= 0 || limit > MaxHistoryPage {
		limit = MaxHistoryPage
	}

	query := psql.Select("id", "occurred_at", "device_id", "latitude", "longitude", "status").
		From("login_history").
		Where("user_id = ?", userID)
	if !cursor.IsZero() {
		query = query.Where("(occurred_at, id) < (?, ?)", cursor.OccurredAt, cursor.ID)
	}
	query = query.OrderBy("occurred_at DESC", "id DESC").Limit(uint64(limit))

	events, err := queryHistory(ctx, r.db, query)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to list login history: %w", domain.ErrStorage, err)
	}
	return events, nil
}

func (r *ContextsRepository) selectContext(ctx context.Context, q Querier, userID uuid.UUID, forUpdate bool) (*domain.UserContext, error) {
	query := psql.Select("known_devices", "known_locations", "version", "updated_at").
		From("user_contexts").
		Where("user_id = ?", userID)
	if forUpdate {
		query = query.Suffix("FOR UPDATE")
	}

	sqlStr, args, err := query.ToSql()
	if err != nil {
		return nil, err
	}

	uc := domain.NewUserContext(userID)
	var locations []byte
	err = q.QueryRowContext(ctx, sqlStr, args...).Scan(pq.Array(&uc.KnownDevices), &locations, &uc.Version, &uc.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.NewUserContext(userID), nil
	}
	if err != nil {
		return nil, fmt.Errorf("%w: failed to load context: %w", domain.ErrStorage, err)
	}

	if len(locations) > 0 {
		if err := json.Unmarshal(locations, &uc.KnownLocations); err != nil {
			return nil, fmt.Errorf("%w: corrupt known locations: %w", domain.ErrStorage, err)
		}
	}
	if uc.KnownDevices == nil {
		uc.KnownDevices = []string{}
	}
	if uc.KnownLocations == nil {
		uc.KnownLocations = []domain.KnownLocation{}
	}
	return uc, nil
}

// recentHistory returns the newest limit entries, oldest first.
func (r *ContextsRepository) recentHistory(ctx context.Context, q Querier, userID uuid.UUID, limit int) ([]domain.LoginEvent, error) {
	query := psql.Select("id", "occurred_at", "device_id", "latitude", "longitude", "status").
		From("login_history").
		Where("user_id = ?", userID).
		OrderBy("occurred_at DESC", "id DESC").
		Limit(uint64(limit))

	events, err := queryHistory(ctx, q, query)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to load login history: %w", domain.ErrStorage, err)
	}
	slices.Reverse(events)
	return events, nil
}

func queryHistory(ctx context.Context, q Querier, query sq.SelectBuilder) ([]domain.LoginEvent, error) {
	sqlStr, args, err := query.ToSql()
	if err != nil {
		return nil, err
	}

	rows, err := q.QueryContext(ctx, sqlStr, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	events := []domain.LoginEvent{}
	for rows.Next() {
		var e domain.LoginEvent
		if err := rows.Scan(&e.ID, &e.Timestamp, &e.DeviceID, &e.Location.Latitude, &e.Location.Longitude, &e.Status); err != nil {
			return nil, err
		}
		events = append(events, e)
	}
	return events, rows.Err()
}

func insertHistory(ctx context.Context, q Querier, userID uuid.UUID, event domain.LoginEvent) error {
	query := `
		INSERT INTO login_history (user_id, occurred_at, device_id, latitude, longitude, status)
		VALUES ($1, $2, $3, $4, $5, $6)
	`
	_, err := q.ExecContext(ctx, query,
		userID, event.Timestamp, event.DeviceID,
		event.Location.Latitude, event.Location.Longitude, event.Status,
	)
	return err
}
