package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"mentor-match/internal/common/database"
	apperrors "mentor-match/internal/common/errors"
	"mentor-match/internal/common/logger"
	"mentor-match/internal/models"

	"github.com/lib/pq"
)

const (
	selectUserSQL = `
		SELECT id, guidance_state, clinical_profile, target_programs
		FROM applicants WHERE id = $1`

	selectProvidersSQL = `
		SELECT id, name, status, is_paused, available_this_week, next_available_slot,
		       rating, previous_icu_type, program, program_name, specializations,
		       total_bookings, response_time_minutes
		FROM providers`

	selectProviderByIDSQL = selectProvidersSQL + ` WHERE id = $1`

	listProvidersSQL = selectProvidersSQL + ` ORDER BY created_at, id`
)

// PostgresStore reads applicants and providers from the marketplace database.
// Applicant sections are JSONB columns holding the same documents the API
// accepts; provider specializations are a text[] column.
type PostgresStore struct {
	pg     *database.PostgresClient
	logger logger.Logger
}

func NewPostgresStore(pg *database.PostgresClient, log logger.Logger) *PostgresStore {
	return &PostgresStore{pg: pg, logger: logger.ForComponent(log, "postgres-store")}
}

func (s *PostgresStore) GetUser(ctx context.Context, id string) (*models.User, error) {
	ctx, cancel := s.pg.QueryContext(ctx)
	defer cancel()

	var (
		user                            models.User
		guidance, clinical, targetsJSON []byte
	)
	err := s.pg.QueryRow(ctx, selectUserSQL, id).Scan(&user.ID, &guidance, &clinical, &targetsJSON)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrUserNotFound
	}
	if err != nil {
		return nil, s.queryError(ctx, "get_user", err)
	}

	if err := decodeJSONB(guidance, &user.GuidanceState); err != nil {
		s.logger.Warn("ignoring malformed guidance_state", map[string]interface{}{"userId": id, "error": err})
	}
	if err := decodeJSONB(clinical, &user.ClinicalProfile); err != nil {
		s.logger.Warn("ignoring malformed clinical_profile", map[string]interface{}{"userId": id, "error": err})
	}
	if err := decodeJSONB(targetsJSON, &user.TargetPrograms); err != nil {
		s.logger.Warn("ignoring malformed target_programs", map[string]interface{}{"userId": id, "error": err})
	}

	return &user, nil
}

func (s *PostgresStore) ListProviders(ctx context.Context) ([]*models.Provider, error) {
	ctx, cancel := s.pg.QueryContext(ctx)
	defer cancel()

	rows, err := s.pg.Query(ctx, listProvidersSQL)
	if err != nil {
		return nil, s.queryError(ctx, "list_providers", err)
	}
	defer rows.Close()

	providers := make([]*models.Provider, 0)
	for rows.Next() {
		p, err := scanProvider(rows)
		if err != nil {
			return nil, s.queryError(ctx, "list_providers", err)
		}
		providers = append(providers, p)
	}
	if err := rows.Err(); err != nil {
		return nil, s.queryError(ctx, "list_providers", err)
	}

	return providers, nil
}

func (s *PostgresStore) GetProvider(ctx context.Context, id string) (*models.Provider, error) {
	ctx, cancel := s.pg.QueryContext(ctx)
	defer cancel()

	p, err := scanProvider(s.pg.QueryRow(ctx, selectProviderByIDSQL, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrProviderNotFound
	}
	if err != nil {
		return nil, s.queryError(ctx, "get_provider", err)
	}
	return p, nil
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanProvider(row rowScanner) (*models.Provider, error) {
	var (
		p            models.Provider
		name         sql.NullString
		nextSlot     sql.NullTime
		icu          sql.NullString
		program      sql.NullString
		programName  sql.NullString
		specs        pq.StringArray
		responseTime sql.NullInt64
	)

	if err := row.Scan(
		&p.ID, &name, &p.Status, &p.IsPaused, &p.AvailableThisWeek, &nextSlot,
		&p.Rating, &icu, &program, &programName, &specs,
		&p.TotalBookings, &responseTime,
	); err != nil {
		return nil, err
	}

	p.Name = name.String
	p.PreviousICUType = models.ICUType(icu.String)
	p.Program = program.String
	p.ProgramName = programName.String
	p.Specializations = []string(specs)
	if nextSlot.Valid {
		t := nextSlot.Time
		p.NextAvailableSlot = &t
	}
	if responseTime.Valid {
		v := int(responseTime.Int64)
		p.ResponseTimeMinutes = &v
	}

	return &p, nil
}

func decodeJSONB(raw []byte, dest interface{}) error {
	if len(raw) == 0 || string(raw) == "null" {
		return nil
	}
	return json.Unmarshal(raw, dest)
}

// queryError classifies driver errors. Deadlines become QUERY_TIMEOUT and
// everything else a retryable fetch failure.
func (s *PostgresStore) queryError(ctx context.Context, queryType string, err error) error {
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(ctx.Err(), context.DeadlineExceeded) {
		return apperrors.NewQueryTimeoutError(queryType)
	}
	var pqErr *pq.Error
	if errors.As(err, &pqErr) && pqErr.Code.Class() == "08" {
		return apperrors.NewDatabaseConnectionFailedError(err)
	}
	return fmt.Errorf("%s: %w", queryType, err)
}
