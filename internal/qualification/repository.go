package qualification

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"leadzap_backend/internal/scoring"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

var (
	ErrSessionNotFound       = errors.New("session not found")
	ErrQualificationNotFound = errors.New("qualification not found")
)

// SessionStatus is the lifecycle state of a conversation session.
type SessionStatus string

const (
	SessionAtiva      SessionStatus = "ativa"
	SessionConcluida  SessionStatus = "concluida"
	SessionAbandonada SessionStatus = "abandonada"
)

type Session struct {
	ID          uuid.UUID
	LeadID      uuid.UUID
	TenantID    uuid.UUID
	Phone       string
	Status      SessionStatus
	CurrentStep Step
	Answers     map[string]string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// answers returns the session's collected answers as typed scoring input.
func (s Session) answers() scoring.Answers {
	return scoring.Answers{
		Patrimonio: scoring.Choice(s.Answers[string(scoring.FactorPatrimonio)]),
		Objetivo:   scoring.Choice(s.Answers[string(scoring.FactorObjetivo)]),
		Urgencia:   scoring.Choice(s.Answers[string(scoring.FactorUrgencia)]),
		Interesse:  scoring.Choice(s.Answers[string(scoring.FactorInteresse)]),
	}
}

type MessageDirection string

const (
	DirectionInbound  MessageDirection = "inbound"
	DirectionOutbound MessageDirection = "outbound"
)

type Message struct {
	ID          uuid.UUID
	SessionID   uuid.UUID
	Direction   MessageDirection
	Content     string
	ProviderSID *string
	CreatedAt   time.Time
}

type Qualification struct {
	ID          uuid.UUID
	SessionID   uuid.UUID
	LeadID      uuid.UUID
	TenantID    uuid.UUID
	Patrimonio  scoring.Choice
	Objetivo    scoring.Choice
	Urgencia    scoring.Choice
	Interesse   scoring.Choice
	Score       int
	Qualified   bool
	Breakdown   scoring.Breakdown
	Observacoes *string
	CreatedAt   time.Time
}

type Repository struct {
	pool *pgxpool.Pool
}

func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// --- Sessions ---

const sessionColumns = `id, lead_id, tenant_id, phone, status, current_step, answers, created_at, updated_at`

func scanSession(row pgx.Row) (Session, error) {
	var (
		s   Session
		raw []byte
	)
	err := row.Scan(&s.ID, &s.LeadID, &s.TenantID, &s.Phone, &s.Status, &s.CurrentStep,
		&raw, &s.CreatedAt, &s.UpdatedAt)
	if err != nil {
		return Session{}, err
	}
	s.Answers = make(map[string]string)
	if len(raw) > 0 {
		if err := json.Unmarshal(raw, &s.Answers); err != nil {
			return Session{}, err
		}
	}
	return s, nil
}

func (r *Repository) CreateSession(ctx context.Context, leadID, tenantID uuid.UUID, phone string) (Session, error) {
	return scanSession(r.pool.QueryRow(ctx, `
		INSERT INTO sessions (lead_id, tenant_id, phone, status, current_step, answers)
		VALUES ($1, $2, $3, 'ativa', 'inicio', '{}')
		RETURNING `+sessionColumns, leadID, tenantID, phone))
}

func (r *Repository) GetSession(ctx context.Context, tenantID, id uuid.UUID) (Session, error) {
	s, err := scanSession(r.pool.QueryRow(ctx, `
		SELECT `+sessionColumns+` FROM sessions WHERE id = $1 AND tenant_id = $2
	`, id, tenantID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Session{}, ErrSessionNotFound
		}
		return Session{}, err
	}
	return s, nil
}

// GetActiveSessionByLead returns the lead's open session, if any.
func (r *Repository) GetActiveSessionByLead(ctx context.Context, tenantID, leadID uuid.UUID) (Session, error) {
	s, err := scanSession(r.pool.QueryRow(ctx, `
		SELECT `+sessionColumns+` FROM sessions
		WHERE lead_id = $1 AND tenant_id = $2 AND status = 'ativa'
		ORDER BY created_at DESC
		LIMIT 1
	`, leadID, tenantID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Session{}, ErrSessionNotFound
		}
		return Session{}, err
	}
	return s, nil
}

func (r *Repository) ListSessionsByLead(ctx context.Context, tenantID, leadID uuid.UUID) ([]Session, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT `+sessionColumns+` FROM sessions
		WHERE lead_id = $1 AND tenant_id = $2
		ORDER BY created_at DESC
	`, leadID, tenantID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	sessions := make([]Session, 0)
	for rows.Next() {
		s, err := scanSession(rows)
		if err != nil {
			return nil, err
		}
		sessions = append(sessions, s)
	}
	return sessions, rows.Err()
}

// UpdateSessionState moves the session to a new step with its accumulated
// answers. It also bumps updated_at, which the abandonment sweep keys on.
func (r *Repository) UpdateSessionState(ctx context.Context, id uuid.UUID, step Step, answers map[string]string, status SessionStatus) (Session, error) {
	raw, err := json.Marshal(answers)
	if err != nil {
		return Session{}, err
	}
	s, err := scanSession(r.pool.QueryRow(ctx, `
		UPDATE sessions
		SET current_step = $2, answers = $3, status = $4, updated_at = now()
		WHERE id = $1
		RETURNING `+sessionColumns, id, step, raw, status))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Session{}, ErrSessionNotFound
		}
		return Session{}, err
	}
	return s, nil
}

// MarkAbandonedBefore closes sessions with no activity since the cutoff and
// returns them so callers can publish events.
func (r *Repository) MarkAbandonedBefore(ctx context.Context, cutoff time.Time) ([]Session, error) {
	rows, err := r.pool.Query(ctx, `
		UPDATE sessions
		SET status = 'abandonada', updated_at = now()
		WHERE status = 'ativa' AND updated_at < $1
		RETURNING `+sessionColumns, cutoff)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	sessions := make([]Session, 0)
	for rows.Next() {
		s, err := scanSession(rows)
		if err != nil {
			return nil, err
		}
		sessions = append(sessions, s)
	}
	return sessions, rows.Err()
}

// --- Messages ---

func (r *Repository) CreateMessage(ctx context.Context, sessionID uuid.UUID, direction MessageDirection, content string, providerSID *string) (Message, error) {
	var m Message
	err := r.pool.QueryRow(ctx, `
		INSERT INTO messages (session_id, direction, content, provider_sid)
		VALUES ($1, $2, $3, $4)
		RETURNING id, session_id, direction, content, provider_sid, created_at
	`, sessionID, direction, content, providerSID).Scan(
		&m.ID, &m.SessionID, &m.Direction, &m.Content, &m.ProviderSID, &m.CreatedAt)
	if err != nil {
		return Message{}, err
	}
	return m, nil
}

func (r *Repository) ListMessages(ctx context.Context, sessionID uuid.UUID) ([]Message, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, session_id, direction, content, provider_sid, created_at
		FROM messages
		WHERE session_id = $1
		ORDER BY created_at ASC
	`, sessionID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	messages := make([]Message, 0)
	for rows.Next() {
		var m Message
		if err := rows.Scan(&m.ID, &m.SessionID, &m.Direction, &m.Content, &m.ProviderSID, &m.CreatedAt); err != nil {
			return nil, err
		}
		messages = append(messages, m)
	}
	return messages, rows.Err()
}

// InboundMessageExists reports whether a message with the provider SID was
// already stored. Used for webhook delivery deduplication.
func (r *Repository) InboundMessageExists(ctx context.Context, providerSID string) (bool, error) {
	var exists bool
	err := r.pool.QueryRow(ctx, `
		SELECT EXISTS (SELECT 1 FROM messages WHERE provider_sid = $1)
	`, providerSID).Scan(&exists)
	return exists, err
}

// --- Qualifications ---

const qualificationColumns = `id, session_id, lead_id, tenant_id, patrimonio, objetivo, urgencia, interesse, score, qualified, breakdown, observacoes, created_at`

func scanQualification(row pgx.Row) (Qualification, error) {
	var (
		q   Qualification
		raw []byte
	)
	err := row.Scan(&q.ID, &q.SessionID, &q.LeadID, &q.TenantID, &q.Patrimonio, &q.Objetivo,
		&q.Urgencia, &q.Interesse, &q.Score, &q.Qualified, &raw, &q.Observacoes, &q.CreatedAt)
	if err != nil {
		return Qualification{}, err
	}
	if len(raw) > 0 {
		if err := json.Unmarshal(raw, &q.Breakdown); err != nil {
			return Qualification{}, err
		}
	}
	return q, nil
}

type InsertQualificationParams struct {
	SessionID   uuid.UUID
	LeadID      uuid.UUID
	TenantID    uuid.UUID
	Answers     scoring.Answers
	Score       int
	Qualified   bool
	Breakdown   scoring.Breakdown
	Observacoes *string
}

// InsertQualification appends a qualification record. The sessions dedup key
// makes replays no-ops: when the session was already recorded, the stored row
// is returned and inserted reports false.
func (r *Repository) InsertQualification(ctx context.Context, params InsertQualificationParams) (Qualification, bool, error) {
	raw, err := json.Marshal(params.Breakdown)
	if err != nil {
		return Qualification{}, false, err
	}

	q, err := scanQualification(r.pool.QueryRow(ctx, `
		INSERT INTO qualificacoes (session_id, lead_id, tenant_id, patrimonio, objetivo, urgencia, interesse, score, qualified, breakdown, observacoes)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		ON CONFLICT (session_id) DO NOTHING
		RETURNING `+qualificationColumns,
		params.SessionID, params.LeadID, params.TenantID,
		params.Answers.Patrimonio, params.Answers.Objetivo, params.Answers.Urgencia, params.Answers.Interesse,
		params.Score, params.Qualified, raw, params.Observacoes))
	if err == nil {
		return q, true, nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return Qualification{}, false, err
	}

	existing, err := r.GetQualificationBySession(ctx, params.SessionID)
	if err != nil {
		return Qualification{}, false, err
	}
	return existing, false, nil
}

func (r *Repository) GetQualificationBySession(ctx context.Context, sessionID uuid.UUID) (Qualification, error) {
	q, err := scanQualification(r.pool.QueryRow(ctx, `
		SELECT `+qualificationColumns+` FROM qualificacoes WHERE session_id = $1
	`, sessionID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Qualification{}, ErrQualificationNotFound
		}
		return Qualification{}, err
	}
	return q, nil
}

// ListQualificationsByLead returns the lead's records, newest first.
func (r *Repository) ListQualificationsByLead(ctx context.Context, tenantID, leadID uuid.UUID) ([]Qualification, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT `+qualificationColumns+` FROM qualificacoes
		WHERE lead_id = $1 AND tenant_id = $2
		ORDER BY created_at DESC
	`, leadID, tenantID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]Qualification, 0)
	for rows.Next() {
		q, err := scanQualification(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, q)
	}
	return out, rows.Err()
}
