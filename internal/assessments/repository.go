// Package assessments persists risk assessment snapshots per patient.
package assessments

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/wolfman30/clinic-cds/internal/cds/risk"
)

const (
	DefaultListLimit = 20
	MaxListLimit     = 100
)

// Record is a stored assessment.
type Record struct {
	ID              uuid.UUID     `json:"id"`
	ClinicID        string        `json:"clinicId"`
	PatientID       string        `json:"patientId"`
	RiskScore       int           `json:"riskScore"`
	OverallRisk     risk.Level    `json:"overallRisk"`
	Factors         []risk.Factor `json:"factors"`
	Recommendations []string      `json:"recommendations"`
	CreatedAt       time.Time     `json:"createdAt"`
}

// NewRecord snapshots an assessment for a patient.
func NewRecord(clinicID, patientID string, a risk.Assessment) Record {
	return Record{
		ID:              uuid.New(),
		ClinicID:        clinicID,
		PatientID:       patientID,
		RiskScore:       a.RiskScore,
		OverallRisk:     a.OverallRisk,
		Factors:         a.Factors,
		Recommendations: a.Recommendations,
		CreatedAt:       time.Now().UTC(),
	}
}

type pgxPool interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
}

// Repository stores records in Postgres.
type Repository struct {
	pool pgxPool
}

func NewRepository(pool *pgxpool.Pool) *Repository {
	if pool == nil {
		panic("assessments: pgx pool required")
	}
	return &Repository{pool: pool}
}

func newRepositoryWithExec(exec pgxPool) *Repository {
	if exec == nil {
		panic("assessments: exec required")
	}
	return &Repository{pool: exec}
}

func (r *Repository) Insert(ctx context.Context, rec Record) error {
	factors, err := json.Marshal(nonNilFactors(rec.Factors))
	if err != nil {
		return fmt.Errorf("assessments: marshal factors: %w", err)
	}
	recs, err := json.Marshal(nonNilStrings(rec.Recommendations))
	if err != nil {
		return fmt.Errorf("assessments: marshal recommendations: %w", err)
	}
	query := `
		INSERT INTO risk_assessments (id, clinic_id, patient_id, risk_score, overall_risk, factors, recommendations, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`
	if _, err := r.pool.Exec(ctx, query,
		rec.ID, rec.ClinicID, rec.PatientID, rec.RiskScore, string(rec.OverallRisk), factors, recs, rec.CreatedAt,
	); err != nil {
		return fmt.Errorf("assessments: insert: %w", err)
	}
	return nil
}

// ListForPatient returns the newest records first. limit is clamped to
// 1..MaxListLimit, with 0 meaning DefaultListLimit.
func (r *Repository) ListForPatient(ctx context.Context, clinicID, patientID string, limit int) ([]Record, error) {
	limit = ClampLimit(limit)
	query := `
		SELECT id, clinic_id, patient_id, risk_score, overall_risk, factors, recommendations, created_at
		FROM risk_assessments
		WHERE clinic_id = $1 AND patient_id = $2
		ORDER BY created_at DESC
		LIMIT $3
	`
	rows, err := r.pool.Query(ctx, query, clinicID, patientID, limit)
	if err != nil {
		return nil, fmt.Errorf("assessments: list: %w", err)
	}
	defer rows.Close()

	out := []Record{}
	for rows.Next() {
		var rec Record
		var overall string
		var factors, recs []byte
		if err := rows.Scan(&rec.ID, &rec.ClinicID, &rec.PatientID, &rec.RiskScore, &overall, &factors, &recs, &rec.CreatedAt); err != nil {
			return nil, fmt.Errorf("assessments: scan: %w", err)
		}
		rec.OverallRisk = risk.Level(overall)
		if err := json.Unmarshal(factors, &rec.Factors); err != nil {
			return nil, fmt.Errorf("assessments: decode factors: %w", err)
		}
		if err := json.Unmarshal(recs, &rec.Recommendations); err != nil {
			return nil, fmt.Errorf("assessments: decode recommendations: %w", err)
		}
		rec.Factors = nonNilFactors(rec.Factors)
		rec.Recommendations = nonNilStrings(rec.Recommendations)
		out = append(out, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("assessments: list: %w", err)
	}
	return out, nil
}

// ClampLimit applies the list limit rules.
func ClampLimit(limit int) int {
	switch {
	case limit <= 0:
		return DefaultListLimit
	case limit > MaxListLimit:
		return MaxListLimit
	default:
		return limit
	}
}

func nonNilFactors(in []risk.Factor) []risk.Factor {
	if in == nil {
		return []risk.Factor{}
	}
	return in
}

func nonNilStrings(in []string) []string {
	if in == nil {
		return []string{}
	}
	return in
}
