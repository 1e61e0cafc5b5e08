package assessments

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	pgxmock "github.com/pashagolub/pgxmock/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wolfman30/clinic-cds/internal/cds/risk"
)

func TestRepository_Insert(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := newRepositoryWithExec(mock)
	assessment := risk.NewDefaultScorer().Assess(risk.PatientInput{Age: risk.Ptr(70.0)})
	rec := NewRecord("clinic-1", "patient-1", assessment)

	mock.ExpectExec("INSERT INTO risk_assessments").
		WithArgs(rec.ID, "clinic-1", "patient-1", 20, "low", pgxmock.AnyArg(), pgxmock.AnyArg(), rec.CreatedAt).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	require.NoError(t, repo.Insert(context.Background(), rec))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRepository_InsertError(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := newRepositoryWithExec(mock)
	mock.ExpectExec("INSERT INTO risk_assessments").WillReturnError(errors.New("unique violation"))

	err = repo.Insert(context.Background(), NewRecord("c", "p", risk.Assessment{}))
	assert.ErrorContains(t, err, "assessments: insert")
}

func TestRepository_ListForPatient(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := newRepositoryWithExec(mock)
	id := uuid.New()
	now := time.Now().UTC()

	rows := pgxmock.NewRows([]string{"id", "clinic_id", "patient_id", "risk_score", "overall_risk", "factors", "recommendations", "created_at"}).
		AddRow(id, "clinic-1", "patient-1", 90, "critical",
			[]byte(`[{"factor":"Advanced Age","severity":"medium","description":"Patient is 68 years old","recommendation":"x"}]`),
			[]byte(`["Schedule HbA1c test every 3 months"]`), now)
	mock.ExpectQuery("SELECT id, clinic_id").WithArgs("clinic-1", "patient-1", 5).WillReturnRows(rows)

	records, err := repo.ListForPatient(context.Background(), "clinic-1", "patient-1", 5)
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, id, records[0].ID)
	assert.Equal(t, risk.LevelCritical, records[0].OverallRisk)
	require.Len(t, records[0].Factors, 1)
	assert.Equal(t, "Advanced Age", records[0].Factors[0].Factor)
	assert.Equal(t, []string{"Schedule HbA1c test every 3 months"}, records[0].Recommendations)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRepository_ListForPatientEmptyAndDefaultLimit(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := newRepositoryWithExec(mock)
	mock.ExpectQuery("SELECT id, clinic_id").WithArgs("clinic-1", "patient-1", DefaultListLimit).
		WillReturnRows(pgxmock.NewRows([]string{"id", "clinic_id", "patient_id", "risk_score", "overall_risk", "factors", "recommendations", "created_at"}))

	records, err := repo.ListForPatient(context.Background(), "clinic-1", "patient-1", 0)
	require.NoError(t, err)
	assert.NotNil(t, records)
	assert.Empty(t, records)
}

func TestClampLimit(t *testing.T) {
	assert.Equal(t, DefaultListLimit, ClampLimit(0))
	assert.Equal(t, DefaultListLimit, ClampLimit(-3))
	assert.Equal(t, 7, ClampLimit(7))
	assert.Equal(t, MaxListLimit, ClampLimit(1000))
}

func TestNewRepository_PanicsOnNil(t *testing.T) {
	assert.Panics(t, func() { NewRepository(nil) })
	assert.Panics(t, func() { newRepositoryWithExec(nil) })
}
