package bootstrap

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"

	"github.com/wolfman30/clinic-cds/internal/assessments"
	"github.com/wolfman30/clinic-cds/internal/cds"
	"github.com/wolfman30/clinic-cds/internal/cds/diagnosis"
	"github.com/wolfman30/clinic-cds/internal/cds/knowledge"
	"github.com/wolfman30/clinic-cds/internal/compliance"
	appconfig "github.com/wolfman30/clinic-cds/internal/config"
	"github.com/wolfman30/clinic-cds/internal/events"
	"github.com/wolfman30/clinic-cds/internal/observability/metrics"
	"github.com/wolfman30/clinic-cds/pkg/logging"
)

// LoadDefaultTable returns the symptom table the matcher falls back to. A
// configured file wins over S3; with neither, the built-in table is used.
func LoadDefaultTable(ctx context.Context, cfg *appconfig.Config, s3 knowledge.S3API, logger *logging.Logger) (diagnosis.Table, string, error) {
	if logger == nil {
		logger = logging.Default()
	}
	if cfg != nil && strings.TrimSpace(cfg.SymptomTablePath) != "" {
		table, err := knowledge.LoadFile(cfg.SymptomTablePath)
		if err != nil {
			return nil, "", err
		}
		return table, cfg.SymptomTablePath, nil
	}
	if cfg != nil && cfg.SymptomTableS3Bucket != "" {
		if s3 == nil {
			return nil, "", fmt.Errorf("bootstrap: symptom table bucket set without an s3 client")
		}
		src := knowledge.NewS3Source(s3, cfg.SymptomTableS3Bucket, cfg.SymptomTableS3Key)
		table, err := src.Load(ctx)
		if err != nil {
			return nil, "", err
		}
		return table, src.Location(), nil
	}
	return diagnosis.DefaultTable(), "builtin", nil
}

// ServiceDeps are the optional backends the service can use.
type ServiceDeps struct {
	Table   diagnosis.Table
	Redis   *redis.Client
	Pool    *pgxpool.Pool
	SQL     *sql.DB
	Metrics *metrics.CDSMetrics
}

// Components are the wired pieces the entry points need beyond the service.
type Components struct {
	Service     *cds.Service
	Overrides   *knowledge.Store
	Audit       *compliance.AuditService
	Outbox      *events.OutboxStore
	Processed   *events.ProcessedStore
	Disclaimer  compliance.Disclaimer
	HistoryUsed bool
}

// BuildService assembles the decision-support service. Collaborators are
// only attached when their backend is present so nil pointers never end up
// inside interface values.
func BuildService(cfg *appconfig.Config, deps ServiceDeps, logger *logging.Logger) Components {
	if cfg == nil {
		cfg = &appconfig.Config{}
	}
	if logger == nil {
		logger = logging.Default()
	}

	out := Components{Disclaimer: compliance.NewDisclaimer(cfg.DisclaimerLevel, cfg.DisclaimerText)}
	opts := cds.Options{
		Metrics:    deps.Metrics,
		Disclaimer: out.Disclaimer,
		Logger:     logger,
	}
	if len(deps.Table) > 0 {
		opts.Matcher = diagnosis.NewMatcher(deps.Table)
	}

	if deps.Redis != nil {
		out.Overrides = knowledge.NewStore(deps.Redis)
		opts.Overrides = out.Overrides
	}
	if deps.SQL != nil {
		out.Audit = compliance.NewAuditService(deps.SQL)
		opts.Audit = out.Audit
	}
	if deps.Pool != nil {
		if cfg.PersistAssessments {
			opts.History = assessments.NewRepository(deps.Pool)
			out.HistoryUsed = true
		}
		out.Outbox = events.NewOutboxStore(deps.Pool)
		out.Processed = events.NewProcessedStore(deps.Pool)
		opts.Alerts = events.NewRiskAlertPublisher(out.Outbox)
	}

	out.Service = cds.NewService(opts)
	logger.Info("cds service configured",
		"overrides", out.Overrides != nil,
		"audit", out.Audit != nil,
		"history", out.HistoryUsed,
		"alerts", out.Outbox != nil,
		"disclaimer", string(out.Disclaimer.Level()),
	)
	return out
}
