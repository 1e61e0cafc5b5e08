// Command seed-symptoms validates a YAML symptom table and publishes it,
// either as the default table in S3 or as a clinic override via the admin API.
//
//	seed-symptoms <table.yaml>             publish to CDS_SYMPTOM_TABLE_S3_BUCKET/_KEY
//	seed-symptoms <table.yaml> <clinicID>  PUT to $API_URL/admin/clinics/<clinicID>/symptom-table
package main

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/wolfman30/clinic-cds/cmd/mainconfig"
	"github.com/wolfman30/clinic-cds/internal/cds/diagnosis"
	"github.com/wolfman30/clinic-cds/internal/cds/knowledge"
	appconfig "github.com/wolfman30/clinic-cds/internal/config"
	httpmiddleware "github.com/wolfman30/clinic-cds/internal/http/middleware"
)

type tablePublisher interface {
	Publish(ctx context.Context, table diagnosis.Table) error
	Location() string
}

func main() {
	if len(os.Args) < 2 {
		fmt.Println("Usage: seed-symptoms <table.yaml> [clinicID]")
		os.Exit(1)
	}
	cfg := appconfig.Load()
	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	data, err := os.ReadFile(os.Args[1])
	if err != nil {
		fail("read table", err)
	}
	table, err := knowledge.Parse(data)
	if err != nil {
		fail("parse table", err)
	}
	fmt.Printf("table %s: %d keywords\n", os.Args[1], len(table))

	if len(os.Args) >= 3 {
		clinicID := strings.TrimSpace(os.Args[2])
		token, err := httpmiddleware.IssueAdminToken(cfg.AdminJWTSecret, "seed-symptoms", 5*time.Minute)
		if err != nil {
			fail("issue admin token", err)
		}
		apiURL := strings.TrimRight(envOr("API_URL", "http://localhost:8080"), "/")
		client := &http.Client{Timeout: 30 * time.Second}
		if err := putClinicTable(ctx, client, apiURL, token, clinicID, data); err != nil {
			fail("upload clinic table", err)
		}
		fmt.Printf("clinic %s override replaced\n", clinicID)
		return
	}

	if cfg.SymptomTableS3Bucket == "" {
		fail("publish default table", fmt.Errorf("CDS_SYMPTOM_TABLE_S3_BUCKET is not set"))
	}
	awsCfg, err := mainconfig.LoadAWSConfig(ctx, cfg)
	if err != nil {
		fail("load aws config", err)
	}
	clients := mainconfig.NewClients(awsCfg, cfg)
	src := knowledge.NewS3Source(clients.S3, cfg.SymptomTableS3Bucket, cfg.SymptomTableS3Key)
	if err := publishDefault(ctx, src, table); err != nil {
		fail("publish default table", err)
	}
	fmt.Printf("default table published to %s\n", src.Location())
}

func publishDefault(ctx context.Context, pub tablePublisher, table diagnosis.Table) error {
	if err := pub.Publish(ctx, table); err != nil {
		return fmt.Errorf("publish to %s: %w", pub.Location(), err)
	}
	return nil
}

func putClinicTable(ctx context.Context, client *http.Client, apiURL, token, clinicID string, yamlBody []byte) error {
	if clinicID == "" {
		return fmt.Errorf("clinic id required")
	}
	url := fmt.Sprintf("%s/admin/clinics/%s/symptom-table", apiURL, clinicID)
	req, err := http.NewRequestWithContext(ctx, http.MethodPut, url, bytes.NewReader(yamlBody))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/yaml")
	req.Header.Set("Authorization", "Bearer "+token)

	resp, err := client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return fmt.Errorf("status %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}
	return nil
}

func envOr(key, fallback string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return fallback
}

func fail(step string, err error) {
	fmt.Fprintf(os.Stderr, "%s: %v\n", step, err)
	os.Exit(1)
}
