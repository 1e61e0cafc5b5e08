package main

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/aws/aws-lambda-go/events"
	"github.com/aws/aws-lambda-go/lambda"

	"github.com/wolfman30/clinic-cds/internal/app/bootstrap"
	"github.com/wolfman30/clinic-cds/internal/cds"
	"github.com/wolfman30/clinic-cds/internal/cds/risk"
	appconfig "github.com/wolfman30/clinic-cds/internal/config"
	"github.com/wolfman30/clinic-cds/pkg/logging"
)

// engine is the part of cds.Service the Lambda serves. Only the engines run
// here; storage, audit and alerts stay with the API server.
type engine interface {
	SuggestDiagnoses(ctx context.Context, clinicID, symptoms string) (cds.DiagnosisResult, error)
	AssessRisk(ctx context.Context, req cds.AssessRequest) (cds.AssessResult, error)
}

func main() {
	cfg := appconfig.Load()
	logger := logging.NewWithOptions(logging.Options{Level: cfg.LogLevel, Format: cfg.LogFormat})

	table, source, err := bootstrap.LoadDefaultTable(context.Background(), &appconfig.Config{SymptomTablePath: cfg.SymptomTablePath}, nil, logger)
	if err != nil {
		panic(err)
	}
	logger.Info("cds lambda starting", "symptom_table", source, "keywords", len(table))

	svc := bootstrap.BuildService(cfg, bootstrap.ServiceDeps{Table: table}, logger).Service
	lambda.Start(func(ctx context.Context, evt events.APIGatewayV2HTTPRequest) (events.APIGatewayV2HTTPResponse, error) {
		return handle(ctx, svc, evt)
	})
}

func handle(ctx context.Context, svc engine, evt events.APIGatewayV2HTTPRequest) (events.APIGatewayV2HTTPResponse, error) {
	method := strings.ToUpper(strings.TrimSpace(evt.RequestContext.HTTP.Method))
	path := strings.TrimSpace(evt.RawPath)
	if path == "" {
		path = strings.TrimSpace(evt.RequestContext.HTTP.Path)
	}

	if path == "/health" || path == "/_health" {
		return jsonResponse(http.StatusOK, map[string]string{"status": "ok"}), nil
	}

	switch path {
	case "/cds/diagnoses", "/cds/risk-assessments":
	default:
		return jsonResponse(http.StatusNotFound, map[string]string{"error": "not found"}), nil
	}
	if method != http.MethodPost {
		return jsonResponse(http.StatusMethodNotAllowed, map[string]string{"error": "method not allowed"}), nil
	}

	clinicID := strings.TrimSpace(headerValue(evt.Headers, "x-org-id"))
	if clinicID == "" {
		return jsonResponse(http.StatusBadRequest, map[string]string{"error": "missing X-Org-Id"}), nil
	}

	body, err := decodeBody(evt)
	if err != nil {
		return jsonResponse(http.StatusBadRequest, map[string]string{"error": "invalid body"}), nil
	}

	switch path {
	case "/cds/diagnoses":
		var req struct {
			Symptoms string `json:"symptoms"`
		}
		if err := json.Unmarshal(body, &req); err != nil {
			return jsonResponse(http.StatusBadRequest, map[string]string{"error": "invalid JSON body"}), nil
		}
		res, err := svc.SuggestDiagnoses(ctx, clinicID, req.Symptoms)
		if err != nil {
			return errorResponse(err), nil
		}
		return jsonResponse(http.StatusOK, res), nil
	default:
		var req struct {
			PatientID string            `json:"patientId"`
			Patient   risk.PatientInput `json:"patient"`
		}
		if err := json.Unmarshal(body, &req); err != nil {
			return jsonResponse(http.StatusBadRequest, map[string]string{"error": "invalid JSON body"}), nil
		}
		res, err := svc.AssessRisk(ctx, cds.AssessRequest{
			ClinicID:  clinicID,
			PatientID: req.PatientID,
			Actor:     strings.TrimSpace(headerValue(evt.Headers, "x-actor-id")),
			Patient:   req.Patient,
		})
		if err != nil {
			return errorResponse(err), nil
		}
		return jsonResponse(http.StatusOK, res), nil
	}
}

func errorResponse(err error) events.APIGatewayV2HTTPResponse {
	if errors.Is(err, cds.ErrSymptomsTooShort) || errors.Is(err, cds.ErrMissingClinic) {
		return jsonResponse(http.StatusBadRequest, map[string]string{"error": err.Error()})
	}
	return jsonResponse(http.StatusInternalServerError, map[string]string{"error": "internal error"})
}

func jsonResponse(status int, payload any) events.APIGatewayV2HTTPResponse {
	body, err := json.Marshal(payload)
	if err != nil {
		status = http.StatusInternalServerError
		body = []byte(`{"error":"internal error"}`)
	}
	return events.APIGatewayV2HTTPResponse{
		StatusCode: status,
		Body:       string(body),
		Headers:    map[string]string{"content-type": "application/json"},
	}
}

func decodeBody(evt events.APIGatewayV2HTTPRequest) ([]byte, error) {
	if !evt.IsBase64Encoded {
		return []byte(evt.Body), nil
	}
	return base64.StdEncoding.DecodeString(evt.Body)
}

func headerValue(headers map[string]string, key string) string {
	for k, v := range headers {
		if strings.EqualFold(k, key) {
			return v
		}
	}
	return ""
}
