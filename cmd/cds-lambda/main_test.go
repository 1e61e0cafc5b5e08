package main

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"net/http"
	"testing"

	"github.com/aws/aws-lambda-go/events"

	"github.com/wolfman30/clinic-cds/internal/cds"
	"github.com/wolfman30/clinic-cds/internal/cds/risk"
)

func request(method, path, body string, headers map[string]string) events.APIGatewayV2HTTPRequest {
	return events.APIGatewayV2HTTPRequest{
		RawPath: path,
		Body:    body,
		Headers: headers,
		RequestContext: events.APIGatewayV2HTTPRequestContext{
			HTTP: events.APIGatewayV2HTTPRequestContextHTTPDescription{
				Method: method,
				Path:   path,
			},
		},
	}
}

func TestHandleHealth(t *testing.T) {
	resp, err := handle(context.Background(), cds.NewService(cds.Options{}), request(http.MethodGet, "/health", "", nil))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected status %d, got %d", http.StatusOK, resp.StatusCode)
	}
}

func TestHandleRejectsUnknownRouteAndMethod(t *testing.T) {
	svc := cds.NewService(cds.Options{})
	headers := map[string]string{"X-Org-Id": "clinic-1"}

	resp, _ := handle(context.Background(), svc, request(http.MethodPost, "/cds/unknown", "{}", headers))
	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", resp.StatusCode)
	}
	resp, _ = handle(context.Background(), svc, request(http.MethodGet, "/cds/diagnoses", "", headers))
	if resp.StatusCode != http.StatusMethodNotAllowed {
		t.Fatalf("expected 405, got %d", resp.StatusCode)
	}
	resp, _ = handle(context.Background(), svc, request(http.MethodPost, "/cds/diagnoses", `{"symptoms":"fever"}`, nil))
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("expected 400 without clinic header, got %d", resp.StatusCode)
	}
}

func TestHandleDiagnoses(t *testing.T) {
	body := base64.StdEncoding.EncodeToString([]byte(`{"symptoms":"Headache with dizziness"}`))
	evt := request(http.MethodPost, "/cds/diagnoses", body, map[string]string{"x-org-id": "clinic-1"})
	evt.IsBase64Encoded = true

	resp, err := handle(context.Background(), cds.NewService(cds.Options{}), evt)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", resp.StatusCode, resp.Body)
	}
	var res cds.DiagnosisResult
	if err := json.Unmarshal([]byte(resp.Body), &res); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(res.MatchedKeywords) != 2 || len(res.Suggestions) == 0 {
		t.Fatalf("expected headache and dizziness to match, got %+v", res)
	}
}

func TestHandleDiagnosesShortInput(t *testing.T) {
	evt := request(http.MethodPost, "/cds/diagnoses", `{"symptoms":"ab"}`, map[string]string{"X-Org-Id": "clinic-1"})
	resp, _ := handle(context.Background(), cds.NewService(cds.Options{}), evt)
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", resp.StatusCode)
	}
}

func TestHandleRiskAssessment(t *testing.T) {
	body := `{"patient":{"age":55,"vitals":{"bloodPressure":"150/95"}}}`
	evt := request(http.MethodPost, "/cds/risk-assessments", body, map[string]string{"X-Org-Id": "clinic-1"})

	resp, err := handle(context.Background(), cds.NewService(cds.Options{}), evt)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", resp.StatusCode, resp.Body)
	}
	var res cds.AssessResult
	if err := json.Unmarshal([]byte(resp.Body), &res); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if res.Assessment.RiskScore != 25 || res.Assessment.OverallRisk != risk.LevelMedium {
		t.Fatalf("expected score 25 medium, got %d %s", res.Assessment.RiskScore, res.Assessment.OverallRisk)
	}
}
