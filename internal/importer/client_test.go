package importer

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"school-roster-service/internal/models"
	"school-roster-service/pkg/errors"
)

func testRecords() []models.ValidatedRecord {
	return []models.ValidatedRecord{{
		Name:          "Asha Rao",
		Mobile:        "9876543210",
		Gender:        "female",
		BatchCode:     "2024A",
		AdmissionDate: "2024-06-05",
		Roll:          "12",
		Section:       "A",
		Course:        "Science",
	}}
}

func TestClient_SubmitBatch(t *testing.T) {
	var gotBody map[string]json.RawMessage
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/students/bulk" {
			t.Errorf("Unexpected path %s", r.URL.Path)
		}
		if ct := r.Header.Get("Content-Type"); ct != "application/json" {
			t.Errorf("Content-Type = %s", ct)
		}
		if err := json.NewDecoder(r.Body).Decode(&gotBody); err != nil {
			t.Fatalf("Decoding request failed: %v", err)
		}
		json.NewEncoder(w).Encode(models.SubmissionResult{
			Imported: 1,
			Failed:   1,
			Errors:   []models.RowError{{Index: 3, Message: "duplicate roll"}},
		})
	}))
	defer server.Close()

	client := NewClient(server.URL, 5*time.Second)
	result, err := client.SubmitBatch(context.Background(), testRecords())
	if err != nil {
		t.Fatalf("SubmitBatch failed: %v", err)
	}

	if _, ok := gotBody["students"]; !ok {
		t.Error("Expected payload under students key")
	}
	if result.Imported != 1 || result.Failed != 1 {
		t.Errorf("Result = %+v", result)
	}
	if len(result.Errors) != 1 || result.Errors[0].Message != "duplicate roll" {
		t.Errorf("Expected server errors surfaced verbatim, got %v", result.Errors)
	}
}

func TestClient_SubmitBatch_ServerRejection(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnprocessableEntity)
		json.NewEncoder(w).Encode(map[string]string{"message": "batch too large"})
	}))
	defer server.Close()

	client := NewClient(server.URL, 5*time.Second)
	_, err := client.SubmitBatch(context.Background(), testRecords())
	if !errors.IsCode(err, errors.CodeSubmissionRejected) {
		t.Fatalf("Expected submission_rejected, got %v", err)
	}
}

func TestClient_SubmitBatch_NetworkFailure(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))
	server.Close() // refuse all connections

	client := NewClient(server.URL, time.Second)
	_, err := client.SubmitBatch(context.Background(), testRecords())
	if !errors.IsCode(err, errors.CodeSubmissionFailed) {
		t.Fatalf("Expected submission_failed, got %v", err)
	}
}

func TestClient_RegisterIdentity(t *testing.T) {
	var got registerRequest
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/portal/accounts" {
			t.Errorf("Unexpected path %s", r.URL.Path)
		}
		if err := json.NewDecoder(r.Body).Decode(&got); err != nil {
			t.Fatalf("Decoding request failed: %v", err)
		}
		w.WriteHeader(http.StatusCreated)
	}))
	defer server.Close()

	client := NewClient(server.URL, 5*time.Second)
	identity := models.PortalIdentity{ID: "STU-24A2024-0042", Password: "s3cretPass!"}
	err := client.RegisterIdentity(context.Background(), models.RoleStudent, identity, "Asha Rao")
	if err != nil {
		t.Fatalf("RegisterIdentity failed: %v", err)
	}
	if got.Role != "student" || got.LoginID != identity.ID || got.Reference != "Asha Rao" {
		t.Errorf("Unexpected request %+v", got)
	}
}

func TestClient_RegisterIdentity_Rejection(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusConflict)
		json.NewEncoder(w).Encode(map[string]string{"error": "login id exists"})
	}))
	defer server.Close()

	client := NewClient(server.URL, 5*time.Second)
	err := client.RegisterIdentity(context.Background(), models.RoleTeacher,
		models.PortalIdentity{ID: "TCH-24GEN-0001", Password: "x"}, "")
	if !errors.IsCode(err, errors.CodeIssuanceFailed) {
		t.Fatalf("Expected issuance_failed, got %v", err)
	}
}
