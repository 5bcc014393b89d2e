package service

import (
	"context"
	"strings"
	"testing"

	"leadzap_backend/internal/events"
	"leadzap_backend/platform/apperr"

	"github.com/google/uuid"
)

func TestImportCSV(t *testing.T) {
	svc, _, bus := newTestService()
	tenantID := uuid.New()

	csvData := strings.Join([]string{
		"name,phone,email,source",
		"Maria Silva,+5511999888777,maria@example.com,landing",
		"João Souza,11 98877-6655,,indicacao",
		",+5511911111111,,",            // missing name
		"Ana Costa,,ana@example.com,",  // missing phone
		"Maria Silva,+5511999888777,,", // duplicate phone
	}, "\n")

	result, err := svc.ImportCSV(context.Background(), tenantID, strings.NewReader(csvData))
	if err != nil {
		t.Fatalf("ImportCSV() failed: %v", err)
	}

	if result.Created != 2 {
		t.Errorf("created = %d, want 2", result.Created)
	}
	if result.Skipped != 1 {
		t.Errorf("skipped = %d, want 1", result.Skipped)
	}
	if result.Failed != 2 {
		t.Errorf("failed = %d, want 2", result.Failed)
	}
	if len(result.Errors) != 2 {
		t.Fatalf("expected 2 row errors, got %d", len(result.Errors))
	}
	if result.Errors[0].Line != 4 || result.Errors[1].Line != 5 {
		t.Errorf("unexpected error lines: %+v", result.Errors)
	}

	imported := bus.published("leads.import.completed")
	if len(imported) != 1 {
		t.Fatalf("expected 1 LeadsImported event, got %d", len(imported))
	}
	e := imported[0].(events.LeadsImported)
	if e.Created != 2 || e.Skipped != 1 || e.Failed != 2 {
		t.Errorf("unexpected event counts: %+v", e)
	}
}

func TestImportCSV_RequiresNameAndPhoneColumns(t *testing.T) {
	svc, _, _ := newTestService()

	_, err := svc.ImportCSV(context.Background(), uuid.New(), strings.NewReader("nome,telefone\nMaria,+5511999888777\n"))
	if apperr.GetKind(err) != apperr.KindBadRequest {
		t.Fatalf("expected bad request, got %v", err)
	}
}

func TestImportCSV_EmptyFile(t *testing.T) {
	svc, _, _ := newTestService()

	_, err := svc.ImportCSV(context.Background(), uuid.New(), strings.NewReader(""))
	if apperr.GetKind(err) != apperr.KindBadRequest {
		t.Fatalf("expected bad request, got %v", err)
	}
}
