package services

import (
	"bytes"
	"context"
	"errors"
	"io"
	"testing"

	"github.com/xuri/excelize/v2"

	"github.com/BMS-2026/crm-service/internal/events"
	"github.com/BMS-2026/crm-service/internal/models"
	"github.com/BMS-2026/crm-service/internal/validator"
)

func buildWorkbook(t *testing.T, rows [][]interface{}) io.Reader {
	t.Helper()
	f := excelize.NewFile()
	defer f.Close()

	sheet := f.GetSheetName(0)
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			t.Fatalf("CoordinatesToCellName: %v", err)
		}
		if err := f.SetSheetRow(sheet, cell, &row); err != nil {
			t.Fatalf("SetSheetRow: %v", err)
		}
	}

	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		t.Fatalf("Write workbook: %v", err)
	}
	return &buf
}

func newImportServiceForTest(t *testing.T, repo *mockRepository) (ImportService, *events.MockEventPublisher) {
	t.Helper()
	publisher := events.NewMockEventPublisher(testLogger(t))
	return NewImportService(repo, testLogger(t), publisher), publisher
}

func TestImportService_ImportXLSX(t *testing.T) {
	ctx := context.Background()

	t.Run("rep may not import", func(t *testing.T) {
		repo := newMockRepository()
		svc, _ := newImportServiceForTest(t, repo)
		_, err := svc.ImportXLSX(ctx, bytes.NewReader(nil), salesRep(5))
		if !IsPermissionError(err) {
			t.Errorf("error = %v, want permission error", err)
		}
	})

	t.Run("not an xlsx file", func(t *testing.T) {
		repo := newMockRepository()
		svc, _ := newImportServiceForTest(t, repo)
		_, err := svc.ImportXLSX(ctx, bytes.NewReader([]byte("id,age\n1,30\n")), admin())
		if !IsValidationError(err) {
			t.Errorf("error = %v, want validation error", err)
		}
	})

	t.Run("header without original_id rejected", func(t *testing.T) {
		repo := newMockRepository()
		svc, _ := newImportServiceForTest(t, repo)
		wb := buildWorkbook(t, [][]interface{}{
			{"name", "age"},
			{"Ana", 33},
		})
		_, err := svc.ImportXLSX(ctx, wb, manager())
		var verr *validator.ValidationError
		if !errors.As(err, &verr) || verr.Field != "file" {
			t.Errorf("error = %v, want a file validation error", err)
		}
	})

	t.Run("creates, updates and skips by original_id", func(t *testing.T) {
		repo := newMockRepository()
		repo.customer.customers[1] = &models.Customer{ID: 1, OriginalID: 100, Job: "services"}
		svc, publisher := newImportServiceForTest(t, repo)

		// "id" and "poutcome" exercise the header aliases.
		wb := buildWorkbook(t, [][]interface{}{
			{"id", "name", "phone", "age", "job", "housing", "poutcome", "score"},
			{100, "Ana Reis", "912345678", 35, "technician", "yes", "success", 0.91},
			{200, "Bruno Sa", "923456789", 29, "student", "no", "", 0.42},
			{"n/a", "Broken Row", "", "", "", "", "", ""},
		})

		result, err := svc.ImportXLSX(ctx, wb, manager())
		if err != nil {
			t.Fatalf("ImportXLSX: %v", err)
		}
		if result.Rows != 3 || result.Created != 1 || result.Updated != 1 || result.Skipped != 1 {
			t.Errorf("result = %+v, want rows=3 created=1 updated=1 skipped=1", result)
		}

		updated := repo.customer.customers[1]
		if updated.Name == nil || *updated.Name != "Ana Reis" {
			t.Errorf("existing record name = %v", updated.Name)
		}
		if updated.Job != "technician" {
			t.Errorf("existing record job = %q, want overwrite from the row", updated.Job)
		}
		if !updated.Housing {
			t.Errorf("housing yes should parse true")
		}
		if updated.PreviousOutcome != "success" {
			t.Errorf("poutcome alias should map to previous_outcome, got %q", updated.PreviousOutcome)
		}
		if updated.Score == nil || *updated.Score != 0.91 {
			t.Errorf("score = %v", updated.Score)
		}
		if len(updated.ImportMeta) == 0 {
			t.Errorf("import should record the raw row")
		}

		created, err := repo.customer.GetByOriginalID(ctx, 200)
		if err != nil {
			t.Fatalf("created row missing: %v", err)
		}
		if created.Age != 29 || created.Job != "student" || created.Housing {
			t.Errorf("created record = %+v", created)
		}

		published := publisher.GetPublishedEvents()
		if len(published) != 1 || published[0].Type != events.CustomersImported {
			t.Errorf("published = %+v, want one import event", published)
		}
	})

	t.Run("out of range score ignored", func(t *testing.T) {
		repo := newMockRepository()
		svc, _ := newImportServiceForTest(t, repo)

		wb := buildWorkbook(t, [][]interface{}{
			{"original_id", "age", "score"},
			{300, 50, 1.7},
		})
		if _, err := svc.ImportXLSX(ctx, wb, admin()); err != nil {
			t.Fatalf("ImportXLSX: %v", err)
		}

		created, err := repo.customer.GetByOriginalID(ctx, 300)
		if err != nil {
			t.Fatalf("created row missing: %v", err)
		}
		if created.Score != nil {
			t.Errorf("score %v should have been dropped as out of range", *created.Score)
		}
	})

	t.Run("workbook without data rows", func(t *testing.T) {
		repo := newMockRepository()
		svc, _ := newImportServiceForTest(t, repo)
		wb := buildWorkbook(t, [][]interface{}{
			{"original_id", "age"},
		})
		if _, err := svc.ImportXLSX(ctx, wb, admin()); !IsValidationError(err) {
			t.Errorf("error = %v, want validation error", err)
		}
	})
}
