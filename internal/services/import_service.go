package services

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/xuri/excelize/v2"

	"github.com/BMS-2026/crm-service/internal/authz"
	"github.com/BMS-2026/crm-service/internal/events"
	"github.com/BMS-2026/crm-service/internal/models"
	"github.com/BMS-2026/crm-service/internal/repositories"
)

type importService struct {
	repo      repositories.Repository
	logger    *slog.Logger
	publisher events.EventPublisher
}

func NewImportService(repo repositories.Repository, logger *slog.Logger, publisher events.EventPublisher) ImportService {
	return &importService{
		repo:      repo,
		logger:    logger,
		publisher: publisher,
	}
}

// header aliases accepted in the scoring-pipeline workbook
var importColumns = map[string]string{
	"original_id":  "original_id",
	"id":           "original_id",
	"name":         "name",
	"phone":        "phone_number",
	"phone_number": "phone_number",
	"age":          "age",
	"job":          "job",
	"marital":      "marital",
	"education":    "education",
	"housing":      "housing",
	"loan":         "loan",
	"contact":      "contact",
	"month":        "month",
	"duration":     "duration",
	"campaign":     "campaign",
	"pdays":        "pdays",
	"previous":     "previous",
	"poutcome":     "previous_outcome",
	"score":        "score",
}

// ImportXLSX loads a scoring-pipeline workbook. Rows are matched to
// existing customers by original_id: known ids are updated in place,
// unknown ids create new records, rows without a usable original_id are
// skipped. The whole import runs in one transaction so a bad workbook
// leaves the table untouched.
func (s *importService) ImportXLSX(ctx context.Context, r io.Reader, actor *models.User) (*ImportResult, error) {
	if !authz.CanCreateCustomer(actor.Role) {
		return nil, NewPermissionError(actor.ID, 0, "customer", "import", "insufficient role permissions")
	}

	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, NewValidationError("file", "not a valid xlsx workbook", nil)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, NewValidationError("file", "workbook has no sheets", nil)
	}

	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, fmt.Errorf("failed to read sheet: %w", err)
	}
	if len(rows) < 2 {
		return nil, NewValidationError("file", "workbook has no data rows", nil)
	}

	header := make(map[int]string)
	for i, cell := range rows[0] {
		if field, ok := importColumns[strings.ToLower(strings.TrimSpace(cell))]; ok {
			header[i] = field
		}
	}
	if !headerHasField(header, "original_id") {
		return nil, NewValidationError("file", "missing original_id column", nil)
	}

	result := &ImportResult{Rows: len(rows) - 1}

	err = s.repo.WithTransaction(ctx, func(tx repositories.Repository) error {
		for _, row := range rows[1:] {
			record := make(map[string]string, len(header))
			for i, field := range header {
				if i < len(row) {
					record[field] = strings.TrimSpace(row[i])
				}
			}

			originalID, err := strconv.ParseUint(record["original_id"], 10, 64)
			if err != nil || originalID == 0 {
				result.Skipped++
				continue
			}

			existing, err := tx.Customer().GetByOriginalID(ctx, uint(originalID))
			switch {
			case err == nil:
				applyImportRow(existing, record)
				if err := tx.Customer().Update(ctx, existing); err != nil {
					return fmt.Errorf("failed to update customer %d: %w", originalID, err)
				}
				result.Updated++
			case repositories.IsNotFoundError(err):
				customer := &models.Customer{OriginalID: uint(originalID)}
				applyImportRow(customer, record)
				if err := tx.Customer().Create(ctx, customer); err != nil {
					return fmt.Errorf("failed to create customer %d: %w", originalID, err)
				}
				result.Created++
			default:
				return fmt.Errorf("failed to look up customer %d: %w", originalID, err)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("Customer import finished",
		"rows", result.Rows, "created", result.Created, "updated", result.Updated, "skipped", result.Skipped, "actor_id", actor.ID)
	s.publishImported(ctx, actor.ID, result)

	return result, nil
}

func headerHasField(header map[int]string, field string) bool {
	for _, f := range header {
		if f == field {
			return true
		}
	}
	return false
}

func applyImportRow(c *models.Customer, record map[string]string) {
	if v := record["name"]; v != "" {
		c.Name = &v
	}
	if v := record["phone_number"]; v != "" {
		c.PhoneNumber = &v
	}
	if v, err := strconv.Atoi(record["age"]); err == nil {
		c.Age = v
	}
	if v := record["job"]; v != "" {
		c.Job = v
	}
	if v := record["marital"]; v != "" {
		c.Marital = v
	}
	if v := record["education"]; v != "" {
		c.Education = v
	}
	if v, ok := record["housing"]; ok && v != "" {
		c.Housing = parseYesNo(v)
	}
	if v, ok := record["loan"]; ok && v != "" {
		c.Loan = parseYesNo(v)
	}
	if v := record["contact"]; v != "" {
		c.Contact = v
	}
	if v := record["month"]; v != "" {
		c.Month = v
	}
	if v, err := strconv.Atoi(record["duration"]); err == nil {
		c.Duration = v
	}
	if v, err := strconv.Atoi(record["campaign"]); err == nil {
		c.Campaign = v
	}
	if v, err := strconv.Atoi(record["pdays"]); err == nil {
		c.PDays = v
	}
	if v, err := strconv.Atoi(record["previous"]); err == nil {
		c.Previous = v
	}
	if v := record["previous_outcome"]; v != "" {
		c.PreviousOutcome = v
	}
	if v, err := strconv.ParseFloat(record["score"], 64); err == nil && v >= 0 && v <= 1 {
		c.Score = &v
	}

	if raw, err := json.Marshal(record); err == nil {
		c.ImportMeta = raw
	}
}

func parseYesNo(v string) bool {
	switch strings.ToLower(v) {
	case "yes", "y", "true", "1":
		return true
	default:
		return false
	}
}

func (s *importService) publishImported(ctx context.Context, actorID uint, result *ImportResult) {
	event := events.Event{
		ID:         uuid.NewString(),
		Type:       events.CustomersImported,
		OccurredAt: time.Now().UTC(),
		ActorID:    actorID,
		Payload: events.ImportPayload{
			Created: result.Created,
			Updated: result.Updated,
			Skipped: result.Skipped,
		},
	}
	if err := s.publisher.Publish(ctx, event); err != nil {
		s.logger.Warn("Failed to publish import event", "error", err)
	}
}
