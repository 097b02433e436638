package services

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/BMS-2026/crm-service/internal/authz"
	"github.com/BMS-2026/crm-service/internal/models"
	"github.com/BMS-2026/crm-service/internal/repositories"
)

// GuideGenerator produces a conversation guide from an external content
// service. Implementations may fail or time out; the guide service always
// falls back to its built-in rules so the endpoint never errors on
// generation problems.
type GuideGenerator interface {
	Generate(ctx context.Context, customer *models.Customer) (*GuideResponse, error)
}

type guideService struct {
	repo      repositories.Repository
	logger    *slog.Logger
	generator GuideGenerator // optional
}

func NewGuideService(repo repositories.Repository, logger *slog.Logger, generator GuideGenerator) GuideService {
	return &guideService{
		repo:      repo,
		logger:    logger,
		generator: generator,
	}
}

func (s *guideService) Generate(ctx context.Context, customerID uint, actor *models.User) (*GuideResponse, error) {
	customer, err := s.repo.Customer().GetByID(ctx, customerID)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrCustomerNotFound
		}
		return nil, fmt.Errorf("failed to get customer: %w", err)
	}

	if d := authz.AuthorizeCustomer(authz.OpRead, actor.Role, actor.ID, customer); !d.Allowed {
		return nil, NewPermissionError(actor.ID, customerID, "customer", "read", d.Reason)
	}

	if s.generator != nil {
		guide, err := s.generator.Generate(ctx, customer)
		if err == nil && guide != nil {
			guide.CustomerID = customerID
			guide.Source = "generated"
			return guide, nil
		}
		s.logger.Warn("Guide generation failed, using rules", "customer_id", customerID, "error", err)
	}

	return ruleBasedGuide(customer), nil
}

// ruleBasedGuide builds a deterministic guide from the customer's profile.
// It is the fallback path and must never fail.
func ruleBasedGuide(c *models.Customer) *GuideResponse {
	guide := &GuideResponse{
		CustomerID: c.ID,
		Source:     "rules",
	}

	name := "the customer"
	if c.Name != nil && *c.Name != "" {
		name = *c.Name
	}
	guide.Opening = fmt.Sprintf("Introduce yourself, confirm you are speaking with %s, and ask if now is a good time for a short conversation about a term deposit offer.", name)

	var points []string
	if c.Score != nil && *c.Score >= 0.75 {
		points = append(points, "Profile suggests strong interest; lead with the headline rate and current promotional terms.")
	}
	if c.Age >= 55 {
		points = append(points, "Emphasize capital safety and the fixed, predictable return of a term deposit.")
	} else if c.Age < 30 {
		points = append(points, "Frame the deposit as a low-effort way to start building savings alongside everyday spending.")
	}
	if c.Housing {
		points = append(points, "They hold a housing loan; position the deposit as a parallel savings buffer, not a competing commitment.")
	}
	if c.Loan {
		points = append(points, "An existing personal loan may limit free cash; suggest a small opening amount with top-ups.")
	}
	if c.PreviousOutcome == "success" {
		points = append(points, "They subscribed in a previous campaign; reference the earlier product and offer renewal terms.")
	}
	if len(points) == 0 {
		points = append(points, "Ask about their current savings goals and match the deposit term to the nearest goal.")
	}
	guide.TalkingPoints = points

	guide.Objections = []string{
		"\"Rates are too low\" - compare against their current account rate, not the market peak.",
		"\"I need the money available\" - mention the shorter terms and the early-withdrawal conditions.",
		"\"Not interested right now\" - offer to note a callback date rather than closing the file.",
	}

	guide.Closing = "Summarize the agreed next step, confirm their preferred contact channel, and log the call outcome before moving on."

	return guide
}
