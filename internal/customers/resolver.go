// Package customers resolves a phone-suffix query to a single customer
// account across the wholesaler's relationship paths. Disambiguation walks a
// ranked strategy chain so the heuristic can be swapped for stronger
// identity proof without touching order logic.
package customers

import (
	"context"
	"fmt"
	"strings"
	"unicode"

	"github.com/google/uuid"

	"github.com/wholesail/wholesail-backend/pkg/db/models"
	pkgerrors "github.com/wholesail/wholesail-backend/pkg/errors"
	"github.com/wholesail/wholesail-backend/pkg/logger"
	"github.com/wholesail/wholesail-backend/pkg/phone"
)

// CustomerIdentity is the resolved account returned to callers.
type CustomerIdentity struct {
	UserID     uuid.UUID
	FullName   string
	Email      string
	PhoneLast4 string
	OrderCount int
}

// Resolution reports the outcome of a resolve call. Matched is false when no
// connected customer carries the suffix; resolution never fails on
// ambiguity.
type Resolution struct {
	Matched    bool
	Customer   *CustomerIdentity
	Strategy   string
	Candidates int
}

// ResolveInput identifies the wholesaler and the phone evidence in hand.
type ResolveInput struct {
	WholesalerID uuid.UUID
	LastFour     string
	FullPhone    string
}

// Service exposes customer identity operations.
type Service interface {
	Resolve(ctx context.Context, input ResolveInput) (*Resolution, error)
	IsCustomer(ctx context.Context, wholesalerID, userID uuid.UUID) (bool, error)
}

type service struct {
	repo       *Repository
	strategies []Strategy
	logg       *logger.Logger
}

// NewService builds the resolver with the default strategy chain.
func NewService(repo *Repository, logg *logger.Logger) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("customers repository required")
	}
	return &service{repo: repo, strategies: defaultStrategies(), logg: logg}, nil
}

// IsCustomer answers the unified relationship query.
func (s *service) IsCustomer(ctx context.Context, wholesalerID, userID uuid.UUID) (bool, error) {
	return s.repo.IsCustomer(ctx, wholesalerID, userID)
}

// Resolve gathers every connected user whose phone suffix matches, then
// walks the strategy chain until one picks a candidate. Identical inputs
// against unchanged data always return the same customer.
func (s *service) Resolve(ctx context.Context, input ResolveInput) (*Resolution, error) {
	lastFour := strings.TrimSpace(input.LastFour)
	if len(lastFour) != 4 || !allDigits(lastFour) {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "last four digits required").
			WithDetails(map[string]any{"lastFour": input.LastFour})
	}

	wholesaler, err := s.repo.FindWholesaler(ctx, input.WholesalerID)
	if err != nil {
		return nil, err
	}

	users, err := s.repo.ListCustomersWithPhone(ctx, input.WholesalerID)
	if err != nil {
		return nil, err
	}

	var matched []models.User
	for _, user := range users {
		if user.Phone == nil {
			continue
		}
		if phone.LastFour(*user.Phone) == lastFour {
			matched = append(matched, user)
		}
	}
	if len(matched) == 0 {
		return &Resolution{Matched: false}, nil
	}

	ids := make([]uuid.UUID, len(matched))
	for i, user := range matched {
		ids[i] = user.ID
	}
	counts, err := s.repo.OrderCounts(ctx, input.WholesalerID, ids)
	if err != nil {
		return nil, err
	}

	candidates := make([]Candidate, len(matched))
	for i, user := range matched {
		candidates[i] = Candidate{User: user, OrderCount: counts[user.ID]}
	}

	query := Query{
		LastFour:         lastFour,
		FullPhone:        input.FullPhone,
		WholesalerDomain: emailDomain(wholesaler.Email),
	}

	for _, strategy := range s.strategies {
		winner := strategy.Select(query, candidates)
		if winner == nil {
			continue
		}
		if s.logg != nil {
			logCtx := s.logg.WithFields(ctx, map[string]any{
				"wholesaler_id": input.WholesalerID.String(),
				"strategy":      strategy.Name(),
				"candidates":    len(candidates),
			})
			s.logg.Info(logCtx, "customer resolved")
		}
		return &Resolution{
			Matched:    true,
			Customer:   identityOf(winner),
			Strategy:   strategy.Name(),
			Candidates: len(candidates),
		}, nil
	}

	// The chain ends with an unconditional strategy, so this is unreachable
	// with a non-empty candidate list.
	return &Resolution{Matched: false, Candidates: len(candidates)}, nil
}

func identityOf(candidate *Candidate) *CustomerIdentity {
	last4 := ""
	if candidate.User.Phone != nil {
		last4 = phone.LastFour(*candidate.User.Phone)
	}
	return &CustomerIdentity{
		UserID:     candidate.User.ID,
		FullName:   candidate.User.FullName(),
		Email:      candidate.User.Email,
		PhoneLast4: last4,
		OrderCount: candidate.OrderCount,
	}
}

func allDigits(value string) bool {
	for _, r := range value {
		if !unicode.IsDigit(r) {
			return false
		}
	}
	return true
}
