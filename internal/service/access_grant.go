package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/inventrack/inventory-server-go/internal/config"
	apperrors "github.com/inventrack/inventory-server-go/internal/errors"
	"github.com/inventrack/inventory-server-go/internal/model"
	redisclient "github.com/inventrack/inventory-server-go/internal/redis"
	"github.com/inventrack/inventory-server-go/internal/repository"
)

// RedeemResult is the redemption response: the code joined with the
// inventory's display name. The name is resolved at read time and never
// stored on the code.
type RedeemResult struct {
	AccessCode    model.AccessCode  `json:"accessCode"`
	Grant         model.AccessGrant `json:"grant"`
	InventoryName string            `json:"inventoryName"`
}

// InventoryAccess is the per-inventory view of who redeemed the current code.
type InventoryAccess struct {
	AccessCode model.AccessCode    `json:"accessCode"`
	Users      []model.GrantedUser `json:"users"`
}

// AccessGrantService orchestrates code redemption and the two access
// read-models: who can reach an inventory, and what a user can reach.
type AccessGrantService struct {
	grantRepo   repository.AccessGrantRepository
	codeRepo    repository.AccessCodeRepository
	invRepo     repository.InventoryRepository
	userRepo    repository.UserRepository
	rateLimiter *RateLimiter
	clock       Clock
}

// NewAccessGrantService creates a new access grant service
func NewAccessGrantService(
	grantRepo repository.AccessGrantRepository,
	codeRepo repository.AccessCodeRepository,
	invRepo repository.InventoryRepository,
	userRepo repository.UserRepository,
	redisClient *redisclient.Client,
) *AccessGrantService {
	return &AccessGrantService{
		grantRepo:   grantRepo,
		codeRepo:    codeRepo,
		invRepo:     invRepo,
		userRepo:    userRepo,
		rateLimiter: NewRateLimiter(redisClient.Client),
		clock:       SystemClock,
	}
}

// Redeem exchanges a valid code for an access grant. Only current users
// may redeem, and each user may redeem a given code once.
func (s *AccessGrantService) Redeem(ctx context.Context, code, userID string) (*RedeemResult, error) {
	user, err := s.userRepo.FindByID(ctx, userID)
	if err != nil {
		return nil, apperrors.Database(err)
	}
	if user == nil {
		return nil, apperrors.NotFound("User")
	}
	if user.Role != model.RoleCurrent {
		log.Warn().
			Str("userId", userID).
			Str("role", string(user.Role)).
			Msg("redeem rejected for non-current role")
		return nil, apperrors.WrongRole()
	}

	normalized := normalizeCode(code)
	ac, err := s.codeRepo.FindActiveByCode(ctx, normalized, s.clock.Now())
	if err != nil {
		return nil, apperrors.Database(err)
	}
	if ac == nil {
		log.Warn().Str("userId", userID).Msg("redeem with invalid or expired code")
		return nil, apperrors.InvalidAccessCode()
	}

	existing, err := s.grantRepo.FindByUserAndCode(ctx, userID, ac.ID)
	if err != nil {
		return nil, apperrors.Database(err)
	}
	if existing != nil {
		return nil, apperrors.AlreadyRedeemed()
	}

	grant, err := s.grantRepo.Create(ctx, model.CreateAccessGrantParams{
		ID:           uuid.NewString(),
		UserID:       userID,
		AccessCodeID: ac.ID,
	})
	if err != nil {
		if repository.IsUniqueViolation(err) {
			return nil, apperrors.AlreadyRedeemed()
		}
		return nil, apperrors.Database(err)
	}

	inv, err := s.invRepo.FindByID(ctx, ac.InventoryID)
	if err != nil {
		return nil, apperrors.Database(err)
	}
	inventoryName := ""
	if inv != nil {
		inventoryName = inv.Name
	}

	log.Info().
		Str("userId", userID).
		Str("inventoryId", ac.InventoryID).
		Str("code", ac.Code).
		Msg("access code redeemed")

	return &RedeemResult{
		AccessCode:    *ac,
		Grant:         *grant,
		InventoryName: inventoryName,
	}, nil
}

// ListUsersWithAccess returns the redemptions of the inventory's
// currently active code. An inventory without an active code is
// reported distinctly from an active code nobody redeemed yet.
func (s *AccessGrantService) ListUsersWithAccess(ctx context.Context, inventoryID string) (*InventoryAccess, error) {
	inv, err := s.invRepo.FindByID(ctx, inventoryID)
	if err != nil {
		return nil, apperrors.Database(err)
	}
	if inv == nil {
		return nil, apperrors.NotFound("Inventory")
	}

	ac, err := s.codeRepo.FindActiveByInventoryID(ctx, inventoryID, s.clock.Now())
	if err != nil {
		return nil, apperrors.Database(err)
	}
	if ac == nil {
		return nil, apperrors.NoActiveCode()
	}

	users, err := s.grantRepo.ListUsersByCode(ctx, ac.ID)
	if err != nil {
		return nil, apperrors.Database(err)
	}

	return &InventoryAccess{AccessCode: *ac, Users: users}, nil
}

// ListInventoriesForUser returns the summaries of every inventory the
// user currently holds a live grant for.
func (s *AccessGrantService) ListInventoriesForUser(ctx context.Context, userID string) ([]model.InventorySummary, error) {
	user, err := s.userRepo.FindByID(ctx, userID)
	if err != nil {
		return nil, apperrors.Database(err)
	}
	if user == nil {
		return nil, apperrors.NotFound("User")
	}

	codes, err := s.grantRepo.ListActiveCodesByUser(ctx, userID, s.clock.Now())
	if err != nil {
		return nil, apperrors.Database(err)
	}

	summaries := make([]model.InventorySummary, 0, len(codes))
	for _, ac := range codes {
		summary, err := s.invRepo.Summarize(ctx, ac.InventoryID)
		if err != nil {
			return nil, apperrors.Database(err)
		}
		if summary != nil {
			summaries = append(summaries, *summary)
		}
	}
	return summaries, nil
}

// CheckRedeemLimit checks if redemption attempts are allowed for a user.
// Limit: 5 times per 1 minute per user.
func (s *AccessGrantService) CheckRedeemLimit(
	ctx context.Context,
	userID string,
) (allowed bool, resetAt time.Time) {
	if s.rateLimiter == nil {
		return true, time.Time{}
	}
	key := fmt.Sprintf("code_redeem:%s", userID)
	return s.rateLimiter.CheckLimit(ctx, key, config.RedeemLimit, config.RedeemWindow)
}
