package service

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"math/big"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/inventrack/inventory-server-go/internal/config"
	apperrors "github.com/inventrack/inventory-server-go/internal/errors"
	"github.com/inventrack/inventory-server-go/internal/model"
	redisclient "github.com/inventrack/inventory-server-go/internal/redis"
	"github.com/inventrack/inventory-server-go/internal/repository"
)

const (
	// No I, O, 0 or 1: codes are read aloud and typed by hand.
	accessCodeChars  = "ABCDEFGHJKLMNPQRSTUVWXYZ23456789"
	accessCodeLength = 8
	maxMintAttempts  = 5
)

// AccessCodeService owns the access-code lifecycle for inventories:
// generation, validation, the active-code view and revocation.
type AccessCodeService struct {
	codeRepo    repository.AccessCodeRepository
	invRepo     repository.InventoryRepository
	rateLimiter *RateLimiter
	clock       Clock
	maxTTL      time.Duration
}

// NewAccessCodeService creates a new access code service
func NewAccessCodeService(
	codeRepo repository.AccessCodeRepository,
	invRepo repository.InventoryRepository,
	redisClient *redisclient.Client,
	maxTTL time.Duration,
) *AccessCodeService {
	return &AccessCodeService{
		codeRepo:    codeRepo,
		invRepo:     invRepo,
		rateLimiter: NewRateLimiter(redisClient.Client),
		clock:       SystemClock,
		maxTTL:      maxTTL,
	}
}

// Generate mints a new access code for the inventory, valid for exactly
// the given duration from now. Durations over the configured maximum
// are rejected outright. Fails with a conflict while a previous code is
// still active.
func (s *AccessCodeService) Generate(
	ctx context.Context,
	inventoryID string,
	hours, minutes int,
) (*model.AccessCode, error) {
	duration := time.Duration(hours)*time.Hour + time.Duration(minutes)*time.Minute
	if duration <= 0 {
		return nil, apperrors.InvalidInput("duration", "must be greater than zero")
	}
	if s.maxTTL > 0 && duration > s.maxTTL {
		return nil, apperrors.InvalidInput("duration", fmt.Sprintf("must not exceed %s", s.maxTTL))
	}

	inv, err := s.invRepo.FindByID(ctx, inventoryID)
	if err != nil {
		return nil, apperrors.Database(err)
	}
	if inv == nil {
		return nil, apperrors.NotFound("Inventory")
	}

	now := s.clock.Now()
	expiresAt := now.Add(duration)

	for attempts := 0; attempts < maxMintAttempts; attempts++ {
		ac, err := s.codeRepo.CreateExclusive(ctx, model.CreateAccessCodeParams{
			ID:          uuid.NewString(),
			Code:        generateAccessCode(),
			InventoryID: inventoryID,
			ExpiresAt:   expiresAt,
		}, now)
		switch {
		case err == nil:
			log.Info().
				Str("code", ac.Code).
				Str("inventoryId", inventoryID).
				Time("expiresAt", ac.ExpiresAt).
				Msg("access code created")
			return ac, nil

		case errors.Is(err, repository.ErrActiveCodeExists):
			return nil, apperrors.ActiveCodeExists()

		case errors.Is(err, repository.ErrInventoryMissing):
			return nil, apperrors.NotFound("Inventory")

		case repository.IsUniqueViolation(err):
			log.Warn().
				Str("inventoryId", inventoryID).
				Int("attempt", attempts+1).
				Msg("access code value collision, retrying")

		default:
			return nil, apperrors.Database(err)
		}
	}

	return nil, apperrors.Internal("Could not mint a unique access code")
}

// Validate looks up a code and returns it while it is still active.
// Unknown and expired codes are indistinguishable to the caller.
func (s *AccessCodeService) Validate(ctx context.Context, code string) (*model.AccessCode, error) {
	normalized := normalizeCode(code)
	if normalized == "" {
		return nil, apperrors.MissingRequired("code")
	}

	ac, err := s.codeRepo.FindActiveByCode(ctx, normalized, s.clock.Now())
	if err != nil {
		return nil, apperrors.Database(err)
	}
	if ac == nil {
		log.Warn().Str("code", normalized).Msg("invalid or expired access code")
		return nil, apperrors.InvalidAccessCode()
	}
	return ac, nil
}

// GetActive returns the inventory's currently active code, or nil when
// none exists.
func (s *AccessCodeService) GetActive(ctx context.Context, inventoryID string) (*model.AccessCode, error) {
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
	return ac, nil
}

// RevokeForInventory removes the inventory's entire code history and
// all grants obtained through it. Removing nothing is a success.
func (s *AccessCodeService) RevokeForInventory(ctx context.Context, inventoryID string) (int64, error) {
	inv, err := s.invRepo.FindByID(ctx, inventoryID)
	if err != nil {
		return 0, apperrors.Database(err)
	}
	if inv == nil {
		return 0, apperrors.NotFound("Inventory")
	}

	codes, grants, err := s.codeRepo.RevokeByInventoryID(ctx, inventoryID)
	if err != nil {
		return 0, apperrors.Database(err)
	}

	log.Info().
		Str("inventoryId", inventoryID).
		Int64("codes", codes).
		Int64("grants", grants).
		Msg("inventory access revoked")

	return codes, nil
}

// CheckGenerationLimit checks if code generation is allowed for an inventory.
// Limit: 3 times per 5 minutes per inventory.
func (s *AccessCodeService) CheckGenerationLimit(
	ctx context.Context,
	inventoryID string,
) (allowed bool, resetAt time.Time) {
	if s.rateLimiter == nil {
		return true, time.Time{}
	}
	key := fmt.Sprintf("code_gen:%s", inventoryID)
	return s.rateLimiter.CheckLimit(ctx, key, config.CodeGenerationLimit, config.CodeGenerationWindow)
}

func normalizeCode(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}

// generateAccessCode generates an 8-character code
func generateAccessCode() string {
	chars := []byte(accessCodeChars)
	buf := make([]byte, accessCodeLength)
	for i := range buf {
		n, _ := rand.Int(rand.Reader, big.NewInt(int64(len(chars))))
		buf[i] = chars[n.Int64()]
	}
	return string(buf)
}
