package service

import (
	"github.com/strikelab/cyberlab/config"
	"github.com/strikelab/cyberlab/internal/dto"
)

// EntitlementChecker answers whether a user may access premium labs.
// Account and subscription management live outside this engine; the engine
// only consults the verdict.
type EntitlementChecker interface {
	HasPremiumAccess(userID uint) (bool, error)
}

// CatalogCache caches the module listing, which is read-mostly and safe to
// serve slightly stale. Implementations swallow their own backend errors
// and degrade to a miss. A nil CatalogCache disables caching.
type CatalogCache interface {
	GetModules() ([]dto.ModuleSummaryDTO, bool)
	SetModules(modules []dto.ModuleSummaryDTO)
	InvalidateModules()
}

type staticEntitlements struct {
	openAccess bool
}

// NewStaticEntitlements is the stand-in entitlement source: premium labs
// are closed to everyone unless PREMIUM_OPEN_ACCESS is set. Replaced by the
// account system's checker when that integration lands.
func NewStaticEntitlements(cfg *config.Config) EntitlementChecker {
	return &staticEntitlements{openAccess: cfg.Learning.PremiumOpenAccess}
}

func (e *staticEntitlements) HasPremiumAccess(userID uint) (bool, error) {
	return e.openAccess, nil
}
