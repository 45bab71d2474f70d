package services

import (
	"time"

	portsrepo "github.com/SscSPs/finance_bot/internal/core/ports/repositories"
	portssvc "github.com/SscSPs/finance_bot/internal/core/ports/services"
	"github.com/SscSPs/finance_bot/internal/events"
	"github.com/SscSPs/finance_bot/internal/platform/config"
)

// NewServiceContainer creates a new service container with properly initialized dependencies
func NewServiceContainer(cfg *config.Config, loc *time.Location, repos portsrepo.RepositoryProvider, publisher events.Publisher) *portssvc.ServiceContainer {
	return &portssvc.ServiceContainer{
		Ledger: NewLedgerService(
			repos.TransactionRepo,
			WithReferenceLocation(loc),
			WithDayStartHour(cfg.DayStartHour),
			WithNonPositiveAmountCheck(cfg.RejectNonPositiveAmount),
			WithEventPublisher(publisher),
		),
	}
}
