package core

import "rentledger/pkg/domain"

// NewRulesEngine constructs an empty engine.
func NewRulesEngine() *RulesEngine {
	return domain.NewRulesEngine()
}

// NewDefaultRulesEngine builds a rules engine with the built-in lease policy set.
func NewDefaultRulesEngine() *RulesEngine {
	engine := domain.NewRulesEngine()
	engine.Register(NewSingleActiveTenantRule())
	engine.Register(NewUnitOccupancyRule())
	engine.Register(NewInvoicePeriodUniqueRule())
	engine.Register(NewInvoicePaidOneWayRule())
	engine.Register(NewNameUniqueRule())
	return engine
}

func blocking(rule string, entity EntityType, id, msg string) domain.Violation {
	return domain.Violation{
		Rule:     rule,
		Severity: domain.SeverityBlock,
		Message:  msg,
		Entity:   entity,
		EntityID: id,
	}
}
