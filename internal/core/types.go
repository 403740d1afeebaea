package core

import "rentledger/pkg/domain"

type (
	EntityType         = domain.EntityType
	Severity           = domain.Severity
	Base               = domain.Base
	Building           = domain.Building
	BuildingServices   = domain.BuildingServices
	Unit               = domain.Unit
	Tenant             = domain.Tenant
	Invoice            = domain.Invoice
	LineItems          = domain.LineItems
	Staff              = domain.Staff
	Change             = domain.Change
	Action             = domain.Action
	Violation          = domain.Violation
	Result             = domain.Result
	RuleViolationError = domain.RuleViolationError
	RulesEngine        = domain.RulesEngine
	Transaction        = domain.Transaction
	TransactionView    = domain.TransactionView
	PersistentStore    = domain.PersistentStore
	ErrNotFound        = domain.ErrNotFound
)

const (
	EntityBuilding = domain.EntityBuilding
	EntityUnit     = domain.EntityUnit
	EntityTenant   = domain.EntityTenant
	EntityInvoice  = domain.EntityInvoice
	EntityStaff    = domain.EntityStaff
)

const (
	SeverityBlock = domain.SeverityBlock
	SeverityWarn  = domain.SeverityWarn
	SeverityLog   = domain.SeverityLog
)

const (
	ActionCreate = domain.ActionCreate
	ActionUpdate = domain.ActionUpdate
	ActionDelete = domain.ActionDelete
)
