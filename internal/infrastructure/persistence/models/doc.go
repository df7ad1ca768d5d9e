// Package models contains GORM-specific persistence models that map to database tables.
// These models are separate from domain entities to keep the domain layer free of ORM
// concerns; each model carries ToDomain/FromDomain mappers used by the repositories.
//
// Structure:
// - base.go: shared fields and the model registry
// - report.go: reports, name sequences, audit jobs and lines, report messages
// - seller.go: sellers, their marketplaces and instances
// - stock.go: products, listings, warehouses, moves, adjustments, reason codes
// - sales.go: partners, carriers, sales orders and lines
package models
