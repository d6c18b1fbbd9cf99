// Package models defines the domain records of the trade-fair project manager.
//
// # Hierarchy
//
// The data is a three-level tree:
//   - Customer: a client of the trade-fair construction business
//   - Project: one trade-fair engagement, optionally linked to a Customer
//   - Task: a unit of work that always belongs to exactly one Project
//
// Deleting a Customer removes its Projects, and deleting a Project removes its
// Tasks. IDs are assigned by the store and never reused.
//
// # Nullable fields
//
// Every column except the id and a few required ones may be absent. Such
// fields are pointers so that they serialise as JSON null, which is what the
// frontend expects for "not set".
//
// # Field sets
//
// Create and update requests carry a Fields map keyed by JSON field name.
// Which keys are honoured is decided by the store, not by the models.
package models
