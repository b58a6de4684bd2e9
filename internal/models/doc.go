// Package models defines the core domain models for Splitr.
//
// # Models
//
//   - User: registered account; the acting identity for every operation
//   - Group: named set of members with roles, owner of group expenses
//   - Expense: a paid amount split among participants
//   - Split: one participant's share of an expense
//   - Settlement: a direct payment between two users, optionally tied to
//     the expenses it covers
//
// # Design Principles
//
// 1. **Records are immutable**: expenses and settlements are never edited
// after creation; the only mutation is the deletion cascade trimming a
// settlement's related expense ids.
// 2. **Avoid circular references**: models reference each other by ID
// strings, never by pointer.
// 3. **Derived data is not stored**: balances and pairwise ledgers are
// recomputed from the raw records on every query (see internal/calculator).
package models
