// Package models defines the core domain models for groupledger.
//
// # Models
//
//   - Group: an owner and the members who split expenses with them
//   - Member: a user's cached position inside one group
//   - Item: a shared expense, split equally among its assigned members
//   - ItemAssignment: one member's stored share of an item
//   - Payment: money a member handed to the group owner
//   - GroupSnapshot: everything above for one group, loaded and saved together
//
// Users are identified by opaque id strings issued by whatever authenticates
// them; there is no user table.
//
// # Design Principles
//
// 1. **Decimal money**: every amount is a shopspring decimal kept at cent precision
// 2. **Avoid circular references**: Use ID strings instead of pointers for relationships
// 3. **Cached, not authoritative**: Member.AmountOwed and Group.Total can always be
// rebuilt from items and payments by the calculator
package models
