// Package edge maps relational row change events to rank-engine edge
// mutations.
//
// The mapping is the contract that keeps the derived graph consistent
// with the relational system of record:
//
//   - A vote row (subject, object, amount) is one directed edge with
//     weight = amount, in the namespace of its vote table.
//   - An authored-content row (beacon or comment) is a fixed pair of
//     ownership edges: (content → author) and (author → content), with
//     subtype-specific weights, created and removed as a unit.
//   - Identity rows map to no edges of their own.
//
// Every function in this package is pure: given a change event it
// returns the ordered adapter operations to apply, and nothing else.
// Routing, transactions, and engine calls live in internal/router.
package edge
