// Package key parses configuration keys of the form "namespace::group.item".
//
// A key decomposes into three parts:
//   - Namespace: optional prefix before "::" (empty when absent)
//   - Group: the unit a loader loads as a whole, required
//   - Item: optional dotted sub-path into the group's content
//
// Examples:
//
//	"app"                -> {Namespace: "", Group: "app", Item: ""}
//	"app.db.host"        -> {Namespace: "", Group: "app", Item: "db.host"}
//	"billing::rates.eur" -> {Namespace: "billing", Group: "rates", Item: "eur"}
//
// Keys with an empty group (".x", "ns::") or an empty namespace ("::x") are rejected
// with ErrInvalidKey.
package key
