// Package logging builds the structured logger shared by the service, the repository
// and the fx event log. Output is JSON by default, or logfmt-style text.
package logging
