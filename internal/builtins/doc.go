// Package builtins implements the tools that run in the mcpd process.
//
// Each tool is an explicit descriptor constructor; Register wires them
// all into a tools.Registry during startup, before the HTTP listener
// binds. There are no import-time registration side effects.
//
// Tools:
//
//   - get_locale_date_time: local date/time for an IANA timezone or a
//     known city alias.
//   - get_wikipedia_pages_json: plain-text article extracts from the
//     Wikipedia API, returning the query.pages payload.
package builtins
