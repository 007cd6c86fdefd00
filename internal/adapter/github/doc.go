// Package github deserializes GitHub REST API payloads into the domain
// model. It owns three concerns:
//
//   - Wire types mirroring the issues, timeline, comments, reviews, and
//     commits endpoints (api_types.go)
//   - The timeline event dispatcher: the free-form `event` string selects a
//     domain.EventKind through an exact-match table, then kind-specific
//     post-processing fills derived fields from the raw JSON (timeline.go)
//   - An HTTP client with pagination, retry, and typed error mapping
//     (client.go, error_mapper.go)
//
// Cross-reference resolution during post-processing goes through the
// domain resolver ports, so this package never reaches into a cache or the
// network on its own behalf beyond the client's explicit calls.
package github
