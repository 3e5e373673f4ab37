// Package convo encodes conversations as a flat, delimited text buffer.
//
// Buffer model:
//   - A delimiter line "# <role> ######…" of exactly Format.Width characters opens a turn.
//   - Every other line belongs to the current turn, joined with "\n".
//   - A buffer that does not start with a delimiter opens with an implicit "user" turn.
//
// The buffer is the only persisted form of a conversation; tool-call metadata
// travels inside "function_call" turns as a JSON Invocation.
package convo
