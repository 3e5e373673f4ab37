// Package runner drives one conversation round against the chat service and
// gates every tool call behind human approval.
//
// Invariant:
//   - an assistant call and its function result stay adjacent in the history;
//     a result is appended before the next submission.
//
// Flow:
//
//	AwaitingModel -> (tool call) -> AwaitingApproval -> (result) -> AwaitingModel
//	AwaitingModel -> (answer) -> Done
package runner
