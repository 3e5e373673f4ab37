// Package chat is the provider-neutral side of the remote chat service:
// messages, requests, responses, and the normalizer between buffer turns
// and service messages.
//
// Flow:
//
//	user -> assistant(call) -> function(result) -> assistant(text)
package chat
