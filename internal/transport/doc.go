// Package transport selects the transport requests are sent through.
//
// An Adapter is chosen once per client with Resolve. The process-wide
// default adapter wraps a pooled go-cleanhttp client and is created on
// first use.
package transport
