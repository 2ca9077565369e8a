// Package proxy is the outward-facing layer: it sits between a
// list-style widget and its behavioral delegate, and keeps the widget's
// content in sync with an external provider.
//
// Three concerns live here:
//
// Delegate interception. Proxy implements the full Delegate interface
// and forwards every callback to an optional fallback implementor;
// Intercept wraps any Delegate with selective overrides. No reflection
// or dynamic dispatch tricks - composition is plain decoration, and an
// unset hook falls through to the next link in the chain.
//
// Provider subscription. Providers announce changes through a Hub of
// explicitly-owned subscriptions: the caller keeps the returned handle
// and unsubscribes on teardown. Handles are UUIDv7 in production and
// fixed sequences in tests.
//
// Binding. Binder wires a provider, the animator state machine and a
// sink together behind one sequential queue, so explicit reloads and
// provider change notifications are mutually ordered and applied
// strictly one at a time.
package proxy
