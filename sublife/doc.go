// Package sublife contains the composite subscription type shared by
// every observer in this module.
//
// A [Subscription] represents "the owner of this handle is still
// interested". It composes: other subscriptions, or arbitrary teardown
// actions, can be attached as children so that a single Unsubscribe
// call tears down an entire tree at once.
package sublife
