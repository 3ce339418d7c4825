// Package notify provides end-of-session notifiers.
//
// The engine calls exactly one notifier per session; use Multi to fan out.
package notify
