// Package poller drives a source on a schedule and hands each message to a handler.
//
// A Poller is the downstream half of the delivery contract. It receives messages
// from a source, runs the handler for each one on an ants worker pool, retries
// failed handlers with exponential backoff, and then settles the message: OnSend
// after success, OnFailure after the last failed attempt. Either way the entry's
// lock is released first, so a returned entry is claimable by the next receive.
//
// Run polls on a fixed interval until its context is canceled. Drain delivers
// everything currently eligible and returns.
package poller
