// Package redis implements the store and broker adapters: the shared
// command/subscriber connection pair, the permission-record store, the
// balance-check job queue producer, and the sentiment batch subscriber.
package redis
