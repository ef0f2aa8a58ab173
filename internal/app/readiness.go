package app

import (
	"context"
	"fmt"
)

// Pinger is the minimal interface for a database pool capable of Ping.
type Pinger interface{ Ping(ctx context.Context) error }

// BrokerPinger is the minimal interface for an event broker client.
type BrokerPinger interface{ Ping(ctx context.Context) error }

// BuildReadinessChecks returns the readiness checks for the database and the
// event broker. A nil broker yields a passing check: notifications are
// optional and must not gate intake.
func BuildReadinessChecks(pool Pinger, broker BrokerPinger) (
	func(ctx context.Context) error,
	func(ctx context.Context) error,
) {
	dbCheck := func(ctx context.Context) error {
		if pool == nil {
			return fmt.Errorf("db not configured")
		}
		return pool.Ping(ctx)
	}
	brokerCheck := func(ctx context.Context) error {
		if broker == nil {
			return nil
		}
		return broker.Ping(ctx)
	}
	return dbCheck, brokerCheck
}
