// Package database holds the connectors for the optional backing stores.
package database

import (
	"context"
	"log"
	"time"

	"github.com/cenkalti/backoff/v4"
)

// ConnectWithRetry runs connect with exponential backoff, giving up after maxRetries extra attempts.
func ConnectWithRetry(ctx context.Context, name string, maxRetries uint64, connect func() error) error {
	bo := backoff.NewExponentialBackOff()
	bo.InitialInterval = 500 * time.Millisecond
	bo.MaxInterval = 5 * time.Second

	attempt := 0
	return backoff.Retry(func() error {
		attempt++
		err := connect()
		if err != nil {
			log.Printf("%s connection attempt %d failed: %v", name, attempt, err)
		}
		return err
	}, backoff.WithContext(backoff.WithMaxRetries(bo, maxRetries), ctx))
}
