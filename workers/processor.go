// Package workers contains the background processors which drain the
// request queues stored in the database.
package workers

import (
	"context"
	"time"

	"gorm.io/gorm"
)

// maxAttempts is the number of times a request is tried before it is
// left in the queue for inspection.
const maxAttempts = 3

// process makes one pass through the requests matching the scope, calling fn for each one.
// If fn returns an error, the request is updated with the error and the pass continues.
// If fn returns nil, the request is deleted.
func process[T any](db *gorm.DB, scope func(*gorm.DB) *gorm.DB, fn func(*gorm.DB, T) error) error {
	var requests []T
	return db.Scopes(scope).FindInBatches(&requests, 100, func(db *gorm.DB, batch int) error {
		return forEach(requests, func(request T) error {
			start := time.Now()
			if err := fn(db, request); err != nil {
				return db.Model(request).UpdateColumns(map[string]interface{}{
					"attempts":     gorm.Expr("attempts + 1"),
					"last_attempt": start,
					"last_result":  err.Error(),
				}).Error
			}
			return db.Delete(request).Error
		})
	}).Error
}

// pending selects requests which have not yet used up their attempts.
func pending(db *gorm.DB) *gorm.DB {
	return db.Where("attempts < ?", maxAttempts)
}

// poll calls pass, then waits interval, until ctx is cancelled or pass fails.
func poll(ctx context.Context, interval time.Duration, pass func() error) error {
	for {
		if err := pass(); err != nil {
			return err
		}
		select {
		case <-ctx.Done():
			return nil
		case <-time.After(interval):
			// continue
		}
	}
}

func forEach[T any](a []T, fn func(T) error) error {
	for _, v := range a {
		if err := fn(v); err != nil {
			return err
		}
	}
	return nil
}
