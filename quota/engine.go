// Package quota keeps the invariant "resource count <= limit" true
// under concurrent mutation. All limit changes and resource creations
// for one owner go through the same per-owner exclusive lock, so a
// check-then-write can never interleave with another one for that
// owner. Different owners never contend.
package quota

import (
	"context"
	"errors"
	"fmt"

	"resapi/dao/model"
	"resapi/logutils"

	"gorm.io/datatypes"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Enforcer serializes quota checks per owner. It is policy-agnostic:
// admin gating happens in the HTTP layer, the enforcer trusts its
// caller.
type Enforcer struct {
	db    *gorm.DB
	locks *keyMutex
}

func NewEnforcer(db *gorm.DB) *Enforcer {
	return &Enforcer{
		db:    db,
		locks: newKeyMutex(),
	}
}

// locking adds a row lock on dialects that support it. sqlite (used in
// tests) has no FOR UPDATE; there the per-owner keyMutex alone
// serializes the check-then-write.
func (e *Enforcer) locking(tx *gorm.DB) *gorm.DB {
	if e.db.Dialector.Name() == "postgres" {
		return tx.Clauses(clause.Locking{Strength: "UPDATE"})
	}
	return tx
}

// SetLimit changes the owner's limit, rejecting any value below the
// current resource count. nil means unlimited. actorID is recorded in
// the audit trail.
func (e *Enforcer) SetLimit(ctx context.Context, userID uint, newLimit *int64, actorID uint) (*model.UserQuota, error) {
	e.locks.Lock(userID)
	defer e.locks.Unlock(userID)

	var userQuota model.UserQuota
	err := e.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := e.locking(tx).Where("user_id = ?", userID).First(&userQuota).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return model.ErrNotFound
			}
			return err
		}

		var count int64
		if err := tx.Model(&model.Resource{}).Where("user_id = ?", userID).Count(&count).Error; err != nil {
			return err
		}
		if newLimit != nil && count > *newLimit {
			return model.NewValidationError("limit",
				fmt.Sprintf("cannot be less than current resource count; current count is %d", count))
		}

		oldLimit := userQuota.Limit
		if err := tx.Model(&model.UserQuota{}).Where("user_id = ?", userID).
			Update("limit", newLimit).Error; err != nil {
			return err
		}
		userQuota.Limit = newLimit

		change := model.QuotaChange{
			UserID: userID,
			Detail: datatypes.NewJSONType(model.QuotaChangeDetail{
				OldLimit:  oldLimit,
				NewLimit:  newLimit,
				ChangedBy: actorID,
			}),
		}
		return tx.Create(&change).Error
	})
	if err != nil {
		return nil, err
	}

	logutils.Log.WithFields(logutils.Fields{
		"user":  userID,
		"actor": actorID,
	}).Info("quota limit updated")
	return &userQuota, nil
}

// CreateResource inserts a resource for ownerID unless the owner's
// limit is already reached. The check and the insert commit together
// or not at all.
func (e *Enforcer) CreateResource(ctx context.Context, ownerID uint, name string) (*model.Resource, error) {
	e.locks.Lock(ownerID)
	defer e.locks.Unlock(ownerID)

	var resource *model.Resource
	err := e.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var userQuota model.UserQuota
		if err := e.locking(tx).Where("user_id = ?", ownerID).First(&userQuota).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return model.ErrNotFound
			}
			return err
		}

		if userQuota.Limit != nil {
			var count int64
			if err := tx.Model(&model.Resource{}).Where("user_id = ?", ownerID).Count(&count).Error; err != nil {
				return err
			}
			if count >= *userQuota.Limit {
				return &model.QuotaExceededError{Limit: *userQuota.Limit}
			}
		}

		resource = &model.Resource{Name: name, UserID: ownerID}
		return tx.Create(resource).Error
	})
	if err != nil {
		return nil, err
	}
	return resource, nil
}
