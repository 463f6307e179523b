package service

import (
	"encoding/json"
	"time"

	"resapi/dao/model"
)

type RegisterReq struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=8"`
}

type LoginReq struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// UserUpdateReq is shared by PUT and PATCH: absent fields are left
// untouched. Email is accepted and ignored, it is immutable.
type UserUpdateReq struct {
	FirstName *string `json:"first_name" binding:"omitempty,max=150"`
	LastName  *string `json:"last_name" binding:"omitempty,max=150"`
	Email     *string `json:"email"`
}

// OptionalLimit tells an absent "limit" key apart from an explicit
// null: only null resets a quota to unlimited, a missing key leaves it
// untouched.
type OptionalLimit struct {
	Set   bool
	Value *int64
}

func (o *OptionalLimit) UnmarshalJSON(data []byte) error {
	o.Set = true
	if string(data) == "null" {
		o.Value = nil
		return nil
	}
	var v int64
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	o.Value = &v
	return nil
}

type QuotaUpdateReq struct {
	Limit OptionalLimit `json:"limit"`
}

type ResourceCreateReq struct {
	Name   string `json:"name" binding:"required,max=200"`
	UserID *uint  `json:"user_id"`
}

type RegisterResp struct {
	ID    uint   `json:"id"`
	Email string `json:"email"`
}

type TokenResp struct {
	Access  string `json:"access"`
	Refresh string `json:"refresh"`
}

// UserResp is the staff view of a user record.
type UserResp struct {
	ID        uint   `json:"id"`
	Email     string `json:"email"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	IsStaff   bool   `json:"is_staff"`
}

// MeResp is the self view: the staff flag is neither exposed nor
// mutable here.
type MeResp struct {
	ID        uint   `json:"id"`
	Email     string `json:"email"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
}

type QuotaResp struct {
	UserID uint   `json:"user_id"`
	Limit  *int64 `json:"limit"`
}

type QuotaChangeResp struct {
	ID        uint      `json:"id"`
	UserID    uint      `json:"user_id"`
	OldLimit  *int64    `json:"old_limit"`
	NewLimit  *int64    `json:"new_limit"`
	ChangedBy uint      `json:"changed_by"`
	CreatedAt time.Time `json:"created_at"`
}

type ResourceResp struct {
	ID     uint   `json:"id"`
	UserID uint   `json:"user_id"`
	Name   string `json:"name"`
}

func newUserResp(u *model.User) UserResp {
	return UserResp{
		ID:        u.ID,
		Email:     u.Email,
		FirstName: u.FirstName,
		LastName:  u.LastName,
		IsStaff:   u.IsStaff,
	}
}

func newMeResp(u *model.User) MeResp {
	return MeResp{
		ID:        u.ID,
		Email:     u.Email,
		FirstName: u.FirstName,
		LastName:  u.LastName,
	}
}

func newQuotaResp(q *model.UserQuota) QuotaResp {
	return QuotaResp{
		UserID: q.UserID,
		Limit:  q.Limit,
	}
}

func newQuotaChangeResp(qc *model.QuotaChange) QuotaChangeResp {
	detail := qc.Detail.Data()
	return QuotaChangeResp{
		ID:        qc.ID,
		UserID:    qc.UserID,
		OldLimit:  detail.OldLimit,
		NewLimit:  detail.NewLimit,
		ChangedBy: detail.ChangedBy,
		CreatedAt: qc.CreatedAt,
	}
}

func newResourceResp(r *model.Resource) ResourceResp {
	return ResourceResp{
		ID:     r.ID,
		UserID: r.UserID,
		Name:   r.Name,
	}
}
