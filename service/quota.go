package service

import (
	"resapi/authz"
	"resapi/dao/model"
	"resapi/response"

	"github.com/gin-gonic/gin"
)

func ListQuotas(c *gin.Context) {
	if !permit(c, authz.ActionQuotaRead, authz.Target{}) {
		return
	}
	q := db.WithContext(c.Request.Context()).Order("user_id")
	if userID := c.Query("user_id"); userID != "" {
		q = q.Where("user_id = ?", userID)
	}
	var quotas []model.UserQuota
	if err := q.Find(&quotas).Error; err != nil {
		response.Error(c, err)
		return
	}
	resp := make([]QuotaResp, 0, len(quotas))
	for i := range quotas {
		resp = append(resp, newQuotaResp(&quotas[i]))
	}
	response.Success(c, resp)
}

func GetQuota(c *gin.Context) {
	if !permit(c, authz.ActionQuotaRead, authz.Target{}) {
		return
	}
	id, ok := userIDParam(c)
	if !ok {
		return
	}
	var userQuota model.UserQuota
	if err := db.WithContext(c.Request.Context()).Where("user_id = ?", id).First(&userQuota).Error; err != nil {
		response.NotFound(c)
		return
	}
	response.Success(c, newQuotaResp(&userQuota))
}

// UpdateQuota changes a user's limit through the enforcement engine,
// which owns the count-vs-limit check.
func UpdateQuota(c *gin.Context) {
	if !permit(c, authz.ActionQuotaWrite, authz.Target{}) {
		return
	}
	id, ok := userIDParam(c)
	if !ok {
		return
	}
	var req QuotaUpdateReq
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BindError(c, err)
		return
	}
	if !req.Limit.Set {
		// no "limit" key in the body: nothing to change
		var userQuota model.UserQuota
		if err := db.WithContext(c.Request.Context()).Where("user_id = ?", id).First(&userQuota).Error; err != nil {
			response.NotFound(c)
			return
		}
		response.Success(c, newQuotaResp(&userQuota))
		return
	}
	if req.Limit.Value != nil && *req.Limit.Value < 0 {
		response.Error(c, model.NewValidationError("limit",
			"Ensure this value is greater than or equal to 0."))
		return
	}

	userQuota, err := enforcer.SetLimit(c.Request.Context(), id, req.Limit.Value, identity(c).UserID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, newQuotaResp(userQuota))
}

// ListQuotaEvents returns the audit trail of limit changes for a user,
// newest first.
func ListQuotaEvents(c *gin.Context) {
	if !permit(c, authz.ActionQuotaRead, authz.Target{}) {
		return
	}
	id, ok := userIDParam(c)
	if !ok {
		return
	}
	var changes []model.QuotaChange
	if err := db.WithContext(c.Request.Context()).
		Where("user_id = ?", id).Order("id desc").Find(&changes).Error; err != nil {
		response.Error(c, err)
		return
	}
	resp := make([]QuotaChangeResp, 0, len(changes))
	for i := range changes {
		resp = append(resp, newQuotaChangeResp(&changes[i]))
	}
	response.Success(c, resp)
}

func RegisterQuotas(g *gin.RouterGroup) {
	g.GET("/quotas", ListQuotas)
	g.GET("/quotas/:id", GetQuota)
	g.PUT("/quotas/:id", UpdateQuota)
	g.PATCH("/quotas/:id", UpdateQuota)
	g.GET("/quotas/:id/events", ListQuotaEvents)
}
