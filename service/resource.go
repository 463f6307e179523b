package service

import (
	"errors"

	"resapi/authz"
	"resapi/dao/model"
	"resapi/logutils"
	"resapi/response"

	"github.com/gin-gonic/gin"
)

func ListResources(c *gin.Context) {
	if !permit(c, authz.ActionResourceList, authz.Target{}) {
		return
	}
	q := db.WithContext(c.Request.Context()).Order("id")

	// non-staff callers only ever see their own rows; the user_id
	// filter applies on top of that narrowing, same as for staff
	if ownerID, restricted := authz.ListScope(identity(c)); restricted {
		q = q.Where("user_id = ?", ownerID)
	}
	if userID := c.Query("user_id"); userID != "" {
		q = q.Where("user_id = ?", userID)
	}

	var resources []model.Resource
	if err := q.Find(&resources).Error; err != nil {
		response.Error(c, err)
		return
	}
	resp := make([]ResourceResp, 0, len(resources))
	for i := range resources {
		resp = append(resp, newResourceResp(&resources[i]))
	}
	response.Success(c, resp)
}

// CreateResource goes through the quota engine: the count check and
// the insert commit atomically under the owner's lock.
func CreateResource(c *gin.Context) {
	if !permit(c, authz.ActionResourceCreate, authz.Target{}) {
		return
	}
	var req ResourceCreateReq
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BindError(c, err)
		return
	}

	caller := identity(c)
	ownerID := authz.CreateOwner(caller, req.UserID)
	if ownerID != caller.UserID {
		var count int64
		if err := db.Model(&model.User{}).Where("id = ?", ownerID).Count(&count).Error; err != nil {
			response.Error(c, err)
			return
		}
		if count == 0 {
			response.Error(c, model.NewValidationError("user_id", "Invalid user."))
			return
		}
	}

	resource, err := enforcer.CreateResource(c.Request.Context(), ownerID, req.Name)
	if err != nil {
		var quotaErr *model.QuotaExceededError
		if errors.As(err, &quotaErr) {
			logutils.Log.WithFields(logutils.Fields{
				"owner": ownerID,
				"limit": quotaErr.Limit,
			}).Info("resource creation denied")
		}
		response.Error(c, err)
		return
	}
	response.Created(c, newResourceResp(resource))
}

// loadResource fetches a resource and applies the visibility verdict:
// rows owned by someone else read as absent for non-staff callers.
// Unauthenticated callers are rejected before the lookup so they learn
// nothing, not even a not-found.
func loadResource(c *gin.Context, action authz.Action) (*model.Resource, bool) {
	if identity(c) == nil {
		permit(c, action, authz.Target{})
		return nil, false
	}
	id, ok := userIDParam(c)
	if !ok {
		return nil, false
	}
	var resource model.Resource
	if err := db.WithContext(c.Request.Context()).First(&resource, id).Error; err != nil {
		response.NotFound(c)
		return nil, false
	}
	if !permit(c, action, authz.Target{OwnerID: resource.UserID}) {
		return nil, false
	}
	return &resource, true
}

func GetResource(c *gin.Context) {
	resource, ok := loadResource(c, authz.ActionResourceRead)
	if !ok {
		return
	}
	response.Success(c, newResourceResp(resource))
}

func DeleteResource(c *gin.Context) {
	resource, ok := loadResource(c, authz.ActionResourceDelete)
	if !ok {
		return
	}
	if err := db.WithContext(c.Request.Context()).Delete(&model.Resource{}, resource.ID).Error; err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}

func RegisterResources(g *gin.RouterGroup) {
	g.GET("/resources", ListResources)
	g.POST("/resources", CreateResource)
	g.GET("/resources/:id", GetResource)
	g.DELETE("/resources/:id", DeleteResource)
}
