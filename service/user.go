package service

import (
	"errors"
	"strconv"

	"resapi/authz"
	"resapi/dao/model"
	"resapi/logutils"
	"resapi/response"
	"resapi/util"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

func userIDParam(c *gin.Context) (uint, bool) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		response.NotFound(c)
		return 0, false
	}
	return uint(id), true
}

func ListUsers(c *gin.Context) {
	if !permit(c, authz.ActionUserManage, authz.Target{}) {
		return
	}
	var users []model.User
	if err := db.WithContext(c.Request.Context()).Order("id").Find(&users).Error; err != nil {
		response.Error(c, err)
		return
	}
	resp := make([]UserResp, 0, len(users))
	for i := range users {
		resp = append(resp, newUserResp(&users[i]))
	}
	response.Success(c, resp)
}

// CreateUser is the admin variant of registration: same input, same
// envelope, but available to staff only.
func CreateUser(c *gin.Context) {
	if !permit(c, authz.ActionUserManage, authz.Target{}) {
		return
	}
	var req RegisterReq
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BindError(c, err)
		return
	}
	hash, err := util.HashPassword(req.Password, hashCost)
	if err != nil {
		response.Error(c, err)
		return
	}
	user, err := createUserWithQuota(c.Request.Context(), req.Email, hash, false)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, RegisterResp{ID: user.ID, Email: user.Email})
}

func GetUser(c *gin.Context) {
	if !permit(c, authz.ActionUserManage, authz.Target{}) {
		return
	}
	id, ok := userIDParam(c)
	if !ok {
		return
	}
	var user model.User
	if err := db.WithContext(c.Request.Context()).First(&user, id).Error; err != nil {
		response.NotFound(c)
		return
	}
	response.Success(c, newUserResp(&user))
}

func applyUserUpdate(user *model.User, req *UserUpdateReq) {
	// req.Email is deliberately ignored, the login identity never changes
	if req.FirstName != nil {
		user.FirstName = *req.FirstName
	}
	if req.LastName != nil {
		user.LastName = *req.LastName
	}
}

func UpdateUser(c *gin.Context) {
	if !permit(c, authz.ActionUserManage, authz.Target{}) {
		return
	}
	id, ok := userIDParam(c)
	if !ok {
		return
	}
	var user model.User
	if err := db.WithContext(c.Request.Context()).First(&user, id).Error; err != nil {
		response.NotFound(c)
		return
	}
	var req UserUpdateReq
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BindError(c, err)
		return
	}
	applyUserUpdate(&user, &req)
	if err := db.WithContext(c.Request.Context()).Save(&user).Error; err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, newUserResp(&user))
}

// DeleteUser removes a user and its quota record. Deletion is refused
// while resources still reference the user, cascading would silently
// destroy owned data.
func DeleteUser(c *gin.Context) {
	if !permit(c, authz.ActionUserManage, authz.Target{}) {
		return
	}
	id, ok := userIDParam(c)
	if !ok {
		return
	}
	ctx := c.Request.Context()
	var user model.User
	if err := db.WithContext(ctx).First(&user, id).Error; err != nil {
		response.NotFound(c)
		return
	}

	err := db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var count int64
		if err := tx.Model(&model.Resource{}).Where("user_id = ?", id).Count(&count).Error; err != nil {
			return err
		}
		if count > 0 {
			return model.NewValidationError("detail",
				"Cannot delete the user because other objects is referenced to it.")
		}
		// the row goes away for real: a lingering soft-deleted user
		// would keep holding the unique email and block re-registration
		if err := tx.Unscoped().Where("user_id = ?", id).Delete(&model.Resource{}).Error; err != nil {
			return err
		}
		if err := tx.Where("user_id = ?", id).Delete(&model.UserQuota{}).Error; err != nil {
			return err
		}
		if err := tx.Where("user_id = ?", id).Delete(&model.QuotaChange{}).Error; err != nil {
			return err
		}
		return tx.Unscoped().Delete(&model.User{}, id).Error
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	logutils.Log.WithField("user", id).Info("user deleted")
	response.NoContent(c)
}

// loadSelf fetches the caller's own row. A miss means the account was
// removed after the token check, which reads as a stale credential,
// not a server fault.
func loadSelf(c *gin.Context) (*model.User, bool) {
	var user model.User
	if err := db.WithContext(c.Request.Context()).First(&user, identity(c).UserID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			response.Unauthorized(c, "Invalid or expired token.")
		} else {
			response.Error(c, err)
		}
		return nil, false
	}
	return &user, true
}

func GetMe(c *gin.Context) {
	if !permit(c, authz.ActionSelfProfile, authz.Target{}) {
		return
	}
	user, ok := loadSelf(c)
	if !ok {
		return
	}
	response.Success(c, newMeResp(user))
}

func UpdateMe(c *gin.Context) {
	if !permit(c, authz.ActionSelfProfile, authz.Target{}) {
		return
	}
	user, ok := loadSelf(c)
	if !ok {
		return
	}
	var req UserUpdateReq
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BindError(c, err)
		return
	}
	applyUserUpdate(user, &req)
	if err := db.WithContext(c.Request.Context()).Save(user).Error; err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, newMeResp(user))
}

// meOr routes /users/me through the self-service handler; everything
// else under /users/:id is admin territory. gin's tree cannot hold the
// static "me" segment next to the :id wildcard, so the split happens
// on the param value.
func meOr(me, other gin.HandlerFunc) gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.Param("id") == "me" {
			me(c)
			return
		}
		other(c)
	}
}

func RegisterUsers(g *gin.RouterGroup) {
	g.GET("/users", ListUsers)
	g.POST("/users", CreateUser)

	g.GET("/users/:id", meOr(GetMe, GetUser))
	g.PUT("/users/:id", meOr(UpdateMe, UpdateUser))
	g.PATCH("/users/:id", meOr(UpdateMe, UpdateUser))
	g.DELETE("/users/:id", meOr(methodNotAllowed, DeleteUser))
}
