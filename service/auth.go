package service

import (
	"context"

	"resapi/authz"
	"resapi/dao/model"
	"resapi/logutils"
	"resapi/response"
	"resapi/util"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// createUserWithQuota persists a user together with its quota record.
// The quota row exists from the instant the user does; there is no
// window in which a resource creation could find it missing.
func createUserWithQuota(ctx context.Context, email, passwordHash string, isStaff bool) (*model.User, error) {
	user := &model.User{
		Email:        email,
		PasswordHash: passwordHash,
		IsStaff:      isStaff,
	}
	err := db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var count int64
		if err := tx.Model(&model.User{}).Where("email = ?", email).Count(&count).Error; err != nil {
			return err
		}
		if count > 0 {
			return model.NewValidationError("email", "User with this email already exists.")
		}
		if err := tx.Create(user).Error; err != nil {
			return err
		}
		return tx.Create(&model.UserQuota{UserID: user.ID}).Error
	})
	if err != nil {
		return nil, err
	}
	return user, nil
}

// Register creates an account for an unauthenticated caller.
func Register(c *gin.Context) {
	if !permit(c, authz.ActionRegister, authz.Target{}) {
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

	logutils.Log.WithField("user", user.ID).Info("user registered")
	response.Created(c, RegisterResp{ID: user.ID, Email: user.Email})
}

// Login exchanges credentials for an access/refresh token pair.
func Login(c *gin.Context) {
	var req LoginReq
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BindError(c, err)
		return
	}

	var user model.User
	if err := db.Where("email = ?", req.Email).First(&user).Error; err != nil {
		response.Unauthorized(c, "No active account found with the given credentials.")
		return
	}
	if !util.CheckPassword(user.PasswordHash, req.Password) {
		response.Unauthorized(c, "No active account found with the given credentials.")
		return
	}

	access, refresh, err := tokens.CreateTokens(&util.JWTMessage{
		UserID:  user.ID,
		Email:   user.Email,
		IsStaff: user.IsStaff,
	})
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, TokenResp{Access: access, Refresh: refresh})
}

func RegisterAuth(g *gin.RouterGroup) {
	g.POST("/register", Register)
	g.POST("/login", Login)
}
