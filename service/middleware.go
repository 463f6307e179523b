package service

import (
	"strings"

	"resapi/authz"
	"resapi/dao/model"
	"resapi/quota"
	"resapi/response"
	"resapi/util"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

const identityKey = "x-identity"

var (
	db       *gorm.DB
	enforcer *quota.Enforcer
	tokens   *util.TokenManager
	hashCost int
)

// Init wires the service handlers to their collaborators. Must be
// called before any route is registered.
func Init(database *gorm.DB, tm *util.TokenManager, bcryptCost int) {
	db = database
	enforcer = quota.NewEnforcer(database)
	tokens = tm
	hashCost = bcryptCost
}

// TokenAuth resolves the bearer token to a caller identity, if any.
// Requests without an Authorization header pass through anonymous;
// role gating is the policy's job, not this middleware's.
func TokenAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if header == "" {
			c.Next()
			return
		}
		token, ok := strings.CutPrefix(header, "Bearer ")
		if !ok {
			response.Unauthorized(c, "Authorization header must use the Bearer scheme.")
			c.Abort()
			return
		}

		msg, err := tokens.CheckToken(token)
		if err != nil {
			response.Unauthorized(c, "Invalid or expired token.")
			c.Abort()
			return
		}

		// The staff flag is read back from the store so a promotion or
		// demotion takes effect before the token expires.
		var user model.User
		if err := db.First(&user, msg.UserID).Error; err != nil {
			response.Unauthorized(c, "Invalid or expired token.")
			c.Abort()
			return
		}

		c.Set(identityKey, &authz.Identity{UserID: user.ID, IsStaff: user.IsStaff})
		c.Next()
	}
}

func identity(c *gin.Context) *authz.Identity {
	v, ok := c.Get(identityKey)
	if !ok {
		return nil
	}
	id, _ := v.(*authz.Identity)
	return id
}

// permit runs the policy decision and writes the denial response when
// the verdict is not Allow. Returns true when the handler may proceed.
func permit(c *gin.Context, action authz.Action, target authz.Target) bool {
	switch authz.Decide(identity(c), action, target) {
	case authz.Allow:
		return true
	case authz.Unauthorized:
		response.Unauthorized(c, "Authentication credentials were not provided.")
	case authz.Deny:
		response.Forbidden(c, "You do not have permission to perform this action.")
	case authz.Hide:
		response.NotFound(c)
	}
	return false
}
