package middlewares

import (
	"log"
	"os"
	"strconv"
	"strings"

	"kiteops/src/db"
	"kiteops/src/lib"
	"kiteops/src/models"
	"kiteops/src/types"
	"kiteops/src/utils"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v4"
)

var jwtKey = []byte(os.Getenv("JWT_SECRET"))

var roleCache *lib.RoleCache

// UseRoleCache injects the process-wide role-permission cache. Passed in from
// main rather than constructed here so the TTL and clock stay configurable.
func UseRoleCache(c *lib.RoleCache) {
	roleCache = c
}

var rolePermissions = map[string][]string{
	types.ROLE_ADMIN:      {"group_bookings:*", "wallets:*", "users:*"},
	types.ROLE_MANAGER:    {"group_bookings:*", "wallets:read"},
	types.ROLE_INSTRUCTOR: {"group_bookings:read"},
	types.ROLE_STUDENT:    {"group_bookings:own", "wallets:own"},
	types.ROLE_OUTSIDER:   {"group_bookings:own"},
}

func permissionsFor(ctx *gin.Context, role string) []string {
	if roleCache != nil {
		perms, ok, err := roleCache.Get(ctx, role)
		if err != nil {
			log.Printf("Error reading role cache: %s\n", err.Error())
		} else if ok {
			return perms
		}
	}
	perms := rolePermissions[role]
	if roleCache != nil {
		if err := roleCache.Set(ctx, role, perms); err != nil {
			log.Printf("Error priming role cache: %s\n", err.Error())
		}
	}
	return perms
}

func AuthMiddleware(ctx *gin.Context) {
	bearerToken := ctx.Request.Header.Get("Authorization")
	if !strings.HasPrefix(bearerToken, "Bearer") {
		ctx.AbortWithStatus(401)
		return
	}
	reqToken := strings.Split(bearerToken, " ")[1]
	if reqToken == "" {
		ctx.AbortWithStatus(401)
		return
	}
	claims := &types.Claims{}
	tkn, err := jwt.ParseWithClaims(reqToken, claims, func(t *jwt.Token) (any, error) {
		return jwtKey, nil
	})
	if err != nil {
		log.Printf("token error: %s\n", err.Error())
		if err == jwt.ErrSignatureInvalid || err == jwt.ErrTokenMalformed {
			ctx.AbortWithStatus(401)
			return
		}
		ctx.AbortWithError(401, err)
		return
	}
	if !tkn.Valid {
		ctx.AbortWithStatus(401)
		return
	}

	db := db.GetDb()
	var user models.User
	uid, err := strconv.Atoi(claims.Subject)
	if err != nil {
		log.Println("error parsing claims:", err.Error())
		ctx.AbortWithStatus(401)
		return
	}
	db.Model(&models.User{}).Where(&models.User{ID: uint(uid)}).Find(&user)

	if uint(uid) != user.ID || user.ID < 1 {
		ctx.AbortWithStatus(401)
		return
	}

	// Roles are canonicalized exactly once, here. Handlers and the service
	// layer only ever see the normalized form.
	role := utils.NormalizeRole(user.Role)
	ctx.Set("email", user.Email)
	ctx.Set("id", user.ID)
	ctx.Set("role", role)
	ctx.Set("perms", permissionsFor(ctx, role))
}

func SecureHeaders(ctx *gin.Context) {
	ctx.Header("X-Content-Type-Options", "nosniff")
	ctx.Header("X-Frame-Options", "DENY")
	ctx.Header("Referrer-Policy", "strict-origin-when-cross-origin")
	ctx.Next()
}
