package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt"

	"social-hub/domain/dto"
	"social-hub/domain/model"
	"social-hub/infrastructure/configuration"
)

// Auth verifies the bearer credential and stores the resolved user id in the
// gin context. No credential at all yields "Authentication Required"; a
// credential that fails verification yields "Unauthorized".
func Auth() gin.HandlerFunc {
	return func(ctx *gin.Context) {
		res := dto.Res{ResponseCode: "401"}

		authorization := ctx.Request.Header.Get("Authorization")
		if authorization == "" {
			res.ResponseMessage = "Authentication Required"
			ctx.AbortWithStatusJSON(http.StatusUnauthorized, res)
			return
		}
		parts := strings.Split(authorization, "Bearer ")
		if len(parts) != 2 {
			res.ResponseMessage = "Unauthorized"
			ctx.AbortWithStatusJSON(http.StatusUnauthorized, res)
			return
		}

		userClaims, token, err := getClaim(parts[1], configuration.C.App.SecretKey)
		if err != nil || token == nil || !token.Valid {
			res.ResponseMessage = reason(err)
			ctx.AbortWithStatusJSON(http.StatusUnauthorized, res)
			return
		}

		ctx.Set("user_id", userClaims.Issuer)
		ctx.Set("user_name", userClaims.UserName)
		ctx.Next()
	}
}

func reason(err error) string {
	ve, ok := err.(*jwt.ValidationError)
	if !ok {
		return "Unauthorized"
	}
	if ve.Errors&jwt.ValidationErrorMalformed != 0 {
		return "That's not even a token"
	}
	if ve.Errors&(jwt.ValidationErrorExpired|jwt.ValidationErrorNotValidYet) != 0 {
		return "Timing is everything"
	}
	return "Unauthorized"
}

func getClaim(tokenString, secretKey string) (model.UserClaims, *jwt.Token, error) {
	var userClaims model.UserClaims
	token, err := jwt.ParseWithClaims(
		tokenString,
		&userClaims,
		func(token *jwt.Token) (interface{}, error) {
			return []byte(secretKey), nil
		},
	)
	return userClaims, token, err
}

// OptionalAuth resolves the user id when a credential is present but lets
// the request through either way. The OAuth callback arrives as a bare
// browser redirect, so it cannot require a bearer header.
func OptionalAuth() gin.HandlerFunc {
	return func(ctx *gin.Context) {
		authorization := ctx.Request.Header.Get("Authorization")
		if authorization == "" {
			ctx.Next()
			return
		}
		parts := strings.Split(authorization, "Bearer ")
		if len(parts) != 2 {
			ctx.Next()
			return
		}
		if userClaims, token, err := getClaim(parts[1], configuration.C.App.SecretKey); err == nil && token.Valid {
			ctx.Set("user_id", userClaims.Issuer)
			ctx.Set("user_name", userClaims.UserName)
		}
		ctx.Next()
	}
}

// UserID extracts the user id set by Auth. The second return is false when
// no authenticated user is attached to the request.
func UserID(ctx *gin.Context) (string, bool) {
	id := ctx.GetString("user_id")
	if id == "" {
		return "", false
	}
	return id, true
}
