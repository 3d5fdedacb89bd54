package handler

import (
	"errors"
	"net/http"
	"strings"

	"github.com/jfranmatheu/EverydayFODMAP-sub000/internal/auth"
	"github.com/jfranmatheu/EverydayFODMAP-sub000/internal/db"
	"github.com/gin-gonic/gin"
	"golang.org/x/crypto/bcrypt"
)

const authUsernameKey = "__auth_username"

type loginPayload struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// Login 校验属主账号密码，成功后签发访问令牌
func (a *API) Login(c *gin.Context) {
	var payload loginPayload
	if !bindJSON(c, &payload, "请求参数不合法") {
		return
	}

	var user db.User
	if err := a.db.Where("username = ?", strings.TrimSpace(payload.Username)).First(&user).Error; err != nil {
		respondError(c, http.StatusUnauthorized, "用户名或密码错误")
		return
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(payload.Password)); err != nil {
		respondError(c, http.StatusUnauthorized, "用户名或密码错误")
		return
	}

	token, err := a.tokens.GenerateToken(user.Username)
	if err != nil {
		respondError(c, http.StatusInternalServerError, "签发令牌失败")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"token":      token,
		"username":   user.Username,
		"expires_in": int(a.tokens.TTL().Seconds()),
	})
}

// Me 返回当前令牌对应的用户名
func (a *API) Me(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"username": c.GetString(authUsernameKey)})
}

// RequireAuth 是保护 API 路由的认证中间件，要求 Bearer 访问令牌。
func RequireAuth(tokens *auth.Manager) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if header == "" {
			respondError(c, http.StatusUnauthorized, "缺少认证信息")
			c.Abort()
			return
		}

		parts := strings.SplitN(header, " ", 2)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
			respondError(c, http.StatusUnauthorized, "无效的令牌格式")
			c.Abort()
			return
		}

		claims, err := tokens.ParseToken(strings.TrimSpace(parts[1]))
		if err != nil {
			if errors.Is(err, auth.ErrTokenExpired) {
				respondError(c, http.StatusUnauthorized, "登录已过期，请重新登录")
			} else {
				respondError(c, http.StatusUnauthorized, "无效的令牌")
			}
			c.Abort()
			return
		}

		c.Set(authUsernameKey, claims.Username)
		c.Next()
	}
}
