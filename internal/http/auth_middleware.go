package http

import (
	"context"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"noteful-api/internal/service"
)

const principalKey = "auth_principal"

type principalCtxKey struct{}

// CredentialGuard autentica con username/password del body JSON.
// Un body ausente o ilegible cuenta como credenciales faltantes.
func CredentialGuard(logger *zap.Logger, strategy service.AuthStrategy) gin.HandlerFunc {
	return func(c *gin.Context) {
		var body map[string]any
		if err := c.ShouldBindJSON(&body); err != nil {
			body = nil
		}
		username, _ := body["username"].(string)
		password, _ := body["password"].(string)

		authenticate(c, logger, strategy, service.Credentials{Username: username, Password: password})
	}
}

// TokenGuard autentica con el header Authorization: Bearer <token>.
func TokenGuard(logger *zap.Logger, strategy service.AuthStrategy) gin.HandlerFunc {
	return func(c *gin.Context) {
		authenticate(c, logger, strategy, service.Credentials{BearerToken: bearerToken(c)})
	}
}

func authenticate(c *gin.Context, logger *zap.Logger, strategy service.AuthStrategy, creds service.Credentials) {
	principal, err := strategy.Authenticate(c.Request.Context(), creds)
	if err != nil {
		respondError(c, logger, err)
		return
	}
	c.Set(principalKey, principal)
	c.Request = c.Request.WithContext(WithPrincipal(c.Request.Context(), principal))
	c.Next()
}

func bearerToken(c *gin.Context) string {
	header := strings.TrimSpace(c.GetHeader("Authorization"))
	if len(header) < len("Bearer ") || !strings.EqualFold(header[:len("Bearer ")], "bearer ") {
		return ""
	}
	return strings.TrimSpace(header[len("Bearer "):])
}

// GetPrincipal obtiene el Principal que dejo un guard en el contexto de gin.
func GetPrincipal(c *gin.Context) (service.Principal, bool) {
	val, ok := c.Get(principalKey)
	if !ok {
		return service.Principal{}, false
	}
	p, ok := val.(service.Principal)
	return p, ok
}

func WithPrincipal(ctx context.Context, p service.Principal) context.Context {
	return context.WithValue(ctx, principalCtxKey{}, p)
}

func PrincipalFromContext(ctx context.Context) (service.Principal, bool) {
	p, ok := ctx.Value(principalCtxKey{}).(service.Principal)
	return p, ok
}
