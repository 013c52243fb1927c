package httpapi

import (
	"errors"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/Freeeeeet/slotswap/internal/config"
	"github.com/Freeeeeet/slotswap/internal/service"
	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"go.uber.org/zap"
)

const identityKey = "identity"

// Identity аутентифицированный пользователь запроса
type Identity struct {
	UserID string
	Name   string
}

// Claims полезная нагрузка JWT: sub = id пользователя, name = отображаемое имя
type Claims struct {
	Name string `json:"name,omitempty"`
	jwt.RegisteredClaims
}

// Authenticator проверяет bearer-токены: JWT (HMAC) или статические сервисные токены
type Authenticator struct {
	secret []byte
	static map[string]Identity
	users  *service.UserService
	logger *zap.Logger

	// registered запоминает уже сохранённых пользователей, чтобы не писать в базу на каждый запрос
	registered sync.Map
}

func NewAuthenticator(secret string, tokens []config.StaticToken, users *service.UserService, logger *zap.Logger) *Authenticator {
	static := make(map[string]Identity, len(tokens))
	for _, t := range tokens {
		static[t.Token] = Identity{UserID: t.UserID, Name: t.Name}
	}

	var key []byte
	if secret != "" {
		key = []byte(secret)
	}
	return &Authenticator{secret: key, static: static, users: users, logger: logger}
}

var (
	errMissingAuth = errors.New("missing authorization")
	errAuthFormat  = errors.New("invalid authorization format")
	errInvalidTok  = errors.New("invalid token")
)

// Authenticate разбирает заголовок Authorization
func (a *Authenticator) Authenticate(header string) (Identity, error) {
	if header == "" {
		return Identity{}, errMissingAuth
	}
	parts := strings.Fields(header)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return Identity{}, errAuthFormat
	}
	token := parts[1]

	if a.secret != nil {
		if id, err := a.parseJWT(token); err == nil {
			return id, nil
		}
	}

	if id, ok := a.static[token]; ok {
		return id, nil
	}
	return Identity{}, errInvalidTok
}

func (a *Authenticator) parseJWT(raw string) (Identity, error) {
	var claims Claims
	_, err := jwt.ParseWithClaims(raw, &claims, func(*jwt.Token) (any, error) {
		return a.secret, nil
	},
		jwt.WithValidMethods([]string{"HS256", "HS384", "HS512"}),
		jwt.WithLeeway(5*time.Second),
	)
	if err != nil {
		return Identity{}, err
	}

	sub, err := claims.GetSubject()
	if err != nil || strings.TrimSpace(sub) == "" {
		return Identity{}, jwt.ErrTokenInvalidClaims
	}
	return Identity{UserID: sub, Name: claims.Name}, nil
}

// Middleware аутентифицирует запрос и регистрирует пользователя в справочнике
func (a *Authenticator) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		id, err := a.Authenticate(c.GetHeader("Authorization"))
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": err.Error(), "code": "Unauthorized"})
			return
		}

		cacheKey := id.UserID + "\x00" + id.Name
		if _, ok := a.registered.Load(cacheKey); !ok {
			if _, err := a.users.RegisterUser(c.Request.Context(), id.UserID, id.Name, nil); err != nil {
				a.logger.Error("Failed to register user", zap.String("user_id", id.UserID), zap.Error(err))
				writeError(c, err)
				return
			}
			a.registered.Store(cacheKey, struct{}{})
		}

		c.Set(identityKey, id)
		c.Next()
	}
}

func currentUser(c *gin.Context) Identity {
	id, _ := c.MustGet(identityKey).(Identity)
	return id
}
