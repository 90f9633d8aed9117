package security

import (
	"os"
	"slices"
	"strings"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/golang-jwt/jwt/v5"

	"github.com/lk2023060901/creatorsim/pkg/config"
)

// JWTConfig JWT 配置
type JWTConfig struct {
	// SecretKey HS* 对称密钥
	SecretKey string `mapstructure:"secret_key" json:"secret_key"`

	// PublicKeyFile RS*/ES* 验签公钥
	PublicKeyFile string `mapstructure:"public_key_file" json:"public_key_file"`

	// PrivateKeyFile RS*/ES* 签名私钥，只验签的进程可不配置
	PrivateKeyFile string `mapstructure:"private_key_file" json:"private_key_file"`

	// Algorithm 默认 HS256
	Algorithm string `mapstructure:"algorithm" json:"algorithm"`

	ExpiresIn   time.Duration `mapstructure:"expires_in" json:"expires_in"`
	Issuer      string        `mapstructure:"issuer" json:"issuer"`
	TokenPrefix string        `mapstructure:"token_prefix" json:"token_prefix"`
	HeaderName  string        `mapstructure:"header_name" json:"header_name"`
}

// Claims 玩家身份：Subject 为 playerId，Roles 用于后台接口鉴权
type Claims struct {
	jwt.RegisteredClaims
	Roles []string `json:"roles,omitempty"`
}

// HasRole 是否拥有角色
func (c *Claims) HasRole(role string) bool {
	return slices.Contains(c.Roles, role)
}

// DefaultJWTConfig 默认配置
func DefaultJWTConfig() *JWTConfig {
	return &JWTConfig{
		Algorithm:   "HS256",
		ExpiresIn:   24 * time.Hour,
		TokenPrefix: "Bearer ",
		HeaderName:  "Authorization",
	}
}

// JWTManager 签发与校验
type JWTManager struct {
	config    *JWTConfig
	method    jwt.SigningMethod
	signKey   any
	verifyKey any
	nowFunc   func() time.Time
}

// NewJWTManager 创建 JWT 管理器
func NewJWTManager(cfg *JWTConfig) (*JWTManager, error) {
	newCfg, err := config.MergeConfig(DefaultJWTConfig(), cfg)
	if err != nil {
		return nil, err
	}

	m := &JWTManager{config: newCfg, nowFunc: time.Now}
	m.method = jwt.GetSigningMethod(strings.ToUpper(newCfg.Algorithm))
	if m.method == nil {
		return nil, errors.Wrapf(ErrAlgorithmInvalid, "algorithm=%s", newCfg.Algorithm)
	}
	if err := m.loadKeys(); err != nil {
		return nil, err
	}
	return m, nil
}

func (m *JWTManager) loadKeys() error {
	alg := m.method.Alg()
	if strings.HasPrefix(alg, "HS") {
		if m.config.SecretKey == "" {
			return ErrSecretKeyEmpty
		}
		m.signKey = []byte(m.config.SecretKey)
		m.verifyKey = m.signKey
		return nil
	}

	if m.config.PublicKeyFile != "" {
		data, err := os.ReadFile(m.config.PublicKeyFile)
		if err != nil {
			return errors.Mark(errors.Wrap(err, "read public key"), ErrPublicKeyLoad)
		}
		if strings.HasPrefix(alg, "RS") {
			m.verifyKey, err = jwt.ParseRSAPublicKeyFromPEM(data)
		} else {
			m.verifyKey, err = jwt.ParseECPublicKeyFromPEM(data)
		}
		if err != nil {
			return errors.Mark(err, ErrPublicKeyLoad)
		}
	}
	if m.config.PrivateKeyFile != "" {
		data, err := os.ReadFile(m.config.PrivateKeyFile)
		if err != nil {
			return errors.Mark(errors.Wrap(err, "read private key"), ErrPrivateKeyLoad)
		}
		if strings.HasPrefix(alg, "RS") {
			m.signKey, err = jwt.ParseRSAPrivateKeyFromPEM(data)
		} else {
			m.signKey, err = jwt.ParseECPrivateKeyFromPEM(data)
		}
		if err != nil {
			return errors.Mark(err, ErrPrivateKeyLoad)
		}
	}
	return nil
}

// GenerateToken 为玩家签发 Token
func (m *JWTManager) GenerateToken(playerID string, roles ...string) (string, error) {
	if playerID == "" {
		return "", ErrSubjectMissing
	}
	if m.signKey == nil {
		return "", ErrPrivateKeyLoad
	}
	now := m.nowFunc()
	claims := &Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   playerID,
			Issuer:    m.config.Issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(m.config.ExpiresIn)),
		},
		Roles: roles,
	}
	return jwt.NewWithClaims(m.method, claims).SignedString(m.signKey)
}

// ValidateToken 校验 Token（可带前缀），返回 Claims
func (m *JWTManager) ValidateToken(tokenString string) (*Claims, error) {
	tokenString = strings.TrimPrefix(tokenString, m.config.TokenPrefix)
	if tokenString == "" {
		return nil, ErrTokenMissing
	}

	claims := &Claims{}
	_, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (any, error) {
		if token.Method.Alg() != m.method.Alg() {
			return nil, ErrAlgorithmMismatch
		}
		return m.verifyKey, nil
	}, jwt.WithTimeFunc(m.nowFunc), jwt.WithExpirationRequired())
	if err != nil {
		return nil, wrapError(err)
	}
	if claims.Subject == "" {
		return nil, ErrSubjectMissing
	}
	return claims, nil
}

// GetConfig 获取配置
func (m *JWTManager) GetConfig() *JWTConfig {
	return m.config
}

func wrapError(err error) error {
	switch {
	case errors.Is(err, jwt.ErrTokenExpired):
		return ErrTokenExpired
	case errors.Is(err, jwt.ErrTokenMalformed):
		return ErrTokenMalformed
	case errors.Is(err, ErrAlgorithmMismatch):
		return ErrAlgorithmMismatch
	default:
		return errors.Mark(errors.Wrap(err, "parse token"), ErrTokenInvalid)
	}
}
