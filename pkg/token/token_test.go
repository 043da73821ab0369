package token

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

// 測試產生與解析 JWT
func TestGenerateAndParseJWT(t *testing.T) {
	tokenStr, err := GenerateJWT("viewer-1", string(RoleBrand), "messaging_service")
	assert.NoError(t, err)
	assert.NotEmpty(t, tokenStr)

	claims, err := ParseJWT(tokenStr)
	assert.NoError(t, err)
	assert.Equal(t, "viewer-1", claims.ViewerID)
	assert.Equal(t, string(RoleBrand), claims.Role)
	assert.Equal(t, "messaging_service", claims.Issuer)
}

// 測試解析不合法 token
func TestParseJWT_Invalid(t *testing.T) {
	_, err := ParseJWT("not-a-token")
	assert.Error(t, err)
}
