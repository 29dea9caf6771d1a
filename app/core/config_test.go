package core

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func Test_CoreConfig_DefaultAppid(t *testing.T) {
	// called on non-addressable values, the same way Cfg() callers do
	assert.Equal(t, "avatarops", CoreConfig{}.DefaultAppid())
	assert.Equal(t, "console", CoreConfig{Appid: "console"}.DefaultAppid())
}

func Test_Security_TokenTTL(t *testing.T) {
	assert.Equal(t, 24*7*time.Hour, Security{}.TokenTTL())
	assert.Equal(t, 2*time.Hour, Security{TokenTTLHours: 2}.TokenTTL())
}
