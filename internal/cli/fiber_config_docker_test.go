//go:build docker

package cli

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCreateFiberConfigProxyHeaderDocker(t *testing.T) {
	config := createFiberConfig("Test App", nil)

	assert.Empty(t, config.ProxyHeader)
}
