// mqtt_test.go - Tests for payload encoding
// Run with: go test ./...

package mqtt

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEncode(t *testing.T) {
	b, err := encode("on")
	require.NoError(t, err)
	assert.Equal(t, "on", string(b))

	b, err = encode([]byte{0x01, 0x02})
	require.NoError(t, err)
	assert.Equal(t, []byte{0x01, 0x02}, b)

	b, err = encode(map[string]string{"file": "part.stl"})
	require.NoError(t, err)
	assert.JSONEq(t, `{"file":"part.stl"}`, string(b))

	_, err = encode(make(chan int)) // Channels cannot be JSON encoded
	assert.Error(t, err)
}

func TestNoopPublisher(t *testing.T) {
	var p Publisher = Noop{}
	assert.NoError(t, p.Publish("plasticity/uploads", "anything"))
}
