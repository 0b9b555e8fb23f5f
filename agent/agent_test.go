package agent

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBaseAgent(t *testing.T) {
	b := NewBaseAgent("BillingAgent")
	assert.Equal(t, "BillingAgent", b.Name())
	assert.Equal(t, "Agent BillingAgent", b.Description())

	b.SetDescription("Handles refunds")
	assert.Equal(t, "Handles refunds", b.Description())

	info := b.Info("model")
	assert.Equal(t, "BillingAgent", info.Name)
	assert.Equal(t, "model", info.Type)
}
