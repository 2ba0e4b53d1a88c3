package validation

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidatePhone(t *testing.T) {
	for _, ok := range []string{"6281234567890", "+6281234567890", " 447911123456 "} {
		assert.NoError(t, ValidatePhone(ok), ok)
	}
	for _, bad := range []string{"", "081234567", "62-812", "12345", "62812345678901234"} {
		assert.Error(t, ValidatePhone(bad), bad)
	}
}

func TestValidateChatID(t *testing.T) {
	assert.NoError(t, ValidateChatID("6281234567890@c.us"))
	assert.NoError(t, ValidateChatID("6281234567890"))
	assert.EqualError(t, ValidateChatID("   "), "chat id is required")
	assert.Error(t, ValidateChatID("@g.us"))
}

func TestValidateWebhookURL(t *testing.T) {
	assert.NoError(t, ValidateWebhookURL("https://hooks.example.com/wa"))
	assert.NoError(t, ValidateWebhookURL("http://10.0.0.5:8080/wa"))
	assert.Error(t, ValidateWebhookURL(""))
	assert.Error(t, ValidateWebhookURL("hooks.example.com/wa"))
	assert.Error(t, ValidateWebhookURL("ftp://hooks.example.com"))
	assert.Error(t, ValidateWebhookURL("https://"))
}
