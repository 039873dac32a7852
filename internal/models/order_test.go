package models

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestGenerateOrderNumberFormat(t *testing.T) {
	number := generateOrderNumber()

	assert.True(t, strings.HasPrefix(number, "ORD-"), "order number %q missing prefix", number)
	assert.Contains(t, number, time.Now().Format("20060102"))
}

func TestGenerateOrderNumberUnique(t *testing.T) {
	seen := make(map[string]struct{})
	for i := 0; i < 100; i++ {
		number := generateOrderNumber()
		_, dup := seen[number]
		assert.False(t, dup, "duplicate order number %q", number)
		seen[number] = struct{}{}
	}
}
