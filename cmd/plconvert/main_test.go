package main

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"dealdesk/internal/config"
)

func TestRulesPath(t *testing.T) {
	cfg := &config.Config{}
	cfg.Convert.RulesFile = "config/rules.yaml"

	assert.Equal(t, "flag/rules.yaml", rulesPath("flag/rules.yaml", cfg))
	assert.Equal(t, "config/rules.yaml", rulesPath("", cfg))

	cfg.Convert.RulesFile = ""
	assert.Equal(t, "", rulesPath("", cfg))
}
