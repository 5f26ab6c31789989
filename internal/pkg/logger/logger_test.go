package logger

import (
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
)

func TestInit_Levels(t *testing.T) {
	defer zerolog.SetGlobalLevel(zerolog.InfoLevel)

	Init(true, "debug")
	assert.Equal(t, zerolog.DebugLevel, zerolog.GlobalLevel())

	Init(false, "shouting")
	assert.Equal(t, zerolog.InfoLevel, zerolog.GlobalLevel())
}
