package main

import (
	"fmt"
	"regexp"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSeedPatternMatchesOnlySeededAccounts(t *testing.T) {
	re := regexp.MustCompile(seedPattern)

	assert.True(t, re.MatchString(fmt.Sprintf("%s%04d", seedPrefix, 0)))
	assert.True(t, re.MatchString(fmt.Sprintf("%s%04d", seedPrefix, numAccounts-1)))

	for _, name := range []string{"userbob", "user_bob", "user_", "user_00421", "xuser_0042", "user-0042"} {
		assert.False(t, re.MatchString(name), name)
	}
}
