package directory

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestEnsureMember(t *testing.T) {
	assert.Equal(t, []string{"ada"}, ensureMember(nil, "ada"))
	assert.Equal(t, []string{"lin", "ada"}, ensureMember([]string{"lin"}, "ada"))
	assert.Equal(t, []string{"ada", "lin"}, ensureMember([]string{"ada", "lin"}, "ada"))
}
