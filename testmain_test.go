package godbtx

import (
	"testing"

	"github.com/dbtkit/godbtx/testutils"
)

func TestMain(m *testing.M) {
	testutils.SetupTests(m)
}
