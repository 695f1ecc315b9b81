package camera

import (
	"testing"

	"go.viam.com/cameramodels/testutils"
)

func TestMain(m *testing.M) {
	testutils.VerifyTestMain(m)
}
