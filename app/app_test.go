package app

import (
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/tech-arch1tect/sessiond/testutils"
	"go.uber.org/fx"
)

func TestApplicationGraph(t *testing.T) {
	err := fx.ValidateApp(Options(testutils.GetTestConfig())...)
	require.NoError(t, err)
}
