package errors_test

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"gorm.io/gorm"

	svcErr "github.com/oggyb/muzz-matchmaking/internal/errors"
)

func TestMap(t *testing.T) {
	cases := []struct {
		name string
		err  error
		code codes.Code
	}{
		{"validation", svcErr.Validation("cannot swipe on yourself"), codes.InvalidArgument},
		{"conflict", svcErr.Conflict("already responded"), codes.AlreadyExists},
		{"not found", svcErr.NotFound("profile %s", "x"), codes.NotFound},
		{"wrapped not found", fmt.Errorf("loading: %w", svcErr.NotFound("request")), codes.NotFound},
		{"gorm not found", gorm.ErrRecordNotFound, codes.NotFound},
		{"forbidden", svcErr.Forbidden("only the recipient may respond"), codes.PermissionDenied},
		{"deadline", context.DeadlineExceeded, codes.DeadlineExceeded},
		{"canceled", context.Canceled, codes.Canceled},
		{"unknown", errors.New("dial tcp: connection refused"), codes.Internal},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			st, ok := status.FromError(svcErr.Map(tc.err))
			assert.True(t, ok)
			assert.Equal(t, tc.code, st.Code())
		})
	}
}

func TestMap_InternalHidesCause(t *testing.T) {
	st, _ := status.FromError(svcErr.Map(errors.New("password=hunter2")))
	assert.NotContains(t, st.Message(), "hunter2")
}

func TestMap_PassesStatusThrough(t *testing.T) {
	in := svcErr.InvalidArgument("bad id")
	assert.Equal(t, in, svcErr.Map(in))
	assert.Nil(t, svcErr.Map(nil))
}

func TestIsExpected(t *testing.T) {
	assert.True(t, svcErr.IsExpected(fmt.Errorf("respond: %w", svcErr.Forbidden("x"))))
	assert.False(t, svcErr.IsExpected(errors.New("disk full")))
}

func TestKindsAreDistinct(t *testing.T) {
	err := svcErr.Conflict("duplicate swipe")
	assert.ErrorIs(t, err, svcErr.ErrConflict)
	assert.NotErrorIs(t, err, svcErr.ErrNotFound)
	assert.NotErrorIs(t, err, svcErr.ErrValidation)
}
