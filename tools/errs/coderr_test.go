package errs_test

import (
	"io"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/require"

	"github.com/GitSid-glitch/cobuild/tools/errs"
)

func TestWithDetailKeepsPrototypeClean(t *testing.T) {
	e := errs.ErrArgs.WithDetail("content empty")
	require.Contains(t, e.Error(), "content empty")
	require.NotContains(t, errs.ErrArgs.Error(), "content empty")
	require.ErrorIs(t, e, errs.ErrArgs)
}

func TestWrapNilIsNil(t *testing.T) {
	require.NoError(t, errs.ErrPersistence.Wrap(nil))
}

func TestWrapKeepsCode(t *testing.T) {
	err := errs.ErrPersistence.Wrap(io.ErrUnexpectedEOF)
	require.ErrorIs(t, err, errs.ErrPersistence)
	require.NotErrorIs(t, err, errs.ErrArgs)
	require.Equal(t, errs.PersistenceError, errs.CodeOf(err))
}

func TestWrapMsgFormatsKeyValues(t *testing.T) {
	err := errs.ErrRecordNotFound.WrapMsg("load idea", "id", "idea-1")
	require.Contains(t, err.Error(), "load idea id=idea-1")
	require.ErrorIs(t, err, errs.ErrRecordNotFound)
}

func TestCodeOfSeesThroughWrapping(t *testing.T) {
	err := errors.Wrap(errs.ErrDuplicate.WithDetail("email"), "signup")
	require.Equal(t, errs.RecordDuplicate, errs.CodeOf(err))
	require.Zero(t, errs.CodeOf(io.EOF))
	require.Zero(t, errs.CodeOf(nil))
}
