package errors_test

import (
	stderrors "errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vytor/quizflash/internal/errors"
)

func TestAppError_ErrorAndUnwrap(t *testing.T) {
	cause := stderrors.New("connection refused")
	err := errors.NewSourceUnavailableError("capitals.csv", cause)

	assert.Equal(t, "SOURCE_UNAVAILABLE: question source unavailable: capitals.csv (connection refused)", err.Error())
	assert.ErrorIs(t, err, cause)
	assert.Equal(t, http.StatusBadGateway, err.Status)

	plain := errors.NewNoQuestionsError()
	assert.Equal(t, "NO_QUESTIONS: "+plain.Message, plain.Error())
	assert.Nil(t, plain.Unwrap())
}

func TestAs(t *testing.T) {
	wrapped := fmt.Errorf("start quiz: %w", errors.NewSessionActiveError("abc"))

	appErr, ok := errors.As(wrapped)
	require.True(t, ok)
	assert.Equal(t, errors.ErrCodeSessionActive, appErr.Code)
	assert.True(t, errors.HasCode(wrapped, errors.ErrCodeSessionActive))
	assert.False(t, errors.HasCode(wrapped, errors.ErrCodeNotFound))

	_, ok = errors.As(stderrors.New("plain"))
	assert.False(t, ok)
	assert.False(t, errors.HasCode(nil, errors.ErrCodeInternal))
}

func TestConstructorStatuses(t *testing.T) {
	tests := []struct {
		err    *errors.AppError
		code   string
		status int
	}{
		{errors.NewNotFoundError("quiz session", "current"), errors.ErrCodeNotFound, http.StatusNotFound},
		{errors.NewValidationError("answer", "required"), errors.ErrCodeValidation, http.StatusBadRequest},
		{errors.NewInternalError(nil), errors.ErrCodeInternal, http.StatusInternalServerError},
		{errors.NewBadRequestError("bad"), errors.ErrCodeBadRequest, http.StatusBadRequest},
		{errors.NewInvalidSnapshotError(nil), errors.ErrCodeInvalidSnapshot, http.StatusBadRequest},
		{errors.NewNoQuestionsError(), errors.ErrCodeNoQuestions, http.StatusConflict},
		{errors.NewInvalidTransitionError(nil), errors.ErrCodeInvalidTransition, http.StatusConflict},
		{errors.NewSessionActiveError("abc"), errors.ErrCodeSessionActive, http.StatusConflict},
		{errors.NewLedgerUnavailableError(nil), errors.ErrCodeLedgerUnavailable, http.StatusServiceUnavailable},
	}

	for _, tt := range tests {
		t.Run(tt.code, func(t *testing.T) {
			assert.Equal(t, tt.code, tt.err.Code)
			assert.Equal(t, tt.status, tt.err.Status)
			assert.NotEmpty(t, tt.err.Message)
		})
	}
}
