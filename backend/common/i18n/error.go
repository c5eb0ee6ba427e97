package i18n

import (
	"errors"

	mperrors "mealprep/backend/common/errors"
)

// I18nError carries an error code and its message translated for the caller.
type I18nError struct {
	Code string
	Msg  string
	Err  error
}

func (e *I18nError) Error() string {
	return e.Msg
}

func (e *I18nError) ErrorCode() string {
	return e.Code
}

func (e *I18nError) Unwrap() error {
	return e.Err
}

// New creates an error for code translated into lang.
func New(code string, lang string, args ...any) *I18nError {
	msg := Translate(code, lang, args...)
	return &I18nError{
		Code: code,
		Msg:  msg,
		Err:  errors.New(msg),
	}
}

// Wrap attaches code to err; errors.Is still sees err.
func Wrap(err error, code string, lang string, args ...any) *I18nError {
	msg := Translate(code, lang, args...)
	return &I18nError{
		Code: code,
		Msg:  msg,
		Err:  err,
	}
}

func InternalServerError(lang string) *I18nError {
	return New(mperrors.ErrInternalServer, lang)
}

func InvalidParamError(lang string, param string) *I18nError {
	return New(mperrors.ErrInvalidParam, lang, param)
}

func IsErrorCode(err error, code string) bool {
	var i18nErr *I18nError
	if errors.As(err, &i18nErr) {
		return i18nErr.Code == code
	}
	return false
}
