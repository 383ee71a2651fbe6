package service

import "errors"

var (
	PasswordIncorrect        = errors.New("password incorrect")
	TokenIncorrect           = errors.New("token incorrect")
	ErrNotAuthorized         = errors.New("not authorized for survey")
	ErrSessionNotFound       = errors.New("response session not found")
	ErrSessionClosed         = errors.New("response session closed")
	ErrSurveyClosed          = errors.New("survey is not accepting responses")
	ErrSurveyScheduleInvalid = errors.New("survey end date is in the past")
	ErrInvalidAnswer         = errors.New("invalid answer")
	ErrInvalidSurvey         = errors.New("survey title is required")
	ErrInvalidQuestion       = errors.New("question text is required")
	ErrResponseNotFound      = errors.New("survey response not found")
	ErrSurveyIDRequired      = errors.New("survey id is required")
	ErrCredentialsRequired   = errors.New("email and password are required")
)
