package i18n

var ALLOW_LANG = map[string]bool{
	"en": true,
	"de": true,
}

const DEFAULT_LANG = "en"

const (
	ERROR_INTERNAL            = "error.internal"
	ERROR_NOT_FOUND           = "error.notfound"
	ERROR_INVALIDARGUMENT     = "error.invalidargument"
	ERROR_PERMISSION_DENIED   = "error.permission.denied"
	ERROR_UNAUTHORIZED        = "error.unauthorized"
	ERROR_FORBIDDEN           = "error.forbidden"
	ERROR_EXIST               = "error.exist"
	ERROR_TOO_MANY_REQUESTS   = "error.tooManyRequests"
	ERROR_INVALID_TOKEN       = "error.invalid.token"
	ERROR_LOGIN_INCORRECT     = "error.login.account.incorrect"
	ERROR_EMAIL_REGISTERED    = "error.email_has_already_registed"
	ERROR_STREAM_UNAVAILABLE  = "error.stream.unavailable"
	ERROR_SESSION_IN_PROGRESS = "error.session.in_progress"
)
