package models

// Способы входа пользователя.
const (
	SignInProviderCustom = "CUSTOM"
	SignInProviderGoogle = "GOOGLE"
)

// Назначения одноразовых кодов.
const (
	OtpPurposeVerifyEmail   = "VERIFY_EMAIL"
	OtpPurposeResetPassword = "RESET_PASSWORD"
)
