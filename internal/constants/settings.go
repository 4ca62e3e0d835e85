package constants

const (
	// Setting keys
	SettingOnboardingComplete = "onboarding_complete"
	SettingTimezone           = "timezone"

	// Default setting values
	DefaultTimezone = "Local" // Use system local timezone by default
)
