package auth

// GoogleScopes are requested when connecting a Google account. They cover
// Calendar and Tasks read/write plus the email used to label the account.
var GoogleScopes = []string{
	"openid",
	"https://www.googleapis.com/auth/userinfo.email",

	// Google Calendar scope
	"https://www.googleapis.com/auth/calendar",

	// Google Tasks scope
	"https://www.googleapis.com/auth/tasks",
}

// MicrosoftScopes are requested when connecting a Microsoft account.
// offline_access is what makes Graph hand out a refresh token.
var MicrosoftScopes = []string{
	"openid",
	"email",
	"offline_access",
	"User.Read",
	"Calendars.ReadWrite",
}
