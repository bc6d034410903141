// Package logging holds the slog conventions shared by calmux.
//
// Attribute helpers keep key names uniform across packages (provider,
// account, calendar, tool, operation, status, error). Email addresses are
// only ever logged through UserHash or Domain, and tokens through
// SanitizeToken:
//
//	logger.Warn("skipping account branch",
//	    logging.Provider("microsoft"),
//	    logging.Account(account.ID),
//	    logging.UserHash(account.Email),
//	    logging.Err(err))
//
// NewLogger builds the process logger from the configured format and level.
// Packages that only need to emit records depend on the Logger interface,
// implemented by SlogAdapter.
package logging
