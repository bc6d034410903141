// Package calendar is the Google Calendar adapter.
//
// It implements provider.CalendarProvider on top of the Calendar v3 API and
// owns the mapping between Google's event shape and provider.CalendarEvent:
//
//	summary                  <-> title
//	htmlLink                  -> url
//	colorId                  <-> color
//	start.date               <-> plain date (all-day)
//	start.dateTime+timeZone  <-> zoned date-time
//	start.dateTime            -> instant when no timeZone is given
//
// Example usage:
//
//	client, err := calendar.NewClient(ctx, account.AccessToken)
//	if err != nil {
//	    return err
//	}
//
//	// Next 30 days of the primary calendar
//	events, err := client.Events(ctx, "primary", nil, nil)
package calendar
