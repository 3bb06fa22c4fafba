package cachestore

import "strconv"

// Cache keys. Every key is wiped on login and logout.
const (
	KeyCases                = "cases"
	KeyCompanies            = "companies"
	KeyCalendarEvents       = "calendar_events"
	KeyDelays               = "delays"
	KeyTariff               = "tariff"
	KeyReadNotificationKeys = "read_notification_keys"
	KeyLastSyncTime         = "last_sync_time"

	NotificationsPagePrefix = "notifications:page:"
	CaseDetailPrefix        = "case_detail:"
)

func NotificationsPageKey(page int) string {
	return NotificationsPagePrefix + strconv.Itoa(page)
}

func CaseDetailKey(caseID int) string {
	return CaseDetailPrefix + strconv.Itoa(caseID)
}
