package weekly

const (
	WorkflowName      = "weekly_blind_spot_report"
	ActivityRunWeekly = "weekly_blind_spot_report.run"

	// WorkflowID is fixed so at most one cron execution exists.
	WorkflowID = "weekly-blind-spot-report"

	CronSchedule = "CRON_TZ=America/New_York 0 18 * * 0"
)
