package repository

import "time"

const spanLayout = "Jan 2006"

func formatSpan(start, end *time.Time) string {
	if start == nil {
		return ""
	}
	return formatSpanFrom(*start, end)
}

func formatSpanFrom(start time.Time, end *time.Time) string {
	if end == nil {
		return start.Format(spanLayout) + " - present"
	}
	return start.Format(spanLayout) + " - " + end.Format(spanLayout)
}
