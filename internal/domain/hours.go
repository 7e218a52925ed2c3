package domain

// TaskHours is the labor recorded on a task that is not closed yet.
type TaskHours struct {
	Subject string  `json:"subject"`
	Hours   float64 `json:"hours"`
}

// UserHours is the aggregated labor of one user, in academic hours.
type UserHours struct {
	ClosedHours    float64
	NotClosedHours float64
	NotClosedTasks []TaskHours
}

// UserInfo is one record of a batch run.
type UserInfo struct {
	Email string  `json:"email"`
	Group string  `json:"group"`
	Hours float64 `json:"hours"`
}
