package domain

import "time"

// WorkSession is one continuous block of work on a task. Entries created
// while a session is active share its id, which is what the report grouper
// keys on.
type WorkSession struct {
	ID        int64
	TaskID    int64
	StartedAt time.Time
}
