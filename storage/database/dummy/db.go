package dummydb

import (
	"sync"

	"github.com/trezcool/shule/core/attendance"
	"github.com/trezcool/shule/core/member"
	"github.com/trezcool/shule/core/session"
)

// DB is a mutex-guarded in-memory database used by tests and local dev.
// Tables keep insertion order so queries are deterministic.
type DB struct {
	member     *memberTable
	session    *sessionTable
	attendance *attendanceTable
}

type memberTable struct {
	sync.RWMutex
	members     map[string]*member.Member
	memberOrder []string
	levels      map[string]*member.Level
	levelOrder  []string
}

type sessionTable struct {
	sync.RWMutex
	table map[string]*session.Definition
	order []string
}

type attendanceTable struct {
	sync.RWMutex
	occurrences map[string]*attendance.Session // keyed by (sessionID, date)
	records     map[string]*attendance.Record  // keyed by id
	recordOrder []string
}

func Open() (*DB, error) {
	return &DB{
		member: &memberTable{
			members: make(map[string]*member.Member),
			levels:  make(map[string]*member.Level),
		},
		session: &sessionTable{
			table: make(map[string]*session.Definition),
		},
		attendance: &attendanceTable{
			occurrences: make(map[string]*attendance.Session),
			records:     make(map[string]*attendance.Record),
		},
	}, nil
}
