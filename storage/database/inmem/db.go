package inmemdb

import (
	"sync"

	"github.com/boopathidas/upskillglobal/core/course"
	"github.com/boopathidas/upskillglobal/core/student"
)

type (
	// DB is a process-local store. Each table is guarded by its own lock.
	DB struct {
		student *studentTable
		course  *courseTable
	}

	studentTable struct {
		mutex sync.RWMutex
		table map[string]*student.Student
	}

	courseTable struct {
		mutex sync.RWMutex
		table map[string]*course.Course
	}
)

func Open() *DB {
	return &DB{
		student: &studentTable{table: make(map[string]*student.Student)},
		course:  &courseTable{table: make(map[string]*course.Course)},
	}
}

// Reset empties every table.
func (db *DB) Reset() {
	db.student.mutex.Lock()
	db.student.table = make(map[string]*student.Student)
	db.student.mutex.Unlock()

	db.course.mutex.Lock()
	db.course.table = make(map[string]*course.Course)
	db.course.mutex.Unlock()
}
