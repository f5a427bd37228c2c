// Package memory provides in-memory collaborator implementations for
// tests and local development.
package memory

import (
	"context"
	"sync"

	"github.com/studentaffairs/leave-engine/engine"
	"github.com/studentaffairs/leave-engine/leave"
)

// =============================================================================
// MEMORY STORE - implements leave.Store, CourseDirectory, StudentDirectory
// =============================================================================

type enrollKey struct {
	StudentID string
	Term      engine.Term
}

type Memory struct {
	mu          sync.RWMutex
	students    map[string]leave.Student
	enrollments map[enrollKey][]engine.Course
	records     []leave.LeaveRecord
	nextID      int64

	// FailSubmit, when set, makes SubmitLeave fail without persisting
	// anything. Used to exercise the retry contract in tests.
	FailSubmit error
}

func New() *Memory {
	return &Memory{
		students:    make(map[string]leave.Student),
		enrollments: make(map[enrollKey][]engine.Course),
		nextID:      1,
	}
}

// AddStudent seeds a student.
func (m *Memory) AddStudent(s leave.Student) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.students[s.ID] = s
}

// Enroll seeds a course enrollment for a student in a term.
func (m *Memory) Enroll(studentID string, term engine.Term, course engine.Course) {
	m.mu.Lock()
	defer m.mu.Unlock()
	k := enrollKey{StudentID: studentID, Term: term}
	m.enrollments[k] = append(m.enrollments[k], course)
}

// GetStudent implements leave.StudentDirectory.
func (m *Memory) GetStudent(_ context.Context, id string) (*leave.Student, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	s, ok := m.students[id]
	if !ok {
		return nil, nil
	}
	return &s, nil
}

// CoursesForStudent implements leave.CourseDirectory.
func (m *Memory) CoursesForStudent(_ context.Context, studentID string, term engine.Term) ([]engine.Course, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	src := m.enrollments[enrollKey{StudentID: studentID, Term: term}]
	courses := make([]engine.Course, len(src))
	copy(courses, src)
	return courses, nil
}

// SubmitLeave implements leave.Store. The write is all-or-nothing: the
// injected failure happens before anything is appended.
func (m *Memory) SubmitLeave(_ context.Context, primary *leave.LeaveRecord, children []leave.LeaveRecord) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.FailSubmit != nil {
		return 0, m.FailSubmit
	}

	primary.ID = m.nextID
	m.nextID++
	m.records = append(m.records, *primary)

	for _, child := range children {
		child.ID = m.nextID
		m.nextID++
		m.records = append(m.records, child)
	}
	return primary.ID, nil
}

// LeaveRecordsForTerm implements leave.Store: primary records only.
func (m *Memory) LeaveRecordsForTerm(_ context.Context, studentID string, term engine.Term) ([]leave.LeaveRecord, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var out []leave.LeaveRecord
	for _, r := range m.records {
		if r.StudentID == studentID && r.IsPrimary() && r.Term() == term {
			out = append(out, r)
		}
	}
	return out, nil
}

// AllRecords returns everything stored, children included. Test helper.
func (m *Memory) AllRecords() []leave.LeaveRecord {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]leave.LeaveRecord, len(m.records))
	copy(out, m.records)
	return out
}
