package reservation

import (
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Status classifies a booking attempt.
type Status string

const (
	StatusSuccess     Status = "SUCCESS"
	StatusHoliday     Status = "HOLIDAY"
	StatusFull        Status = "FULL"
	StatusInvalidTime Status = "INVALID_TIME"
	StatusNotFound    Status = "NOT_FOUND"
)

// Reservation is one booking record.
type Reservation struct {
	ID        string
	Name      string
	Date      string // MM/DD
	Time      string // HH:MM
	NumPeople int
	Cancelled bool
	CreatedAt time.Time
}

// Manager is the business backend seen by the dialogue. The production
// system talks to a booking service; this interface is all the core needs.
type Manager interface {
	Create(name, date, timeStr string, numPeople int) (Reservation, Status)
	Find(name, date string) (Reservation, bool)
	Cancel(name, date string) Status
}

// MemoryManager is an in-memory Manager with business-hour, holiday, and
// seat-capacity checks.
type MemoryManager struct {
	mu           sync.Mutex
	reservations map[string]*Reservation

	MaxSeats  int
	OpenHour  int          // first bookable hour
	CloseHour int          // last bookable hour
	Holiday   time.Weekday // weekly closing day
	Year      int          // year used to resolve MM/DD weekdays
	log       *slog.Logger
}

// NewMemoryManager returns a manager with the default shop settings.
func NewMemoryManager(log *slog.Logger) *MemoryManager {
	if log == nil {
		log = slog.Default()
	}
	return &MemoryManager{
		reservations: map[string]*Reservation{},
		MaxSeats:     50,
		OpenHour:     11,
		CloseHour:    22,
		Holiday:      time.Wednesday,
		Year:         time.Now().Year(),
		log:          log,
	}
}

// Create books a table after checking the holiday, hours, and seat capacity.
func (m *MemoryManager) Create(name, date, timeStr string, numPeople int) (Reservation, Status) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.isHoliday(date) {
		m.log.Info("reservation on holiday rejected", "date", date)
		return Reservation{}, StatusHoliday
	}
	if !m.validTime(timeStr) {
		m.log.Info("reservation outside business hours rejected", "time", timeStr)
		return Reservation{}, StatusInvalidTime
	}
	if m.occupiedSeats(date, timeStr)+numPeople > m.MaxSeats {
		m.log.Info("reservation rejected, full", "date", date, "time", timeStr, "num_people", numPeople)
		return Reservation{}, StatusFull
	}

	r := &Reservation{
		ID:        uuid.NewString(),
		Name:      name,
		Date:      date,
		Time:      timeStr,
		NumPeople: numPeople,
		CreatedAt: time.Now(),
	}
	m.reservations[r.ID] = r
	m.log.Info("reservation created", "id", r.ID, "name", name, "date", date, "time", timeStr, "num_people", numPeople)
	return *r, StatusSuccess
}

// Find returns the active reservation for a name, optionally narrowed by date.
func (m *MemoryManager) Find(name, date string) (Reservation, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, r := range m.reservations {
		if r.Cancelled || r.Name != name {
			continue
		}
		if date != "" && r.Date != date {
			continue
		}
		return *r, true
	}
	return Reservation{}, false
}

// Cancel marks the matching reservation cancelled.
func (m *MemoryManager) Cancel(name, date string) Status {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, r := range m.reservations {
		if r.Cancelled || r.Name != name {
			continue
		}
		if date != "" && r.Date != date {
			continue
		}
		r.Cancelled = true
		m.log.Info("reservation cancelled", "id", r.ID, "name", name)
		return StatusSuccess
	}
	return StatusNotFound
}

func (m *MemoryManager) isHoliday(date string) bool {
	var month, day int
	if _, err := fmt.Sscanf(date, "%d/%d", &month, &day); err != nil {
		return false
	}
	d := time.Date(m.Year, time.Month(month), day, 0, 0, 0, 0, time.Local)
	return d.Weekday() == m.Holiday
}

func (m *MemoryManager) validTime(timeStr string) bool {
	parts := strings.Split(timeStr, ":")
	if len(parts) != 2 {
		return false
	}
	hour, err := strconv.Atoi(parts[0])
	if err != nil {
		return false
	}
	return hour >= m.OpenHour && hour <= m.CloseHour
}

func (m *MemoryManager) occupiedSeats(date, timeStr string) int {
	seats := 0
	for _, r := range m.reservations {
		if !r.Cancelled && r.Date == date && r.Time == timeStr {
			seats += r.NumPeople
		}
	}
	return seats
}
