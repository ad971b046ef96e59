package reservation

import "testing"

func newTestManager() *MemoryManager {
	m := NewMemoryManager(nil)
	m.Year = 2024 // 10/23 is a Wednesday, the default holiday
	return m
}

func TestCreateAndFind(t *testing.T) {
	m := newTestManager()

	r, status := m.Create("山田", "11/02", "19:00", 3)
	if status != StatusSuccess {
		t.Fatalf("create: want SUCCESS, got %s", status)
	}
	if r.ID == "" {
		t.Error("reservation id must be set")
	}

	found, ok := m.Find("山田", "")
	if !ok || found.Date != "11/02" || found.NumPeople != 3 {
		t.Errorf("find: %+v ok=%v", found, ok)
	}

	if _, ok = m.Find("佐藤", ""); ok {
		t.Error("unknown name must not be found")
	}
}

func TestCreateRejectsHoliday(t *testing.T) {
	m := newTestManager()
	if _, status := m.Create("山田", "10/23", "19:00", 2); status != StatusHoliday {
		t.Errorf("want HOLIDAY, got %s", status)
	}
}

func TestCreateRejectsOutsideHours(t *testing.T) {
	m := newTestManager()
	if _, status := m.Create("山田", "11/02", "09:00", 2); status != StatusInvalidTime {
		t.Errorf("want INVALID_TIME, got %s", status)
	}
	if _, status := m.Create("山田", "11/02", "23:30", 2); status != StatusInvalidTime {
		t.Errorf("late booking: want INVALID_TIME, got %s", status)
	}
}

func TestCreateRejectsWhenFull(t *testing.T) {
	m := newTestManager()
	m.MaxSeats = 4

	if _, status := m.Create("山田", "11/02", "19:00", 3); status != StatusSuccess {
		t.Fatalf("first booking: %s", status)
	}
	if _, status := m.Create("佐藤", "11/02", "19:00", 2); status != StatusFull {
		t.Errorf("want FULL, got %s", status)
	}
	// A different time slot still has seats.
	if _, status := m.Create("佐藤", "11/02", "20:00", 2); status != StatusSuccess {
		t.Errorf("other slot: want SUCCESS, got %s", status)
	}
}

func TestCancel(t *testing.T) {
	m := newTestManager()
	m.Create("山田", "11/02", "19:00", 3)

	if status := m.Cancel("山田", ""); status != StatusSuccess {
		t.Fatalf("cancel: want SUCCESS, got %s", status)
	}
	if _, ok := m.Find("山田", ""); ok {
		t.Error("cancelled reservation must not be found")
	}
	if status := m.Cancel("山田", ""); status != StatusNotFound {
		t.Errorf("second cancel: want NOT_FOUND, got %s", status)
	}
}
