package models

// SyncState описывает состояние записи относительно облака.
// Заменяет пару (dirty bool, op enum): невалидные комбинации
// вроде dirty=false + op=update невозможны на уровне типа.
type SyncState string

const (
	// StateSynced запись совпадает с серверной копией, пушить нечего
	StateSynced SyncState = "synced"

	// StatePendingCreate запись создана локально и ещё не известна серверу
	StatePendingCreate SyncState = "pending_create"

	// StatePendingUpdate запись известна серверу, есть незапушенные правки
	StatePendingUpdate SyncState = "pending_update"

	// StatePendingDelete запись помечена на удаление, ждём ack от сервера
	StatePendingDelete SyncState = "pending_delete"
)

// Pending reports whether the record has unpushed local changes
// (what the old encoding called "dirty").
func (s SyncState) Pending() bool {
	return s != StateSynced && s != ""
}

// Valid reports whether s is one of the known states.
// Пустая строка трактуется как StateSynced для старых записей.
func (s SyncState) Valid() bool {
	switch s {
	case StateSynced, StatePendingCreate, StatePendingUpdate, StatePendingDelete, "":
		return true
	}
	return false
}

func (s SyncState) String() string {
	if s == "" {
		return string(StateSynced)
	}
	return string(s)
}
