package models

import "time"

// Meta содержит метаданные синхронизации, общие для всех локальных записей.
//
// Серверные зеркала (CreatedAt/UpdatedAt/DeletedAt) пишутся ТОЛЬКО из
// pull-merge или push-ack, никогда из локальных мутаций. Локальная
// мутация меняет только UpdatedAtLocal и State через Stamp* методы.
type Meta struct {
	CreatedAt *time.Time `json:"created_at"` // server mirror, nil until first ack/pull
	UpdatedAt *time.Time `json:"updated_at"` // server mirror
	DeletedAt *time.Time `json:"deleted_at"` // server mirror, non-nil = remote tombstone

	UpdatedAtLocal int64     `json:"updated_at_local"` // local revision clock, ms since epoch
	State          SyncState `json:"state"`
}

// Record is the common surface every synchronized entity implements.
// Реализуется pointer-receiver'ами, чтобы движок мог штамповать Meta.
type Record interface {
	RecordID() string
	SyncMeta() *Meta
}

// Pending reports whether the record has unpushed local changes.
func (m *Meta) Pending() bool {
	return m.State.Pending()
}

// StampCreate marks a freshly created local record: pending create,
// fresh local revision, server mirrors empty.
func (m *Meta) StampCreate(now time.Time) {
	m.UpdatedAtLocal = now.UnixMilli()
	m.State = StatePendingCreate
	m.CreatedAt = nil
	m.UpdatedAt = nil
	m.DeletedAt = nil
}

// StampUpdate marks a domain-field edit. A record the server has never
// seen stays pending_create: create не даунгрейдится в update.
func (m *Meta) StampUpdate(now time.Time) {
	m.UpdatedAtLocal = now.UnixMilli()
	if m.State != StatePendingCreate {
		m.State = StatePendingUpdate
	}
}

// StampDelete marks a local delete. The returned hard flag is true when
// the record was never pushed (pending_create): the caller must remove
// the row outright instead of queueing a delete the server never needs.
func (m *Meta) StampDelete(now time.Time) (hard bool) {
	if m.State == StatePendingCreate {
		return true
	}
	m.UpdatedAtLocal = now.UnixMilli()
	m.State = StatePendingDelete
	return false
}

// ApplyAck writes back the authoritative server timestamps after a
// successful upsert and clears the pending state.
func (m *Meta) ApplyAck(createdAt, updatedAt time.Time) {
	m.CreatedAt = &createdAt
	m.UpdatedAt = &updatedAt
	m.DeletedAt = nil
	m.State = StateSynced
}

// ResetClean prepares a record inserted from a pulled remote row:
// no pending local edit. UpdatedAtLocal=0 означает "нет локальных правок".
func (m *Meta) ResetClean() {
	m.UpdatedAtLocal = 0
	m.State = StateSynced
}
