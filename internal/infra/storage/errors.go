// Package storage содержит ошибки, общие для всех реализаций хранилища
// (postgres и in-memory), чтобы usecase-слой не зависел от выбранного драйвера.
package storage

import "errors"

var (
	// ErrAppointmentNotFound возвращается, когда запись не найдена
	ErrAppointmentNotFound = errors.New("storage: appointment not found")

	// ErrBlockedTimeNotFound возвращается, когда блокировка времени не найдена
	ErrBlockedTimeNotFound = errors.New("storage: blocked time not found")

	// ErrEmployeeNotFound возвращается, когда сотрудник не найден
	ErrEmployeeNotFound = errors.New("storage: employee not found")

	// ErrServiceNotFound возвращается, когда услуга не найдена
	ErrServiceNotFound = errors.New("storage: service not found")

	// ErrOverlap возвращается, когда интервал пересекается с активной записью того же сотрудника
	ErrOverlap = errors.New("storage: interval overlaps an active appointment")

	// ErrStatusConflict возвращается, когда статус записи изменился параллельно
	ErrStatusConflict = errors.New("storage: appointment status changed concurrently")
)
