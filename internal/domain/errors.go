package domain

import (
	"errors"
)

var (
	// ErrNotFound — сущность отсутствует, ошибка исправима на стороне клиента.
	ErrNotFound = errors.New("запись не найдена")

	// ErrSlotTaken — слот уже занят на момент фиксации, клиент должен
	// выбрать время заново.
	ErrSlotTaken = errors.New("выбранный слот времени уже занят")

	// ErrValidation — некорректные входные данные, хранилище не менялось.
	ErrValidation = errors.New("некорректные данные запроса")

	// ErrExternalService — сбой платежного или уведомительного провайдера.
	ErrExternalService = errors.New("ошибка внешнего сервиса")

	// ErrUnauthorized — нет прав на операцию.
	ErrUnauthorized = errors.New("доступ запрещен")
)
