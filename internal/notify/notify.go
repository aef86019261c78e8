package notify

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"strizh/internal/domain"
)

// SMSSender отправляет короткое сообщение на телефон клиента.
type SMSSender interface {
	Send(ctx context.Context, phone, message string) error
}

// EmailSender отправляет письмо клиенту.
type EmailSender interface {
	Send(ctx context.Context, toEmail, toName, subject, body string) error
}

// Notifier уведомляет клиента о событиях его записи. Ошибки отправки
// возвращаются вызывающему, но не должны откатывать саму операцию.
type Notifier interface {
	BookingConfirmed(ctx context.Context, booking domain.Booking) error
	BookingCancelled(ctx context.Context, booking domain.Booking, reason string) error
	BookingReminder(ctx context.Context, booking domain.Booking) error
}

type notifier struct {
	sms    SMSSender
	email  EmailSender
	logger *zap.Logger
}

func NewNotifier(sms SMSSender, email EmailSender, logger *zap.Logger) Notifier {
	return &notifier{
		sms:    sms,
		email:  email,
		logger: logger,
	}
}

func (n *notifier) BookingConfirmed(ctx context.Context, booking domain.Booking) error {
	date := booking.BookingDate.Format("02.01.2006")
	message := fmt.Sprintf("Ваша запись подтверждена: %s в %s, мастер %s.",
		date, booking.BookingTime, booking.MasterName)
	body := fmt.Sprintf(
		"Здравствуйте, %s!\n\nВаша запись подтверждена.\n\nУслуга: %s\nМастер: %s\nДата: %s\nВремя: %s\n\nЖдем вас!",
		booking.CustomerName, booking.ServiceName, booking.MasterName, date, booking.BookingTime,
	)

	return n.deliver(ctx, booking, message, "Запись подтверждена", body)
}

func (n *notifier) BookingCancelled(ctx context.Context, booking domain.Booking, reason string) error {
	date := booking.BookingDate.Format("02.01.2006")
	message := fmt.Sprintf("Ваша запись на %s в %s отменена. Причина: %s",
		date, booking.BookingTime, reason)
	body := fmt.Sprintf(
		"Здравствуйте, %s!\n\nК сожалению, ваша запись на %s в %s отменена.\nПричина: %s\n\nВы можете выбрать другое время на нашем сайте.",
		booking.CustomerName, date, booking.BookingTime, reason,
	)

	return n.deliver(ctx, booking, message, "Запись отменена", body)
}

func (n *notifier) BookingReminder(ctx context.Context, booking domain.Booking) error {
	message := fmt.Sprintf("Напоминаем: завтра в %s вы записаны к мастеру %s.",
		booking.BookingTime, booking.MasterName)
	body := fmt.Sprintf(
		"Здравствуйте, %s!\n\nНапоминаем о вашей записи завтра.\n\nУслуга: %s\nМастер: %s\nВремя: %s\n\nДо встречи!",
		booking.CustomerName, booking.ServiceName, booking.MasterName, booking.BookingTime,
	)

	return n.deliver(ctx, booking, message, "Напоминание о записи", body)
}

// deliver шлет по обоим каналам. Сбой одного канала не отменяет второй,
// ошибка возвращается если не доставлен ни один.
func (n *notifier) deliver(ctx context.Context, booking domain.Booking, smsText, subject, body string) error {
	var smsErr, emailErr error

	if booking.CustomerPhone != "" {
		if smsErr = n.sms.Send(ctx, booking.CustomerPhone, smsText); smsErr != nil {
			n.logger.Warn("не удалось отправить SMS",
				zap.Int64("bookingId", booking.ID),
				zap.Error(smsErr),
			)
		}
	}

	if booking.CustomerEmail != "" {
		if emailErr = n.email.Send(ctx, booking.CustomerEmail, booking.CustomerName, subject, body); emailErr != nil {
			n.logger.Warn("не удалось отправить письмо",
				zap.Int64("bookingId", booking.ID),
				zap.Error(emailErr),
			)
		}
	}

	if smsErr != nil && emailErr != nil {
		return errors.Join(smsErr, emailErr)
	}
	if booking.CustomerPhone == "" && emailErr != nil {
		return emailErr
	}
	if booking.CustomerEmail == "" && smsErr != nil {
		return smsErr
	}

	return nil
}
